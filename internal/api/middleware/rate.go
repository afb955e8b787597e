package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimitConfig defines per-client rate limiting.
type RateLimitConfig struct {
	RequestsPerSecond int
	Burst             int
	// IdleTimeout drops the limiter of a client not seen for this long.
	IdleTimeout time.Duration
}

// DefaultRateLimitConfig returns limits suited to people casting links by
// hand.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 5,
		Burst:             10,
		IdleTimeout:       10 * time.Minute,
	}
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimit creates a per-IP rate limiting middleware.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultRateLimitConfig().IdleTimeout
	}

	var (
		mu        sync.Mutex
		clients   = make(map[string]*client)
		lastSweep = time.Now()
	)

	return func(c *gin.Context) {
		now := time.Now()
		ip := c.ClientIP()

		mu.Lock()
		if now.Sub(lastSweep) > cfg.IdleTimeout {
			for addr, cl := range clients {
				if now.Sub(cl.lastSeen) > cfg.IdleTimeout {
					delete(clients, addr)
				}
			}
			lastSweep = now
		}
		cl, ok := clients[ip]
		if !ok {
			cl = &client{limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst)}
			clients[ip] = cl
		}
		cl.lastSeen = now
		allowed := cl.limiter.AllowN(now, 1)
		mu.Unlock()

		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}
