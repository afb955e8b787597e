package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS lets pages on any origin post links from script. The requesting
// origin is echoed back instead of "*" so the reply works from pages that
// send credentials.
func CORS() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOriginFunc: func(string) bool { return true },
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "X-Requested-With"},
		ExposeHeaders:   []string{RequestIDHeader},
		MaxAge:          12 * time.Hour,
	})
}
