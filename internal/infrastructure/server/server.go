package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/RemoteBrowser/internal/api/http"
	"github.com/GriffinCanCode/RemoteBrowser/internal/api/middleware"
	"github.com/GriffinCanCode/RemoteBrowser/internal/infrastructure/config"
	"github.com/GriffinCanCode/RemoteBrowser/internal/infrastructure/logging"
	"github.com/GriffinCanCode/RemoteBrowser/internal/infrastructure/monitoring"
)

// ShutdownTimeout bounds how long Run waits for in-flight requests.
const ShutdownTimeout = 5 * time.Second

// Server wraps the linkcast HTTP server and its dependencies
type Server struct {
	router  *gin.Engine
	config  *config.Config
	logger  *logging.Logger
	metrics *monitoring.Metrics
}

// NewServer creates the linkcast server. Metrics are exposed on /metrics
// from gatherer.
func NewServer(cfg *config.Config, launcher apihttp.Launcher, metrics *monitoring.Metrics, gatherer prometheus.Gatherer, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.Nop()
	}
	logger = logger.Named("server")

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.SetHTMLTemplate(apihttp.Templates())

	// Middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS())

	if cfg.RateLimit.Enabled {
		limits := middleware.DefaultRateLimitConfig()
		limits.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		limits.Burst = cfg.RateLimit.Burst
		router.Use(middleware.RateLimit(limits))
		logger.Info("Rate limiting enabled",
			zap.Int("rps", limits.RequestsPerSecond),
			zap.Int("burst", limits.Burst),
		)
	}

	apihttp.NewHandlers(launcher, logger).Register(router)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	return &Server{
		router:  router,
		config:  cfg,
		logger:  logger,
		metrics: metrics,
	}
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.config.Linkcast.Host, s.config.Linkcast.Port)
}

// Run listens on the configured address until ctx is done, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr())
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info("Linkcast server listening", zap.String("addr", ln.Addr().String()))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("Linkcast server stopped")
	return nil
}
