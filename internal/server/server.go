// Package server exposes the case engine over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/abhisek/sleuth/internal/api"
)

// Engine is what the HTTP layer needs from the case engine.
// *engine.Engine implements it.
type Engine interface {
	Execute(ctx context.Context, query, caseID string) (*api.QueryResult, error)
	Check(ctx context.Context, query, caseID string) (*api.CheckResult, error)
	Schema(caseID string) ([]api.TableSchema, error)
	Data(ctx context.Context, caseID string) ([]api.TableData, error)
}

// RateLimitConfig bounds requests per client IP.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// Config holds the HTTP server settings.
type Config struct {
	Addr            string
	Mode            string // gin mode: debug, release or test
	AllowedOrigins  []string
	RateLimit       RateLimitConfig
	ShutdownTimeout time.Duration
}

// DefaultConfig returns sensible defaults for local play.
func DefaultConfig() Config {
	return Config{
		Addr:            ":8000",
		Mode:            gin.ReleaseMode,
		AllowedOrigins:  []string{"http://localhost:5173", "http://127.0.0.1:5173"},
		RateLimit:       RateLimitConfig{Requests: 120, Window: time.Minute},
		ShutdownTimeout: 5 * time.Second,
	}
}

// Validate checks that the config values are usable.
func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("server: Addr must not be empty")
	}
	switch c.Mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
	default:
		return fmt.Errorf("server: unknown mode %q", c.Mode)
	}
	if c.RateLimit.Requests < 1 {
		return fmt.Errorf("server: RateLimit.Requests must be >= 1, got %d", c.RateLimit.Requests)
	}
	if c.RateLimit.Window <= 0 {
		return fmt.Errorf("server: RateLimit.Window must be positive, got %s", c.RateLimit.Window)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("server: ShutdownTimeout must be positive, got %s", c.ShutdownTimeout)
	}
	return nil
}

// Server is the HTTP front of an Engine.
type Server struct {
	cfg     Config
	engine  Engine
	logger  *zap.Logger
	metrics *metrics
	router  *gin.Engine
}

// New builds the router. Metrics go to a registry private to this server.
func New(eng Engine, cfg Config, logger *zap.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	gin.SetMode(cfg.Mode)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	s := &Server{
		cfg:     cfg,
		engine:  eng,
		logger:  logger.Named("server"),
		metrics: newMetrics(reg),
	}

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.AllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", requestIDHeader}
	corsConfig.ExposeHeaders = []string{requestIDHeader}
	corsConfig.AllowCredentials = true
	corsConfig.MaxAge = 12 * time.Hour

	r := gin.New()
	r.Use(requestLogger(s.logger))
	r.Use(gin.Recovery())
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.New(corsConfig))
	}
	r.Use(s.metrics.middleware())

	r.GET("/health", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	limited := r.Group("/", rateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	limited.GET("/case/:caseId/schema", s.schema)
	limited.GET("/case/:caseId/data", s.data)
	limited.POST("/execute-sql", s.executeSQL)
	limited.POST("/check-solution", s.checkSolution)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorBody("Not Found"))
	})

	s.router = r
	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on cfg.Addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}
