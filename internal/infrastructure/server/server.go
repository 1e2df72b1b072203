package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	api "github.com/GriffinCanCode/AgentSandbox/internal/api/http"
	"github.com/GriffinCanCode/AgentSandbox/internal/api/middleware"
	"github.com/GriffinCanCode/AgentSandbox/internal/domain/capability"
	"github.com/GriffinCanCode/AgentSandbox/internal/domain/sandbox"
	"github.com/GriffinCanCode/AgentSandbox/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentSandbox/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentSandbox/internal/infrastructure/monitoring"
)

// Server wraps the HTTP server and its dependencies.
type Server struct {
	router   *gin.Engine
	http     *http.Server
	service  *sandbox.Service
	registry *capability.Registry
	logger   *logging.Logger
	config   *config.Config
	metrics  *monitoring.Metrics
}

// New creates a server around an already-composed capability registry.
func New(cfg *config.Config, logger *logging.Logger, registry *capability.Registry) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Info("Initializing sandbox server",
		zap.String("port", cfg.Server.Port),
		zap.Int64("memory_limit_mb", cfg.Sandbox.MemoryLimitMB),
		zap.Int64("timeout_ms", cfg.Sandbox.TimeoutMs),
		zap.Int("max_concurrent_runs", cfg.Sandbox.MaxConcurrentRuns),
	)

	metrics := monitoring.NewMetrics()

	service := sandbox.NewService(sandbox.Config{
		MemoryLimitMB:     cfg.Sandbox.MemoryLimitMB,
		Timeout:           cfg.Sandbox.Timeout(),
		MaxConcurrentRuns: cfg.Sandbox.MaxConcurrentRuns,
	}, logger).WithMetrics(metrics)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	handlers := api.NewHandlers(service, registry, logger)

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)
	router.GET("/capabilities", handlers.ListCapabilities)
	router.POST("/v1/execute", handlers.Execute)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return &Server{
		router:   router,
		service:  service,
		registry: registry,
		logger:   logger,
		config:   cfg,
		metrics:  metrics,
	}, nil
}

// Router exposes the gin engine; used by tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run starts the server and blocks until it stops.
func (s *Server) Run() error {
	addr := fmt.Sprintf("%s:%s", s.config.Server.Host, s.config.Server.Port)
	s.logger.Info("Starting sandbox server", zap.String("addr", addr))

	s.http = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains the HTTP server and stops accepting new runs.
func (s *Server) Shutdown(ctx context.Context) error {
	s.service.Close()
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}
