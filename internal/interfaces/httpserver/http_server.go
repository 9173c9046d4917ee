package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	gatewaydocs "github.com/shopvoice/function-gateway/docs/swagger"
	"github.com/shopvoice/function-gateway/internal/config"
	"github.com/shopvoice/function-gateway/internal/infrastructure/auth"
	"github.com/shopvoice/function-gateway/internal/infrastructure/metrics"
	"github.com/shopvoice/function-gateway/internal/interfaces/httpserver/handlers"
	"github.com/shopvoice/function-gateway/internal/interfaces/httpserver/middlewares"
	"github.com/shopvoice/function-gateway/internal/interfaces/httpserver/routes"
)

// ReadinessCheck reports whether the backing store is reachable.
type ReadinessCheck func(ctx context.Context) error

// HttpServer wraps the gin engine with graceful shutdown helpers.
type HttpServer struct {
	cfg         *config.Config
	engine      *gin.Engine
	log         zerolog.Logger
	handlerProv *handlers.Provider
	routeProv   *routes.Provider
}

// New constructs the HTTP server with default middleware and routes.
func New(cfg *config.Config, log zerolog.Logger, handlerProvider *handlers.Provider, authValidator *auth.Validator, ready ReadinessCheck) *HttpServer {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	gatewaydocs.SwaggerInfo.BasePath = "/"

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middlewares.RequestID())
	if cfg.EnableTracing {
		engine.Use(middlewares.TracingMiddleware(cfg.ServiceName))
	}
	engine.Use(middlewares.LoggingMiddleware(log))
	engine.Use(middlewares.MetricsMiddleware())
	engine.Use(middlewares.Timeout(cfg.RequestTimeout))

	opts := routes.Options{
		FunctionAPIKey: cfg.FunctionAPIKey,
		MaxBodyBytes:   cfg.MaxBodyBytes,
	}
	if cfg.AdminEnabled() {
		opts.Admin = middlewares.AdminAuth(cfg.AdminAPIKey, authValidator)
	} else {
		log.Warn().Msg("ADMIN_API_KEY and AUTH_ENABLED are unset; admin API disabled")
	}
	routeProvider := routes.NewProvider(handlerProvider, opts)
	registerCoreRoutes(engine, cfg, ready, routeProvider)

	return &HttpServer{
		cfg:         cfg,
		engine:      engine,
		log:         log,
		handlerProv: handlerProvider,
		routeProv:   routeProvider,
	}
}

// Handler exposes the engine, mostly for httptest.
func (s *HttpServer) Handler() http.Handler {
	return s.engine
}

// Run starts the HTTP listener and handles graceful shutdown via context cancellation.
func (s *HttpServer) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.cfg.Addr()).Msg("HTTP server listening")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("HTTP server error")
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		s.log.Info().Msg("Context cancelled, shutting down HTTP server")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func registerCoreRoutes(engine *gin.Engine, cfg *config.Config, ready ReadinessCheck, routeProvider *routes.Provider) {
	engine.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": cfg.ServiceName,
			"status":  "ok",
		})
	})

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	engine.GET("/readyz", func(c *gin.Context) {
		if ready != nil {
			if err := ready(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	engine.GET("/metrics", gin.WrapH(metrics.Handler()))
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routeProvider.Register(engine)
}
