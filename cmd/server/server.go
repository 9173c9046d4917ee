package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/shopvoice/function-gateway/internal/config"
	"github.com/shopvoice/function-gateway/internal/infrastructure/logger"
	"github.com/shopvoice/function-gateway/internal/infrastructure/observability"
	"github.com/shopvoice/function-gateway/internal/infrastructure/store"
	"github.com/shopvoice/function-gateway/internal/interfaces/httpserver"
	"github.com/shopvoice/function-gateway/internal/interfaces/httpserver/handlers"
)

// @title Function Gateway
// @version 1.0
// @description Webhook gateway that runs voice assistant function calls against a tenant's storefront
// @BasePath /
type Application struct {
	httpServer *httpserver.HttpServer
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HttpServer, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		log:        log,
	}
}

func (a *Application) Start(ctx context.Context) error {
	return a.httpServer.Run(ctx)
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	stores, err := store.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("open store")
	}
	defer func() {
		if err := stores.Close(); err != nil {
			log.Error().Err(err).Msg("close store")
		}
	}()

	sessions, err := newSessionStore(cfg, stores, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize session store")
	}
	resolver := newResolver(stores, sessions, log)

	registry, err := newRegistry(cfg, newStorefrontClient(cfg, log))
	if err != nil {
		log.Fatal().Err(err).Msg("register functions")
	}
	dispatcher := newDispatcher(resolver, newExecutor(cfg, registry, log), log)

	authValidator, err := newAuthValidator(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize auth validator")
	}
	defer authValidator.Close()

	handlerProvider := handlers.NewProvider(dispatcher, registry, resolver, sessions, log)
	httpServer := httpserver.New(cfg, log, handlerProvider, authValidator, newReadinessCheck(stores))
	app := NewApplication(httpServer, log)

	log.Info().
		Str("store", stores.Backend).
		Strs("functions", registry.Names()).
		Bool("admin_api", cfg.AdminEnabled()).
		Msg("function gateway starting")

	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
