package main

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/shopvoice/function-gateway/internal/config"
	"github.com/shopvoice/function-gateway/internal/domain/catalog"
	"github.com/shopvoice/function-gateway/internal/domain/dispatch"
	"github.com/shopvoice/function-gateway/internal/domain/function"
	"github.com/shopvoice/function-gateway/internal/domain/session"
	"github.com/shopvoice/function-gateway/internal/domain/tenant"
	"github.com/shopvoice/function-gateway/internal/infrastructure/auth"
	"github.com/shopvoice/function-gateway/internal/infrastructure/metrics"
	"github.com/shopvoice/function-gateway/internal/infrastructure/store"
	"github.com/shopvoice/function-gateway/internal/infrastructure/storefront"
	"github.com/shopvoice/function-gateway/internal/interfaces/httpserver"
	"github.com/shopvoice/function-gateway/internal/utils/crypto"
)

func newSessionStore(cfg *config.Config, stores *store.Stores, log zerolog.Logger) (session.Store, error) {
	cipher, err := crypto.NewTokenCipher(cfg.SessionEncryptionKey)
	if err != nil {
		return nil, err
	}
	if !cipher.Enabled() {
		log.Warn().Msg("SESSION_ENCRYPTION_KEY is unset; access tokens are stored in plaintext")
	}
	return session.NewService(stores.Sessions, log, session.WithSealer(cipher)), nil
}

func newResolver(stores *store.Stores, sessions session.Store, log zerolog.Logger) *tenant.Resolver {
	return tenant.NewResolver(stores.Bindings, sessions, log)
}

func newStorefrontClient(cfg *config.Config, log zerolog.Logger) *storefront.Client {
	return storefront.NewClient(storefront.Options{
		Scheme:          cfg.StorefrontScheme,
		APIVersion:      cfg.StorefrontAPIVersion,
		Timeout:         cfg.StorefrontTimeout,
		ThrottleLowMark: cfg.StorefrontThrottleLowMark,
		AllowedSuffixes: cfg.StorefrontAllowedSuffixes,
	}, log)
}

func newRegistry(cfg *config.Config, client *storefront.Client) (*function.Registry, error) {
	registry := function.NewRegistry()
	products := catalog.New(client, catalog.Options{
		DefaultLimit: cfg.DefaultProductLimit,
		MaxLimit:     cfg.MaxProductLimit,
	})
	if err := products.Register(registry); err != nil {
		return nil, err
	}
	return registry, nil
}

func newExecutor(cfg *config.Config, registry *function.Registry, log zerolog.Logger) *function.Executor {
	return function.NewExecutor(registry, log,
		// Leave room to write the error envelope before the caller's own deadline.
		function.WithTimeout(cfg.RequestTimeout*9/10),
		function.WithObserver(func(name string, code function.ErrorCode, elapsed time.Duration) {
			metrics.RecordFunctionCall(name, string(code), elapsed.Seconds())
		}),
	)
}

func newDispatcher(resolver *tenant.Resolver, executor *function.Executor, log zerolog.Logger) *dispatch.Service {
	return dispatch.NewService(resolver, executor, log, dispatch.WithUnhandledHook(metrics.RecordUnhandledToolCalls))
}

func newAuthValidator(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*auth.Validator, error) {
	return auth.NewValidator(ctx, cfg, log)
}

func newReadinessCheck(stores *store.Stores) httpserver.ReadinessCheck {
	return stores.Ping
}
