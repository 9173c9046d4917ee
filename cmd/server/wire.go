//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"

	"github.com/shopvoice/function-gateway/internal/config"
	"github.com/shopvoice/function-gateway/internal/infrastructure/logger"
	"github.com/shopvoice/function-gateway/internal/infrastructure/store"
	"github.com/shopvoice/function-gateway/internal/interfaces/httpserver"
	"github.com/shopvoice/function-gateway/internal/interfaces/httpserver/handlers"
)

var tenantSet = wire.NewSet(
	store.Open,
	newSessionStore,
	newResolver,
)

var functionSet = wire.NewSet(
	newStorefrontClient,
	newRegistry,
	newExecutor,
	newDispatcher,
)

// BuildApplication assembles the gateway with Wire. main wires the same graph by hand.
func BuildApplication(ctx context.Context) (*Application, error) {
	wire.Build(
		config.Load,
		logger.New,
		tenantSet,
		functionSet,
		newAuthValidator,
		newReadinessCheck,
		handlers.NewProvider,
		httpserver.New,
		NewApplication,
	)
	return nil, nil
}
