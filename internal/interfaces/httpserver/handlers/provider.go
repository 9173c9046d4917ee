package handlers

import (
	"github.com/rs/zerolog"

	"github.com/shopvoice/function-gateway/internal/domain/dispatch"
	"github.com/shopvoice/function-gateway/internal/domain/function"
	"github.com/shopvoice/function-gateway/internal/domain/session"
	"github.com/shopvoice/function-gateway/internal/domain/tenant"
)

// Provider wires all HTTP handlers for dependency injection.
type Provider struct {
	Function *FunctionHandler
	Admin    *AdminHandler
}

// NewProvider constructs the handler provider with domain services.
func NewProvider(dispatcher *dispatch.Service, registry *function.Registry, resolver *tenant.Resolver, sessions session.Store, log zerolog.Logger) *Provider {
	return &Provider{
		Function: NewFunctionHandler(dispatcher, registry, log),
		Admin:    NewAdminHandler(resolver, sessions, log),
	}
}
