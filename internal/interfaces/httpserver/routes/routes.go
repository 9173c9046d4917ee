package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/shopvoice/function-gateway/internal/interfaces/httpserver/handlers"
	v1 "github.com/shopvoice/function-gateway/internal/interfaces/httpserver/routes/v1"
)

// Options carries the per-route settings the registrars need.
type Options struct {
	FunctionAPIKey string
	MaxBodyBytes   int64
	// Admin guards the /v1/admin group; nil leaves the group unregistered.
	Admin gin.HandlerFunc
}

// Provider registers every application route.
type Provider struct {
	handlers *handlers.Provider
	opts     Options
}

// NewProvider builds the route registrar.
func NewProvider(handlerProvider *handlers.Provider, opts Options) *Provider {
	return &Provider{handlers: handlerProvider, opts: opts}
}

// Register attaches the webhook routes at the root and the admin API under /v1.
func (p *Provider) Register(engine *gin.Engine) {
	registerFunctionRoutes(engine, p.handlers.Function, p.opts)
	if p.opts.Admin != nil {
		v1.NewRoutes(p.handlers, p.opts.Admin).Register(engine)
	}
}
