package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/shopvoice/function-gateway/internal/interfaces/httpserver/handlers"
)

// Routes encapsulates versioned route registration.
type Routes struct {
	handlers *handlers.Provider
	guard    gin.HandlerFunc
}

// NewRoutes builds the v1 route registrar. guard protects every admin route.
func NewRoutes(handlerProvider *handlers.Provider, guard gin.HandlerFunc) *Routes {
	return &Routes{
		handlers: handlerProvider,
		guard:    guard,
	}
}

// Register attaches all v1 routes under /v1 prefix.
func (r *Routes) Register(engine *gin.Engine) {
	group := engine.Group("/v1/admin", r.guard)
	registerAdminRoutes(group, r.handlers.Admin)
}
