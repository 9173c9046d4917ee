package handlers

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/shopvoice/function-gateway/internal/domain/dispatch"
	"github.com/shopvoice/function-gateway/internal/domain/function"
	"github.com/shopvoice/function-gateway/internal/infrastructure/metrics"
	"github.com/shopvoice/function-gateway/internal/utils/platformerrors"
)

// FunctionsDescriptor is the static body of GET /functions.
type FunctionsDescriptor struct {
	Endpoint  string   `json:"endpoint" example:"/functions"`
	Status    string   `json:"status" example:"available"`
	Functions []string `json:"functions" example:"get_products,search_products"`
}

// FunctionHandler serves the voice provider's webhook.
type FunctionHandler struct {
	dispatcher *dispatch.Service
	registry   *function.Registry
	log        zerolog.Logger
}

// NewFunctionHandler wires dependencies for the function routes.
func NewFunctionHandler(dispatcher *dispatch.Service, registry *function.Registry, log zerolog.Logger) *FunctionHandler {
	return &FunctionHandler{
		dispatcher: dispatcher,
		registry:   registry,
		log:        log.With().Str("component", "function-handler").Logger(),
	}
}

// Dispatch runs one authenticated webhook body and records its outcome.
func (h *FunctionHandler) Dispatch(ctx context.Context, body []byte) (*dispatch.Outcome, error) {
	outcome, err := h.dispatcher.Handle(ctx, body)
	metrics.RecordWebhookOutcome(string(outcome.State))
	if err != nil {
		if perr := platformerrors.GetPlatformError(err); perr != nil {
			platformerrors.LogError(h.log, perr)
		}
		return outcome, err
	}

	h.log.Info().
		Str("assistant_id", outcome.AssistantID).
		Str("tenant", outcome.TenantDomain).
		Str("function", outcome.Function).
		Str("state", string(outcome.State)).
		Bool("function_error", outcome.Result != nil && outcome.Result.Failed()).
		Msg("webhook handled")
	return outcome, nil
}

// Describe returns the availability descriptor.
func (h *FunctionHandler) Describe() FunctionsDescriptor {
	return FunctionsDescriptor{
		Endpoint:  "/functions",
		Status:    "available",
		Functions: h.registry.Names(),
	}
}

// Schemas returns the registered functions with their parameter schemas.
func (h *FunctionHandler) Schemas() []function.Descriptor {
	return h.registry.Descriptors()
}
