package dispatch

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/shopvoice/function-gateway/internal/domain/envelope"
	"github.com/shopvoice/function-gateway/internal/domain/function"
	"github.com/shopvoice/function-gateway/internal/domain/tenant"
	"github.com/shopvoice/function-gateway/internal/utils/platformerrors"
	"github.com/shopvoice/function-gateway/internal/utils/redact"
)

// State is a terminal state of one inbound webhook.
type State string

const (
	StateAcknowledged  State = "acknowledged"
	StateResponded     State = "responded"
	StateRejected      State = "rejected"
	StateBadRequest    State = "bad_request"
	StateUnauthorized  State = "unauthorized"
	StateInternalError State = "internal_error"
)

// TenantResolver maps an assistant id to its tenant credential.
type TenantResolver interface {
	ResolveByAssistant(ctx context.Context, assistantID string) (tenant.Credential, error)
}

// FunctionExecutor runs one invocation for one tenant.
type FunctionExecutor interface {
	Execute(ctx context.Context, inv function.Invocation, cred tenant.Credential) function.Result
}

// Outcome describes how a webhook ended. It is returned for every call,
// including failed ones, so callers can label metrics and headers.
type Outcome struct {
	State        State
	AssistantID  string
	TenantDomain string
	MessageType  string
	Function     string
	Unhandled    int
	// Result is set when a function ran, successfully or with a
	// function-level error.
	Result *function.Result
}

// Service drives one webhook from parsed body to function result.
type Service struct {
	resolver    TenantResolver
	executor    FunctionExecutor
	onUnhandled func(n int)
	log         zerolog.Logger
}

// Option customises the Service.
type Option func(*Service)

// WithUnhandledHook is called when a batch carried calls beyond the first.
func WithUnhandledHook(fn func(n int)) Option {
	return func(s *Service) { s.onUnhandled = fn }
}

// NewService wires the dispatch state machine.
func NewService(resolver TenantResolver, executor FunctionExecutor, log zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		resolver: resolver,
		executor: executor,
		log:      log.With().Str("component", "dispatch").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handle runs an already authenticated webhook body. The returned error is a
// *platformerrors.PlatformError whose type decides the HTTP status.
func (s *Service) Handle(ctx context.Context, body []byte) (*Outcome, error) {
	out := &Outcome{}

	env, err := envelope.Parse(body)
	if err != nil {
		out.State = StateBadRequest
		return out, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeMalformedRequest, malformedMessage(err), err)
	}
	out.AssistantID = env.AssistantID
	out.MessageType = env.MessageType

	cred, err := s.resolver.ResolveByAssistant(ctx, env.AssistantID)
	if err != nil {
		return out, s.resolveError(ctx, out, err)
	}
	out.TenantDomain = cred.TenantDomain

	if env.Kind == envelope.KindIgnorable {
		out.State = StateAcknowledged
		s.log.Debug().
			Str("assistant_id", env.AssistantID).
			Str("tenant", cred.TenantDomain).
			Str("type", env.MessageType).
			Msg("acknowledged lifecycle notice")
		return out, nil
	}

	inv := *env.Invocation
	out.Function = inv.Name
	out.Unhandled = env.Unhandled
	if env.Unhandled > 0 {
		s.log.Warn().
			Str("assistant_id", env.AssistantID).
			Str("tenant", cred.TenantDomain).
			Str("function", inv.Name).
			Int("unhandled", env.Unhandled).
			Msg("tool-calls batch had more than one call; only the first was executed")
		if s.onUnhandled != nil {
			s.onUnhandled(env.Unhandled)
		}
	}

	res := s.executor.Execute(ctx, inv, cred)
	out.Result = &res
	if res.Err == nil {
		out.State = StateResponded
		return out, nil
	}

	switch res.Err.Code {
	case function.CodeValidation, function.CodeUnknownFunction:
		// The caller expects a normal result envelope for these.
		out.State = StateResponded
		return out, nil
	case function.CodeDownstream:
		out.State = StateInternalError
		return out, platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeDownstream, res.Err.Message, res.Err, map[string]any{
				"tenant":       cred.TenantDomain,
				"function":     inv.Name,
				"access_token": redact.Token(cred.AccessToken),
			})
	default:
		out.State = StateInternalError
		return out, platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeInternal, res.Err.Message, res.Err, map[string]any{
				"tenant":   cred.TenantDomain,
				"function": inv.Name,
			})
	}
}

func (s *Service) resolveError(ctx context.Context, out *Outcome, err error) error {
	fields := map[string]any{"assistant_id": out.AssistantID}
	switch {
	case errors.Is(err, tenant.ErrUnknownTenant):
		out.State = StateUnauthorized
		return platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeUnknownTenant, "assistant is not linked to a store", err, fields)
	case errors.Is(err, tenant.ErrMissingCredential):
		out.State = StateUnauthorized
		return platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeMissingCredential, "store credentials are missing; reinstall the app", err, fields)
	default:
		out.State = StateInternalError
		return platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeDatabaseError, "failed to resolve tenant", err, fields)
	}
}

func malformedMessage(err error) string {
	switch {
	case errors.Is(err, envelope.ErrMissingAssistant):
		return "assistant id is required"
	case errors.Is(err, envelope.ErrUnsupportedMessage):
		return "unsupported message"
	default:
		return "malformed request body"
	}
}
