package function

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog"

	"github.com/shopvoice/function-gateway/internal/domain/tenant"
	"github.com/shopvoice/function-gateway/internal/utils/redact"
)

// Observer receives one notification per executed invocation.
type Observer func(name string, code ErrorCode, elapsed time.Duration)

// Executor runs invocations against the registry, one at a time per call.
type Executor struct {
	registry *Registry
	timeout  time.Duration
	observe  Observer
	log      zerolog.Logger
}

// ExecutorOption customises an Executor.
type ExecutorOption func(*Executor)

// WithTimeout bounds each invocation. Zero leaves only the caller's deadline.
func WithTimeout(d time.Duration) ExecutorOption {
	return func(e *Executor) { e.timeout = d }
}

// WithObserver registers a callback for metrics.
func WithObserver(o Observer) ExecutorOption {
	return func(e *Executor) { e.observe = o }
}

// NewExecutor builds an executor over registry.
func NewExecutor(registry *Registry, log zerolog.Logger, opts ...ExecutorOption) *Executor {
	e := &Executor{
		registry: registry,
		log:      log.With().Str("component", "function-executor").Logger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry exposes the registry the executor dispatches to.
func (e *Executor) Registry() *Registry {
	return e.registry
}

type handlerOutcome struct {
	payload any
	err     error
}

// Execute never returns a Go error: every failure becomes a Result.Err.
func (e *Executor) Execute(ctx context.Context, inv Invocation, cred tenant.Credential) Result {
	start := time.Now()
	res := e.execute(ctx, inv, cred)

	var code ErrorCode
	if res.Err != nil {
		code = res.Err.Code
	}
	if e.observe != nil {
		e.observe(inv.Name, code, time.Since(start))
	}
	return res
}

func (e *Executor) execute(ctx context.Context, inv Invocation, cred tenant.Credential) Result {
	def, ok := e.registry.Lookup(inv.Name)
	if !ok {
		return Result{Err: &Error{
			Code:    CodeUnknownFunction,
			Message: fmt.Sprintf("unknown function: %s", inv.Name),
			Details: map[string]any{"available": e.registry.Names()},
		}}
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	done := make(chan handlerOutcome, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				e.log.Error().
					Str("function", inv.Name).
					Str("tenant", cred.TenantDomain).
					Interface("panic", p).
					Bytes("stack", debug.Stack()).
					Msg("function handler panicked")
				done <- handlerOutcome{err: &Error{Code: CodeInternal, Message: "function failed unexpectedly"}}
			}
		}()
		payload, err := def.Handler(ctx, inv.Parameters, cred)
		done <- handlerOutcome{payload: payload, err: err}
	}()

	var out handlerOutcome
	select {
	case out = <-done:
	case <-ctx.Done():
		out = handlerOutcome{err: DownstreamError("function timed out", ctx.Err())}
	}

	if out.err == nil {
		return Result{Payload: out.payload}
	}
	return Result{Err: e.classify(inv, cred, out.err)}
}

func (e *Executor) classify(inv Invocation, cred tenant.Credential, err error) *Error {
	var fnErr *Error
	if !errors.As(err, &fnErr) {
		fnErr = DownstreamError("storefront request failed", err)
	}

	event := e.log.Warn()
	if fnErr.Code == CodeValidation {
		event = e.log.Info()
	}
	event.Err(err).
		Str("function", inv.Name).
		Str("call_id", inv.CallID).
		Str("tenant", cred.TenantDomain).
		Str("access_token", redact.Token(cred.AccessToken)).
		Str("code", string(fnErr.Code)).
		Interface("parameters", redact.Params(inv.Parameters)).
		Msg("function invocation failed")
	return fnErr
}
