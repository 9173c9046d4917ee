package function

import (
	"context"
	"fmt"

	"github.com/shopvoice/function-gateway/internal/domain/tenant"
)

// Invocation is the normalized "call function X with parameters Y" request.
type Invocation struct {
	Name       string
	Parameters map[string]any
	// CallID is the provider's tool call id, used only for logging.
	CallID string
}

// ErrorCode classifies a failed invocation.
type ErrorCode string

const (
	CodeUnknownFunction ErrorCode = "UNKNOWN_FUNCTION"
	CodeValidation      ErrorCode = "VALIDATION_ERROR"
	CodeDownstream      ErrorCode = "DOWNSTREAM_FAILURE"
	CodeInternal        ErrorCode = "INTERNAL_ERROR"
)

// Error is the structured failure carried in a Result.
type Error struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// ValidationError reports a caller-side problem with the parameters.
func ValidationError(message string, details map[string]any) *Error {
	return &Error{Code: CodeValidation, Message: message, Details: details}
}

// DownstreamError wraps a storefront failure.
func DownstreamError(message string, cause error) *Error {
	return &Error{Code: CodeDownstream, Message: message, cause: cause}
}

// Result is either a success payload or an error.
type Result struct {
	Payload any
	Err     *Error
}

// Failed reports whether the invocation produced an error.
func (r Result) Failed() bool {
	return r.Err != nil
}

// Handler executes one function for one tenant.
type Handler func(ctx context.Context, params map[string]any, cred tenant.Credential) (any, error)

// Definition describes a callable function.
type Definition struct {
	Name        string
	Description string
	// Parameters is a zero value of the struct the handler binds its
	// parameters into. It is reflected into a JSON schema for descriptors.
	Parameters any
	Handler    Handler
}
