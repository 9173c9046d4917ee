package platformerrors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/shopvoice/function-gateway/internal/utils/requestctx"
)

// ErrorType represents the category of error
type ErrorType string

const (
	ErrorTypeUnauthenticated   ErrorType = "UNAUTHENTICATED"
	ErrorTypeMalformedRequest  ErrorType = "MALFORMED_REQUEST"
	ErrorTypeUnknownTenant     ErrorType = "UNKNOWN_TENANT"
	ErrorTypeMissingCredential ErrorType = "MISSING_CREDENTIAL"
	ErrorTypeUnknownFunction   ErrorType = "UNKNOWN_FUNCTION"
	ErrorTypeValidation        ErrorType = "VALIDATION_ERROR"
	ErrorTypeDownstream        ErrorType = "DOWNSTREAM_FAILURE"
	ErrorTypeNotFound          ErrorType = "NOT_FOUND"
	ErrorTypeDatabaseError     ErrorType = "DATABASE_ERROR"
	ErrorTypeInternal          ErrorType = "INTERNAL"
)

// Layer represents the application layer where the error occurred
type Layer string

const (
	LayerRepository     Layer = "repository"
	LayerDomain         Layer = "domain"
	LayerHandler        Layer = "handler"
	LayerRoute          Layer = "route"
	LayerInfrastructure Layer = "infrastructure"
)

// PlatformError represents an error with context and metadata
type PlatformError struct {
	UUID      string
	Type      ErrorType
	Message   string
	Err       error
	Context   map[string]any
	RequestID string
	Layer     Layer
	Timestamp time.Time
}

// Error implements the error interface
func (e *PlatformError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s][%s][%s] %s: %v", e.Layer, e.Type, e.UUID, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s][%s][%s] %s", e.Layer, e.Type, e.UUID, e.Message)
}

// Unwrap returns the underlying error
func (e *PlatformError) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the error type to a response status.
func (e *PlatformError) HTTPStatus() int {
	return ErrorTypeToHTTPStatus(e.Type)
}

// NewError creates a new PlatformError with the specified parameters
func NewError(ctx context.Context, layer Layer, errorType ErrorType, message string, err error) *PlatformError {
	return NewErrorWithContext(ctx, layer, errorType, message, err, nil)
}

// NewErrorWithContext creates a new PlatformError with additional context fields
func NewErrorWithContext(ctx context.Context, layer Layer, errorType ErrorType, message string, err error, contextFields map[string]any) *PlatformError {
	errorContext := make(map[string]any, len(contextFields))
	for k, v := range contextFields {
		errorContext[k] = v
	}

	return &PlatformError{
		UUID:      uuid.NewString(),
		Type:      errorType,
		Message:   message,
		Err:       err,
		RequestID: requestctx.RequestID(ctx),
		Layer:     layer,
		Timestamp: time.Now().UTC(),
		Context:   errorContext,
	}
}

// AsError wraps an error with layer context
func AsError(ctx context.Context, layer Layer, err error, message string) *PlatformError {
	if err == nil {
		return nil
	}

	var platformErr *PlatformError
	if errors.As(err, &platformErr) {
		wrapped := NewErrorWithContext(ctx, layer, platformErr.Type, fmt.Sprintf("%s: %s", message, platformErr.Message), platformErr, platformErr.Context)
		wrapped.UUID = platformErr.UUID
		return wrapped
	}

	return NewError(ctx, layer, ErrorTypeInternal, message, err)
}

// ErrorTypeToHTTPStatus maps error types to HTTP status codes
func ErrorTypeToHTTPStatus(errorType ErrorType) int {
	switch errorType {
	case ErrorTypeUnauthenticated, ErrorTypeUnknownTenant, ErrorTypeMissingCredential:
		return http.StatusUnauthorized
	case ErrorTypeMalformedRequest:
		return http.StatusBadRequest
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeUnknownFunction, ErrorTypeValidation:
		// Function-level problems travel inside a normal result envelope.
		return http.StatusOK
	case ErrorTypeDownstream, ErrorTypeDatabaseError, ErrorTypeInternal:
		fallthrough
	default:
		return http.StatusInternalServerError
	}
}

// IsErrorType checks if an error is a PlatformError with the specified type
func IsErrorType(err error, errorType ErrorType) bool {
	if err == nil {
		return false
	}

	var platformErr *PlatformError
	if errors.As(err, &platformErr) {
		return platformErr.Type == errorType
	}

	return false
}

// GetPlatformError returns the PlatformError in err's chain, if any.
func GetPlatformError(err error) *PlatformError {
	var platformErr *PlatformError
	if errors.As(err, &platformErr) {
		return platformErr
	}
	return nil
}

// LogError logs a platform error with proper structure
func LogError(logger zerolog.Logger, err *PlatformError) {
	if err == nil {
		return
	}

	event := logger.Error()
	if ErrorTypeToHTTPStatus(err.Type) < http.StatusInternalServerError {
		event = logger.Warn()
	}

	event = event.
		Str("error_uuid", err.UUID).
		Str("error_type", string(err.Type)).
		Str("layer", string(err.Layer)).
		Time("timestamp_utc", err.Timestamp)

	if err.RequestID != "" {
		event = event.Str("request_id", err.RequestID)
	}

	for k, v := range err.Context {
		event = event.Interface(k, v)
	}

	if err.Err != nil {
		event = event.Err(err.Err)
	}

	event.Msg(err.Message)
}
