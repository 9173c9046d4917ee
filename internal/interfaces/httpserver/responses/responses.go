// Package responses shapes every JSON body the gateway returns.
package responses

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shopvoice/function-gateway/internal/domain/function"
	"github.com/shopvoice/function-gateway/internal/utils/platformerrors"
)

// ResultsEnvelope is the body the voice provider expects from POST /functions.
type ResultsEnvelope struct {
	Results []any `json:"results"`
}

// ResultError is one failed entry inside ResultsEnvelope.
type ResultError struct {
	Error   string         `json:"error" example:"parameter query is required"`
	Code    string         `json:"code" example:"VALIDATION_ERROR"`
	Details map[string]any `json:"details,omitempty"`
}

// Acknowledgement answers lifecycle notices.
type Acknowledgement struct {
	Received bool   `json:"received" example:"true"`
	Type     string `json:"type" example:"status-update"`
}

// ErrorResponse is the body of admin API failures.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// Result converts a function result into its envelope entry.
func Result(res function.Result) ResultsEnvelope {
	if res.Err != nil {
		return ResultsEnvelope{Results: []any{ResultError{
			Error:   res.Err.Message,
			Code:    string(res.Err.Code),
			Details: res.Err.Details,
		}}}
	}
	return ResultsEnvelope{Results: []any{res.Payload}}
}

// Failure builds the results envelope for a request-level error.
func Failure(message string, errorType platformerrors.ErrorType) ResultsEnvelope {
	return ResultsEnvelope{Results: []any{ResultError{Error: message, Code: string(errorType)}}}
}

// Ack builds the acknowledgement for a lifecycle notice.
func Ack(messageType string) Acknowledgement {
	return Acknowledgement{Received: true, Type: messageType}
}

// AbortWithResultsError writes a results envelope for err and stops the chain.
func AbortWithResultsError(c *gin.Context, err error) {
	perr := asPlatformError(c, err)
	c.AbortWithStatusJSON(perr.HTTPStatus(), Failure(perr.Message, perr.Type))
}

// AbortWithError writes a plain error body for err and stops the chain.
func AbortWithError(c *gin.Context, err error) {
	perr := asPlatformError(c, err)
	c.AbortWithStatusJSON(perr.HTTPStatus(), ErrorResponse{
		Error:     perr.Message,
		Code:      string(perr.Type),
		RequestID: perr.RequestID,
	})
}

func asPlatformError(c *gin.Context, err error) *platformerrors.PlatformError {
	if perr := platformerrors.GetPlatformError(err); perr != nil {
		return perr
	}
	return platformerrors.NewError(c.Request.Context(), platformerrors.LayerRoute,
		platformerrors.ErrorTypeInternal, http.StatusText(http.StatusInternalServerError), err)
}
