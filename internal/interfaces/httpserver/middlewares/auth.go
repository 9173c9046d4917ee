package middlewares

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shopvoice/function-gateway/internal/infrastructure/auth"
	"github.com/shopvoice/function-gateway/internal/infrastructure/metrics"
	"github.com/shopvoice/function-gateway/internal/interfaces/httpserver/responses"
	"github.com/shopvoice/function-gateway/internal/utils/platformerrors"
)

const apiKeyHeader = "X-Api-Key"

// FunctionAuth enforces the shared secret the voice provider sends with every
// webhook, either as x-api-key or as a bearer token. Rejected requests never
// reach a handler.
func FunctionAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !secretMatches(secret, presentedSecret(c)) {
			metrics.RecordWebhookOutcome("rejected")
			responses.AbortWithResultsError(c, platformerrors.NewError(c.Request.Context(),
				platformerrors.LayerRoute, platformerrors.ErrorTypeUnauthenticated, "invalid or missing api key", nil))
			return
		}
		c.Next()
	}
}

// AdminAuth accepts either the admin API key or a valid JWT.
func AdminAuth(apiKey string, validator *auth.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey != "" && secretMatches(apiKey, presentedSecret(c)) {
			c.Next()
			return
		}
		if validator.Enabled() {
			if token, err := validator.Authenticate(c.GetHeader("Authorization")); err == nil {
				c.Set("auth_token", token)
				c.Next()
				return
			}
		}
		responses.AbortWithError(c, platformerrors.NewError(c.Request.Context(),
			platformerrors.LayerRoute, platformerrors.ErrorTypeUnauthenticated, "unauthorized", nil))
	}
}

func presentedSecret(c *gin.Context) string {
	if key := strings.TrimSpace(c.GetHeader(apiKeyHeader)); key != "" {
		return key
	}
	return auth.BearerToken(c.GetHeader("Authorization"))
}

func secretMatches(expected, presented string) bool {
	if expected == "" || presented == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(presented)) == 1
}
