package routes

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shopvoice/function-gateway/internal/domain/dispatch"
	"github.com/shopvoice/function-gateway/internal/interfaces/httpserver/handlers"
	"github.com/shopvoice/function-gateway/internal/interfaces/httpserver/middlewares"
	"github.com/shopvoice/function-gateway/internal/interfaces/httpserver/responses"
	"github.com/shopvoice/function-gateway/internal/utils/platformerrors"
)

const unhandledHeader = "X-Unhandled-Tool-Calls"

func registerFunctionRoutes(engine *gin.Engine, handler *handlers.FunctionHandler, opts Options) {
	engine.GET("/functions", describeFunctions(handler))
	engine.GET("/functions/schema", functionSchemas(handler))
	engine.POST("/functions", middlewares.FunctionAuth(opts.FunctionAPIKey), invokeFunction(handler, opts.MaxBodyBytes))
}

// describeFunctions godoc
// @Summary      Function endpoint descriptor
// @Description  Static availability check listing registered function names. Not authenticated.
// @Tags         functions
// @Produce      json
// @Success      200  {object}  handlers.FunctionsDescriptor
// @Router       /functions [get]
func describeFunctions(handler *handlers.FunctionHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, handler.Describe())
	}
}

// functionSchemas godoc
// @Summary      Function parameter schemas
// @Description  Registered functions with JSON schema for their parameters, for configuring the voice assistant.
// @Tags         functions
// @Produce      json
// @Success      200  {array}  function.Descriptor
// @Router       /functions/schema [get]
func functionSchemas(handler *handlers.FunctionHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, handler.Schemas())
	}
}

// invokeFunction godoc
// @Summary      Dispatch a voice assistant function call
// @Description  Accepts tool-calls, legacy function-call and lifecycle notice envelopes. Function-level errors are returned inside a 200 results envelope.
// @Tags         functions
// @Accept       json
// @Produce      json
// @Param        x-api-key  header  string  true  "Shared secret"
// @Success      200  {object}  responses.ResultsEnvelope
// @Failure      400  {object}  responses.ResultsEnvelope
// @Failure      401  {object}  responses.ResultsEnvelope
// @Failure      500  {object}  responses.ResultsEnvelope
// @Router       /functions [post]
func invokeFunction(handler *handlers.FunctionHandler, maxBody int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if maxBody > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBody)
		}
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			message := "request body could not be read"
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				message = "request body is too large"
			}
			responses.AbortWithResultsError(c, platformerrors.NewError(ctx, platformerrors.LayerRoute,
				platformerrors.ErrorTypeMalformedRequest, message, err))
			return
		}

		outcome, err := handler.Dispatch(ctx, body)
		if outcome != nil && outcome.Unhandled > 0 {
			c.Header(unhandledHeader, strconv.Itoa(outcome.Unhandled))
		}
		if err != nil {
			_ = c.Error(err)
			responses.AbortWithResultsError(c, err)
			return
		}

		switch outcome.State {
		case dispatch.StateAcknowledged:
			c.JSON(http.StatusOK, responses.Ack(outcome.MessageType))
		default:
			c.JSON(http.StatusOK, responses.Result(*outcome.Result))
		}
	}
}
