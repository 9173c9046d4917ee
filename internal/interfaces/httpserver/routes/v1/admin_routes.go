package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shopvoice/function-gateway/internal/interfaces/httpserver/handlers"
	"github.com/shopvoice/function-gateway/internal/interfaces/httpserver/responses"
	"github.com/shopvoice/function-gateway/internal/utils/platformerrors"
)

func registerAdminRoutes(router gin.IRoutes, handler *handlers.AdminHandler) {
	router.PUT("/assistants/:assistantId", bindAssistant(handler))
	router.DELETE("/assistants/:assistantId", unbindAssistant(handler))
	router.PUT("/sessions", storeSession(handler))
	router.DELETE("/sessions/:sessionId", deleteSession(handler))
	router.DELETE("/tenants/:tenantDomain", uninstallTenant(handler))
	router.GET("/tenants/:tenantDomain/sessions", listSessions(handler))
}

func badRequest(c *gin.Context, err error) {
	responses.AbortWithError(c, platformerrors.NewError(c.Request.Context(), platformerrors.LayerRoute,
		platformerrors.ErrorTypeMalformedRequest, "invalid request body: "+err.Error(), err))
}

// bindAssistant godoc
// @Summary      Bind an assistant to a tenant
// @Description  Records which tenant a voice assistant belongs to. Re-binding replaces the previous tenant.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        assistantId  path  string                          true  "Voice assistant id"
// @Param        request      body  handlers.BindAssistantRequest   true  "Tenant"
// @Success      200  {object}  tenant.AssistantBinding
// @Failure      400  {object}  responses.ErrorResponse
// @Failure      401  {object}  responses.ErrorResponse
// @Router       /v1/admin/assistants/{assistantId} [put]
func bindAssistant(handler *handlers.AdminHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req handlers.BindAssistantRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		binding, err := handler.BindAssistant(c.Request.Context(), c.Param("assistantId"), req)
		if err != nil {
			responses.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, binding)
	}
}

// unbindAssistant godoc
// @Summary      Remove an assistant binding
// @Tags         admin
// @Param        assistantId  path  string  true  "Voice assistant id"
// @Success      204
// @Failure      401  {object}  responses.ErrorResponse
// @Router       /v1/admin/assistants/{assistantId} [delete]
func unbindAssistant(handler *handlers.AdminHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := handler.UnbindAssistant(c.Request.Context(), c.Param("assistantId")); err != nil {
			responses.AbortWithError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// storeSession godoc
// @Summary      Store a tenant credential
// @Description  Hand-off point for the install flow. The id defaults to offline_<tenant> or online_<tenant>_<user>.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request  body  handlers.StoreSessionRequest  true  "Session"
// @Success      200  {object}  handlers.SessionView
// @Failure      400  {object}  responses.ErrorResponse
// @Failure      401  {object}  responses.ErrorResponse
// @Router       /v1/admin/sessions [put]
func storeSession(handler *handlers.AdminHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req handlers.StoreSessionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		view, err := handler.StoreSession(c.Request.Context(), req)
		if err != nil {
			responses.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

// deleteSession godoc
// @Summary      Delete one session
// @Tags         admin
// @Param        sessionId  path  string  true  "Session id"
// @Success      204
// @Failure      401  {object}  responses.ErrorResponse
// @Router       /v1/admin/sessions/{sessionId} [delete]
func deleteSession(handler *handlers.AdminHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := handler.DeleteSession(c.Request.Context(), c.Param("sessionId")); err != nil {
			responses.AbortWithError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// uninstallTenant godoc
// @Summary      Uninstall a tenant
// @Description  Deletes every session and assistant binding of the tenant.
// @Tags         admin
// @Produce      json
// @Param        tenantDomain  path  string  true  "Storefront domain"
// @Success      200  {object}  handlers.UninstallResult
// @Failure      401  {object}  responses.ErrorResponse
// @Router       /v1/admin/tenants/{tenantDomain} [delete]
func uninstallTenant(handler *handlers.AdminHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := handler.UninstallTenant(c.Request.Context(), c.Param("tenantDomain"))
		if err != nil {
			responses.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// listSessions godoc
// @Summary      List a tenant's live sessions
// @Description  Access tokens are masked.
// @Tags         admin
// @Produce      json
// @Param        tenantDomain  path  string  true  "Storefront domain"
// @Success      200  {array}  handlers.SessionView
// @Failure      401  {object}  responses.ErrorResponse
// @Router       /v1/admin/tenants/{tenantDomain}/sessions [get]
func listSessions(handler *handlers.AdminHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		views, err := handler.ListSessions(c.Request.Context(), c.Param("tenantDomain"))
		if err != nil {
			responses.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, views)
	}
}
