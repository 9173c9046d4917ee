package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/shopvoice/function-gateway/internal/domain/session"
	"github.com/shopvoice/function-gateway/internal/domain/tenant"
	"github.com/shopvoice/function-gateway/internal/utils/platformerrors"
	"github.com/shopvoice/function-gateway/internal/utils/redact"
)

// BindAssistantRequest links an assistant to a tenant.
type BindAssistantRequest struct {
	TenantDomain string `json:"tenant_domain" binding:"required" example:"shop-a.example"`
}

// StoreSessionRequest hands over a credential issued by the install flow.
type StoreSessionRequest struct {
	ID           string     `json:"id" example:"offline_shop-a.example"`
	TenantDomain string     `json:"tenant_domain" binding:"required" example:"shop-a.example"`
	IsOnline     bool       `json:"is_online"`
	UserID       string     `json:"user_id,omitempty"`
	Scope        string     `json:"scope" example:"read_products"`
	AccessToken  string     `json:"access_token" binding:"required"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

// SessionView is a session with its token masked.
type SessionView struct {
	ID           string     `json:"id"`
	TenantDomain string     `json:"tenant_domain"`
	IsOnline     bool       `json:"is_online"`
	UserID       string     `json:"user_id,omitempty"`
	Scope        string     `json:"scope"`
	AccessToken  string     `json:"access_token" example:"shpa****9f2c"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// UninstallResult reports what an uninstall removed.
type UninstallResult struct {
	TenantDomain    string `json:"tenant_domain"`
	SessionsDeleted int    `json:"sessions_deleted"`
	BindingsDeleted int    `json:"bindings_deleted"`
}

// AdminHandler exposes provisioning operations to the install flow and operators.
type AdminHandler struct {
	resolver *tenant.Resolver
	sessions session.Store
	log      zerolog.Logger
}

// NewAdminHandler wires dependencies for the admin routes.
func NewAdminHandler(resolver *tenant.Resolver, sessions session.Store, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		resolver: resolver,
		sessions: sessions,
		log:      log.With().Str("component", "admin-handler").Logger(),
	}
}

func (h *AdminHandler) BindAssistant(ctx context.Context, assistantID string, req BindAssistantRequest) (*tenant.AssistantBinding, error) {
	binding, err := h.resolver.Bind(ctx, assistantID, req.TenantDomain)
	if err != nil {
		if errors.Is(err, tenant.ErrInvalidBinding) {
			return nil, h.fail(ctx, platformerrors.ErrorTypeMalformedRequest, "bind assistant", err)
		}
		return nil, h.fail(ctx, platformerrors.ErrorTypeDatabaseError, "bind assistant", err)
	}
	h.log.Info().Str("assistant_id", binding.AssistantID).Str("tenant", binding.TenantDomain).Msg("assistant bound")
	return binding, nil
}

func (h *AdminHandler) UnbindAssistant(ctx context.Context, assistantID string) error {
	if err := h.resolver.Unbind(ctx, assistantID); err != nil {
		return h.fail(ctx, platformerrors.ErrorTypeDatabaseError, "unbind assistant", err)
	}
	return nil
}

func (h *AdminHandler) StoreSession(ctx context.Context, req StoreSessionRequest) (*SessionView, error) {
	domain := session.NormalizeTenantDomain(req.TenantDomain)
	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = session.OfflineID(domain)
		if req.IsOnline {
			id = session.OnlineID(domain, req.UserID)
		}
	}

	s := &session.Session{
		ID:           id,
		TenantDomain: domain,
		IsOnline:     req.IsOnline,
		UserID:       req.UserID,
		Scope:        req.Scope,
		AccessToken:  req.AccessToken,
		ExpiresAt:    req.ExpiresAt,
	}
	if err := h.sessions.Store(ctx, s); err != nil {
		if errors.Is(err, session.ErrInvalid) {
			return nil, h.fail(ctx, platformerrors.ErrorTypeMalformedRequest, "store session", err)
		}
		return nil, h.fail(ctx, platformerrors.ErrorTypeDatabaseError, "store session", err)
	}

	stored, err := h.sessions.Load(ctx, id)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			// Stored with an expiry that has already passed.
			return nil, h.fail(ctx, platformerrors.ErrorTypeMalformedRequest, "session is already expired", err)
		}
		return nil, h.fail(ctx, platformerrors.ErrorTypeDatabaseError, "reload session", err)
	}
	h.log.Info().Str("session_id", stored.ID).Str("tenant", stored.TenantDomain).
		Str("access_token", redact.Token(stored.AccessToken)).Msg("session stored")
	view := toSessionView(*stored)
	return &view, nil
}

func (h *AdminHandler) DeleteSession(ctx context.Context, sessionID string) error {
	if err := h.sessions.Delete(ctx, sessionID); err != nil {
		return h.fail(ctx, platformerrors.ErrorTypeDatabaseError, "delete session", err)
	}
	return nil
}

// UninstallTenant removes every session and binding of the tenant.
func (h *AdminHandler) UninstallTenant(ctx context.Context, tenantDomain string) (*UninstallResult, error) {
	domain := session.NormalizeTenantDomain(tenantDomain)
	if domain == "" {
		return nil, h.fail(ctx, platformerrors.ErrorTypeMalformedRequest, "tenant domain is required", nil)
	}

	sessions, err := h.sessions.DeleteByTenant(ctx, domain)
	if err != nil {
		return nil, h.fail(ctx, platformerrors.ErrorTypeDatabaseError, "delete tenant sessions", err)
	}
	bindings, err := h.resolver.UnbindTenant(ctx, domain)
	if err != nil {
		return nil, h.fail(ctx, platformerrors.ErrorTypeDatabaseError, "delete tenant bindings", err)
	}

	h.log.Info().Str("tenant", domain).Int("sessions", sessions).Int("bindings", bindings).Msg("tenant uninstalled")
	return &UninstallResult{TenantDomain: domain, SessionsDeleted: sessions, BindingsDeleted: bindings}, nil
}

func (h *AdminHandler) ListSessions(ctx context.Context, tenantDomain string) ([]SessionView, error) {
	sessions, err := h.sessions.FindByTenant(ctx, tenantDomain)
	if err != nil {
		return nil, h.fail(ctx, platformerrors.ErrorTypeDatabaseError, "list sessions", err)
	}
	views := make([]SessionView, 0, len(sessions))
	for _, s := range sessions {
		views = append(views, toSessionView(s))
	}
	return views, nil
}

func (h *AdminHandler) fail(ctx context.Context, errorType platformerrors.ErrorType, message string, err error) error {
	perr := platformerrors.NewError(ctx, platformerrors.LayerHandler, errorType, message, err)
	if err != nil && errorType == platformerrors.ErrorTypeMalformedRequest {
		perr.Message = message + ": " + err.Error()
	}
	platformerrors.LogError(h.log, perr)
	return perr
}

func toSessionView(s session.Session) SessionView {
	return SessionView{
		ID:           s.ID,
		TenantDomain: s.TenantDomain,
		IsOnline:     s.IsOnline,
		UserID:       s.UserID,
		Scope:        s.Scope,
		AccessToken:  redact.Token(s.AccessToken),
		ExpiresAt:    s.ExpiresAt,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}
