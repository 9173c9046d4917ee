package tenant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/shopvoice/function-gateway/internal/domain/session"
)

// SessionLoader is the slice of the session store the resolver reads from.
type SessionLoader interface {
	Load(ctx context.Context, id string) (*session.Session, error)
	FindByTenant(ctx context.Context, tenantDomain string) ([]session.Session, error)
}

// Resolver turns an assistant id into the tenant credential to dispatch with.
// The binding and the credential have independent lifecycles: a tenant can
// reinstall and receive a new token without re-provisioning its assistant.
type Resolver struct {
	bindings BindingRepository
	sessions SessionLoader
	now      func() time.Time
	log      zerolog.Logger
}

// NewResolver wires the resolver with its stores.
func NewResolver(bindings BindingRepository, sessions SessionLoader, log zerolog.Logger) *Resolver {
	return &Resolver{
		bindings: bindings,
		sessions: sessions,
		now:      time.Now,
		log:      log.With().Str("component", "tenant-resolver").Logger(),
	}
}

// ResolveByAssistant returns ErrUnknownTenant when the assistant id is not
// bound, and ErrMissingCredential when it is bound but no session carries a
// token. It never substitutes another tenant's credential.
func (r *Resolver) ResolveByAssistant(ctx context.Context, assistantID string) (Credential, error) {
	assistantID = strings.TrimSpace(assistantID)
	if assistantID == "" {
		return Credential{}, ErrUnknownTenant
	}

	binding, err := r.bindings.FindByAssistantID(ctx, assistantID)
	if err != nil {
		if errors.Is(err, ErrBindingNotFound) {
			return Credential{}, ErrUnknownTenant
		}
		return Credential{}, fmt.Errorf("find assistant binding: %w", err)
	}

	domain := binding.TenantDomain
	offline, err := r.sessions.Load(ctx, session.OfflineID(domain))
	switch {
	case err == nil && offline.HasToken():
		return credentialFrom(offline), nil
	case err != nil && !errors.Is(err, session.ErrNotFound):
		return Credential{}, fmt.Errorf("load offline session: %w", err)
	}

	sessions, err := r.sessions.FindByTenant(ctx, domain)
	if err != nil {
		return Credential{}, fmt.Errorf("find tenant sessions: %w", err)
	}
	for i := range sessions {
		if sessions[i].HasToken() {
			return credentialFrom(&sessions[i]), nil
		}
	}

	r.log.Debug().
		Str("assistant_id", assistantID).
		Str("tenant", domain).
		Int("sessions", len(sessions)).
		Msg("bound tenant has no usable session")
	return Credential{TenantDomain: domain}, ErrMissingCredential
}

// Bind records (or replaces) the tenant an assistant belongs to.
func (r *Resolver) Bind(ctx context.Context, assistantID, tenantDomain string) (*AssistantBinding, error) {
	assistantID = strings.TrimSpace(assistantID)
	domain := session.NormalizeTenantDomain(tenantDomain)
	if assistantID == "" {
		return nil, fmt.Errorf("%w: assistant id is required", ErrInvalidBinding)
	}
	if domain == "" {
		return nil, fmt.Errorf("%w: tenant domain is required", ErrInvalidBinding)
	}

	now := r.now().UTC()
	binding := AssistantBinding{
		AssistantID:  assistantID,
		TenantDomain: domain,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if existing, err := r.bindings.FindByAssistantID(ctx, assistantID); err == nil {
		binding.CreatedAt = existing.CreatedAt
		if existing.TenantDomain != domain {
			r.log.Info().
				Str("assistant_id", assistantID).
				Str("previous_tenant", existing.TenantDomain).
				Str("tenant", domain).
				Msg("assistant re-provisioned for a different tenant")
		}
	} else if !errors.Is(err, ErrBindingNotFound) {
		return nil, fmt.Errorf("find assistant binding: %w", err)
	}

	if err := r.bindings.Upsert(ctx, binding); err != nil {
		return nil, fmt.Errorf("store assistant binding: %w", err)
	}
	return &binding, nil
}

// Unbind removes the assistant's binding. Unknown ids are not an error.
func (r *Resolver) Unbind(ctx context.Context, assistantID string) error {
	if err := r.bindings.DeleteByAssistantID(ctx, strings.TrimSpace(assistantID)); err != nil {
		return fmt.Errorf("delete assistant binding: %w", err)
	}
	return nil
}

// UnbindTenant removes every assistant bound to the tenant.
func (r *Resolver) UnbindTenant(ctx context.Context, tenantDomain string) (int, error) {
	n, err := r.bindings.DeleteByTenant(ctx, session.NormalizeTenantDomain(tenantDomain))
	if err != nil {
		return 0, fmt.Errorf("delete tenant bindings: %w", err)
	}
	return n, nil
}

func credentialFrom(s *session.Session) Credential {
	return Credential{
		TenantDomain: s.TenantDomain,
		AccessToken:  s.AccessToken,
		SessionID:    s.ID,
	}
}
