package session

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a session does not exist or has expired.
	ErrNotFound = errors.New("session not found")
	// ErrInvalid wraps every validation failure in Store.
	ErrInvalid = errors.New("invalid session")
)

const (
	offlinePrefix = "offline_"
	onlinePrefix  = "online_"
)

// Session is one OAuth-issued credential for one tenant.
type Session struct {
	ID           string     `json:"id" validate:"required"`
	TenantDomain string     `json:"tenant_domain" validate:"required,hostname_rfc1123"`
	IsOnline     bool       `json:"is_online"`
	UserID       string     `json:"user_id,omitempty" validate:"required_if=IsOnline true"`
	Scope        string     `json:"scope"`
	AccessToken  string     `json:"-"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty" validate:"required_if=IsOnline true"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// IsExpired reports whether the session is unusable at now. A session expiring
// exactly at now counts as expired.
func (s *Session) IsExpired(now time.Time) bool {
	return s.ExpiresAt != nil && !s.ExpiresAt.After(now)
}

// HasToken reports whether the session carries a usable access token.
func (s *Session) HasToken() bool {
	return strings.TrimSpace(s.AccessToken) != ""
}

// OfflineID is the id of the shop-level credential for a tenant.
func OfflineID(tenantDomain string) string {
	return offlinePrefix + NormalizeTenantDomain(tenantDomain)
}

// OnlineID is the id of a per-user credential.
func OnlineID(tenantDomain, userID string) string {
	return onlinePrefix + NormalizeTenantDomain(tenantDomain) + "_" + userID
}

// NormalizeTenantDomain lower-cases a storefront domain and strips the scheme,
// any path and a trailing dot.
func NormalizeTenantDomain(raw string) string {
	domain := strings.ToLower(strings.TrimSpace(raw))
	if idx := strings.Index(domain, "://"); idx >= 0 {
		domain = domain[idx+3:]
	}
	if idx := strings.IndexAny(domain, "/?#"); idx >= 0 {
		domain = domain[:idx]
	}
	return strings.TrimSuffix(domain, ".")
}

// matchesTenant reports whether id belongs to tenantDomain under the id convention.
func matchesTenant(id, tenantDomain string) bool {
	switch {
	case strings.HasPrefix(id, offlinePrefix):
		return id == offlinePrefix+tenantDomain
	case strings.HasPrefix(id, onlinePrefix):
		return strings.HasPrefix(id, onlinePrefix+tenantDomain+"_")
	default:
		// Ids outside the convention are accepted as opaque.
		return true
	}
}
