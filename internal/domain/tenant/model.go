package tenant

import (
	"errors"
	"time"
)

var (
	// ErrUnknownTenant means no binding exists for the assistant id.
	ErrUnknownTenant = errors.New("assistant is not bound to any tenant")
	// ErrMissingCredential means the tenant is bound but has no usable access token.
	ErrMissingCredential = errors.New("tenant has no usable credential")
	// ErrBindingNotFound is returned by repositories for absent bindings.
	ErrBindingNotFound = errors.New("assistant binding not found")
	// ErrInvalidBinding means Bind was called without an assistant id or tenant.
	ErrInvalidBinding = errors.New("invalid assistant binding")
)

// AssistantBinding maps a voice assistant id to the tenant that provisioned it.
type AssistantBinding struct {
	AssistantID  string    `json:"assistant_id"`
	TenantDomain string    `json:"tenant_domain"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Credential is what a dispatch needs to talk to one tenant's storefront.
type Credential struct {
	TenantDomain string
	AccessToken  string
	SessionID    string
}
