package tenant

import "context"

// BindingRepository persists assistant bindings, one per assistant id.
type BindingRepository interface {
	// Upsert replaces any previous binding of the same assistant id.
	Upsert(ctx context.Context, b AssistantBinding) error
	// FindByAssistantID returns ErrBindingNotFound when absent.
	FindByAssistantID(ctx context.Context, assistantID string) (*AssistantBinding, error)
	DeleteByAssistantID(ctx context.Context, assistantID string) error
	// DeleteByTenant removes every binding of the tenant and reports how many.
	DeleteByTenant(ctx context.Context, tenantDomain string) (int, error)
}
