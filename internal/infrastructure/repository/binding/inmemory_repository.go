package binding

import (
	"context"
	"sync"

	domain "github.com/shopvoice/function-gateway/internal/domain/tenant"
)

// InMemoryRepository is a thread-safe binding repository for local runs and tests.
type InMemoryRepository struct {
	mu       sync.RWMutex
	bindings map[string]domain.AssistantBinding
}

// NewInMemoryRepository creates an empty repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{bindings: make(map[string]domain.AssistantBinding)}
}

func (r *InMemoryRepository) Upsert(ctx context.Context, b domain.AssistantBinding) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bindings[b.AssistantID] = b
	return nil
}

func (r *InMemoryRepository) FindByAssistantID(ctx context.Context, assistantID string) (*domain.AssistantBinding, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.bindings[assistantID]
	if !ok {
		return nil, domain.ErrBindingNotFound
	}
	return &b, nil
}

func (r *InMemoryRepository) DeleteByAssistantID(ctx context.Context, assistantID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.bindings, assistantID)
	return nil
}

func (r *InMemoryRepository) DeleteByTenant(ctx context.Context, tenantDomain string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for id, b := range r.bindings {
		if b.TenantDomain == tenantDomain {
			delete(r.bindings, id)
			n++
		}
	}
	return n, nil
}
