package session

import (
	"context"
	"sync"

	domain "github.com/shopvoice/function-gateway/internal/domain/session"
)

// InMemoryRepository is a thread-safe repository useful for local runs and tests.
type InMemoryRepository struct {
	mu      sync.RWMutex
	records map[string]domain.Session
}

// NewInMemoryRepository creates an empty repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{records: make(map[string]domain.Session)}
}

func (r *InMemoryRepository) Upsert(ctx context.Context, s domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[s.ID] = cloneSession(s)
	return nil
}

func (r *InMemoryRepository) FindByID(ctx context.Context, id string) (*domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := cloneSession(rec)
	return &out, nil
}

func (r *InMemoryRepository) FindByTenant(ctx context.Context, tenantDomain string) ([]domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Session
	for _, rec := range r.records {
		if rec.TenantDomain == tenantDomain {
			out = append(out, cloneSession(rec))
		}
	}
	return out, nil
}

func (r *InMemoryRepository) DeleteByIDs(ctx context.Context, ids ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		delete(r.records, id)
	}
	return nil
}

// Len returns the number of stored records, expired ones included.
func (r *InMemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

func cloneSession(s domain.Session) domain.Session {
	if s.ExpiresAt != nil {
		t := *s.ExpiresAt
		s.ExpiresAt = &t
	}
	return s
}
