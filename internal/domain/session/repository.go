package session

import "context"

// Repository is the backing store contract. Implementations must make a write
// visible to every subsequent read from any instance and must not cache.
type Repository interface {
	// Upsert inserts or replaces the record with the same ID.
	Upsert(ctx context.Context, s Session) error
	// FindByID returns ErrNotFound when no record exists. Expiry is not checked.
	FindByID(ctx context.Context, id string) (*Session, error)
	// FindByTenant returns every record of the tenant, expired ones included.
	FindByTenant(ctx context.Context, tenantDomain string) ([]Session, error)
	// DeleteByIDs removes records; unknown ids are ignored.
	DeleteByIDs(ctx context.Context, ids ...string) error
}
