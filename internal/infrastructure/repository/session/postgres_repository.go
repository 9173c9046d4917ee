package session

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/shopvoice/function-gateway/internal/domain/session"
	"github.com/shopvoice/function-gateway/internal/infrastructure/database/entities"
)

// PostgresRepository persists sessions via PostgreSQL using GORM.
type PostgresRepository struct {
	db *gorm.DB
}

// NewPostgresRepository creates a repository backed by the provided DB.
func NewPostgresRepository(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, s domain.Session) error {
	record := toEntity(s)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"tenant_domain", "is_online", "user_id", "scope", "access_token", "expires_at", "updated_at",
			}),
		}).
		Create(&record).Error
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*domain.Session, error) {
	var record entities.Session
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	s := toDomain(record)
	return &s, nil
}

func (r *PostgresRepository) FindByTenant(ctx context.Context, tenantDomain string) ([]domain.Session, error) {
	var records []entities.Session
	err := r.db.WithContext(ctx).
		Where("tenant_domain = ?", tenantDomain).
		Order("updated_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.Session, 0, len(records))
	for _, rec := range records {
		out = append(out, toDomain(rec))
	}
	return out, nil
}

func (r *PostgresRepository) DeleteByIDs(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&entities.Session{}).Error
}

func toEntity(s domain.Session) entities.Session {
	return entities.Session{
		ID:           s.ID,
		TenantDomain: s.TenantDomain,
		IsOnline:     s.IsOnline,
		UserID:       s.UserID,
		Scope:        s.Scope,
		AccessToken:  s.AccessToken,
		ExpiresAt:    s.ExpiresAt,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

func toDomain(e entities.Session) domain.Session {
	return domain.Session{
		ID:           e.ID,
		TenantDomain: e.TenantDomain,
		IsOnline:     e.IsOnline,
		UserID:       e.UserID,
		Scope:        e.Scope,
		AccessToken:  e.AccessToken,
		ExpiresAt:    e.ExpiresAt,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}
