package binding

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/shopvoice/function-gateway/internal/domain/tenant"
	"github.com/shopvoice/function-gateway/internal/infrastructure/database/entities"
)

// PostgresRepository persists assistant bindings via PostgreSQL using GORM.
type PostgresRepository struct {
	db *gorm.DB
}

// NewPostgresRepository creates a repository backed by the provided DB.
func NewPostgresRepository(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, b domain.AssistantBinding) error {
	record := entities.AssistantBinding{
		AssistantID:  b.AssistantID,
		TenantDomain: b.TenantDomain,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "assistant_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"tenant_domain", "updated_at"}),
		}).
		Create(&record).Error
}

func (r *PostgresRepository) FindByAssistantID(ctx context.Context, assistantID string) (*domain.AssistantBinding, error) {
	var record entities.AssistantBinding
	err := r.db.WithContext(ctx).Where("assistant_id = ?", assistantID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBindingNotFound
		}
		return nil, err
	}
	return &domain.AssistantBinding{
		AssistantID:  record.AssistantID,
		TenantDomain: record.TenantDomain,
		CreatedAt:    record.CreatedAt,
		UpdatedAt:    record.UpdatedAt,
	}, nil
}

func (r *PostgresRepository) DeleteByAssistantID(ctx context.Context, assistantID string) error {
	return r.db.WithContext(ctx).
		Where("assistant_id = ?", assistantID).
		Delete(&entities.AssistantBinding{}).Error
}

func (r *PostgresRepository) DeleteByTenant(ctx context.Context, tenantDomain string) (int, error) {
	result := r.db.WithContext(ctx).
		Where("tenant_domain = ?", tenantDomain).
		Delete(&entities.AssistantBinding{})
	return int(result.RowsAffected), result.Error
}
