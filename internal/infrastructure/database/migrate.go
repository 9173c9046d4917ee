package database

import (
	"context"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/shopvoice/function-gateway/internal/infrastructure/database/entities"
)

// AutoMigrate applies database schema changes for sessions and assistant bindings.
func AutoMigrate(ctx context.Context, db *gorm.DB, log zerolog.Logger) error {
	if err := db.WithContext(ctx).AutoMigrate(
		&entities.Session{},
		&entities.AssistantBinding{},
	); err != nil {
		return err
	}

	log.Info().Msg("database schema up to date")
	return nil
}
