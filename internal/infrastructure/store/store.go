// Package store opens the repositories for the configured STORE_BACKEND.
package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/shopvoice/function-gateway/internal/config"
	"github.com/shopvoice/function-gateway/internal/domain/session"
	"github.com/shopvoice/function-gateway/internal/domain/tenant"
	"github.com/shopvoice/function-gateway/internal/infrastructure/database"
	bindingrepo "github.com/shopvoice/function-gateway/internal/infrastructure/repository/binding"
	sessionrepo "github.com/shopvoice/function-gateway/internal/infrastructure/repository/session"
)

// Stores bundles the repositories of one backend with its lifecycle hooks.
type Stores struct {
	Backend  string
	Sessions session.Repository
	Bindings tenant.BindingRepository

	ping  func(ctx context.Context) error
	close func() error
}

// Ping checks the backend is reachable. It backs /readyz.
func (s *Stores) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

// Close releases connections held by the backend.
func (s *Stores) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// Open connects to the configured backend. Postgres is migrated on open.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Stores, error) {
	log = log.With().Str("component", "store").Str("backend", cfg.StoreBackend).Logger()

	switch cfg.StoreBackend {
	case config.StoreBackendMemory:
		log.Warn().Msg("in-memory store selected; sessions are lost on restart and not shared between instances")
		return &Stores{
			Backend:  config.StoreBackendMemory,
			Sessions: sessionrepo.NewInMemoryRepository(),
			Bindings: bindingrepo.NewInMemoryRepository(),
		}, nil

	case config.StoreBackendRedis:
		client, err := NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		log.Info().Msg("redis store ready")
		return &Stores{
			Backend:  config.StoreBackendRedis,
			Sessions: sessionrepo.NewRedisRepository(client, ""),
			Bindings: bindingrepo.NewRedisRepository(client, ""),
			ping:     func(ctx context.Context) error { return client.Ping(ctx).Err() },
			close:    client.Close,
		}, nil

	case config.StoreBackendPostgres:
		db, err := NewGormDB(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		return &Stores{
			Backend:  config.StoreBackendPostgres,
			Sessions: sessionrepo.NewPostgresRepository(db),
			Bindings: bindingrepo.NewPostgresRepository(db),
			ping:     func(ctx context.Context) error { return database.Ping(ctx, db) },
			close:    func() error { return database.Close(db) },
		}, nil
	}
	return nil, fmt.Errorf("unsupported store backend %q", cfg.StoreBackend)
}

// NewRedisClient parses a redis:// URL and verifies the server answers.
func NewRedisClient(ctx context.Context, rawURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return client, nil
}

// NewGormDB connects to PostgreSQL and applies the schema.
func NewGormDB(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*gorm.DB, error) {
	db, err := database.Connect(database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	})
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(ctx, db, log); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return db, nil
}
