package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopvoice/function-gateway/internal/config"
	"github.com/shopvoice/function-gateway/internal/domain/session"
	"github.com/shopvoice/function-gateway/internal/domain/tenant"
)

func TestOpen_Memory(t *testing.T) {
	stores, err := Open(context.Background(), &config.Config{StoreBackend: config.StoreBackendMemory}, zerolog.Nop())
	require.NoError(t, err)
	defer stores.Close()

	assert.Equal(t, config.StoreBackendMemory, stores.Backend)
	assert.NoError(t, stores.Ping(context.Background()))
}

func TestOpen_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	stores, err := Open(ctx, &config.Config{
		StoreBackend: config.StoreBackendRedis,
		RedisURL:     "redis://" + mr.Addr() + "/0",
	}, zerolog.Nop())
	require.NoError(t, err)
	defer stores.Close()

	require.NoError(t, stores.Ping(ctx))

	now := time.Now().UTC()
	require.NoError(t, stores.Bindings.Upsert(ctx, tenant.AssistantBinding{
		AssistantID: "ast_1", TenantDomain: "shop-a.example", CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, stores.Sessions.Upsert(ctx, session.Session{
		ID: "offline_shop-a.example", TenantDomain: "shop-a.example", AccessToken: "tok", CreatedAt: now, UpdatedAt: now,
	}))
	assert.True(t, mr.Exists("fngw:assistant_binding:ast_1"))
	assert.True(t, mr.Exists("fngw:session:offline_shop-a.example"))

	mr.Close()
	assert.Error(t, stores.Ping(ctx))
}

func TestOpen_RedisUnreachable(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{
		StoreBackend: config.StoreBackendRedis,
		RedisURL:     "redis://127.0.0.1:1/0",
	}, zerolog.Nop())
	assert.Error(t, err)
}

func TestOpen_BadRedisURL(t *testing.T) {
	_, err := NewRedisClient(context.Background(), "not a url")
	assert.ErrorContains(t, err, "parse REDIS_URL")
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{StoreBackend: "mongo"}, zerolog.Nop())
	assert.ErrorContains(t, err, "unsupported store backend")
}
