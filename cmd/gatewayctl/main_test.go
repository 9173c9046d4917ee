package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/shopvoice/function-gateway/internal/domain/session"
	sessionrepo "github.com/shopvoice/function-gateway/internal/infrastructure/repository/session"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func useRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	t.Setenv("STORE_BACKEND", "redis")
	t.Setenv("REDIS_URL", "redis://"+mr.Addr()+"/0")
	t.Setenv("SESSION_ENCRYPTION_KEY", "")
	return mr
}

func seedSession(t *testing.T, mr *miniredis.Miniredis, domain, token string) {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := session.NewService(sessionrepo.NewRedisRepository(client, ""), zerolog.Nop())
	require.NoError(t, store.Store(context.Background(), &session.Session{
		ID:           session.OfflineID(domain),
		TenantDomain: domain,
		Scope:        "read_products",
		AccessToken:  token,
	}))
}

func TestFunctionsSchema(t *testing.T) {
	out, err := run(t, "functions", "schema", "--format", "json", "--compact")
	require.NoError(t, err)

	var descriptors []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &descriptors))
	require.Len(t, descriptors, 2)
	assert.Equal(t, "get_products", descriptors[0]["name"])
	assert.Equal(t, "search_products", descriptors[1]["name"])
}

func TestFunctionsSchema_YAML(t *testing.T) {
	out, err := run(t, "functions", "schema", "--format", "yaml")
	require.NoError(t, err)

	var descriptors []struct {
		Name       string         `yaml:"name"`
		Parameters map[string]any `yaml:"parameters"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &descriptors))
	require.Len(t, descriptors, 2)
	assert.Equal(t, "search_products", descriptors[1].Name)
	assert.Equal(t, []any{"query"}, descriptors[1].Parameters["required"])
}

func TestFunctionsSchema_UnknownFormat(t *testing.T) {
	_, err := run(t, "functions", "schema", "--format", "toml")
	assert.ErrorContains(t, err, "unsupported format")
}

func TestBindAndUnbind(t *testing.T) {
	mr := useRedis(t)

	out, err := run(t, "bind", "ast_1", "https://Shop-A.example/")
	require.NoError(t, err)
	assert.Equal(t, "bound ast_1 -> shop-a.example\n", out)
	assert.True(t, mr.Exists("fngw:assistant_binding:ast_1"))

	out, err = run(t, "unbind", "ast_1")
	require.NoError(t, err)
	assert.Equal(t, "unbound ast_1\n", out)
	assert.False(t, mr.Exists("fngw:assistant_binding:ast_1"))
}

func TestBind_RequiresArgs(t *testing.T) {
	_, err := run(t, "bind", "ast_1")
	assert.Error(t, err)
}

func TestSessionsListAndPurge(t *testing.T) {
	mr := useRedis(t)
	seedSession(t, mr, "shop-a.example", "shpat_0123456789")

	_, err := run(t, "bind", "ast_1", "shop-a.example")
	require.NoError(t, err)

	out, err := run(t, "sessions", "list", "shop-a.example")
	require.NoError(t, err)
	assert.Contains(t, out, "offline_shop-a.example")
	assert.Contains(t, out, "shpa****6789")
	assert.NotContains(t, out, "shpat_0123456789")

	out, err = run(t, "sessions", "purge", "shop-a.example", "--bindings")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted 1 session(s) of shop-a.example")
	assert.Contains(t, out, "removed 1 assistant binding(s)")

	out, err = run(t, "sessions", "list", "shop-a.example")
	require.NoError(t, err)
	assert.Equal(t, "no sessions\n", out)
	assert.False(t, mr.Exists("fngw:assistant_binding:ast_1"))
}
