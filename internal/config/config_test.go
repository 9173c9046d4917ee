package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("FUNCTION_API_KEY", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "function-gateway", cfg.ServiceName)
	assert.Equal(t, StoreBackendPostgres, cfg.StoreBackend)
	assert.Equal(t, 4*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 3*time.Second, cfg.StorefrontTimeout)
	assert.Equal(t, 5, cfg.DefaultProductLimit)
	assert.Equal(t, 25, cfg.MaxProductLimit)
	assert.Equal(t, ":8090", cfg.Addr())
	assert.False(t, cfg.AdminEnabled())
}

func TestLoad_RequiresFunctionAPIKey(t *testing.T) {
	t.Setenv("FUNCTION_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FUNCTION_API_KEY")
}

func TestLoad_RejectsUnknownBackend(t *testing.T) {
	t.Setenv("FUNCTION_API_KEY", "secret")
	t.Setenv("STORE_BACKEND", "mongo")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORE_BACKEND")
}

func TestLoad_AuthRequiresIssuer(t *testing.T) {
	t.Setenv("FUNCTION_API_KEY", "secret")
	t.Setenv("AUTH_ENABLED", "true")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUTH_ISSUER")
}

func TestLoad_StorefrontTimeoutBoundedByRequestTimeout(t *testing.T) {
	t.Setenv("FUNCTION_API_KEY", "secret")
	t.Setenv("REQUEST_TIMEOUT", "2s")
	t.Setenv("STOREFRONT_TIMEOUT", "5s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, cfg.StorefrontTimeout)
}

func TestLoad_AllowedSuffixes(t *testing.T) {
	t.Setenv("FUNCTION_API_KEY", "secret")
	t.Setenv("STOREFRONT_ALLOWED_DOMAIN_SUFFIXES", ".myshopify.com,.example")
	t.Setenv("ADMIN_API_KEY", "admin")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{".myshopify.com", ".example"}, cfg.StorefrontAllowedSuffixes)
	assert.True(t, cfg.AdminEnabled())
}

func TestLoadForTooling_NoFunctionKey(t *testing.T) {
	t.Setenv("FUNCTION_API_KEY", "")
	t.Setenv("STORE_BACKEND", "Redis")

	cfg, err := LoadForTooling()
	require.NoError(t, err)
	assert.Equal(t, StoreBackendRedis, cfg.StoreBackend)
}
