package tenant_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopvoice/function-gateway/internal/domain/session"
	"github.com/shopvoice/function-gateway/internal/domain/tenant"
	bindingrepo "github.com/shopvoice/function-gateway/internal/infrastructure/repository/binding"
	sessionrepo "github.com/shopvoice/function-gateway/internal/infrastructure/repository/session"
)

type fixture struct {
	resolver *tenant.Resolver
	sessions session.Store
	bindings *bindingrepo.InMemoryRepository
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	bindings := bindingrepo.NewInMemoryRepository()
	sessions := session.NewService(sessionrepo.NewInMemoryRepository(), zerolog.Nop())
	return fixture{
		resolver: tenant.NewResolver(bindings, sessions, zerolog.Nop()),
		sessions: sessions,
		bindings: bindings,
	}
}

func TestResolveByAssistant_RoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct{ assistant, domain, token string }{
		{"ast_1", "shop-a.example", "tok_abc"},
		{"ast_2", "shop-b.example", "tok_def"},
		{"ast_3", "shop-a.example", "tok_abc"},
	}
	for _, c := range cases {
		_, err := f.resolver.Bind(ctx, c.assistant, c.domain)
		require.NoError(t, err)
		require.NoError(t, f.sessions.Store(ctx, &session.Session{
			ID:           session.OfflineID(c.domain),
			TenantDomain: c.domain,
			AccessToken:  c.token,
		}))
	}

	for _, c := range cases {
		cred, err := f.resolver.ResolveByAssistant(ctx, c.assistant)
		require.NoError(t, err, c.assistant)
		assert.Equal(t, c.domain, cred.TenantDomain)
		assert.Equal(t, c.token, cred.AccessToken)
		assert.Equal(t, session.OfflineID(c.domain), cred.SessionID)
	}
}

func TestResolveByAssistant_UnknownTenant(t *testing.T) {
	f := newFixture(t)

	_, err := f.resolver.ResolveByAssistant(context.Background(), "ast_missing")
	assert.ErrorIs(t, err, tenant.ErrUnknownTenant)

	_, err = f.resolver.ResolveByAssistant(context.Background(), "  ")
	assert.ErrorIs(t, err, tenant.ErrUnknownTenant)
}

func TestResolveByAssistant_MissingCredential(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.resolver.Bind(ctx, "ast_1", "shop-a.example")
	require.NoError(t, err)

	cred, err := f.resolver.ResolveByAssistant(ctx, "ast_1")
	assert.ErrorIs(t, err, tenant.ErrMissingCredential)
	assert.False(t, errors.Is(err, tenant.ErrUnknownTenant))
	assert.Equal(t, "shop-a.example", cred.TenantDomain)
	assert.Empty(t, cred.AccessToken)
}

func TestResolveByAssistant_EmptyTokenIsMissingCredential(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.resolver.Bind(ctx, "ast_1", "shop-a.example")
	require.NoError(t, err)
	require.NoError(t, f.sessions.Store(ctx, &session.Session{
		ID:           "offline_shop-a.example",
		TenantDomain: "shop-a.example",
	}))

	_, err = f.resolver.ResolveByAssistant(ctx, "ast_1")
	assert.ErrorIs(t, err, tenant.ErrMissingCredential)
}

func TestResolveByAssistant_FallsBackToOnlineSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.resolver.Bind(ctx, "ast_1", "shop-a.example")
	require.NoError(t, err)

	expires := time.Now().Add(time.Hour)
	require.NoError(t, f.sessions.Store(ctx, &session.Session{
		ID:           session.OnlineID("shop-a.example", "9"),
		TenantDomain: "shop-a.example",
		IsOnline:     true,
		UserID:       "9",
		AccessToken:  "tok_user",
		ExpiresAt:    &expires,
	}))

	cred, err := f.resolver.ResolveByAssistant(ctx, "ast_1")
	require.NoError(t, err)
	assert.Equal(t, "tok_user", cred.AccessToken)
	assert.Equal(t, "online_shop-a.example_9", cred.SessionID)
}

func TestResolveByAssistant_NeverUsesAnotherTenantsCredential(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.resolver.Bind(ctx, "ast_1", "shop-a.example")
	require.NoError(t, err)
	require.NoError(t, f.sessions.Store(ctx, &session.Session{
		ID:           "offline_shop-b.example",
		TenantDomain: "shop-b.example",
		AccessToken:  "tok_b",
	}))

	_, err = f.resolver.ResolveByAssistant(ctx, "ast_1")
	assert.ErrorIs(t, err, tenant.ErrMissingCredential)
}

func TestBind_ReprovisionOverwrites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.resolver.Bind(ctx, "ast_1", "shop-a.example")
	require.NoError(t, err)
	second, err := f.resolver.Bind(ctx, "ast_1", "https://Shop-B.example/")
	require.NoError(t, err)

	assert.Equal(t, "shop-b.example", second.TenantDomain)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)

	stored, err := f.bindings.FindByAssistantID(ctx, "ast_1")
	require.NoError(t, err)
	assert.Equal(t, "shop-b.example", stored.TenantDomain)
}

func TestBind_RequiresFields(t *testing.T) {
	f := newFixture(t)

	_, err := f.resolver.Bind(context.Background(), "", "shop-a.example")
	assert.ErrorIs(t, err, tenant.ErrInvalidBinding)
	_, err = f.resolver.Bind(context.Background(), "ast_1", " ")
	assert.ErrorIs(t, err, tenant.ErrInvalidBinding)
}

func TestUnbindAndUnbindTenant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, id := range []string{"ast_1", "ast_2"} {
		_, err := f.resolver.Bind(ctx, id, "shop-a.example")
		require.NoError(t, err)
	}
	_, err := f.resolver.Bind(ctx, "ast_3", "shop-b.example")
	require.NoError(t, err)

	require.NoError(t, f.resolver.Unbind(ctx, "ast_3"))
	require.NoError(t, f.resolver.Unbind(ctx, "ast_3"))

	n, err := f.resolver.UnbindTenant(ctx, "SHOP-A.example")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = f.resolver.ResolveByAssistant(ctx, "ast_1")
	assert.ErrorIs(t, err, tenant.ErrUnknownTenant)
}

type brokenBindings struct {
	tenant.BindingRepository
}

func (brokenBindings) FindByAssistantID(context.Context, string) (*tenant.AssistantBinding, error) {
	return nil, errors.New("connection reset")
}

func TestResolveByAssistant_RepositoryFailureIsNotUnknownTenant(t *testing.T) {
	sessions := session.NewService(sessionrepo.NewInMemoryRepository(), zerolog.Nop())
	r := tenant.NewResolver(brokenBindings{}, sessions, zerolog.Nop())

	_, err := r.ResolveByAssistant(context.Background(), "ast_1")
	require.Error(t, err)
	assert.False(t, errors.Is(err, tenant.ErrUnknownTenant))
}
