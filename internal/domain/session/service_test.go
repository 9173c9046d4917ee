package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopvoice/function-gateway/internal/domain/session"
	repo "github.com/shopvoice/function-gateway/internal/infrastructure/repository/session"
	"github.com/shopvoice/function-gateway/internal/utils/crypto"
)

type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time { return c.now }

func newStore(t *testing.T, opts ...session.Option) (session.Store, *repo.InMemoryRepository, *fixedClock) {
	t.Helper()
	clock := &fixedClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	r := repo.NewInMemoryRepository()
	opts = append([]session.Option{session.WithClock(clock.Now)}, opts...)
	return session.NewService(r, zerolog.Nop(), opts...), r, clock
}

func offlineSession(domain, token string) *session.Session {
	return &session.Session{
		ID:           session.OfflineID(domain),
		TenantDomain: domain,
		Scope:        "read_products",
		AccessToken:  token,
	}
}

func TestNormalizeTenantDomain(t *testing.T) {
	tests := map[string]string{
		"shop-a.example":                  "shop-a.example",
		"  Shop-A.Example ":               "shop-a.example",
		"https://shop-a.example/":         "shop-a.example",
		"HTTP://shop-a.example/admin?x=1": "shop-a.example",
		"shop-a.example.":                 "shop-a.example",
	}
	for in, want := range tests {
		assert.Equal(t, want, session.NormalizeTenantDomain(in), in)
	}
}

func TestSessionIDs(t *testing.T) {
	assert.Equal(t, "offline_shop-a.example", session.OfflineID("https://Shop-A.example"))
	assert.Equal(t, "online_shop-a.example_42", session.OnlineID("shop-a.example", "42"))
}

func TestStore_LoadRoundTrip(t *testing.T) {
	store, _, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Store(ctx, offlineSession("shop-a.example", "tok_abc")))

	got, err := store.Load(ctx, "offline_shop-a.example")
	require.NoError(t, err)
	assert.Equal(t, "tok_abc", got.AccessToken)
	assert.Equal(t, "shop-a.example", got.TenantDomain)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestStore_NormalizesDomain(t *testing.T) {
	store, _, _ := newStore(t)
	ctx := context.Background()

	s := offlineSession("shop-a.example", "tok_abc")
	s.TenantDomain = "https://SHOP-A.example/"
	require.NoError(t, store.Store(ctx, s))

	sessions, err := store.FindByTenant(ctx, "shop-a.example")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "shop-a.example", sessions[0].TenantDomain)
}

func TestStore_Idempotent(t *testing.T) {
	store, r, _ := newStore(t)
	ctx := context.Background()

	s := offlineSession("shop-a.example", "tok_abc")
	require.NoError(t, store.Store(ctx, s))
	require.NoError(t, store.Store(ctx, s))

	sessions, err := store.FindByTenant(ctx, "shop-a.example")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "tok_abc", sessions[0].AccessToken)
	assert.Equal(t, 1, r.Len())
}

func TestStore_Validation(t *testing.T) {
	store, r, _ := newStore(t)
	ctx := context.Background()

	tests := []struct {
		name string
		s    *session.Session
	}{
		{"nil", nil},
		{"missing id", &session.Session{TenantDomain: "shop-a.example", AccessToken: "x"}},
		{"missing domain", &session.Session{ID: "offline_shop-a.example", AccessToken: "x"}},
		{"id for another tenant", &session.Session{ID: "offline_shop-b.example", TenantDomain: "shop-a.example", AccessToken: "x"}},
		{"online without expiry", &session.Session{ID: "online_shop-a.example_1", TenantDomain: "shop-a.example", IsOnline: true, UserID: "1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, store.Store(ctx, tt.s), session.ErrInvalid)
		})
	}
	assert.Equal(t, 0, r.Len())
}

func TestLoad_Missing(t *testing.T) {
	store, _, _ := newStore(t)

	_, err := store.Load(context.Background(), "offline_nobody.example")
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestLoad_ExpiredIsAbsentAndPurged(t *testing.T) {
	store, r, clock := newStore(t)
	ctx := context.Background()

	past := clock.now.Add(-time.Second)
	require.NoError(t, store.Store(ctx, &session.Session{
		ID:           session.OnlineID("shop-a.example", "7"),
		TenantDomain: "shop-a.example",
		IsOnline:     true,
		UserID:       "7",
		AccessToken:  "tok_user",
		ExpiresAt:    &past,
	}))
	require.Equal(t, 1, r.Len())

	_, err := store.Load(ctx, "online_shop-a.example_7")
	assert.ErrorIs(t, err, session.ErrNotFound)
	assert.Equal(t, 0, r.Len(), "expired session should be purged on load")
}

func TestLoad_ExpiryBoundary(t *testing.T) {
	store, _, clock := newStore(t)
	ctx := context.Background()

	expires := clock.now.Add(time.Minute)
	require.NoError(t, store.Store(ctx, &session.Session{
		ID:           session.OnlineID("shop-a.example", "7"),
		TenantDomain: "shop-a.example",
		IsOnline:     true,
		UserID:       "7",
		AccessToken:  "tok_user",
		ExpiresAt:    &expires,
	}))

	clock.now = expires.Add(-time.Nanosecond)
	_, err := store.Load(ctx, "online_shop-a.example_7")
	require.NoError(t, err)

	clock.now = expires
	_, err = store.Load(ctx, "online_shop-a.example_7")
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestFindByTenant_FiltersExpiredAndOrdersByRecency(t *testing.T) {
	store, r, clock := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Store(ctx, offlineSession("shop-a.example", "tok_offline")))

	clock.now = clock.now.Add(time.Minute)
	future := clock.now.Add(time.Hour)
	require.NoError(t, store.Store(ctx, &session.Session{
		ID: session.OnlineID("shop-a.example", "1"), TenantDomain: "shop-a.example",
		IsOnline: true, UserID: "1", AccessToken: "tok_1", ExpiresAt: &future,
	}))

	soon := clock.now.Add(time.Second)
	require.NoError(t, store.Store(ctx, &session.Session{
		ID: session.OnlineID("shop-a.example", "2"), TenantDomain: "shop-a.example",
		IsOnline: true, UserID: "2", AccessToken: "tok_2", ExpiresAt: &soon,
	}))
	require.NoError(t, store.Store(ctx, offlineSession("shop-b.example", "tok_b")))

	clock.now = clock.now.Add(2 * time.Second)

	sessions, err := store.FindByTenant(ctx, "shop-a.example")
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "online_shop-a.example_1", sessions[0].ID)
	assert.Equal(t, "offline_shop-a.example", sessions[1].ID)
	assert.Equal(t, 3, r.Len(), "expired online session should be purged")
}

func TestDeleteAndDeleteMany(t *testing.T) {
	store, r, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Store(ctx, offlineSession("shop-a.example", "a")))
	require.NoError(t, store.Store(ctx, offlineSession("shop-b.example", "b")))
	require.NoError(t, store.Store(ctx, offlineSession("shop-c.example", "c")))

	require.NoError(t, store.Delete(ctx, "offline_shop-a.example"))
	require.NoError(t, store.Delete(ctx, "offline_shop-a.example"), "deleting twice is not an error")
	require.NoError(t, store.DeleteMany(ctx, []string{"offline_shop-b.example", "offline_missing.example"}))
	require.NoError(t, store.DeleteMany(ctx, nil))

	assert.Equal(t, 1, r.Len())
}

func TestDeleteByTenant(t *testing.T) {
	store, r, clock := newStore(t)
	ctx := context.Background()

	past := clock.now.Add(-time.Hour)
	require.NoError(t, store.Store(ctx, offlineSession("shop-a.example", "a")))
	require.NoError(t, store.Store(ctx, &session.Session{
		ID: session.OnlineID("shop-a.example", "1"), TenantDomain: "shop-a.example",
		IsOnline: true, UserID: "1", AccessToken: "x", ExpiresAt: &past,
	}))
	require.NoError(t, store.Store(ctx, offlineSession("shop-b.example", "b")))

	n, err := store.DeleteByTenant(ctx, "SHOP-A.example")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, r.Len())
}

func TestStore_SealsTokensAtRest(t *testing.T) {
	cipher, err := crypto.NewTokenCipher("test-encryption-key")
	require.NoError(t, err)
	store, r, _ := newStore(t, session.WithSealer(cipher))
	ctx := context.Background()

	require.NoError(t, store.Store(ctx, offlineSession("shop-a.example", "tok_abc")))

	raw, err := r.FindByID(ctx, "offline_shop-a.example")
	require.NoError(t, err)
	assert.NotEqual(t, "tok_abc", raw.AccessToken)

	got, err := store.Load(ctx, "offline_shop-a.example")
	require.NoError(t, err)
	assert.Equal(t, "tok_abc", got.AccessToken)
}

type failingRepository struct {
	*repo.InMemoryRepository
	err error
}

func (f failingRepository) Upsert(ctx context.Context, s session.Session) error { return f.err }

func TestStore_PropagatesRepositoryErrors(t *testing.T) {
	boom := errors.New("connection refused")
	store := session.NewService(failingRepository{repo.NewInMemoryRepository(), boom}, zerolog.Nop())

	err := store.Store(context.Background(), offlineSession("shop-a.example", "tok"))
	assert.ErrorIs(t, err, boom)
}
