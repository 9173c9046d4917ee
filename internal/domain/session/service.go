package session

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// TokenSealer encrypts access tokens before they reach the repository.
type TokenSealer interface {
	Seal(plaintext string) (string, error)
	Open(value string) (string, error)
}

// Store describes the session storage surface used by the rest of the service.
type Store interface {
	Store(ctx context.Context, s *Session) error
	Load(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, ids []string) error
	FindByTenant(ctx context.Context, tenantDomain string) ([]Session, error)
	DeleteByTenant(ctx context.Context, tenantDomain string) (int, error)
}

type service struct {
	repo     Repository
	sealer   TokenSealer
	validate *validator.Validate
	now      func() time.Time
	log      zerolog.Logger
}

// Option customises the session service.
type Option func(*service)

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

// WithSealer encrypts tokens at rest.
func WithSealer(sealer TokenSealer) Option {
	return func(s *service) { s.sealer = sealer }
}

// NewService wires the session store with its repository.
func NewService(repo Repository, log zerolog.Logger, opts ...Option) Store {
	s := &service{
		repo:     repo,
		sealer:   plainSealer{},
		validate: validator.New(),
		now:      time.Now,
		log:      log.With().Str("component", "session-store").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.sealer == nil {
		s.sealer = plainSealer{}
	}
	return s
}

func (s *service) Store(ctx context.Context, sess *Session) error {
	if sess == nil {
		return fmt.Errorf("%w: session is nil", ErrInvalid)
	}

	record := *sess
	record.TenantDomain = NormalizeTenantDomain(record.TenantDomain)
	record.ID = strings.TrimSpace(record.ID)
	if err := s.validate.Struct(record); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if !matchesTenant(record.ID, record.TenantDomain) {
		return fmt.Errorf("%w: id %q does not belong to tenant %q", ErrInvalid, record.ID, record.TenantDomain)
	}

	now := s.now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now

	sealed, err := s.sealer.Seal(record.AccessToken)
	if err != nil {
		return fmt.Errorf("seal access token: %w", err)
	}
	record.AccessToken = sealed

	if err := s.repo.Upsert(ctx, record); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (s *service) Load(ctx context.Context, id string) (*Session, error) {
	sess, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if sess.IsExpired(s.now()) {
		s.purge(ctx, sess.ID)
		return nil, ErrNotFound
	}

	if err := s.open(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	return s.DeleteMany(ctx, []string{id})
}

func (s *service) DeleteMany(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.repo.DeleteByIDs(ctx, ids...); err != nil {
		return fmt.Errorf("delete sessions: %w", err)
	}
	return nil
}

func (s *service) FindByTenant(ctx context.Context, tenantDomain string) ([]Session, error) {
	records, err := s.repo.FindByTenant(ctx, NormalizeTenantDomain(tenantDomain))
	if err != nil {
		return nil, fmt.Errorf("find sessions by tenant: %w", err)
	}

	now := s.now()
	live := make([]Session, 0, len(records))
	var expired []string
	for i := range records {
		if records[i].IsExpired(now) {
			expired = append(expired, records[i].ID)
			continue
		}
		if err := s.open(&records[i]); err != nil {
			return nil, err
		}
		live = append(live, records[i])
	}
	if len(expired) > 0 {
		s.purge(ctx, expired...)
	}

	sort.SliceStable(live, func(i, j int) bool {
		return live[i].UpdatedAt.After(live[j].UpdatedAt)
	})
	return live, nil
}

func (s *service) DeleteByTenant(ctx context.Context, tenantDomain string) (int, error) {
	records, err := s.repo.FindByTenant(ctx, NormalizeTenantDomain(tenantDomain))
	if err != nil {
		return 0, fmt.Errorf("find sessions by tenant: %w", err)
	}
	ids := make([]string, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.ID)
	}
	if err := s.DeleteMany(ctx, ids); err != nil {
		return 0, err
	}
	return len(ids), nil
}

func (s *service) open(sess *Session) error {
	token, err := s.sealer.Open(sess.AccessToken)
	if err != nil {
		return fmt.Errorf("open access token for session %s: %w", sess.ID, err)
	}
	sess.AccessToken = token
	return nil
}

// purge removes expired records. A failure only delays cleanup, so it is logged.
func (s *service) purge(ctx context.Context, ids ...string) {
	if err := s.repo.DeleteByIDs(ctx, ids...); err != nil {
		s.log.Warn().Err(err).Strs("session_ids", ids).Msg("purge expired sessions")
		return
	}
	s.log.Debug().Strs("session_ids", ids).Msg("purged expired sessions")
}

type plainSealer struct{}

func (plainSealer) Seal(plaintext string) (string, error) { return plaintext, nil }
func (plainSealer) Open(value string) (string, error)     { return value, nil }
