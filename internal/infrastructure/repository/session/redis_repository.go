package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	domain "github.com/shopvoice/function-gateway/internal/domain/session"
)

const defaultKeyPrefix = "fngw:"

// RedisRepository keeps each session as a JSON string plus a per-tenant id set.
// Expiring sessions also get a native TTL; the domain layer still checks expiry
// itself, so the TTL only bounds storage growth.
type RedisRepository struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisRepository creates a repository on top of an existing client.
func NewRedisRepository(client redis.UniversalClient, keyPrefix string) *RedisRepository {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisRepository{client: client, prefix: keyPrefix}
}

type redisSession struct {
	ID           string     `json:"id"`
	TenantDomain string     `json:"tenant_domain"`
	IsOnline     bool       `json:"is_online"`
	UserID       string     `json:"user_id,omitempty"`
	Scope        string     `json:"scope"`
	AccessToken  string     `json:"access_token"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (r *RedisRepository) sessionKey(id string) string {
	return r.prefix + "session:" + id
}

func (r *RedisRepository) tenantKey(tenantDomain string) string {
	return r.prefix + "tenant_sessions:" + tenantDomain
}

func (r *RedisRepository) Upsert(ctx context.Context, s domain.Session) error {
	previous, err := r.FindByID(ctx, s.ID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	data, err := json.Marshal(redisSession(s))
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	var ttl time.Duration
	if s.ExpiresAt != nil {
		if remaining := time.Until(*s.ExpiresAt); remaining > 0 {
			ttl = remaining
		}
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if previous != nil && previous.TenantDomain != s.TenantDomain {
			pipe.SRem(ctx, r.tenantKey(previous.TenantDomain), s.ID)
		}
		pipe.Set(ctx, r.sessionKey(s.ID), data, ttl)
		pipe.SAdd(ctx, r.tenantKey(s.TenantDomain), s.ID)
		return nil
	})
	return err
}

func (r *RedisRepository) FindByID(ctx context.Context, id string) (*domain.Session, error) {
	raw, err := r.client.Get(ctx, r.sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return decodeSession(raw)
}

func (r *RedisRepository) FindByTenant(ctx context.Context, tenantDomain string) ([]domain.Session, error) {
	ids, err := r.client.SMembers(ctx, r.tenantKey(tenantDomain)).Result()
	if err != nil {
		return nil, fmt.Errorf("list tenant sessions: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	values, err := r.client.MGet(ctx, r.sessionKeys(ids)...).Result()
	if err != nil {
		return nil, fmt.Errorf("load tenant sessions: %w", err)
	}

	out := make([]domain.Session, 0, len(values))
	var stale []any
	for i, v := range values {
		str, ok := v.(string)
		if !ok {
			// The record expired through its TTL; drop the dangling set member.
			stale = append(stale, ids[i])
			continue
		}
		s, err := decodeSession([]byte(str))
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}

	if len(stale) > 0 {
		if err := r.client.SRem(ctx, r.tenantKey(tenantDomain), stale...).Err(); err != nil {
			return nil, fmt.Errorf("prune tenant sessions: %w", err)
		}
	}
	return out, nil
}

func (r *RedisRepository) DeleteByIDs(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}

	values, err := r.client.MGet(ctx, r.sessionKeys(ids)...).Result()
	if err != nil {
		return fmt.Errorf("load sessions: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, v := range values {
			if str, ok := v.(string); ok {
				if s, err := decodeSession([]byte(str)); err == nil {
					pipe.SRem(ctx, r.tenantKey(s.TenantDomain), ids[i])
				}
			}
		}
		pipe.Del(ctx, r.sessionKeys(ids)...)
		return nil
	})
	return err
}

func (r *RedisRepository) sessionKeys(ids []string) []string {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.sessionKey(id)
	}
	return keys
}

func decodeSession(raw []byte) (*domain.Session, error) {
	var rec redisSession
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	s := domain.Session(rec)
	return &s, nil
}
