package binding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	domain "github.com/shopvoice/function-gateway/internal/domain/tenant"
)

const defaultKeyPrefix = "fngw:"

// RedisRepository stores one JSON value per assistant plus a per-tenant index set.
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

func (r *RedisRepository) bindingKey(assistantID string) string {
	return r.prefix + "assistant_binding:" + assistantID
}

func (r *RedisRepository) tenantKey(tenantDomain string) string {
	return r.prefix + "tenant_assistants:" + tenantDomain
}

func (r *RedisRepository) Upsert(ctx context.Context, b domain.AssistantBinding) error {
	previous, err := r.FindByAssistantID(ctx, b.AssistantID)
	if err != nil && !errors.Is(err, domain.ErrBindingNotFound) {
		return err
	}

	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("marshal binding: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if previous != nil && previous.TenantDomain != b.TenantDomain {
			pipe.SRem(ctx, r.tenantKey(previous.TenantDomain), b.AssistantID)
		}
		pipe.Set(ctx, r.bindingKey(b.AssistantID), data, 0)
		pipe.SAdd(ctx, r.tenantKey(b.TenantDomain), b.AssistantID)
		return nil
	})
	return err
}

func (r *RedisRepository) FindByAssistantID(ctx context.Context, assistantID string) (*domain.AssistantBinding, error) {
	raw, err := r.client.Get(ctx, r.bindingKey(assistantID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrBindingNotFound
		}
		return nil, fmt.Errorf("get binding: %w", err)
	}

	var b domain.AssistantBinding
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("decode binding: %w", err)
	}
	return &b, nil
}

func (r *RedisRepository) DeleteByAssistantID(ctx context.Context, assistantID string) error {
	b, err := r.FindByAssistantID(ctx, assistantID)
	if err != nil {
		if errors.Is(err, domain.ErrBindingNotFound) {
			return nil
		}
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.bindingKey(assistantID))
		pipe.SRem(ctx, r.tenantKey(b.TenantDomain), assistantID)
		return nil
	})
	return err
}

func (r *RedisRepository) DeleteByTenant(ctx context.Context, tenantDomain string) (int, error) {
	ids, err := r.client.SMembers(ctx, r.tenantKey(tenantDomain)).Result()
	if err != nil {
		return 0, fmt.Errorf("list tenant assistants: %w", err)
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, r.bindingKey(id))
	}
	keys = append(keys, r.tenantKey(tenantDomain))

	deleted, err := r.client.Del(ctx, keys...).Result()
	if err != nil {
		return 0, fmt.Errorf("delete tenant assistants: %w", err)
	}
	if len(ids) > 0 {
		// The index key itself is one of the deleted keys.
		deleted--
	}
	return int(deleted), nil
}
