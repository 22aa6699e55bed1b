package defaults

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mercatura/catalog-backend/pkg/redis"
)

// Cache remembers which record currently holds a default flag per scope.
// It is strictly best-effort: a nil cache or a Redis hiccup degrades to a
// database lookup, never to an error.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache wraps the Redis client. Pass nil when Redis is not configured.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if client == nil {
		return nil
	}
	return &Cache{client: client, ttl: ttl}
}

// GetDefaultID returns the cached default record id for (table, flag, scope).
func (c *Cache) GetDefaultID(ctx context.Context, table, flag string, scope Scope) (uuid.UUID, bool) {
	if c == nil || c.client == nil {
		return uuid.Nil, false
	}
	raw, err := c.client.Get(ctx, c.client.DefaultKey(table, flag, scope.Key()))
	if err != nil {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// StoreDefaultID records the resolved default for (table, flag, scope).
func (c *Cache) StoreDefaultID(ctx context.Context, table, flag string, scope Scope, id uuid.UUID) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Set(ctx, c.client.DefaultKey(table, flag, scope.Key()), id.String(), c.ttl)
}

// Invalidate drops the cached defaults for the given flags in one scope.
// Called after any write that may have moved a default.
func (c *Cache) Invalidate(ctx context.Context, table string, scope Scope, flags ...string) {
	if c == nil || c.client == nil || len(flags) == 0 {
		return
	}
	keys := make([]string, 0, len(flags))
	for _, flag := range flags {
		keys = append(keys, c.client.DefaultKey(table, flag, scope.Key()))
	}
	_ = c.client.Del(ctx, keys...)
}
