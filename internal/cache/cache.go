package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Vk76/VideoProcessingSystem/internal/redisholder"
)

var ErrMiss = errors.New("cache miss")

// StatusNamespace is shared by the API (reads) and the worker (invalidation
// on status writes).
const StatusNamespace = "videoprocessing:status"

// Cache fronts /status reads with a short-TTL copy of the ledger row so
// polling clients do not hammer Postgres. It goes through the holder, not a
// raw client, so a reconnect swaps under it transparently.
type Cache struct {
	holder    *redisholder.Holder
	Namespace string
	TTL       time.Duration
}

func NewCache(namespace string, holder *redisholder.Holder, ttl time.Duration) *Cache {
	return &Cache{
		holder:    holder,
		Namespace: namespace,
		TTL:       ttl,
	}
}

func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	val, err := c.holder.Get().Get(ctx, c.Namespace+":"+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	return val, err
}

func (c *Cache) Store(ctx context.Context, key string, value string) error {
	return c.holder.Get().Set(ctx, c.Namespace+":"+key, value, c.TTL).Err()
}

func (c *Cache) Remove(ctx context.Context, key string) error {
	return c.holder.Get().Del(ctx, c.Namespace+":"+key).Err()
}
