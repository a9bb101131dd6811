package export

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const csvCacheKey = "contacts:export:csv"

// RedisCache keeps the last rendered CSV export until the next write or TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Get returns the cached export. A miss is (nil, false, nil).
func (c *RedisCache) Get(ctx context.Context) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, csvCacheKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get cached export: %w", err)
	}
	return data, true, nil
}

func (c *RedisCache) Set(ctx context.Context, data []byte) error {
	if err := c.client.Set(ctx, csvCacheKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache export: %w", err)
	}
	return nil
}

// Invalidate drops the cached export; called after every write.
func (c *RedisCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, csvCacheKey).Err(); err != nil {
		return fmt.Errorf("invalidate export cache: %w", err)
	}
	return nil
}
