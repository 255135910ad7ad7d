// Package cache provides the dashboard response cache.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config configures the redis cache.
type Config struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

// RedisCache stores JSON values under a generation number. Invalidate bumps
// the generation so every older entry becomes unreachable and expires by TTL.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedis connects to redis and verifies the connection.
func NewRedis(ctx context.Context, cfg Config) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return NewRedisFromClient(client, cfg.Prefix, cfg.TTL), nil
}

// NewRedisFromClient wraps an existing client.
func NewRedisFromClient(client *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *RedisCache) generationKey() string {
	return c.prefix + ":gen"
}

func (c *RedisCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, c.generationKey()).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read cache generation: %w", err)
	}
	return gen, nil
}

func (c *RedisCache) entryKey(gen int64, key string) string {
	return fmt.Sprintf("%s:%d:%s", c.prefix, gen, key)
}

// Get decodes the entry for key into dest and reports whether it existed.
// The returned generation is the one the lookup used; hand it to Set.
func (c *RedisCache) Get(ctx context.Context, key string, dest any) (int64, bool, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		return 0, false, err
	}
	data, err := c.client.Get(ctx, c.entryKey(gen, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return gen, false, nil
	}
	if err != nil {
		return gen, false, fmt.Errorf("read cache entry: %w", err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return gen, false, fmt.Errorf("decode cache entry: %w", err)
	}
	return gen, true, nil
}

// Set stores value as JSON under gen. A value computed before an Invalidate
// lands in the old generation and is never read.
func (c *RedisCache) Set(ctx context.Context, gen int64, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	return c.client.Set(ctx, c.entryKey(gen, key), data, c.ttl).Err()
}

// Invalidate makes every stored entry unreachable.
func (c *RedisCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, c.generationKey()).Err(); err != nil {
		return fmt.Errorf("bump cache generation: %w", err)
	}
	return nil
}

// Ping checks the redis connection.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Noop never stores anything. Used when redis is not configured.
type Noop struct{}

// Get implements the cache contract.
func (Noop) Get(context.Context, string, any) (int64, bool, error) { return 0, false, nil }

// Set implements the cache contract.
func (Noop) Set(context.Context, int64, string, any) error { return nil }

// Invalidate implements the cache contract.
func (Noop) Invalidate(context.Context) error { return nil }

// Ping implements the cache contract.
func (Noop) Ping(context.Context) error { return nil }

// Close implements the cache contract.
func (Noop) Close() error { return nil }
