// Package cache stores rendered read-model responses in Redis.
// Every entry lives under a single namespace so writes can drop stale reads
// by prefix.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"cashdash/internal/logger"
)

const namespace = "cashdash:"

// Key prefixes for cached reads.
const (
	PrefixTransactions = "transactions:"
	PrefixSnapshots    = "snapshots:"
	PrefixCashFlow     = "cashflow:"
)

// Cache is a best-effort JSON cache. Errors are logged, never returned, so
// a Redis outage only costs a database round trip.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) bool
	SetJSON(ctx context.Context, key string, v any)
	Invalidate(ctx context.Context, prefixes ...string)
}

// Key joins a prefix and its parts into a cache key.
func Key(prefix string, parts ...any) string {
	key := prefix
	for i, p := range parts {
		if i > 0 {
			key += "|"
		}
		key += fmt.Sprint(p)
	}
	return key
}

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.SugaredLogger
}

// Connect parses a redis:// URL and pings the server.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// Open returns a Redis-backed Cache for url, or a no-op Cache when url is
// empty or the server cannot be reached.
func Open(ctx context.Context, url string, ttl time.Duration) Cache {
	if url == "" {
		return NewNoop()
	}
	client, err := Connect(ctx, url)
	if err != nil {
		logger.Named("cache").Warnw("Redis unavailable, caching disabled", "error", err)
		return NewNoop()
	}
	return NewRedisCache(client, ttl)
}

// NewRedisCache creates a Cache backed by client with the given entry TTL.
func NewRedisCache(client *redis.Client, ttl time.Duration) Cache {
	return &redisCache{client: client, ttl: ttl, log: logger.Named("cache")}
}

func (c *redisCache) GetJSON(ctx context.Context, key string, dst any) bool {
	data, err := c.client.Get(ctx, namespace+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warnw("Cache read failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		c.log.Warnw("Discarding undecodable cache entry", "key", key, "error", err)
		c.client.Del(ctx, namespace+key)
		return false
	}
	return true
}

func (c *redisCache) SetJSON(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		c.log.Warnw("Cache encode failed", "key", key, "error", err)
		return
	}
	if err := c.client.SetEx(ctx, namespace+key, data, c.ttl).Err(); err != nil {
		c.log.Warnw("Cache write failed", "key", key, "error", err)
	}
}

// Invalidate deletes every key under the given prefixes, or the whole
// namespace when none are given.
func (c *redisCache) Invalidate(ctx context.Context, prefixes ...string) {
	if len(prefixes) == 0 {
		prefixes = []string{""}
	}
	for _, prefix := range prefixes {
		iter := c.client.Scan(ctx, 0, namespace+prefix+"*", 100).Iterator()
		var keys []string
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			c.log.Warnw("Cache scan failed", "prefix", prefix, "error", err)
			continue
		}
		if len(keys) == 0 {
			continue
		}
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			c.log.Warnw("Cache invalidation failed", "prefix", prefix, "error", err)
		}
	}
}

type noopCache struct{}

// NewNoop returns a Cache that never stores anything.
func NewNoop() Cache { return noopCache{} }

func (noopCache) GetJSON(context.Context, string, any) bool { return false }
func (noopCache) SetJSON(context.Context, string, any)      {}
func (noopCache) Invalidate(context.Context, ...string)     {}
