package cache

import (
	"context"
	"sync"
	"time"

	"appointment-scheduler/core/logger"

	"github.com/redis/go-redis/v9"
)

// Cache is a best-effort key/value store. Implementations never fail the caller:
// an unavailable backend behaves like an empty cache. Delete reports whether the
// key is known to be gone, so callers can tell when an entry may have survived.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key string, value string, ttl time.Duration)
	Delete(ctx context.Context, key string) bool
	Available() bool
}

type noopCache struct{}

func NewNoopCache() Cache {
	return noopCache{}
}

func (noopCache) Get(context.Context, string) (string, bool)         { return "", false }
func (noopCache) Set(context.Context, string, string, time.Duration) {}
func (noopCache) Delete(context.Context, string) bool                { return true }
func (noopCache) Available() bool                                    { return false }

// RedisCache wraps a redis client with a failure breaker. After threshold consecutive
// errors the breaker opens and every call is skipped until cooldown has passed.
type RedisCache struct {
	client    redis.UniversalClient
	threshold int
	cooldown  time.Duration
	now       func() time.Time

	mu        sync.Mutex
	failures  int
	openUntil time.Time
}

func NewRedisCache(client redis.UniversalClient, threshold int, cooldown time.Duration) *RedisCache {
	if threshold <= 0 {
		threshold = 3
	}
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	return &RedisCache{
		client:    client,
		threshold: threshold,
		cooldown:  cooldown,
		now:       time.Now,
	}
}

func (c *RedisCache) allow() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.now().Before(c.openUntil)
}

func (c *RedisCache) record(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err == nil || err == redis.Nil {
		c.failures = 0
		return
	}
	c.failures++
	if c.failures >= c.threshold {
		c.openUntil = c.now().Add(c.cooldown)
		c.failures = 0
		logger.Warn("RedisCache:BreakerOpen", "cooldown", c.cooldown.String(), "error", err)
	}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	if !c.allow() {
		return "", false
	}
	val, err := c.client.Get(ctx, key).Result()
	c.record(err)
	if err != nil {
		if err != redis.Nil {
			logger.Warn("RedisCache:Get", "key", key, "error", err)
		}
		return "", false
	}
	return val, true
}

func (c *RedisCache) Set(ctx context.Context, key string, value string, ttl time.Duration) {
	if !c.allow() {
		return
	}
	err := c.client.Set(ctx, key, value, ttl).Err()
	c.record(err)
	if err != nil {
		logger.Warn("RedisCache:Set", "key", key, "error", err)
	}
}

// Delete always reaches redis, even with the breaker open: a skipped delete would
// leave the entry readable once the breaker closes.
func (c *RedisCache) Delete(ctx context.Context, key string) bool {
	err := c.client.Del(ctx, key).Err()
	c.record(err)
	if err != nil {
		logger.Warn("RedisCache:Delete", "key", key, "error", err)
		return false
	}
	return true
}

// Available reports whether the breaker is closed.
func (c *RedisCache) Available() bool {
	return c.allow()
}
