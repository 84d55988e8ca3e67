package cache

import (
	"context"
	"crypto/tls"
	"time"

	"appointment-scheduler/core/config"
	"appointment-scheduler/core/logger"

	"github.com/redis/go-redis/v9"
)

// RedisOptions builds client options from config. TLS is enabled when a password is set.
func RedisOptions(cfg config.RedisConfig) *redis.Options {
	opts := &redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.Password != "" {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return opts
}

// NewFromConfig returns a redis-backed cache, or a no-op cache when redis is disabled or
// unreachable at startup.
func NewFromConfig(cfg *config.Config) (Cache, *redis.Client) {
	if !cfg.Redis.Enabled {
		logger.Info("Cache:Disabled", "reason", "REDIS_ENABLED=false")
		return NewNoopCache(), nil
	}

	client := redis.NewClient(RedisOptions(cfg.Redis))
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("Cache:PingFailed", "addr", cfg.Redis.Addr(), "error", err)
		_ = client.Close()
		return NewNoopCache(), nil
	}

	logger.Info("Cache:Connected", "addr", cfg.Redis.Addr())
	return NewRedisCache(client, cfg.Cache.FailureThreshold, cfg.Cache.Cooldown), client
}
