package infrastructure

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"library-service/internal/adapter/cache"
	"library-service/internal/config"
	redisclient "library-service/pkg/redis"
)

// NewRedisClient creates a new Redis client, or returns nil when Redis is
// disabled.
func NewRedisClient(ctx context.Context, cfg *config.Config, l *zap.Logger) (*redisclient.Client, error) {
	if !cfg.Redis.Enabled {
		l.Info("Redis disabled, using in-process user cache without rate limiting")
		return nil, nil
	}

	redisConfig := redisclient.Config{
		Host:        cfg.Redis.Host,
		Port:        cfg.Redis.Port,
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		MaxRetries:  cfg.Redis.MaxRetries,
		PoolSize:    cfg.Redis.PoolSize,
		MinIdleConn: cfg.Redis.MinIdleConn,
	}

	rdb, err := redisclient.NewClient(ctx, redisConfig, l)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return rdb, nil
}

// NewUserCache picks Redis when a client is available and a bounded LRU
// otherwise.
func NewUserCache(cfg *config.Config, rdb *redisclient.Client, l *zap.Logger) cache.UserCache {
	if rdb != nil {
		return cache.NewRedisUserCache(rdb.Client, cfg.Redis.CacheTTL, l)
	}
	return cache.NewLRUUserCache(cfg.Redis.LRUSize, cfg.Redis.CacheTTL, l)
}
