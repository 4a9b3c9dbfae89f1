package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	domain "library-service/internal/domain/user"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// UserCache caches users under their roll and their email.
type UserCache interface {
	// Get returns the user stored under key, or nil on a miss.
	Get(ctx context.Context, key string) (*domain.User, error)

	// Set stores the user under both its roll key and its email key.
	Set(ctx context.Context, user *domain.User) error
}

// RollKey is the cache key for a roll lookup.
func RollKey(roll string) string {
	return "user:roll:" + roll
}

// EmailKey is the cache key for an email lookup.
func EmailKey(email string) string {
	return "user:email:" + email
}

// RedisUserCache implements UserCache using Redis as the backing store.
type RedisUserCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisUserCache creates a new Redis-backed user cache.
func NewRedisUserCache(client *redis.Client, ttl time.Duration, log *zap.Logger) *RedisUserCache {
	return &RedisUserCache{
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

// Get retrieves a user from Redis.
func (c *RedisUserCache) Get(ctx context.Context, key string) (*domain.User, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.log.Debug("cache miss", zap.String("key", key))
		return nil, nil
	}
	if err != nil {
		c.log.Error("failed to get from cache", zap.String("key", key), zap.Error(err))
		return nil, err
	}

	var user domain.User
	if err := json.Unmarshal(data, &user); err != nil {
		c.log.Error("failed to unmarshal cached user", zap.String("key", key), zap.Error(err))
		return nil, err
	}

	c.log.Debug("cache hit", zap.String("key", key))
	return &user, nil
}

// Set writes both keys in one pipeline.
func (c *RedisUserCache) Set(ctx context.Context, user *domain.User) error {
	if user == nil {
		return fmt.Errorf("cannot cache nil user")
	}

	data, err := json.Marshal(user)
	if err != nil {
		c.log.Error("failed to marshal user for cache", zap.String("user_id", user.ID), zap.Error(err))
		return err
	}

	_, err = c.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, RollKey(user.Roll), data, c.ttl)
		p.Set(ctx, EmailKey(user.Email), data, c.ttl)
		return nil
	})
	if err != nil {
		c.log.Error("failed to set cache", zap.String("user_id", user.ID), zap.Error(err))
		return err
	}

	c.log.Debug("cached user", zap.String("user_id", user.ID), zap.Duration("ttl", c.ttl))
	return nil
}
