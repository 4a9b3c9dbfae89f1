package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	domain "library-service/internal/domain/user"
)

// LRUUserCache is an in-process UserCache used when Redis is disabled.
type LRUUserCache struct {
	lru *expirable.LRU[string, domain.User]
	log *zap.Logger
}

// NewLRUUserCache creates a cache holding at most size entries, each
// expiring after ttl.
func NewLRUUserCache(size int, ttl time.Duration, log *zap.Logger) *LRUUserCache {
	return &LRUUserCache{
		lru: expirable.NewLRU[string, domain.User](size, nil, ttl),
		log: log,
	}
}

// Get returns a copy of the cached user, or nil on a miss.
func (c *LRUUserCache) Get(_ context.Context, key string) (*domain.User, error) {
	u, ok := c.lru.Get(key)
	if !ok {
		c.log.Debug("cache miss", zap.String("key", key))
		return nil, nil
	}
	return &u, nil
}

// Set stores the user under its roll and email keys.
func (c *LRUUserCache) Set(_ context.Context, user *domain.User) error {
	if user == nil {
		return fmt.Errorf("cannot cache nil user")
	}
	c.lru.Add(RollKey(user.Roll), *user)
	c.lru.Add(EmailKey(user.Email), *user)
	return nil
}
