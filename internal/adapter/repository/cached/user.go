package cached

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"library-service/internal/adapter/cache"
	domain "library-service/internal/domain/user"
	"library-service/internal/usecase/user"
)

// UserRepository implements user.Repository with caching support.
// It wraps a persistent repository and a cache implementation.
type UserRepository struct {
	dbRepo user.Repository
	cache  cache.UserCache
	log    *zap.Logger
	group  singleflight.Group
}

// NewUserRepository creates a new cached user repository. A nil cache
// disables caching.
func NewUserRepository(dbRepo user.Repository, cache cache.UserCache, log *zap.Logger) *UserRepository {
	return &UserRepository{
		dbRepo: dbRepo,
		cache:  cache,
		log:    log,
	}
}

// Create delegates to the DB repository. Misses are never cached, so a new
// user is visible to lookups immediately.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) (string, error) {
	return r.dbRepo.Create(ctx, u)
}

// GetByID delegates to the DB repository.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.dbRepo.GetByID(ctx, id)
}

// GetByRoll retrieves a user by roll using the cache-aside pattern.
func (r *UserRepository) GetByRoll(ctx context.Context, roll string) (*domain.User, error) {
	return r.lookup(ctx, cache.RollKey(roll), func(ctx context.Context) (*domain.User, error) {
		return r.dbRepo.GetByRoll(ctx, roll)
	})
}

// GetByEmail retrieves a user by email using the cache-aside pattern.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.lookup(ctx, cache.EmailKey(email), func(ctx context.Context) (*domain.User, error) {
		return r.dbRepo.GetByEmail(ctx, email)
	})
}

func (r *UserRepository) lookup(ctx context.Context, key string, load func(context.Context) (*domain.User, error)) (*domain.User, error) {
	if r.cache != nil {
		cachedUser, err := r.cache.Get(ctx, key)
		if err != nil {
			r.log.Warn("cache get error, falling back to database", zap.String("key", key), zap.Error(err))
		} else if cachedUser != nil {
			return cachedUser, nil
		}
	}

	// Cache miss or cache disabled - use single-flight to prevent stampede
	result, err, _ := r.group.Do(key, func() (any, error) {
		if r.cache != nil {
			cachedUser, err := r.cache.Get(ctx, key)
			if err == nil && cachedUser != nil {
				return cachedUser, nil
			}
		}

		u, err := load(ctx)
		if err != nil {
			return nil, err
		}

		if r.cache != nil {
			if err := r.cache.Set(ctx, u); err != nil {
				r.log.Warn("failed to cache user", zap.String("key", key), zap.Error(err))
			}
		}
		return u, nil
	})
	if err != nil {
		return nil, err
	}

	// Callers sharing a flight must not share the pointer.
	u := *result.(*domain.User)
	return &u, nil
}
