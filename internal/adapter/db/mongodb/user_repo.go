package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"library-service/internal/domain/user"
	pkgerrors "library-service/pkg/errors"
)

// UserRepo implements the user Repository interface on a MongoDB collection.
type UserRepo struct {
	col *mongo.Collection
	log *zap.Logger
}

// NewUserRepo creates a new UserRepo.
func NewUserRepo(db *mongo.Database, log *zap.Logger) *UserRepo {
	return &UserRepo{col: db.Collection(usersCollection), log: log}
}

// Create inserts a user. Duplicate roll or email is rejected by the unique
// indexes from EnsureIndexes.
func (r *UserRepo) Create(ctx context.Context, u *user.User) (string, error) {
	if u == nil {
		return "", errors.New("user cannot be nil")
	}

	doc := userDocument{
		ID:        uuid.NewString(),
		Roll:      u.Roll,
		Email:     u.Email,
		Name:      u.Name,
		Profile:   u.Profile,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			r.log.Warn("duplicate user", zap.String("email", u.Email), zap.String("roll", u.Roll))
		} else {
			r.log.Error("failed to insert user", zap.Error(err), zap.String("email", u.Email))
		}
		return "", fmt.Errorf("failed to create user: %w", err)
	}

	u.CreatedAt = doc.CreatedAt
	return doc.ID, nil
}

// GetByID retrieves a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*user.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetByEmail retrieves a user by email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// GetByRoll retrieves a user by roll.
func (r *UserRepo) GetByRoll(ctx context.Context, roll string) (*user.User, error) {
	return r.findOne(ctx, bson.M{"roll": roll})
}

func (r *UserRepo) findOne(ctx context.Context, filter bson.M) (*user.User, error) {
	var doc userDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, pkgerrors.ErrUserNotFound
		}
		r.log.Error("failed to find user", zap.Error(err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return doc.toDomain(), nil
}
