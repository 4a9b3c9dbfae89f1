package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"library-service/internal/domain/user"
	pkgerrors "library-service/pkg/errors"
)

// UserRepoPG implements the user Repository interface using GORM.
type UserRepoPG struct {
	db  *gorm.DB    // GORM database connection
	log *zap.Logger // Structured logger for database operations
}

// NewUserRepoPG creates a new instance of UserRepoPG.
func NewUserRepoPG(db *gorm.DB, log *zap.Logger) *UserRepoPG {
	return &UserRepoPG{db: db, log: log}
}

// Create inserts a new user into the database.
func (r *UserRepoPG) Create(ctx context.Context, u *user.User) (string, error) {
	if u == nil {
		return "", errors.New("user cannot be nil")
	}

	model := UserSchema{
		ID:      uuid.NewString(),
		Roll:    u.Roll,
		Email:   u.Email,
		Name:    u.Name,
		Profile: u.Profile,
	}

	if err := conn(ctx, r.db).Create(&model).Error; err != nil {
		r.log.Error("failed to create user in db", zap.Error(err), zap.String("email", u.Email))
		return "", fmt.Errorf("failed to create user: %w", err)
	}

	u.CreatedAt = model.CreatedAt
	r.log.Info("user created in db", zap.String("id", model.ID))
	return model.ID, nil
}

// GetByID retrieves a user by their unique ID.
func (r *UserRepoPG) GetByID(ctx context.Context, id string) (*user.User, error) {
	return r.first(ctx, "id = ?", id)
}

// GetByEmail retrieves a user by their email address.
func (r *UserRepoPG) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.first(ctx, "email = ?", email)
}

// GetByRoll retrieves a user by their roll.
func (r *UserRepoPG) GetByRoll(ctx context.Context, roll string) (*user.User, error) {
	return r.first(ctx, "roll = ?", roll)
}

func (r *UserRepoPG) first(ctx context.Context, query string, arg string) (*user.User, error) {
	var model UserSchema
	if err := conn(ctx, r.db).Where(query, arg).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("user not found", zap.String("query", query), zap.String("arg", arg))
			return nil, pkgerrors.ErrUserNotFound
		}
		r.log.Error("failed to get user from db", zap.Error(err), zap.String("query", query))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return toUser(&model), nil
}

func toUser(m *UserSchema) *user.User {
	return &user.User{
		ID:        m.ID,
		Roll:      m.Roll,
		Email:     m.Email,
		Name:      m.Name,
		Profile:   m.Profile,
		CreatedAt: m.CreatedAt,
	}
}
