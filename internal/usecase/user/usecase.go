package user

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	domain "library-service/internal/domain/user"
	"library-service/internal/usecase/validate"
	pkgerrors "library-service/pkg/errors"
	"library-service/pkg/logger"
)

// Repository defines the interface for user data access operations.
// Lookups return pkgerrors.ErrUserNotFound when no user matches.
type Repository interface {
	Create(ctx context.Context, u *domain.User) (string, error)         // Create a new user and return its id
	GetByID(ctx context.Context, id string) (*domain.User, error)       // Retrieve user by ID
	GetByEmail(ctx context.Context, email string) (*domain.User, error) // Retrieve user by email
	GetByRoll(ctx context.Context, roll string) (*domain.User, error)   // Retrieve user by roll
}

// Service implements the user directory: get-or-create registration and
// point lookups.
type Service struct {
	repo     Repository
	log      *zap.Logger
	validate *validate.Validator
}

// New creates a new instance of Service with the provided repository and logger.
func New(r Repository, log *zap.Logger) *Service {
	return &Service{repo: r, log: log, validate: validate.New()}
}

// Register creates a user unless one with the same email already exists, in
// which case the existing user is returned with Created set to false.
func (s *Service) Register(ctx context.Context, in RegisterUserRequest) (*RegisterUserResponse, error) {
	in.Email = normalizeEmail(in.Email)
	in.Roll = strings.TrimSpace(in.Roll)
	log := logger.WithContext(ctx, s.log)
	log.Info("registering user", zap.String("roll", in.Roll), zap.String("email", in.Email))

	if err := s.validate.Struct(in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, err
	}

	existing, err := s.lookup(ctx, s.repo.GetByEmail, in.Email)
	if err != nil {
		log.Error("failed to check existing email", zap.String("email", in.Email), zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to register user", err)
	}
	if existing != nil {
		log.Info("user already exists", zap.String("email", in.Email), zap.String("id", existing.ID))
		return &RegisterUserResponse{User: toDTO(existing), Created: false}, nil
	}

	byRoll, err := s.lookup(ctx, s.repo.GetByRoll, in.Roll)
	if err != nil {
		log.Error("failed to check existing roll", zap.String("roll", in.Roll), zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to register user", err)
	}
	if byRoll != nil {
		log.Warn("roll already registered", zap.String("roll", in.Roll), zap.String("existing_id", byRoll.ID))
		return nil, pkgerrors.ErrRollTaken
	}

	u := &domain.User{
		Roll:    in.Roll,
		Email:   in.Email,
		Name:    in.Name,
		Profile: in.Profile,
	}
	id, err := s.repo.Create(ctx, u)
	if err != nil {
		// A concurrent registration may have won the unique index on email.
		if winner, lookupErr := s.lookup(ctx, s.repo.GetByEmail, in.Email); lookupErr == nil && winner != nil {
			log.Info("user registered concurrently", zap.String("email", in.Email), zap.String("id", winner.ID))
			return &RegisterUserResponse{User: toDTO(winner), Created: false}, nil
		}
		log.Error("failed to create user", zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to register user", err)
	}
	u.ID = id

	log.Info("user registered", zap.String("id", id))
	return &RegisterUserResponse{User: toDTO(u), Created: true}, nil
}

// GetByEmail retrieves a user by email address.
func (s *Service) GetByEmail(ctx context.Context, in GetUserByEmailRequest) (*GetUserResponse, error) {
	in.Email = normalizeEmail(in.Email)
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	u, err := s.repo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, s.wrapLookupError(ctx, err, zap.String("email", in.Email))
	}
	return &GetUserResponse{User: toDTO(u)}, nil
}

// GetByRoll retrieves a user by roll.
func (s *Service) GetByRoll(ctx context.Context, in GetUserByRollRequest) (*GetUserResponse, error) {
	in.Roll = strings.TrimSpace(in.Roll)
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	u, err := s.repo.GetByRoll(ctx, in.Roll)
	if err != nil {
		return nil, s.wrapLookupError(ctx, err, zap.String("roll", in.Roll))
	}
	return &GetUserResponse{User: toDTO(u)}, nil
}

// lookup turns ErrUserNotFound into a nil user so callers can branch on presence.
func (s *Service) lookup(ctx context.Context, find func(context.Context, string) (*domain.User, error), key string) (*domain.User, error) {
	u, err := find(ctx, key)
	if errors.Is(err, pkgerrors.ErrUserNotFound) {
		return nil, nil
	}
	return u, err
}

func (s *Service) wrapLookupError(ctx context.Context, err error, key zap.Field) error {
	if errors.Is(err, pkgerrors.ErrUserNotFound) {
		return err
	}
	logger.WithContext(ctx, s.log).Error("failed to get user", key, zap.Error(err))
	return pkgerrors.NewInternalError("failed to get user", err)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func toDTO(u *domain.User) User {
	return User{
		ID:        u.ID,
		Roll:      u.Roll,
		Email:     u.Email,
		Name:      u.Name,
		Profile:   u.Profile,
		CreatedAt: u.CreatedAt,
	}
}
