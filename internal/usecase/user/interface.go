package user

import "context"

// Usecase defines the interface for user directory operations.
type Usecase interface {
	Register(ctx context.Context, in RegisterUserRequest) (*RegisterUserResponse, error)
	GetByEmail(ctx context.Context, in GetUserByEmailRequest) (*GetUserResponse, error)
	GetByRoll(ctx context.Context, in GetUserByRollRequest) (*GetUserResponse, error)
}
