package user

import "time"

// RegisterUserRequest represents the request payload for registering a user.
type RegisterUserRequest struct {
	Roll    string `validate:"required,max=64"`
	Email   string `validate:"required,email"`
	Name    string `validate:"omitempty,max=100"`
	Profile map[string]string
}

// RegisterUserResponse represents the response payload after registering a user.
// Created is false when a user with the same email was already registered;
// User then holds the existing record.
type RegisterUserResponse struct {
	User    User
	Created bool
}

// GetUserByEmailRequest represents the request payload for retrieving a user by email.
type GetUserByEmailRequest struct {
	Email string `validate:"required,email"`
}

// GetUserByRollRequest represents the request payload for retrieving a user by roll.
type GetUserByRollRequest struct {
	Roll string `validate:"required"`
}

// GetUserResponse represents the response payload for user details.
type GetUserResponse struct {
	User User
}

// User represents a user DTO (Data Transfer Object) for API responses.
type User struct {
	ID        string
	Roll      string
	Email     string
	Name      string
	Profile   map[string]string
	CreatedAt time.Time
}
