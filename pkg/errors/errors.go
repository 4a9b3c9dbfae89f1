package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Domain errors returned by the usecases. Each variant is a distinct value so
// callers can tell them apart with errors.Is.
var (
	ErrUserNotFound = NewNotFoundError("user", "user not found")
	ErrBookNotFound = NewNotFoundError("book", "book not found")
	ErrLoanNotFound = NewNotFoundError("loan", "loan not found")

	ErrAlreadyReturned   = NewInvalidStateError("loan", "already_returned", "loan already returned")
	ErrNoCopiesAvailable = NewInvalidStateError("book", "no_copies_available", "no copies available")

	ErrRollTaken = NewAlreadyExistsError("user", "roll already registered to another user")
)

// ValidationError represents a validation failure with field-level details
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed: %s - %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	Message  string
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource, message string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		Message:  message,
	}
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// InvalidStateError reports an operation that the current state of a record
// does not allow, e.g. returning a loan twice. Reason is a stable machine
// readable code.
type InvalidStateError struct {
	Resource string
	Reason   string
	Message  string
}

// NewInvalidStateError creates a new invalid state error
func NewInvalidStateError(resource, reason, message string) *InvalidStateError {
	return &InvalidStateError{
		Resource: resource,
		Reason:   reason,
		Message:  message,
	}
}

func (e *InvalidStateError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s is in an invalid state", e.Resource)
}

// AlreadyExistsError represents a resource already exists error
type AlreadyExistsError struct {
	Resource string
	Message  string
}

// NewAlreadyExistsError creates a new already exists error
func NewAlreadyExistsError(resource, message string) *AlreadyExistsError {
	return &AlreadyExistsError{
		Resource: resource,
		Message:  message,
	}
}

// Error implements the error interface
func (e *AlreadyExistsError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s already exists", e.Resource)
}

// InternalError represents an internal server error with context
type InternalError struct {
	Message string
	Err     error
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *InternalError {
	return &InternalError{
		Message: message,
		Err:     err,
	}
}

// Error implements the error interface
func (e *InternalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *InternalError) Unwrap() error {
	return e.Err
}

// HTTPStatus maps err to an HTTP status code and a snake_case error code.
// Unknown errors map to 500 "internal_error".
func HTTPStatus(err error) (int, string) {
	var (
		verr  *ValidationError
		nferr *NotFoundError
		iserr *InvalidStateError
		aeerr *AlreadyExistsError
	)
	switch {
	case stderrors.As(err, &verr):
		return http.StatusBadRequest, "validation_error"
	case stderrors.As(err, &nferr):
		return http.StatusNotFound, nferr.Resource + "_not_found"
	case stderrors.As(err, &iserr):
		if iserr.Reason != "" {
			return http.StatusConflict, iserr.Reason
		}
		return http.StatusConflict, "invalid_state"
	case stderrors.As(err, &aeerr):
		return http.StatusConflict, "already_exists"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
