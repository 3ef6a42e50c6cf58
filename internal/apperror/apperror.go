package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUpstream     = errors.New("upstream failure")
)

type AppError struct {
	Err     error  // actual error
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource string, id any) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %v", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource string, id any) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %v", resource, id),
	}
}

// Unauthorized is returned for every failed login, whatever the cause.
// The message is deliberately the same for an unknown user and a wrong
// password.
func Unauthorized() *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: "Invalid username or password",
	}
}

// Upstream wraps a failure of an external service. Message is safe to show
// to users; the cause is kept for logging only.
func Upstream(message string, cause error) *AppError {
	return &AppError{
		Err:     fmt.Errorf("%w: %w", ErrUpstream, cause),
		Message: message,
	}
}
