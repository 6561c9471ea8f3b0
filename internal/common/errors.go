// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Relocation errors.
	ErrFileUnavailable     = errors.New("source file unavailable")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrDuplicatesExhausted = errors.New("duplicate suffix search exhausted")
	ErrPartialCopy         = errors.New("cross-filesystem copy verification failed")

	// Classification errors.
	ErrClassificationDegraded = errors.New("purpose classification degraded")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}
