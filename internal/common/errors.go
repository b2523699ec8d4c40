// Package common defines shared constants and sentinel errors used across
// client and server layers of GophNotes. Callers should use errors.Is to
// match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound    = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrValidation     = errors.New("validation error")

	// Trash lifecycle errors.
	ErrAuthenticationRequired = errors.New("login required")
	ErrNotFoundInTrash        = errors.New("note not found in trash")
	ErrPersistence            = errors.New("persistence failure")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	// AI assistant errors.
	ErrAIUnavailable = errors.New("ai assistant unavailable")
)

// PersistenceError wraps a store failure with the operation that caused it.
// It matches ErrPersistence via errors.Is and unwraps to the driver error.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

// Persistence wraps err as a PersistenceError unless it is nil or already one
// of the sentinel errors above, which are returned unchanged.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, s := range []error{ErrorNotFound, ErrNotFoundInTrash, ErrAuthenticationRequired, ErrAlreadyExists} {
		if errors.Is(err, s) {
			return err
		}
	}
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}
