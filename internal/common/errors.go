// Package common holds the error taxonomy and the ownership guard shared by
// every domain service.
package common

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrNotFound means the referenced record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrForbidden means the record exists but belongs to a different user.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidInput means a required value is missing or out of range.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInconsistentState means an internal invariant target vanished
	// mid-operation. Not caller-correctable; treat as a bug signal.
	ErrInconsistentState = errors.New("inconsistent state")
)

// Owned is implemented by every entity that belongs to a user.
type Owned interface {
	OwnedBy() uuid.UUID
}

// RequireOwner rejects a record that belongs to a different user. It must run
// before any mutation and before any read that returns data to the caller.
func RequireOwner(rec Owned, userID uuid.UUID) error {
	if rec.OwnedBy() != userID {
		return ErrForbidden
	}
	return nil
}

// Invalidf builds an ErrInvalidInput with a caller-facing message.
func Invalidf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvalidInput)...)
}

// NotFoundf builds an ErrNotFound naming the missing record.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}
