package tracker

import (
	"errors"
	"fmt"

	"github.com/runnerr0/dwell/internal/storage"
)

var (
	// ErrNotFound marks an unknown page, project or user. It is the store's
	// sentinel so wrapped store errors match it directly.
	ErrNotFound = storage.ErrNotFound
	// ErrValidation marks input rejected before any write.
	ErrValidation = errors.New("validation failed")
	// ErrUnauthorized marks a missing or unknown bearer token.
	ErrUnauthorized = errors.New("unauthorized")
)

// ValidationError names the offending input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is lets errors.Is(err, ErrValidation) match any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
