package domain

import (
	"errors"
	"fmt"
)

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors carry no infrastructure dependency.

var (
	// Lookup errors. Also returned when the record belongs to another user.
	ErrNotFound      = errors.New("not found")
	ErrUserNotFound  = fmt.Errorf("user %w", ErrNotFound)
	ErrHabitNotFound = fmt.Errorf("habit %w", ErrNotFound)
	ErrLogNotFound   = fmt.Errorf("habit log %w", ErrNotFound)
	ErrBadgeNotFound = fmt.Errorf("badge %w", ErrNotFound)

	// Input errors
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrDuplicateLog = fmt.Errorf("%w: habit already logged for this date", ErrConflict)

	// Badge claim rejections. These are outcomes, not failures.
	ErrAlreadyUnlocked        = errors.New("badge already unlocked")
	ErrRequirementNotMet      = errors.New("requirement not met for this badge")
	ErrRequirementUnsupported = errors.New("requirement type is not supported yet")
)

// ValidationError names the offending field. It matches ErrValidation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrValidation, e.Field, e.Message)
}

// Is lets errors.Is(err, ErrValidation) match any ValidationError.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Invalid builds a ValidationError.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
