package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates the operation would violate a uniqueness rule,
	// such as creating a second order for the same cart.
	ErrConflict = errors.New("conflict")
	// ErrUnavailable indicates an upstream dependency could not be reached.
	ErrUnavailable = errors.New("upstream unavailable")
)

// ValidationError reports a malformed or out-of-range input value.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validation builds a field-level validation error.
func Validation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
