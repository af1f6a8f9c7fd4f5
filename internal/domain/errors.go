package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation matches every *ValidationError
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is returned when a card does not exist or belongs to someone else.
	// The two cases are indistinguishable.
	ErrNotFound = errors.New("flashcard not found")
	// ErrPersistence matches every *PersistenceError
	ErrPersistence = errors.New("persistence failure")
	// ErrLinkCodeInvalid is returned for unknown or expired Telegram link codes
	ErrLinkCodeInvalid = errors.New("link code is invalid or expired")
)

// ValidationError reports malformed or missing input
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a validation error for field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// PersistenceError wraps a datastore failure
type PersistenceError struct {
	Op  string
	Err error
}

// NewPersistenceError wraps err for operation op
func NewPersistenceError(op string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Err: err}
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}
