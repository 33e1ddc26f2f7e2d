// internal/pkg/apperror/errors.go
package apperror

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotAuthenticated is returned when an operation needs a signed-in user
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrNotFound matches every NotFoundError via errors.Is
	ErrNotFound = errors.New("not found")
	// ErrConflict matches every ConflictError via errors.Is
	ErrConflict = errors.New("conflict")
)

// ValidationError reports missing or malformed user input
type ValidationError struct {
	Message string
	Fields  []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Fields, ", "))
}

// NewValidationError creates a validation error for the given fields
func NewValidationError(message string, fields ...string) *ValidationError {
	return &ValidationError{Message: message, Fields: fields}
}

// NotFoundError reports that a referenced order, product or user does not exist
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NotFound creates a NotFoundError
func NotFound(resource, key string) *NotFoundError {
	return &NotFoundError{Resource: resource, Key: key}
}

// ConflictError reports a uniqueness violation such as a duplicate e-mail
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// Conflict creates a ConflictError
func Conflict(message string) *ConflictError {
	return &ConflictError{Message: message}
}

// PersistenceError wraps an opaque failure from the storage layer
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Persistence wraps err as a PersistenceError, passing nil and typed domain errors through
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict) {
		return err
	}
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

// IsValidation reports whether err is a ValidationError and returns it
func IsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
