// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Common application errors.
var (
	// Store errors.
	ErrNotFound      = errors.New("not found")
	ErrValidation    = errors.New("validation failed")
	ErrNotPersisted  = errors.New("changes were not persisted")
	ErrQuotaExceeded = errors.New("storage quota exceeded")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ValidationError reports every field that failed validation, keyed by field name.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError creates an empty ValidationError ready for Add.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

// Add records a failure for field. The first message for a field wins.
func (e *ValidationError) Add(field, message string) {
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = message
	}
}

// Merge copies all failures from other, prefixing field names.
func (e *ValidationError) Merge(prefix string, other *ValidationError) {
	for field, msg := range other.Fields {
		e.Add(prefix+field, msg)
	}
}

// Has reports whether field failed.
func (e *ValidationError) Has(field string) bool {
	_, ok := e.Fields[field]
	return ok
}

// OrNil returns e when it carries failures and nil otherwise.
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, e.Fields[field]))
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, "; "))
}

// Is makes errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NotFoundError reports an id that is absent from a store.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q %s", e.Kind, e.ID, ErrNotFound)
}

// Is makes errors.Is(err, ErrNotFound) match.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// PersistenceError reports a mutation that took effect in memory but could
// not be written to storage. Operations returning it also return a valid result.
type PersistenceError struct {
	Err error
	Key string
}

func (e *PersistenceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (slot %s): %v", ErrNotPersisted, e.Key, e.Err)
	}
	return fmt.Sprintf("%s (slot %s)", ErrNotPersisted, e.Key)
}

// Is makes errors.Is(err, ErrNotPersisted) match.
func (e *PersistenceError) Is(target error) bool {
	return target == ErrNotPersisted
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsSoft reports whether err only signals a persistence warning.
func IsSoft(err error) bool {
	return err != nil && errors.Is(err, ErrNotPersisted) &&
		!errors.Is(err, ErrValidation) && !errors.Is(err, ErrNotFound)
}

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
