// Package common defines the sentinel errors shared by the access engine,
// services and handlers. Callers match them with errors.Is / errors.As.
package common

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrUnauthenticated means the operation needs an identity and none was presented,
	// or the presented credential is invalid or expired.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden means an identity is present but lacks the privilege.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound means the target entity does not exist (or is not visible to the requester).
	ErrNotFound = errors.New("not found")

	// ErrConflict means a uniqueness rule was violated (duplicate email).
	ErrConflict = errors.New("conflict")

	// ErrInvalidState means an illegal visibility transition.
	ErrInvalidState = errors.New("invalid state")

	// ErrUnavailable means the backing store could not be reached.
	ErrUnavailable = errors.New("store unavailable")

	// ErrInvalidCredentials is returned for any failed login, whatever the cause.
	ErrInvalidCredentials = errors.New("incorrect credentials")
)

// ValidationError reports missing or malformed input, keyed by field name.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError returns a ValidationError for a single field.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// Add records a problem with field and returns the receiver.
func (e *ValidationError) Add(field, msg string) *ValidationError {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	e.Fields[field] = msg
	return e
}

// Empty reports whether no field problems were recorded.
func (e *ValidationError) Empty() bool {
	return e == nil || len(e.Fields) == 0
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
