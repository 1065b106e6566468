package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound marks a missing job, candidate, session or question.
// Wrap with fmt.Errorf("...: %w", ErrNotFound) and match with errors.Is.
var ErrNotFound = errors.New("not found")

// ErrConflict marks an invalid state transition: duplicate session start,
// double response submission, or submitting to a completed session.
var ErrConflict = errors.New("conflict")

// ValidationError reports caller input outside the documented constraints.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// AllProvidersExhaustedError is returned by the gateway only after every
// configured provider was skipped or failed. It carries the per-provider
// error messages for diagnostics.
type AllProvidersExhaustedError struct {
	Attempts []ProviderAttemptError
}

type ProviderAttemptError struct {
	Provider string
	Message  string
}

func (e *AllProvidersExhaustedError) Error() string {
	if len(e.Attempts) == 0 {
		return "all providers exhausted: no providers configured"
	}
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %s", a.Provider, a.Message))
	}
	return "all providers exhausted: " + strings.Join(parts, "; ")
}
