/*
errors.go - Error types for the ledger engine

ERROR CATEGORIES:
  1. Input validation - non-positive amounts, identical transfer accounts
  2. Reference errors - account or entry missing, or owned by someone else
  3. Storage errors  - returned by the Store and propagated unchanged

Reference errors never distinguish "absent" from "belongs to another owner".
*/
package ledger

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidAmount is returned when an amount is zero or negative.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrAccountNotFound is returned when a referenced account is missing or
	// belongs to another owner.
	ErrAccountNotFound = errors.New("account not found")

	// ErrInvalidTransfer is returned when a transfer uses the same account on
	// both sides or an amount cannot be defaulted.
	ErrInvalidTransfer = errors.New("invalid transfer")

	// ErrNotFound is returned when an update target does not exist.
	ErrNotFound = errors.New("entry not found")

	// ErrInvalidKind is returned for an unknown entry kind.
	ErrInvalidKind = errors.New("invalid entry kind")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// ValidationError names the offending field and value.
type ValidationError struct {
	Field string
	Value any
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %s=%v", e.Err, e.Field, e.Value)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(err error, field string, value any) error {
	return &ValidationError{Field: field, Value: value, Err: err}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to correctable input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidTransfer) ||
		errors.Is(err, ErrInvalidKind) ||
		errors.Is(err, ErrAccountNotFound)
}

// IsNotFound returns true if the error indicates a missing entry.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
