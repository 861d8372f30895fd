/*
errors.go - Centralized error types for the round-up engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Domain packages wrap these errors with additional context.

ERROR CATEGORIES:
  1. Schema errors - missing fields, unparseable timestamps (client input)
  2. Engine input errors - unknown projection mode, degenerate inflation
  3. Everything else - internal faults, reported as server errors

  Domain rejections (negative amount, duplicate transaction) are NOT errors.
  They are data returned in the "invalid" list.

USAGE:
  if generic.IsClientError(err) {
      // 422
  }

SEE ALSO:
  - api/handlers.go: Maps these errors to HTTP status codes
  - returns/projection.go: Returns ErrInvalidMode, ErrInvalidInflation
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidTimestamp is returned when a timestamp is not in TimestampLayout.
	ErrInvalidTimestamp = errors.New("invalid timestamp")

	// ErrMissingField is returned when a required request field is absent.
	ErrMissingField = errors.New("field required")

	// ErrInvalidField is returned when a request field has an unusable value.
	ErrInvalidField = errors.New("invalid field")

	// ErrInvalidMode is returned for a projection mode other than nps or index.
	ErrInvalidMode = errors.New("invalid projection mode")

	// ErrInvalidInflation is returned when the inflation deflator is zero.
	ErrInvalidInflation = errors.New("invalid inflation: deflator is zero")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// FieldError locates a schema violation inside a request body.
type FieldError struct {
	Field string // dotted path, e.g. "transaction[2].amount"
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Missing builds a FieldError for an absent field.
func Missing(field string) *FieldError {
	return &FieldError{Field: field, Err: ErrMissingField}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidTimestamp) ||
		errors.Is(err, ErrMissingField) ||
		errors.Is(err, ErrInvalidField) ||
		errors.Is(err, ErrInvalidMode) ||
		errors.Is(err, ErrInvalidInflation)
}
