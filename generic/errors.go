/*
errors.go - Centralized error types for the eligibility engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers match on the sentinels with errors.Is and pull details out of
  the structured types with errors.As.

ERROR CATEGORIES:
  1. Input errors - malformed date strings, impossible date combinations
  2. Classification errors - unknown regime or service class tags
  3. Store errors - missing employees, duplicate recorded determinations

USAGE:
  p, err := eligibility.NewPerson(in)
  if errors.Is(err, generic.ErrInvalidInput) {
      // basis date precedes birth or service start
  }

SEE ALSO:
  - time.go: ParseDate returns DateFormatError
  - eligibility/person.go: Derive returns InvalidInputError
  - store/sqlite/sqlite.go: Store errors
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
	// ErrInvalidDateFormat is returned when a date string does not look like
	// a 4-digit year followed by a 1-2 digit month and day.
	ErrInvalidDateFormat = errors.New("invalid date format")

	// ErrInvalidInput is returned when the inputs are well-formed dates but
	// would yield negative age or service.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownRegime is returned when no rule set exists for a regime tag.
	ErrUnknownRegime = errors.New("unknown retirement regime")

	// ErrUnknownServiceClass is returned for an unrecognized occupation tag.
	ErrUnknownServiceClass = errors.New("unknown service class")

	// ErrEmployeeNotFound is returned when a referenced employee doesn't exist.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrDuplicateDetermination is returned when a determination with the
	// same idempotency key was already recorded.
	ErrDuplicateDetermination = errors.New("duplicate determination")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// DateFormatError reports the offending input string.
type DateFormatError struct {
	Input  string
	Reason string
}

func (e *DateFormatError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid date format %q: %s", e.Input, e.Reason)
	}
	return fmt.Sprintf("invalid date format %q", e.Input)
}

func (e *DateFormatError) Unwrap() error {
	return ErrInvalidDateFormat
}

// InvalidInputError names the field that made the record unusable.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *InvalidInputError) Unwrap() error {
	return ErrInvalidInput
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidDateFormat) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrUnknownRegime) ||
		errors.Is(err, ErrUnknownServiceClass)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound)
}

// IsConflict returns true if the write was rejected as a duplicate.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateDetermination)
}
