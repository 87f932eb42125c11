/*
Package generic provides the calendar and error primitives shared by the
retirement engine.

PURPOSE:
  This package contains the domain-agnostic pieces every other package
  builds on: a day-resolution TimePoint, whole-day arithmetic under the
  365.25-day year, tolerant date-string parsing, identifiers, and the
  error taxonomy the API maps onto HTTP status codes.

KEY CONCEPTS IN THIS FILE (types.go):
  - EmployeeID: Stable identifier of a stored employee record
  - DeterminationID: Identifier of one recorded determination
  - DeterminationKey: Idempotency key for "employee X as of day D"

DESIGN PRINCIPLES:
  1. Explicit time: Nothing below a process boundary reads the clock
  2. Type Safety: Strong typing for IDs prevents mixing employee/record IDs
  3. Auditability: Recorded determinations are keyed, never rewritten

USAGE:
  dob, err := generic.ParseDate("1966-08-07")
  basis := generic.NewTimePoint(2022, time.December, 20)
  days := generic.DaysBetween(dob, basis)

SEE ALSO:
  - time.go: TimePoint, day arithmetic, ParseDate
  - errors.go: Sentinel errors and classifiers
  - ../eligibility: The rule engine built on these primitives
*/
package generic

import "github.com/google/uuid"

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type DeterminationID string

// NewEmployeeID returns a random identifier for an employee created without one.
func NewEmployeeID() EmployeeID { return EmployeeID(uuid.NewString()) }

// NewDeterminationID returns a random identifier for a recorded determination.
func NewDeterminationID() DeterminationID { return DeterminationID(uuid.NewString()) }

// DeterminationKey is the idempotency key for one employee on one basis date.
// Recording the same pair twice is rejected by the store.
func DeterminationKey(employee EmployeeID, basis TimePoint) string {
	return string(employee) + ":" + basis.String()
}
