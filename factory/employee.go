/*
Package factory provides JSON and CSV to eligibility.Input conversion.

PURPOSE:
  Converts external employee definitions into eligibility inputs. HR
  systems hand us employees as JSON documents; historical verification
  data arrives as CSV case files. The factory validates both and builds
  the eligibility.Input the rule engine evaluates.

JSON SCHEMA:
  {
    "id": "emp-001",
    "name": "Alice Johnson",
    "date_of_birth": "1966-08-07",
    "service_start_date": "1991/09/01",
    "appointment_type": "career",
    "service_classes": ["law_enforcement"]
  }

  Dates accept any form generic.ParseDate does (YYYYMMDD, YYYY-MM-DD,
  YYYY/MM/DD). The basis date is never part of the document: it is the
  question being asked, so callers supply it.

KEY FEATURES:
  - Validates JSON structure
  - Normalizes service class tags
  - Rejects malformed dates with generic.ErrInvalidDateFormat

USAGE:
  f := factory.NewEmployeeFactory()
  ej, err := f.ParseEmployee(jsonString)
  in, err := f.ToInput(ej, basis)
  person, err := eligibility.NewPerson(in)

SEE ALSO:
  - cases.go: CSV case-file loader
  - eligibility/person.go: Input and Person
*/
package factory

import (
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/warp/retirement-engine/eligibility"
	"github.com/warp/retirement-engine/generic"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// EmployeeJSON is the JSON representation of an employee.
type EmployeeJSON struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	DateOfBirth      string   `json:"date_of_birth"`
	ServiceStartDate string   `json:"service_start_date"`
	AppointmentType  string   `json:"appointment_type,omitempty"`
	ServiceClasses   []string `json:"service_classes,omitempty"`
}

// =============================================================================
// EMPLOYEE FACTORY
// =============================================================================

// EmployeeFactory converts employee documents to eligibility inputs.
type EmployeeFactory struct{}

// NewEmployeeFactory creates a new employee factory.
func NewEmployeeFactory() *EmployeeFactory {
	return &EmployeeFactory{}
}

// ParseEmployee parses a JSON string into an EmployeeJSON and checks that
// its dates and service classes are usable.
func (f *EmployeeFactory) ParseEmployee(jsonStr string) (EmployeeJSON, error) {
	var ej EmployeeJSON
	if err := json.Unmarshal([]byte(jsonStr), &ej); err != nil {
		return EmployeeJSON{}, fmt.Errorf("failed to parse employee JSON: %w", err)
	}
	if err := f.Validate(ej); err != nil {
		return EmployeeJSON{}, err
	}
	return ej, nil
}

// Validate checks everything ToInput would reject except the basis date.
func (f *EmployeeFactory) Validate(ej EmployeeJSON) error {
	if _, err := parseDateField("date_of_birth", ej.DateOfBirth); err != nil {
		return err
	}
	if _, err := parseDateField("service_start_date", ej.ServiceStartDate); err != nil {
		return err
	}
	_, err := parseClasses(ej.ServiceClasses)
	return err
}

// ToInput builds the eligibility input for ej evaluated as of basis.
func (f *EmployeeFactory) ToInput(ej EmployeeJSON, basis generic.TimePoint) (eligibility.Input, error) {
	dob, err := parseDateField("date_of_birth", ej.DateOfBirth)
	if err != nil {
		return eligibility.Input{}, err
	}
	scd, err := parseDateField("service_start_date", ej.ServiceStartDate)
	if err != nil {
		return eligibility.Input{}, err
	}
	classes, err := parseClasses(ej.ServiceClasses)
	if err != nil {
		return eligibility.Input{}, err
	}

	return eligibility.Input{
		DateOfBirth:      dob,
		ServiceStartDate: scd,
		BasisDate:        basis,
		AppointmentType:  ej.AppointmentType,
		ServiceClasses:   classes,
	}, nil
}

// ToJSON renders a person back into the document form.
func (f *EmployeeFactory) ToJSON(id, name string, p *eligibility.Person) EmployeeJSON {
	ej := EmployeeJSON{
		ID:               id,
		Name:             name,
		DateOfBirth:      p.DateOfBirth().String(),
		ServiceStartDate: p.ServiceStartDate().String(),
		AppointmentType:  p.AppointmentType(),
	}
	for _, c := range p.ServiceClasses() {
		ej.ServiceClasses = append(ej.ServiceClasses, string(c))
	}
	return ej
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func parseDateField(field, s string) (generic.TimePoint, error) {
	if s == "" {
		return generic.TimePoint{}, &generic.InvalidInputError{Field: field, Reason: "required"}
	}
	tp, err := generic.ParseDate(s)
	if err != nil {
		return generic.TimePoint{}, fmt.Errorf("%s: %w", field, err)
	}
	return tp, nil
}

func parseClasses(tags []string) ([]eligibility.ServiceClass, error) {
	var classes []eligibility.ServiceClass
	for _, tag := range tags {
		c, err := eligibility.ParseServiceClass(tag)
		if err != nil {
			return nil, err
		}
		classes = append(classes, c)
	}
	return classes, nil
}
