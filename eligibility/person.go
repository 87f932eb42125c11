/*
Package eligibility computes federal civil-service retirement eligibility.

PURPOSE:
  Given a birth date, a service computation date and an as-of basis date,
  derive age and service, then answer eligibility questions under the
  regime the employee falls in: FERS for service starting on or after
  1987-01-01, CSRS before that.

KEY CONCEPTS:
  - Person: immutable record of inputs plus derived attributes
  - Attributes: age, service and minimum-retirement-age facts at the basis date
  - Rules: one rule set per regime (FERS, CSRS), selected automatically
  - Determination: every benefit outcome for one person at one basis date

ARITHMETIC:
  All durations use the 365.25-day Julian year. Whole years are floored;
  the month remainder comes from the same fractional year (x 12, floored),
  not from calendar month subtraction. This keeps numeric parity with the
  historical fixture data even where calendar arithmetic would disagree.

DETERMINISM:
  Nothing in this package reads the clock. The basis date is always
  supplied by the caller, so "was this person eligible on date X" is just
  a record built with basis X.

USAGE:
  p, err := eligibility.ParseInput("1966-08-07", "1991-09-01", basis)
  d := eligibility.Evaluate(p)
  if d.Eligible(eligibility.BenefitImmediate) { ... }

SEE ALSO:
  - mra.go: minimum retirement age table
  - fers.go, csrs.go: rule sets
  - regime.go: regime dispatch and Determination
*/
package eligibility

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/warp/retirement-engine/generic"
)

// =============================================================================
// SERVICE CLASSES - Designated special-provision occupations
// =============================================================================

// ServiceClass tags an employee's designated occupation. Classes are carried
// on the record and reported, but no rule consults them yet.
type ServiceClass string

const (
	ClassAirTrafficController    ServiceClass = "air_traffic_controller"
	ClassLawEnforcement          ServiceClass = "law_enforcement"
	ClassFirefighter             ServiceClass = "firefighter"
	ClassNuclearMaterialsCourier ServiceClass = "nuclear_materials_courier"
	ClassSupremeCourtPolice      ServiceClass = "supreme_court_police"
	ClassCapitolPolice           ServiceClass = "capitol_police"
)

var knownClasses = map[ServiceClass]bool{
	ClassAirTrafficController:    true,
	ClassLawEnforcement:          true,
	ClassFirefighter:             true,
	ClassNuclearMaterialsCourier: true,
	ClassSupremeCourtPolice:      true,
	ClassCapitolPolice:           true,
}

// ParseServiceClass accepts either the tag or its human label
// ("Supreme Court Police", "air traffic controller").
func ParseServiceClass(s string) (ServiceClass, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	c := ServiceClass(norm)
	if !knownClasses[c] {
		return "", &classError{input: s}
	}
	return c, nil
}

type classError struct{ input string }

func (e *classError) Error() string { return fmt.Sprintf("unknown service class %q", e.input) }
func (e *classError) Unwrap() error { return generic.ErrUnknownServiceClass }

// normalizeClasses dedupes and sorts so equal sets compare equal.
func normalizeClasses(in []ServiceClass) []ServiceClass {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[ServiceClass]bool, len(in))
	out := make([]ServiceClass, 0, len(in))
	for _, c := range in {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// =============================================================================
// ATTRIBUTES - Derived age and service facts
// =============================================================================

// Attributes are the derived facts every rule reads.
type Attributes struct {
	BirthYear       int  `json:"birth_year" yaml:"birth_year"`
	AgeYears        int  `json:"age_years" yaml:"age_years"`
	AgeMonths       int  `json:"age_months" yaml:"age_months"` // 0-11
	YearsOfService  int  `json:"years_of_service" yaml:"years_of_service"`
	DaysOfService   int  `json:"days_of_service" yaml:"days_of_service"`
	MinimumAge      MRA  `json:"minimum_retirement_age" yaml:"minimum_retirement_age"`
	MeetsMinimumAge bool `json:"meets_minimum_age" yaml:"meets_minimum_age"`
}

// Derive computes Attributes at the basis date. A basis date before the
// birth date or the service start is rejected rather than producing
// negative durations.
func Derive(dateOfBirth, serviceStart, basis generic.TimePoint) (Attributes, error) {
	switch {
	case dateOfBirth.IsZero():
		return Attributes{}, &generic.InvalidInputError{Field: "date_of_birth", Reason: "required"}
	case serviceStart.IsZero():
		return Attributes{}, &generic.InvalidInputError{Field: "service_start_date", Reason: "required"}
	case basis.IsZero():
		return Attributes{}, &generic.InvalidInputError{Field: "basis_date", Reason: "required"}
	case basis.Before(dateOfBirth):
		return Attributes{}, &generic.InvalidInputError{
			Field:  "basis_date",
			Reason: "basis " + basis.String() + " precedes date of birth " + dateOfBirth.String(),
		}
	case basis.Before(serviceStart):
		return Attributes{}, &generic.InvalidInputError{
			Field:  "basis_date",
			Reason: "basis " + basis.String() + " precedes service start " + serviceStart.String(),
		}
	}

	age := generic.JulianYears(generic.DaysBetween(dateOfBirth, basis))
	ageYears := math.Floor(age)
	serviceDays := generic.DaysBetween(serviceStart, basis)

	a := Attributes{
		BirthYear:      dateOfBirth.Year(),
		AgeYears:       int(ageYears),
		AgeMonths:      int(math.Floor((age - ageYears) * 12)),
		YearsOfService: int(math.Floor(generic.JulianYears(serviceDays))),
		DaysOfService:  serviceDays,
	}
	a.MinimumAge = MinimumRetirementAge(a.BirthYear)
	a.MeetsMinimumAge = meetsMinimumAge(a.AgeYears, a.AgeMonths, a.MinimumAge)
	return a, nil
}

// meetsMinimumAge checks years and months independently. Someone at 57y 1m
// against a 56y 4m threshold fails because 1 < 4; historical determinations
// were made with this comparison.
func meetsMinimumAge(ageYears, ageMonths int, mra MRA) bool {
	return ageYears >= mra.Years && ageMonths >= mra.Months
}

// =============================================================================
// PERSON - Immutable evaluation record
// =============================================================================

// Input is everything needed to build a Person.
type Input struct {
	DateOfBirth      generic.TimePoint
	ServiceStartDate generic.TimePoint
	BasisDate        generic.TimePoint
	AppointmentType  string
	ServiceClasses   []ServiceClass
}

// Person is built once per basis date and never mutated. Evaluate it again
// "as of" another day by building a new one.
type Person struct {
	dateOfBirth      generic.TimePoint
	serviceStartDate generic.TimePoint
	basisDate        generic.TimePoint
	appointmentType  string
	serviceClasses   []ServiceClass

	attrs  Attributes
	regime Regime
}

// NewPerson validates the input and derives every attribute.
func NewPerson(in Input) (*Person, error) {
	attrs, err := Derive(in.DateOfBirth, in.ServiceStartDate, in.BasisDate)
	if err != nil {
		return nil, err
	}
	return &Person{
		dateOfBirth:      in.DateOfBirth,
		serviceStartDate: in.ServiceStartDate,
		basisDate:        in.BasisDate,
		appointmentType:  in.AppointmentType,
		serviceClasses:   normalizeClasses(in.ServiceClasses),
		attrs:            attrs,
		regime:           RegimeFor(in.ServiceStartDate),
	}, nil
}

// ParseInput builds a Person from date strings. See generic.ParseDate for
// the accepted formats.
func ParseInput(dateOfBirth, serviceStart string, basis generic.TimePoint, appointmentType string, classes ...ServiceClass) (*Person, error) {
	dob, err := generic.ParseDate(dateOfBirth)
	if err != nil {
		return nil, err
	}
	scd, err := generic.ParseDate(serviceStart)
	if err != nil {
		return nil, err
	}
	return NewPerson(Input{
		DateOfBirth:      dob,
		ServiceStartDate: scd,
		BasisDate:        basis,
		AppointmentType:  appointmentType,
		ServiceClasses:   classes,
	})
}

func (p *Person) DateOfBirth() generic.TimePoint      { return p.dateOfBirth }
func (p *Person) ServiceStartDate() generic.TimePoint { return p.serviceStartDate }
func (p *Person) BasisDate() generic.TimePoint        { return p.basisDate }
func (p *Person) AppointmentType() string             { return p.appointmentType }
func (p *Person) Regime() Regime                      { return p.regime }
func (p *Person) Attributes() Attributes              { return p.attrs }

func (p *Person) BirthYear() int            { return p.attrs.BirthYear }
func (p *Person) AgeYears() int             { return p.attrs.AgeYears }
func (p *Person) AgeMonths() int            { return p.attrs.AgeMonths }
func (p *Person) YearsOfService() int       { return p.attrs.YearsOfService }
func (p *Person) DaysOfService() int        { return p.attrs.DaysOfService }
func (p *Person) MinimumRetirementAge() MRA { return p.attrs.MinimumAge }
func (p *Person) MeetsMinimumAge() bool     { return p.attrs.MeetsMinimumAge }

// ServiceClasses returns a copy of the sorted class set.
func (p *Person) ServiceClasses() []ServiceClass {
	return append([]ServiceClass(nil), p.serviceClasses...)
}

// HasServiceClass reports membership in the class set.
func (p *Person) HasServiceClass(c ServiceClass) bool {
	for _, have := range p.serviceClasses {
		if have == c {
			return true
		}
	}
	return false
}

// Input returns the inputs the record was built from.
func (p *Person) Input() Input {
	return Input{
		DateOfBirth:      p.dateOfBirth,
		ServiceStartDate: p.serviceStartDate,
		BasisDate:        p.basisDate,
		AppointmentType:  p.appointmentType,
		ServiceClasses:   p.ServiceClasses(),
	}
}
