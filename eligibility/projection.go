package eligibility

// Projection is a flat view of a Person for logs and test assertions.
// It is not a stable wire format.
type Projection struct {
	DateOfBirth          string         `json:"dob" yaml:"dob"`
	ServiceStartDate     string         `json:"service_start_date" yaml:"service_start_date"`
	YearsOfService       int            `json:"years_of_service" yaml:"years_of_service"`
	Age                  int            `json:"age" yaml:"age"`
	BirthYear            int            `json:"birth_year" yaml:"birth_year"`
	MinimumRetirementAge MRA            `json:"minimum_retirement_age" yaml:"minimum_retirement_age"`
	MeetsMinimumAge      bool           `json:"meets_minimum_age_criteria" yaml:"meets_minimum_age_criteria"`
	Regime               Regime         `json:"regime" yaml:"regime"`
	ServiceClasses       []ServiceClass `json:"service_classes,omitempty" yaml:"service_classes,omitempty"`
}

// Projection flattens the record.
func (p *Person) Projection() Projection {
	return Projection{
		DateOfBirth:          p.dateOfBirth.String(),
		ServiceStartDate:     p.serviceStartDate.String(),
		YearsOfService:       p.attrs.YearsOfService,
		Age:                  p.attrs.AgeYears,
		BirthYear:            p.attrs.BirthYear,
		MinimumRetirementAge: p.attrs.MinimumAge,
		MeetsMinimumAge:      p.attrs.MeetsMinimumAge,
		Regime:               p.regime,
		ServiceClasses:       p.ServiceClasses(),
	}
}
