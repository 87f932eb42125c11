package eligibility

import "fmt"

// =============================================================================
// MINIMUM RETIREMENT AGE - FERS age creep by birth year
// =============================================================================

// MRA is a minimum retirement age expressed as whole years plus months.
type MRA struct {
	Years  int `json:"years" yaml:"years"`
	Months int `json:"months" yaml:"months"`
}

// TotalMonths flattens the threshold to months.
func (m MRA) TotalMonths() int { return m.Years*12 + m.Months }

func (m MRA) String() string { return fmt.Sprintf("%dy %dm", m.Years, m.Months) }

type mraTier struct {
	through int // last birth year covered by the tier
	mra     MRA
}

// Ordered; the first tier whose `through` is >= the birth year wins.
var mraTiers = []mraTier{
	{1947, MRA{55, 0}},
	{1948, MRA{55, 2}},
	{1949, MRA{55, 4}},
	{1950, MRA{55, 6}},
	{1951, MRA{55, 8}},
	{1952, MRA{55, 10}},
	{1964, MRA{56, 0}},
	{1965, MRA{56, 2}},
	{1966, MRA{56, 4}},
	{1967, MRA{56, 6}},
	{1968, MRA{56, 8}},
	{1969, MRA{56, 10}},
}

// finalEraMRA applies to everyone born in 1970 or later.
var finalEraMRA = MRA{57, 0}

// MinimumRetirementAge returns the FERS minimum retirement age for a birth
// year. Defined for every year; there is no error case.
func MinimumRetirementAge(birthYear int) MRA {
	for _, t := range mraTiers {
		if birthYear <= t.through {
			return t.mra
		}
	}
	return finalEraMRA
}
