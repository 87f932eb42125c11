package eligibility

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/retirement-engine/generic"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func withAttrs(a Attributes) *Person {
	return &Person{attrs: a}
}

// ageService builds attributes for a FERS-era birth year with the month
// remainder fixed, so MeetsMinimumAge follows the real comparison.
func ageService(birthYear, ageYears, ageMonths, yos int) Attributes {
	mra := MinimumRetirementAge(birthYear)
	return Attributes{
		BirthYear:       birthYear,
		AgeYears:        ageYears,
		AgeMonths:       ageMonths,
		YearsOfService:  yos,
		DaysOfService:   int(float64(yos) * generic.JulianYear),
		MinimumAge:      mra,
		MeetsMinimumAge: meetsMinimumAge(ageYears, ageMonths, mra),
	}
}

func parsed(t *testing.T, dob, scd string, basis generic.TimePoint) *Person {
	t.Helper()
	p, err := ParseInput(dob, scd, basis, "")
	require.NoError(t, err)
	return p
}

// =============================================================================
// FERS
// =============================================================================

func TestFERS_Immediate(t *testing.T) {
	f := FERS{}
	cases := []struct {
		name string
		a    Attributes
		want bool
	}{
		{"MRA with 30", ageService(1970, 57, 0, 30), true},
		{"MRA with 29", ageService(1970, 57, 0, 29), false},
		{"60 with 20", ageService(1970, 60, 5, 20), true},
		{"59 with 29", ageService(1975, 59, 5, 29), false},
		{"62 with 5", ageService(1970, 62, 0, 5), true},
		{"62 with 4", ageService(1970, 62, 0, 4), false},
		{"61 with 19", ageService(1970, 61, 11, 19), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, f.IsImmediatelyEligible(withAttrs(tc.a)))
		})
	}
}

func TestFERS_Early(t *testing.T) {
	f := FERS{}
	cases := []struct {
		name string
		a    Attributes
		want bool
	}{
		{"under 20 years", ageService(1970, 55, 0, 19), false},
		{"under 36", ageService(1990, 35, 0, 20), false},
		{"50 with 20", ageService(1970, 50, 0, 20), true},
		{"49 with 24", ageService(1970, 49, 0, 24), false},
		{"41 with 25", ageService(1980, 41, 0, 25), true},
		{"40 with 25", ageService(1980, 40, 0, 25), false},
		{"36 with 20", ageService(1985, 36, 0, 20), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, f.IsEarlyRetirementEligible(withAttrs(tc.a)))
		})
	}
}

func TestFERS_Deferred(t *testing.T) {
	f := FERS{}
	assert.True(t, f.IsDeferredRetirementEligible(withAttrs(ageService(1960, 62, 0, 5))))
	assert.True(t, f.IsDeferredRetirementEligible(withAttrs(ageService(1970, 57, 0, 10))))
	assert.False(t, f.IsDeferredRetirementEligible(withAttrs(ageService(1970, 57, 0, 9))))
	assert.False(t, f.IsDeferredRetirementEligible(withAttrs(ageService(1970, 56, 11, 30))))
	assert.False(t, f.IsDeferredRetirementEligible(withAttrs(ageService(1960, 61, 11, 9))))
}

func TestFERS_Deferred_Monotonic(t *testing.T) {
	// GIVEN: Deferred eligibility holds at (age, service)
	// THEN: It still holds for every older age and longer service with the
	// same birth year and month remainder

	f := FERS{}
	for _, birthYear := range []int{1947, 1950, 1966, 1972} {
		for months := 0; months < 12; months += 3 {
			for age := 18; age <= 75; age++ {
				for yos := 0; yos <= 45; yos++ {
					if !f.IsDeferredRetirementEligible(withAttrs(ageService(birthYear, age, months, yos))) {
						continue
					}
					older := withAttrs(ageService(birthYear, age+1, months, yos))
					longer := withAttrs(ageService(birthYear, age, months, yos+1))
					require.True(t, f.IsDeferredRetirementEligible(older), "by=%d age=%d m=%d yos=%d", birthYear, age+1, months, yos)
					require.True(t, f.IsDeferredRetirementEligible(longer), "by=%d age=%d m=%d yos=%d", birthYear, age, months, yos+1)
				}
			}
		}
	}
}

func TestFERS_Disability_Boundary(t *testing.T) {
	// GIVEN: 547, 548 and 549 days of service (1.5 x 365.25 = 547.875)
	// THEN: 547 fails, 548 and 549 pass, regardless of age

	f := FERS{}
	scd := date(2020, time.January, 1)
	for _, tc := range []struct {
		days int
		want bool
	}{{547, false}, {548, true}, {549, true}} {
		for _, dob := range []generic.TimePoint{date(1955, time.June, 1), date(2000, time.June, 1)} {
			p, err := NewPerson(Input{DateOfBirth: dob, ServiceStartDate: scd, BasisDate: scd.AddDays(tc.days)})
			require.NoError(t, err)
			assert.Equal(t, tc.days, p.DaysOfService())
			assert.Equal(t, tc.want, f.IsDisabilityRetirementEligible(p), "days=%d dob=%s", tc.days, dob)
		}
	}
}

func TestFERS_ReductionFactor(t *testing.T) {
	f := FERS{}
	cases := []struct {
		name string
		a    Attributes
		want string
	}{
		{"MRA with 27 years at 57", ageService(1970, 57, 0, 27), "0.75"},
		{"MRA with 10 years at 59", ageService(1970, 59, 0, 10), "0.85"},
		{"MRA with 10 years at 64 capped", ageService(1970, 64, 0, 10), "1"},
		{"MRA with 30 years", ageService(1970, 57, 0, 30), "1"},
		{"MRA with 9 years", ageService(1970, 57, 0, 9), "0"},
		{"no MRA, 60 with 20", ageService(1966, 60, 2, 20), "1"},
		{"no MRA, 62 with 5", ageService(1966, 62, 2, 5), "1"},
		{"no MRA, 56 with 30", ageService(1966, 56, 0, 31), "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := f.ReductionFactor(withAttrs(tc.a))
			assert.True(t, got.Equal(decimal.RequireFromString(tc.want)), "got %s want %s", got, tc.want)
			assert.InDelta(t, got.InexactFloat64(), f.ImmediateBenefitReductionFactor(withAttrs(tc.a)), 1e-12)
		})
	}
}

func TestFERS_ReductionFactor_NotFloored(t *testing.T) {
	// A record that meets MRA at 30 with 12 years: 1 - 32 x 0.05 = -0.6.
	a := Attributes{AgeYears: 30, YearsOfService: 12, MeetsMinimumAge: true}
	assert.InDelta(t, -0.6, FERS{}.ImmediateBenefitReductionFactor(withAttrs(a)), 1e-12)
}

func TestFERS_ReductionFactor_NonIncreasingWithYearsUnder62(t *testing.T) {
	f := FERS{}
	for yos := 10; yos < 30; yos++ {
		prev := f.ReductionFactor(withAttrs(ageService(1970, 57, 0, yos)))
		for age := 58; age <= 70; age++ {
			cur := f.ReductionFactor(withAttrs(ageService(1970, age, 0, yos)))
			assert.True(t, cur.GreaterThanOrEqual(prev), "yos=%d age=%d", yos, age)
			prev = cur
		}
	}
	for age := 57; age <= 70; age++ {
		for yos := 30; yos <= 40; yos++ {
			assert.Equal(t, 1.0, f.ImmediateBenefitReductionFactor(withAttrs(ageService(1970, age, 0, yos))))
		}
	}
}

func TestFERS_HistoricalScenario_FullAnnuity(t *testing.T) {
	// GIVEN: Born 1966-08-07, service from 1991-09-01
	// WHEN: Evaluated at MRA (2022-12-20) and later on 2026-10-17
	// THEN: Full annuity both times; the later date misses the MRA month
	// check but qualifies through 60 with 20

	f := FERS{}
	atMRA := parsed(t, "1966-08-07", "1991-09-01", date(2022, time.December, 20))
	assert.True(t, atMRA.MeetsMinimumAge())
	assert.Equal(t, 1.0, f.ImmediateBenefitReductionFactor(atMRA))

	later := parsed(t, "1966-08-07", "1991-09-01", date(2026, time.October, 17))
	assert.False(t, later.MeetsMinimumAge())
	assert.Equal(t, 60, later.AgeYears())
	assert.Equal(t, 35, later.YearsOfService())
	assert.Equal(t, 1.0, f.ImmediateBenefitReductionFactor(later))

	beforeMRA := parsed(t, "1966-08-07", "1991-09-01", date(2022, time.September, 1))
	assert.Equal(t, 0.0, f.ImmediateBenefitReductionFactor(beforeMRA))
}

// =============================================================================
// CSRS
// =============================================================================

func TestCSRS_Retirement(t *testing.T) {
	c := CSRS{}
	assert.True(t, c.IsRetirementEligible(withAttrs(Attributes{AgeYears: 62, YearsOfService: 5})))
	assert.False(t, c.IsRetirementEligible(withAttrs(Attributes{AgeYears: 62, YearsOfService: 4})))
	assert.True(t, c.IsRetirementEligible(withAttrs(Attributes{AgeYears: 60, YearsOfService: 25})))
	assert.False(t, c.IsRetirementEligible(withAttrs(Attributes{AgeYears: 60, YearsOfService: 24})))
	assert.True(t, c.IsRetirementEligible(withAttrs(Attributes{AgeYears: 55, YearsOfService: 30})))
	assert.False(t, c.IsRetirementEligible(withAttrs(Attributes{AgeYears: 54, YearsOfService: 40})))
}

func TestCSRS_Retirement_FiveYearsAfter62(t *testing.T) {
	// GIVEN: Born 1920, service from 1980-06-01, evaluated 1985-06-02
	// THEN: 65 years old with exactly 5 years of service is eligible

	p := parsed(t, "1920-03-01", "1980-06-01", date(1985, time.June, 2))
	require.Equal(t, RegimeCSRS, p.Regime())
	assert.Equal(t, 5, p.YearsOfService())
	assert.Equal(t, 65, p.AgeYears())
	assert.True(t, CSRS{}.IsRetirementEligible(p))

	dayShort := parsed(t, "1920-03-01", "1980-06-01", date(1985, time.May, 31))
	assert.Equal(t, 4, dayShort.YearsOfService())
	assert.False(t, CSRS{}.IsRetirementEligible(dayShort))
}

func TestCSRS_SharedFormulaCategories(t *testing.T) {
	c := CSRS{}
	predicates := map[string]func(*Person) bool{
		"special provision":    c.IsSpecialProvisionEligible,
		"early":                c.IsEarlyRetirementEligible,
		"discontinued service": c.IsDiscontinuedServiceEligible,
	}
	cases := []struct {
		age, yos int
		want     bool
	}{
		{50, 20, true},
		{49, 20, false},
		{50, 19, false},
		{41, 25, true},
		{40, 25, false},
		{45, 24, false},
	}
	for name, pred := range predicates {
		for _, tc := range cases {
			got := pred(withAttrs(Attributes{AgeYears: tc.age, YearsOfService: tc.yos}))
			assert.Equal(t, tc.want, got, "%s age=%d yos=%d", name, tc.age, tc.yos)
		}
	}
}

func TestCSRS_Disability(t *testing.T) {
	c := CSRS{}
	assert.True(t, c.IsDisabilityRetirementEligible(withAttrs(Attributes{AgeYears: 18, DaysOfService: 548})))
	assert.False(t, c.IsDisabilityRetirementEligible(withAttrs(Attributes{AgeYears: 17, DaysOfService: 900})))
	assert.False(t, c.IsDisabilityRetirementEligible(withAttrs(Attributes{AgeYears: 40, DaysOfService: 547})))
}

// =============================================================================
// DISPATCH
// =============================================================================

func TestEvaluate_DispatchesOnRegime(t *testing.T) {
	basis := date(2023, time.January, 1)

	fers := Evaluate(parsed(t, "1966-08-07", "1991-09-01", basis))
	assert.Equal(t, RegimeFERS, fers.Regime)
	assert.Equal(t, basis, fers.BasisDate)
	assert.Len(t, fers.Outcomes, 4)
	require.NotNil(t, fers.ReductionFactor)
	assert.True(t, fers.ReductionFactor.Equal(decimal.NewFromInt(1)))
	assert.True(t, fers.Eligible(BenefitImmediate))
	assert.True(t, fers.Eligible(BenefitEarly))
	assert.True(t, fers.Eligible(BenefitDeferred))
	assert.True(t, fers.Eligible(BenefitDisability))
	assert.False(t, fers.Eligible(BenefitSpecialProvision))

	csrs := Evaluate(parsed(t, "1940-01-01", "1970-01-01", basis))
	assert.Equal(t, RegimeCSRS, csrs.Regime)
	assert.Nil(t, csrs.ReductionFactor)
	assert.Len(t, csrs.Outcomes, 5)
	assert.Equal(t, []Benefit{
		BenefitImmediate, BenefitEarly, BenefitSpecialProvision, BenefitDiscontinuedService, BenefitDisability,
	}, csrs.EligibleBenefits())
}

func TestRulesFor(t *testing.T) {
	r, err := RulesFor(RegimeCSRS)
	require.NoError(t, err)
	assert.Equal(t, RegimeCSRS, r.Regime())

	_, err = RulesFor(Regime("PRS"))
	assert.ErrorIs(t, err, generic.ErrUnknownRegime)

	_, err = ParseRegime("FERS")
	assert.NoError(t, err)
}

func date(year int, month time.Month, day int) generic.TimePoint {
	return generic.NewTimePoint(year, month, day)
}
