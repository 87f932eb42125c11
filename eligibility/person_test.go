package eligibility_test

import (
	"errors"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/retirement-engine/eligibility"
	"github.com/warp/retirement-engine/generic"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func date(year int, month time.Month, day int) generic.TimePoint {
	return generic.NewTimePoint(year, month, day)
}

func mustPerson(t *testing.T, dob, scd string, basis generic.TimePoint) *eligibility.Person {
	t.Helper()
	p, err := eligibility.ParseInput(dob, scd, basis, "")
	require.NoError(t, err)
	return p
}

// =============================================================================
// DERIVATION
// =============================================================================

func TestDerive_JulianYearArithmetic(t *testing.T) {
	// GIVEN: Born 1966-08-07, service from 1991-09-01
	// WHEN: Evaluated on 2022-12-20
	// THEN: 56y 4m old, 31 years (11433 days) of service, MRA 56y 4m met

	a, err := eligibility.Derive(date(1966, time.August, 7), date(1991, time.September, 1), date(2022, time.December, 20))
	require.NoError(t, err)

	assert.Equal(t, 1966, a.BirthYear)
	assert.Equal(t, 56, a.AgeYears)
	assert.Equal(t, 4, a.AgeMonths)
	assert.Equal(t, 31, a.YearsOfService)
	assert.Equal(t, 11433, a.DaysOfService)
	assert.Equal(t, eligibility.MRA{Years: 56, Months: 4}, a.MinimumAge)
	assert.True(t, a.MeetsMinimumAge)
}

func TestDerive_MinimumAgeComparesYearsAndMonthsSeparately(t *testing.T) {
	// GIVEN: 57y 1m old against a 56y 4m threshold
	// WHEN: Deriving attributes
	// THEN: The threshold is reported as not met (1 month < 4 months)

	a, err := eligibility.Derive(date(1966, time.August, 7), date(1991, time.September, 1), date(2023, time.September, 15))
	require.NoError(t, err)

	assert.Equal(t, 57, a.AgeYears)
	assert.Equal(t, 1, a.AgeMonths)
	assert.Greater(t, a.AgeYears*12+a.AgeMonths, a.MinimumAge.TotalMonths())
	assert.False(t, a.MeetsMinimumAge)
}

func TestDerive_CenturiesApart(t *testing.T) {
	// GIVEN: A birth date more than 292 years before the basis
	// WHEN: Deriving attributes
	// THEN: Age and service are the exact Julian-year floors, not clamped

	a, err := eligibility.Derive(date(1700, time.January, 1), date(1720, time.January, 1), date(2020, time.January, 1))
	require.NoError(t, err)

	assert.Equal(t, 319, a.AgeYears)
	assert.Equal(t, 11, a.AgeMonths)
	assert.Equal(t, 109573, a.DaysOfService)
	assert.Equal(t, 299, a.YearsOfService)
}

func TestParseInput_ZeroDateIsAFormatError(t *testing.T) {
	_, err := eligibility.ParseInput("0001-01-01", "19910901", date(2020, time.January, 1), "")
	assert.ErrorIs(t, err, generic.ErrInvalidDateFormat)
	assert.NotErrorIs(t, err, generic.ErrInvalidInput)
}

func TestDerive_MonthsStayInRange(t *testing.T) {
	dob := date(1960, time.February, 29)
	for d := 0; d < 3*366; d += 5 {
		basis := date(2015, time.January, 1).AddDays(d)
		a, err := eligibility.Derive(dob, date(1990, time.January, 1), basis)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, a.AgeMonths, 0)
		assert.LessOrEqual(t, a.AgeMonths, 11)
	}
}

func TestDerive_BasisBeforeInputs_Rejected(t *testing.T) {
	cases := []struct {
		name  string
		dob   generic.TimePoint
		scd   generic.TimePoint
		basis generic.TimePoint
	}{
		{"before birth", date(1990, time.May, 1), date(2010, time.May, 1), date(1989, time.May, 1)},
		{"before service", date(1990, time.May, 1), date(2010, time.May, 1), date(2010, time.April, 30)},
		{"missing basis", date(1990, time.May, 1), date(2010, time.May, 1), generic.TimePoint{}},
		{"missing birth", generic.TimePoint{}, date(2010, time.May, 1), date(2020, time.May, 1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := eligibility.Derive(tc.dob, tc.scd, tc.basis)
			require.Error(t, err)
			assert.ErrorIs(t, err, generic.ErrInvalidInput)

			var inputErr *generic.InvalidInputError
			assert.True(t, errors.As(err, &inputErr))
		})
	}
}

func TestDerive_SameDayIsZeroService(t *testing.T) {
	a, err := eligibility.Derive(date(1990, time.May, 1), date(2010, time.May, 1), date(2010, time.May, 1))
	require.NoError(t, err)
	assert.Equal(t, 0, a.YearsOfService)
	assert.Equal(t, 0, a.DaysOfService)
}

// =============================================================================
// PERSON
// =============================================================================

func TestPerson_RegimeCutover(t *testing.T) {
	// GIVEN: Service starting exactly on 1987-01-01 and one day earlier
	// THEN: The cutover day is FERS, the day before is CSRS

	basis := date(2020, time.January, 1)
	onCutover := mustPerson(t, "19600101", "19870101", basis)
	dayBefore := mustPerson(t, "19600101", "19861231", basis)

	assert.Equal(t, eligibility.RegimeFERS, onCutover.Regime())
	assert.Equal(t, eligibility.RegimeCSRS, dayBefore.Regime())
	assert.Equal(t, eligibility.RegimeFERS, eligibility.RegimeFor(eligibility.CutoverDate))
	assert.Equal(t, eligibility.RegimeCSRS, eligibility.RegimeFor(eligibility.CutoverDate.AddDays(-1)))
}

func TestPerson_InvalidDateString(t *testing.T) {
	p, err := eligibility.ParseInput("not-a-date", "19910901", date(2020, time.January, 1), "")
	assert.Nil(t, p)
	assert.ErrorIs(t, err, generic.ErrInvalidDateFormat)

	p, err = eligibility.ParseInput("19660807", "1991/13/45", date(2020, time.January, 1), "")
	assert.Nil(t, p)
	assert.ErrorIs(t, err, generic.ErrInvalidDateFormat)
}

func TestPerson_HistoricalInputsConstruct(t *testing.T) {
	// Birth/service pairs from the legacy attribute fixtures.
	dobs := []string{"19380303", "19450102", "19500101", "19560202", "19650101", "19690303", "19700202", "19780908"}
	eods := []string{"1958-0303", "19690102", "19710101", "19790202", "19870101", "19890303", "19900202", "19980908"}
	basis := date(2021, time.June, 1)

	for i := range dobs {
		p := mustPerson(t, dobs[i], eods[i], basis)
		assert.Equal(t, eligibility.MinimumRetirementAge(p.BirthYear()), p.MinimumRetirementAge())
		assert.GreaterOrEqual(t, p.YearsOfService(), 0)
	}
}

func TestPerson_ServiceClassesCarried(t *testing.T) {
	p, err := eligibility.NewPerson(eligibility.Input{
		DateOfBirth:      date(1970, time.March, 3),
		ServiceStartDate: date(1995, time.March, 3),
		BasisDate:        date(2021, time.March, 3),
		AppointmentType:  "career",
		ServiceClasses: []eligibility.ServiceClass{
			eligibility.ClassLawEnforcement,
			eligibility.ClassAirTrafficController,
			eligibility.ClassLawEnforcement,
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "career", p.AppointmentType())
	assert.Equal(t, []eligibility.ServiceClass{
		eligibility.ClassAirTrafficController,
		eligibility.ClassLawEnforcement,
	}, p.ServiceClasses())
	assert.True(t, p.HasServiceClass(eligibility.ClassLawEnforcement))
	assert.False(t, p.HasServiceClass(eligibility.ClassCapitolPolice))
}

func TestParseServiceClass(t *testing.T) {
	c, err := eligibility.ParseServiceClass("Supreme Court Police")
	require.NoError(t, err)
	assert.Equal(t, eligibility.ClassSupremeCourtPolice, c)

	c, err = eligibility.ParseServiceClass("air traffic controller")
	require.NoError(t, err)
	assert.Equal(t, eligibility.ClassAirTrafficController, c)

	_, err = eligibility.ParseServiceClass("astronaut")
	assert.ErrorIs(t, err, generic.ErrUnknownServiceClass)
}

func TestPerson_Projection(t *testing.T) {
	p := mustPerson(t, "1966-08-07", "1991/09/01", date(2022, time.December, 20))

	raw, err := json.Marshal(p.Projection())
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"dob": "1966-08-07",
		"service_start_date": "1991-09-01",
		"years_of_service": 31,
		"age": 56,
		"birth_year": 1966,
		"minimum_retirement_age": {"years": 56, "months": 4},
		"meets_minimum_age_criteria": true,
		"regime": "FERS"
	}`, string(raw))
}
