package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/retirement-engine/eligibility"
	"github.com/warp/retirement-engine/generic"
	"github.com/warp/retirement-engine/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func alice() sqlite.Employee {
	return sqlite.Employee{
		ID:               "emp-001",
		Name:             "Alice Johnson",
		DateOfBirth:      generic.NewTimePoint(1966, time.August, 7),
		ServiceStartDate: generic.NewTimePoint(1991, time.September, 1),
		AppointmentType:  "career",
		ServiceClasses:   []eligibility.ServiceClass{eligibility.ClassLawEnforcement},
	}
}

func determinationFor(t *testing.T, emp sqlite.Employee, basis generic.TimePoint) eligibility.Determination {
	t.Helper()
	p, err := eligibility.NewPerson(emp.Input(basis))
	require.NoError(t, err)
	return eligibility.Evaluate(p)
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func TestEmployees_SaveGetListDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// GIVEN: Two saved employees
	require.NoError(t, store.SaveEmployee(ctx, alice()))
	require.NoError(t, store.SaveEmployee(ctx, sqlite.Employee{
		ID:               "emp-002",
		Name:             "Bob Smith",
		DateOfBirth:      generic.NewTimePoint(1950, time.May, 1),
		ServiceStartDate: generic.NewTimePoint(1975, time.June, 1),
	}))

	// WHEN: Reading one back
	got, err := store.GetEmployee(ctx, "emp-001")
	require.NoError(t, err)

	// THEN: Every field survives the round trip
	assert.Equal(t, "Alice Johnson", got.Name)
	assert.Equal(t, "1966-08-07", got.DateOfBirth.String())
	assert.Equal(t, "1991-09-01", got.ServiceStartDate.String())
	assert.Equal(t, "career", got.AppointmentType)
	assert.Equal(t, []eligibility.ServiceClass{eligibility.ClassLawEnforcement}, got.ServiceClasses)
	assert.False(t, got.CreatedAt.IsZero())

	all, err := store.ListEmployees(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, generic.EmployeeID("emp-001"), all[0].ID)
	assert.Empty(t, all[1].ServiceClasses)

	require.NoError(t, store.DeleteEmployee(ctx, "emp-002"))
	_, err = store.GetEmployee(ctx, "emp-002")
	assert.ErrorIs(t, err, generic.ErrEmployeeNotFound)
	assert.ErrorIs(t, store.DeleteEmployee(ctx, "emp-002"), generic.ErrEmployeeNotFound)
}

func TestEmployees_SaveIsUpsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	emp := alice()
	require.NoError(t, store.SaveEmployee(ctx, emp))

	emp.Name = "Alice J. Johnson"
	emp.ServiceStartDate = generic.NewTimePoint(1986, time.December, 31)
	require.NoError(t, store.SaveEmployee(ctx, emp))

	got, err := store.GetEmployee(ctx, emp.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice J. Johnson", got.Name)
	assert.Equal(t, "1986-12-31", got.ServiceStartDate.String())

	all, err := store.ListEmployees(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

// =============================================================================
// DETERMINATION LOG
// =============================================================================

func TestDeterminations_AppendAndList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	emp := alice()
	require.NoError(t, store.SaveEmployee(ctx, emp))

	// GIVEN: Determinations recorded out of basis order
	later := determinationFor(t, emp, generic.NewTimePoint(2023, time.September, 15))
	earlier := determinationFor(t, emp, generic.NewTimePoint(2022, time.December, 20))
	require.NoError(t, store.AppendDetermination(ctx, sqlite.NewDeterminationRecord(emp.ID, later, "api")))
	require.NoError(t, store.AppendDetermination(ctx, sqlite.NewDeterminationRecord(emp.ID, earlier, "sweep")))

	// WHEN: Listing the employee's history
	recs, err := store.ListDeterminations(ctx, emp.ID)
	require.NoError(t, err)

	// THEN: Ordered by basis date with the full determination restored
	require.Len(t, recs, 2)
	assert.Equal(t, "2022-12-20", recs[0].Determination.BasisDate.String())
	assert.Equal(t, "2023-09-15", recs[1].Determination.BasisDate.String())
	assert.Equal(t, "sweep", recs[0].Source)
	assert.Equal(t, "emp-001:2022-12-20", recs[0].IdempotencyKey)

	got := recs[0].Determination
	assert.Equal(t, eligibility.RegimeFERS, got.Regime)
	assert.Equal(t, earlier.Attributes, got.Attributes)
	assert.Equal(t, earlier.Outcomes, got.Outcomes)
	require.NotNil(t, got.ReductionFactor)
	assert.True(t, earlier.ReductionFactor.Equal(*got.ReductionFactor))
}

func TestDeterminations_DuplicateKeyRejected(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	emp := alice()

	d := determinationFor(t, emp, generic.NewTimePoint(2022, time.December, 20))
	require.NoError(t, store.AppendDetermination(ctx, sqlite.NewDeterminationRecord(emp.ID, d, "sweep")))

	err := store.AppendDetermination(ctx, sqlite.NewDeterminationRecord(emp.ID, d, "sweep"))
	assert.ErrorIs(t, err, generic.ErrDuplicateDetermination)
	assert.True(t, generic.IsConflict(err))

	exists, err := store.Exists(ctx, generic.DeterminationKey(emp.ID, d.BasisDate))
	require.NoError(t, err)
	assert.True(t, exists)

	recs, err := store.ListDeterminations(ctx, emp.ID)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestDeterminations_CSRSHasNoFactor(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	emp := sqlite.Employee{
		ID:               "emp-csrs",
		Name:             "Carol",
		DateOfBirth:      generic.NewTimePoint(1940, time.January, 1),
		ServiceStartDate: generic.NewTimePoint(1970, time.January, 1),
	}

	d := determinationFor(t, emp, generic.NewTimePoint(2000, time.January, 1))
	require.Nil(t, d.ReductionFactor)
	require.NoError(t, store.AppendDetermination(ctx, sqlite.NewDeterminationRecord(emp.ID, d, "api")))

	recs, err := store.ListDeterminations(ctx, emp.ID)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, eligibility.RegimeCSRS, recs[0].Determination.Regime)
	assert.Nil(t, recs[0].Determination.ReductionFactor)
}

func TestDeterminations_NegativeFactorStoredExactly(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	factor := decimal.RequireFromString("-0.6")
	d := eligibility.Determination{
		Regime:          eligibility.RegimeFERS,
		BasisDate:       generic.NewTimePoint(2020, time.January, 1),
		Outcomes:        []eligibility.Outcome{{Benefit: eligibility.BenefitEarly, Eligible: true}},
		ReductionFactor: &factor,
	}
	require.NoError(t, store.AppendDetermination(ctx, sqlite.NewDeterminationRecord("emp-x", d, "api")))

	recs, err := store.ListDeterminations(ctx, "emp-x")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "-0.6", recs[0].Determination.ReductionFactor.String())
}

func TestReset(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	emp := alice()
	require.NoError(t, store.SaveEmployee(ctx, emp))
	d := determinationFor(t, emp, generic.NewTimePoint(2022, time.December, 20))
	require.NoError(t, store.AppendDetermination(ctx, sqlite.NewDeterminationRecord(emp.ID, d, "api")))

	employees, determinations, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, employees)
	assert.Equal(t, 1, determinations)

	require.NoError(t, store.Reset(ctx))

	employees, determinations, err = store.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, employees)
	assert.Zero(t, determinations)
}
