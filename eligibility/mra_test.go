package eligibility_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/warp/retirement-engine/eligibility"
)

func TestMinimumRetirementAge_Table(t *testing.T) {
	cases := []struct {
		birthYear int
		want      eligibility.MRA
	}{
		{1900, eligibility.MRA{Years: 55, Months: 0}},
		{1947, eligibility.MRA{Years: 55, Months: 0}},
		{1948, eligibility.MRA{Years: 55, Months: 2}},
		{1949, eligibility.MRA{Years: 55, Months: 4}},
		{1950, eligibility.MRA{Years: 55, Months: 6}},
		{1951, eligibility.MRA{Years: 55, Months: 8}},
		{1952, eligibility.MRA{Years: 55, Months: 10}},
		{1953, eligibility.MRA{Years: 56, Months: 0}},
		{1960, eligibility.MRA{Years: 56, Months: 0}},
		{1964, eligibility.MRA{Years: 56, Months: 0}},
		{1965, eligibility.MRA{Years: 56, Months: 2}},
		{1966, eligibility.MRA{Years: 56, Months: 4}},
		{1967, eligibility.MRA{Years: 56, Months: 6}},
		{1968, eligibility.MRA{Years: 56, Months: 8}},
		{1969, eligibility.MRA{Years: 56, Months: 10}},
		{1970, eligibility.MRA{Years: 57, Months: 0}},
		{2001, eligibility.MRA{Years: 57, Months: 0}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, eligibility.MinimumRetirementAge(tc.birthYear), "birth year %d", tc.birthYear)
	}
}

func TestMinimumRetirementAge_OpenEnds(t *testing.T) {
	for y := -500; y < 1948; y += 7 {
		assert.Equal(t, eligibility.MRA{Years: 55}, eligibility.MinimumRetirementAge(y), "birth year %d", y)
	}
	for y := 1970; y < 3000; y += 13 {
		assert.Equal(t, eligibility.MRA{Years: 57}, eligibility.MinimumRetirementAge(y), "birth year %d", y)
	}
}

func TestMinimumRetirementAge_Monotonic(t *testing.T) {
	prev := eligibility.MinimumRetirementAge(1940)
	for y := 1941; y <= 1975; y++ {
		cur := eligibility.MinimumRetirementAge(y)
		assert.GreaterOrEqual(t, cur.Years, prev.Years, "years regressed at %d", y)
		assert.GreaterOrEqual(t, cur.TotalMonths(), prev.TotalMonths(), "threshold regressed at %d", y)
		prev = cur
	}
}

func TestMRA_String(t *testing.T) {
	assert.Equal(t, "56y 4m", eligibility.MRA{Years: 56, Months: 4}.String())
	assert.Equal(t, 676, eligibility.MRA{Years: 56, Months: 4}.TotalMonths())
}
