package eligibility

import (
	"github.com/shopspring/decimal"
	"github.com/warp/retirement-engine/generic"
)

// minEmploymentAge is the youngest legal hiring age; age floors for the
// "any age" service paths are derived from it.
const minEmploymentAge = 16

// disabilityServiceDays is the 18-month service requirement for disability.
const disabilityServiceDays = 1.5 * generic.JulianYear

var (
	fullAnnuity      = decimal.NewFromInt(1)
	reductionPerYear = decimal.RequireFromString("0.05")
	unreducedAge     = decimal.NewFromInt(62)
)

// FERS is the rule set for the Federal Employees Retirement System.
//
//	Immediate:  MRA+30, 60+20, 62+5
//	Early:      50+20, any age+25 (involuntary separation / RIF)
//	Deferred:   62+5, MRA+30, MRA+10
//	Disability: 18 months of service, any age
type FERS struct{}

func (FERS) Regime() Regime { return RegimeFERS }

func (FERS) Benefits() []Benefit {
	return []Benefit{BenefitImmediate, BenefitEarly, BenefitDeferred, BenefitDisability}
}

func (f FERS) Determine(p *Person) Determination {
	d := newDetermination(f, p, func(b Benefit) bool {
		switch b {
		case BenefitImmediate:
			return f.IsImmediatelyEligible(p)
		case BenefitEarly:
			return f.IsEarlyRetirementEligible(p)
		case BenefitDeferred:
			return f.IsDeferredRetirementEligible(p)
		case BenefitDisability:
			return f.IsDisabilityRetirementEligible(p)
		}
		return false
	})
	factor := f.ReductionFactor(p)
	d.ReductionFactor = &factor
	return d
}

// IsImmediatelyEligible: MRA with 30 years, 60 with 20, or 62 with 5.
func (FERS) IsImmediatelyEligible(p *Person) bool {
	a := p.attrs
	return (a.MeetsMinimumAge && a.YearsOfService >= 30) ||
		(a.YearsOfService >= 20 && a.AgeYears >= 60) ||
		(a.YearsOfService >= 5 && a.AgeYears >= 62)
}

// IsEarlyRetirementEligible covers involuntary separations and voluntary
// separations during a major reorganization or reduction in force.
func (FERS) IsEarlyRetirementEligible(p *Person) bool {
	a := p.attrs
	if a.YearsOfService < 20 || a.AgeYears < minEmploymentAge+20 {
		return false
	}
	if a.YearsOfService >= 20 && a.AgeYears >= 50 {
		return true
	}
	return a.YearsOfService >= 25 && a.AgeYears >= minEmploymentAge+25
}

// IsDeferredRetirementEligible applies to employees who separated before
// qualifying for an immediate annuity.
func (FERS) IsDeferredRetirementEligible(p *Person) bool {
	a := p.attrs
	return (a.AgeYears >= 62 && a.YearsOfService >= 5) ||
		(a.MeetsMinimumAge && a.YearsOfService >= 30) ||
		(a.MeetsMinimumAge && a.YearsOfService >= 10)
}

// IsDisabilityRetirementEligible needs 18 months of creditable service and
// nothing else; the medical and agency certifications are out of band.
func (FERS) IsDisabilityRetirementEligible(p *Person) bool {
	return float64(p.attrs.DaysOfService) >= disabilityServiceDays
}

// ImmediateBenefitReductionFactor is ReductionFactor as a float.
func (f FERS) ImmediateBenefitReductionFactor(p *Person) float64 {
	return f.ReductionFactor(p).InexactFloat64()
}

// ReductionFactor is the fraction of the full annuity payable on immediate
// retirement. At MRA with 10-29 years the annuity loses 5% per year under
// 62; the result is capped at 1 but has no floor, so a very young MRA
// retiree gets a negative factor. Without MRA the factor is all or nothing.
func (FERS) ReductionFactor(p *Person) decimal.Decimal {
	a := p.attrs
	if a.MeetsMinimumAge {
		switch {
		case a.YearsOfService >= 30:
			return fullAnnuity
		case a.YearsOfService >= 10:
			yearsUnder := unreducedAge.Sub(decimal.NewFromInt(int64(a.AgeYears)))
			return decimal.Min(fullAnnuity, fullAnnuity.Sub(yearsUnder.Mul(reductionPerYear)))
		default:
			return decimal.Zero
		}
	}
	if (a.YearsOfService >= 20 && a.AgeYears >= 60) || (a.YearsOfService >= 5 && a.AgeYears >= 62) {
		return fullAnnuity
	}
	return decimal.Zero
}
