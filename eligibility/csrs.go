package eligibility

// CSRS is the rule set for the Civil Service Retirement System.
//
//	Optional:              62+5, 60+25, 55+30
//	Special provision:     50+20, any age+25
//	Early (special/opt.):  50+20, any age+25 (major reorganization, RIF)
//	Discontinued service:  50+20, any age+25 (involuntary, not for cause)
//	Disability:            18 months of service, age 18
//
// The three 50+20 categories share a formula today but are separate legal
// paths; they stay separate methods.
type CSRS struct{}

func (CSRS) Regime() Regime { return RegimeCSRS }

func (CSRS) Benefits() []Benefit {
	return []Benefit{
		BenefitImmediate,
		BenefitEarly,
		BenefitSpecialProvision,
		BenefitDiscontinuedService,
		BenefitDisability,
	}
}

func (c CSRS) Determine(p *Person) Determination {
	return newDetermination(c, p, func(b Benefit) bool {
		switch b {
		case BenefitImmediate:
			return c.IsRetirementEligible(p)
		case BenefitEarly:
			return c.IsEarlyRetirementEligible(p)
		case BenefitSpecialProvision:
			return c.IsSpecialProvisionEligible(p)
		case BenefitDiscontinuedService:
			return c.IsDiscontinuedServiceEligible(p)
		case BenefitDisability:
			return c.IsDisabilityRetirementEligible(p)
		}
		return false
	})
}

// IsRetirementEligible is optional (immediate) retirement.
func (CSRS) IsRetirementEligible(p *Person) bool {
	a := p.attrs
	return (a.YearsOfService >= 5 && a.AgeYears >= 62) ||
		(a.YearsOfService >= 25 && a.AgeYears >= 60) ||
		(a.YearsOfService >= 30 && a.AgeYears >= 55)
}

// IsSpecialProvisionEligible covers air traffic controllers, law
// enforcement, firefighters, nuclear materials couriers and the Supreme
// Court and Capitol police. Occupation is not checked here.
func (CSRS) IsSpecialProvisionEligible(p *Person) bool {
	return twentyAtFiftyOrTwentyFive(p.attrs)
}

// IsEarlyRetirementEligible requires an OPM-approved reorganization,
// reduction in force or transfer of function. The annuity is reduced under 55.
func (CSRS) IsEarlyRetirementEligible(p *Person) bool {
	return twentyAtFiftyOrTwentyFive(p.attrs)
}

// IsDiscontinuedServiceEligible requires an involuntary separation that is
// not a removal for misconduct or delinquency.
func (CSRS) IsDiscontinuedServiceEligible(p *Person) bool {
	return twentyAtFiftyOrTwentyFive(p.attrs)
}

// IsDisabilityRetirementEligible: 18 months of service and at least age 18.
func (CSRS) IsDisabilityRetirementEligible(p *Person) bool {
	a := p.attrs
	return float64(a.DaysOfService) >= disabilityServiceDays && a.AgeYears >= minEmploymentAge+2
}

func twentyAtFiftyOrTwentyFive(a Attributes) bool {
	return (a.YearsOfService >= 20 && a.AgeYears >= 50) ||
		(a.YearsOfService >= 25 && a.AgeYears >= minEmploymentAge+25)
}
