package eligibility

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/retirement-engine/generic"
)

// =============================================================================
// REGIME - Which retirement system covers the employee
// =============================================================================

// Regime identifies a retirement system.
type Regime string

const (
	// RegimeFERS covers service starting on or after the cutover.
	RegimeFERS Regime = "FERS"
	// RegimeCSRS covers service starting before the cutover.
	RegimeCSRS Regime = "CSRS"
)

// CutoverDate is the first service start date covered by FERS.
var CutoverDate = generic.NewTimePoint(1987, time.January, 1)

// RegimeFor selects the regime from the service computation date.
func RegimeFor(serviceStart generic.TimePoint) Regime {
	if serviceStart.AfterOrEqual(CutoverDate) {
		return RegimeFERS
	}
	return RegimeCSRS
}

// ParseRegime accepts "FERS" or "CSRS".
func ParseRegime(s string) (Regime, error) {
	switch Regime(s) {
	case RegimeFERS, RegimeCSRS:
		return Regime(s), nil
	}
	return "", fmt.Errorf("%w: %q", generic.ErrUnknownRegime, s)
}

// =============================================================================
// BENEFITS & DETERMINATIONS
// =============================================================================

// Benefit names an eligibility category.
type Benefit string

const (
	BenefitImmediate           Benefit = "immediate"
	BenefitEarly               Benefit = "early"
	BenefitDeferred            Benefit = "deferred"
	BenefitDisability          Benefit = "disability"
	BenefitSpecialProvision    Benefit = "special_provision"
	BenefitDiscontinuedService Benefit = "discontinued_service"
)

// Outcome is one benefit's answer.
type Outcome struct {
	Benefit  Benefit `json:"benefit" yaml:"benefit"`
	Eligible bool    `json:"eligible" yaml:"eligible"`
}

// Determination is every outcome for one person at one basis date.
// ReductionFactor is nil under regimes that have no reduction rule.
type Determination struct {
	Regime          Regime            `json:"regime" yaml:"regime"`
	BasisDate       generic.TimePoint `json:"basis_date" yaml:"basis_date"`
	Attributes      Attributes        `json:"attributes" yaml:"attributes"`
	Outcomes        []Outcome         `json:"outcomes" yaml:"outcomes"`
	ReductionFactor *decimal.Decimal  `json:"reduction_factor,omitempty" yaml:"reduction_factor,omitempty"`
}

// Eligible looks up a benefit; benefits the regime doesn't offer are false.
func (d Determination) Eligible(b Benefit) bool {
	for _, o := range d.Outcomes {
		if o.Benefit == b {
			return o.Eligible
		}
	}
	return false
}

// EligibleBenefits lists the benefits that came out true, in rule order.
func (d Determination) EligibleBenefits() []Benefit {
	var out []Benefit
	for _, o := range d.Outcomes {
		if o.Eligible {
			out = append(out, o.Benefit)
		}
	}
	return out
}

// =============================================================================
// RULES - One implementation per regime
// =============================================================================

// Rules is the capability every regime's rule set provides.
type Rules interface {
	Regime() Regime

	// Benefits lists the categories the regime defines, in report order.
	Benefits() []Benefit

	// Determine evaluates every benefit for p. Nothing is cached.
	Determine(p *Person) Determination
}

var (
	_ Rules = FERS{}
	_ Rules = CSRS{}
)

// RulesFor returns the rule set for a regime.
func RulesFor(r Regime) (Rules, error) {
	switch r {
	case RegimeFERS:
		return FERS{}, nil
	case RegimeCSRS:
		return CSRS{}, nil
	}
	return nil, fmt.Errorf("%w: %q", generic.ErrUnknownRegime, r)
}

// Evaluate runs the rule set of the person's own regime.
func Evaluate(p *Person) Determination {
	if p.Regime() == RegimeFERS {
		return FERS{}.Determine(p)
	}
	return CSRS{}.Determine(p)
}

func newDetermination(r Rules, p *Person, eligible func(Benefit) bool) Determination {
	benefits := r.Benefits()
	d := Determination{
		Regime:     r.Regime(),
		BasisDate:  p.BasisDate(),
		Attributes: p.Attributes(),
		Outcomes:   make([]Outcome, len(benefits)),
	}
	for i, b := range benefits {
		d.Outcomes[i] = Outcome{Benefit: b, Eligible: eligible(b)}
	}
	return d
}
