package combat

import (
	"fmt"
	"math"

	"spirit-tamer/battlecore/internal/rng"
)

const (
	// BaseCritChance is the crit probability before attacker bonuses.
	BaseCritChance = 0.05
	// CritMultiplier scales damage on a critical hit.
	CritMultiplier = 1.5
	// VarianceFloor is the lowest variance factor; the roll adds [0, VarianceSpan).
	VarianceFloor = 0.9
	VarianceSpan  = 0.1

	levelFactorBase  = 2.0
	levelFactorSlope = 0.2
	flatBonus        = 2.0
)

// Breakdown records every factor of one damage computation.
type Breakdown struct {
	Base               int
	TypeMultiplier     float64
	CriticalMultiplier float64
	VarianceMultiplier float64
	Critical           bool
	Final              int
}

func (b Breakdown) String() string {
	return fmt.Sprintf("base=%d, crit=%.2f, type=%.2f, var=%.2f, final=%d, crit?=%t",
		b.Base, b.CriticalMultiplier, b.TypeMultiplier, b.VarianceMultiplier, b.Final, b.Critical)
}

// Expected returns the damage estimate used by scorers: base scaled by the
// type and variance factors, ignoring crits.
func (b Breakdown) Expected() float64 {
	return float64(b.Base) * b.TypeMultiplier * b.VarianceMultiplier
}

// Calculator computes damage. It holds no per-call state; randomness comes
// from the Provider passed to each call.
type Calculator struct {
	chart *TypeChart

	// OnComputed, when set, observes every non-status computation.
	OnComputed func(attacker, defender *Spirit, move Move, breakdown Breakdown)
}

// NewCalculator returns a calculator using chart, or the default chart when
// chart is nil.
func NewCalculator(chart *TypeChart) *Calculator {
	if chart == nil {
		chart = DefaultTypeChart()
	}
	return &Calculator{chart: chart}
}

// Chart returns the type chart used by the calculator.
func (c *Calculator) Chart() *TypeChart {
	return c.chart
}

// CalculateDamage returns the final damage of move from attacker to defender
// together with its breakdown.
//
// Status moves and moves without power return zero and draw nothing. Every
// other call draws exactly twice from r: the crit roll, then the variance.
func (c *Calculator) CalculateDamage(attacker, defender *Spirit, move Move, r rng.Provider) (int, Breakdown) {
	if !move.DealsDamage() {
		return 0, Breakdown{
			TypeMultiplier:     1,
			CriticalMultiplier: 1,
			VarianceMultiplier: 1,
		}
	}

	var attackStat, defenseStat float64
	if move.Category == CategoryPhysical {
		attackStat = float64(attacker.Attack) * attacker.Modifiers.Of(StatAttack)
		defenseStat = float64(defender.Defense) * defender.Modifiers.Of(StatDefense)
	} else {
		attackStat = float64(attacker.SpecialAttack) * attacker.Modifiers.Of(StatSpecialAttack)
		defenseStat = float64(defender.SpecialDefense) * defender.Modifiers.Of(StatSpecialDefense)
	}
	defenseStat = math.Max(1, defenseStat)

	levelFactor := levelFactorBase + float64(attacker.Level)*levelFactorSlope
	base := levelFactor*float64(move.Power)*(attackStat/defenseStat) + flatBonus

	critChance := clamp(BaseCritChance+attacker.CritChanceBonus, 0, 1)
	critical := r.NextBool(critChance)
	critMultiplier := 1.0
	if critical {
		critMultiplier = CritMultiplier
	}

	typeMultiplier := c.chart.Multiplier(move.TypeTag, defender.TypeTag)
	variance := VarianceFloor + r.NextFloat(0, VarianceSpan)

	total := base * critMultiplier * typeMultiplier * variance
	final := int(math.Floor(total))
	if final < 0 {
		final = 0
	}

	breakdown := Breakdown{
		Base:               int(math.Floor(base)),
		TypeMultiplier:     typeMultiplier,
		CriticalMultiplier: critMultiplier,
		VarianceMultiplier: variance,
		Critical:           critical,
		Final:              final,
	}
	if c.OnComputed != nil {
		c.OnComputed(attacker, defender, move, breakdown)
	}
	return final, breakdown
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
