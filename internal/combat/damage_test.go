package combat

import (
	"testing"

	"go.uber.org/mock/gomock"

	"spirit-tamer/battlecore/internal/rng"
	"spirit-tamer/battlecore/internal/rng/mocks"
)

func waterling() *Spirit {
	return &Spirit{
		ID: 1, Name: "Attacker", TypeTag: "water", Level: 10,
		Attack: 22, Defense: 14, SpecialAttack: 28, SpecialDefense: 16,
		MaxHP: 60, CurrentHP: 60, CritChanceBonus: 0.1,
	}
}

func firespawn() *Spirit {
	return &Spirit{
		ID: 2, Name: "Defender", TypeTag: "fire", Level: 10,
		Attack: 18, Defense: 20, SpecialAttack: 18, SpecialDefense: 18,
		MaxHP: 60, CurrentHP: 60,
	}
}

var waterBurst = Move{ID: "water_burst", Name: "Water Burst", Category: CategorySpecial, Power: 55, Accuracy: 0.95, Cost: 3, TypeTag: "water"}

func TestCalculateDamageReplaysAfterReset(t *testing.T) {
	calc := NewCalculator(nil)
	src := rng.New(777)

	d1, b1 := calc.CalculateDamage(waterling(), firespawn(), waterBurst, src)
	src.Reset(777)
	d2, b2 := calc.CalculateDamage(waterling(), firespawn(), waterBurst, src)

	if d1 != d2 {
		t.Fatalf("expected identical damage, got %d and %d", d1, d2)
	}
	if b1 != b2 {
		t.Fatalf("expected identical breakdowns:\n%v\n%v", b1, b2)
	}
	if b1.TypeMultiplier != 2 {
		t.Fatalf("expected water vs fire multiplier 2, got %v", b1.TypeMultiplier)
	}
	if b1.VarianceMultiplier < VarianceFloor || b1.VarianceMultiplier >= VarianceFloor+VarianceSpan {
		t.Fatalf("variance out of range: %v", b1.VarianceMultiplier)
	}
	if src.Draws() != 2 {
		t.Fatalf("expected two draws per damaging move, got %d", src.Draws())
	}
}

func TestCalculateDamageUsesFixedRolls(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockProvider(ctrl)
	gomock.InOrder(
		provider.EXPECT().NextBool(gomock.Any()).Return(true),
		provider.EXPECT().NextFloat(0.0, VarianceSpan).Return(0.05),
	)

	damage, breakdown := NewCalculator(nil).CalculateDamage(waterling(), firespawn(), waterBurst, provider)

	if !breakdown.Critical || breakdown.CriticalMultiplier != CritMultiplier {
		t.Fatalf("expected a critical hit, got %+v", breakdown)
	}
	if breakdown.Base != 344 {
		t.Fatalf("expected base 344, got %d", breakdown.Base)
	}
	if damage != 981 || breakdown.Final != damage {
		t.Fatalf("expected final damage 981, got %d (%+v)", damage, breakdown)
	}
}

func TestStatusMovesDrawNothing(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockProvider(ctrl)

	sap := Move{ID: "sap_weaken", Category: CategoryStatus, Accuracy: 1, Cost: 2, TypeTag: "nature", StatusEffectID: "attack_down"}
	damage, breakdown := NewCalculator(nil).CalculateDamage(waterling(), firespawn(), sap, provider)
	if damage != 0 || breakdown.Final != 0 {
		t.Fatalf("expected zero damage, got %d", damage)
	}
	if breakdown.TypeMultiplier != 1 || breakdown.CriticalMultiplier != 1 || breakdown.VarianceMultiplier != 1 {
		t.Fatalf("expected neutral multipliers, got %+v", breakdown)
	}
}

func TestImmunityYieldsZeroDamage(t *testing.T) {
	attacker := waterling()
	defender := firespawn()
	defender.TypeTag = "normal"
	shade := Move{ID: "shade", Category: CategorySpecial, Power: 40, Accuracy: 1, TypeTag: "ghost"}

	damage, breakdown := NewCalculator(nil).CalculateDamage(attacker, defender, shade, rng.New(1))
	if damage != 0 || breakdown.TypeMultiplier != 0 {
		t.Fatalf("expected immunity, got damage=%d breakdown=%+v", damage, breakdown)
	}
}

func TestModifiersScaleStats(t *testing.T) {
	calc := NewCalculator(nil)
	plain := waterling()
	boosted := waterling()
	boosted.Modifiers.SpecialAttack = 2

	_, b1 := calc.CalculateDamage(plain, firespawn(), waterBurst, rng.Midpoint{})
	_, b2 := calc.CalculateDamage(boosted, firespawn(), waterBurst, rng.Midpoint{})
	if b2.Base <= b1.Base {
		t.Fatalf("expected boosted base to exceed plain base: %d vs %d", b2.Base, b1.Base)
	}
}

func TestModifiersScaleCombinesFields(t *testing.T) {
	base := Modifiers{Attack: 2}
	got := base.Scale(Modifiers{Attack: 0.5, Defense: 1.5})
	want := Modifiers{Attack: 1, Defense: 1.5, SpecialAttack: 1, SpecialDefense: 1, Speed: 1}
	if got != want {
		t.Fatalf("unexpected scaled modifiers: %+v", got)
	}
	if (Modifiers{}).Scale(Modifiers{}) != (Modifiers{Attack: 1, Defense: 1, SpecialAttack: 1, SpecialDefense: 1, Speed: 1}) {
		t.Fatalf("neutral modifiers must scale to ones")
	}
}

func TestOnComputedObservesBreakdown(t *testing.T) {
	calc := NewCalculator(nil)
	var seen []Breakdown
	calc.OnComputed = func(_, _ *Spirit, _ Move, b Breakdown) { seen = append(seen, b) }

	_, b := calc.CalculateDamage(waterling(), firespawn(), waterBurst, rng.New(3))
	if len(seen) != 1 || seen[0] != b {
		t.Fatalf("expected observer to receive the breakdown once, got %v", seen)
	}
}

func TestSpiritMutators(t *testing.T) {
	s := &Spirit{MaxHP: 20, CurrentHP: 5, ResourcePoints: 2}
	if got := s.ApplyDamage(9); got != 5 || s.CurrentHP != 0 || !s.Fainted() {
		t.Fatalf("expected damage to floor at zero, removed=%d hp=%d", got, s.CurrentHP)
	}
	if got := s.Heal(50); got != 20 || s.CurrentHP != 20 {
		t.Fatalf("expected heal to cap at max, restored=%d hp=%d", got, s.CurrentHP)
	}
	s.SpendResource(5)
	if s.ResourcePoints != 0 {
		t.Fatalf("expected resource points to floor at zero, got %d", s.ResourcePoints)
	}
}
