package battle

import (
	"spirit-tamer/battlecore/internal/combat"
	"spirit-tamer/battlecore/internal/status"
)

type testRoster struct {
	spirits map[int]*combat.Spirit
	moves   map[string]combat.Move
	effects map[string]status.Definition
}

func newTestRoster() *testRoster {
	spirit := func(id int, name, typeTag string, speed int) *combat.Spirit {
		return &combat.Spirit{
			ID: id, Name: name, TypeTag: typeTag, Level: 10,
			MaxHP: 500, CurrentHP: 500,
			Attack: 20, Defense: 18, SpecialAttack: 22, SpecialDefense: 18,
			Speed: speed, ResourcePoints: 10,
		}
	}
	return &testRoster{
		spirits: map[int]*combat.Spirit{
			1: spirit(1, "Waterling", "water", 50),
			2: spirit(2, "Firespawn", "fire", 50),
			3: spirit(3, "Sproutling", "nature", 40),
		},
		moves: map[string]combat.Move{
			"quick_slash": {ID: "quick_slash", Category: combat.CategoryPhysical, Power: 40, Accuracy: 1, TypeTag: "normal", Priority: 1},
			"heavy_blow":  {ID: "heavy_blow", Category: combat.CategoryPhysical, Power: 70, Accuracy: 0.9, Cost: 2, TypeTag: "normal"},
			"guard":       {ID: "guard", Category: combat.CategoryStatus, Accuracy: 1, StatusEffectID: "guard_up"},
			"sap_weaken":  {ID: "sap_weaken", Category: combat.CategoryStatus, Accuracy: 1, Cost: 2, TypeTag: "nature", StatusEffectID: "attack_down"},
			"ignite":      {ID: "ignite", Category: combat.CategoryStatus, Accuracy: 1, TypeTag: "fire", StatusEffectID: "burn"},
			"coin_flip":   {ID: "coin_flip", Category: combat.CategoryPhysical, Power: 30, Accuracy: 0.5, Cost: 1},
		},
		effects: map[string]status.Definition{
			"guard_up":    {ID: "guard_up", Kind: status.KindStatModifier, Stat: combat.StatDefense, Value: 50, DurationTurns: 1},
			"attack_down": {ID: "attack_down", Kind: status.KindStatModifier, Stat: combat.StatAttack, Value: -25, DurationTurns: 2, Debuff: true},
			"burn":        {ID: "burn", Kind: status.KindDamageOverTime, Value: 3, DurationTurns: 2, Debuff: true, ImmunityTag: "fire"},
		},
	}
}

func (r *testRoster) resolvers(calc DamageCalculator) Resolvers {
	return Resolvers{
		Actor: func(id int) (*combat.Spirit, bool) {
			s, ok := r.spirits[id]
			return s, ok
		},
		Move: func(id string) (combat.Move, bool) {
			m, ok := r.moves[id]
			return m, ok
		},
		Damage: calc,
	}
}

func (r *testRoster) effect(id string) (status.Definition, bool) {
	d, ok := r.effects[id]
	return d, ok
}

func harnessActions() []Action {
	return []Action{
		{ActorID: 1, TargetID: 2, MoveID: "quick_slash", Priority: 1, Speed: 50, Source: SourcePlayer},
		{ActorID: 2, TargetID: 1, MoveID: "heavy_blow", Priority: 1, Speed: 50, Source: SourceAI},
		{ActorID: 3, TargetID: 2, MoveID: "guard", Priority: 0, Speed: 40, Source: SourceAI},
	}
}
