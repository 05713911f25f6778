// Package content loads the reference data a battle runs on: the type
// chart, moves, status effects, spirits and AI policies. Catalogs are
// authored as YAML or JSON and validated on load.
package content

import (
	"spirit-tamer/battlecore/internal/ai"
)

// Document is the on-disk catalog. It is exported so the schema generator
// can reflect over it.
type Document struct {
	Types    []TypeDocument   `json:"types,omitempty" yaml:"types" jsonschema:"title=Type chart,description=Attacker/defender multipliers; unknown pairs are neutral."`
	Moves    []MoveDocument   `json:"moves" yaml:"moves" jsonschema:"title=Moves,minItems=1,required"`
	Effects  []EffectDocument `json:"effects,omitempty" yaml:"effects" jsonschema:"title=Status effects"`
	Spirits  []SpiritDocument `json:"spirits,omitempty" yaml:"spirits" jsonschema:"title=Spirits,description=Roster used by scenarios."`
	Policies []ai.Policy      `json:"policies,omitempty" yaml:"policies" jsonschema:"title=AI policies,description=Extra policies added to the presets."`
}

type TypeDocument struct {
	Attack     string  `json:"attack" yaml:"attack" jsonschema:"minLength=1,required"`
	Defense    string  `json:"defense" yaml:"defense" jsonschema:"minLength=1,required"`
	Multiplier float64 `json:"multiplier" yaml:"multiplier" jsonschema:"minimum=0,required"`
}

type MoveDocument struct {
	ID       string  `json:"id" yaml:"id" jsonschema:"title=Move id,pattern=^[a-z0-9_]+$,minLength=1,required"`
	Name     string  `json:"name,omitempty" yaml:"name"`
	Category string  `json:"category" yaml:"category" jsonschema:"enum=physical,enum=special,enum=status,required"`
	Power    int     `json:"power,omitempty" yaml:"power" jsonschema:"minimum=0"`
	Accuracy float64 `json:"accuracy" yaml:"accuracy" jsonschema:"minimum=0,maximum=1,required"`
	Cost     int     `json:"cost,omitempty" yaml:"cost" jsonschema:"minimum=0"`
	Type     string  `json:"type,omitempty" yaml:"type"`
	Status   string  `json:"status,omitempty" yaml:"status" jsonschema:"description=Id of the status effect applied on hit."`
	Priority int     `json:"priority,omitempty" yaml:"priority"`
}

type EffectDocument struct {
	ID              string   `json:"id" yaml:"id" jsonschema:"title=Effect id,pattern=^[a-z0-9_]+$,minLength=1,required"`
	Name            string   `json:"name,omitempty" yaml:"name"`
	Description     string   `json:"description,omitempty" yaml:"description"`
	Kind            string   `json:"kind,omitempty" yaml:"kind" jsonschema:"enum=stat_modifier,enum=damage_over_time,enum=heal,enum=cleanse"`
	Stat            string   `json:"stat,omitempty" yaml:"stat" jsonschema:"enum=attack,enum=defense,enum=special_attack,enum=special_defense,enum=speed"`
	Value           float64  `json:"value,omitempty" yaml:"value" jsonschema:"description=Percent for stat modifiers; HP per turn for damage and heal effects."`
	DurationTurns   int      `json:"durationTurns,omitempty" yaml:"durationTurns" jsonschema:"minimum=0"`
	DurationSeconds float64  `json:"durationSeconds,omitempty" yaml:"durationSeconds" jsonschema:"minimum=0"`
	Stackable       bool     `json:"stackable,omitempty" yaml:"stackable"`
	MaxStacks       int      `json:"maxStacks,omitempty" yaml:"maxStacks" jsonschema:"minimum=0"`
	RefreshOnStack  bool     `json:"refreshOnStack,omitempty" yaml:"refreshOnStack"`
	Rule            string   `json:"rule,omitempty" yaml:"rule" jsonschema:"enum=additive,enum=max_only,enum=min_only,enum=replace"`
	ImmunityTag     string   `json:"immunityTag,omitempty" yaml:"immunityTag"`
	Debuff          bool     `json:"debuff,omitempty" yaml:"debuff"`
	Triggers        []string `json:"triggers,omitempty" yaml:"triggers" jsonschema:"enum=on_apply,enum=on_tick,enum=on_hit,enum=on_cast"`
}

type SpiritDocument struct {
	ID              int      `json:"id" yaml:"id" jsonschema:"minimum=1,required"`
	Species         string   `json:"species" yaml:"species" jsonschema:"minLength=1,required"`
	Name            string   `json:"name,omitempty" yaml:"name"`
	Type            string   `json:"type" yaml:"type" jsonschema:"required"`
	Level           int      `json:"level" yaml:"level" jsonschema:"minimum=1,required"`
	MaxHP           int      `json:"maxHp" yaml:"maxHp" jsonschema:"minimum=1,required"`
	Attack          int      `json:"attack" yaml:"attack" jsonschema:"minimum=0"`
	Defense         int      `json:"defense" yaml:"defense" jsonschema:"minimum=0"`
	SpecialAttack   int      `json:"specialAttack" yaml:"specialAttack" jsonschema:"minimum=0"`
	SpecialDefense  int      `json:"specialDefense" yaml:"specialDefense" jsonschema:"minimum=0"`
	Speed           int      `json:"speed" yaml:"speed" jsonschema:"minimum=0"`
	ResourcePoints  int      `json:"resourcePoints" yaml:"resourcePoints" jsonschema:"minimum=0"`
	CritChanceBonus float64  `json:"critChanceBonus,omitempty" yaml:"critChanceBonus" jsonschema:"minimum=0,maximum=1"`
	Moves           []string `json:"moves" yaml:"moves" jsonschema:"minItems=1,required"`
	Immunities      []string `json:"immunities,omitempty" yaml:"immunities"`
	Policy          string   `json:"policy,omitempty" yaml:"policy" jsonschema:"description=AI policy id; empty means balanced."`
	Side            string   `json:"side" yaml:"side" jsonschema:"enum=player,enum=opponent,required"`
}
