// Package status tracks timed buffs and debuffs on battle actors: applying,
// stacking, ticking and expiring them, and aggregating their stat
// modifiers. Side effects are reported through listeners so the manager
// never depends on logging.
package status

import (
	"strings"

	"spirit-tamer/battlecore/internal/combat"
)

// Rule governs how repeated applications of the same effect combine.
type Rule string

const (
	RuleAdditive Rule = "additive"
	RuleMaxOnly  Rule = "max_only"
	RuleMinOnly  Rule = "min_only"
	RuleReplace  Rule = "replace"
)

// Valid reports whether r is a known rule. The empty rule is treated as
// RuleReplace and is valid.
func (r Rule) Valid() bool {
	switch r {
	case "", RuleAdditive, RuleMaxOnly, RuleMinOnly, RuleReplace:
		return true
	default:
		return false
	}
}

// Combine merges an incoming value into an existing one.
func Combine(rule Rule, existing, incoming float64) float64 {
	switch rule {
	case RuleAdditive:
		return existing + incoming
	case RuleMaxOnly:
		if incoming > existing {
			return incoming
		}
		return existing
	case RuleMinOnly:
		if incoming < existing {
			return incoming
		}
		return existing
	default:
		return incoming
	}
}

// Kind describes what an effect does while active.
type Kind string

const (
	// KindStatModifier scales a combat stat by Value percent.
	KindStatModifier Kind = "stat_modifier"
	// KindDamageOverTime deals Value damage at each turn tick.
	KindDamageOverTime Kind = "damage_over_time"
	// KindHeal restores Value HP at each turn tick.
	KindHeal Kind = "heal"
	// KindCleanse removes debuffs instead of being stored.
	KindCleanse Kind = "cleanse"
)

// Valid reports whether k is a known kind. The empty kind means
// KindStatModifier.
func (k Kind) Valid() bool {
	switch k {
	case "", KindStatModifier, KindDamageOverTime, KindHeal, KindCleanse:
		return true
	default:
		return false
	}
}

// Trigger is a bit set of hooks an effect reacts to.
type Trigger uint8

const (
	TriggerOnApply Trigger = 1 << iota
	TriggerOnTick
	TriggerOnHit
	TriggerOnCast
)

// Has reports whether all bits of flag are set.
func (t Trigger) Has(flag Trigger) bool {
	return t&flag == flag && flag != 0
}

// DefaultMaxStacks caps stackable effects that do not configure a limit.
const DefaultMaxStacks = 5

// Definition is immutable effect reference data.
type Definition struct {
	ID              string
	Name            string
	Description     string
	Kind            Kind
	Stat            combat.Stat
	Value           float64
	DurationTurns   int
	DurationSeconds float64
	Stackable       bool
	MaxStacks       int
	RefreshOnStack  bool
	Rule            Rule
	ImmunityTag     string
	Debuff          bool
	Triggers        Trigger
}

func (d Definition) rule() Rule {
	if d.Rule == "" {
		return RuleReplace
	}
	return d.Rule
}

func (d Definition) kind() Kind {
	if d.Kind == "" {
		return KindStatModifier
	}
	return d.Kind
}

func (d Definition) maxStacks() int {
	if d.MaxStacks > 0 {
		return d.MaxStacks
	}
	if d.Stackable {
		return DefaultMaxStacks
	}
	return 1
}

// Active is an applied effect on one actor.
type Active struct {
	Definition       Definition
	Value            float64
	Stacks           int
	RemainingTurns   int
	RemainingSeconds float64
}

// ID returns the effect id.
func (a Active) ID() string {
	return a.Definition.ID
}

func (a *Active) refresh() {
	a.RemainingTurns = a.Definition.DurationTurns
	a.RemainingSeconds = a.Definition.DurationSeconds
}

// Event names a side effect reported to listeners.
type Event string

const (
	EventApplied   Event = "applied"
	EventRefreshed Event = "refreshed"
	EventStacked   Event = "stacked"
	EventExpired   Event = "expired"
	EventRemoved   Event = "removed"
	EventTicked    Event = "ticked"
	EventResisted  Event = "resisted"
	EventCleansed  Event = "cleansed"
	// EventUnchanged is returned by ApplyEffect when nothing changed. It is
	// never sent to listeners.
	EventUnchanged Event = "unchanged"
)

// Notification describes one side effect. Effect is a snapshot taken after
// the change.
type Notification struct {
	ActorID int
	Event   Event
	Effect  Active
	Trigger Trigger
}

// Listener receives notifications synchronously, in the order the changes
// happened.
type Listener interface {
	OnEffect(Notification)
}

// ListenerFunc adapts a function into a Listener.
type ListenerFunc func(Notification)

// OnEffect implements Listener.
func (f ListenerFunc) OnEffect(n Notification) {
	if f == nil {
		return
	}
	f(n)
}

func normalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}
