package battle

import (
	"context"
	"strconv"

	"spirit-tamer/battlecore/logging"
)

const (
	// EventPhaseChanged is emitted when the turn state machine enters a phase.
	EventPhaseChanged logging.EventType = "battle.phase_changed"
	// EventActionResolved is emitted after an action resolves, hit or miss.
	EventActionResolved logging.EventType = "battle.action_resolved"
	// EventActionSkipped is emitted when an action cannot be resolved.
	EventActionSkipped logging.EventType = "battle.action_skipped"
	// EventEffect is emitted for every status effect notification.
	EventEffect logging.EventType = "battle.effect"
	// EventTurnCompleted is emitted once a turn reaches EndTurn.
	EventTurnCompleted logging.EventType = "battle.turn_completed"
	// EventSpiritFainted is emitted when a spirit drops to zero HP.
	EventSpiritFainted logging.EventType = "battle.spirit_fainted"
)

// PhasePayload names the transition.
type PhasePayload struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// ActionPayload captures the outcome of one resolved action.
type ActionPayload struct {
	Move         string  `json:"move"`
	Hit          bool    `json:"hit"`
	Damage       int     `json:"damage"`
	Critical     bool    `json:"critical,omitempty"`
	TypeFactor   float64 `json:"typeFactor,omitempty"`
	TargetHealth int     `json:"targetHealth"`
	StatusEffect string  `json:"statusEffect,omitempty"`
}

// SkipPayload explains why an action was not resolved.
type SkipPayload struct {
	Move   string `json:"move,omitempty"`
	Reason string `json:"reason"`
}

// EffectPayload mirrors a status notification.
type EffectPayload struct {
	Effect string  `json:"effect"`
	Change string  `json:"change"`
	Value  float64 `json:"value"`
	Stacks int     `json:"stacks"`
}

// TurnPayload summarizes a completed turn.
type TurnPayload struct {
	Seed    int64 `json:"seed"`
	Actions int   `json:"actions"`
	Entries int   `json:"entries"`
}

// SpiritRef builds the entity reference of a spirit id.
func SpiritRef(id int) logging.EntityRef {
	return logging.EntityRef{ID: strconv.Itoa(id), Kind: logging.EntityKindSpirit}
}

// BattleRef builds the entity reference of a battle.
func BattleRef(id string) logging.EntityRef {
	return logging.EntityRef{ID: id, Kind: logging.EntityKindBattle}
}

// Scope locates an event inside a battle.
type Scope struct {
	Battle string
	Turn   int
	Phase  string
}

func (s Scope) event(t logging.EventType, severity logging.Severity, category string) logging.Event {
	return logging.Event{
		Type:     t,
		Battle:   s.Battle,
		Turn:     s.Turn,
		Phase:    s.Phase,
		Severity: severity,
		Category: category,
	}
}

// PhaseChanged publishes a phase transition.
func PhaseChanged(ctx context.Context, pub logging.Publisher, scope Scope, payload PhasePayload) {
	if pub == nil {
		return
	}
	event := scope.event(EventPhaseChanged, logging.SeverityDebug, logging.CategoryBattle)
	event.Actor = BattleRef(scope.Battle)
	event.Payload = payload
	pub.Publish(ctx, event)
}

// ActionResolved publishes the outcome of an action.
func ActionResolved(ctx context.Context, pub logging.Publisher, scope Scope, actor, target int, payload ActionPayload) {
	if pub == nil {
		return
	}
	event := scope.event(EventActionResolved, logging.SeverityInfo, logging.CategoryBattle)
	event.Actor = SpiritRef(actor)
	event.Targets = []logging.EntityRef{SpiritRef(target)}
	event.Payload = payload
	pub.Publish(ctx, event)
}

// ActionSkipped publishes an unresolved action.
func ActionSkipped(ctx context.Context, pub logging.Publisher, scope Scope, actor int, payload SkipPayload) {
	if pub == nil {
		return
	}
	event := scope.event(EventActionSkipped, logging.SeverityWarn, logging.CategoryBattle)
	event.Actor = SpiritRef(actor)
	event.Payload = payload
	pub.Publish(ctx, event)
}

// EffectNotified publishes a status change on actor.
func EffectNotified(ctx context.Context, pub logging.Publisher, scope Scope, actor int, payload EffectPayload) {
	if pub == nil {
		return
	}
	event := scope.event(EventEffect, logging.SeverityInfo, logging.CategoryStatus)
	event.Actor = SpiritRef(actor)
	event.Targets = []logging.EntityRef{{ID: payload.Effect, Kind: logging.EntityKindEffect}}
	event.Payload = payload
	pub.Publish(ctx, event)
}

// TurnCompleted publishes the end of a turn.
func TurnCompleted(ctx context.Context, pub logging.Publisher, scope Scope, payload TurnPayload) {
	if pub == nil {
		return
	}
	event := scope.event(EventTurnCompleted, logging.SeverityInfo, logging.CategoryBattle)
	event.Actor = BattleRef(scope.Battle)
	event.Payload = payload
	pub.Publish(ctx, event)
}

// SpiritFainted publishes a knock-out of target by actor.
func SpiritFainted(ctx context.Context, pub logging.Publisher, scope Scope, actor, target int) {
	if pub == nil {
		return
	}
	event := scope.event(EventSpiritFainted, logging.SeverityInfo, logging.CategoryBattle)
	event.Actor = SpiritRef(actor)
	event.Targets = []logging.EntityRef{SpiritRef(target)}
	pub.Publish(ctx, event)
}
