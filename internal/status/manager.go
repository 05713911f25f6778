package status

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"spirit-tamer/battlecore/internal/combat"
)

// ErrMissingEffectID is returned when a definition has no id.
var ErrMissingEffectID = errors.New("status: effect id is required")

// MinStatMultiplier bounds how far debuffs can shrink a stat.
const MinStatMultiplier = 0.1

// Manager owns the active effects of every actor in one battle. Effects of
// an actor are kept in application order, which is the order they tick and
// aggregate in.
//
// The zero value is ready to use. Manager is not safe for concurrent use.
type Manager struct {
	effects    map[int][]*Active
	immunities map[int]map[string]struct{}
	listeners  []Listener
}

// NewManager returns an empty manager.
func NewManager() *Manager {
	return &Manager{
		effects:    make(map[int][]*Active),
		immunities: make(map[int]map[string]struct{}),
	}
}

// Subscribe registers l and returns a function that removes it.
func (m *Manager) Subscribe(l Listener) func() {
	if l == nil {
		return func() {}
	}
	m.listeners = append(m.listeners, l)
	idx := len(m.listeners) - 1
	return func() {
		if idx < len(m.listeners) {
			m.listeners[idx] = nil
		}
	}
}

func (m *Manager) emit(notes []Notification) {
	for _, n := range notes {
		for _, l := range m.listeners {
			if l != nil {
				l.OnEffect(n)
			}
		}
	}
}

// SetImmunities replaces the immunity tags of an actor.
func (m *Manager) SetImmunities(actorID int, tags ...string) {
	set := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		if t := normalizeTag(tag); t != "" {
			set[t] = struct{}{}
		}
	}
	if len(set) == 0 {
		delete(m.immunities, actorID)
		return
	}
	if m.immunities == nil {
		m.immunities = make(map[int]map[string]struct{})
	}
	m.immunities[actorID] = set
}

// IsImmune reports whether actorID is immune to def.
func (m *Manager) IsImmune(actorID int, def Definition) bool {
	tag := normalizeTag(def.ImmunityTag)
	if tag == "" {
		return false
	}
	_, ok := m.immunities[actorID][tag]
	return ok
}

// ApplyEffect applies def to actorID and returns what happened.
//
// A new effect is inserted with its full duration. For an existing effect,
// RuleReplace swaps in the new value and duration and keeps one stack; a
// stackable effect under its stack cap gains a stack and combines its value
// by rule; otherwise only the duration is refreshed, when RefreshOnStack is
// set. Cleanse effects strip the actor's debuffs and are not stored.
func (m *Manager) ApplyEffect(actorID int, def Definition) (Event, error) {
	if def.ID == "" {
		return EventUnchanged, ErrMissingEffectID
	}
	if !def.Rule.Valid() {
		return EventUnchanged, fmt.Errorf("status: effect %s has unknown rule %q", def.ID, def.Rule)
	}
	if !def.Kind.Valid() {
		return EventUnchanged, fmt.Errorf("status: effect %s has unknown kind %q", def.ID, def.Kind)
	}

	if m.IsImmune(actorID, def) {
		m.emit([]Notification{{ActorID: actorID, Event: EventResisted, Effect: Active{Definition: def, Value: def.Value}}})
		return EventResisted, nil
	}

	if def.kind() == KindCleanse {
		notes := m.removeWhere(actorID, func(a Active) bool { return a.Definition.Debuff })
		notes = append(notes, Notification{ActorID: actorID, Event: EventCleansed, Effect: Active{Definition: def}})
		m.emit(notes)
		return EventCleansed, nil
	}

	existing := m.find(actorID, def.ID)
	if existing == nil {
		active := &Active{Definition: def, Value: def.Value, Stacks: 1}
		active.refresh()
		if m.effects == nil {
			m.effects = make(map[int][]*Active)
		}
		m.effects[actorID] = append(m.effects[actorID], active)
		m.emit([]Notification{{ActorID: actorID, Event: EventApplied, Effect: *active, Trigger: TriggerOnApply}})
		return EventApplied, nil
	}

	var event Event
	switch {
	case def.rule() == RuleReplace:
		existing.Definition = def
		existing.Value = def.Value
		existing.Stacks = 1
		existing.refresh()
		event = EventRefreshed
	case def.Stackable && existing.Stacks < def.maxStacks():
		existing.Definition = def
		existing.Stacks++
		existing.Value = Combine(def.rule(), existing.Value, def.Value)
		if def.RefreshOnStack {
			existing.refresh()
		}
		event = EventStacked
	case def.RefreshOnStack:
		existing.refresh()
		event = EventRefreshed
	default:
		return EventUnchanged, nil
	}
	m.emit([]Notification{{ActorID: actorID, Event: event, Effect: *existing}})
	return event, nil
}

// RemoveEffect removes effectID from actorID and reports whether it was
// present.
func (m *Manager) RemoveEffect(actorID int, effectID string) bool {
	notes := m.removeWhere(actorID, func(a Active) bool { return a.Definition.ID == effectID })
	m.emit(notes)
	return len(notes) > 0
}

// Cleanse removes every effect of actorID matching pred and returns how
// many were removed.
func (m *Manager) Cleanse(actorID int, pred func(Active) bool) int {
	if pred == nil {
		return 0
	}
	notes := m.removeWhere(actorID, pred)
	m.emit(notes)
	return len(notes)
}

// CleanseDebuffs removes every debuff of actorID.
func (m *Manager) CleanseDebuffs(actorID int) int {
	return m.Cleanse(actorID, func(a Active) bool { return a.Definition.Debuff })
}

// Clear drops every effect of actorID without notifications.
func (m *Manager) Clear(actorID int) {
	delete(m.effects, actorID)
}

// Reset drops all effects and immunities. Listeners stay registered.
func (m *Manager) Reset() {
	m.effects = make(map[int][]*Active)
	m.immunities = make(map[int]map[string]struct{})
}

func (m *Manager) removeWhere(actorID int, pred func(Active) bool) []Notification {
	list := m.effects[actorID]
	if len(list) == 0 {
		return nil
	}
	var notes []Notification
	kept := list[:0]
	for _, a := range list {
		if pred(*a) {
			notes = append(notes, Notification{ActorID: actorID, Event: EventRemoved, Effect: *a})
			continue
		}
		kept = append(kept, a)
	}
	m.store(actorID, kept)
	return notes
}

func (m *Manager) store(actorID int, list []*Active) {
	if len(list) == 0 {
		delete(m.effects, actorID)
		return
	}
	m.effects[actorID] = list
}

func (m *Manager) find(actorID int, effectID string) *Active {
	for _, a := range m.effects[actorID] {
		if a.Definition.ID == effectID {
			return a
		}
	}
	return nil
}

// TickTurn advances the turn timers of actorID. Effects without a turn
// duration are untouched. Effects reaching zero expire.
func (m *Manager) TickTurn(actorID int) {
	list := m.effects[actorID]
	if len(list) == 0 {
		return
	}
	var notes []Notification
	kept := list[:0]
	for _, a := range list {
		if a.Definition.DurationTurns <= 0 {
			kept = append(kept, a)
			continue
		}
		a.RemainingTurns--
		notes = append(notes, Notification{ActorID: actorID, Event: EventTicked, Effect: *a, Trigger: TriggerOnTick})
		if a.RemainingTurns <= 0 {
			notes = append(notes, Notification{ActorID: actorID, Event: EventExpired, Effect: *a})
			continue
		}
		kept = append(kept, a)
	}
	m.store(actorID, kept)
	m.emit(notes)
}

// TickAllTurns ticks every actor in ascending id order.
func (m *Manager) TickAllTurns() {
	for _, id := range m.Actors() {
		m.TickTurn(id)
	}
}

// UpdateRealtime advances the time-based timers of actorID by deltaSeconds.
// Effects without a time duration are untouched.
func (m *Manager) UpdateRealtime(actorID int, deltaSeconds float64) {
	list := m.effects[actorID]
	if len(list) == 0 || deltaSeconds <= 0 {
		return
	}
	var notes []Notification
	kept := list[:0]
	for _, a := range list {
		if a.Definition.DurationSeconds <= 0 {
			kept = append(kept, a)
			continue
		}
		a.RemainingSeconds -= deltaSeconds
		notes = append(notes, Notification{ActorID: actorID, Event: EventTicked, Effect: *a, Trigger: TriggerOnTick})
		if a.RemainingSeconds <= 0 {
			notes = append(notes, Notification{ActorID: actorID, Event: EventExpired, Effect: *a})
			continue
		}
		kept = append(kept, a)
	}
	m.store(actorID, kept)
	m.emit(notes)
}

// UpdateAllRealtime advances every actor in ascending id order.
func (m *Manager) UpdateAllRealtime(deltaSeconds float64) {
	for _, id := range m.Actors() {
		m.UpdateRealtime(id, deltaSeconds)
	}
}

// TriggerOnHit notifies effects of actorID that react to being hit.
func (m *Manager) TriggerOnHit(actorID int) { m.broadcast(actorID, TriggerOnHit) }

// TriggerOnCast notifies effects of actorID that react to casting a move.
func (m *Manager) TriggerOnCast(actorID int) { m.broadcast(actorID, TriggerOnCast) }

func (m *Manager) broadcast(actorID int, trigger Trigger) {
	var notes []Notification
	for _, a := range m.effects[actorID] {
		if a.Definition.Triggers.Has(trigger) {
			notes = append(notes, Notification{ActorID: actorID, Event: EventTicked, Effect: *a, Trigger: trigger})
		}
	}
	m.emit(notes)
}

// Effects returns a snapshot of the effects on actorID in application order.
func (m *Manager) Effects(actorID int) []Active {
	list := m.effects[actorID]
	out := make([]Active, 0, len(list))
	for _, a := range list {
		out = append(out, *a)
	}
	return out
}

// Effect returns the effect effectID on actorID.
func (m *Manager) Effect(actorID int, effectID string) (Active, bool) {
	if a := m.find(actorID, effectID); a != nil {
		return *a, true
	}
	return Active{}, false
}

// Actors returns the ids of actors with at least one effect, ascending.
func (m *Manager) Actors() []int {
	ids := make([]int, 0, len(m.effects))
	for id, list := range m.effects {
		if len(list) > 0 {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids
}

// Aggregate combines the stat modifiers of actorID targeting stat. Each
// effect folds its value into the running total using its own rule.
func (m *Manager) Aggregate(actorID int, stat combat.Stat) (float64, bool) {
	var (
		total float64
		found bool
	)
	for _, a := range m.effects[actorID] {
		if a.Definition.kind() != KindStatModifier || a.Definition.Stat != stat || stat == combat.StatNone {
			continue
		}
		if !found {
			total = a.Value
			found = true
			continue
		}
		total = Combine(a.Definition.rule(), total, a.Value)
	}
	return total, found
}

// Modifiers converts the percent stat modifiers of actorID into
// multipliers for the damage calculator.
func (m *Manager) Modifiers(actorID int) combat.Modifiers {
	mult := func(stat combat.Stat) float64 {
		v, ok := m.Aggregate(actorID, stat)
		if !ok {
			return 0
		}
		return math.Max(MinStatMultiplier, 1+v/100)
	}
	return combat.Modifiers{
		Attack:         mult(combat.StatAttack),
		Defense:        mult(combat.StatDefense),
		SpecialAttack:  mult(combat.StatSpecialAttack),
		SpecialDefense: mult(combat.StatSpecialDefense),
		Speed:          mult(combat.StatSpeed),
	}
}

// Effective returns a copy of s whose modifiers are its own scaled by the
// live effects on s.ID. s is not modified.
func (m *Manager) Effective(s *combat.Spirit) *combat.Spirit {
	if s == nil {
		return nil
	}
	view := *s
	view.Modifiers = s.Modifiers.Scale(m.Modifiers(s.ID))
	return &view
}
