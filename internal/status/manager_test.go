package status

import (
	"errors"
	"reflect"
	"testing"

	"spirit-tamer/battlecore/internal/combat"
)

func attackUp(rule Rule) Definition {
	return Definition{
		ID:            "attack_up",
		Kind:          KindStatModifier,
		Stat:          combat.StatAttack,
		Value:         5,
		DurationTurns: 3,
		Stackable:     true,
		MaxStacks:     3,
		Rule:          rule,
	}
}

type recorder struct {
	events []Event
}

func (r *recorder) OnEffect(n Notification) {
	r.events = append(r.events, n.Event)
}

func TestAdditiveStacksCombineAndCap(t *testing.T) {
	mgr := NewManager()
	def := attackUp(RuleAdditive)

	if ev, err := mgr.ApplyEffect(1, def); err != nil || ev != EventApplied {
		t.Fatalf("first apply: got %v, %v", ev, err)
	}
	if ev, _ := mgr.ApplyEffect(1, def); ev != EventStacked {
		t.Fatalf("second apply: expected stacked, got %v", ev)
	}
	active, ok := mgr.Effect(1, "attack_up")
	if !ok {
		t.Fatalf("expected effect to be active")
	}
	if active.Value != 10 || active.Stacks != 2 {
		t.Fatalf("expected value 10 with 2 stacks, got %v with %d", active.Value, active.Stacks)
	}

	for i := 0; i < 5; i++ {
		mgr.ApplyEffect(1, def)
	}
	active, _ = mgr.Effect(1, "attack_up")
	if active.Stacks != 3 {
		t.Fatalf("expected stacks capped at 3, got %d", active.Stacks)
	}
	if active.Value != 15 {
		t.Fatalf("expected value frozen at cap, got %v", active.Value)
	}
}

func TestReplaceKeepsSingleStackWithNewestValue(t *testing.T) {
	mgr := NewManager()
	first := attackUp(RuleReplace)
	second := first
	second.Value = 12

	mgr.ApplyEffect(1, first)
	if ev, _ := mgr.ApplyEffect(1, second); ev != EventRefreshed {
		t.Fatalf("expected refreshed, got %v", ev)
	}
	active, _ := mgr.Effect(1, "attack_up")
	if active.Stacks != 1 || active.Value != 12 {
		t.Fatalf("expected 1 stack with value 12, got %d with %v", active.Stacks, active.Value)
	}
}

func TestMaxAndMinOnlyRules(t *testing.T) {
	if got := Combine(RuleMaxOnly, 5, 3); got != 5 {
		t.Fatalf("max only: got %v", got)
	}
	if got := Combine(RuleMaxOnly, 5, 8); got != 8 {
		t.Fatalf("max only: got %v", got)
	}
	if got := Combine(RuleMinOnly, 5, 3); got != 3 {
		t.Fatalf("min only: got %v", got)
	}
	if got := Combine(RuleReplace, 5, 3); got != 3 {
		t.Fatalf("replace: got %v", got)
	}
}

func TestNonStackableRefreshesDurationOnly(t *testing.T) {
	mgr := NewManager()
	def := Definition{ID: "guard_up", Stat: combat.StatDefense, Value: 50, DurationTurns: 2, Rule: RuleAdditive, RefreshOnStack: true}

	mgr.ApplyEffect(1, def)
	mgr.TickTurn(1)
	if ev, _ := mgr.ApplyEffect(1, def); ev != EventRefreshed {
		t.Fatalf("expected refreshed, got %v", ev)
	}
	active, _ := mgr.Effect(1, "guard_up")
	if active.RemainingTurns != 2 || active.Value != 50 || active.Stacks != 1 {
		t.Fatalf("unexpected state after refresh: %+v", active)
	}

	def.RefreshOnStack = false
	if ev, _ := mgr.ApplyEffect(1, def); ev != EventUnchanged {
		t.Fatalf("expected unchanged, got %v", ev)
	}
}

func TestTickTurnExpiresInOrder(t *testing.T) {
	mgr := NewManager()
	rec := &recorder{}
	mgr.Subscribe(rec)

	mgr.ApplyEffect(1, Definition{ID: "short", DurationTurns: 1})
	mgr.ApplyEffect(1, Definition{ID: "long", DurationTurns: 2})
	mgr.ApplyEffect(1, Definition{ID: "timed", DurationSeconds: 1.5})

	mgr.TickTurn(1)
	want := []Event{EventApplied, EventApplied, EventApplied, EventTicked, EventExpired, EventTicked}
	if !reflect.DeepEqual(rec.events, want) {
		t.Fatalf("unexpected events:\n got %v\nwant %v", rec.events, want)
	}

	var ids []string
	for _, a := range mgr.Effects(1) {
		ids = append(ids, a.ID())
	}
	if !reflect.DeepEqual(ids, []string{"long", "timed"}) {
		t.Fatalf("unexpected remaining effects: %v", ids)
	}

	mgr.UpdateRealtime(1, 1)
	if _, ok := mgr.Effect(1, "timed"); !ok {
		t.Fatalf("expected timed effect to survive 1s")
	}
	mgr.UpdateRealtime(1, 1)
	if _, ok := mgr.Effect(1, "timed"); ok {
		t.Fatalf("expected timed effect to expire after 2s")
	}
	if active, _ := mgr.Effect(1, "long"); active.RemainingTurns != 1 {
		t.Fatalf("realtime updates must not touch turn timers, got %d", active.RemainingTurns)
	}
}

func TestImmunityResists(t *testing.T) {
	mgr := NewManager()
	rec := &recorder{}
	mgr.Subscribe(rec)
	mgr.SetImmunities(2, "Fire")

	burn := Definition{ID: "burn", Kind: KindDamageOverTime, Value: 3, DurationTurns: 3, ImmunityTag: "fire", Debuff: true}
	ev, err := mgr.ApplyEffect(2, burn)
	if err != nil || ev != EventResisted {
		t.Fatalf("expected resisted, got %v, %v", ev, err)
	}
	if len(mgr.Effects(2)) != 0 {
		t.Fatalf("resisted effect must not be stored")
	}
	if !reflect.DeepEqual(rec.events, []Event{EventResisted}) {
		t.Fatalf("unexpected events: %v", rec.events)
	}
}

func TestCleanseRemovesDebuffs(t *testing.T) {
	mgr := NewManager()
	mgr.ApplyEffect(1, Definition{ID: "attack_down", Stat: combat.StatAttack, Value: -20, DurationTurns: 3, Debuff: true})
	mgr.ApplyEffect(1, Definition{ID: "guard_up", Stat: combat.StatDefense, Value: 50, DurationTurns: 3})

	ev, err := mgr.ApplyEffect(1, Definition{ID: "purify", Kind: KindCleanse})
	if err != nil || ev != EventCleansed {
		t.Fatalf("expected cleansed, got %v, %v", ev, err)
	}
	effects := mgr.Effects(1)
	if len(effects) != 1 || effects[0].ID() != "guard_up" {
		t.Fatalf("expected only guard_up to remain, got %+v", effects)
	}
	if mgr.CleanseDebuffs(1) != 0 {
		t.Fatalf("expected nothing left to cleanse")
	}
}

func TestModifiersConvertPercent(t *testing.T) {
	mgr := NewManager()
	mgr.ApplyEffect(1, Definition{ID: "attack_down", Stat: combat.StatAttack, Value: -20, DurationTurns: 3})
	mgr.ApplyEffect(1, Definition{ID: "war_cry", Stat: combat.StatAttack, Value: 10, DurationTurns: 3, Rule: RuleAdditive})
	mgr.ApplyEffect(1, Definition{ID: "burn", Kind: KindDamageOverTime, Stat: combat.StatAttack, Value: 99})

	total, ok := mgr.Aggregate(1, combat.StatAttack)
	if !ok || total != -10 {
		t.Fatalf("expected aggregate -10, got %v (%t)", total, ok)
	}
	mods := mgr.Modifiers(1)
	if mods.Of(combat.StatAttack) != 0.9 {
		t.Fatalf("expected attack multiplier 0.9, got %v", mods.Of(combat.StatAttack))
	}
	if mods.Of(combat.StatDefense) != 1 {
		t.Fatalf("expected neutral defense, got %v", mods.Of(combat.StatDefense))
	}
}

func TestTriggersAndUnsubscribe(t *testing.T) {
	mgr := NewManager()
	var hits []Trigger
	stop := mgr.Subscribe(ListenerFunc(func(n Notification) {
		if n.Event == EventTicked {
			hits = append(hits, n.Trigger)
		}
	}))

	mgr.ApplyEffect(1, Definition{ID: "thorns", Triggers: TriggerOnHit})
	mgr.ApplyEffect(1, Definition{ID: "focus", Triggers: TriggerOnCast | TriggerOnHit})
	mgr.TriggerOnHit(1)
	mgr.TriggerOnCast(1)
	if !reflect.DeepEqual(hits, []Trigger{TriggerOnHit, TriggerOnHit, TriggerOnCast}) {
		t.Fatalf("unexpected triggers: %v", hits)
	}

	stop()
	mgr.TriggerOnHit(1)
	if len(hits) != 3 {
		t.Fatalf("expected no notifications after unsubscribe")
	}
}

func TestApplyEffectValidates(t *testing.T) {
	mgr := NewManager()
	if _, err := mgr.ApplyEffect(1, Definition{}); !errors.Is(err, ErrMissingEffectID) {
		t.Fatalf("expected ErrMissingEffectID, got %v", err)
	}
	if _, err := mgr.ApplyEffect(1, Definition{ID: "x", Rule: "sideways"}); err == nil {
		t.Fatalf("expected unknown rule to fail")
	}
}

func TestActorsSortedAndReset(t *testing.T) {
	mgr := NewManager()
	mgr.ApplyEffect(3, Definition{ID: "a", DurationTurns: 1})
	mgr.ApplyEffect(1, Definition{ID: "a", DurationTurns: 2})
	if !reflect.DeepEqual(mgr.Actors(), []int{1, 3}) {
		t.Fatalf("unexpected actors: %v", mgr.Actors())
	}
	mgr.TickAllTurns()
	if !reflect.DeepEqual(mgr.Actors(), []int{1}) {
		t.Fatalf("expected actor 3 to be cleared, got %v", mgr.Actors())
	}
	mgr.Reset()
	if len(mgr.Actors()) != 0 {
		t.Fatalf("expected empty manager after reset")
	}
}

func TestRemoveEffectNotifies(t *testing.T) {
	mgr := NewManager()
	var removed []Notification
	mgr.Subscribe(ListenerFunc(func(n Notification) {
		if n.Event == EventRemoved {
			removed = append(removed, n)
		}
	}))
	mgr.ApplyEffect(1, attackUp(RuleAdditive))
	mgr.ApplyEffect(1, Definition{ID: "burn", Kind: KindDamageOverTime, Value: 3, DurationTurns: 2, Debuff: true})

	if !mgr.RemoveEffect(1, "attack_up") {
		t.Fatalf("expected attack_up to be removed")
	}
	if len(removed) != 1 || removed[0].ActorID != 1 || removed[0].Effect.Definition.ID != "attack_up" {
		t.Fatalf("unexpected removal notifications: %+v", removed)
	}
	if _, ok := mgr.Effect(1, "attack_up"); ok {
		t.Fatalf("attack_up still active")
	}
	if _, ok := mgr.Effect(1, "burn"); !ok {
		t.Fatalf("burn should be untouched")
	}

	if mgr.RemoveEffect(1, "attack_up") || mgr.RemoveEffect(7, "burn") {
		t.Fatalf("removing an absent effect must report false")
	}
	if len(removed) != 1 {
		t.Fatalf("absent removals must not notify, got %+v", removed)
	}
}

func TestZeroManagerIsUsable(t *testing.T) {
	var mgr Manager
	if ev, err := mgr.ApplyEffect(1, attackUp(RuleAdditive)); err != nil || ev != EventApplied {
		t.Fatalf("apply on zero manager: got %v, %v", ev, err)
	}
	mgr.SetImmunities(2, "fire")
	burn := Definition{ID: "burn", Kind: KindDamageOverTime, Value: 3, DurationTurns: 2, ImmunityTag: "fire"}
	if ev, _ := mgr.ApplyEffect(2, burn); ev != EventResisted {
		t.Fatalf("expected resisted, got %v", ev)
	}
	if got := mgr.Modifiers(1).Of(combat.StatAttack); got <= 1 {
		t.Fatalf("expected a raised attack multiplier, got %v", got)
	}
}

func TestEffectiveScalesWithoutMutating(t *testing.T) {
	mgr := NewManager()
	mgr.ApplyEffect(4, Definition{ID: "guard_up", Kind: KindStatModifier, Stat: combat.StatDefense, Value: 50, DurationTurns: 1})
	spirit := &combat.Spirit{ID: 4, Modifiers: combat.Modifiers{Attack: 2}}

	view := mgr.Effective(spirit)
	if view == spirit {
		t.Fatalf("expected a copy")
	}
	if view.Modifiers.Of(combat.StatDefense) != 1.5 || view.Modifiers.Of(combat.StatAttack) != 2 {
		t.Fatalf("unexpected live modifiers: %+v", view.Modifiers)
	}
	if spirit.Modifiers != (combat.Modifiers{Attack: 2}) {
		t.Fatalf("spirit modified: %+v", spirit.Modifiers)
	}

	mgr.TickTurn(4)
	if got := mgr.Effective(spirit).Modifiers.Of(combat.StatDefense); got != 1 {
		t.Fatalf("expected neutral defense after expiry, got %v", got)
	}
	if mgr.Effective(nil) != nil {
		t.Fatalf("expected nil for a nil spirit")
	}
}
