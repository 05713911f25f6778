package battle

import (
	"context"
	"testing"

	"spirit-tamer/battlecore/logging"
)

func TestHelpersFillScope(t *testing.T) {
	var got []logging.Event
	pub := logging.PublisherFunc(func(_ context.Context, e logging.Event) { got = append(got, e) })
	scope := Scope{Battle: "b-7", Turn: 3, Phase: "ResolveAction"}

	ActionResolved(context.Background(), pub, scope, 1, 2, ActionPayload{Move: "ember", Hit: true, Damage: 9})
	ActionSkipped(context.Background(), pub, scope, 4, SkipPayload{Reason: "unknown move"})
	EffectNotified(context.Background(), pub, scope, 2, EffectPayload{Effect: "burn", Change: "applied"})

	if len(got) != 3 {
		t.Fatalf("expected 3 events, got %d", len(got))
	}
	first := got[0]
	if first.Type != EventActionResolved || first.Battle != "b-7" || first.Turn != 3 || first.Phase != "ResolveAction" {
		t.Fatalf("unexpected event: %+v", first)
	}
	if first.Actor != SpiritRef(1) || len(first.Targets) != 1 || first.Targets[0].ID != "2" {
		t.Fatalf("unexpected refs: %+v", first)
	}
	if got[1].Severity != logging.SeverityWarn {
		t.Fatalf("expected skipped actions to warn")
	}
	if got[2].Category != logging.CategoryStatus || got[2].Targets[0].Kind != logging.EntityKindEffect {
		t.Fatalf("unexpected effect event: %+v", got[2])
	}
}

func TestHelpersIgnoreNilPublisher(t *testing.T) {
	PhaseChanged(context.Background(), nil, Scope{}, PhasePayload{})
	TurnCompleted(context.Background(), nil, Scope{}, TurnPayload{})
	SpiritFainted(context.Background(), nil, Scope{}, 1, 2)
}
