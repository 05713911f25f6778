package battle

import (
	"context"
	"testing"
)

func TestPhaseManagerCyclesInFixedOrder(t *testing.T) {
	m := NewPhaseManager()
	if m.Current() != PhaseEndTurn {
		t.Fatalf("expected a new manager to rest at EndTurn, got %s", m.Current())
	}

	var changes []PhaseChange
	m.Observe(func(c PhaseChange) { changes = append(changes, c) })

	want := []Phase{PhasePreTurn, PhaseSelectAction, PhaseResolveAction, PhaseEndTurn, PhasePreTurn}
	for i, expected := range want {
		got, err := m.Advance(context.Background())
		if err != nil {
			t.Fatalf("advance %d: %v", i, err)
		}
		if got != expected {
			t.Fatalf("advance %d: expected %s, got %s", i, expected, got)
		}
	}

	if len(changes) != 3*len(want) {
		t.Fatalf("expected 3 notifications per transition, got %d", len(changes))
	}
	first := changes[:3]
	if first[0].Stage != StageBefore || first[1].Stage != StageEntered || first[2].Stage != StageAfter {
		t.Fatalf("unexpected stage order: %+v", first)
	}
	for _, c := range first {
		if c.From != PhaseEndTurn || c.To != PhasePreTurn {
			t.Fatalf("unexpected transition: %+v", c)
		}
	}
}

func TestPhaseManagerReset(t *testing.T) {
	m := NewPhaseManager()
	m.Advance(context.Background())
	m.Advance(context.Background())
	m.Reset()
	if m.Current() != PhaseEndTurn {
		t.Fatalf("expected EndTurn after reset, got %s", m.Current())
	}
	if got, _ := m.Advance(context.Background()); got != PhasePreTurn {
		t.Fatalf("expected PreTurn after reset, got %s", got)
	}
}
