package battle

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
)

// Phase is one stage of a turn.
type Phase string

const (
	PhasePreTurn       Phase = "PreTurn"
	PhaseSelectAction  Phase = "SelectAction"
	PhaseResolveAction Phase = "ResolveAction"
	PhaseEndTurn       Phase = "EndTurn"
)

// Phases lists the cycle in order.
var Phases = []Phase{PhasePreTurn, PhaseSelectAction, PhaseResolveAction, PhaseEndTurn}

func (p Phase) String() string { return string(p) }

// Next returns the phase that follows p.
func (p Phase) Next() Phase {
	switch p {
	case PhasePreTurn:
		return PhaseSelectAction
	case PhaseSelectAction:
		return PhaseResolveAction
	case PhaseResolveAction:
		return PhaseEndTurn
	default:
		return PhasePreTurn
	}
}

// PhaseStage tells observers where in a transition they are called.
type PhaseStage string

const (
	StageBefore  PhaseStage = "before"
	StageEntered PhaseStage = "entered"
	StageAfter   PhaseStage = "after"
)

// PhaseChange is delivered to observers three times per transition: before
// leaving From, on entering To and after the transition completed.
type PhaseChange struct {
	Stage PhaseStage
	From  Phase
	To    Phase
}

// PhaseObserver receives phase notifications synchronously.
type PhaseObserver func(PhaseChange)

const eventAdvance = "advance"

// PhaseManager is the fixed PreTurn → SelectAction → ResolveAction →
// EndTurn cycle. A new manager rests at EndTurn so the first Advance opens
// a turn.
type PhaseManager struct {
	machine   *fsm.FSM
	observers []PhaseObserver
}

// NewPhaseManager builds the state machine.
func NewPhaseManager() *PhaseManager {
	m := &PhaseManager{}
	events := make(fsm.Events, 0, len(Phases))
	for _, p := range Phases {
		events = append(events, fsm.EventDesc{Name: eventAdvance, Src: []string{string(p)}, Dst: string(p.Next())})
	}
	m.machine = fsm.NewFSM(string(PhaseEndTurn), events, fsm.Callbacks{
		"before_" + eventAdvance: func(_ context.Context, e *fsm.Event) {
			m.notify(PhaseChange{Stage: StageBefore, From: Phase(e.Src), To: Phase(e.Dst)})
		},
		"enter_state": func(_ context.Context, e *fsm.Event) {
			m.notify(PhaseChange{Stage: StageEntered, From: Phase(e.Src), To: Phase(e.Dst)})
		},
		"after_" + eventAdvance: func(_ context.Context, e *fsm.Event) {
			m.notify(PhaseChange{Stage: StageAfter, From: Phase(e.Src), To: Phase(e.Dst)})
		},
	})
	return m
}

// Observe registers o for every later transition.
func (m *PhaseManager) Observe(o PhaseObserver) {
	if o != nil {
		m.observers = append(m.observers, o)
	}
}

func (m *PhaseManager) notify(change PhaseChange) {
	for _, o := range m.observers {
		o(change)
	}
}

// Current returns the phase the manager is in.
func (m *PhaseManager) Current() Phase {
	return Phase(m.machine.Current())
}

// Advance moves to the next phase and returns it.
func (m *PhaseManager) Advance(ctx context.Context) (Phase, error) {
	if err := m.machine.Event(ctx, eventAdvance); err != nil {
		return m.Current(), fmt.Errorf("advance from %s: %w", m.Current(), err)
	}
	return m.Current(), nil
}

// Reset returns the manager to its resting EndTurn state without notifying
// observers.
func (m *PhaseManager) Reset() {
	m.machine.SetState(string(PhaseEndTurn))
}
