// Package battle runs one turn of a battle: it orders declared actions,
// drives the four-phase turn state machine and resolves each action
// through the damage calculator and the status manager, recording the
// outcome in the battle log.
package battle

import (
	"cmp"
	"fmt"
	"slices"

	"spirit-tamer/battlecore/internal/rng"
)

// Source tags who declared an action.
type Source string

const (
	SourcePlayer Source = "player"
	SourceAI     Source = "ai"
)

// Action is one actor's declared intent for the current turn.
type Action struct {
	ActorID  int
	TargetID int
	MoveID   string
	Priority int
	Speed    int
	Source   Source
	Notes    string

	tiebreak float64
}

// Tiebreak returns the value assigned when the action was enqueued.
func (a Action) Tiebreak() float64 {
	return a.tiebreak
}

func (a Action) String() string {
	return fmt.Sprintf("%d->%d %s (p=%d s=%d %s)", a.ActorID, a.TargetID, a.MoveID, a.Priority, a.Speed, a.Source)
}

// Queue orders the actions of one turn. Each Enqueue draws one float from
// the provider, so the resulting order depends on enqueue order.
type Queue struct {
	rng     rng.Provider
	actions []Action
}

// NewQueue returns an empty queue drawing tiebreakers from r.
func NewQueue(r rng.Provider) *Queue {
	return &Queue{rng: r}
}

// Enqueue assigns the tiebreaker and stores the action. Any tiebreaker set
// by the caller is overwritten.
func (q *Queue) Enqueue(action Action) Action {
	action.tiebreak = q.rng.NextFloat(0, 1)
	q.actions = append(q.actions, action)
	return action
}

// Ordered returns the actions sorted by priority and speed descending, then
// tiebreaker and actor id ascending.
func (q *Queue) Ordered() []Action {
	out := slices.Clone(q.actions)
	slices.SortStableFunc(out, compareActions)
	return out
}

func compareActions(a, b Action) int {
	if c := cmp.Compare(b.Priority, a.Priority); c != 0 {
		return c
	}
	if c := cmp.Compare(b.Speed, a.Speed); c != 0 {
		return c
	}
	if c := cmp.Compare(a.tiebreak, b.tiebreak); c != 0 {
		return c
	}
	return cmp.Compare(a.ActorID, b.ActorID)
}

// Len returns the number of queued actions.
func (q *Queue) Len() int {
	return len(q.actions)
}

// Reset empties the queue.
func (q *Queue) Reset() {
	q.actions = nil
}
