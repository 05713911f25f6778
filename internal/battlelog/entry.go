// Package battlelog records the ordered, comparable log of a battle: one
// entry per phase change and per resolved action, plus effect side effects.
// The log is the externally observable contract of the battle core.
package battlelog

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind classifies a log entry.
type Kind string

const (
	KindPhase  Kind = "phase"
	KindAction Kind = "action"
	KindEffect Kind = "effect"
	KindSkip   Kind = "skip"
)

// TurnStartPhase is the phase whose entry opens a new turn.
const TurnStartPhase = "PreTurn"

// Entry is one immutable log record. Damage is nil when the entry carries
// no damage value.
type Entry struct {
	Seq       int       `json:"seq"`
	Timestamp time.Time `json:"timestamp"`
	Turn      int       `json:"turn"`
	Phase     string    `json:"phase"`
	Kind      Kind      `json:"kind"`
	ActorID   int       `json:"actorId,omitempty"`
	TargetID  int       `json:"targetId,omitempty"`
	ActionID  string    `json:"actionId,omitempty"`
	Result    string    `json:"result,omitempty"`
	Damage    *int      `json:"damage,omitempty"`
	Status    string    `json:"status,omitempty"`
	Notes     string    `json:"notes,omitempty"`
}

// Dmg returns a pointer to v for populating Entry.Damage.
func Dmg(v int) *int {
	return &v
}

// DamageValue returns the damage and whether it was set.
func (e Entry) DamageValue() (int, bool) {
	if e.Damage == nil {
		return 0, false
	}
	return *e.Damage, true
}

func (e Entry) clone() Entry {
	if e.Damage != nil {
		e.Damage = Dmg(*e.Damage)
	}
	return e
}

func (e Entry) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "#%d turn=%d phase=%s kind=%s", e.Seq, e.Turn, e.Phase, e.Kind)
	if e.Kind != KindPhase {
		fmt.Fprintf(&b, " actor=%d target=%d action=%s", e.ActorID, e.TargetID, e.ActionID)
	}
	if e.Result != "" {
		fmt.Fprintf(&b, " result=%q", e.Result)
	}
	if dmg, ok := e.DamageValue(); ok {
		b.WriteString(" dmg=")
		b.WriteString(strconv.Itoa(dmg))
	}
	if e.Status != "" {
		fmt.Fprintf(&b, " status=%s", e.Status)
	}
	return b.String()
}
