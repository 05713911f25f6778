// Package ai proposes actions for computer-controlled spirits. Moves are
// scored with policy weights against an expected-damage estimate; the
// shared RNG is touched only to break exact ties.
package ai

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Policy weights the scoring terms. Aggression scales damage and type
// advantage, Caution the accuracy penalty, Efficiency the cost penalties.
type Policy struct {
	ID         string  `json:"id" yaml:"id"`
	Aggression float64 `json:"aggression" yaml:"aggression"`
	Caution    float64 `json:"caution" yaml:"caution"`
	Efficiency float64 `json:"efficiency" yaml:"efficiency"`
}

var ErrInvalidPolicy = errors.New("ai: invalid policy")

// Validate rejects non-finite or negative weights.
func (p Policy) Validate() error {
	check := func(name string, v float64) error {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%w %q: %s weight %v", ErrInvalidPolicy, p.ID, name, v)
		}
		return nil
	}
	if err := check("aggression", p.Aggression); err != nil {
		return err
	}
	if err := check("caution", p.Caution); err != nil {
		return err
	}
	return check("efficiency", p.Efficiency)
}

// Preset policies.
func Balanced() Policy {
	return Policy{ID: "balanced", Aggression: 1, Caution: 1, Efficiency: 1}
}

func Aggressive() Policy {
	return Policy{ID: "aggressive", Aggression: 1.3, Caution: 0.5, Efficiency: 0.8}
}

func Defensive() Policy {
	return Policy{ID: "defensive", Aggression: 0.8, Caution: 1.5, Efficiency: 1.2}
}

func Trickster() Policy {
	return Policy{ID: "trickster", Aggression: 0.9, Caution: 1, Efficiency: 1.3}
}

// ErrUnknownPolicy is returned for ids that were never registered.
var ErrUnknownPolicy = errors.New("ai: unknown policy")

// Registry holds named policies.
type Registry struct {
	policies map[string]Policy
}

// NewRegistry returns a registry preloaded with the presets.
func NewRegistry() *Registry {
	r := &Registry{policies: make(map[string]Policy)}
	for _, p := range []Policy{Balanced(), Aggressive(), Defensive(), Trickster()} {
		r.policies[p.ID] = p
	}
	return r
}

// Register validates and stores p, replacing any policy with the same id.
func (r *Registry) Register(p Policy) error {
	if p.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidPolicy)
	}
	if err := p.Validate(); err != nil {
		return err
	}
	r.policies[p.ID] = p
	return nil
}

// Policy returns the policy registered under id.
func (r *Registry) Policy(id string) (Policy, error) {
	p, ok := r.policies[id]
	if !ok {
		return Policy{}, fmt.Errorf("%w %q", ErrUnknownPolicy, id)
	}
	return p, nil
}

// IDs returns the registered ids sorted.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.policies))
	for id := range r.policies {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
