package combat

import "strings"

type typePair struct {
	attack  string
	defense string
}

// TypeChart maps (attacker type, defender type) to a damage multiplier.
// Lookups are case-insensitive and unknown pairs are neutral.
type TypeChart struct {
	entries map[typePair]float64
}

// TypeEntry is one row of a chart definition.
type TypeEntry struct {
	Attack     string
	Defense    string
	Multiplier float64
}

// NewTypeChart builds a chart from entries. Later entries override earlier
// ones for the same pair.
func NewTypeChart(entries []TypeEntry) *TypeChart {
	chart := &TypeChart{entries: make(map[typePair]float64, len(entries))}
	for _, entry := range entries {
		chart.Set(entry.Attack, entry.Defense, entry.Multiplier)
	}
	return chart
}

// DefaultTypeChart returns the demo chart: water, fire and nature form a
// cycle of 2x advantages with 0.5x reverse resistances, and ghost moves do
// not affect normal types.
func DefaultTypeChart() *TypeChart {
	return NewTypeChart([]TypeEntry{
		{Attack: "neutral", Defense: "neutral", Multiplier: 1},
		{Attack: "water", Defense: "fire", Multiplier: 2},
		{Attack: "fire", Defense: "nature", Multiplier: 2},
		{Attack: "nature", Defense: "water", Multiplier: 2},
		{Attack: "fire", Defense: "water", Multiplier: 0.5},
		{Attack: "nature", Defense: "fire", Multiplier: 0.5},
		{Attack: "water", Defense: "nature", Multiplier: 0.5},
		{Attack: "ghost", Defense: "normal", Multiplier: 0},
	})
}

// Set adds or replaces the multiplier for a pair. Blank tags are ignored.
func (c *TypeChart) Set(attack, defense string, multiplier float64) {
	key, ok := pairKey(attack, defense)
	if !ok {
		return
	}
	if c.entries == nil {
		c.entries = make(map[typePair]float64)
	}
	c.entries[key] = multiplier
}

// Multiplier returns the multiplier for attack against defense, or 1.0 when
// either tag is blank or the pair is unknown.
func (c *TypeChart) Multiplier(attack, defense string) float64 {
	if c == nil {
		return 1
	}
	key, ok := pairKey(attack, defense)
	if !ok {
		return 1
	}
	if m, found := c.entries[key]; found {
		return m
	}
	return 1
}

// Len returns the number of explicit entries.
func (c *TypeChart) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

func pairKey(attack, defense string) (typePair, bool) {
	a := strings.ToLower(strings.TrimSpace(attack))
	d := strings.ToLower(strings.TrimSpace(defense))
	if a == "" || d == "" {
		return typePair{}, false
	}
	return typePair{attack: a, defense: d}, true
}
