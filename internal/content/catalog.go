package content

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"spirit-tamer/battlecore/internal/ai"
	"spirit-tamer/battlecore/internal/combat"
	"spirit-tamer/battlecore/internal/status"
)

//go:embed default.yaml
var defaultCatalog []byte

// Sides a spirit can fight on.
const (
	SidePlayer   = "player"
	SideOpponent = "opponent"
)

// Format selects the decoder.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ErrInvalidCatalog wraps every validation failure.
var ErrInvalidCatalog = errors.New("content: invalid catalog")

// Catalog is validated, immutable reference data.
type Catalog struct {
	chart    *combat.TypeChart
	moves    map[string]combat.Move
	effects  map[string]status.Definition
	spirits  map[int]SpiritDocument
	policies *ai.Registry
}

// Default returns the built-in demo catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog, FormatYAML)
}

// Load reads a catalog file; the extension picks the format.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("content: read %s: %w", path, err)
	}
	format := FormatYAML
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = FormatJSON
	}
	cat, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cat, nil
}

// Parse decodes and validates a catalog.
func Parse(data []byte, format Format) (*Catalog, error) {
	var doc Document
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("content: decode json: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("content: decode yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("content: unknown format %q", format)
	}
	return Build(doc)
}

// Build validates doc and indexes it.
func Build(doc Document) (*Catalog, error) {
	c := &Catalog{
		moves:    make(map[string]combat.Move, len(doc.Moves)),
		effects:  make(map[string]status.Definition, len(doc.Effects)),
		spirits:  make(map[int]SpiritDocument, len(doc.Spirits)),
		policies: ai.NewRegistry(),
	}

	entries := make([]combat.TypeEntry, 0, len(doc.Types))
	for i, t := range doc.Types {
		if strings.TrimSpace(t.Attack) == "" || strings.TrimSpace(t.Defense) == "" {
			return nil, fmt.Errorf("%w: type entry %d needs attack and defense", ErrInvalidCatalog, i)
		}
		if t.Multiplier < 0 || math.IsNaN(t.Multiplier) || math.IsInf(t.Multiplier, 0) {
			return nil, fmt.Errorf("%w: type %s/%s has multiplier %v", ErrInvalidCatalog, t.Attack, t.Defense, t.Multiplier)
		}
		entries = append(entries, combat.TypeEntry{Attack: t.Attack, Defense: t.Defense, Multiplier: t.Multiplier})
	}
	if len(entries) == 0 {
		c.chart = combat.DefaultTypeChart()
	} else {
		c.chart = combat.NewTypeChart(entries)
	}

	for _, e := range doc.Effects {
		def, err := e.definition()
		if err != nil {
			return nil, err
		}
		if _, dup := c.effects[def.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate effect %q", ErrInvalidCatalog, def.ID)
		}
		c.effects[def.ID] = def
	}

	for _, m := range doc.Moves {
		move, err := m.move()
		if err != nil {
			return nil, err
		}
		if _, dup := c.moves[move.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate move %q", ErrInvalidCatalog, move.ID)
		}
		if move.StatusEffectID != "" {
			if _, ok := c.effects[move.StatusEffectID]; !ok {
				return nil, fmt.Errorf("%w: move %q references unknown effect %q", ErrInvalidCatalog, move.ID, move.StatusEffectID)
			}
		}
		c.moves[move.ID] = move
	}

	for _, p := range doc.Policies {
		if err := c.policies.Register(p); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
		}
	}

	for _, s := range doc.Spirits {
		if err := c.validateSpirit(s); err != nil {
			return nil, err
		}
		c.spirits[s.ID] = s
	}
	return c, nil
}

func (m MoveDocument) move() (combat.Move, error) {
	if m.ID == "" {
		return combat.Move{}, fmt.Errorf("%w: move without id", ErrInvalidCatalog)
	}
	category := combat.Category(strings.ToLower(m.Category))
	if !category.Valid() {
		return combat.Move{}, fmt.Errorf("%w: move %q has unknown category %q", ErrInvalidCatalog, m.ID, m.Category)
	}
	if m.Accuracy < 0 || m.Accuracy > 1 || math.IsNaN(m.Accuracy) {
		return combat.Move{}, fmt.Errorf("%w: move %q accuracy %v outside [0,1]", ErrInvalidCatalog, m.ID, m.Accuracy)
	}
	if m.Power < 0 || m.Cost < 0 {
		return combat.Move{}, fmt.Errorf("%w: move %q has negative power or cost", ErrInvalidCatalog, m.ID)
	}
	name := m.Name
	if name == "" {
		name = m.ID
	}
	return combat.Move{
		ID:             m.ID,
		Name:           name,
		Category:       category,
		Power:          m.Power,
		Accuracy:       m.Accuracy,
		Cost:           m.Cost,
		TypeTag:        strings.ToLower(m.Type),
		StatusEffectID: m.Status,
		Priority:       m.Priority,
	}, nil
}

var triggerNames = map[string]status.Trigger{
	"on_apply": status.TriggerOnApply,
	"on_tick":  status.TriggerOnTick,
	"on_hit":   status.TriggerOnHit,
	"on_cast":  status.TriggerOnCast,
}

func (e EffectDocument) definition() (status.Definition, error) {
	if e.ID == "" {
		return status.Definition{}, fmt.Errorf("%w: effect without id", ErrInvalidCatalog)
	}
	def := status.Definition{
		ID:              e.ID,
		Name:            e.Name,
		Description:     e.Description,
		Kind:            status.Kind(e.Kind),
		Stat:            combat.Stat(e.Stat),
		Value:           e.Value,
		DurationTurns:   e.DurationTurns,
		DurationSeconds: e.DurationSeconds,
		Stackable:       e.Stackable,
		MaxStacks:       e.MaxStacks,
		RefreshOnStack:  e.RefreshOnStack,
		Rule:            status.Rule(e.Rule),
		ImmunityTag:     e.ImmunityTag,
		Debuff:          e.Debuff,
	}
	if !def.Kind.Valid() {
		return def, fmt.Errorf("%w: effect %q has unknown kind %q", ErrInvalidCatalog, e.ID, e.Kind)
	}
	if !def.Rule.Valid() {
		return def, fmt.Errorf("%w: effect %q has unknown rule %q", ErrInvalidCatalog, e.ID, e.Rule)
	}
	if (def.Kind == "" || def.Kind == status.KindStatModifier) && def.Stat == combat.StatNone {
		return def, fmt.Errorf("%w: stat modifier %q needs a stat", ErrInvalidCatalog, e.ID)
	}
	if e.DurationTurns < 0 || e.DurationSeconds < 0 || e.MaxStacks < 0 {
		return def, fmt.Errorf("%w: effect %q has negative duration or stacks", ErrInvalidCatalog, e.ID)
	}
	for _, name := range e.Triggers {
		flag, ok := triggerNames[strings.ToLower(name)]
		if !ok {
			return def, fmt.Errorf("%w: effect %q has unknown trigger %q", ErrInvalidCatalog, e.ID, name)
		}
		def.Triggers |= flag
	}
	return def, nil
}

func (c *Catalog) validateSpirit(s SpiritDocument) error {
	if s.ID <= 0 {
		return fmt.Errorf("%w: spirit %q needs a positive id", ErrInvalidCatalog, s.Species)
	}
	if _, dup := c.spirits[s.ID]; dup {
		return fmt.Errorf("%w: duplicate spirit id %d", ErrInvalidCatalog, s.ID)
	}
	if s.Level <= 0 || s.MaxHP <= 0 {
		return fmt.Errorf("%w: spirit %d needs positive level and hp", ErrInvalidCatalog, s.ID)
	}
	if s.Side != SidePlayer && s.Side != SideOpponent {
		return fmt.Errorf("%w: spirit %d has unknown side %q", ErrInvalidCatalog, s.ID, s.Side)
	}
	if len(s.Moves) == 0 {
		return fmt.Errorf("%w: spirit %d knows no moves", ErrInvalidCatalog, s.ID)
	}
	for _, id := range s.Moves {
		if _, ok := c.moves[id]; !ok {
			return fmt.Errorf("%w: spirit %d knows unknown move %q", ErrInvalidCatalog, s.ID, id)
		}
	}
	if s.Policy != "" {
		if _, err := c.policies.Policy(s.Policy); err != nil {
			return fmt.Errorf("%w: spirit %d: %w", ErrInvalidCatalog, s.ID, err)
		}
	}
	return nil
}

// Chart returns the type chart.
func (c *Catalog) Chart() *combat.TypeChart { return c.chart }

// Move looks up a move.
func (c *Catalog) Move(id string) (combat.Move, bool) {
	m, ok := c.moves[id]
	return m, ok
}

// Effect looks up a status definition.
func (c *Catalog) Effect(id string) (status.Definition, bool) {
	d, ok := c.effects[id]
	return d, ok
}

// Policies returns the policy registry, presets included.
func (c *Catalog) Policies() *ai.Registry { return c.policies }

// MoveIDs returns every move id sorted.
func (c *Catalog) MoveIDs() []string {
	ids := make([]string, 0, len(c.moves))
	for id := range c.moves {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SpiritIDs returns every spirit id ascending.
func (c *Catalog) SpiritIDs() []int {
	ids := make([]int, 0, len(c.spirits))
	for id := range c.spirits {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// SpiritInfo returns the authored record of a spirit.
func (c *Catalog) SpiritInfo(id int) (SpiritDocument, bool) {
	s, ok := c.spirits[id]
	return s, ok
}

// NewSpirit instantiates a fresh, full-health spirit.
func (c *Catalog) NewSpirit(id int) (*combat.Spirit, bool) {
	s, ok := c.spirits[id]
	if !ok {
		return nil, false
	}
	name := s.Name
	if name == "" {
		name = s.Species
	}
	return &combat.Spirit{
		ID:              s.ID,
		SpeciesID:       s.Species,
		Name:            name,
		TypeTag:         strings.ToLower(s.Type),
		Level:           s.Level,
		CurrentHP:       s.MaxHP,
		MaxHP:           s.MaxHP,
		Attack:          s.Attack,
		Defense:         s.Defense,
		SpecialAttack:   s.SpecialAttack,
		SpecialDefense:  s.SpecialDefense,
		Speed:           s.Speed,
		ResourcePoints:  s.ResourcePoints,
		CritChanceBonus: s.CritChanceBonus,
	}, true
}

// Learnset returns the moves a spirit knows, in authored order.
func (c *Catalog) Learnset(id int) []combat.Move {
	s, ok := c.spirits[id]
	if !ok {
		return nil
	}
	moves := make([]combat.Move, 0, len(s.Moves))
	for _, mid := range s.Moves {
		moves = append(moves, c.moves[mid])
	}
	return moves
}
