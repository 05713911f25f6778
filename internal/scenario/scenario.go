// Package scenario runs whole battles from a content catalog: it builds the
// roster, drives one controller turn by turn and decides the winner.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"spirit-tamer/battlecore/internal/ai"
	"spirit-tamer/battlecore/internal/battle"
	"spirit-tamer/battlecore/internal/battlelog"
	"spirit-tamer/battlecore/internal/combat"
	"spirit-tamer/battlecore/internal/content"
	"spirit-tamer/battlecore/internal/rng"
	"spirit-tamer/battlecore/logging"
)

// DefaultMaxTurns bounds a battle when the config leaves it unset.
const DefaultMaxTurns = 20

// ErrEmptySide is returned when a side of the roster has no spirits.
var ErrEmptySide = errors.New("scenario: each side needs at least one spirit")

// Config describes one battle run.
type Config struct {
	BattleID string
	Seed     int64
	MaxTurns int

	// PlayerPolicy drives the player side with the AI when set; otherwise
	// the player side follows the scripted type-advantage choice.
	PlayerPolicy string

	Publisher logging.Publisher
	Clock     battlelog.Clock
}

// Result is the outcome of a run.
type Result struct {
	BattleID string
	Seed     int64
	Turns    int
	// Winner is the side left standing, empty on a draw or turn limit.
	Winner    string
	Log       []battlelog.Entry
	Remaining map[int]int
}

// TurnSeed is the seed of turn n of a battle rooted at seed.
func TurnSeed(seed int64, n int) int64 {
	return rng.DeriveSeed(seed, fmt.Sprintf("turn-%d", n))
}

type roster struct {
	spirits map[int]*combat.Spirit
	sides   map[string][]int
	side    map[int]string
}

func newRoster(cat *content.Catalog) (*roster, error) {
	r := &roster{
		spirits: make(map[int]*combat.Spirit),
		sides:   make(map[string][]int),
		side:    make(map[int]string),
	}
	for _, id := range cat.SpiritIDs() {
		spirit, _ := cat.NewSpirit(id)
		info, _ := cat.SpiritInfo(id)
		r.spirits[id] = spirit
		r.sides[info.Side] = append(r.sides[info.Side], id)
		r.side[id] = info.Side
	}
	if len(r.sides[content.SidePlayer]) == 0 || len(r.sides[content.SideOpponent]) == 0 {
		return nil, ErrEmptySide
	}
	return r, nil
}

func (r *roster) actor(id int) (*combat.Spirit, bool) {
	s, ok := r.spirits[id]
	return s, ok
}

func (r *roster) standing(side string) []*combat.Spirit {
	var out []*combat.Spirit
	for _, id := range r.sides[side] {
		if s := r.spirits[id]; !s.Fainted() {
			out = append(out, s)
		}
	}
	return out
}

func (r *roster) opponents(side string) []*combat.Spirit {
	if side == content.SidePlayer {
		return r.standing(content.SideOpponent)
	}
	return r.standing(content.SidePlayer)
}

func (r *roster) winner() (string, bool) {
	player := len(r.standing(content.SidePlayer)) > 0
	opponent := len(r.standing(content.SideOpponent)) > 0
	switch {
	case player && opponent:
		return "", false
	case player:
		return content.SidePlayer, true
	case opponent:
		return content.SideOpponent, true
	default:
		return "", true
	}
}

// Run plays a battle between the catalog's player and opponent sides until
// one side has fainted or MaxTurns turns have passed. Every turn is seeded
// with TurnSeed, so equal configs produce equal logs.
func Run(ctx context.Context, cat *content.Catalog, cfg Config) (Result, error) {
	if cat == nil {
		return Result{}, fmt.Errorf("scenario: catalog is required")
	}
	maxTurns := cfg.MaxTurns
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	r, err := newRoster(cat)
	if err != nil {
		return Result{}, err
	}

	calc := combat.NewCalculator(cat.Chart())
	brains, err := buildBrains(cat, calc, r, cfg.PlayerPolicy)
	if err != nil {
		return Result{}, err
	}

	clock := cfg.Clock
	if clock == nil {
		clock = battlelog.DeterministicClock(battlelog.Epoch)
	}
	provider := rng.New(cfg.Seed)
	controller, err := battle.NewController(provider,
		battle.WithEffects(cat.Effect),
		battle.WithPublisher(cfg.Publisher),
		battle.WithBattleLogger(battlelog.New(battlelog.WithClock(clock))),
		battle.WithBattleID(cfg.BattleID),
	)
	if err != nil {
		return Result{}, err
	}
	for _, id := range cat.SpiritIDs() {
		info, _ := cat.SpiritInfo(id)
		if len(info.Immunities) > 0 {
			controller.Statuses().SetImmunities(id, info.Immunities...)
		}
	}

	res := battle.Resolvers{Actor: r.actor, Move: cat.Move, Damage: calc}
	result := Result{BattleID: cfg.BattleID, Seed: cfg.Seed}
	for turn := 1; turn <= maxTurns; turn++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		selectActions := func() []battle.Action {
			return selectTurn(cat, r, brains, turn, provider, controller.Statuses().Effective)
		}
		if _, err := controller.ExecuteTurn(ctx, TurnSeed(cfg.Seed, turn), selectActions, res); err != nil {
			return Result{}, fmt.Errorf("turn %d: %w", turn, err)
		}
		result.Turns = turn
		if winner, done := r.winner(); done {
			result.Winner = winner
			break
		}
	}

	result.Log = controller.Log()
	result.Remaining = make(map[int]int, len(r.spirits))
	for id, s := range r.spirits {
		result.Remaining[id] = s.CurrentHP
	}
	return result, nil
}

// buildBrains maps each AI-driven spirit to its policy. Spirits missing from
// the map are scripted.
func buildBrains(cat *content.Catalog, calc *combat.Calculator, r *roster, playerPolicy string) (map[int]*ai.BattleAI, error) {
	brains := make(map[int]*ai.BattleAI)
	cache := make(map[string]*ai.BattleAI)
	for _, id := range cat.SpiritIDs() {
		info, _ := cat.SpiritInfo(id)
		policyID := info.Policy
		if r.side[id] == content.SidePlayer {
			if playerPolicy == "" {
				continue
			}
			policyID = playerPolicy
		}
		if policyID == "" {
			policyID = ai.Balanced().ID
		}
		brain, ok := cache[policyID]
		if !ok {
			policy, err := cat.Policies().Policy(policyID)
			if err != nil {
				return nil, fmt.Errorf("spirit %d: %w", id, err)
			}
			if brain, err = ai.New(policy, calc); err != nil {
				return nil, fmt.Errorf("spirit %d: %w", id, err)
			}
			cache[policyID] = brain
		}
		brains[id] = brain
	}
	return brains, nil
}

// selectTurn declares one action per standing spirit in ascending id order.
// AI ties draw from provider, which the controller has already reset to the
// turn seed. live maps a roster spirit to a view carrying its current status
// modifiers; choices are made on those views.
func selectTurn(cat *content.Catalog, r *roster, brains map[int]*ai.BattleAI, turn int, provider rng.Provider, live func(*combat.Spirit) *combat.Spirit) []battle.Action {
	var actions []battle.Action
	for _, id := range cat.SpiritIDs() {
		self := r.spirits[id]
		if self.Fainted() {
			continue
		}
		target := ai.ChooseTarget(r.opponents(r.side[id]))
		if target == nil {
			continue
		}
		self, target = live(self), live(target)
		moves := cat.Learnset(id)
		if brain, ok := brains[id]; ok {
			actions = append(actions, brain.SelectAction(self, target, moves, provider))
			continue
		}
		actions = append(actions, scripted(cat.Chart(), self, target, moves, turn))
	}
	return actions
}

// scripted picks the affordable damaging move with the best type
// multiplier against target, learnset order breaking ties. With no
// affordable damaging move it cycles through the learnset by turn.
func scripted(chart *combat.TypeChart, self, target *combat.Spirit, moves []combat.Move, turn int) battle.Action {
	action := battle.Action{
		ActorID:  self.ID,
		TargetID: target.ID,
		MoveID:   ai.WaitMoveID,
		Speed:    ai.ActionSpeed(self),
		Source:   battle.SourcePlayer,
		Notes:    "scripted",
	}
	if len(moves) == 0 {
		return action
	}
	best, bestMul := -1, 0.0
	for i, m := range moves {
		if !m.DealsDamage() || !self.CanAfford(m) {
			continue
		}
		if mul := chart.Multiplier(m.TypeTag, target.TypeTag); best < 0 || mul > bestMul {
			best, bestMul = i, mul
		}
	}
	if best < 0 {
		affordable := slices.DeleteFunc(slices.Clone(moves), func(m combat.Move) bool { return !self.CanAfford(m) })
		if len(affordable) == 0 {
			return action
		}
		best = slices.Index(moves, affordable[(turn-1)%len(affordable)])
	}
	action.MoveID = moves[best].ID
	action.Priority = moves[best].Priority
	return action
}
