package ai

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"spirit-tamer/battlecore/internal/battle"
	"spirit-tamer/battlecore/internal/combat"
	"spirit-tamer/battlecore/internal/rng"
)

// Scoring constants.
const (
	UnaffordablePenalty = 10.0
	TypeAdvantageWeight = 2.0
	DamageDivisor       = 50.0
	KillSecureBonus     = 5.0
	KillSecureHPRatio   = 0.25
	AccuracyThreshold   = 0.8
	AccuracyWeight      = 2.0
	CostWeight          = 0.1

	// TieEpsilon is the score distance under which moves count as tied.
	TieEpsilon = 1e-4
)

// WaitMoveID is proposed when there is nothing to score.
const WaitMoveID = "wait"

// Score is the evaluation of one candidate move.
type Score struct {
	Move     combat.Move
	Value    float64
	Expected float64
	Type     float64
}

// BattleAI scores candidate moves with a fixed policy.
type BattleAI struct {
	policy Policy
	calc   *combat.Calculator
}

// New builds an AI. A nil calculator uses the default type chart.
func New(policy Policy, calc *combat.Calculator) (*BattleAI, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if calc == nil {
		calc = combat.NewCalculator(nil)
	}
	return &BattleAI{policy: policy, calc: calc}, nil
}

// Policy returns the AI's policy.
func (a *BattleAI) Policy() Policy { return a.policy }

// Scores evaluates every candidate without touching any RNG. Candidates are
// returned sorted by move id, which is also the tie-break order.
func (a *BattleAI) Scores(self, opponent *combat.Spirit, moves []combat.Move) []Score {
	candidates := slices.Clone(moves)
	slices.SortStableFunc(candidates, func(x, y combat.Move) int { return strings.Compare(x.ID, y.ID) })

	scores := make([]Score, 0, len(candidates))
	for _, move := range candidates {
		scores = append(scores, a.score(self, opponent, move))
	}
	return scores
}

func (a *BattleAI) score(self, opponent *combat.Spirit, move combat.Move) Score {
	p := a.policy
	var value float64

	if !self.CanAfford(move) {
		value -= UnaffordablePenalty * p.Efficiency
	}

	typeMul := a.calc.Chart().Multiplier(move.TypeTag, opponent.TypeTag)
	value += (typeMul - 1) * TypeAdvantageWeight * p.Aggression

	_, breakdown := a.calc.CalculateDamage(self, opponent, move, rng.Midpoint{})
	expected := breakdown.Expected()
	value += expected / DamageDivisor * p.Aggression

	if opponent.HPRatio() < KillSecureHPRatio && expected >= float64(opponent.CurrentHP) {
		value += KillSecureBonus * p.Aggression
	}
	if move.Accuracy < AccuracyThreshold {
		value -= (AccuracyThreshold - move.Accuracy) * AccuracyWeight * p.Caution
	}
	value -= float64(move.Cost) * CostWeight * p.Efficiency

	return Score{Move: move, Value: value, Expected: expected, Type: typeMul}
}

// SelectAction proposes an action for self against opponent. The best score
// wins; moves within TieEpsilon of the best are tied and one NextInt draw on
// r picks among them, after all scoring. With nothing to score it returns a
// wait action and draws nothing.
func (a *BattleAI) SelectAction(self, opponent *combat.Spirit, moves []combat.Move, r rng.Provider) battle.Action {
	if self == nil || opponent == nil || len(moves) == 0 {
		action := battle.Action{ActorID: -1, TargetID: -1, MoveID: WaitMoveID, Source: battle.SourceAI}
		if self != nil {
			action.ActorID = self.ID
		}
		if opponent != nil {
			action.TargetID = opponent.ID
		}
		return action
	}

	scores := a.Scores(self, opponent, moves)
	best := math.Inf(-1)
	for _, s := range scores {
		best = math.Max(best, s.Value)
	}
	var tied []Score
	for _, s := range scores {
		if math.Abs(s.Value-best) < TieEpsilon {
			tied = append(tied, s)
		}
	}
	chosen := tied[0]
	if len(tied) > 1 {
		chosen = tied[r.NextInt(0, len(tied))]
	}

	return battle.Action{
		ActorID:  self.ID,
		TargetID: opponent.ID,
		MoveID:   chosen.Move.ID,
		Priority: chosen.Move.Priority,
		Speed:    ActionSpeed(self),
		Source:   battle.SourceAI,
		Notes:    fmt.Sprintf("policy=%s score=%.2f tied=%d", a.policy.ID, chosen.Value, len(tied)),
	}
}

// ActionSpeed is the queue speed of s: Speed scaled by its speed modifier,
// or its level when it has no speed stat.
func ActionSpeed(s *combat.Spirit) int {
	if s.Speed <= 0 {
		return s.Level
	}
	return int(math.Round(float64(s.Speed) * s.Modifiers.Of(combat.StatSpeed)))
}

// ThreatLevel rates an opponent by level scaled with remaining HP.
func ThreatLevel(opponent *combat.Spirit) float64 {
	if opponent == nil {
		return 0
	}
	return float64(opponent.Level) * (0.5 + 0.5*opponent.HPRatio())
}

// ChooseTarget returns the standing opponent with the highest threat level,
// lowest id first on equal threat, or nil when all have fainted.
func ChooseTarget(opponents []*combat.Spirit) *combat.Spirit {
	var target *combat.Spirit
	for _, o := range opponents {
		if o == nil || o.Fainted() {
			continue
		}
		if target == nil {
			target = o
			continue
		}
		t, ot := ThreatLevel(target), ThreatLevel(o)
		if ot > t || (ot == t && o.ID < target.ID) {
			target = o
		}
	}
	return target
}
