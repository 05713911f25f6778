package battle

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"spirit-tamer/battlecore/internal/battlelog"
	"spirit-tamer/battlecore/internal/combat"
	"spirit-tamer/battlecore/internal/rng"
	"spirit-tamer/battlecore/internal/status"
	"spirit-tamer/battlecore/logging"
	loggingbattle "spirit-tamer/battlecore/logging/battle"
)

// ErrNilProvider is returned when a controller is built without an RNG.
var ErrNilProvider = errors.New("battle: rng provider is required")

// SelectFunc returns the actions declared for the current turn. It is where
// player input and AI choices are merged by the caller.
type SelectFunc func() []Action

// ActorResolver looks up a spirit by id in the caller's roster.
type ActorResolver func(id int) (*combat.Spirit, bool)

// MoveResolver looks up a move definition by id.
type MoveResolver func(id string) (combat.Move, bool)

// EffectResolver looks up a status definition by id.
type EffectResolver func(id string) (status.Definition, bool)

// DamageCalculator computes damage for one action. *combat.Calculator
// satisfies it.
type DamageCalculator interface {
	CalculateDamage(attacker, defender *combat.Spirit, move combat.Move, r rng.Provider) (int, combat.Breakdown)
}

// Resolvers are the caller-owned lookups used while resolving a turn. The
// controller borrows them for the duration of ExecuteTurn only.
type Resolvers struct {
	Actor  ActorResolver
	Move   MoveResolver
	Damage DamageCalculator
}

// TurnResult is the observable outcome of one turn.
type TurnResult struct {
	Turn    int
	Seed    int64
	Ordered []Action
	Log     []battlelog.Entry
}

// ResultDeclared is the action result logged when no resolvers are supplied.
const ResultDeclared = "declared"

// Skip reasons recorded in the log.
const (
	ReasonUnknownActor  = "unknown actor"
	ReasonUnknownTarget = "unknown target"
	ReasonUnknownMove   = "unknown move"
	ReasonActorFainted  = "actor fainted"
	ReasonTargetFainted = "target fainted"
)

// Option configures a Controller.
type Option func(*Controller)

// WithStatusManager shares an existing status manager.
func WithStatusManager(m *status.Manager) Option {
	return func(c *Controller) {
		if m != nil {
			c.statuses = m
		}
	}
}

// WithEffects sets the catalog used for the status effects moves apply.
func WithEffects(resolve EffectResolver) Option {
	return func(c *Controller) {
		c.effects = resolve
	}
}

// WithPublisher sends diagnostic events to pub.
func WithPublisher(pub logging.Publisher) Option {
	return func(c *Controller) {
		if pub != nil {
			c.pub = pub
		}
	}
}

// WithBattleLogger records into an existing battle log.
func WithBattleLogger(l *battlelog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// WithBattleID labels diagnostic events.
func WithBattleID(id string) Option {
	return func(c *Controller) {
		c.battleID = id
	}
}

// Controller orchestrates turns for one battle. It owns its provider, log,
// phase machine and status manager; controllers must never share a
// provider. It is not safe for concurrent use.
type Controller struct {
	rng      rng.Provider
	phases   *PhaseManager
	log      *battlelog.Logger
	statuses *status.Manager
	effects  EffectResolver
	pub      logging.Publisher
	battleID string

	ctx     context.Context
	seed    int64
	pending []status.Notification
}

// NewController builds a controller drawing from provider.
func NewController(provider rng.Provider, opts ...Option) (*Controller, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}
	c := &Controller{
		rng:      provider,
		phases:   NewPhaseManager(),
		log:      battlelog.New(),
		statuses: status.NewManager(),
		pub:      logging.NopPublisher(),
		ctx:      context.Background(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	c.phases.Observe(c.onPhase)
	c.statuses.Subscribe(status.ListenerFunc(func(n status.Notification) {
		c.pending = append(c.pending, n)
	}))
	return c, nil
}

func (c *Controller) scope() loggingbattle.Scope {
	return loggingbattle.Scope{Battle: c.battleID, Turn: c.log.Turn(), Phase: string(c.phases.Current())}
}

func (c *Controller) onPhase(change PhaseChange) {
	if change.Stage != StageEntered {
		return
	}
	c.log.LogPhase(string(change.To))
	scope := c.scope()
	scope.Phase = string(change.To)
	loggingbattle.PhaseChanged(c.ctx, c.pub, scope, loggingbattle.PhasePayload{From: string(change.From), To: string(change.To)})
}

// ExecuteTurn runs one full turn: it resets the provider to seed, walks the
// four phases, orders the selected actions and resolves them in order.
// Calling it with the same seed, selection and roster state reproduces the
// same ordered actions and log entries.
func (c *Controller) ExecuteTurn(ctx context.Context, seed int64, selectActions SelectFunc, res Resolvers) (TurnResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	c.ctx = ctx
	c.seed = seed
	c.rng.Reset(seed)
	start := c.log.Len()

	if err := c.advance(ctx, PhasePreTurn); err != nil {
		return TurnResult{}, err
	}
	var declared []Action
	if selectActions != nil {
		declared = selectActions()
	}

	if err := c.advance(ctx, PhaseSelectAction); err != nil {
		return TurnResult{}, err
	}
	queue := NewQueue(c.rng)
	for _, action := range declared {
		queue.Enqueue(action)
	}
	ordered := queue.Ordered()

	if err := c.advance(ctx, PhaseResolveAction); err != nil {
		return TurnResult{}, err
	}
	for _, action := range ordered {
		c.resolve(action, res)
	}

	if err := c.advance(ctx, PhaseEndTurn); err != nil {
		return TurnResult{}, err
	}
	c.endTurn(res)

	entries := c.log.Since(start)
	loggingbattle.TurnCompleted(ctx, c.pub, c.scope(), loggingbattle.TurnPayload{Seed: seed, Actions: len(ordered), Entries: len(entries)})
	return TurnResult{
		Turn:    c.log.Turn(),
		Seed:    seed,
		Ordered: ordered,
		Log:     entries,
	}, nil
}

func (c *Controller) advance(ctx context.Context, want Phase) error {
	got, err := c.phases.Advance(ctx)
	if err != nil {
		return fmt.Errorf("battle: %w", err)
	}
	if got != want {
		return fmt.Errorf("battle: expected phase %s, got %s", want, got)
	}
	return nil
}

// resolve applies one action. Without resolvers the action is only
// declared. Every skip happens before the action draws from the provider.
func (c *Controller) resolve(action Action, res Resolvers) {
	if res.Actor == nil || res.Move == nil {
		c.declare(action)
		return
	}
	actor, ok := res.Actor(action.ActorID)
	if !ok || actor == nil {
		c.skip(action, ReasonUnknownActor)
		return
	}
	target, ok := res.Actor(action.TargetID)
	if !ok || target == nil {
		c.skip(action, ReasonUnknownTarget)
		return
	}
	move, ok := res.Move(action.MoveID)
	if !ok {
		c.skip(action, ReasonUnknownMove)
		return
	}
	if actor.Fainted() {
		c.skip(action, ReasonActorFainted)
		return
	}
	if target.Fainted() {
		c.skip(action, ReasonTargetFainted)
		return
	}

	actor.SpendResource(move.Cost)
	entry := battlelog.Entry{ActorID: actor.ID, TargetID: target.ID, ActionID: move.ID}
	payload := loggingbattle.ActionPayload{Move: move.ID}

	hit := true
	if move.Accuracy < 1 {
		hit = c.rng.NextBool(move.Accuracy)
	}
	if !hit {
		entry.Result = "miss"
		entry.Notes = fmt.Sprintf("accuracy=%.2f", move.Accuracy)
		c.log.LogAction(entry)
		payload.TargetHealth = target.CurrentHP
		loggingbattle.ActionResolved(c.ctx, c.pub, c.scope(), actor.ID, target.ID, payload)
		c.flushEffects()
		return
	}

	entry.Result = "hit"
	payload.Hit = true
	var notes []string
	if res.Damage != nil && move.DealsDamage() {
		amount, breakdown := res.Damage.CalculateDamage(c.statuses.Effective(actor), c.statuses.Effective(target), move, c.rng)
		dealt := target.ApplyDamage(amount)
		entry.Damage = battlelog.Dmg(dealt)
		if breakdown.Critical {
			entry.Result = "critical hit"
		}
		notes = append(notes, breakdown.String())
		payload.Damage = dealt
		payload.Critical = breakdown.Critical
		payload.TypeFactor = breakdown.TypeMultiplier
	}

	if move.StatusEffectID != "" {
		applied, note := c.applyMoveEffect(actor, target, move.StatusEffectID)
		if applied {
			entry.Status = move.StatusEffectID
			payload.StatusEffect = move.StatusEffectID
		}
		if note != "" {
			notes = append(notes, note)
		}
	}

	c.statuses.TriggerOnCast(actor.ID)
	if payload.Damage > 0 {
		c.statuses.TriggerOnHit(target.ID)
	}
	if target.Fainted() {
		notes = append(notes, ReasonTargetFainted)
	}
	entry.Notes = strings.Join(notes, "; ")
	c.log.LogAction(entry)

	payload.TargetHealth = target.CurrentHP
	scope := c.scope()
	loggingbattle.ActionResolved(c.ctx, c.pub, scope, actor.ID, target.ID, payload)
	if target.Fainted() {
		loggingbattle.SpiritFainted(c.ctx, c.pub, scope, actor.ID, target.ID)
	}
	c.flushEffects()
}

// applyMoveEffect applies effectID. Debuffs land on the target, every other
// effect on the actor.
func (c *Controller) applyMoveEffect(actor, target *combat.Spirit, effectID string) (bool, string) {
	if c.effects == nil {
		return false, "no effect catalog for " + effectID
	}
	def, ok := c.effects(effectID)
	if !ok {
		return false, "unknown status " + effectID
	}
	recipient := actor.ID
	if def.Debuff {
		recipient = target.ID
	}
	event, err := c.statuses.ApplyEffect(recipient, def)
	if err != nil {
		return false, err.Error()
	}
	switch event {
	case status.EventResisted:
		return false, effectID + " resisted"
	case status.EventUnchanged:
		return false, effectID + " unchanged"
	default:
		return true, ""
	}
}

// declare records action in order without resolving it.
func (c *Controller) declare(action Action) {
	c.log.LogAction(battlelog.Entry{
		ActorID:  action.ActorID,
		TargetID: action.TargetID,
		ActionID: action.MoveID,
		Result:   ResultDeclared,
		Notes:    action.Notes,
	})
	loggingbattle.ActionResolved(c.ctx, c.pub, c.scope(), action.ActorID, action.TargetID, loggingbattle.ActionPayload{Move: action.MoveID})
}

func (c *Controller) skip(action Action, reason string) {
	c.log.LogSkip(battlelog.Entry{
		ActorID:  action.ActorID,
		TargetID: action.TargetID,
		ActionID: action.MoveID,
		Result:   reason,
	})
	loggingbattle.ActionSkipped(c.ctx, c.pub, c.scope(), action.ActorID, loggingbattle.SkipPayload{Move: action.MoveID, Reason: reason})
}

// endTurn resolves turn-based effects for every affected actor in ascending
// id order, then ticks their timers.
func (c *Controller) endTurn(res Resolvers) {
	if res.Actor != nil {
		for _, id := range c.statuses.Actors() {
			spirit, ok := res.Actor(id)
			if !ok || spirit == nil || spirit.Fainted() {
				continue
			}
			for _, eff := range c.statuses.Effects(id) {
				amount := int(math.Round(eff.Value))
				switch eff.Definition.Kind {
				case status.KindDamageOverTime:
					dealt := spirit.ApplyDamage(amount)
					c.log.LogEffect(battlelog.Entry{ActorID: id, TargetID: id, ActionID: eff.ID(), Result: "damage over time", Damage: battlelog.Dmg(dealt), Status: eff.ID()})
				case status.KindHeal:
					healed := spirit.Heal(amount)
					c.log.LogEffect(battlelog.Entry{ActorID: id, TargetID: id, ActionID: eff.ID(), Result: "heal", Damage: battlelog.Dmg(-healed), Status: eff.ID()})
				}
				if spirit.Fainted() {
					break
				}
			}
		}
	}
	c.statuses.TickAllTurns()
	c.flushEffects()
}

// flushEffects records the status notifications raised since the last
// flush. Timer ticks only reach the diagnostic publisher.
func (c *Controller) flushEffects() {
	pending := c.pending
	c.pending = nil
	for _, n := range pending {
		if n.Event != status.EventTicked {
			c.log.LogEffect(battlelog.Entry{
				ActorID:  n.ActorID,
				ActionID: n.Effect.ID(),
				Result:   string(n.Event),
				Status:   n.Effect.ID(),
				Notes:    fmt.Sprintf("value=%g stacks=%d turns=%d", n.Effect.Value, n.Effect.Stacks, n.Effect.RemainingTurns),
			})
		}
		loggingbattle.EffectNotified(c.ctx, c.pub, c.scope(), n.ActorID, loggingbattle.EffectPayload{
			Effect: n.Effect.ID(),
			Change: string(n.Event),
			Value:  n.Effect.Value,
			Stacks: n.Effect.Stacks,
		})
	}
}

// Reset restarts the battle: the log, the phase machine and every status
// effect are cleared and the provider is reseeded with the last turn seed.
func (c *Controller) Reset() {
	c.log.Reset()
	c.phases.Reset()
	c.statuses.Reset()
	c.pending = nil
	c.rng.Reset(c.seed)
}

// Log returns a copy of the whole battle log.
func (c *Controller) Log() []battlelog.Entry { return c.log.Log() }

// Logger exposes the battle logger.
func (c *Controller) Logger() *battlelog.Logger { return c.log }

// Statuses exposes the status manager.
func (c *Controller) Statuses() *status.Manager { return c.statuses }

// Phase returns the current phase.
func (c *Controller) Phase() Phase { return c.phases.Current() }

// Turn returns the number of the last started turn.
func (c *Controller) Turn() int { return c.log.Turn() }
