package game

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sandsofduat/duat-server/internal/game/hourglass"
)

// Phase represents the top-level combat state.
type Phase int

const (
	PhaseSetup Phase = iota
	PhasePlayerTurn
	PhaseEnemyTurn
	PhaseVictory
	PhaseDefeat
)

var phaseNames = map[Phase]string{
	PhaseSetup:      "SETUP",
	PhasePlayerTurn: "PLAYER_TURN",
	PhaseEnemyTurn:  "ENEMY_TURN",
	PhaseVictory:    "VICTORY",
	PhaseDefeat:     "DEFEAT",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PHASE_%d", int(p))
}

// Terminal reports whether the phase ends the session.
func (p Phase) Terminal() bool {
	return p == PhaseVictory || p == PhaseDefeat
}

// SubPhase is the internal sub-phase carried by both turn phases.
type SubPhase int

const (
	SubPhaseStart SubPhase = iota
	SubPhaseMain
	SubPhaseEnd
)

var subPhaseNames = map[SubPhase]string{
	SubPhaseStart: "START",
	SubPhaseMain:  "MAIN",
	SubPhaseEnd:   "END",
}

func (sp SubPhase) String() string {
	if name, ok := subPhaseNames[sp]; ok {
		return name
	}
	return fmt.Sprintf("SUB_PHASE_%d", int(sp))
}

// Outcome is the terminal result of an encounter.
type Outcome string

const (
	OutcomeVictory Outcome = "victory"
	OutcomeDefeat  Outcome = "defeat"
	OutcomeAborted Outcome = "aborted"
)

// Rejected-action errors. These indicate a recoverable caller mistake
// (wrong phase, unaffordable cost); state is untouched and no event fires.
var (
	ErrCombatOver   = errors.New("combat already ended")
	ErrWrongPhase   = errors.New("operation not valid in current phase")
	ErrCannotAfford = errors.New("not enough sand")
	ErrUnknownCard  = errors.New("card not in hand")
)

// StatBlock is an externally supplied starting stat line.
type StatBlock struct {
	Health    int
	MaxHealth int
}

// Options carries the combat tuning knobs with their design defaults.
type Options struct {
	SandCapacity       int
	SandInterval       time.Duration
	PlayerStartingSand int
	EnemyStartingSand  int
	LowHealthThreshold float64
	DefensiveBonus     float64
	AggressiveBonus    float64
}

// DefaultOptions returns the stock tuning: 6-grain hourglasses regenerating
// every second, player starting at 3 sand and the enemy at 2 to bias the
// opening turns toward the player.
func DefaultOptions() Options {
	return Options{
		SandCapacity:       hourglass.DefaultCapacity,
		SandInterval:       hourglass.DefaultInterval,
		PlayerStartingSand: 3,
		EnemyStartingSand:  2,
		LowHealthThreshold: DefaultLowHealthThreshold,
		DefensiveBonus:     DefaultDefensiveBonus,
		AggressiveBonus:    DefaultAggressiveBonus,
	}
}

// CombatManager drives a single encounter: it owns both combatants, the
// player's hand and discard, the enemy action table, and all phase/turn
// transitions. All operations are synchronous; the caller's game loop
// invokes Update once per frame and the command methods on input.
type CombatManager struct {
	id     string
	logger *zap.Logger
	opts   Options

	phase    Phase
	subPhase SubPhase
	turn     int
	outcome  Outcome

	player *Combatant
	enemy  *Combatant

	hand    []Card
	discard []Card
	actions []EnemyAction
	intent  *EnemyAction

	selector *IntentSelector
	bus      *EventBus
	visuals  visualQueue

	// now is the session's logical clock, seeded at setup and advanced by
	// Update deltas. Keeping it internal makes simulated polling exact.
	now time.Time

	onDraw func(count int)
}

// NewCombatManager creates a manager in the SETUP phase. The rng drives
// enemy intent selection and must not be shared across sessions.
func NewCombatManager(logger *zap.Logger, rng *rand.Rand, opts Options) *CombatManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	selector := NewIntentSelector(rng)
	if opts.LowHealthThreshold > 0 {
		selector.LowHealthThreshold = opts.LowHealthThreshold
	}
	if opts.DefensiveBonus > 0 {
		selector.DefensiveBonus = opts.DefensiveBonus
	}
	if opts.AggressiveBonus > 0 {
		selector.AggressiveBonus = opts.AggressiveBonus
	}
	return &CombatManager{
		id:       uuid.New().String(),
		logger:   logger,
		opts:     opts,
		phase:    PhaseSetup,
		subPhase: SubPhaseStart,
		selector: selector,
		bus:      NewEventBus(logger),
	}
}

// ID returns the stable session identifier.
func (cm *CombatManager) ID() string { return cm.id }

// Phase returns the current top-level phase.
func (cm *CombatManager) Phase() Phase { return cm.phase }

// SubPhase returns the current turn sub-phase.
func (cm *CombatManager) SubPhase() SubPhase { return cm.subPhase }

// Turn returns the 1-based turn counter.
func (cm *CombatManager) Turn() int { return cm.turn }

// Outcome returns the terminal outcome, empty while combat is live.
func (cm *CombatManager) Outcome() Outcome { return cm.outcome }

// Player returns the player combatant. Read access only; the manager
// retains exclusive ownership.
func (cm *CombatManager) Player() *Combatant { return cm.player }

// Enemy returns the enemy combatant. Read access only.
func (cm *CombatManager) Enemy() *Combatant { return cm.enemy }

// Intent returns the currently telegraphed enemy action, nil when none.
func (cm *CombatManager) Intent() *EnemyAction { return cm.intent }

// Subscribe registers an observer for one combat event type.
func (cm *CombatManager) Subscribe(eventType EventType, handler Handler) {
	cm.bus.Subscribe(eventType, handler)
}

// SetDrawSignal installs the callback invoked when a DRAW effect resolves.
// Deck management is external to the engine.
func (cm *CombatManager) SetDrawSignal(fn func(count int)) {
	cm.onDraw = fn
}

// DrainVisualEffects consumes and clears the visual effect queue. The
// renderer calls this once per presentation frame and must not mutate
// combat state.
func (cm *CombatManager) DrainVisualEffects() []VisualEffect {
	return cm.visuals.drain()
}

// Setup constructs both combatants from externally supplied stats and
// catalogs and starts the first player turn.
func (cm *CombatManager) Setup(playerStats, enemyStats StatBlock, enemyName string, actions []EnemyAction, cards []Card, startAt time.Time) error {
	if cm.phase != PhaseSetup {
		return ErrWrongPhase
	}
	if playerStats.MaxHealth <= 0 || enemyStats.MaxHealth <= 0 {
		return fmt.Errorf("setup: non-positive max health (player %d, enemy %d)", playerStats.MaxHealth, enemyStats.MaxHealth)
	}

	cm.now = startAt

	playerGlass := hourglass.New(cm.opts.SandCapacity, cm.opts.SandInterval, startAt)
	playerGlass.Set(cm.opts.PlayerStartingSand)
	cm.player = NewCombatant("player", "Player", playerStats.Health, playerStats.MaxHealth, playerGlass, true)

	enemyGlass := hourglass.New(cm.opts.SandCapacity, cm.opts.SandInterval, startAt)
	enemyGlass.Set(cm.opts.EnemyStartingSand)
	cm.enemy = NewCombatant("enemy", enemyName, enemyStats.Health, enemyStats.MaxHealth, enemyGlass, false)

	cm.hand = append([]Card(nil), cards...)
	cm.discard = nil
	cm.actions = append([]EnemyAction(nil), actions...)
	cm.turn = 1

	cm.phase = PhasePlayerTurn
	cm.subPhase = SubPhaseMain

	cm.logger.Info("combat started",
		zap.String("session_id", cm.id),
		zap.String("enemy", enemyName),
		zap.Int("hand_size", len(cm.hand)),
		zap.Int("actions", len(cm.actions)),
	)
	cm.publish(EventCombatStarted)
	return nil
}

// PlayCard plays the identified card from the player's hand. Valid only in
// PLAYER_TURN/MAIN with enough sand; a rejected play leaves all state
// unchanged and raises no event so the caller can give immediate feedback.
func (cm *CombatManager) PlayCard(cardID string) error {
	if cm.phase.Terminal() {
		return ErrCombatOver
	}
	if cm.phase != PhasePlayerTurn || cm.subPhase != SubPhaseMain {
		return ErrWrongPhase
	}

	idx := -1
	for i, card := range cm.hand {
		if card.ID == cardID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrUnknownCard
	}
	card := cm.hand[idx]

	if !cm.player.HourGlass.CanAfford(card.Cost) {
		return ErrCannotAfford
	}
	if !cm.player.HourGlass.Spend(card.Cost) {
		return ErrCannotAfford
	}

	cm.hand = append(cm.hand[:idx], cm.hand[idx+1:]...)
	cm.discard = append(cm.discard, card)

	if err := cm.resolveAll(card.Effects, cm.player, cm.enemy); err != nil {
		// Contract violation: the catalog entry is malformed. Fatal for
		// this operation, surfaced loudly.
		cm.logger.Error("card effect resolution failed",
			zap.String("session_id", cm.id),
			zap.String("card_id", card.ID),
			zap.Error(err),
		)
		return err
	}

	cm.logger.Info("card played",
		zap.String("session_id", cm.id),
		zap.String("card_id", card.ID),
		zap.String("card", card.Name),
		zap.Int("cost", card.Cost),
		zap.Int("sand_remaining", cm.player.HourGlass.Current()),
	)
	cm.publishCard(EventCardPlayed, card.ID)
	cm.checkCombatEnd()
	return nil
}

// EndPlayerTurn ends the player's turn and runs the enemy turn to
// completion, returning control at the start of the next player turn (or
// at a terminal phase).
func (cm *CombatManager) EndPlayerTurn() error {
	if cm.phase.Terminal() {
		return ErrCombatOver
	}
	if cm.phase != PhasePlayerTurn {
		return ErrWrongPhase
	}

	cm.subPhase = SubPhaseEnd
	cm.publish(EventPlayerTurnEnded)

	cm.phase = PhaseEnemyTurn
	cm.runEnemyTurn()
	return nil
}

// runEnemyTurn executes the enemy turn: status upkeep, intent selection,
// resolution, and the hand-off back to the player.
func (cm *CombatManager) runEnemyTurn() {
	cm.subPhase = SubPhaseStart
	cm.enemy.StartTurn()

	cm.intent = cm.selector.Select(cm.enemy, cm.actions)
	cm.publish(EventEnemyTurnStarted)

	cm.subPhase = SubPhaseMain
	if cm.intent != nil {
		cm.executeIntent(*cm.intent)
	} else {
		cm.logger.Debug("enemy passes, no affordable action",
			zap.String("session_id", cm.id),
			zap.Int("enemy_sand", cm.enemy.HourGlass.Current()),
		)
	}

	cm.checkCombatEnd()
	if cm.phase.Terminal() {
		return
	}

	cm.subPhase = SubPhaseEnd
	cm.publish(EventEnemyTurnEnded)

	cm.turn++
	cm.phase = PhasePlayerTurn
	cm.subPhase = SubPhaseStart
	cm.player.StartTurn()
	cm.subPhase = SubPhaseMain
	cm.publish(EventPlayerTurnStarted)
}

// executeIntent spends the intent's cost and resolves its effects. The
// intent was selected before any cost was spent, so affordability is
// re-checked here; a no-longer-affordable intent fizzles harmlessly.
func (cm *CombatManager) executeIntent(action EnemyAction) {
	if !cm.enemy.HourGlass.Spend(action.Cost) {
		cm.logger.Warn("enemy intent no longer affordable",
			zap.String("session_id", cm.id),
			zap.String("action", action.Name),
			zap.Int("cost", action.Cost),
			zap.Int("enemy_sand", cm.enemy.HourGlass.Current()),
		)
		return
	}

	if err := cm.resolveAll(action.Effects, cm.enemy, cm.player); err != nil {
		cm.logger.Error("enemy action resolution failed",
			zap.String("session_id", cm.id),
			zap.String("action", action.Name),
			zap.Error(err),
		)
		return
	}

	cm.logger.Info("enemy action executed",
		zap.String("session_id", cm.id),
		zap.String("action", action.Name),
		zap.Int("cost", action.Cost),
	)
	cm.publishAction(EventEnemyActionExecuted, action.Name)
}

// Update advances the session's clock by delta, accrues sand on both
// hourglasses, and re-runs the end-of-combat check. This is the only
// operation expected every frame regardless of input.
func (cm *CombatManager) Update(delta time.Duration) {
	if cm.phase == PhaseSetup || cm.phase.Terminal() {
		return
	}
	if delta < 0 {
		delta = 0
	}
	cm.now = cm.now.Add(delta)

	cm.player.HourGlass.Accrue(cm.now)
	cm.enemy.HourGlass.Accrue(cm.now)

	cm.checkCombatEnd()
}

// Abort forces the session to a terminal phase, e.g. when the player
// flees. No operation is ever in flight across frames, so this is a plain
// transition, not an interrupt.
func (cm *CombatManager) Abort() {
	if cm.phase == PhaseSetup || cm.phase.Terminal() {
		return
	}
	cm.endCombat(PhaseDefeat, OutcomeAborted)
}

// checkCombatEnd transitions to a terminal phase when either combatant is
// dead. Player defeat is evaluated first: when both reach 0 health in the
// same tick the result is DEFEAT. This tie-break mirrors the original
// design and is intentional.
func (cm *CombatManager) checkCombatEnd() {
	if cm.phase.Terminal() || cm.player == nil || cm.enemy == nil {
		return
	}
	if !cm.player.IsAlive() {
		cm.endCombat(PhaseDefeat, OutcomeDefeat)
	} else if !cm.enemy.IsAlive() {
		cm.endCombat(PhaseVictory, OutcomeVictory)
	}
}

// endCombat performs the one-shot transition to a terminal phase. The
// terminal event fires exactly once; afterwards every mutating operation
// is rejected.
func (cm *CombatManager) endCombat(phase Phase, outcome Outcome) {
	cm.phase = phase
	cm.subPhase = SubPhaseEnd
	cm.outcome = outcome
	cm.intent = nil

	cm.logger.Info("combat ended",
		zap.String("session_id", cm.id),
		zap.String("outcome", string(outcome)),
		zap.Int("turns", cm.turn),
	)
	cm.publish(EventCombatEnded)
}

func (cm *CombatManager) publish(eventType EventType) {
	cm.bus.Publish(cm.newEvent(eventType))
}

func (cm *CombatManager) publishCard(eventType EventType, cardID string) {
	event := cm.newEvent(eventType)
	event.CardID = cardID
	cm.bus.Publish(event)
}

func (cm *CombatManager) publishAction(eventType EventType, actionName string) {
	event := cm.newEvent(eventType)
	event.ActionName = actionName
	cm.bus.Publish(event)
}

func (cm *CombatManager) newEvent(eventType EventType) Event {
	event := Event{
		Type:      eventType,
		SessionID: cm.id,
		Turn:      cm.turn,
		Timestamp: cm.now,
		Outcome:   cm.outcome,
	}
	if cm.player != nil {
		event.Player = viewOf(cm.player)
	}
	if cm.enemy != nil {
		event.Enemy = viewOf(cm.enemy)
	}
	return event
}
