package game

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testStart = time.Unix(1000, 0)

func strikeCard() Card {
	return Card{
		ID:   "khopesh_slash",
		Name: "Khopesh Slash",
		Cost: 3,
		Effects: []Effect{
			{Kind: EffectDamage, Value: 8, Target: TargetOpponent},
		},
	}
}

func guardCard() Card {
	return Card{
		ID:   "sandstone_ward",
		Name: "Sandstone Ward",
		Cost: 1,
		Effects: []Effect{
			{Kind: EffectBlock, Value: 5, Target: TargetSelf},
		},
	}
}

func setupScarabFight(t *testing.T, seed int64, cards ...Card) *CombatManager {
	t.Helper()
	cm := NewCombatManager(zap.NewNop(), rand.New(rand.NewSource(seed)), DefaultOptions())
	err := cm.Setup(
		StatBlock{Health: 50, MaxHealth: 50},
		StatBlock{Health: 20, MaxHealth: 20},
		"Scarab",
		testActions(),
		cards,
		testStart,
	)
	require.NoError(t, err)
	return cm
}

func TestCombat_SetupEntersPlayerMain(t *testing.T) {
	var started int
	cm := NewCombatManager(zap.NewNop(), rand.New(rand.NewSource(1)), DefaultOptions())
	cm.Subscribe(EventCombatStarted, func(Event) { started++ })

	err := cm.Setup(StatBlock{Health: 50, MaxHealth: 50}, StatBlock{Health: 20, MaxHealth: 20}, "Scarab", testActions(), []Card{strikeCard()}, testStart)
	require.NoError(t, err)

	assert.Equal(t, PhasePlayerTurn, cm.Phase())
	assert.Equal(t, SubPhaseMain, cm.SubPhase())
	assert.Equal(t, 1, cm.Turn())
	assert.Equal(t, 3, cm.Player().HourGlass.Current())
	assert.Equal(t, 2, cm.Enemy().HourGlass.Current())
	assert.Equal(t, 1, started)

	// Setup is one-shot.
	err = cm.Setup(StatBlock{Health: 50, MaxHealth: 50}, StatBlock{Health: 20, MaxHealth: 20}, "Scarab", testActions(), nil, testStart)
	assert.ErrorIs(t, err, ErrWrongPhase)
}

func TestCombat_ScarabScenario(t *testing.T) {
	// Player 50/50 vs Scarab 20/20, sand 3/6; a 3-cost card dealing 8
	// damage leaves the enemy at 12/20, the player at 0/6 sand, and fires
	// card_played exactly once.
	var played int
	cm := setupScarabFight(t, 1, strikeCard())
	cm.Subscribe(EventCardPlayed, func(e Event) {
		played++
		assert.Equal(t, "khopesh_slash", e.CardID)
	})

	require.NoError(t, cm.PlayCard("khopesh_slash"))

	assert.Equal(t, 12, cm.Enemy().Health)
	assert.Equal(t, 0, cm.Player().HourGlass.Current())
	assert.Equal(t, 1, played)

	effects := cm.DrainVisualEffects()
	require.Len(t, effects, 1)
	assert.Equal(t, EffectDamage, effects[0].Kind)
	assert.Equal(t, "enemy", effects[0].TargetID)
	assert.Equal(t, 8, effects[0].Amount)

	// Hand -> discard.
	assert.Equal(t, 0, cm.Snapshot().HandSize)
}

func TestCombat_PlayCardRejections(t *testing.T) {
	cm := setupScarabFight(t, 1, strikeCard(), strikeCard())

	// Unknown card.
	assert.ErrorIs(t, cm.PlayCard("missing"), ErrUnknownCard)

	// Affordability guard: second 3-cost play with 0 sand left.
	require.NoError(t, cm.PlayCard("khopesh_slash"))
	healthBefore := cm.Enemy().Health
	err := cm.PlayCard("khopesh_slash")
	assert.ErrorIs(t, err, ErrCannotAfford)
	assert.Equal(t, healthBefore, cm.Enemy().Health, "rejected play must not mutate state")
	assert.Equal(t, 0, cm.Player().HourGlass.Current())
	assert.Equal(t, 1, cm.Snapshot().HandSize, "card must stay in hand")

	// Wrong phase: reject during enemy-turn processing is unreachable from
	// outside (the enemy turn runs synchronously), so force a terminal
	// phase instead.
	cm.Abort()
	assert.ErrorIs(t, cm.PlayCard("khopesh_slash"), ErrCombatOver)
}

func TestCombat_EndPlayerTurnRunsEnemyTurn(t *testing.T) {
	var sequence []EventType
	cm := setupScarabFight(t, 3)
	for _, et := range []EventType{EventPlayerTurnEnded, EventEnemyTurnStarted, EventEnemyActionExecuted, EventEnemyTurnEnded, EventPlayerTurnStarted} {
		eventType := et
		cm.Subscribe(eventType, func(Event) { sequence = append(sequence, eventType) })
	}

	require.NoError(t, cm.EndPlayerTurn())

	// Back at the player's main sub-phase, turn counter advanced.
	assert.Equal(t, PhasePlayerTurn, cm.Phase())
	assert.Equal(t, SubPhaseMain, cm.SubPhase())
	assert.Equal(t, 2, cm.Turn())

	require.NotEmpty(t, sequence)
	assert.Equal(t, EventPlayerTurnEnded, sequence[0])
	assert.Equal(t, EventPlayerTurnStarted, sequence[len(sequence)-1])

	// With 2 starting sand the Scarab can afford Claw Strike or Guard
	// Stance; either way the affordability invariant held at spend time.
	assert.GreaterOrEqual(t, cm.Enemy().HourGlass.Current(), 0)
}

func TestCombat_EnemyPassesWithNoAffordableAction(t *testing.T) {
	var executed int
	cm := NewCombatManager(zap.NewNop(), rand.New(rand.NewSource(1)), Options{
		SandCapacity:       6,
		SandInterval:       time.Second,
		PlayerStartingSand: 3,
		EnemyStartingSand:  0, // cheapest action costs 1
	})
	require.NoError(t, cm.Setup(StatBlock{Health: 50, MaxHealth: 50}, StatBlock{Health: 20, MaxHealth: 20}, "Scarab", testActions(), nil, testStart))
	cm.Subscribe(EventEnemyActionExecuted, func(Event) { executed++ })

	playerHealth := cm.Player().Health
	require.NoError(t, cm.EndPlayerTurn())

	assert.Equal(t, 0, executed, "enemy turn should pass with no effect")
	assert.Equal(t, playerHealth, cm.Player().Health)
	assert.Equal(t, PhasePlayerTurn, cm.Phase())
	assert.Nil(t, cm.Intent())
}

func TestCombat_UpdateAccruesSand(t *testing.T) {
	cm := setupScarabFight(t, 1)
	cm.Player().HourGlass.Set(5)

	cm.Update(time.Second)

	assert.Equal(t, 6, cm.Player().HourGlass.Current(), "5/6 plus one second is capped 6/6")
	_, pending := cm.Player().HourGlass.TimeUntilNext(testStart.Add(time.Second))
	assert.False(t, pending, "full hourglass reports no further regeneration")
}

func TestCombat_UpdateRemainderPreserved(t *testing.T) {
	cm := setupScarabFight(t, 1)
	cm.Player().HourGlass.Set(0)

	for i := 0; i < 10; i++ {
		cm.Update(100 * time.Millisecond)
	}

	assert.Equal(t, 1, cm.Player().HourGlass.Current(), "ten 0.1s ticks equal one 1s tick")
}

func TestCombat_TerminationUniqueness(t *testing.T) {
	var ended int
	var outcome Outcome
	lethal := Card{ID: "wrath", Name: "Wrath of Ra", Cost: 0, Effects: []Effect{
		{Kind: EffectDamage, Value: 99, Target: TargetOpponent},
	}}
	cm := setupScarabFight(t, 1, lethal)
	cm.Subscribe(EventCombatEnded, func(e Event) {
		ended++
		outcome = e.Outcome
	})

	require.NoError(t, cm.PlayCard("wrath"))

	assert.Equal(t, PhaseVictory, cm.Phase())
	assert.Equal(t, 1, ended)
	assert.Equal(t, OutcomeVictory, outcome)

	// Terminal phase rejects every mutation and never re-fires the event.
	assert.ErrorIs(t, cm.EndPlayerTurn(), ErrCombatOver)
	assert.ErrorIs(t, cm.PlayCard("wrath"), ErrCombatOver)
	cm.Update(5 * time.Second)
	cm.Abort()
	assert.Equal(t, PhaseVictory, cm.Phase())
	assert.Equal(t, 1, ended)
}

func TestCombat_DefeatWinsSimultaneousDeath(t *testing.T) {
	// Both sides at 0 in the same check resolves to DEFEAT: the player
	// death test runs first. Documented tie-break, not a bug.
	cm := setupScarabFight(t, 1)
	cm.Player().Health = 0
	cm.Enemy().Health = 0

	cm.Update(0)

	assert.Equal(t, PhaseDefeat, cm.Phase())
	assert.Equal(t, OutcomeDefeat, cm.Outcome())
}

func TestCombat_AbortForcesTerminalPhase(t *testing.T) {
	var ended int
	cm := setupScarabFight(t, 1)
	cm.Subscribe(EventCombatEnded, func(Event) { ended++ })

	cm.Abort()

	assert.Equal(t, PhaseDefeat, cm.Phase())
	assert.Equal(t, OutcomeAborted, cm.Outcome())
	assert.Equal(t, 1, ended)
}

func TestCombat_GainSandCardCappedAtCapacity(t *testing.T) {
	surge := Card{ID: "surge", Name: "Temporal Surge", Cost: 0, Effects: []Effect{
		{Kind: EffectGainSand, Value: 10, Target: TargetSelf},
	}}
	cm := setupScarabFight(t, 1, surge)

	require.NoError(t, cm.PlayCard("surge"))

	assert.Equal(t, 6, cm.Player().HourGlass.Current())

	// The visual effect reports the sand actually gained (3/6 -> 6/6),
	// not the card's nominal value.
	effects := cm.DrainVisualEffects()
	require.Len(t, effects, 1)
	assert.Equal(t, EffectGainSand, effects[0].Kind)
	assert.Equal(t, 3, effects[0].Amount)
}

func TestCombat_DrawEffectSignalsOnly(t *testing.T) {
	var drawRequested int
	draw := Card{ID: "scry", Name: "Eye of Horus", Cost: 1, Effects: []Effect{
		{Kind: EffectDraw, Value: 2, Target: TargetSelf},
	}}
	cm := setupScarabFight(t, 1, draw)
	cm.SetDrawSignal(func(n int) { drawRequested += n })

	require.NoError(t, cm.PlayCard("scry"))

	assert.Equal(t, 2, drawRequested)
	effects := cm.DrainVisualEffects()
	require.Len(t, effects, 1)
	assert.Equal(t, EffectDraw, effects[0].Kind)
}

func TestCombat_MalformedEffectFailsLoudly(t *testing.T) {
	corrupt := Card{ID: "corrupt", Name: "Corrupt", Cost: 0, Effects: []Effect{
		{Kind: EffectKind(99), Value: 1, Target: TargetOpponent},
	}}
	cm := setupScarabFight(t, 1, corrupt)

	err := cm.PlayCard("corrupt")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCannotAfford)
	assert.NotErrorIs(t, err, ErrWrongPhase)
}

func TestCombat_EffectOrderPreservedInVisualQueue(t *testing.T) {
	combo := Card{ID: "combo", Name: "Ritual of Thoth", Cost: 2, Effects: []Effect{
		{Kind: EffectDamage, Value: 3, Target: TargetOpponent},
		{Kind: EffectBlock, Value: 4, Target: TargetSelf},
		{Kind: EffectHeal, Value: 2, Target: TargetSelf},
	}}
	cm := setupScarabFight(t, 1, combo)
	cm.Player().Health = 40

	require.NoError(t, cm.PlayCard("combo"))

	effects := cm.DrainVisualEffects()
	require.Len(t, effects, 3)
	assert.Equal(t, EffectDamage, effects[0].Kind)
	assert.Equal(t, EffectBlock, effects[1].Kind)
	assert.Equal(t, EffectHeal, effects[2].Kind)

	// Drained exactly once: queue is now empty.
	assert.Empty(t, cm.DrainVisualEffects())
}

func TestCombat_ObserverPanicIsolated(t *testing.T) {
	cm := setupScarabFight(t, 1, strikeCard())
	cm.Subscribe(EventCardPlayed, func(Event) { panic("faulty observer") })
	var after int
	cm.Subscribe(EventCardPlayed, func(Event) { after++ })

	require.NoError(t, cm.PlayCard("khopesh_slash"))

	assert.Equal(t, 1, after, "handlers after the panicking one still run")
	assert.Equal(t, 12, cm.Enemy().Health, "combat state unaffected by observer failure")
}
