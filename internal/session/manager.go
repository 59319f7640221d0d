// Package session owns live combat encounters and drives their update
// loop. The engine itself is poll-driven and single-threaded; the manager
// serializes command and tick access per session.
package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sandsofduat/duat-server/internal/content"
	"github.com/sandsofduat/duat-server/internal/game"
	"github.com/sandsofduat/duat-server/internal/repository"
)

// ErrSessionNotFound is returned for unknown or already-finished sessions.
var ErrSessionNotFound = errors.New("session not found")

// Session is one live encounter plus its bookkeeping.
type Session struct {
	mu sync.Mutex

	combat      *game.CombatManager
	enemyID     string
	createdAt   time.Time
	cardsPlayed int
}

// ID returns the combat session identifier.
func (s *Session) ID() string {
	return s.combat.ID()
}

// PlayCard forwards a play-card command to the engine.
func (s *Session) PlayCard(cardID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.combat.PlayCard(cardID)
	if err == nil {
		s.cardsPlayed++
	}
	return err
}

// EndTurn forwards an end-turn command to the engine.
func (s *Session) EndTurn() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.combat.EndPlayerTurn()
}

// Abort forces the encounter to a terminal phase.
func (s *Session) Abort() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.combat.Abort()
}

// Snapshot returns the current presentation state.
func (s *Session) Snapshot() game.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.combat.Snapshot()
}

// Subscribe registers a combat event observer.
func (s *Session) Subscribe(eventType game.EventType, handler game.Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.combat.Subscribe(eventType, handler)
}

// tick advances the engine clock and drains pending visual effects.
func (s *Session) tick(delta time.Duration) (game.Snapshot, []game.VisualEffect, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.combat.Update(delta)
	return s.combat.Snapshot(), s.combat.DrainVisualEffects(), s.combat.Phase().Terminal()
}

// Sink receives per-tick presentation frames for a session.
type Sink func(sessionID string, snap game.Snapshot, effects []game.VisualEffect)

// Manager creates and drives combat sessions.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	catalog *content.Catalog
	opts    game.Options
	reports repository.EncounterReportRepository
	logger  *zap.Logger
	sink    Sink
}

// NewManager creates a session manager. reports may be nil, in which case
// finished encounters are only logged.
func NewManager(catalog *content.Catalog, opts game.Options, reports repository.EncounterReportRepository, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		sessions: make(map[string]*Session),
		catalog:  catalog,
		opts:     opts,
		reports:  reports,
		logger:   logger,
	}
}

// SetSink installs the presentation frame receiver. Must be called before
// Run.
func (m *Manager) SetSink(sink Sink) {
	m.sink = sink
}

// Create starts a new encounter against the identified enemy archetype
// with the given player stats and opening hand.
func (m *Manager) Create(enemyID string, playerStats game.StatBlock, hand []game.Card) (*Session, error) {
	enemy, ok := m.catalog.Enemies[enemyID]
	if !ok {
		return nil, fmt.Errorf("unknown enemy archetype %q", enemyID)
	}

	cm := game.NewCombatManager(
		m.logger.Named("combat"),
		rand.New(rand.NewSource(time.Now().UnixNano())),
		m.opts,
	)
	err := cm.Setup(
		playerStats,
		game.StatBlock{Health: enemy.Health, MaxHealth: enemy.MaxHealth},
		enemy.Name,
		enemy.Actions,
		hand,
		time.Now(),
	)
	if err != nil {
		return nil, err
	}

	sess := &Session{
		combat:    cm,
		enemyID:   enemyID,
		createdAt: time.Now(),
	}

	m.mu.Lock()
	m.sessions[sess.ID()] = sess
	m.mu.Unlock()

	m.logger.Info("session created",
		zap.String("session_id", sess.ID()),
		zap.String("enemy", enemy.Name),
	)
	return sess, nil
}

// OpeningHand returns the catalog's starter hand for new encounters.
func (m *Manager) OpeningHand() []game.Card {
	return m.catalog.StarterHand()
}

// Get returns a live session by id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Run drives every live session at the configured tick rate until the
// context is cancelled. Terminal sessions are reported and removed.
func (m *Manager) Run(ctx context.Context, tickRate time.Duration) {
	m.logger.Info("session loop started", zap.Duration("tick_rate", tickRate))

	ticker := time.NewTicker(tickRate)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			m.logger.Info("session loop stopped")
			return
		case now := <-ticker.C:
			delta := now.Sub(last)
			last = now
			m.tickAll(ctx, delta)
		}
	}
}

func (m *Manager) tickAll(ctx context.Context, delta time.Duration) {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		sessions = append(sessions, sess)
	}
	m.mu.RUnlock()

	for _, sess := range sessions {
		snap, effects, terminal := sess.tick(delta)
		if m.sink != nil {
			m.sink(sess.ID(), snap, effects)
		}
		if terminal {
			m.finish(ctx, sess, snap)
		}
	}
}

// finish reports a terminal session and removes it from the registry.
func (m *Manager) finish(ctx context.Context, sess *Session, snap game.Snapshot) {
	m.mu.Lock()
	if _, ok := m.sessions[sess.ID()]; !ok {
		m.mu.Unlock()
		return
	}
	delete(m.sessions, sess.ID())
	m.mu.Unlock()

	report := &repository.EncounterReport{
		SessionID:    sess.ID(),
		EnemyID:      sess.enemyID,
		EnemyName:    snap.Enemy.Name,
		Outcome:      string(snap.Outcome),
		Turns:        snap.Turn,
		Duration:     time.Since(sess.createdAt),
		PlayerHealth: snap.Player.Health,
		EnemyHealth:  snap.Enemy.Health,
		CardsPlayed:  sess.cardsPlayed,
	}

	m.logger.Info("encounter finished",
		zap.String("session_id", report.SessionID),
		zap.String("outcome", report.Outcome),
		zap.Int("turns", report.Turns),
		zap.Duration("duration", report.Duration),
	)

	if m.reports == nil {
		return
	}
	if err := m.reports.Create(ctx, report); err != nil {
		m.logger.Error("failed to persist encounter report",
			zap.String("session_id", report.SessionID),
			zap.Error(err),
		)
	}
}
