package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sandsofduat/duat-server/internal/content"
	"github.com/sandsofduat/duat-server/internal/game"
	"github.com/sandsofduat/duat-server/internal/repository"
)

type memoryReports struct {
	reports []*repository.EncounterReport
}

func (m *memoryReports) Create(_ context.Context, report *repository.EncounterReport) error {
	m.reports = append(m.reports, report)
	return nil
}

func newTestManager(reports repository.EncounterReportRepository) (*Manager, *content.Catalog) {
	catalog := content.Starter()
	return NewManager(catalog, game.DefaultOptions(), reports, zap.NewNop()), catalog
}

func TestManagerCreateUnknownEnemy(t *testing.T) {
	mgr, catalog := newTestManager(nil)

	_, err := mgr.Create("sphinx_of_nowhere", game.StatBlock{Health: 50, MaxHealth: 50}, catalog.StarterHand())
	assert.Error(t, err)
	assert.Equal(t, 0, mgr.Count())
}

func TestManagerCreateAndLookup(t *testing.T) {
	mgr, catalog := newTestManager(nil)

	sess, err := mgr.Create("scarab", game.StatBlock{Health: 50, MaxHealth: 50}, catalog.StarterHand())
	require.NoError(t, err)
	require.Equal(t, 1, mgr.Count())

	got, err := mgr.Get(sess.ID())
	require.NoError(t, err)
	assert.Same(t, sess, got)

	snap := sess.Snapshot()
	assert.Equal(t, "PLAYER_TURN", snap.Phase)
	assert.Equal(t, "Scarab", snap.Enemy.Name)
	assert.Equal(t, 5, snap.HandSize)

	_, err = mgr.Get("no-such-session")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManagerReportsAndRemovesFinishedSessions(t *testing.T) {
	repo := &memoryReports{}
	mgr, catalog := newTestManager(repo)

	var frames int
	mgr.SetSink(func(string, game.Snapshot, []game.VisualEffect) {
		frames++
	})

	sess, err := mgr.Create("scarab", game.StatBlock{Health: 50, MaxHealth: 50}, catalog.StarterHand())
	require.NoError(t, err)

	mgr.tickAll(context.Background(), 50*time.Millisecond)
	assert.Equal(t, 1, mgr.Count())

	sess.Abort()
	mgr.tickAll(context.Background(), 50*time.Millisecond)

	assert.Equal(t, 0, mgr.Count())
	require.Len(t, repo.reports, 1)
	report := repo.reports[0]
	assert.Equal(t, sess.ID(), report.SessionID)
	assert.Equal(t, "scarab", report.EnemyID)
	assert.Equal(t, "aborted", report.Outcome)
	assert.Equal(t, 2, frames)

	_, err = mgr.Get(sess.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManagerRunStopsOnCancel(t *testing.T) {
	mgr, _ := newTestManager(nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		mgr.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("session loop did not stop after cancel")
	}
}
