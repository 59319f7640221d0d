package server

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sandsofduat/duat-server/internal/game"
)

func TestRejectionReason(t *testing.T) {
	cases := []struct {
		err    error
		reason string
	}{
		{game.ErrCannotAfford, "not enough sand"},
		{game.ErrUnknownCard, "card not in hand"},
		{game.ErrWrongPhase, "not your turn"},
		{game.ErrCombatOver, "combat is over"},
		{errors.New("boom"), "boom"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.reason, rejectionReason(tc.err))
	}
}

func TestHubFrameReachesOnlySessionWatchers(t *testing.T) {
	hub := NewHub(zap.NewNop())

	watcher := &Client{send: make(chan []byte, 1), sessionID: "s1"}
	other := &Client{send: make(chan []byte, 1), sessionID: "s2"}
	hub.add(watcher)
	hub.add(other)

	snap := game.Snapshot{SessionID: "s1", Phase: "PLAYER_TURN", Turn: 3}
	hub.Frame("s1", snap, []game.VisualEffect{
		{Kind: game.EffectDamage, TargetID: "enemy", Amount: 8, Timestamp: time.Unix(1000, 0)},
	})

	select {
	case payload := <-watcher.send:
		var f frame
		require.NoError(t, json.Unmarshal(payload, &f))
		assert.Equal(t, "state", f.Type)
		require.NotNil(t, f.State)
		assert.Equal(t, "s1", f.State.SessionID)
		assert.Equal(t, 3, f.State.Turn)
	default:
		t.Fatal("watcher did not receive the state frame")
	}

	select {
	case <-other.send:
		t.Fatal("client on another session received the frame")
	default:
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := NewHub(zap.NewNop())

	// Unbuffered send channel with no reader simulates a stalled peer.
	slow := &Client{send: make(chan []byte), sessionID: "s1", logger: zap.NewNop()}
	hub.add(slow)

	hub.Frame("s1", game.Snapshot{SessionID: "s1"}, nil)

	hub.mu.Lock()
	assert.Empty(t, hub.sessions["s1"])
	assert.NotContains(t, hub.clients, slow)
	hub.mu.Unlock()

	// The dropped client's read side may still produce frames; they must
	// be discarded, not panic on the closed channel.
	assert.NotPanics(t, func() {
		slow.enqueue(frame{Type: "error", Reason: "not enough sand"})
	})
	assert.False(t, slow.trySend([]byte("{}")))
}

func TestHubCloseIsIdempotent(t *testing.T) {
	hub := NewHub(zap.NewNop())
	client := &Client{send: make(chan []byte, 1), sessionID: "s1", logger: zap.NewNop()}
	hub.add(client)

	hub.remove(client)
	assert.NotPanics(t, func() { hub.remove(client) })
	assert.NotPanics(t, client.close)
}

func TestHubUnregisterAfterStop(t *testing.T) {
	hub := NewHub(zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	ran := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(ran)
	}()

	client := &Client{send: make(chan []byte, 1), sessionID: "s1", logger: zap.NewNop()}
	hub.Register(client)

	cancel()
	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop after cancel")
	}

	// A connection tearing down after shutdown must not block forever.
	returned := make(chan struct{})
	go func() {
		hub.Unregister(client)
		close(returned)
	}()
	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("unregister blocked against a stopped hub")
	}
}
