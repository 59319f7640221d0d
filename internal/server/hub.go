// Package server is the WebSocket transport: it upgrades connections,
// routes player commands to combat sessions, and streams state frames
// and visual effects back to watchers.
package server

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/sandsofduat/duat-server/internal/game"
)

// frame is the envelope for every outgoing message.
type frame struct {
	Type    string              `json:"type"`
	State   *game.Snapshot      `json:"state,omitempty"`
	Effects []game.VisualEffect `json:"effects,omitempty"`
	Command string              `json:"command,omitempty"`
	Reason  string              `json:"reason,omitempty"`
}

// Hub maintains the set of active clients, grouped by combat session,
// and fans out per-session frames to them.
type Hub struct {
	mu       sync.Mutex
	clients  map[*Client]bool
	sessions map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	// done is closed when Run exits so Register/Unregister never block
	// against a stopped hub.
	done   chan struct{}
	logger *zap.Logger
}

// NewHub initializes an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		sessions:   make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run handles client registration until the context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case client := <-h.register:
			h.add(client)
		case client := <-h.unregister:
			h.remove(client)
		}
	}
}

// Register hands a client to the hub loop. A stopped hub closes the
// client instead of accepting it.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.close()
	}
}

// Unregister removes a client. Safe to call after the hub has stopped.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) add(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client] = true
	watchers, ok := h.sessions[client.sessionID]
	if !ok {
		watchers = make(map[*Client]bool)
		h.sessions[client.sessionID] = watchers
	}
	watchers[client] = true
	h.logger.Info("client connected", zap.String("session_id", client.sessionID))
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	if watchers, ok := h.sessions[client.sessionID]; ok {
		delete(watchers, client)
		if len(watchers) == 0 {
			delete(h.sessions, client.sessionID)
		}
	}
	client.close()
	h.logger.Info("client disconnected", zap.String("session_id", client.sessionID))
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		client.close()
	}
	h.clients = make(map[*Client]bool)
	h.sessions = make(map[string]map[*Client]bool)
}

// Frame pushes one state frame to every client watching the session. It
// satisfies the session manager's sink signature. Slow clients are
// dropped rather than allowed to stall the tick loop.
func (h *Hub) Frame(sessionID string, snap game.Snapshot, effects []game.VisualEffect) {
	payload, err := json.Marshal(frame{Type: "state", State: &snap, Effects: effects})
	if err != nil {
		h.logger.Error("failed to serialize state frame", zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.sessions[sessionID] {
		if !client.trySend(payload) {
			delete(h.clients, client)
			delete(h.sessions[sessionID], client)
			client.close()
		}
	}
}
