package server

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/sandsofduat/duat-server/internal/game"
	"github.com/sandsofduat/duat-server/internal/session"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum message size allowed from peer.
	maxMessageSize = 1024
)

// command is an incoming player action.
type command struct {
	Type   string `json:"type"`
	CardID string `json:"card_id,omitempty"`
}

// Client is one active WebSocket connection bound to a combat session.
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	sessionID string
	sess      *session.Session
	logger    *zap.Logger

	// mu guards send against the hub closing it while the read side is
	// still producing frames.
	mu     sync.Mutex
	send   chan []byte
	closed bool
}

func newClient(hub *Hub, conn *websocket.Conn, sess *session.Session, logger *zap.Logger) *Client {
	return &Client{
		hub:       hub,
		conn:      conn,
		send:      make(chan []byte, 256),
		sessionID: sess.ID(),
		sess:      sess,
		logger:    logger,
	}
}

// readPump pumps commands from the connection into the combat session.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("websocket read failed", zap.Error(err))
			}
			return
		}

		var cmd command
		if err := json.Unmarshal(message, &cmd); err != nil {
			c.reject("", "malformed command")
			continue
		}
		c.handle(cmd)
	}
}

func (c *Client) handle(cmd command) {
	var err error
	switch cmd.Type {
	case "play_card":
		err = c.sess.PlayCard(cmd.CardID)
	case "end_turn":
		err = c.sess.EndTurn()
	case "abort":
		c.sess.Abort()
	default:
		c.reject(cmd.Type, "unknown command")
		return
	}

	if err != nil {
		c.reject(cmd.Type, rejectionReason(err))
		return
	}
	c.enqueue(frame{Type: "ack", Command: cmd.Type})
}

// rejectionReason maps engine sentinels to stable wire strings so the
// client can distinguish "come back later" from real mistakes.
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, game.ErrCannotAfford):
		return "not enough sand"
	case errors.Is(err, game.ErrUnknownCard):
		return "card not in hand"
	case errors.Is(err, game.ErrWrongPhase):
		return "not your turn"
	case errors.Is(err, game.ErrCombatOver):
		return "combat is over"
	default:
		return err.Error()
	}
}

func (c *Client) reject(cmd, reason string) {
	c.enqueue(frame{Type: "error", Command: cmd, Reason: reason})
}

func (c *Client) enqueue(f frame) {
	payload, err := json.Marshal(f)
	if err != nil {
		c.logger.Error("failed to serialize frame", zap.Error(err))
		return
	}
	c.trySend(payload)
}

// trySend queues a payload without blocking. Returns false when the
// client is closed or its buffer is full.
func (c *Client) trySend(payload []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// close shuts the send channel exactly once. Only the hub calls this;
// afterwards trySend rejects instead of panicking.
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// writePump pumps frames from the hub to the connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
