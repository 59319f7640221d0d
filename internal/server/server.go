package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/sandsofduat/duat-server/internal/config"
	"github.com/sandsofduat/duat-server/internal/game"
	"github.com/sandsofduat/duat-server/internal/session"
)

const defaultPlayerHealth = 50

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Server exposes combat sessions over WebSocket. One connection either
// creates a new encounter (?enemy=<id>) or joins an existing one
// (?session=<id>) as an additional watcher.
type Server struct {
	hub      *Hub
	sessions *session.Manager
	httpSrv  *http.Server
	logger   *zap.Logger
}

// New wires the transport around the session manager and installs the
// hub as its frame sink.
func New(cfg config.ServerConfig, sessions *session.Manager, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		hub:      NewHub(logger.Named("hub")),
		sessions: sessions,
		logger:   logger,
	}
	sessions.SetSink(s.hub.Frame)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/healthz", s.handleHealth)

	s.httpSrv = &http.Server{
		Addr:         cfg.Address,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	go s.hub.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("websocket server listening", zap.String("address", s.httpSrv.Addr))
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpSrv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	sess, err := s.resolveSession(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := newClient(s.hub, conn, sess, s.logger.Named("client"))
	s.hub.Register(client)

	go client.writePump()
	go client.readPump()

	// Send the opening state immediately rather than waiting a tick.
	snap := sess.Snapshot()
	client.enqueue(frame{Type: "state", State: &snap})
}

func (s *Server) resolveSession(r *http.Request) (*session.Session, error) {
	if id := r.URL.Query().Get("session"); id != "" {
		return s.sessions.Get(id)
	}

	enemyID := r.URL.Query().Get("enemy")
	if enemyID == "" {
		enemyID = "scarab"
	}
	stats := game.StatBlock{Health: defaultPlayerHealth, MaxHealth: defaultPlayerHealth}
	return s.sessions.Create(enemyID, stats, s.sessions.OpeningHand())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"sessions": s.sessions.Count(),
	})
}
