// Package game hosts the websocket hub that pushes solve results to
// connected clients, a single-event analogue of the teacher's
// service/internal/game GameEvent broadcast model (there a CambiaGame
// pushes many event types to many players; here one hub pushes one
// event type — solve_result — to everyone watching a request).
package game

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/CrzPhil/Makiaveli/engine"
)

// SolveResultEvent is the single event type this hub broadcasts.
type SolveResultEvent struct {
	Type      string        `json:"type"` // always "solve_result"
	RequestID uuid.UUID     `json:"requestId"`
	Output    engine.Output `json:"output"`
}

// Hub tracks connected websocket clients and fans out SolveResultEvents
// to all of them, mirroring CambiaGame.BroadcastFn's role but over a
// single shared channel rather than per-game state.
type Hub struct {
	log *logrus.Entry

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// NewHub builds an empty Hub.
func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		log:     log.WithField("component", "ws_hub"),
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// Join registers conn to receive future broadcasts. Callers must call
// Leave when the connection closes.
func (h *Hub) Join(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = struct{}{}
	h.log.WithField("clients", len(h.clients)).Debug("client joined")
}

// Leave unregisters conn.
func (h *Hub) Leave(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, conn)
	h.log.WithField("clients", len(h.clients)).Debug("client left")
}

// Broadcast sends ev to every connected client. A write failure drops
// that one client rather than aborting the broadcast, matching
// game.go's best-effort per-connection broadcast loop.
func (h *Hub) Broadcast(ctx context.Context, ev SolveResultEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		h.log.WithError(err).Error("marshal solve_result event")
		return
	}

	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for c := range h.clients {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		if err := c.Write(ctx, websocket.MessageText, payload); err != nil {
			h.log.WithError(err).Debug("drop client after failed write")
			h.Leave(c)
		}
	}
}
