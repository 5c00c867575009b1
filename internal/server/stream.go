package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/handsignal/internal/app"
)

// pollInterval is how often the stream samples the tracker (~15 FPS).
const pollInterval = 66 * time.Millisecond

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// StatusStream pushes the session status to WebSocket clients. A client
// receives the current status on connect and again on every change.
type StatusStream struct {
	tracker Tracker
	logger  *slog.Logger
	clients map[*websocket.Conn]bool
	mu      sync.RWMutex
	// writeMu serializes writes; a Conn supports one writer at a time.
	writeMu   sync.Mutex
	done      chan struct{}
	closeOnce sync.Once
}

// NewStatusStream creates a StatusStream and starts its broadcast loop.
func NewStatusStream(t Tracker, logger *slog.Logger) *StatusStream {
	h := &StatusStream{
		tracker: t,
		logger:  logger,
		clients: make(map[*websocket.Conn]bool),
		done:    make(chan struct{}),
	}
	go h.broadcast()
	return h
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *StatusStream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade error", "error", err)
		return
	}
	defer conn.Close()

	if err := h.send(conn, h.tracker.Status()); err != nil {
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Clients returns the number of connected clients.
func (h *StatusStream) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close stops the broadcast loop. Connected clients are left to the
// HTTP server's shutdown.
func (h *StatusStream) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// broadcast sends the status to all clients whenever it changes.
func (h *StatusStream) broadcast() {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	var last app.Status
	for {
		select {
		case <-h.done:
			return
		case <-ticker.C:
		}

		current := h.tracker.Status()
		if sameStatus(current, last) {
			continue
		}
		last = current

		h.mu.RLock()
		for conn := range h.clients {
			if err := h.send(conn, current); err != nil {
				h.logger.Debug("status push failed", "error", err)
			}
		}
		h.mu.RUnlock()
	}
}

// sameStatus ignores UpdatedAt, which moves on every frame.
func sameStatus(a, b app.Status) bool {
	return a.Status == b.Status && a.DebugText == b.DebugText && a.SessionID == b.SessionID
}

func (h *StatusStream) send(conn *websocket.Conn, st app.Status) error {
	msg, err := json.Marshal(st)
	if err != nil {
		return err
	}

	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(time.Second))
	return conn.WriteMessage(websocket.TextMessage, msg)
}
