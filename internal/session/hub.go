package session

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/coder/websocket"

	"github.com/painterhq/painter/internal/typeid"
)

// Hub tracks the live sessions so the server can report and close them.
// Sessions never talk to each other.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	wg       sync.WaitGroup
	logger   *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Hub{
		sessions: make(map[string]*Session),
		logger:   logger,
	}
}

func (h *Hub) add(s *Session) {
	h.mu.Lock()
	h.sessions[s.ID] = s
	h.wg.Add(1)
	h.mu.Unlock()
	h.logger.Info("session opened", "session", s.ID)
}

func (h *Hub) remove(s *Session) {
	h.mu.Lock()
	if _, ok := h.sessions[s.ID]; ok {
		delete(h.sessions, s.ID)
		h.wg.Done()
	}
	h.mu.Unlock()
	h.logger.Info("session closed", "session", s.ID, "dirty", s.engine.Dirty())
}

// Len returns the number of open sessions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Stop closes every session with StatusGoingAway and waits for them to end
// or for ctx to expire.
func (h *Hub) Stop(ctx context.Context) {
	h.mu.RLock()
	for _, s := range h.sessions {
		s.conn.Close(websocket.StatusGoingAway, "server shutting down")
	}
	h.mu.RUnlock()

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		h.logger.Warn("sessions still open at shutdown", "count", h.Len())
	}
}

// Handler upgrades requests to websocket sessions.
type Handler struct {
	hub            *Hub
	opts           Options
	originPatterns []string
}

func NewHandler(hub *Hub, opts Options, originPatterns []string) *Handler {
	return &Handler{hub: hub, opts: opts, originPatterns: originPatterns}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		h.hub.logger.Error("websocket accept", "error", err)
		return
	}

	s := New(h.hub, conn, typeid.NewSessionID(), h.opts)
	s.Serve(r.Context())
}
