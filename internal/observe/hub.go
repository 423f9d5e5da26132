// Package observe streams table events to read-only websocket viewers.
package observe

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"

	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/history"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Viewers only send control frames
	maxMessageSize = 512

	// Messages queued per viewer before new ones are dropped
	sendBuffer = 64
)

// Message is one event as sent to viewers
type Message struct {
	Type     game.EventType `json:"type"`
	RoundID  string         `json:"round_id,omitempty"`
	Text     string         `json:"text"`
	Time     time.Time      `json:"time"`
	Snapshot *game.Snapshot `json:"snapshot,omitempty"`
}

// SnapshotFunc returns the current table state. It is called from OnEvent,
// on the goroutine publishing the event.
type SnapshotFunc func() game.Snapshot

// HubOption configures a Hub
type HubOption func(*Hub)

// WithSnapshots attaches a table snapshot to every message
func WithSnapshots(fn SnapshotFunc) HubOption {
	return func(h *Hub) { h.snapshot = fn }
}

// WithHistory serves recent rounds at /history
func WithHistory(r *history.Recorder) HubOption {
	return func(h *Hub) { h.history = r }
}

// WithClock sets the clock used for write deadlines and pings
func WithClock(clock quartz.Clock) HubOption {
	return func(h *Hub) { h.clock = clock }
}

// WithLogger sets the hub's logger
func WithLogger(logger *log.Logger) HubOption {
	return func(h *Hub) { h.logger = logger }
}

// Hub fans table events out to connected viewers. It implements
// game.EventSubscriber and never blocks the publisher: a viewer whose
// queue is full misses messages.
type Hub struct {
	mu        sync.RWMutex
	clients   map[*client]struct{}
	closed    bool
	upgrader  websocket.Upgrader
	formatter *game.EventFormatter
	snapshot  SnapshotFunc
	history   *history.Recorder
	clock     quartz.Clock
	logger    *log.Logger
	dropped   int
}

// NewHub creates a hub with no viewers
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			// Viewers are read-only, any origin may watch
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		formatter: game.NewEventFormatter(game.FormattingOptions{ShowChips: true}),
		clock:     quartz.NewReal(),
		logger:    log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.logger.WithPrefix("observe")
	return h
}

// OnEvent implements game.EventSubscriber
func (h *Hub) OnEvent(event game.GameEvent) {
	h.mu.RLock()
	idle := len(h.clients) == 0 || h.closed
	h.mu.RUnlock()
	if idle {
		return
	}

	msg := Message{
		Type:    event.EventType(),
		RoundID: event.Round(),
		Text:    h.formatter.Format(event),
		Time:    event.Timestamp(),
	}
	if h.snapshot != nil {
		snap := h.snapshot()
		msg.Snapshot = &snap
	}

	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Failed to encode event", "type", msg.Type, "error", err)
		return
	}
	h.broadcast(data)
}

func (h *Hub) broadcast(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.dropped++
			h.logger.Debug("Viewer queue full, dropping message", "remote", c.remote)
		}
	}
}

// Clients returns the number of connected viewers
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Dropped returns how many messages were dropped for slow viewers
func (h *Hub) Dropped() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.dropped
}

// Handler returns the hub's HTTP routes
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.handleWebSocket)
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/history", h.handleHistory)
	return mux
}

// Serve listens on addr until ctx is cancelled, then disconnects every
// viewer.
func (h *Hub) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h.Handler(),
		ReadHeaderTimeout: writeWait,
	}

	errCh := make(chan error, 1)
	go func() {
		h.logger.Info("Starting observer server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		h.Close()
		return err
	case <-ctx.Done():
	}

	h.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), writeWait)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close disconnects every viewer and refuses new ones
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for c := range h.clients {
		c.close()
		delete(h.clients, c)
	}
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	h.logger.Debug("Viewer connected", "remote", c.remote, "viewers", len(h.clients))
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.close()
		h.logger.Debug("Viewer disconnected", "remote", c.remote, "viewers", len(h.clients))
	}
}

func (h *Hub) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("WebSocket upgrade failed", "error", err)
		return
	}

	c := newClient(h, conn, r.RemoteAddr)
	if !h.register(c) {
		_ = conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

func (h *Hub) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Hub) handleHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		http.NotFound(w, r)
		return
	}

	var body any
	if id := r.URL.Query().Get("round"); id != "" {
		rec, ok := h.history.Find(id)
		if !ok {
			http.Error(w, "round not found", http.StatusNotFound)
			return
		}
		body = rec
	} else {
		body = h.history.Rounds()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("Failed to write history", "error", err)
	}
}
