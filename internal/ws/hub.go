package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/neuropulse/neuropulse/internal/api"
	"github.com/neuropulse/neuropulse/internal/engine"
)

const (
	// writeTimeout bounds every write to a subscriber, including the
	// initial snapshot and close frames.
	writeTimeout = 10 * time.Second

	// pongWait is how long a subscriber may stay silent before its
	// connection is treated as dead. pingPeriod must come in under it so
	// a healthy client always gets a chance to answer.
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second

	// readLimit caps inbound frames. Subscribers only ever send control
	// frames, so anything larger is a misbehaving client.
	readLimit = 512

	// queueDepth is how many pending broadcasts a subscriber may lag
	// behind before the hub drops it.
	queueDepth = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Cross-origin browser clients are expected; enforce origin policy at
	// the reverse proxy if needed.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Message is the JSON envelope sent to subscribers on every broadcast tick.
type Message struct {
	Event string              `json:"event"`
	Data  api.MetricsResponse `json:"data"`
}

// Hub fans the current telemetry snapshot out to WebSocket subscribers on
// a fixed interval. Each read goes through the engine's throttle like any
// other consumer, so many subscribers do not multiply probe work.
type Hub struct {
	engine   *engine.Engine
	interval time.Duration

	mu   sync.RWMutex
	subs map[*subscriber]bool
}

// subscriber is one connected WebSocket client. Broadcasts are queued on
// queue and drained by a per-subscriber write loop; closing queue tells
// the write loop to send a close frame and tear the connection down.
type subscriber struct {
	conn  *websocket.Conn
	queue chan []byte
}

// New creates a Hub that reads from eng and broadcasts every interval.
func New(eng *engine.Engine, interval time.Duration) *Hub {
	return &Hub{
		engine:   eng,
		interval: interval,
		subs:     make(map[*subscriber]bool),
	}
}

// Run drives the broadcast loop until ctx is cancelled, then disconnects
// every subscriber.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for s := range h.subs {
				close(s.queue)
				delete(h.subs, s)
			}
			h.mu.Unlock()
			return
		case <-ticker.C:
			h.broadcast()
		}
	}
}

// ServeHTTP upgrades the request to a WebSocket connection and serves it
// until the client disconnects. The current snapshot is written before the
// subscriber joins the broadcast set, so clients always have data on
// connect even when the next tick is far away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		return
	}

	payload, err := h.snapshotJSON()
	if err == nil {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		err = conn.WriteMessage(websocket.TextMessage, payload)
	}
	if err != nil {
		conn.Close()
		return
	}

	s := &subscriber{
		conn:  conn,
		queue: make(chan []byte, queueDepth),
	}
	h.add(s)
	defer h.remove(s)

	go s.writeLoop()
	s.readLoop() // blocks until the connection closes
}

// Count returns the number of connected subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *Hub) add(s *subscriber) {
	h.mu.Lock()
	h.subs[s] = true
	h.mu.Unlock()
}

// remove drops s from the subscriber set and closes its queue. Safe to
// call more than once for the same subscriber.
func (h *Hub) remove(s *subscriber) {
	h.mu.Lock()
	if h.subs[s] {
		delete(h.subs, s)
		close(s.queue)
	}
	h.mu.Unlock()
}

func (h *Hub) broadcast() {
	payload, err := h.snapshotJSON()
	if err != nil {
		slog.Error("ws: encode snapshot", "err", err)
		return
	}

	h.mu.RLock()
	pending := make([]*subscriber, 0, len(h.subs))
	for s := range h.subs {
		pending = append(pending, s)
	}
	h.mu.RUnlock()

	for _, s := range pending {
		select {
		case s.queue <- payload:
		default:
			// The subscriber has fallen queueDepth broadcasts behind;
			// cut it loose rather than buffer without bound.
			slog.Warn("ws: dropping slow subscriber",
				"addr", s.conn.RemoteAddr().String())
			h.remove(s)
		}
	}
}

func (h *Hub) snapshotJSON() ([]byte, error) {
	return json.Marshal(Message{
		Event: "snapshot",
		Data:  api.BuildMetrics(h.engine.GetMetrics()),
	})
}

// writeLoop forwards queued broadcasts to the connection and keeps it
// alive with periodic pings. A closed queue means the hub removed this
// subscriber; the loop says goodbye with a close frame and exits.
func (s *subscriber) writeLoop() {
	pings := time.NewTicker(pingPeriod)
	defer func() {
		pings.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case payload, open := <-s.queue:
			s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !open {
				s.conn.WriteMessage(websocket.CloseMessage, //nolint:errcheck
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-pings.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readLoop consumes inbound frames so pong and close control messages are
// processed, and returns when the client goes away.
func (s *subscriber) readLoop() {
	defer s.conn.Close()

	s.conn.SetReadLimit(readLimit)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}
