// Package spectate streams battle diagnostics to read-only websocket
// clients. The hub is a logging sink, so the router feeds it like any other.
package spectate

import (
	"context"
	"encoding/json"
	"errors"
	nethttp "net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"spirit-tamer/battlecore/internal/telemetry"
	"spirit-tamer/battlecore/logging"
	"spirit-tamer/battlecore/logging/sinks"
)

const (
	defaultHistoryLimit = 512
	defaultSendBuffer   = 64
	writeWait           = 5 * time.Second
)

// ErrClosed is returned by Write after Close.
var ErrClosed = errors.New("spectate: hub closed")

type Config struct {
	Logger telemetry.Logger
	// HistoryLimit bounds the events replayed to late joiners.
	HistoryLimit int
	SendBuffer   int
}

type helloMessage struct {
	Type    string `json:"type"`
	Session string `json:"session"`
	Replay  int    `json:"replay"`
}

type client struct {
	id        string
	conn      *websocket.Conn
	send      chan []byte
	closeOnce sync.Once
}

func (c *client) close() {
	c.closeOnce.Do(func() { close(c.send) })
}

// Hub fans events out to connected spectators.
type Hub struct {
	logger   telemetry.Logger
	upgrader websocket.Upgrader
	limit    int
	buffer   int

	mu      sync.Mutex
	clients map[string]*client
	history [][]byte
	closed  bool

	dropped atomic.Uint64
}

func NewHub(cfg Config) *Hub {
	logger := telemetry.Prefix(cfg.Logger, "")
	limit := cfg.HistoryLimit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	buffer := cfg.SendBuffer
	if buffer <= 0 {
		buffer = defaultSendBuffer
	}
	return &Hub{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *nethttp.Request) bool {
				return true
			},
		},
		limit:   limit,
		buffer:  buffer,
		clients: make(map[string]*client),
	}
}

// Write satisfies logging.Sink.
func (h *Hub) Write(event logging.Event) error {
	data, err := json.Marshal(sinks.Wire(event))
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}
	h.history = append(h.history, data)
	if over := len(h.history) - h.limit; over > 0 {
		h.history = h.history[over:]
	}
	for _, c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.dropped.Add(1)
		}
	}
	return nil
}

// Close disconnects every spectator.
func (h *Hub) Close(context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	for id, c := range h.clients {
		c.close()
		delete(h.clients, id)
	}
	return nil
}

// Sessions reports the number of connected spectators.
func (h *Hub) Sessions() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Dropped reports events skipped for slow spectators.
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

// Handle upgrades the request and streams events until the spectator
// disconnects. New sessions first receive a hello and the recent history.
func (h *Hub) Handle(w nethttp.ResponseWriter, r *nethttp.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("upgrade failed: %v", err)
		return
	}

	c, ok := h.register(conn)
	if !ok {
		message := websocket.FormatCloseMessage(websocket.CloseGoingAway, "battle finished")
		conn.WriteMessage(websocket.CloseMessage, message)
		conn.Close()
		return
	}
	h.logger.Printf("session=%s connected", c.id)

	go h.writeLoop(c)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.unregister(c)
	h.logger.Printf("session=%s disconnected", c.id)
}

func (h *Hub) register(conn *websocket.Conn) (*client, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, false
	}
	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, len(h.history)+h.buffer+1),
	}
	hello, _ := json.Marshal(helloMessage{Type: "hello", Session: c.id, Replay: len(h.history)})
	c.send <- hello
	for _, data := range h.history {
		c.send <- data
	}
	h.clients[c.id] = c
	return c, true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if h.clients[c.id] == c {
		delete(h.clients, c.id)
	}
	h.mu.Unlock()
	c.close()
}

func (h *Hub) writeLoop(c *client) {
	defer c.conn.Close()
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.logger.Printf("session=%s write failed: %v", c.id, err)
			return
		}
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "battle finished"))
}
