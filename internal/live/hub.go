// Package live pushes the diary snapshot and user notices to websocket
// clients and accepts store actions from them.
package live

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/fooddiary/wellbeing-diary-nexus/internal/appstate"
	"github.com/fooddiary/wellbeing-diary-nexus/internal/model"
)

const (
	writeWait  = 10 * time.Second
	sendBuffer = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // loopback bridge
	},
}

// Message is the envelope exchanged with clients.
type Message struct {
	Type    string          `json:"type"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() { close(c.send) })
}

// Hub fans snapshots and notices out to every connected client. It is an
// appstate.Notifier, so it can be handed to the store before Attach.
type Hub struct {
	log *slog.Logger

	mu      sync.RWMutex
	store   *appstate.Store
	unsub   func()
	clients map[string]*client
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{log: logger, clients: make(map[string]*client)}
}

// Attach subscribes the hub to st. Snapshots are broadcast after every change.
func (h *Hub) Attach(st *appstate.Store) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.unsub != nil {
		h.unsub()
	}
	h.store = st
	h.unsub = st.Subscribe(func(d model.AppData) {
		h.broadcast("snapshot", d)
	})
}

// Notify implements appstate.Notifier.
func (h *Hub) Notify(n appstate.Notice) {
	h.broadcast("notice", n)
}

// Close drops every client and detaches from the store.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.unsub != nil {
		h.unsub()
		h.unsub = nil
	}
	for id, c := range h.clients {
		c.close()
		delete(h.clients, id)
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Handler serves /ws and /health.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.handleWebSocket)
	mux.HandleFunc("/health", h.handleHealth)
	return mux
}

func (h *Hub) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *Hub) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "err", err)
		return
	}

	c := &client{id: uuid.New().String(), conn: conn, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	h.clients[c.id] = c
	st := h.store
	h.mu.Unlock()
	h.log.Info("client connected", "client", c.id)

	go h.writePump(c)
	if st != nil {
		h.sendTo(c, "snapshot", st.Snapshot())
	}

	defer func() {
		h.mu.Lock()
		if _, ok := h.clients[c.id]; ok {
			delete(h.clients, c.id)
			c.close()
		}
		h.mu.Unlock()
		h.log.Info("client disconnected", "client", c.id)
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warn("websocket read failed", "client", c.id, "err", err)
			}
			return
		}
		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			h.sendError(c, "Invalid message format")
			continue
		}
		h.dispatch(r.Context(), c, msg)
	}
}

func (h *Hub) writePump(c *client) {
	defer c.conn.Close()
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.log.Warn("websocket write failed", "client", c.id, "err", err)
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func encode(typ string, v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Message{Type: typ, Data: data})
}

func (h *Hub) broadcast(typ string, v any) {
	payload, err := encode(typ, v)
	if err != nil {
		h.log.Error("encode broadcast failed", "type", typ, "err", err)
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		h.enqueue(c, payload)
	}
}

func (h *Hub) sendTo(c *client, typ string, v any) {
	payload, err := encode(typ, v)
	if err != nil {
		h.log.Error("encode message failed", "type", typ, "err", err)
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c.id]; ok {
		h.enqueue(c, payload)
	}
}

func (h *Hub) sendError(c *client, message string) {
	payload, _ := json.Marshal(Message{Type: "error", Message: message})
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c.id]; ok {
		h.enqueue(c, payload)
	}
}

// enqueue drops the message for a client whose buffer is full. Callers hold mu.
func (h *Hub) enqueue(c *client, payload []byte) {
	select {
	case c.send <- payload:
	default:
		h.log.Warn("client too slow, dropping message", "client", c.id)
	}
}
