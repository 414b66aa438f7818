package ws

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"
)

// Message is the WebSocket envelope format, both directions.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Connection represents one user's WebSocket connection.
type Connection struct {
	ID     string // unique per socket, used to detect stale disconnects
	UserID string
	Send   chan []byte
	Hub    *Hub
}

// Hub tracks the single live connection per user and fans events out to
// them. It implements service.Broadcaster: the room layer decides WHO
// receives an event, the hub only delivers.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]*Connection // userID -> conn

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *outbound
}

type outbound struct {
	userIDs []string
	data    []byte
}

// NewHub creates the hub and starts its event loop.
func NewHub() *Hub {
	h := &Hub{
		conns:      make(map[string]*Connection),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *outbound, 256),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if old, ok := h.conns[conn.UserID]; ok {
				// Newer connection wins; the old socket's pumps shut down
				// when its Send channel closes.
				close(old.Send)
			}
			h.conns[conn.UserID] = conn
			h.mu.Unlock()
			log.Debug().Str("user", conn.UserID).Str("conn", conn.ID).Msg("ws connected")

		case conn := <-h.unregister:
			h.mu.Lock()
			if existing, ok := h.conns[conn.UserID]; ok && existing == conn {
				delete(h.conns, conn.UserID)
				close(conn.Send)
			}
			h.mu.Unlock()
			log.Debug().Str("user", conn.UserID).Str("conn", conn.ID).Msg("ws disconnected")

		case msg := <-h.broadcast:
			h.mu.RLock()
			for _, userID := range msg.userIDs {
				if conn, ok := h.conns[userID]; ok {
					select {
					case conn.Send <- msg.data:
					default:
						// Drop for this slow consumer rather than block
						// delivery to the rest of the room.
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection, displacing any previous one for the user.
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection if it is still the user's current one.
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// ToUser sends one event to one user. Implements service.Broadcaster.
func (h *Hub) ToUser(userID string, event string, payload any) {
	h.ToUsers([]string{userID}, event, payload)
}

// ToUsers sends one event to a set of users. Implements service.Broadcaster.
func (h *Hub) ToUsers(userIDs []string, event string, payload any) {
	if len(userIDs) == 0 {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("failed to marshal event payload")
		return
	}
	data, _ := json.Marshal(&Message{Type: event, Payload: body})
	h.broadcast <- &outbound{userIDs: userIDs, data: data}
}
