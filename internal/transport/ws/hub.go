package ws

import (
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"
)

// Message is the WebSocket envelope, shared by both directions.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Hub manages WebSocket connections per room and implements
// game.Broadcaster.
type Hub struct {
	// roomCode -> playerID -> conn
	conns map[string]map[string]*Connection

	mu sync.RWMutex

	register  chan *Connection
	broadcast chan *BroadcastMessage

	log *logrus.Logger
}

// Connection represents one player's WebSocket connection. Its send channel
// is only ever closed through Close, so sends racing a hub-side teardown
// degrade to a dropped message instead of a panic.
type Connection struct {
	RoomCode string
	PlayerID string
	Send     chan []byte

	mu     sync.Mutex
	closed bool
}

// trySend delivers data unless the connection is closed or its buffer is
// full, reporting whether the message was queued.
func (c *Connection) trySend(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- data:
		return true
	default:
		// Drop message if buffer full
		return false
	}
}

// Close shuts the send channel exactly once.
func (c *Connection) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
}

// BroadcastMessage is a message to broadcast
type BroadcastMessage struct {
	RoomCode string
	ToPlayer string // Empty means all players in the room
	Message  *Message
}

// NewHub creates a new WebSocket hub
func NewHub(log *logrus.Logger) *Hub {
	if log == nil {
		log = logrus.New()
	}
	h := &Hub{
		conns:     make(map[string]map[string]*Connection),
		register:  make(chan *Connection),
		broadcast: make(chan *BroadcastMessage, 256),
		log:       log,
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.conns[conn.RoomCode] == nil {
				h.conns[conn.RoomCode] = make(map[string]*Connection)
			}
			// A reconnecting player replaces their stale connection.
			if old, ok := h.conns[conn.RoomCode][conn.PlayerID]; ok && old != conn {
				old.Close()
			}
			h.conns[conn.RoomCode][conn.PlayerID] = conn
			h.mu.Unlock()
			h.log.WithFields(logrus.Fields{"room": conn.RoomCode, "player": conn.PlayerID}).
				Debug("connection registered")

		case msg := <-h.broadcast:
			h.mu.RLock()
			data, _ := json.Marshal(msg.Message)
			if players, ok := h.conns[msg.RoomCode]; ok {
				for id, conn := range players {
					if msg.ToPlayer != "" && id != msg.ToPlayer {
						continue
					}
					conn.trySend(data)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection if it is still the player's current one,
// reporting whether it was removed. A connection already replaced by a
// reconnect (or dropped with its room) returns false, so the caller knows
// not to treat the player as having left.
func (h *Hub) Unregister(conn *Connection) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	players, ok := h.conns[conn.RoomCode]
	if !ok {
		return false
	}
	if existing, ok := players[conn.PlayerID]; !ok || existing != conn {
		return false
	}

	delete(players, conn.PlayerID)
	conn.Close()
	if len(players) == 0 {
		delete(h.conns, conn.RoomCode)
	}
	return true
}

// BroadcastToRoom sends a message to everyone in a room (implements
// game.Broadcaster).
func (h *Hub) BroadcastToRoom(roomCode string, msgType string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &BroadcastMessage{
		RoomCode: roomCode,
		Message:  &Message{Type: msgType, Payload: data},
	}
}

// BroadcastToPlayer sends a message to a specific player (implements
// game.Broadcaster).
func (h *Hub) BroadcastToPlayer(roomCode, playerID string, msgType string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &BroadcastMessage{
		RoomCode: roomCode,
		ToPlayer: playerID,
		Message:  &Message{Type: msgType, Payload: data},
	}
}

// DisconnectRoom drops every connection of a torn-down room (implements
// game.Broadcaster).
func (h *Hub) DisconnectRoom(roomCode string) {
	h.mu.Lock()
	if players, ok := h.conns[roomCode]; ok {
		for _, conn := range players {
			conn.Close()
		}
		delete(h.conns, roomCode)
	}
	h.mu.Unlock()
}
