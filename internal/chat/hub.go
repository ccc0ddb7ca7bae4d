// Package chat carries in-session messaging over WebSocket. Connections
// are grouped into rooms keyed by booking id; a connection joins its
// room before the read loop starts, so every message sent after a peer
// connects is deliverable to them.
package chat

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 16 * 1024
)

// Event is the frame pushed to connected clients.
type Event struct {
	Type      string      `json:"type"`
	BookingID string      `json:"booking_id"`
	Payload   interface{} `json:"payload,omitempty"`
}

const (
	EventNewMessage    = "new_message"
	EventPeerJoined    = "peer_joined"
	EventPeerLeft      = "peer_left"
	EventMessageFailed = "message_failed"
)

type connection struct {
	userID    uuid.UUID
	bookingID uuid.UUID
	conn      *websocket.Conn
	send      chan []byte
}

// Hub tracks the open connections of every booking room.
type Hub struct {
	mu    sync.RWMutex
	rooms map[uuid.UUID]map[*connection]bool
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[uuid.UUID]map[*connection]bool)}
}

func (h *Hub) register(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[c.bookingID]
	if !ok {
		room = make(map[*connection]bool)
		h.rooms[c.bookingID] = room
	}
	room[c] = true
}

func (h *Hub) unregister(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[c.bookingID]
	if !ok || !room[c] {
		return
	}
	delete(room, c)
	close(c.send)
	if len(room) == 0 {
		delete(h.rooms, c.bookingID)
	}
}

// Broadcast pushes an event to every connection in a booking's room.
// Slow clients are skipped rather than blocking the sender.
func (h *Hub) Broadcast(bookingID uuid.UUID, event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[bookingID] {
		select {
		case c.send <- data:
		default:
		}
	}
}

// sendDirect pushes an event to a single connection, skipping it if
// the client is slow, same as Broadcast.
func sendDirect(c *connection, event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// RoomSize reports how many connections a booking's room holds.
func (h *Hub) RoomSize(bookingID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[bookingID])
}

func (h *Hub) writePump(c *connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
