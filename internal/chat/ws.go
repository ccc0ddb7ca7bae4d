package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/consulthub/consulthub-api/internal/http/response"
	"github.com/consulthub/consulthub-api/internal/repo/postgres"
	"github.com/consulthub/consulthub-api/internal/service"
	"github.com/consulthub/consulthub-api/internal/session"
	"github.com/consulthub/consulthub-api/pkg/auth"
	"github.com/consulthub/consulthub-api/pkg/events"
	"github.com/consulthub/consulthub-api/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin is enforced by the CORS layer in front of the router.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler upgrades booking chat connections.
//
// Endpoint: GET /ws/bookings/{id}?token=JWT. Browsers cannot set
// headers on WebSocket requests, so the token rides in the query.
type Handler struct {
	hub       *Hub
	sessions  service.SessionService
	messages  postgres.MessageRepository
	bus       events.Publisher
	jwtSecret string
}

func NewHandler(hub *Hub, sessions service.SessionService, messages postgres.MessageRepository, bus events.Publisher, jwtSecret string) *Handler {
	return &Handler{
		hub:       hub,
		sessions:  sessions,
		messages:  messages,
		bus:       bus,
		jwtSecret: jwtSecret,
	}
}

type inboundMessage struct {
	Content string `json:"content"`
}

func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	bookingID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid booking ID")
		return
	}

	claims, err := auth.Parse(r.URL.Query().Get("token"), h.jwtSecret)
	if err != nil {
		response.Unauthorized(w, "Missing or invalid authorization token")
		return
	}
	userID, err := uuid.Parse(claims.Sub)
	if err != nil {
		response.Unauthorized(w, "Missing or invalid authorization token")
		return
	}

	// The participant check runs before the upgrade so strangers get a
	// proper HTTP status instead of a dropped socket.
	access, _, err := h.sessions.Access(r.Context(), bookingID, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			response.NotFound(w, "Booking not found")
		case errors.Is(err, session.ErrForbidden):
			response.Forbidden(w, "Only the booking's participants may join its chat")
		default:
			logger.ErrorContext(r.Context(), "Failed to authorize chat join", "error", err, "booking_id", bookingID)
			response.InternalError(w, "Failed to join chat")
		}
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.ErrorContext(r.Context(), "WebSocket upgrade failed", "error", err)
		return
	}

	c := &connection{
		userID:    userID,
		bookingID: bookingID,
		conn:      conn,
		send:      make(chan []byte, 256),
	}

	// Join the room before reading anything, so a peer's very next
	// message reaches this connection.
	h.hub.register(c)
	h.hub.Broadcast(bookingID, &Event{
		Type:      EventPeerJoined,
		BookingID: bookingID.String(),
		Payload:   map[string]string{"user_id": userID.String()},
	})

	go h.hub.writePump(c)
	h.readPump(c, access)
}

func (h *Handler) readPump(c *connection, access session.AccessContext) {
	defer func() {
		h.hub.unregister(c)
		c.conn.Close()
		h.hub.Broadcast(c.bookingID, &Event{
			Type:      EventPeerLeft,
			BookingID: c.bookingID.String(),
			Payload:   map[string]string{"user_id": c.userID.String()},
		})
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	receiverID := access.ClientID
	if c.userID == access.ClientID {
		receiverID = access.ConsultantUserID
	}

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var in inboundMessage
		if err := json.Unmarshal(raw, &in); err != nil {
			continue
		}
		content := strings.TrimSpace(in.Content)
		if content == "" {
			continue
		}

		h.deliver(c, receiverID, content)
	}
}

// deliver persists the message and publishes it on the bus. Fan-out to
// the room happens in the Bridge, which every instance runs, so local
// and remote connections share one delivery path.
func (h *Handler) deliver(c *connection, receiverID uuid.UUID, content string) {
	ctx := context.Background()

	msg, err := h.messages.Insert(ctx, c.bookingID, c.userID, receiverID, content)
	if err != nil {
		logger.Error("Failed to persist chat message", "error", err, "booking_id", c.bookingID)
		// The sender must hear about the loss so the client can show a
		// notice and offer a retry.
		sendDirect(c, &Event{
			Type:      EventMessageFailed,
			BookingID: c.bookingID.String(),
			Payload:   map[string]string{"error": "Message could not be saved", "content": content},
		})
		return
	}

	event := events.MessageCreatedEvent{
		MessageID:  msg.ID.String(),
		BookingID:  msg.BookingID.String(),
		SenderID:   msg.SenderID.String(),
		ReceiverID: msg.ReceiverID.String(),
		Content:    msg.Content,
		CreatedAt:  msg.CreatedAt,
	}
	if err := h.bus.Publish(ctx, events.MessageCreated, event); err != nil {
		logger.Error("Failed to publish message created event", "error", err, "message_id", msg.ID)
	}
}
