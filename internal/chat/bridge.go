package chat

import (
	"encoding/json"
	"fmt"

	"github.com/consulthub/consulthub-api/pkg/events"
	"github.com/consulthub/consulthub-api/pkg/logger"
	"github.com/google/uuid"
)

// Bridge fans persisted messages out to booking rooms. Every instance
// subscribes, so a message sent on one instance reaches participants
// connected to any other. Local delivery rides the same subscription.
type Bridge struct {
	hub *Hub
	sub events.Subscription
}

func NewBridge(hub *Hub) *Bridge {
	return &Bridge{hub: hub}
}

func (b *Bridge) Start(bus events.Subscriber) error {
	sub, err := bus.Subscribe(events.MessageCreated, b.handle)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", events.MessageCreated, err)
	}
	b.sub = sub
	return nil
}

func (b *Bridge) Stop() {
	if b.sub != nil {
		if err := b.sub.Unsubscribe(); err != nil {
			logger.Error("Failed to unsubscribe chat bridge", "error", err)
		}
	}
}

func (b *Bridge) handle(msg *events.Message) {
	var event events.MessageCreatedEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		logger.Error("Failed to decode message created event", "error", err)
		return
	}

	bookingID, err := uuid.Parse(event.BookingID)
	if err != nil {
		logger.Error("Message created event carries bad booking id", "booking_id", event.BookingID)
		return
	}

	b.hub.Broadcast(bookingID, &Event{
		Type:      EventNewMessage,
		BookingID: event.BookingID,
		Payload:   event,
	})
}
