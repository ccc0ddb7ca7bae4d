package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/consulthub/consulthub-api/pkg/logger"
	"github.com/nats-io/nats.go"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type Subscriber interface {
	Subscribe(subject string, handler func(msg *Message)) (Subscription, error)
	QueueSubscribe(subject, queue string, handler func(msg *Message)) (Subscription, error)
	Close() error
}

type EventBus interface {
	Publisher
	Subscriber
}

// Subscription is the handle returned by a subscribe call. Callers own it
// and must unsubscribe on every exit path.
type Subscription interface {
	Unsubscribe() error
}

type Message struct {
	Subject   string
	Data      []byte
	Timestamp time.Time
}

type NATSEventBus struct {
	conn *nats.Conn
}

func NewNATSEventBus(url string) (*NATSEventBus, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSEventBus{conn: conn}, nil
}

func (n *NATSEventBus) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.DebugContext(ctx, "Publishing event", "subject", subject, "data", string(payload))

	return n.conn.Publish(subject, payload)
}

func (n *NATSEventBus) Subscribe(subject string, handler func(msg *Message)) (Subscription, error) {
	return n.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(&Message{
			Subject:   msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
		})
	})
}

func (n *NATSEventBus) QueueSubscribe(subject, queue string, handler func(msg *Message)) (Subscription, error) {
	return n.conn.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		handler(&Message{
			Subject:   msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
		})
	})
}

func (n *NATSEventBus) Close() error {
	n.conn.Close()
	return nil
}

// Subjects
const (
	BookingCreated   = "booking.created"
	BookingCancelled = "booking.cancelled"

	MessageCreated = "message.created"

	PaymentOrderCreated = "payment.order.created"
	PayoutRequested     = "payout.requested"
)

// Event payloads
type BookingCreatedEvent struct {
	BookingID        string    `json:"booking_id"`
	ClientID         string    `json:"client_id"`
	ClientEmail      string    `json:"client_email"`
	ConsultantID     string    `json:"consultant_id"`
	ConsultantEmail  string    `json:"consultant_email"`
	ConsultationType string    `json:"consultation_type"`
	ScheduledAt      time.Time `json:"scheduled_at"`
	DurationMinutes  int       `json:"duration_minutes"`
	TotalAmount      string    `json:"total_amount"`
	CreatedAt        time.Time `json:"created_at"`
}

type BookingCancelledEvent struct {
	BookingID   string    `json:"booking_id"`
	CancelledAt time.Time `json:"cancelled_at"`
}

type MessageCreatedEvent struct {
	MessageID  string    `json:"message_id"`
	BookingID  string    `json:"booking_id"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

type PaymentOrderCreatedEvent struct {
	OrderID  string `json:"order_id"`
	UserID   string `json:"user_id"`
	Amount   int64  `json:"amount"` // minor units
	Currency string `json:"currency"`
}

type PayoutRequestedEvent struct {
	PayoutID     string `json:"payout_id"`
	ConsultantID string `json:"consultant_id"`
	Amount       int64  `json:"amount"` // minor units
	Currency     string `json:"currency"`
}
