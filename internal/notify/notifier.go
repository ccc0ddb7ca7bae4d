package notify

import (
	"encoding/json"
	"fmt"

	"github.com/consulthub/consulthub-api/pkg/events"
	"github.com/consulthub/consulthub-api/pkg/logger"
)

// Notifier listens for booking events and emails both parties. It runs
// on a queue subscription so only one instance mails per event.
type Notifier struct {
	mailer  *Mailer
	devMode bool
	subs    []events.Subscription
}

func NewNotifier(mailer *Mailer, devMode bool) *Notifier {
	return &Notifier{mailer: mailer, devMode: devMode}
}

func (n *Notifier) Start(bus events.Subscriber) error {
	created, err := bus.QueueSubscribe(events.BookingCreated, "notify", n.handleBookingCreated)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", events.BookingCreated, err)
	}
	n.subs = append(n.subs, created)

	cancelled, err := bus.QueueSubscribe(events.BookingCancelled, "notify", n.handleBookingCancelled)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", events.BookingCancelled, err)
	}
	n.subs = append(n.subs, cancelled)

	return nil
}

func (n *Notifier) Stop() {
	for _, sub := range n.subs {
		if err := sub.Unsubscribe(); err != nil {
			logger.Error("Failed to unsubscribe notifier", "error", err)
		}
	}
	n.subs = nil
}

func (n *Notifier) handleBookingCreated(msg *events.Message) {
	var event events.BookingCreatedEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		logger.Error("Failed to decode booking created event", "error", err)
		return
	}

	subject := "Your consultation is booked"
	text := fmt.Sprintf(
		"A %s consultation is scheduled for %s (%d minutes, total %s INR). Booking reference: %s.",
		event.ConsultationType,
		event.ScheduledAt.Format("Mon, 2 Jan 2006 15:04 MST"),
		event.DurationMinutes,
		event.TotalAmount,
		event.BookingID,
	)

	n.send(event.ClientEmail, subject, text)
	n.send(event.ConsultantEmail, "New consultation booked with you", text)
}

func (n *Notifier) handleBookingCancelled(msg *events.Message) {
	var event events.BookingCancelledEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		logger.Error("Failed to decode booking cancelled event", "error", err)
		return
	}

	// Cancellation mail needs participant emails which the event does
	// not carry. Logged for now; the realtime channel informs connected
	// participants immediately.
	logger.Info("Booking cancelled", "booking_id", event.BookingID, "cancelled_at", event.CancelledAt)
}

func (n *Notifier) send(toEmail, subject, text string) {
	if toEmail == "" {
		return
	}

	if n.devMode || !n.mailer.Enabled {
		logger.Info("Email suppressed (dev mode)", "to", toEmail, "subject", subject)
		return
	}

	if _, err := n.mailer.Send(toEmail, "", subject, text, ""); err != nil {
		logger.Error("Failed to send notification email", "error", err, "to", toEmail, "subject", subject)
	}
}
