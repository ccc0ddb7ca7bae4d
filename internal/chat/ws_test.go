package chat

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/consulthub/consulthub-api/internal/domain"
	"github.com/google/uuid"
)

type failingMessageRepo struct{ err error }

func (r *failingMessageRepo) Insert(ctx context.Context, bookingID, senderID, receiverID uuid.UUID, content string) (*domain.Message, error) {
	return nil, r.err
}

func (r *failingMessageRepo) ListByBooking(ctx context.Context, bookingID uuid.UUID, limit int) ([]domain.Message, error) {
	return nil, nil
}

type countingPublisher struct{ published int }

func (p *countingPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	p.published++
	return nil
}

func (p *countingPublisher) Close() error { return nil }

func TestDeliverReportsPersistenceFailureToSender(t *testing.T) {
	bus := &countingPublisher{}
	h := &Handler{
		hub:      NewHub(),
		messages: &failingMessageRepo{err: errors.New("connection reset")},
		bus:      bus,
	}

	c := newTestConn(uuid.New(), 1)
	h.deliver(c, uuid.New(), "hello")

	if bus.published != 0 {
		t.Fatalf("unsaved message must not be published, got %d events", bus.published)
	}

	select {
	case frame := <-c.send:
		var ev Event
		if err := json.Unmarshal(frame, &ev); err != nil {
			t.Fatalf("failure frame is not JSON: %v", err)
		}
		if ev.Type != EventMessageFailed {
			t.Fatalf("expected %s frame, got %s", EventMessageFailed, ev.Type)
		}
	default:
		t.Fatal("sender received no failure frame")
	}
}
