package service

import (
	"context"
	"fmt"
	"time"

	"github.com/consulthub/consulthub-api/internal/domain"
	"github.com/consulthub/consulthub-api/internal/pricing"
	"github.com/consulthub/consulthub-api/internal/repo/postgres"
	"github.com/consulthub/consulthub-api/internal/schedule"
	"github.com/consulthub/consulthub-api/pkg/events"
	"github.com/consulthub/consulthub-api/pkg/logger"
	"github.com/google/uuid"
)

type BookingService interface {
	Quote(ctx context.Context, consultantID uuid.UUID, t domain.ConsultationType, durationMinutes int) (pricing.Quote, error)
	Create(ctx context.Context, clientID uuid.UUID, req *domain.BookingCreateReq) (*domain.Booking, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	ListForUser(ctx context.Context, userID uuid.UUID, asConsultant bool, now time.Time) (schedule.Classification, error)
	Cancel(ctx context.Context, id, requestingUserID uuid.UUID) error
	Complete(ctx context.Context, id, requestingUserID uuid.UUID) error
}

type bookingService struct {
	bookingRepo  postgres.BookingRepository
	rateCardRepo postgres.RateCardRepository
	userRepo     postgres.UserRepository
	earningsRepo postgres.EarningsRepository
	eventBus     events.Publisher
}

func NewBookingService(
	bookingRepo postgres.BookingRepository,
	rateCardRepo postgres.RateCardRepository,
	userRepo postgres.UserRepository,
	earningsRepo postgres.EarningsRepository,
	eventBus events.Publisher,
) BookingService {
	return &bookingService{
		bookingRepo:  bookingRepo,
		rateCardRepo: rateCardRepo,
		userRepo:     userRepo,
		earningsRepo: earningsRepo,
		eventBus:     eventBus,
	}
}

// Quote reads the consultant's rate card once and derives the offer
// from that single snapshot.
func (s *bookingService) Quote(ctx context.Context, consultantID uuid.UUID, t domain.ConsultationType, durationMinutes int) (pricing.Quote, error) {
	card, err := s.rateCardRepo.GetByConsultantID(ctx, consultantID)
	if err != nil {
		return pricing.Quote{}, fmt.Errorf("failed to load rate card: %w", err)
	}
	if card == nil {
		return pricing.Quote{}, ErrConsultantNotFound
	}
	return pricing.NewQuote(*card, t, durationMinutes)
}

// Create re-derives the quote from one rate-card read and persists the
// booking with those frozen amounts.
func (s *bookingService) Create(ctx context.Context, clientID uuid.UUID, req *domain.BookingCreateReq) (*domain.Booking, error) {
	if req.ScheduledAt.IsZero() || !req.ScheduledAt.After(time.Now()) {
		return nil, ErrScheduledInPast
	}

	quote, err := s.Quote(ctx, req.ConsultantID, req.ConsultationType, req.DurationMinutes)
	if err != nil {
		return nil, err
	}

	booking, err := s.bookingRepo.Create(ctx, clientID, req,
		quote.RatePerMinute.StringFixed(2), quote.TotalAmount.StringFixed(2))
	if err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	s.publishCreated(ctx, booking)
	return booking, nil
}

func (s *bookingService) publishCreated(ctx context.Context, b *domain.Booking) {
	event := events.BookingCreatedEvent{
		BookingID:        b.ID.String(),
		ClientID:         b.ClientID.String(),
		ConsultantID:     b.ConsultantID.String(),
		ConsultationType: string(b.ConsultationType),
		ScheduledAt:      b.ScheduledAt,
		DurationMinutes:  b.DurationMinutes,
		TotalAmount:      b.TotalAmount.StringFixed(2),
		CreatedAt:        b.CreatedAt,
	}

	if client, err := s.userRepo.FindByID(ctx, b.ClientID); err == nil && client != nil {
		event.ClientEmail = client.Email
	}
	if card, err := s.rateCardRepo.GetByConsultantID(ctx, b.ConsultantID); err == nil && card != nil {
		if owner, err := s.userRepo.FindByID(ctx, card.OwnerUserID); err == nil && owner != nil {
			event.ConsultantEmail = owner.Email
		}
	}

	if err := s.eventBus.Publish(ctx, events.BookingCreated, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish booking created event", "error", err, "booking_id", b.ID)
	}
}

func (s *bookingService) Get(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, ErrNotFound
	}
	return booking, nil
}

// ListForUser loads the caller's bookings, already sorted descending by
// scheduled time, and partitions them for display.
func (s *bookingService) ListForUser(ctx context.Context, userID uuid.UUID, asConsultant bool, now time.Time) (schedule.Classification, error) {
	var (
		bookings []domain.Booking
		err      error
	)

	if asConsultant {
		card, cardErr := s.rateCardRepo.GetByOwnerUserID(ctx, userID)
		if cardErr != nil {
			return schedule.Classification{}, cardErr
		}
		if card == nil {
			return schedule.Classification{}, ErrConsultantNotFound
		}
		bookings, err = s.bookingRepo.ListByConsultant(ctx, card.ConsultantID, 200, 0)
	} else {
		bookings, err = s.bookingRepo.ListByClient(ctx, userID, 200, 0)
	}
	if err != nil {
		return schedule.Classification{}, fmt.Errorf("failed to list bookings: %w", err)
	}

	return schedule.Classify(bookings, now), nil
}

// Cancel moves a booking to cancelled if the requester is one of its
// participants and the booking is not already terminal.
func (s *bookingService) Cancel(ctx context.Context, id, requestingUserID uuid.UUID) error {
	booking, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	card, err := s.rateCardRepo.GetByConsultantID(ctx, booking.ConsultantID)
	if err != nil {
		return err
	}
	consultantUser := uuid.Nil
	if card != nil {
		consultantUser = card.OwnerUserID
	}
	if requestingUserID != booking.ClientID && requestingUserID != consultantUser {
		return ErrNotFound // don't reveal other users' bookings
	}

	updated, err := s.bookingRepo.UpdateStatus(ctx, id, domain.BookingCancelled)
	if err != nil {
		return fmt.Errorf("failed to cancel booking: %w", err)
	}
	if !updated {
		return ErrTerminalStatus
	}

	event := events.BookingCancelledEvent{BookingID: id.String(), CancelledAt: time.Now()}
	if err := s.eventBus.Publish(ctx, events.BookingCancelled, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish booking cancelled event", "error", err, "booking_id", id)
	}
	return nil
}

// Complete marks a booking completed and settles the consultant's
// share: the charged total minus the platform markup, recorded as an
// earning and credited to the consultant's wallet. Only the consultant
// who owns the booking may complete it.
func (s *bookingService) Complete(ctx context.Context, id, requestingUserID uuid.UUID) error {
	booking, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	card, err := s.rateCardRepo.GetByConsultantID(ctx, booking.ConsultantID)
	if err != nil {
		return err
	}
	if card == nil || card.OwnerUserID != requestingUserID {
		return ErrNotFound
	}

	// Status flip and settlement commit together; a failure leaves the
	// booking non-terminal so the consultant can retry.
	share := pricing.ConsultantShare(booking.TotalAmount)
	settled, err := s.earningsRepo.SettleCompletion(ctx, id, booking.ConsultantID, card.OwnerUserID, share)
	if err != nil {
		return fmt.Errorf("failed to settle booking completion: %w", err)
	}
	if !settled {
		return ErrTerminalStatus
	}

	return nil
}
