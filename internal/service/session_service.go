package service

import (
	"context"
	"fmt"
	"time"

	"github.com/consulthub/consulthub-api/internal/domain"
	"github.com/consulthub/consulthub-api/internal/repo/postgres"
	"github.com/consulthub/consulthub-api/internal/rtc"
	"github.com/consulthub/consulthub-api/internal/schedule"
	"github.com/consulthub/consulthub-api/internal/session"
	"github.com/google/uuid"
)

// SessionDescriptor is what a session page needs to render and join:
// the join affordance, the media channel coordinates, and who the peer
// is. Joinable is time-relative and recomputed on every call.
type SessionDescriptor struct {
	BookingID        uuid.UUID               `json:"booking_id"`
	ChannelName      string                  `json:"channel_name"`
	ConsultationType domain.ConsultationType `json:"consultation_type"`
	Status           domain.BookingStatus    `json:"status"`
	ScheduledAt      time.Time               `json:"scheduled_at"`
	Joinable         bool                    `json:"joinable"`
	UID              uint32                  `json:"uid"`
	PeerUserID       uuid.UUID               `json:"peer_user_id"`
	PeerName         string                  `json:"peer_name"`
}

type SessionService interface {
	// Access runs the participant check for a booking and returns the
	// resolved context. Returns session.ErrForbidden for non-participants.
	Access(ctx context.Context, bookingID, userID uuid.UUID) (session.AccessContext, *domain.Booking, error)
	Describe(ctx context.Context, bookingID, userID uuid.UUID, now time.Time) (*SessionDescriptor, error)
	IssueToken(ctx context.Context, bookingID, userID uuid.UUID, now time.Time) (string, uint32, error)
}

type sessionService struct {
	bookingRepo  postgres.BookingRepository
	rateCardRepo postgres.RateCardRepository
	userRepo     postgres.UserRepository
	tokens       *rtc.TokenBuilder
}

func NewSessionService(
	bookingRepo postgres.BookingRepository,
	rateCardRepo postgres.RateCardRepository,
	userRepo postgres.UserRepository,
	tokens *rtc.TokenBuilder,
) SessionService {
	return &sessionService{
		bookingRepo:  bookingRepo,
		rateCardRepo: rateCardRepo,
		userRepo:     userRepo,
		tokens:       tokens,
	}
}

func (s *sessionService) Access(ctx context.Context, bookingID, userID uuid.UUID) (session.AccessContext, *domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return session.AccessContext{}, nil, fmt.Errorf("failed to load booking: %w", err)
	}
	if booking == nil {
		return session.AccessContext{}, nil, ErrNotFound
	}

	card, err := s.rateCardRepo.GetByConsultantID(ctx, booking.ConsultantID)
	if err != nil {
		return session.AccessContext{}, nil, fmt.Errorf("failed to load consultant profile: %w", err)
	}

	access := session.AccessContext{
		RequestingUserID: userID,
		ClientID:         booking.ClientID,
	}
	if card != nil {
		access.ConsultantUserID = card.OwnerUserID
	}

	if err := session.Authorize(access); err != nil {
		return session.AccessContext{}, nil, err
	}
	return access, booking, nil
}

func (s *sessionService) Describe(ctx context.Context, bookingID, userID uuid.UUID, now time.Time) (*SessionDescriptor, error) {
	access, booking, err := s.Access(ctx, bookingID, userID)
	if err != nil {
		return nil, err
	}

	desc := &SessionDescriptor{
		BookingID:        booking.ID,
		ChannelName:      booking.ID.String(),
		ConsultationType: booking.ConsultationType,
		Status:           booking.Status,
		ScheduledAt:      booking.ScheduledAt,
		Joinable:         schedule.Joinable(booking.ScheduledAt, now) && !booking.Status.Terminal(),
		UID:              session.NumericUID(userID.String()),
	}

	if userID == access.ClientID {
		desc.PeerUserID = access.ConsultantUserID
	} else {
		desc.PeerUserID = access.ClientID
	}
	if peer, err := s.userRepo.FindByID(ctx, desc.PeerUserID); err == nil && peer != nil {
		desc.PeerName = peer.FullName
	}

	return desc, nil
}

// IssueToken mints a media admission token for a participant. The
// participant check runs first; the token builder itself performs no
// authorization.
func (s *sessionService) IssueToken(ctx context.Context, bookingID, userID uuid.UUID, now time.Time) (string, uint32, error) {
	_, booking, err := s.Access(ctx, bookingID, userID)
	if err != nil {
		return "", 0, err
	}

	uid := session.NumericUID(userID.String())
	token, err := s.tokens.Build(booking.ID.String(), uid, now)
	if err != nil {
		return "", 0, err
	}
	return token, uid, nil
}
