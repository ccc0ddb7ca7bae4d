package service

import (
	"context"
	"fmt"

	"github.com/consulthub/consulthub-api/internal/payments"
	"github.com/consulthub/consulthub-api/internal/repo/postgres"
	"github.com/consulthub/consulthub-api/pkg/events"
	"github.com/consulthub/consulthub-api/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const payoutCurrency = "inr"

type EarningsService interface {
	Total(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)
	WalletBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)
	RequestPayout(ctx context.Context, userID uuid.UUID) (string, decimal.Decimal, error)
}

type earningsService struct {
	earningsRepo postgres.EarningsRepository
	rateCardRepo postgres.RateCardRepository
	payouts      payments.PayoutProvider
	eventBus     events.Publisher
}

func NewEarningsService(
	earningsRepo postgres.EarningsRepository,
	rateCardRepo postgres.RateCardRepository,
	payouts payments.PayoutProvider,
	eventBus events.Publisher,
) EarningsService {
	return &earningsService{
		earningsRepo: earningsRepo,
		rateCardRepo: rateCardRepo,
		payouts:      payouts,
		eventBus:     eventBus,
	}
}

func (s *earningsService) consultantID(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	card, err := s.rateCardRepo.GetByOwnerUserID(ctx, userID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to load consultant profile: %w", err)
	}
	if card == nil {
		return uuid.Nil, ErrConsultantNotFound
	}
	return card.ConsultantID, nil
}

// WalletBalance works for any account, not just consultants.
func (s *earningsService) WalletBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	return s.earningsRepo.WalletBalance(ctx, userID)
}

func (s *earningsService) Total(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	consultantID, err := s.consultantID(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return s.earningsRepo.TotalShare(ctx, consultantID)
}

// RequestPayout sends the consultant's unwithdrawn share through the
// payout provider, in minor units. The repository marks those earnings
// withdrawn in the same transaction, so a repeated request pays only
// what accrued since.
func (s *earningsService) RequestPayout(ctx context.Context, userID uuid.UUID) (string, decimal.Decimal, error) {
	consultantID, err := s.consultantID(ctx, userID)
	if err != nil {
		return "", decimal.Zero, err
	}

	payoutID, amount, err := s.earningsRepo.Withdraw(ctx, consultantID, userID, payoutCurrency,
		func(amount decimal.Decimal) (string, error) {
			return s.payouts.CreatePayout(ctx, amount.Mul(decimal.NewFromInt(100)).IntPart(), payoutCurrency)
		})
	if err != nil {
		return "", decimal.Zero, err
	}
	if !amount.IsPositive() {
		return "", decimal.Zero, ErrNothingToWithdraw
	}

	event := events.PayoutRequestedEvent{
		PayoutID:     payoutID,
		ConsultantID: consultantID.String(),
		Amount:       amount.Mul(decimal.NewFromInt(100)).IntPart(),
		Currency:     payoutCurrency,
	}
	if err := s.eventBus.Publish(ctx, events.PayoutRequested, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish payout requested event", "error", err, "payout_id", payoutID)
	}

	return payoutID, amount, nil
}
