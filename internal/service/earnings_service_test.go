package service

import (
	"context"
	"errors"
	"testing"

	"github.com/consulthub/consulthub-api/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// fakeEarningsLedger mirrors the withdrawal transaction's semantics: a
// successful provider call zeroes the unpaid balance, a failed one
// rolls back and leaves it withdrawable.
type fakeEarningsLedger struct {
	unpaid decimal.Decimal
}

func (f *fakeEarningsLedger) TotalShare(ctx context.Context, consultantID uuid.UUID) (decimal.Decimal, error) {
	return f.unpaid, nil
}

func (f *fakeEarningsLedger) WalletBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	return f.unpaid, nil
}

func (f *fakeEarningsLedger) SettleCompletion(ctx context.Context, bookingID, consultantID, ownerUserID uuid.UUID, share decimal.Decimal) (bool, error) {
	f.unpaid = f.unpaid.Add(share)
	return true, nil
}

func (f *fakeEarningsLedger) Withdraw(ctx context.Context, consultantID, ownerUserID uuid.UUID, currency string, send func(amount decimal.Decimal) (string, error)) (string, decimal.Decimal, error) {
	if !f.unpaid.IsPositive() {
		return "", decimal.Zero, nil
	}
	amount := f.unpaid
	payoutID, err := send(amount)
	if err != nil {
		return "", decimal.Zero, err
	}
	f.unpaid = decimal.Zero
	return payoutID, amount, nil
}

type fakePayoutProvider struct {
	calls []int64
	err   error
}

func (p *fakePayoutProvider) CreatePayout(ctx context.Context, amountMinor int64, currency string) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	p.calls = append(p.calls, amountMinor)
	return "po_test", nil
}

func payoutRateCards(consultantID, ownerID uuid.UUID) *MockRateCardRepo {
	cards := new(MockRateCardRepo)
	cards.On("GetByOwnerUserID", mock.Anything, ownerID).Return(&domain.RateCard{
		ConsultantID: consultantID,
		OwnerUserID:  ownerID,
	}, nil)
	return cards
}

func TestRequestPayoutPaysEachShareOnce(t *testing.T) {
	consultantID := uuid.New()
	ownerID := uuid.New()

	ledger := &fakeEarningsLedger{unpaid: dec("1500.00")}
	provider := &fakePayoutProvider{}
	bus := new(MockPublisher)
	bus.On("Publish", mock.Anything, "payout.requested", mock.Anything).Return(nil)

	svc := NewEarningsService(ledger, payoutRateCards(consultantID, ownerID), provider, bus)

	payoutID, amount, err := svc.RequestPayout(context.Background(), ownerID)
	require.NoError(t, err)
	assert.Equal(t, "po_test", payoutID)
	assert.True(t, amount.Equal(dec("1500.00")))

	// The shares were marked withdrawn; a repeat pays nothing.
	_, _, err = svc.RequestPayout(context.Background(), ownerID)
	assert.ErrorIs(t, err, ErrNothingToWithdraw)
	assert.Equal(t, []int64{150000}, provider.calls)
}

func TestRequestPayoutProviderFailureKeepsSharesWithdrawable(t *testing.T) {
	consultantID := uuid.New()
	ownerID := uuid.New()

	ledger := &fakeEarningsLedger{unpaid: dec("1500.00")}
	provider := &fakePayoutProvider{err: errors.New("gateway down")}
	bus := new(MockPublisher)
	bus.On("Publish", mock.Anything, "payout.requested", mock.Anything).Return(nil)

	svc := NewEarningsService(ledger, payoutRateCards(consultantID, ownerID), provider, bus)

	_, _, err := svc.RequestPayout(context.Background(), ownerID)
	require.Error(t, err)

	provider.err = nil
	_, amount, err := svc.RequestPayout(context.Background(), ownerID)
	require.NoError(t, err)
	assert.True(t, amount.Equal(dec("1500.00")))
	assert.Equal(t, []int64{150000}, provider.calls)
}

func TestRequestPayoutNothingAccrued(t *testing.T) {
	consultantID := uuid.New()
	ownerID := uuid.New()

	svc := NewEarningsService(&fakeEarningsLedger{}, payoutRateCards(consultantID, ownerID), &fakePayoutProvider{}, new(MockPublisher))

	_, _, err := svc.RequestPayout(context.Background(), ownerID)
	assert.ErrorIs(t, err, ErrNothingToWithdraw)
}
