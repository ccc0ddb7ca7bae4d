// Package pricing derives billable rates and booking totals from a
// consultant's stored base rates. Amounts are decimal throughout; the
// two derived fields on a quote are computed once and then frozen, so a
// rate-card change between quote and confirmation can never alter what
// the client was shown.
package pricing

import (
	"errors"

	"github.com/consulthub/consulthub-api/internal/domain"
	"github.com/shopspring/decimal"
)

// PlatformMarkup is the fixed commission added on top of a consultant's
// base rate. A constant rather than config so a misconfigured
// environment cannot change quoted prices.
var PlatformMarkup = decimal.RequireFromString("0.20")

var (
	ErrNegativeRate    = errors.New("base rate must be non-negative")
	ErrInvalidDuration = errors.New("duration must be at least one minute")
	ErrUnknownType     = errors.New("unknown consultation type")
)

// RatePerMinute computes baseRate * (1 + markup), exactly. Rounding
// belongs to the totals and the persistence boundary, not the rate
// itself.
func RatePerMinute(baseRate, markup decimal.Decimal) decimal.Decimal {
	return baseRate.Mul(decimal.NewFromInt(1).Add(markup))
}

// Total computes ratePerMinute * durationMinutes, rounded to two
// decimal places (round half up).
func Total(ratePerMinute decimal.Decimal, durationMinutes int) decimal.Decimal {
	return ratePerMinute.Mul(decimal.NewFromInt(int64(durationMinutes))).Round(2)
}

// ConsultantShare strips the platform markup back out of a charged
// total: the consultant earns the base amount, the platform keeps the
// markup.
func ConsultantShare(totalAmount decimal.Decimal) decimal.Decimal {
	return totalAmount.Div(decimal.NewFromInt(1).Add(PlatformMarkup)).Round(2)
}

// Quote is the ephemeral price offer shown to a client before
// confirmation. It is built once from a single rate-card read and
// passed by value into the persistence call; nothing re-derives its
// fields afterwards.
type Quote struct {
	ConsultationType domain.ConsultationType `json:"consultation_type"`
	RatePerMinute    decimal.Decimal         `json:"rate_per_minute"`
	DurationMinutes  int                     `json:"duration_minutes"`
	TotalAmount      decimal.Decimal         `json:"total_amount"`
}

// NewQuote derives a quote from one rate-card snapshot.
func NewQuote(card domain.RateCard, t domain.ConsultationType, durationMinutes int) (Quote, error) {
	if _, ok := domain.ParseConsultationType(string(t)); !ok {
		return Quote{}, ErrUnknownType
	}
	if durationMinutes < 1 {
		return Quote{}, ErrInvalidDuration
	}

	base := card.BaseRate(t)
	if base.IsNegative() {
		return Quote{}, ErrNegativeRate
	}

	rate := RatePerMinute(base, PlatformMarkup)
	return Quote{
		ConsultationType: t,
		RatePerMinute:    rate,
		DurationMinutes:  durationMinutes,
		TotalAmount:      Total(rate, durationMinutes),
	}, nil
}
