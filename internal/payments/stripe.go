package payments

import (
	"context"
	"fmt"

	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/payout"
)

// StripePayouts sends consultant withdrawals through Stripe Payouts.
type StripePayouts struct {
	enabled bool
}

func NewStripePayouts(secretKey string) *StripePayouts {
	p := &StripePayouts{enabled: secretKey != ""}
	if p.enabled {
		stripe.Key = secretKey
	}
	return p
}

func (p *StripePayouts) CreatePayout(ctx context.Context, amountMinor int64, currency string) (string, error) {
	if !p.enabled {
		return "", ErrNotConfigured
	}

	params := &stripe.PayoutParams{
		Params:   stripe.Params{Context: ctx},
		Amount:   stripe.Int64(amountMinor),
		Currency: stripe.String(currency),
	}

	po, err := payout.New(params)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	return po.ID, nil
}
