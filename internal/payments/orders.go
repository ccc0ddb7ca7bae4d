// Package payments fronts the two money rails: gateway order creation
// for wallet top-ups (amounts arrive in major units and are charged in
// minor units) and consultant payouts.
package payments

import (
	"context"
	"errors"
)

// Order is the gateway's order object, amounts in minor units.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

var (
	// ErrNotConfigured: gateway credentials are absent. Fatal for the
	// request only; the message never carries secret values.
	ErrNotConfigured = errors.New("payment credentials are not configured")
	// ErrGatewayUnavailable: the upstream gateway rejected or failed
	// the call. Mapped to 502 at the HTTP surface.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
)

// OrderCreator creates a charge order for an amount given in the
// display currency's major unit.
type OrderCreator interface {
	CreateOrder(ctx context.Context, amountMajor int64) (*Order, error)
}

// PayoutProvider moves accrued earnings out to a consultant. Amount in
// minor units; returns the provider's payout id.
type PayoutProvider interface {
	CreatePayout(ctx context.Context, amountMinor int64, currency string) (string, error)
}
