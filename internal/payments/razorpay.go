package payments

import (
	"context"
	"fmt"
	"time"

	razorpay "github.com/razorpay/razorpay-go"
)

const orderCurrency = "INR"

// RazorpayGateway creates orders through the Razorpay Orders API.
type RazorpayGateway struct {
	client  *razorpay.Client
	enabled bool
}

func NewRazorpayGateway(keyID, keySecret string) *RazorpayGateway {
	g := &RazorpayGateway{enabled: keyID != "" && keySecret != ""}
	if g.enabled {
		g.client = razorpay.NewClient(keyID, keySecret)
	}
	return g
}

func (g *RazorpayGateway) CreateOrder(ctx context.Context, amountMajor int64) (*Order, error) {
	if !g.enabled {
		return nil, ErrNotConfigured
	}

	data := map[string]interface{}{
		"amount":   amountMajor * 100, // paise
		"currency": orderCurrency,
		"receipt":  fmt.Sprintf("receipt_%d", time.Now().UnixMilli()),
	}

	body, err := g.client.Order.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}

	order := &Order{Currency: orderCurrency}
	if id, ok := body["id"].(string); ok {
		order.ID = id
	}
	if amount, ok := body["amount"].(float64); ok {
		order.Amount = int64(amount)
	}
	if currency, ok := body["currency"].(string); ok {
		order.Currency = currency
	}
	if order.ID == "" {
		return nil, fmt.Errorf("%w: order id missing in gateway response", ErrGatewayUnavailable)
	}
	return order, nil
}
