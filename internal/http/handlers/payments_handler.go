package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/consulthub/consulthub-api/internal/http/response"
	"github.com/consulthub/consulthub-api/internal/payments"
	"github.com/consulthub/consulthub-api/internal/service"
	"github.com/consulthub/consulthub-api/pkg/events"
	"github.com/consulthub/consulthub-api/pkg/logger"
)

type orderReq struct {
	Amount int64 `json:"amount"`
}

// CreatePaymentOrder asks the gateway for a charge order. Amount
// arrives in major currency units; the gateway order carries minor
// units. Upstream failure is reported as 502 so clients can tell it
// apart from their own bad input.
func (h *Handlers) CreatePaymentOrder(w http.ResponseWriter, r *http.Request) {
	var in orderReq
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if in.Amount <= 0 {
		response.BadRequest(w, "amount must be a positive number of rupees")
		return
	}

	order, err := h.orders.CreateOrder(r.Context(), in.Amount)
	if err != nil {
		switch {
		case errors.Is(err, payments.ErrNotConfigured):
			response.WriteError(w, http.StatusBadRequest, "Payment credentials are not configured", response.CodeConfigError)
		case errors.Is(err, payments.ErrGatewayUnavailable):
			logger.ErrorContext(r.Context(), "Payment gateway order failed", "error", err)
			response.BadGateway(w, "Payment gateway unavailable")
		default:
			logger.ErrorContext(r.Context(), "Failed to create payment order", "error", err)
			response.InternalError(w, "Failed to create payment order")
		}
		return
	}

	if h.bus != nil {
		event := events.PaymentOrderCreatedEvent{
			OrderID:  order.ID,
			UserID:   currentUserID(r).String(),
			Amount:   order.Amount,
			Currency: order.Currency,
		}
		if err := h.bus.Publish(r.Context(), events.PaymentOrderCreated, event); err != nil {
			logger.ErrorContext(r.Context(), "Failed to publish payment order event", "error", err, "order_id", order.ID)
		}
	}

	writeJSON(w, http.StatusOK, order)
}

// GetWallet returns the caller's wallet balance.
func (h *Handlers) GetWallet(w http.ResponseWriter, r *http.Request) {
	balance, err := h.earningsService.WalletBalance(r.Context(), currentUserID(r))
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to load wallet balance", "error", err)
		response.InternalError(w, "Failed to load wallet balance")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"balance": balance.StringFixed(2)})
}

// GetEarnings returns the consultant's accrued share.
func (h *Handlers) GetEarnings(w http.ResponseWriter, r *http.Request) {
	total, err := h.earningsService.Total(r.Context(), currentUserID(r))
	if err != nil {
		if errors.Is(err, service.ErrConsultantNotFound) {
			response.NotFound(w, "No consultant profile for this account")
			return
		}
		logger.ErrorContext(r.Context(), "Failed to load earnings", "error", err)
		response.InternalError(w, "Failed to load earnings")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"total": total.StringFixed(2)})
}

// RequestPayout pays out the consultant's unwithdrawn share.
func (h *Handlers) RequestPayout(w http.ResponseWriter, r *http.Request) {
	payoutID, amount, err := h.earningsService.RequestPayout(r.Context(), currentUserID(r))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrConsultantNotFound):
			response.NotFound(w, "No consultant profile for this account")
		case errors.Is(err, service.ErrNothingToWithdraw):
			response.BadRequest(w, "No earnings available to withdraw")
		case errors.Is(err, payments.ErrNotConfigured):
			response.WriteError(w, http.StatusBadRequest, "Payout credentials are not configured", response.CodeConfigError)
		case errors.Is(err, payments.ErrGatewayUnavailable):
			logger.ErrorContext(r.Context(), "Payout request failed upstream", "error", err)
			response.BadGateway(w, "Payout provider unavailable")
		default:
			logger.ErrorContext(r.Context(), "Failed to request payout", "error", err)
			response.InternalError(w, "Failed to request payout")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"payout_id": payoutID,
		"amount":    amount.StringFixed(2),
	})
}
