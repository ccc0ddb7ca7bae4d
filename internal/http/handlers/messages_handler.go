package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/consulthub/consulthub-api/internal/http/response"
	"github.com/consulthub/consulthub-api/internal/service"
	"github.com/consulthub/consulthub-api/internal/session"
	"github.com/consulthub/consulthub-api/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// ListMessages returns a booking's chat history, oldest first. Only the
// booking's participants may read it.
func (h *Handlers) ListMessages(w http.ResponseWriter, r *http.Request) {
	bookingID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid booking ID")
		return
	}

	if _, _, err := h.sessionService.Access(r.Context(), bookingID, currentUserID(r)); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			response.NotFound(w, "Booking not found")
		case errors.Is(err, session.ErrForbidden):
			response.Forbidden(w, "Only the booking's participants may read its messages")
		default:
			logger.ErrorContext(r.Context(), "Failed to authorize message read", "error", err, "booking_id", bookingID)
			response.InternalError(w, "Failed to load messages")
		}
		return
	}

	limit := 200
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	messages, err := h.messageRepo.ListByBooking(r.Context(), bookingID, limit)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to list messages", "error", err, "booking_id", bookingID)
		response.InternalError(w, "Failed to load messages")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"messages": messages,
		"count":    len(messages),
	})
}
