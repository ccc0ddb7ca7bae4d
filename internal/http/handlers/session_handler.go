package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/consulthub/consulthub-api/internal/http/response"
	"github.com/consulthub/consulthub-api/internal/rtc"
	"github.com/consulthub/consulthub-api/internal/service"
	"github.com/consulthub/consulthub-api/internal/session"
	"github.com/consulthub/consulthub-api/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// GetSession describes the live-session view of a booking for one of
// its participants: channel coordinates, join window state, and peer.
func (h *Handlers) GetSession(w http.ResponseWriter, r *http.Request) {
	bookingID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid booking ID")
		return
	}

	desc, err := h.sessionService.Describe(r.Context(), bookingID, currentUserID(r), time.Now())
	if err != nil {
		h.writeSessionError(w, r, err, bookingID)
		return
	}

	writeJSON(w, http.StatusOK, desc)
}

// GetSessionToken mints a media admission token for a participant of a
// joinable session.
func (h *Handlers) GetSessionToken(w http.ResponseWriter, r *http.Request) {
	bookingID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid booking ID")
		return
	}

	token, uid, err := h.sessionService.IssueToken(r.Context(), bookingID, currentUserID(r), time.Now())
	if err != nil {
		h.writeSessionError(w, r, err, bookingID)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token":        token,
		"uid":          uid,
		"channel_name": bookingID.String(),
		"app_id":       h.tokens.AppID(),
		"expires_in":   int(rtc.TokenTTL.Seconds()),
	})
}

func (h *Handlers) writeSessionError(w http.ResponseWriter, r *http.Request, err error, bookingID uuid.UUID) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		response.NotFound(w, "Booking not found")
	case errors.Is(err, session.ErrForbidden):
		response.Forbidden(w, "Only the booking's participants may access its session")
	case errors.Is(err, rtc.ErrNotConfigured):
		response.WriteError(w, http.StatusBadRequest, "Video credentials are not configured", response.CodeConfigError)
	default:
		logger.ErrorContext(r.Context(), "Session request failed", "error", err, "booking_id", bookingID)
		response.InternalError(w, "Failed to load session")
	}
}
