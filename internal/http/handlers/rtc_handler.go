package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/consulthub/consulthub-api/internal/http/response"
	"github.com/consulthub/consulthub-api/internal/rtc"
	"github.com/consulthub/consulthub-api/internal/service"
	"github.com/consulthub/consulthub-api/internal/session"
	"github.com/consulthub/consulthub-api/pkg/logger"
	"github.com/google/uuid"
)

type rtcTokenReq struct {
	ChannelName string `json:"channelName"`
	UserID      string `json:"userId"`
}

// CreateRTCToken is the raw token endpoint: a channel name plus a
// numeric participant id in, a publisher token out. Channel names are
// booking ids, so the caller must be a participant of that booking.
func (h *Handlers) CreateRTCToken(w http.ResponseWriter, r *http.Request) {
	var in rtcTokenReq
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if strings.TrimSpace(in.ChannelName) == "" || strings.TrimSpace(in.UserID) == "" {
		response.BadRequest(w, "channelName and userId are required")
		return
	}

	uid, err := strconv.ParseUint(in.UserID, 10, 32)
	if err != nil {
		response.BadRequest(w, "userId must be a numeric participant id")
		return
	}

	if bookingID, err := uuid.Parse(in.ChannelName); err == nil && h.sessionService != nil {
		if _, _, err := h.sessionService.Access(r.Context(), bookingID, currentUserID(r)); err != nil {
			switch {
			case errors.Is(err, session.ErrForbidden):
				response.Forbidden(w, "Only the booking's participants may request its channel token")
			case errors.Is(err, service.ErrNotFound):
				response.NotFound(w, "Booking not found")
			default:
				logger.ErrorContext(r.Context(), "Failed to authorize token request", "error", err)
				response.InternalError(w, "Failed to generate token")
			}
			return
		}
	}

	token, err := h.tokens.Build(in.ChannelName, uint32(uid), time.Now())
	if err != nil {
		if errors.Is(err, rtc.ErrNotConfigured) {
			response.WriteError(w, http.StatusBadRequest, "Video credentials are not configured", response.CodeConfigError)
			return
		}
		logger.ErrorContext(r.Context(), "Failed to mint rtc token", "error", err)
		response.InternalError(w, "Failed to generate token")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}
