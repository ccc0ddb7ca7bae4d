package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/consulthub/consulthub-api/internal/domain"
	"github.com/consulthub/consulthub-api/internal/http/response"
	"github.com/consulthub/consulthub-api/internal/pricing"
	"github.com/consulthub/consulthub-api/internal/service"
	"github.com/consulthub/consulthub-api/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type quoteReq struct {
	ConsultantID     uuid.UUID `json:"consultant_id"`
	ConsultationType string    `json:"consultation_type"`
	DurationMinutes  int       `json:"duration_minutes"`
}

// QuoteBooking prices a prospective booking without persisting anything.
func (h *Handlers) QuoteBooking(w http.ResponseWriter, r *http.Request) {
	var in quoteReq
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	t, ok := domain.ParseConsultationType(in.ConsultationType)
	if !ok {
		response.BadRequest(w, "consultation_type must be Text, Voice or Video")
		return
	}
	if in.ConsultantID == uuid.Nil {
		response.BadRequest(w, "consultant_id is required")
		return
	}

	quote, err := h.bookingService.Quote(r.Context(), in.ConsultantID, t, in.DurationMinutes)
	if err != nil {
		h.writeQuoteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, quote)
}

func (h *Handlers) writeQuoteError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrConsultantNotFound):
		response.NotFound(w, "Consultant not found")
	case errors.Is(err, pricing.ErrInvalidDuration),
		errors.Is(err, pricing.ErrUnknownType),
		errors.Is(err, pricing.ErrNegativeRate):
		response.BadRequest(w, err.Error())
	default:
		logger.ErrorContext(r.Context(), "Failed to price booking", "error", err)
		response.InternalError(w, "Failed to price booking")
	}
}

// CreateBooking persists a booking priced from the consultant's current
// rate card. The quoted amounts are frozen on the stored row.
func (h *Handlers) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req domain.BookingCreateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if _, ok := domain.ParseConsultationType(string(req.ConsultationType)); !ok {
		response.BadRequest(w, "consultation_type must be Text, Voice or Video")
		return
	}
	if req.ConsultantID == uuid.Nil {
		response.BadRequest(w, "consultant_id is required")
		return
	}

	booking, err := h.bookingService.Create(r.Context(), currentUserID(r), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrScheduledInPast):
			response.WriteError(w, http.StatusBadRequest, "scheduled_at must be in the future", response.CodePastDateTime)
		case errors.Is(err, service.ErrConsultantNotFound):
			response.NotFound(w, "Consultant not found")
		case errors.Is(err, pricing.ErrInvalidDuration), errors.Is(err, pricing.ErrNegativeRate):
			response.BadRequest(w, err.Error())
		default:
			logger.ErrorContext(r.Context(), "Failed to create booking", "error", err)
			response.InternalError(w, "Failed to create booking")
		}
		return
	}

	writeJSON(w, http.StatusCreated, booking)
}

// ListBookings returns the caller's bookings partitioned into upcoming
// and past. ?role=consultant lists the consultant side.
func (h *Handlers) ListBookings(w http.ResponseWriter, r *http.Request) {
	asConsultant := r.URL.Query().Get("role") == "consultant"

	classification, err := h.bookingService.ListForUser(r.Context(), currentUserID(r), asConsultant, time.Now())
	if err != nil {
		if errors.Is(err, service.ErrConsultantNotFound) {
			response.NotFound(w, "No consultant profile for this account")
			return
		}
		logger.ErrorContext(r.Context(), "Failed to list bookings", "error", err)
		response.InternalError(w, "Failed to list bookings")
		return
	}

	writeJSON(w, http.StatusOK, classification)
}

func (h *Handlers) GetBooking(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid booking ID")
		return
	}

	booking, err := h.bookingService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.NotFound(w, "Booking not found")
			return
		}
		logger.ErrorContext(r.Context(), "Failed to load booking", "error", err, "booking_id", id)
		response.InternalError(w, "Failed to load booking")
		return
	}

	// Bookings are only visible to their participants.
	if _, _, err := h.sessionService.Access(r.Context(), id, currentUserID(r)); err != nil {
		response.NotFound(w, "Booking not found")
		return
	}

	writeJSON(w, http.StatusOK, booking)
}

func (h *Handlers) CancelBooking(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid booking ID")
		return
	}

	if err := h.bookingService.Cancel(r.Context(), id, currentUserID(r)); err != nil {
		h.writeStatusChangeError(w, r, err, id, "cancel")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": string(domain.BookingCancelled)})
}

// CompleteBooking is the consultant's side of closing out a session; it
// also settles the consultant's earnings share.
func (h *Handlers) CompleteBooking(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid booking ID")
		return
	}

	if err := h.bookingService.Complete(r.Context(), id, currentUserID(r)); err != nil {
		h.writeStatusChangeError(w, r, err, id, "complete")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": string(domain.BookingCompleted)})
}

func (h *Handlers) writeStatusChangeError(w http.ResponseWriter, r *http.Request, err error, id uuid.UUID, verb string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		response.NotFound(w, "Booking not found")
	case errors.Is(err, service.ErrTerminalStatus):
		response.Conflict(w, "Booking is already in a terminal status")
	default:
		logger.ErrorContext(r.Context(), "Failed to "+verb+" booking", "error", err, "booking_id", id)
		response.InternalError(w, "Failed to "+verb+" booking")
	}
}
