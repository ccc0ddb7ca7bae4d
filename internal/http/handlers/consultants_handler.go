package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/consulthub/consulthub-api/internal/http/response"
	"github.com/consulthub/consulthub-api/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func (h *Handlers) ListConsultants(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	cards, err := h.rateCardRepo.List(r.Context(), limit, offset)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to list consultants", "error", err)
		response.InternalError(w, "Failed to list consultants")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"consultants": cards,
		"count":       len(cards),
	})
}

func (h *Handlers) GetConsultant(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid consultant ID")
		return
	}

	card, err := h.rateCardRepo.GetByConsultantID(r.Context(), id)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to load consultant", "error", err, "consultant_id", id)
		response.InternalError(w, "Failed to load consultant")
		return
	}
	if card == nil {
		response.NotFound(w, "Consultant not found")
		return
	}

	writeJSON(w, http.StatusOK, card)
}

type updateRatesReq struct {
	TextRate  decimal.Decimal `json:"text_rate"`
	VoiceRate decimal.Decimal `json:"voice_rate"`
	VideoRate decimal.Decimal `json:"video_rate"`
}

// UpdateMyRates changes the caller's base rates. Existing bookings keep
// their frozen amounts; only new quotes see the change.
func (h *Handlers) UpdateMyRates(w http.ResponseWriter, r *http.Request) {
	var in updateRatesReq
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if in.TextRate.IsNegative() || in.VoiceRate.IsNegative() || in.VideoRate.IsNegative() {
		response.BadRequest(w, "rates must be non-negative")
		return
	}

	userID := currentUserID(r)
	card, err := h.rateCardRepo.GetByOwnerUserID(r.Context(), userID)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to load consultant profile", "error", err)
		response.InternalError(w, "Failed to update rates")
		return
	}
	if card == nil {
		response.NotFound(w, "No consultant profile for this account")
		return
	}

	if err := h.rateCardRepo.UpdateRates(r.Context(), userID, in.TextRate, in.VoiceRate, in.VideoRate); err != nil {
		logger.ErrorContext(r.Context(), "Failed to update rates", "error", err)
		response.InternalError(w, "Failed to update rates")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
