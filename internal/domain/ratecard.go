package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RateCard holds a consultant's per-minute base rates, one per
// consultation type, before platform markup. Owned by the consultant
// profile and read-only to clients.
type RateCard struct {
	ConsultantID uuid.UUID       `json:"consultant_id"`
	OwnerUserID  uuid.UUID       `json:"user_id"`
	FullName     string          `json:"full_name"`
	Title        string          `json:"title"`
	TextRate     decimal.Decimal `json:"text_rate"`
	VoiceRate    decimal.Decimal `json:"voice_rate"`
	VideoRate    decimal.Decimal `json:"video_rate"`
}

func (c RateCard) BaseRate(t ConsultationType) decimal.Decimal {
	switch t {
	case ConsultationVoice:
		return c.VoiceRate
	case ConsultationVideo:
		return c.VideoRate
	default:
		return c.TextRate
	}
}
