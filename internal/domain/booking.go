package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

func ParseBookingStatus(s string) (BookingStatus, bool) {
	switch BookingStatus(s) {
	case BookingPending, BookingConfirmed, BookingCompleted, BookingCancelled:
		return BookingStatus(s), true
	default:
		return "", false
	}
}

// Terminal reports whether no further status transition is valid.
func (s BookingStatus) Terminal() bool {
	return s == BookingCompleted || s == BookingCancelled
}

type ConsultationType string

const (
	ConsultationText  ConsultationType = "Text"
	ConsultationVoice ConsultationType = "Voice"
	ConsultationVideo ConsultationType = "Video"
)

func ParseConsultationType(s string) (ConsultationType, bool) {
	switch ConsultationType(s) {
	case ConsultationText, ConsultationVoice, ConsultationVideo:
		return ConsultationType(s), true
	default:
		return "", false
	}
}

// Booking is one scheduled consultation between a client and a consultant.
// RatePerMinute and TotalAmount are frozen at creation time and never
// recomputed from a live rate card.
type Booking struct {
	ID               uuid.UUID        `json:"id"`
	ClientID         uuid.UUID        `json:"client_id"`
	ConsultantID     uuid.UUID        `json:"consultant_id"`
	ConsultationType ConsultationType `json:"consultation_type"`
	ScheduledAt      time.Time        `json:"scheduled_at"`
	DurationMinutes  int              `json:"duration_minutes"`
	RatePerMinute    decimal.Decimal  `json:"rate_per_minute"`
	TotalAmount      decimal.Decimal  `json:"total_amount"`
	Status           BookingStatus    `json:"status"`
	Notes            string           `json:"notes"`
	CreatedAt        time.Time        `json:"created_at"`
}

type BookingCreateReq struct {
	ConsultantID     uuid.UUID        `json:"consultant_id"`
	ConsultationType ConsultationType `json:"consultation_type"`
	ScheduledAt      time.Time        `json:"scheduled_at"`
	DurationMinutes  int              `json:"duration_minutes"`
	Notes            string           `json:"notes"`
}
