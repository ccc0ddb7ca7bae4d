package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/consulthub/consulthub-api/internal/payments"
	"github.com/consulthub/consulthub-api/internal/repo/postgres"
	"github.com/consulthub/consulthub-api/internal/rtc"
	"github.com/consulthub/consulthub-api/internal/service"
	"github.com/consulthub/consulthub-api/pkg/config"
	"github.com/consulthub/consulthub-api/pkg/events"
)

type Handlers struct {
	authService     service.AuthService
	bookingService  service.BookingService
	sessionService  service.SessionService
	earningsService service.EarningsService
	rateCardRepo    postgres.RateCardRepository
	messageRepo     postgres.MessageRepository
	orders          payments.OrderCreator
	tokens          *rtc.TokenBuilder
	bus             events.Publisher
	config          *config.Config
}

func New(
	authService service.AuthService,
	bookingService service.BookingService,
	sessionService service.SessionService,
	earningsService service.EarningsService,
	rateCardRepo postgres.RateCardRepository,
	messageRepo postgres.MessageRepository,
	orders payments.OrderCreator,
	tokens *rtc.TokenBuilder,
	bus events.Publisher,
	cfg *config.Config,
) *Handlers {
	return &Handlers{
		authService:     authService,
		bookingService:  bookingService,
		sessionService:  sessionService,
		earningsService: earningsService,
		rateCardRepo:    rateCardRepo,
		messageRepo:     messageRepo,
		orders:          orders,
		tokens:          tokens,
		bus:             bus,
		config:          cfg,
	}
}

// Helper functions for common response patterns
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// Helper to parse pagination parameters
func parsePagination(r *http.Request) (limit, offset int) {
	limit = 20
	offset = 0

	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	return limit, offset
}
