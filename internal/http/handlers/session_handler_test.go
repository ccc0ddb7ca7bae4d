package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/consulthub/consulthub-api/internal/domain"
	"github.com/consulthub/consulthub-api/internal/rtc"
	"github.com/consulthub/consulthub-api/internal/service"
	"github.com/consulthub/consulthub-api/internal/session"
	"github.com/consulthub/consulthub-api/pkg/auth"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type fakeSessionService struct {
	clientID         uuid.UUID
	consultantUserID uuid.UUID
	descriptor       *service.SessionDescriptor
}

func (f *fakeSessionService) authorize(userID uuid.UUID) error {
	return session.Authorize(session.AccessContext{
		RequestingUserID: userID,
		ClientID:         f.clientID,
		ConsultantUserID: f.consultantUserID,
	})
}

func (f *fakeSessionService) Access(_ context.Context, _, userID uuid.UUID) (session.AccessContext, *domain.Booking, error) {
	if err := f.authorize(userID); err != nil {
		return session.AccessContext{}, nil, err
	}
	return session.AccessContext{}, &domain.Booking{}, nil
}

func (f *fakeSessionService) Describe(_ context.Context, _, userID uuid.UUID, _ time.Time) (*service.SessionDescriptor, error) {
	if err := f.authorize(userID); err != nil {
		return nil, err
	}
	return f.descriptor, nil
}

func (f *fakeSessionService) IssueToken(_ context.Context, _, userID uuid.UUID, _ time.Time) (string, uint32, error) {
	if err := f.authorize(userID); err != nil {
		return "", 0, err
	}
	return "signed-token", 42, nil
}

func getSessionAs(t *testing.T, h *Handlers, bookingID, userID uuid.UUID) *httptest.ResponseRecorder {
	t.Helper()

	r := chi.NewRouter()
	r.Get("/bookings/{id}/session", h.GetSession)

	req := httptest.NewRequest(http.MethodGet, "/bookings/"+bookingID.String()+"/session", nil)
	req = req.WithContext(context.WithValue(req.Context(), claimsKey, &auth.Claims{Sub: userID.String()}))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestGetSessionParticipantsAllowed(t *testing.T) {
	bookingID := uuid.New()
	clientID := uuid.New()
	consultantUserID := uuid.New()

	svc := &fakeSessionService{
		clientID:         clientID,
		consultantUserID: consultantUserID,
		descriptor: &service.SessionDescriptor{
			BookingID:   bookingID,
			ChannelName: bookingID.String(),
			Joinable:    true,
		},
	}
	h := &Handlers{sessionService: svc}

	for _, userID := range []uuid.UUID{clientID, consultantUserID} {
		rec := getSessionAs(t, h, bookingID, userID)
		if rec.Code != http.StatusOK {
			t.Fatalf("participant %s: expected 200, got %d", userID, rec.Code)
		}

		var out service.SessionDescriptor
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("invalid JSON response: %v", err)
		}
		if out.ChannelName != bookingID.String() {
			t.Errorf("expected channel %s, got %s", bookingID, out.ChannelName)
		}
	}
}

func TestGetSessionStrangerForbidden(t *testing.T) {
	svc := &fakeSessionService{clientID: uuid.New(), consultantUserID: uuid.New()}
	h := &Handlers{sessionService: svc}

	rec := getSessionAs(t, h, uuid.New(), uuid.New())
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-participant, got %d", rec.Code)
	}
}

func TestGetSessionBadBookingID(t *testing.T) {
	h := &Handlers{sessionService: &fakeSessionService{}}

	r := chi.NewRouter()
	r.Get("/bookings/{id}/session", h.GetSession)

	req := httptest.NewRequest(http.MethodGet, "/bookings/not-a-uuid/session", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetSessionTokenIncludesChannelCoordinates(t *testing.T) {
	bookingID := uuid.New()
	clientID := uuid.New()

	svc := &fakeSessionService{clientID: clientID, consultantUserID: uuid.New()}
	h := &Handlers{sessionService: svc, tokens: rtc.NewTokenBuilder("app-id", "app-cert")}

	r := chi.NewRouter()
	r.Post("/bookings/{id}/session/token", h.GetSessionToken)

	req := httptest.NewRequest(http.MethodPost, "/bookings/"+bookingID.String()+"/session/token", nil)
	req = req.WithContext(context.WithValue(req.Context(), claimsKey, &auth.Claims{Sub: clientID.String()}))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var out map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if out["token"] != "signed-token" {
		t.Errorf("expected token in response, got %v", out["token"])
	}
	if out["channel_name"] != bookingID.String() {
		t.Errorf("expected channel_name %s, got %v", bookingID, out["channel_name"])
	}
}
