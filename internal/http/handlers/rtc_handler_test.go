package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/consulthub/consulthub-api/internal/rtc"
	"github.com/consulthub/consulthub-api/pkg/auth"
	"github.com/google/uuid"
)

func postJSON(t *testing.T, h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestCreateRTCTokenValidation(t *testing.T) {
	h := &Handlers{tokens: rtc.NewTokenBuilder("app-id", "app-cert")}

	cases := []struct {
		name string
		body string
	}{
		{"missing channel", `{"userId":"12345"}`},
		{"missing user", `{"channelName":"room-1"}`},
		{"blank channel", `{"channelName":"  ","userId":"12345"}`},
		{"non-numeric user", `{"channelName":"room-1","userId":"alice"}`},
		{"negative user", `{"channelName":"room-1","userId":"-3"}`},
		{"bad json", `{`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postJSON(t, h.CreateRTCToken, tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestCreateRTCTokenUnconfigured(t *testing.T) {
	h := &Handlers{tokens: rtc.NewTokenBuilder("", "")}

	rec := postJSON(t, h.CreateRTCToken, `{"channelName":"room-1","userId":"12345"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "CONFIGURATION_ERROR") {
		t.Errorf("expected configuration error code, got %s", rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "app-cert") {
		t.Error("error body must not leak credentials")
	}
}

func TestCreateRTCTokenBookingChannelRequiresParticipation(t *testing.T) {
	bookingID := uuid.New()
	clientID := uuid.New()

	svc := &fakeSessionService{clientID: clientID, consultantUserID: uuid.New()}
	h := &Handlers{
		tokens:         rtc.NewTokenBuilder("app-id", "app-cert"),
		sessionService: svc,
	}

	body := `{"channelName":"` + bookingID.String() + `","userId":"12345"}`

	// A stranger's JWT gets a denial.
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req = req.WithContext(context.WithValue(req.Context(), claimsKey, &auth.Claims{Sub: uuid.New().String()}))
	rec := httptest.NewRecorder()
	h.CreateRTCToken(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-participant, got %d", rec.Code)
	}

	// The booking's client gets a token.
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req = req.WithContext(context.WithValue(req.Context(), claimsKey, &auth.Claims{Sub: clientID.String()}))
	rec = httptest.NewRecorder()
	h.CreateRTCToken(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for participant, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCreateRTCTokenSuccess(t *testing.T) {
	builder := rtc.NewTokenBuilder("app-id", "app-cert")
	h := &Handlers{tokens: builder}

	rec := postJSON(t, h.CreateRTCToken, `{"channelName":"room-1","userId":"482113"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var out map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}

	claims, err := builder.Parse(out["token"])
	if err != nil {
		t.Fatalf("returned token does not verify: %v", err)
	}
	if claims.Channel != "room-1" || claims.UID != 482113 || claims.Role != rtc.RolePublisher {
		t.Errorf("unexpected claims: %+v", claims)
	}
}
