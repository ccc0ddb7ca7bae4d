package middleware

import (
	"context"
	"crypto/sha256"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// IdempotencyStore caches successful POST responses keyed by the
// client-supplied Idempotency-Key header.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// Idempotency replays a cached response when a POST repeats an
// Idempotency-Key. Cache keys mix in the caller identity returned by
// scope, so two users sending the same key value never see each
// other's responses. Replays carry the original status code.
func Idempotency(store IdempotencyStore, scope func(r *http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			key := r.Header.Get("Idempotency-Key")
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			// Hash identity and key together for privacy
			hasher := sha256.New()
			hasher.Write([]byte(scope(r)))
			hasher.Write([]byte{0})
			hasher.Write([]byte(key))
			hashedKey := fmt.Sprintf("idempotency:%x", hasher.Sum(nil))

			if existing, err := store.Get(r.Context(), hashedKey); err == nil && existing != "" {
				status, body := splitCached(existing)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(status)
				w.Write([]byte(body))
				return
			}

			recorder := &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(recorder, r)

			if recorder.statusCode >= 200 && recorder.statusCode < 300 {
				cached := fmt.Sprintf("%d\n%s", recorder.statusCode, recorder.body)
				store.Set(r.Context(), hashedKey, cached, 24*time.Hour)
			}
		})
	}
}

// splitCached separates the status-code line from the cached body.
func splitCached(cached string) (int, string) {
	parts := strings.SplitN(cached, "\n", 2)
	if len(parts) != 2 {
		return http.StatusOK, cached
	}
	status, err := strconv.Atoi(parts[0])
	if err != nil {
		return http.StatusOK, cached
	}
	return status, parts[1]
}

type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       []byte
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

func (r *responseRecorder) Write(body []byte) (int, error) {
	r.body = append(r.body, body...)
	return r.ResponseWriter.Write(body)
}
