package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/consulthub/consulthub-api/internal/http/response"
	"github.com/consulthub/consulthub-api/pkg/auth"
	"github.com/consulthub/consulthub-api/pkg/logger"
	"github.com/google/uuid"
)

type contextKey string

const claimsKey contextKey = "claims"

// RequireJWT authenticates the request and, when requiredRole is
// non-empty, enforces it.
func (h *Handlers) RequireJWT(requiredRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := h.parseBearer(r)
			if err != nil {
				response.Unauthorized(w, "Missing or invalid authorization token")
				return
			}

			if requiredRole != "" && claims.Role != requiredRole && claims.Role != "admin" {
				response.Forbidden(w, "Insufficient permissions")
				return
			}

			ctx := context.WithValue(r.Context(), logger.UserIDKey, claims.Sub)
			ctx = context.WithValue(ctx, claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (h *Handlers) parseBearer(r *http.Request) (*auth.Claims, error) {
	token := r.Header.Get("Authorization")
	if strings.HasPrefix(token, "Bearer ") {
		token = strings.TrimPrefix(token, "Bearer ")
	} else {
		// WebSocket clients cannot set headers
		token = r.URL.Query().Get("token")
	}
	return auth.Parse(token, h.config.Auth.JWTSecret)
}

func getClaims(r *http.Request) *auth.Claims {
	if claims, ok := r.Context().Value(claimsKey).(*auth.Claims); ok {
		return claims
	}
	return nil
}

// CurrentUserID exposes the authenticated identity as a string for
// middleware wired outside this package; absent or malformed claims
// yield the nil uuid.
func CurrentUserID(r *http.Request) string {
	return currentUserID(r).String()
}

// currentUserID returns the authenticated identity, or uuid.Nil when
// the claims are absent or malformed.
func currentUserID(r *http.Request) uuid.UUID {
	claims := getClaims(r)
	if claims == nil {
		return uuid.Nil
	}
	id, err := uuid.Parse(claims.Sub)
	if err != nil {
		return uuid.Nil
	}
	return id
}
