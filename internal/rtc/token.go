// Package rtc mints admission tokens for the media transport. A token
// is scoped to one channel and one numeric participant id, carries the
// publisher role, and expires a fixed hour after issuance. The builder
// performs no authorization of its own; callers gate issuance with the
// session participant check first.
package rtc

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is the fixed lifetime of an admission token.
const TokenTTL = 3600 * time.Second

// RolePublisher lets the holder publish audio/video into the channel.
const RolePublisher = "publisher"

// ErrNotConfigured is returned when the signing credentials are absent.
// The message deliberately names no secret values.
var ErrNotConfigured = errors.New("rtc credentials are not configured")

type Claims struct {
	Channel string `json:"channel"`
	UID     uint32 `json:"uid"`
	Role    string `json:"role"`
	jwt.RegisteredClaims
}

type TokenBuilder struct {
	appID          string
	appCertificate string
}

func NewTokenBuilder(appID, appCertificate string) *TokenBuilder {
	return &TokenBuilder{appID: appID, appCertificate: appCertificate}
}

func (b *TokenBuilder) Configured() bool {
	return b.appID != "" && b.appCertificate != ""
}

func (b *TokenBuilder) AppID() string {
	return b.appID
}

// Build mints a publisher token for one participant in one channel.
func (b *TokenBuilder) Build(channelName string, uid uint32, now time.Time) (string, error) {
	if !b.Configured() {
		return "", ErrNotConfigured
	}

	claims := Claims{
		Channel: channelName,
		UID:     uid,
		Role:    RolePublisher,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    b.appID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(b.appCertificate))
}

// Parse validates a token against the builder's credentials. Used by
// tests and by any co-located media gateway.
func (b *TokenBuilder) Parse(tokenString string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(b.appCertificate), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := tok.Claims.(*Claims); ok && tok.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}
