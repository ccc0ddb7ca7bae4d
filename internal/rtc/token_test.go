package rtc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildAndParseRoundTrip(t *testing.T) {
	b := NewTokenBuilder("app-id", "app-certificate")
	now := time.Now().Truncate(time.Second)

	token, err := b.Build("booking-123", 54321, now)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := b.Parse(token)
	require.NoError(t, err)

	assert.Equal(t, "booking-123", claims.Channel)
	assert.Equal(t, uint32(54321), claims.UID)
	assert.Equal(t, RolePublisher, claims.Role)
	assert.Equal(t, "app-id", claims.Issuer)
	assert.Equal(t, now.Add(TokenTTL).Unix(), claims.ExpiresAt.Unix())
}

func TestBuildRequiresCredentials(t *testing.T) {
	cases := []*TokenBuilder{
		NewTokenBuilder("", ""),
		NewTokenBuilder("app-id", ""),
		NewTokenBuilder("", "cert"),
	}

	for _, b := range cases {
		_, err := b.Build("booking-123", 1, time.Now())
		assert.ErrorIs(t, err, ErrNotConfigured)
	}
}

func TestParseRejectsForeignSignature(t *testing.T) {
	issuer := NewTokenBuilder("app-id", "real-certificate")
	forger := NewTokenBuilder("app-id", "other-certificate")

	token, err := forger.Build("booking-123", 1, time.Now())
	require.NoError(t, err)

	_, err = issuer.Parse(token)
	assert.Error(t, err)
}
