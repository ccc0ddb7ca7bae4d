// Package session decides who may enter a live consultation. The
// participant check is the sole gate in front of the chat topic and the
// media-channel token; it runs server-side in every surface that opens
// either.
package session

import (
	"errors"

	"github.com/google/uuid"
)

// ErrForbidden is returned when the requesting identity is neither the
// booking's client nor the consultant behind it. Callers must
// short-circuit chat and media setup and surface an explicit denial.
var ErrForbidden = errors.New("not a participant of this session")

// AccessContext is the one-shot input to the participant check.
type AccessContext struct {
	RequestingUserID uuid.UUID
	ClientID         uuid.UUID
	ConsultantUserID uuid.UUID
}

// Authorized reports whether the requesting identity is one of the
// booking's two designated participants. An absent identity never
// matches.
func (c AccessContext) Authorized() bool {
	if c.RequestingUserID == uuid.Nil {
		return false
	}
	return c.RequestingUserID == c.ClientID || c.RequestingUserID == c.ConsultantUserID
}

// Authorize returns ErrForbidden unless the context passes the
// participant check.
func Authorize(c AccessContext) error {
	if !c.Authorized() {
		return ErrForbidden
	}
	return nil
}

// NumericUID derives the media transport's numeric participant id from
// an identity id: the byte-value sum of the id string, modulo one
// million. Kept for wire compatibility with deployed clients; two
// participants colliding inside one channel is a known low-probability
// case.
func NumericUID(identityID string) uint32 {
	var sum uint64
	for _, b := range []byte(identityID) {
		sum += uint64(b)
	}
	return uint32(sum % 1_000_000)
}
