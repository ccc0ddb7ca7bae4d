package service

import (
	"context"
	"testing"
	"time"

	"github.com/consulthub/consulthub-api/internal/domain"
	"github.com/consulthub/consulthub-api/pkg/auth"
	"github.com/consulthub/consulthub-api/pkg/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testAuthConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:      "test-secret",
			AccessTokenTTL: time.Hour,
		},
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	users := new(MockUserRepo)
	users.On("FindByEmail", mock.Anything, "dana@example.com").Return(&domain.User{ID: uuid.New()}, nil)

	svc := NewAuthService(users, new(MockRateCardRepo), testAuthConfig())

	_, _, err := svc.Register(context.Background(), "Dana@Example.com", "hunter2hunter2", "Dana", "")
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestRegisterConsultantCreatesProfile(t *testing.T) {
	userID := uuid.New()

	users := new(MockUserRepo)
	users.On("FindByEmail", mock.Anything, "lee@example.com").Return(nil, nil)
	users.On("Create", mock.Anything, "lee@example.com", mock.Anything, "Lee", "consultant").
		Return(&domain.User{ID: userID, Email: "lee@example.com", Role: "consultant"}, nil)

	cards := new(MockRateCardRepo)
	cards.On("Create", mock.Anything, userID, "Lee", "").
		Return(&domain.RateCard{ConsultantID: uuid.New(), OwnerUserID: userID}, nil)

	svc := NewAuthService(users, cards, testAuthConfig())

	user, token, err := svc.Register(context.Background(), "lee@example.com", "hunter2hunter2", "Lee", "consultant")
	require.NoError(t, err)
	assert.Equal(t, userID, user.ID)

	claims, err := auth.Parse(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.Sub)
	assert.Equal(t, "consultant", claims.Role)

	cards.AssertExpectations(t)
}

func TestLoginWrongPassword(t *testing.T) {
	hash, err := auth.HashPassword("correct-password")
	require.NoError(t, err)

	users := new(MockUserRepo)
	users.On("FindByEmail", mock.Anything, "dana@example.com").Return(&domain.User{
		ID:           uuid.New(),
		Email:        "dana@example.com",
		PasswordHash: hash,
	}, nil)

	svc := NewAuthService(users, new(MockRateCardRepo), testAuthConfig())

	_, _, err = svc.Login(context.Background(), "dana@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownEmailIndistinguishable(t *testing.T) {
	users := new(MockUserRepo)
	users.On("FindByEmail", mock.Anything, mock.Anything).Return(nil, nil)

	svc := NewAuthService(users, new(MockRateCardRepo), testAuthConfig())

	_, _, err := svc.Login(context.Background(), "nobody@example.com", "whatever-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
