package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/consulthub/consulthub-api/internal/domain"
	"github.com/consulthub/consulthub-api/internal/repo/postgres"
	"github.com/consulthub/consulthub-api/pkg/auth"
	"github.com/consulthub/consulthub-api/pkg/config"
)

type AuthService interface {
	Register(ctx context.Context, email, password, fullName, role string) (*domain.User, string, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
}

type authService struct {
	userRepo     postgres.UserRepository
	rateCardRepo postgres.RateCardRepository
	cfg          *config.Config
}

func NewAuthService(userRepo postgres.UserRepository, rateCardRepo postgres.RateCardRepository, cfg *config.Config) AuthService {
	return &authService{userRepo: userRepo, rateCardRepo: rateCardRepo, cfg: cfg}
}

// Register creates an account. Consultants additionally get an empty
// rate card; they set rates afterwards through the profile endpoint.
func (s *authService) Register(ctx context.Context, email, password, fullName, role string) (*domain.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if role == "" {
		role = "client"
	}

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, "", ErrEmailExists
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.userRepo.Create(ctx, email, hash, fullName, role)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	if role == "consultant" {
		if _, err := s.rateCardRepo.Create(ctx, user.ID, fullName, ""); err != nil {
			return nil, "", fmt.Errorf("failed to create consultant profile: %w", err)
		}
	}

	token, err := s.issueToken(user)
	return user, token, err
}

func (s *authService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, "", ErrInvalidCredentials
	}

	valid, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil || !valid {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	return user, token, err
}

func (s *authService) issueToken(user *domain.User) (string, error) {
	return auth.NewAccessToken(user.ID.String(), user.Email, user.Role,
		s.cfg.Auth.JWTSecret, s.cfg.Auth.AccessTokenTTL)
}
