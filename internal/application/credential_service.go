package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-community-market/internal/domain/entity"
	repo "github.com/oksasatya/go-community-market/internal/domain/repository"
	"github.com/oksasatya/go-community-market/pkg/helpers"
)

var (
	ErrAccountExists      = errors.New("account already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingFields      = errors.New("email and password are required")
)

// CredentialService is the standalone email/password service backed by the
// users table. Its tokens are unrelated to directory sessions.
type CredentialService struct {
	Accounts repo.AccountRepository
	Tokens   *helpers.JWTManager
	Logger   *logrus.Logger
}

func NewCredentialService(accounts repo.AccountRepository, tokens *helpers.JWTManager, logger *logrus.Logger) *CredentialService {
	return &CredentialService{Accounts: accounts, Tokens: tokens, Logger: logger}
}

type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *CredentialService) Register(ctx context.Context, email, password string) (*entity.Account, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrMissingFields
	}
	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, err
	}
	a := &entity.Account{Email: email, Password: hash}
	if err := s.Accounts.Create(ctx, a); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrAccountExists
		}
		return nil, err
	}
	return a, nil
}

func (s *CredentialService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrMissingFields
	}
	a, err := s.Accounts.GetByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !helpers.CompareHashAndPassword(a.Password, password) {
		return nil, ErrInvalidCredentials
	}
	tok, exp, err := s.Tokens.GenerateToken(a.ID)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: tok, ExpiresAt: exp}, nil
}

// Me returns the account a valid token was issued for.
func (s *CredentialService) Me(ctx context.Context, userID string) (*entity.Account, error) {
	a, err := s.Accounts.GetByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	return a, err
}
