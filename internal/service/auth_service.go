package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/solthron/assist-api/internal/authbridge"
	"github.com/solthron/assist-api/internal/backend"
	"github.com/solthron/assist-api/internal/credits"
	"github.com/solthron/assist-api/internal/repository"
)

// AuthService owns the stored auth token: it hands the token to the
// backend client, answers authentication checks for the credit gate, and
// runs credential login and logout. It also implements
// backend.TokenProvider.
type AuthService struct {
	tokens repository.TokenRepository
	logger *slog.Logger

	// Set by NewServices after the client and gate exist; both need the
	// AuthService first.
	client *backend.Client
	gate   *credits.Gate
	bridge *authbridge.Bridge
}

// NewAuthService creates a new auth service.
func NewAuthService(tokens repository.TokenRepository, logger *slog.Logger) *AuthService {
	return &AuthService{tokens: tokens, logger: logger}
}

// Token returns the stored auth token, or empty when none is stored.
// Implements backend.TokenProvider.
func (s *AuthService) Token(ctx context.Context) (string, error) {
	stored, err := s.tokens.Get(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return stored.Token, nil
}

// IsAuthenticated reports whether a plausible token is stored. The backend
// remains the authority on whether the token is actually accepted.
func (s *AuthService) IsAuthenticated(ctx context.Context) bool {
	token, err := s.Token(ctx)
	if err != nil {
		return false
	}
	return authbridge.Validate(token) == nil
}

// LoginOutcome is what a credential login produced.
type LoginOutcome struct {
	OK    bool   `json:"success"`
	Error string `json:"error,omitempty"`
}

// Login exchanges credentials for a token and stores it.
func (s *AuthService) Login(ctx context.Context, email, password string) (LoginOutcome, error) {
	result, err := s.client.Login(ctx, email, password)
	if err != nil {
		return LoginOutcome{}, err
	}
	if !result.OK {
		message := result.Error
		if message == "" {
			message = "Login failed"
		}
		return LoginOutcome{OK: false, Error: message}, nil
	}

	if err := s.bridge.Accept(ctx, result.Token, authbridge.SourceLogin); err != nil {
		return LoginOutcome{}, err
	}
	return LoginOutcome{OK: true}, nil
}

// Logout clears the stored token and the cached balance.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.tokens.Clear(ctx); err != nil {
		return err
	}
	s.gate.InvalidateBalance()
	s.logger.Info("logged out, token cleared")
	return nil
}

// Profile is the account status view.
type Profile struct {
	Authenticated bool       `json:"authenticated"`
	TokenSource   string     `json:"token_source,omitempty"`
	AcquiredAt    *time.Time `json:"acquired_at,omitempty"`
	// Credits is nil when unauthenticated or when the backend is
	// unreachable; absence is not zero.
	Credits *int `json:"credits,omitempty"`
}

// GetProfile reports authentication state and, when possible, the live
// credit balance.
func (s *AuthService) GetProfile(ctx context.Context) (*Profile, error) {
	stored, err := s.tokens.Get(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return &Profile{}, nil
	}
	if err != nil {
		return nil, err
	}
	if authbridge.Validate(stored.Token) != nil {
		return &Profile{}, nil
	}

	profile := &Profile{
		Authenticated: true,
		TokenSource:   stored.Source,
		AcquiredAt:    &stored.AcquiredAt,
	}

	if balance, err := s.client.GetCredits(ctx); err == nil {
		profile.Credits = &balance
	} else {
		s.logger.Debug("profile credits unavailable", "error", err)
	}
	return profile, nil
}

var _ backend.TokenProvider = (*AuthService)(nil)
