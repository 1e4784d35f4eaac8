// Package service implements the application logic between the HTTP
// handlers and the store.
package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ficai/signal-server/internal/auth"
	"github.com/ficai/signal-server/internal/config"
	"github.com/ficai/signal-server/internal/domain"
	domainerrors "github.com/ficai/signal-server/internal/errors"
	"github.com/ficai/signal-server/internal/store"
	"github.com/ficai/signal-server/internal/validation"
)

// sessionCreateAttempts bounds the retry loop on session id collision.
// Three collisions in a row on 128 random bits means the RNG is broken,
// not that we're unlucky.
const sessionCreateAttempts = 3

// AuthService handles account registration, login, and session
// resolution.
type AuthService struct {
	store     store.Store
	validator *validation.Validator
	pepper    []byte
	betaKey   string
	logger    *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(st store.Store, validator *validation.Validator, cfg *config.Config, logger *slog.Logger) *AuthService {
	return &AuthService{
		store:     st,
		validator: validator,
		pepper:    cfg.Auth.Pepper,
		betaKey:   cfg.Auth.BetaKey,
		logger:    logger,
	}
}

// RegisterRequest contains account registration data.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,max=1024"`
	BetaKey  string `json:"betaKey" validate:"required"`
}

// LoginRequest contains account credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,max=1024"`
}

// Register creates a new account and opens its first session. The
// returned session id has already been persisted.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*domain.Account, []byte, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, nil, err
	}

	// Registration is gated on a shared beta key for now. A wrong key is
	// a malformed request, not a credential failure.
	if subtle.ConstantTimeCompare([]byte(req.BetaKey), []byte(s.betaKey)) != 1 {
		return nil, nil, domainerrors.Validation("invalid beta key")
	}

	passwordHash, err := auth.HashPassword(req.Password, s.pepper)
	if err != nil {
		return nil, nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to hash password")
	}

	account := &domain.Account{
		Email:        req.Email,
		PasswordHash: passwordHash,
	}
	if err := s.store.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, nil, domainerrors.Conflict("email already in use")
		}
		return nil, nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to create account")
	}

	sessionID, err := s.createSession(ctx, account.ID)
	if err != nil {
		return nil, nil, err
	}

	if s.logger != nil {
		s.logger.Info("Account registered", "account_id", account.ID)
	}

	return account, sessionID, nil
}

// Login verifies credentials and opens a new session. Unknown emails and
// wrong passwords are both reported as the same forbidden error.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*domain.Account, []byte, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, nil, err
	}

	account, err := s.store.GetAccountByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, domainerrors.Forbidden("invalid credentials")
		}
		return nil, nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to load account")
	}

	if err := auth.VerifyPassword(account.PasswordHash, req.Password, s.pepper); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, nil, domainerrors.Forbidden("invalid credentials")
		}
		// The stored hash is unreadable. Failing closed here surfaces
		// corruption instead of quietly locking the account out as a
		// "wrong password".
		return nil, nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to verify password")
	}

	sessionID, err := s.createSession(ctx, account.ID)
	if err != nil {
		return nil, nil, err
	}

	if s.logger != nil {
		s.logger.Info("Account logged in", "account_id", account.ID)
	}

	return account, sessionID, nil
}

// Logout destroys the session. The session is known to exist at this
// point, so a missing row indicates store trouble rather than a client
// mistake.
func (s *AuthService) Logout(ctx context.Context, sessionID []byte) error {
	if err := s.store.DeleteSession(ctx, sessionID); err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to delete session")
	}
	return nil
}

// Authenticate resolves a session id to its account. An unknown session
// is forbidden; a session whose account has vanished is a server fault.
func (s *AuthService) Authenticate(ctx context.Context, sessionID []byte) (*domain.Account, error) {
	account, err := s.store.GetSessionAccount(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.Forbidden("unknown session")
		}
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to resolve session")
	}
	return account, nil
}

// createSession generates a fresh session id and persists it, retrying a
// bounded number of times on the (astronomically unlikely) id collision.
func (s *AuthService) createSession(ctx context.Context, accountID int64) ([]byte, error) {
	for attempt := range sessionCreateAttempts {
		sessionID, err := auth.NewSessionID()
		if err != nil {
			return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to generate session id")
		}

		err = s.store.CreateSession(ctx, &domain.Session{ID: sessionID, AccountID: accountID})
		if err == nil {
			return sessionID, nil
		}
		if !errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to create session")
		}

		if s.logger != nil {
			s.logger.Warn("Session id collision", "attempt", attempt+1)
		}
	}
	return nil, domainerrors.Internal(fmt.Sprintf("session id collision %d times in a row", sessionCreateAttempts))
}
