// Package store defines the persistence interface for accounts, sessions,
// and signals, plus the sentinel errors implementations report.
package store

import (
	"context"
	"errors"

	"github.com/ficai/signal-server/internal/domain"
)

// Sentinel errors. Implementations translate backend constraint violations
// into these; services map them onto domain error kinds at the boundary.
var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrAlreadyExists is returned on a uniqueness violation (duplicate
	// email, duplicate session id).
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the persistence surface the services depend on.
type Store interface {
	AccountStore
	SessionStore
	SignalStore
}

// AccountStore persists account records.
type AccountStore interface {
	// CreateAccount inserts a new account and assigns its ID.
	// Returns ErrAlreadyExists if the email is taken.
	CreateAccount(ctx context.Context, account *domain.Account) error
	// GetAccount retrieves an account by id.
	// Returns ErrNotFound if it does not exist.
	GetAccount(ctx context.Context, id int64) (*domain.Account, error)
	// GetAccountByEmail retrieves an account by its exact email.
	// Returns ErrNotFound if it does not exist.
	GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error)
}

// SessionStore persists session records.
type SessionStore interface {
	// CreateSession inserts a new session.
	// Returns ErrAlreadyExists if the session id already exists.
	CreateSession(ctx context.Context, session *domain.Session) error
	// GetSessionAccount resolves a session id to its owning account.
	// Returns ErrNotFound if no such session exists. A session row whose
	// account has vanished is reported as a plain error, never as a nil
	// account.
	GetSessionAccount(ctx context.Context, id []byte) (*domain.Account, error)
	// DeleteSession removes a session by id.
	// Returns ErrNotFound if no row was deleted.
	DeleteSession(ctx context.Context, id []byte) error
}

// SignalStore persists per-account per-story tag votes.
type SignalStore interface {
	// SetSignal upserts the vote for (accountID, url, tag). Repeated
	// identical sets are no-ops in effect.
	SetSignal(ctx context.Context, accountID int64, url, tag string, value bool) error
	// EraseSignal deletes the vote for the exact key. Erasing an absent
	// key is not an error.
	EraseSignal(ctx context.Context, accountID int64, url, tag string) error
	// GetSignals aggregates all votes on the URL grouped by tag. When
	// callerAccountID is non-nil each entry carries that account's own
	// current vote (nil if it never voted the tag).
	GetSignals(ctx context.Context, url string, callerAccountID *int64) ([]domain.TagSignal, error)
	// ListTagStats returns every distinct tag ever recorded with its
	// total usage count across all stories.
	ListTagStats(ctx context.Context) ([]domain.TagStat, error)
}
