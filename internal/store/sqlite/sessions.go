package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ficai/signal-server/internal/domain"
	"github.com/ficai/signal-server/internal/store"
)

// CreateSession inserts a new session.
// Returns store.ErrAlreadyExists if the session ID already exists, which
// callers use to drive the bounded regenerate-and-retry loop.
func (s *Store) CreateSession(ctx context.Context, session *domain.Session) error {
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, account_id, created_at)
		VALUES (?, ?, ?)`,
		session.ID,
		session.AccountID,
		formatTime(session.CreatedAt),
	)
	return translateUnique(err)
}

// GetSessionAccount resolves a session id to its owning account in one
// joined query. Returns store.ErrNotFound if the session does not exist.
// A session row whose account has been deleted concurrently is an
// anomaly, reported as an error rather than a nil account.
func (s *Store) GetSessionAccount(ctx context.Context, id []byte) (*domain.Account, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT a.id, a.email, a.password_hash, a.created_at
		FROM sessions s
		LEFT JOIN accounts a ON a.id = s.account_id
		WHERE s.id = ?`, id)

	var (
		accountID    sql.NullInt64
		email        sql.NullString
		passwordHash sql.NullString
		createdAt    sql.NullString
	)
	err := row.Scan(&accountID, &email, &passwordHash, &createdAt)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	// The left join surfaces a dangling session as NULL account columns.
	if !accountID.Valid {
		return nil, fmt.Errorf("session exists but account is gone")
	}

	a := &domain.Account{
		ID:           accountID.Int64,
		Email:        email.String,
		PasswordHash: passwordHash.String,
	}
	a.CreatedAt, err = parseTime(createdAt.String)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// DeleteSession performs a hard delete of a session by ID.
// Returns store.ErrNotFound if the session does not exist.
func (s *Store) DeleteSession(ctx context.Context, id []byte) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
