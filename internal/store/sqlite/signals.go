package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/ficai/signal-server/internal/domain"
)

// SetSignal upserts the vote for (accountID, url, tag). An existing row's
// value is overwritten regardless of its prior value, so repeated
// identical sets are no-ops in effect.
func (s *Store) SetSignal(ctx context.Context, accountID int64, url, tag string, value bool) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO signals (account_id, url, tag, signal, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (account_id, url, tag) DO UPDATE SET
			signal = excluded.signal,
			updated_at = excluded.updated_at`,
		accountID,
		url,
		tag,
		boolToInt(value),
		formatTime(time.Now()),
	)
	return err
}

// EraseSignal deletes the vote for the exact key. Erasing an absent key
// is not an error.
func (s *Store) EraseSignal(ctx context.Context, accountID int64, url, tag string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM signals WHERE account_id = ? AND url = ? AND tag = ?`,
		accountID, url, tag)
	return err
}

// GetSignals aggregates every vote on the URL grouped by tag. When
// callerAccountID is non-nil each row also carries that account's own
// current vote; for anonymous callers the filter matches nothing and the
// per-caller column stays NULL.
func (s *Store) GetSignals(ctx context.Context, url string, callerAccountID *int64) ([]domain.TagSignal, error) {
	var caller sql.NullInt64
	if callerAccountID != nil {
		caller = sql.NullInt64{Int64: *callerAccountID, Valid: true}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT
			tag,
			sum(CASE WHEN signal THEN 1 ELSE 0 END) AS signals_for,
			sum(CASE WHEN signal THEN 0 ELSE 1 END) AS signals_against,
			max(signal) FILTER (WHERE account_id = ?) AS my_signal
		FROM signals
		WHERE url = ?
		GROUP BY tag
		ORDER BY tag ASC`,
		caller, url)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	signals := make([]domain.TagSignal, 0)
	for rows.Next() {
		var (
			ts       domain.TagSignal
			mySignal sql.NullBool
		)
		if err := rows.Scan(&ts.Tag, &ts.SignalsFor, &ts.SignalsAgainst, &mySignal); err != nil {
			return nil, err
		}
		if mySignal.Valid {
			v := mySignal.Bool
			ts.Signal = &v
		}
		signals = append(signals, ts)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return signals, nil
}

// ListTagStats returns every distinct tag with its total usage count
// across all stories, ordered by count descending then tag ascending.
func (s *Store) ListTagStats(ctx context.Context) ([]domain.TagStat, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT tag, count(*) AS uses
		FROM signals
		GROUP BY tag
		ORDER BY uses DESC, tag ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make([]domain.TagStat, 0)
	for rows.Next() {
		var st domain.TagStat
		if err := rows.Scan(&st.Tag, &st.Count); err != nil {
			return nil, err
		}
		stats = append(stats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stats, nil
}

// boolToInt converts a bool to an int for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
