package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	dbpkg "github.com/janus-access/server/internal/db"
	"github.com/janus-access/server/internal/janus/model"
	"github.com/janus-access/server/internal/janus/store"
)

// AuditStore serves the read side of the access log, plus the two
// permitted mutations (suspicion flag, retention pruning). Entry/exit
// stamping happens inside tap transactions, not here.
type AuditStore struct {
	conn   *sql.DB
	writer *dbpkg.Writer
}

func NewAuditStore(conn *sql.DB, writer *dbpkg.Writer) *AuditStore {
	return &AuditStore{conn: conn, writer: writer}
}

func (s *AuditStore) RecentLogs(ctx context.Context, limit int) ([]model.LogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.queryLogs(ctx, `
SELECT `+logColumns+` FROM access_logs
ORDER BY ts_ms DESC LIMIT ?;`, limit)
}

func (s *AuditStore) RecentFailures(ctx context.Context, since time.Time, limit int) ([]model.LogEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.queryLogs(ctx, `
SELECT `+logColumns+` FROM access_logs
WHERE status != ? AND ts_ms >= ?
ORDER BY ts_ms DESC LIMIT ?;`,
		model.StatusGranted, since.UTC().UnixMilli(), limit)
}

func (s *AuditStore) SuspiciousSince(ctx context.Context, since time.Time) ([]model.LogEntry, error) {
	return s.queryLogs(ctx, `
SELECT `+logColumns+` FROM access_logs
WHERE is_suspicious = 1 AND ts_ms >= ?
ORDER BY ts_ms DESC;`, since.UTC().UnixMilli())
}

func (s *AuditStore) HistoryForUser(ctx context.Context, userID int64, since time.Time) ([]model.LogEntry, error) {
	return s.queryLogs(ctx, `
SELECT `+logColumns+` FROM access_logs
WHERE user_id = ? AND ts_ms >= ?
ORDER BY ts_ms DESC;`, userID, since.UTC().UnixMilli())
}

func (s *AuditStore) HistoryForZone(ctx context.Context, zoneID int64, since time.Time) ([]model.LogEntry, error) {
	return s.queryLogs(ctx, `
SELECT `+logColumns+` FROM access_logs
WHERE zone_id = ? AND ts_ms >= ?
ORDER BY ts_ms DESC;`, zoneID, since.UTC().UnixMilli())
}

func (s *AuditStore) AttemptCountForCard(ctx context.Context, cardID int64, since time.Time) (int, error) {
	var n int
	err := s.conn.QueryRowContext(ctx, `
SELECT COUNT(*) FROM access_logs WHERE card_id = ? AND ts_ms >= ?;`,
		cardID, since.UTC().UnixMilli()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("AttemptCountForCard: %w", err)
	}
	return n, nil
}

func (s *AuditStore) MarkSuspicious(ctx context.Context, logID string, note string) error {
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `
SELECT `+logColumns+` FROM access_logs WHERE id = ?;`, logID)
		e, err := scanLog(row)
		if err == sql.ErrNoRows {
			return fmt.Errorf("MarkSuspicious %s: %w", logID, store.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("MarkSuspicious %s: %w", logID, err)
		}
		e.MarkSuspicious(note)
		if _, err := tx.ExecContext(ctx, `
UPDATE access_logs SET is_suspicious = 1, notes = ? WHERE id = ?;`,
			nullString(e.Notes), logID); err != nil {
			return fmt.Errorf("MarkSuspicious %s: %w", logID, err)
		}
		return nil
	})
}

func (s *AuditStore) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	var deleted int64
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`DELETE FROM access_logs WHERE ts_ms < ?;`, cutoff.UTC().UnixMilli())
		if err != nil {
			return fmt.Errorf("PruneOlderThan: %w", err)
		}
		deleted, _ = res.RowsAffected()
		return nil
	})
	return deleted, err
}

func (s *AuditStore) queryLogs(ctx context.Context, query string, args ...any) ([]model.LogEntry, error) {
	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query logs: %w", err)
	}
	defer rows.Close()

	var out []model.LogEntry
	for rows.Next() {
		e, err := scanLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan log: %w", err)
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}
