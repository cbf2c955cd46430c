package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	dbpkg "github.com/janus-access/server/internal/db"
)

// DeviceStore tracks reader devices. "Known" means commissioned and
// enabled; unseen devices get a disabled row so an admin can
// commission them later.
type DeviceStore struct {
	conn   *sql.DB
	writer *dbpkg.Writer
}

func NewDeviceStore(conn *sql.DB, writer *dbpkg.Writer) *DeviceStore {
	return &DeviceStore{conn: conn, writer: writer}
}

func (s *DeviceStore) IsKnown(ctx context.Context, deviceID string) (bool, error) {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return false, nil
	}

	var enabled int
	var commissioned sql.NullInt64
	err := s.conn.QueryRowContext(ctx, `
SELECT enabled, commissioned_at_ms FROM devices WHERE device_id = ?;`,
		deviceID).Scan(&enabled, &commissioned)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("IsKnown query: %w", err)
	}
	return enabled == 1 && commissioned.Valid, nil
}

func (s *DeviceStore) MarkSeen(ctx context.Context, deviceID string, t time.Time) error {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return nil
	}
	if t.IsZero() {
		t = time.Now().UTC()
	}
	ms := t.UTC().UnixMilli()

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT OR IGNORE INTO devices(device_id, enabled, created_at_ms, updated_at_ms)
VALUES (?, 0, ?, ?);`, deviceID, ms, ms); err != nil {
			return fmt.Errorf("MarkSeen insert device: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
UPDATE devices SET last_seen_at_ms = ?, updated_at_ms = ? WHERE device_id = ?;`,
			ms, ms, deviceID); err != nil {
			return fmt.Errorf("MarkSeen update device: %w", err)
		}
		return nil
	})
}
