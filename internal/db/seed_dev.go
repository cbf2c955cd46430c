package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type SeedDevOptions struct {
	// DefaultZoneID is the zone the hardware reader reports taps for.
	DefaultZoneID   int64
	DefaultZoneName string
	// DeviceID pre-commissions the configured reader device.
	DeviceID string
	// KnownDeviceIDs pre-commissions any additional readers from the
	// config allow-list.
	KnownDeviceIDs []string
	// CardUIDHash, when set, seeds a dev user holding an active card
	// with a grant for the default zone.
	CardUIDHash string
}

// SeedDev creates the starter rows a dev environment needs: the default
// zone, the reader device, and optionally a user + card + grant for the
// mock reader's UID. Idempotent.
func SeedDev(ctx context.Context, conn *sql.DB, opt SeedDevOptions) error {
	now := time.Now().UTC().UnixMilli()

	if opt.DefaultZoneID == 0 {
		opt.DefaultZoneID = 1
	}
	if opt.DefaultZoneName == "" {
		opt.DefaultZoneName = "Main Entrance"
	}

	if _, err := conn.ExecContext(ctx, `
INSERT OR IGNORE INTO zones(id, name, description, is_active, created_at_ms, updated_at_ms)
VALUES (?, ?, 'Auto-created default zone', 1, ?, ?);`,
		opt.DefaultZoneID, opt.DefaultZoneName, now, now); err != nil {
		return fmt.Errorf("seed default zone: %w", err)
	}

	deviceIDs := opt.KnownDeviceIDs
	if opt.DeviceID != "" {
		deviceIDs = append([]string{opt.DeviceID}, deviceIDs...)
	}
	for _, deviceID := range deviceIDs {
		if _, err := conn.ExecContext(ctx, `
INSERT INTO devices(device_id, display_name, enabled, commissioned_at_ms, created_at_ms, updated_at_ms)
VALUES (?, 'Dev Reader', 1, ?, ?, ?)
ON CONFLICT(device_id) DO UPDATE SET
  enabled = 1,
  commissioned_at_ms = COALESCE(devices.commissioned_at_ms, excluded.commissioned_at_ms),
  updated_at_ms = excluded.updated_at_ms;`,
			deviceID, now, now, now); err != nil {
			return fmt.Errorf("seed device %s: %w", deviceID, err)
		}
	}

	if opt.CardUIDHash == "" {
		return nil
	}

	if _, err := conn.ExecContext(ctx, `
INSERT OR IGNORE INTO users(first_name, last_name, email, employee_id, role, is_active, created_at_ms, updated_at_ms)
VALUES ('Dev', 'User', 'dev@example.com', 'DEV-001', 'employee', 1, ?, ?);`,
		now, now); err != nil {
		return fmt.Errorf("seed dev user: %w", err)
	}

	var userID int64
	if err := conn.QueryRowContext(ctx,
		`SELECT id FROM users WHERE email = 'dev@example.com';`).Scan(&userID); err != nil {
		return fmt.Errorf("seed dev user lookup: %w", err)
	}

	if _, err := conn.ExecContext(ctx, `
INSERT OR IGNORE INTO cards(uid_hash, card_number, user_id, status, issued_at_ms, created_at_ms, updated_at_ms)
VALUES (?, 'DEV-CARD-001', ?, 'active', ?, ?, ?);`,
		opt.CardUIDHash, userID, now, now, now); err != nil {
		return fmt.Errorf("seed dev card: %w", err)
	}

	if _, err := conn.ExecContext(ctx, `
INSERT OR IGNORE INTO user_zone_grants(user_id, zone_id, granted_at_ms)
VALUES (?, ?, ?);`,
		userID, opt.DefaultZoneID, now); err != nil {
		return fmt.Errorf("seed dev grant: %w", err)
	}

	return nil
}
