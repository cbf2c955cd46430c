package sqlite_test

import (
	"context"
	"testing"
	"time"

	sqlitestore "github.com/janus-access/server/internal/janus/store/sqlite"
)

func TestDeviceStore_UnknownDeviceGetsDisabledRow(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	ds := sqlitestore.NewDeviceStore(conn, w)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	known, err := ds.IsKnown(context.Background(), "rogue-999")
	if err != nil {
		t.Fatalf("IsKnown: %v", err)
	}
	if known {
		t.Error("unseen device reported known")
	}

	if err := ds.MarkSeen(context.Background(), "rogue-999", now); err != nil {
		t.Fatalf("MarkSeen: %v", err)
	}

	var enabled int
	var lastSeen int64
	err = conn.QueryRow(`
SELECT enabled, last_seen_at_ms FROM devices WHERE device_id = ?`, "rogue-999").
		Scan(&enabled, &lastSeen)
	if err != nil {
		t.Fatalf("query device: %v", err)
	}
	if enabled != 0 {
		t.Error("auto-created device must start disabled")
	}
	if lastSeen != now.UnixMilli() {
		t.Errorf("last_seen = %d, want %d", lastSeen, now.UnixMilli())
	}

	// Still unknown until commissioned.
	known, err = ds.IsKnown(context.Background(), "rogue-999")
	if err != nil {
		t.Fatalf("IsKnown: %v", err)
	}
	if known {
		t.Error("uncommissioned device reported known")
	}
}

func TestDeviceStore_CommissionedAndEnabledIsKnown(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	ds := sqlitestore.NewDeviceStore(conn, w)
	now := time.Now().UTC().UnixMilli()

	if _, err := conn.Exec(`
INSERT INTO devices(device_id, enabled, commissioned_at_ms, created_at_ms, updated_at_ms)
VALUES ('door-001', 1, ?, ?, ?)`, now, now, now); err != nil {
		t.Fatalf("seed device: %v", err)
	}

	known, err := ds.IsKnown(context.Background(), "door-001")
	if err != nil {
		t.Fatalf("IsKnown: %v", err)
	}
	if !known {
		t.Error("commissioned enabled device reported unknown")
	}
}

func TestDeviceStore_MarkSeenPreservesCommissioning(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	ds := sqlitestore.NewDeviceStore(conn, w)
	now := time.Now().UTC().UnixMilli()

	if _, err := conn.Exec(`
INSERT INTO devices(device_id, enabled, commissioned_at_ms, created_at_ms, updated_at_ms)
VALUES ('door-001', 1, ?, ?, ?)`, now, now, now); err != nil {
		t.Fatalf("seed device: %v", err)
	}

	if err := ds.MarkSeen(context.Background(), "door-001", time.Now().UTC()); err != nil {
		t.Fatalf("MarkSeen: %v", err)
	}

	known, err := ds.IsKnown(context.Background(), "door-001")
	if err != nil {
		t.Fatalf("IsKnown: %v", err)
	}
	if !known {
		t.Error("MarkSeen clobbered commissioning state")
	}
}

func TestDeviceStore_EmptyDeviceIDIsNoop(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	ds := sqlitestore.NewDeviceStore(conn, w)

	if err := ds.MarkSeen(context.Background(), "  ", time.Now()); err != nil {
		t.Fatalf("MarkSeen: %v", err)
	}
	var count int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM devices`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Errorf("blank device id created %d rows", count)
	}
}
