package sqlite_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/janus-access/server/internal/db"
)

// openTestDB returns an in-memory SQLite connection with the same PRAGMAs
// and schema as production.  The connection is closed automatically when the
// test finishes.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// Each call gets a unique in-memory database.  The shared-cache URI
	// keeps the database alive for the lifetime of the connection pool
	// (important because sql.DB may close/reopen the underlying conn).
	dsn := fmt.Sprintf(
		"file:test_%s?mode=memory&cache=shared&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)",
		t.Name(),
	)

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("openTestDB: sql.Open: %v", err)
	}

	// Match production: single connection for SQLite safety.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	if err := conn.Ping(); err != nil {
		conn.Close()
		t.Fatalf("openTestDB: ping: %v", err)
	}

	// Apply the same migrations as production.
	if err := db.Migrate(context.Background(), conn); err != nil {
		conn.Close()
		t.Fatalf("openTestDB: migrate: %v", err)
	}

	t.Cleanup(func() { conn.Close() })
	return conn
}

// newTestWriter returns a db.Writer backed by conn.  The writer is closed
// automatically when the test finishes.
func newTestWriter(t *testing.T, conn *sql.DB) *db.Writer {
	t.Helper()

	w := db.NewWriter(conn)
	t.Cleanup(func() { w.Close() })
	return w
}

// seedUser inserts an active employee row and returns its id.
func seedUser(t *testing.T, conn *sql.DB, first, last, email string) int64 {
	t.Helper()
	now := time.Now().UTC().UnixMilli()
	res, err := conn.Exec(`
INSERT INTO users(first_name, last_name, email, role, is_active, created_at_ms, updated_at_ms)
VALUES (?, ?, ?, 'employee', 1, ?, ?)`, first, last, email, now, now)
	if err != nil {
		t.Fatalf("seedUser: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}

// seedZone inserts an active unrestricted zone row and returns its id.
func seedZone(t *testing.T, conn *sql.DB, name string) int64 {
	t.Helper()
	now := time.Now().UTC().UnixMilli()
	res, err := conn.Exec(`
INSERT INTO zones(name, is_active, created_at_ms, updated_at_ms)
VALUES (?, 1, ?, ?)`, name, now, now)
	if err != nil {
		t.Fatalf("seedZone: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}

// seedCard inserts an active card owned by userID and returns its id.
func seedCard(t *testing.T, conn *sql.DB, userID int64, uidHash string) int64 {
	t.Helper()
	now := time.Now().UTC().UnixMilli()
	res, err := conn.Exec(`
INSERT INTO cards(uid_hash, user_id, status, issued_at_ms, created_at_ms, updated_at_ms)
VALUES (?, ?, 'active', ?, ?, ?)`, uidHash, userID, now, now, now)
	if err != nil {
		t.Fatalf("seedCard: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}

// seedGrant links userID to zoneID.
func seedGrant(t *testing.T, conn *sql.DB, userID, zoneID int64) {
	t.Helper()
	now := time.Now().UTC().UnixMilli()
	if _, err := conn.Exec(`
INSERT INTO user_zone_grants(user_id, zone_id, granted_at_ms)
VALUES (?, ?, ?)`, userID, zoneID, now); err != nil {
		t.Fatalf("seedGrant: %v", err)
	}
}
