// Package store defines the repository boundary between the decision
// engine and its persistence. Two implementations exist: sqlite for
// production and memory for dev/tests.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/janus-access/server/internal/janus/model"
)

// ErrNotFound is returned by point lookups outside a tap transaction
// when the row does not exist. Inside a TapTx, lookups return (nil, nil)
// instead so the orchestrator can classify the miss itself.
var ErrNotFound = errors.New("not found")

// TapTx is the read/write surface available inside a single tap's
// transaction. Either every write made through it commits, or none do.
// Lookups return nil (no error) for missing rows.
type TapTx interface {
	CardByUIDHash(hash string) (*model.Card, error)
	ZoneByID(id int64) (*model.Zone, error)
	UserByID(id int64) (*model.User, error)
	UserHasZoneGrant(userID, zoneID int64) (bool, error)
	ActivePoliciesForZone(zoneID int64) ([]model.Policy, error)
	LogByID(id string) (*model.LogEntry, error)

	SaveCard(c *model.Card) error
	SaveZone(z *model.Zone) error
	SaveUser(u *model.User) error
	AppendLog(e *model.LogEntry) error
	UpdateLog(e *model.LogEntry) error
}

// TapStore runs fn inside one atomic unit. A non-nil error from fn
// rolls back every staged write; nil commits them all, audit row
// included, before Tap returns.
type TapStore interface {
	Tap(ctx context.Context, fn func(tx TapTx) error) error
}

// AuditStore exposes the read side of the audit trail. All queries are
// pure, time-windowed and ordered newest first.
type AuditStore interface {
	RecentLogs(ctx context.Context, limit int) ([]model.LogEntry, error)
	RecentFailures(ctx context.Context, since time.Time, limit int) ([]model.LogEntry, error)
	SuspiciousSince(ctx context.Context, since time.Time) ([]model.LogEntry, error)
	HistoryForUser(ctx context.Context, userID int64, since time.Time) ([]model.LogEntry, error)
	HistoryForZone(ctx context.Context, zoneID int64, since time.Time) ([]model.LogEntry, error)
	AttemptCountForCard(ctx context.Context, cardID int64, since time.Time) (int, error)

	// MarkSuspicious retroactively flags an entry. The only mutations an
	// audit row ever sees are this flag and the exit stamp.
	MarkSuspicious(ctx context.Context, logID string, note string) error

	// PruneOlderThan deletes entries older than cutoff, returning the
	// number removed. Retention is opt-in; the default keeps everything.
	PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// DirectoryStore serves the thin HTTP listing endpoints.
type DirectoryStore interface {
	ListZones(ctx context.Context) ([]model.Zone, error)
	ListUsers(ctx context.Context) ([]model.User, error)
}

// DeviceStore tracks reader devices. Unknown devices do not block a
// decision, but their taps are flagged in the audit trail.
type DeviceStore interface {
	IsKnown(ctx context.Context, deviceID string) (bool, error)
	MarkSeen(ctx context.Context, deviceID string, t time.Time) error
}
