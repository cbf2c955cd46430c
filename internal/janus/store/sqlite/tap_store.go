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

// TapStore runs each tap's reads, mutations and audit append inside one
// transaction on the write serializer.
type TapStore struct {
	conn   *sql.DB
	writer *dbpkg.Writer
}

func NewTapStore(conn *sql.DB, writer *dbpkg.Writer) *TapStore {
	return &TapStore{conn: conn, writer: writer}
}

func (s *TapStore) Tap(ctx context.Context, fn func(tx store.TapTx) error) error {
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return fn(&tapTx{ctx: ctx, tx: tx})
	})
}

type tapTx struct {
	ctx context.Context
	tx  *sql.Tx
}

func (t *tapTx) CardByUIDHash(hash string) (*model.Card, error) {
	row := t.tx.QueryRowContext(t.ctx, `
SELECT id, uid_hash, card_number, user_id, status, issued_at_ms,
       expires_at_ms, total_uses, failed_attempts, last_failed_ms,
       last_used_ms, revocation_reason
FROM cards WHERE uid_hash = ?;`, hash)

	var (
		c          model.Card
		number     sql.NullString
		issuedMs   int64
		expiresMs  sql.NullInt64
		failedMs   sql.NullInt64
		usedMs     sql.NullInt64
		revocation sql.NullString
	)
	err := row.Scan(&c.ID, &c.UIDHash, &number, &c.UserID, &c.Status,
		&issuedMs, &expiresMs, &c.TotalUses, &c.FailedAttempts,
		&failedMs, &usedMs, &revocation)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("CardByUIDHash: %w", err)
	}
	c.Number = number.String
	c.IssuedAt = time.UnixMilli(issuedMs).UTC()
	c.ExpiresAt = msTime(expiresMs)
	c.LastFailedAt = msTime(failedMs)
	c.LastUsedAt = msTime(usedMs)
	c.RevocationReason = revocation.String
	return &c, nil
}

func (t *tapTx) ZoneByID(id int64) (*model.Zone, error) {
	row := t.tx.QueryRowContext(t.ctx, `
SELECT id, name, code, description, security_level, is_active,
       is_restricted, restriction_reason, max_capacity, occupancy,
       open_time, close_time, requires_two_factor, last_accessed_ms
FROM zones WHERE id = ?;`, id)
	return scanZone(row)
}

func (t *tapTx) UserByID(id int64) (*model.User, error) {
	row := t.tx.QueryRowContext(t.ctx, `
SELECT id, first_name, last_name, email, employee_id, department, role,
       is_active, hire_date_ms, termination_ms, last_access_ms
FROM users WHERE id = ?;`, id)
	return scanUser(row)
}

func (t *tapTx) UserHasZoneGrant(userID, zoneID int64) (bool, error) {
	var one int
	err := t.tx.QueryRowContext(t.ctx, `
SELECT 1 FROM user_zone_grants WHERE user_id = ? AND zone_id = ?;`,
		userID, zoneID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("UserHasZoneGrant: %w", err)
	}
	return true, nil
}

func (t *tapTx) ActivePoliciesForZone(zoneID int64) ([]model.Policy, error) {
	rows, err := t.tx.QueryContext(t.ctx, `
SELECT id, zone_id, kind, name, is_active, priority, time_start,
       time_end, days_of_week, valid_from_ms, valid_until_ms,
       allowed_roles, denied_roles, whitelist_users, blacklist_users
FROM access_policies
WHERE zone_id = ? AND is_active = 1
ORDER BY priority DESC, id ASC;`, zoneID)
	if err != nil {
		return nil, fmt.Errorf("ActivePoliciesForZone: %w", err)
	}
	defer rows.Close()

	var out []model.Policy
	for rows.Next() {
		var (
			p          model.Policy
			active     int
			timeStart  sql.NullString
			timeEnd    sql.NullString
			days       sql.NullString
			fromMs     sql.NullInt64
			untilMs    sql.NullInt64
			allowed    sql.NullString
			denied     sql.NullString
			whitelist  sql.NullString
			blacklist  sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.ZoneID, &p.Kind, &p.Name, &active,
			&p.Priority, &timeStart, &timeEnd, &days, &fromMs, &untilMs,
			&allowed, &denied, &whitelist, &blacklist); err != nil {
			return nil, fmt.Errorf("ActivePoliciesForZone scan: %w", err)
		}
		p.Active = active == 1
		p.TimeStart = timeStart.String
		p.TimeEnd = timeEnd.String
		p.DaysOfWeek = csvInts(days)
		p.ValidFrom = msTime(fromMs)
		p.ValidUntil = msTime(untilMs)
		p.AllowedRoles = csvRoles(allowed)
		p.DeniedRoles = csvRoles(denied)
		p.WhitelistUserIDs = csvInt64s(whitelist)
		p.BlacklistUserIDs = csvInt64s(blacklist)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (t *tapTx) LogByID(id string) (*model.LogEntry, error) {
	row := t.tx.QueryRowContext(t.ctx, `
SELECT `+logColumns+` FROM access_logs WHERE id = ?;`, id)
	e, err := scanLog(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return e, err
}

func (t *tapTx) SaveCard(c *model.Card) error {
	now := time.Now().UTC().UnixMilli()
	_, err := t.tx.ExecContext(t.ctx, `
UPDATE cards
SET status = ?, total_uses = ?, failed_attempts = ?, last_failed_ms = ?,
    last_used_ms = ?, revocation_reason = ?, updated_at_ms = ?
WHERE id = ?;`,
		c.Status, c.TotalUses, c.FailedAttempts, msArg(c.LastFailedAt),
		msArg(c.LastUsedAt), nullString(c.RevocationReason), now, c.ID)
	if err != nil {
		return fmt.Errorf("SaveCard %d: %w", c.ID, err)
	}
	return nil
}

func (t *tapTx) SaveZone(z *model.Zone) error {
	now := time.Now().UTC().UnixMilli()
	_, err := t.tx.ExecContext(t.ctx, `
UPDATE zones
SET is_active = ?, is_restricted = ?, restriction_reason = ?,
    occupancy = ?, last_accessed_ms = ?, updated_at_ms = ?
WHERE id = ?;`,
		boolInt(z.Active), boolInt(z.Restricted),
		nullString(z.RestrictionReason), z.Occupancy,
		msArg(z.LastAccessedAt), now, z.ID)
	if err != nil {
		return fmt.Errorf("SaveZone %d: %w", z.ID, err)
	}
	return nil
}

func (t *tapTx) SaveUser(u *model.User) error {
	now := time.Now().UTC().UnixMilli()
	_, err := t.tx.ExecContext(t.ctx, `
UPDATE users
SET is_active = ?, termination_ms = ?, last_access_ms = ?, updated_at_ms = ?
WHERE id = ?;`,
		boolInt(u.Active), msArg(u.TerminationDate), msArg(u.LastAccessAt),
		now, u.ID)
	if err != nil {
		return fmt.Errorf("SaveUser %d: %w", u.ID, err)
	}
	return nil
}

func (t *tapTx) AppendLog(e *model.LogEntry) error {
	_, err := t.tx.ExecContext(t.ctx, `
INSERT INTO access_logs(
  id, user_id, card_id, zone_id, uid_attempted, status, reason,
  device_id, decision_time_us, ts_ms, is_entry, exit_ms, duration_s,
  is_suspicious, alert_triggered, notes
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		e.ID, nullInt64(e.UserID), nullInt64(e.CardID), nullInt64(e.ZoneID),
		e.UIDAttempted, e.Status, e.Reason, nullString(e.DeviceID),
		e.DecisionTime.Microseconds(), e.Timestamp.UTC().UnixMilli(),
		boolInt(e.IsEntry), msArg(e.ExitTime), nullInt64(e.DurationSeconds),
		boolInt(e.Suspicious), boolInt(e.AlertTriggered), nullString(e.Notes))
	if err != nil {
		return fmt.Errorf("AppendLog: %w", err)
	}
	return nil
}

func (t *tapTx) UpdateLog(e *model.LogEntry) error {
	_, err := t.tx.ExecContext(t.ctx, `
UPDATE access_logs
SET exit_ms = ?, duration_s = ?, is_suspicious = ?, alert_triggered = ?, notes = ?
WHERE id = ?;`,
		msArg(e.ExitTime), nullInt64(e.DurationSeconds),
		boolInt(e.Suspicious), boolInt(e.AlertTriggered),
		nullString(e.Notes), e.ID)
	if err != nil {
		return fmt.Errorf("UpdateLog %s: %w", e.ID, err)
	}
	return nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}
