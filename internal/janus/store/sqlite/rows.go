package sqlite

import (
	"database/sql"
	"time"

	"github.com/janus-access/server/internal/janus/model"
)

// rowScanner lets the same scan helpers serve *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanZone(row rowScanner) (*model.Zone, error) {
	var (
		z           model.Zone
		code        sql.NullString
		description sql.NullString
		active      int
		restricted  int
		restriction sql.NullString
		maxCap      sql.NullInt64
		openTime    sql.NullString
		closeTime   sql.NullString
		twoFactor   int
		accessedMs  sql.NullInt64
	)
	err := row.Scan(&z.ID, &z.Name, &code, &description, &z.SecurityLevel,
		&active, &restricted, &restriction, &maxCap, &z.Occupancy,
		&openTime, &closeTime, &twoFactor, &accessedMs)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	z.Code = code.String
	z.Description = description.String
	z.Active = active == 1
	z.Restricted = restricted == 1
	z.RestrictionReason = restriction.String
	if maxCap.Valid {
		v := int(maxCap.Int64)
		z.MaxCapacity = &v
	}
	z.OpenTime = openTime.String
	z.CloseTime = closeTime.String
	z.RequiresTwoFactor = twoFactor == 1
	z.LastAccessedAt = msTime(accessedMs)
	return &z, nil
}

func scanUser(row rowScanner) (*model.User, error) {
	var (
		u          model.User
		employeeID sql.NullString
		department sql.NullString
		active     int
		hireMs     sql.NullInt64
		termMs     sql.NullInt64
		accessMs   sql.NullInt64
	)
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email,
		&employeeID, &department, &u.Role, &active, &hireMs, &termMs,
		&accessMs)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u.EmployeeID = employeeID.String
	u.Department = department.String
	u.Active = active == 1
	u.HireDate = msTime(hireMs)
	u.TerminationDate = msTime(termMs)
	u.LastAccessAt = msTime(accessMs)
	return &u, nil
}

const logColumns = `id, user_id, card_id, zone_id, uid_attempted, status,
reason, device_id, decision_time_us, ts_ms, is_entry, exit_ms,
duration_s, is_suspicious, alert_triggered, notes`

func scanLog(row rowScanner) (*model.LogEntry, error) {
	var (
		e          model.LogEntry
		userID     sql.NullInt64
		cardID     sql.NullInt64
		zoneID     sql.NullInt64
		reason     sql.NullString
		deviceID   sql.NullString
		decisionUs int64
		tsMs       int64
		isEntry    int
		exitMs     sql.NullInt64
		durationS  sql.NullInt64
		suspicious int
		alert      int
		notes      sql.NullString
	)
	err := row.Scan(&e.ID, &userID, &cardID, &zoneID, &e.UIDAttempted,
		&e.Status, &reason, &deviceID, &decisionUs, &tsMs, &isEntry,
		&exitMs, &durationS, &suspicious, &alert, &notes)
	if err != nil {
		return nil, err
	}
	if userID.Valid {
		e.UserID = &userID.Int64
	}
	if cardID.Valid {
		e.CardID = &cardID.Int64
	}
	if zoneID.Valid {
		e.ZoneID = &zoneID.Int64
	}
	e.Reason = reason.String
	e.DeviceID = deviceID.String
	e.DecisionTime = time.Duration(decisionUs) * time.Microsecond
	e.Timestamp = time.UnixMilli(tsMs).UTC()
	e.IsEntry = isEntry == 1
	e.ExitTime = msTime(exitMs)
	if durationS.Valid {
		e.DurationSeconds = &durationS.Int64
	}
	e.Suspicious = suspicious == 1
	e.AlertTriggered = alert == 1
	e.Notes = notes.String
	return &e, nil
}
