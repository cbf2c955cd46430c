// Package sqlite implements the repository boundary over a single
// SQLite database, with all writes serialized through db.Writer.
package sqlite

import (
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/janus-access/server/internal/janus/model"
)

// ── epoch-millisecond column helpers ─────────────────────────────────────────

func msArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().UnixMilli()
}

func msTime(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.UnixMilli(v.Int64).UTC()
	return &t
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// ── CSV column helpers ───────────────────────────────────────────────────────
// The policy table stores role and user lists the way the admin tooling
// writes them: comma-separated text columns.

func splitCSV(v sql.NullString) []string {
	if !v.Valid || strings.TrimSpace(v.String) == "" {
		return nil
	}
	raw := strings.Split(v.String, ",")
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func csvRoles(v sql.NullString) []model.UserRole {
	parts := splitCSV(v)
	if len(parts) == 0 {
		return nil
	}
	out := make([]model.UserRole, 0, len(parts))
	for _, p := range parts {
		out = append(out, model.UserRole(p))
	}
	return out
}

func csvInt64s(v sql.NullString) []int64 {
	parts := splitCSV(v)
	if len(parts) == 0 {
		return nil
	}
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		if n, err := strconv.ParseInt(p, 10, 64); err == nil {
			out = append(out, n)
		}
	}
	return out
}

func csvInts(v sql.NullString) []int {
	parts := splitCSV(v)
	if len(parts) == 0 {
		return nil
	}
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		if n, err := strconv.Atoi(p); err == nil {
			out = append(out, n)
		}
	}
	return out
}
