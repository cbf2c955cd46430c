package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/janus-access/server/internal/janus/model"
)

// DirectoryStore backs the read-only listing endpoints.
type DirectoryStore struct {
	conn *sql.DB
}

func NewDirectoryStore(conn *sql.DB) *DirectoryStore {
	return &DirectoryStore{conn: conn}
}

func (s *DirectoryStore) ListZones(ctx context.Context) ([]model.Zone, error) {
	rows, err := s.conn.QueryContext(ctx, `
SELECT id, name, code, description, security_level, is_active,
       is_restricted, restriction_reason, max_capacity, occupancy,
       open_time, close_time, requires_two_factor, last_accessed_ms
FROM zones ORDER BY id;`)
	if err != nil {
		return nil, fmt.Errorf("ListZones: %w", err)
	}
	defer rows.Close()

	var out []model.Zone
	for rows.Next() {
		z, err := scanZone(rows)
		if err != nil {
			return nil, fmt.Errorf("ListZones scan: %w", err)
		}
		out = append(out, *z)
	}
	return out, rows.Err()
}

func (s *DirectoryStore) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := s.conn.QueryContext(ctx, `
SELECT id, first_name, last_name, email, employee_id, department, role,
       is_active, hire_date_ms, termination_ms, last_access_ms
FROM users ORDER BY id;`)
	if err != nil {
		return nil, fmt.Errorf("ListUsers: %w", err)
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("ListUsers scan: %w", err)
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}
