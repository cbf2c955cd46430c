package httpapi

import (
	"time"

	"github.com/janus-access/server/internal/janus/model"
)

// Listing DTOs. The API never exposes UID hashes or internal counters
// beyond what the dashboards need.

type zoneDTO struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Code          string `json:"code,omitempty"`
	Description   string `json:"description,omitempty"`
	SecurityLevel int    `json:"security_level"`
	Active        bool   `json:"is_active"`
	Restricted    bool   `json:"is_restricted"`
	Occupancy     int    `json:"occupancy"`
	MaxCapacity   *int   `json:"max_capacity,omitempty"`
	OpenTime      string `json:"open_time,omitempty"`
	CloseTime     string `json:"close_time,omitempty"`
}

func toZoneDTO(z model.Zone) zoneDTO {
	return zoneDTO{
		ID:            z.ID,
		Name:          z.Name,
		Code:          z.Code,
		Description:   z.Description,
		SecurityLevel: z.SecurityLevel,
		Active:        z.Active,
		Restricted:    z.Restricted,
		Occupancy:     z.Occupancy,
		MaxCapacity:   z.MaxCapacity,
		OpenTime:      z.OpenTime,
		CloseTime:     z.CloseTime,
	}
}

type userDTO struct {
	ID         int64  `json:"id"`
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	EmployeeID string `json:"employee_id,omitempty"`
	Department string `json:"department,omitempty"`
	Role       string `json:"role"`
	RoleRank   int    `json:"role_priority"`
	Active     bool   `json:"is_active"`
	LastAccess string `json:"last_access,omitempty"`
}

func toUserDTO(u model.User) userDTO {
	d := userDTO{
		ID:         u.ID,
		FullName:   u.FullName(),
		Email:      u.Email,
		EmployeeID: u.EmployeeID,
		Department: u.Department,
		Role:       string(u.Role),
		RoleRank:   u.Role.Priority(),
		Active:     u.Active,
	}
	if u.LastAccessAt != nil {
		d.LastAccess = u.LastAccessAt.Format(time.RFC3339)
	}
	return d
}

type logDTO struct {
	ID           string `json:"id"`
	Timestamp    string `json:"timestamp"`
	Status       string `json:"status"`
	Reason       string `json:"reason,omitempty"`
	UIDAttempted string `json:"uid_attempted"`
	UserID       *int64 `json:"user_id"`
	CardID       *int64 `json:"card_id"`
	ZoneID       *int64 `json:"zone_id"`
	DeviceID     string `json:"device_id,omitempty"`
	IsEntry      bool   `json:"is_entry"`
	ExitTime     string `json:"exit_time,omitempty"`
	DurationS    *int64 `json:"duration_seconds,omitempty"`
	Suspicious   bool   `json:"is_suspicious"`
	DecisionUs   int64  `json:"decision_time_us"`
}

func toLogDTO(e model.LogEntry) logDTO {
	d := logDTO{
		ID:           e.ID,
		Timestamp:    e.Timestamp.Format(time.RFC3339Nano),
		Status:       string(e.Status),
		Reason:       e.Reason,
		UIDAttempted: e.UIDAttempted,
		UserID:       e.UserID,
		CardID:       e.CardID,
		ZoneID:       e.ZoneID,
		DeviceID:     e.DeviceID,
		IsEntry:      e.IsEntry,
		DurationS:    e.DurationSeconds,
		Suspicious:   e.Suspicious,
		DecisionUs:   e.DecisionTime.Microseconds(),
	}
	if e.ExitTime != nil {
		d.ExitTime = e.ExitTime.Format(time.RFC3339Nano)
	}
	return d
}

func toLogDTOs(entries []model.LogEntry) []logDTO {
	out := make([]logDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, toLogDTO(e))
	}
	return out
}
