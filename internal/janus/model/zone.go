package model

import "time"

// Zone is a snapshot of a controlled area. Operating hours are local
// "HH:MM" strings compared lexicographically; callers pass a local time
// produced by applying the site's fixed UTC offset.
type Zone struct {
	ID          int64
	Name        string
	Code        string
	Description string

	SecurityLevel     int
	Active            bool
	Restricted        bool
	RestrictionReason string

	MaxCapacity *int
	Occupancy   int

	OpenTime  string // "HH:MM", empty = always open
	CloseTime string

	RequiresTwoFactor bool

	LastAccessedAt *time.Time
}

// AtCapacity reports whether the occupancy counter has reached the
// configured maximum. Zones without a maximum are never at capacity.
func (z *Zone) AtCapacity() bool {
	return z.MaxCapacity != nil && z.Occupancy >= *z.MaxCapacity
}

// OpenAt reports whether the zone's operating window covers the given
// local time. Zones without a window are always open.
func (z *Zone) OpenAt(local time.Time) bool {
	if z.OpenTime == "" || z.CloseTime == "" {
		return true
	}
	hm := local.Format("15:04")
	return z.OpenTime <= hm && hm <= z.CloseTime
}

// CanEnter runs the zone-authority checks in order, first failure wins:
// active flag, restriction, capacity, operating window, grant. It never
// mutates the occupancy counter; the orchestrator increments only on a
// final grant.
func (z *Zone) CanEnter(hasGrant bool, userKnown bool, local time.Time) (AccessStatus, string) {
	if !z.Active {
		return StatusDenied, "Zone is inactive"
	}
	if z.Restricted {
		reason := "Zone is restricted"
		if z.RestrictionReason != "" {
			reason += ": " + z.RestrictionReason
		}
		return StatusDenied, reason
	}
	if z.AtCapacity() {
		return StatusDenied, "Zone is at maximum capacity"
	}
	if !z.OpenAt(local) {
		return StatusInvalidTime, "Zone is closed"
	}
	if userKnown && !hasGrant {
		return StatusDenied, "User does not have access to this zone"
	}
	return StatusGranted, ""
}

// IncrementOccupancy bumps the counter and stamps last-accessed. A zone
// already at capacity is left untouched.
func (z *Zone) IncrementOccupancy(now time.Time) {
	if z.AtCapacity() {
		return
	}
	z.Occupancy++
	z.LastAccessedAt = &now
}

// DecrementOccupancy lowers the counter, floored at zero.
func (z *Zone) DecrementOccupancy() {
	if z.Occupancy > 0 {
		z.Occupancy--
	}
}
