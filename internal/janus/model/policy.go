package model

import (
	"slices"
	"time"
)

// Policy is a snapshot of one zone-scoped access rule. Inactive or
// out-of-validity policies fail open: they can never deny.
type Policy struct {
	ID     int64
	ZoneID int64
	Kind   PolicyKind
	Name   string

	Active   bool
	Priority int

	// Time-of-day window, local "HH:MM" strings. Both empty = no window.
	TimeStart string
	TimeEnd   string
	// ISO weekday numbers (1 = Monday .. 7 = Sunday). Empty = every day.
	DaysOfWeek []int

	ValidFrom  *time.Time
	ValidUntil *time.Time

	AllowedRoles []UserRole
	DeniedRoles  []UserRole

	WhitelistUserIDs []int64
	BlacklistUserIDs []int64
}

// InValidity reports whether now falls inside the policy's validity
// window. Open-ended bounds pass.
func (p *Policy) InValidity(now time.Time) bool {
	if p.ValidFrom != nil && now.Before(*p.ValidFrom) {
		return false
	}
	if p.ValidUntil != nil && now.After(*p.ValidUntil) {
		return false
	}
	return true
}

// timeAllowed checks the day-of-week and time-of-day restrictions
// against a local time.
func (p *Policy) timeAllowed(local time.Time) bool {
	if len(p.DaysOfWeek) > 0 {
		iso := int(local.Weekday())
		if iso == 0 {
			iso = 7 // time.Sunday is 0, ISO Sunday is 7
		}
		if !slices.Contains(p.DaysOfWeek, iso) {
			return false
		}
	}
	if p.TimeStart != "" && p.TimeEnd != "" {
		hm := local.Format("15:04")
		if hm < p.TimeStart || hm > p.TimeEnd {
			return false
		}
	}
	return true
}

// roleAllowed checks the role lists; the deny-list is consulted before
// the allow-list, and an empty allow-list admits every role not denied.
func (p *Policy) roleAllowed(role UserRole) bool {
	if slices.Contains(p.DeniedRoles, role) {
		return false
	}
	if len(p.AllowedRoles) > 0 {
		return slices.Contains(p.AllowedRoles, role)
	}
	return true
}

// Evaluate runs one policy against a user. The validity window holds
// UTC instants and is checked against now; the day and HH:MM rules are
// checked against local. The first failing rule wins; a policy that is
// inactive or outside its validity window passes unconditionally.
func (p *Policy) Evaluate(user *User, now, local time.Time) (AccessStatus, string) {
	if !p.Active {
		return StatusGranted, ""
	}
	if !p.InValidity(now) {
		return StatusGranted, ""
	}
	if !p.timeAllowed(local) {
		return StatusInvalidTime, "Outside allowed time for policy " + p.Name
	}
	if user != nil {
		if slices.Contains(p.BlacklistUserIDs, user.ID) {
			return StatusBlacklisted, "User is blacklisted by policy " + p.Name
		}
		if p.Kind == KindWhitelist && !slices.Contains(p.WhitelistUserIDs, user.ID) {
			return StatusDenied, "User not in whitelist for policy " + p.Name
		}
		if !p.roleAllowed(user.Role) {
			return StatusDenied, "Role '" + string(user.Role) + "' not allowed by policy " + p.Name
		}
	}
	return StatusGranted, ""
}

// EvaluatePolicies sweeps every policy; any single denial wins. Priority
// orders the fetch for administrators but does not short-circuit
// evaluation.
func EvaluatePolicies(policies []Policy, user *User, now, local time.Time) (AccessStatus, string) {
	for i := range policies {
		if status, reason := policies[i].Evaluate(user, now, local); !status.IsSuccess() {
			return status, reason
		}
	}
	return StatusGranted, ""
}
