package model

import (
	"testing"
	"time"
)

// Tuesday 2026-03-10, 12:00 local.
var policyNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func employee() *User {
	return &User{ID: 42, Role: RoleEmployee, Active: true}
}

func TestPolicyEvaluate_InactivePolicyNeverDenies(t *testing.T) {
	p := Policy{Name: "After Hours", Active: false, TimeStart: "00:00", TimeEnd: "00:01"}
	status, _ := p.Evaluate(employee(), policyNow, policyNow)
	if status != StatusGranted {
		t.Fatalf("inactive policy denied: %s", status)
	}
}

func TestPolicyEvaluate_OutOfValidityNeverDenies(t *testing.T) {
	until := policyNow.AddDate(0, 0, -1)
	p := Policy{Name: "Expired Rule", Active: true, ValidUntil: &until, DeniedRoles: []UserRole{RoleEmployee}}
	status, _ := p.Evaluate(employee(), policyNow, policyNow)
	if status != StatusGranted {
		t.Fatalf("lapsed policy denied: %s", status)
	}
}

func TestPolicyEvaluate_ValidityCheckedAgainstUTC(t *testing.T) {
	// The validity bounds are UTC instants. A +3:30 local offset must
	// not push a still-valid policy past its ValidUntil.
	until := policyNow.Add(time.Hour)
	p := Policy{Name: "Staff Only", Active: true, ValidUntil: &until, DeniedRoles: []UserRole{RoleVisitor}}

	visitor := &User{ID: 9, Role: RoleVisitor, Active: true}
	local := policyNow.Add(210 * time.Minute)
	if status, _ := p.Evaluate(visitor, policyNow, local); status != StatusDenied {
		t.Fatalf("valid policy skipped under local clock: %s", status)
	}
}

func TestPolicyEvaluate_TimeWindow(t *testing.T) {
	p := Policy{Name: "Business Hours", Active: true, TimeStart: "09:00", TimeEnd: "17:00"}

	if status, _ := p.Evaluate(employee(), policyNow, policyNow); status != StatusGranted {
		t.Errorf("12:00 inside 09:00-17:00 denied: %s", status)
	}

	evening := time.Date(2026, 3, 10, 22, 0, 0, 0, time.UTC)
	status, reason := p.Evaluate(employee(), policyNow, evening)
	if status != StatusInvalidTime {
		t.Fatalf("22:00 outside window: status = %s", status)
	}
	if reason != "Outside allowed time for policy Business Hours" {
		t.Errorf("reason = %q", reason)
	}
}

func TestPolicyEvaluate_DaysOfWeek(t *testing.T) {
	// Weekdays only, ISO 1-5.
	p := Policy{Name: "Weekdays", Active: true, DaysOfWeek: []int{1, 2, 3, 4, 5}}

	if status, _ := p.Evaluate(employee(), policyNow, policyNow); status != StatusGranted {
		t.Errorf("Tuesday denied: %s", status)
	}

	sunday := time.Date(2026, 3, 8, 12, 0, 0, 0, time.UTC)
	if status, _ := p.Evaluate(employee(), sunday, sunday); status != StatusInvalidTime {
		t.Errorf("Sunday allowed by weekday policy: %s", status)
	}
}

func TestPolicyEvaluate_SundayIsISOSeven(t *testing.T) {
	p := Policy{Name: "Sundays", Active: true, DaysOfWeek: []int{7}}

	sunday := time.Date(2026, 3, 8, 12, 0, 0, 0, time.UTC)
	if status, _ := p.Evaluate(employee(), sunday, sunday); status != StatusGranted {
		t.Errorf("ISO day 7 should match Sunday: %s", status)
	}
}

func TestPolicyEvaluate_Blacklist(t *testing.T) {
	p := Policy{Name: "Banned", Active: true, BlacklistUserIDs: []int64{42}}
	status, reason := p.Evaluate(employee(), policyNow, policyNow)
	if status != StatusBlacklisted {
		t.Fatalf("status = %s", status)
	}
	if reason != "User is blacklisted by policy Banned" {
		t.Errorf("reason = %q", reason)
	}
}

func TestPolicyEvaluate_WhitelistRequiresMembership(t *testing.T) {
	p := Policy{Name: "VIP", Kind: KindWhitelist, Active: true, WhitelistUserIDs: []int64{7}}

	status, reason := p.Evaluate(employee(), policyNow, policyNow)
	if status != StatusDenied {
		t.Fatalf("non-member admitted: %s", status)
	}
	if reason != "User not in whitelist for policy VIP" {
		t.Errorf("reason = %q", reason)
	}

	p.WhitelistUserIDs = append(p.WhitelistUserIDs, 42)
	if status, _ := p.Evaluate(employee(), policyNow, policyNow); status != StatusGranted {
		t.Errorf("member denied: %s", status)
	}
}

func TestPolicyEvaluate_RoleLists(t *testing.T) {
	p := Policy{Name: "Staff Only", Active: true, DeniedRoles: []UserRole{RoleVisitor}}

	visitor := &User{ID: 9, Role: RoleVisitor, Active: true}
	status, reason := p.Evaluate(visitor, policyNow, policyNow)
	if status != StatusDenied {
		t.Fatalf("denied role admitted: %s", status)
	}
	if reason != "Role 'visitor' not allowed by policy Staff Only" {
		t.Errorf("reason = %q", reason)
	}

	if status, _ := p.Evaluate(employee(), policyNow, policyNow); status != StatusGranted {
		t.Errorf("employee denied: %s", status)
	}
}

func TestPolicyEvaluate_DenyListBeatsAllowList(t *testing.T) {
	p := Policy{
		Name:         "Mixed",
		Active:       true,
		AllowedRoles: []UserRole{RoleEmployee},
		DeniedRoles:  []UserRole{RoleEmployee},
	}
	if status, _ := p.Evaluate(employee(), policyNow, policyNow); status != StatusDenied {
		t.Errorf("deny list should win: %s", status)
	}
}

func TestEvaluatePolicies_AnyDenialWins(t *testing.T) {
	policies := []Policy{
		{Name: "Open", Active: true},
		{Name: "Banned", Active: true, BlacklistUserIDs: []int64{42}},
		{Name: "Also Open", Active: true},
	}
	status, _ := EvaluatePolicies(policies, employee(), policyNow, policyNow)
	if status != StatusBlacklisted {
		t.Fatalf("deny-dominant sweep failed: %s", status)
	}
}

func TestEvaluatePolicies_AllPassGrants(t *testing.T) {
	policies := []Policy{
		{Name: "Hours", Active: true, TimeStart: "09:00", TimeEnd: "17:00"},
		{Name: "Staff", Active: true, DeniedRoles: []UserRole{RoleGuest}},
	}
	status, reason := EvaluatePolicies(policies, employee(), policyNow, policyNow)
	if status != StatusGranted {
		t.Fatalf("got %s (%q)", status, reason)
	}
}
