package model

import "time"

// LockoutThreshold is the number of consecutive failed attempts after
// which a card is auto-suspended.
const LockoutThreshold = 5

// Card is a snapshot of a credential. Validation methods are pure; the
// mutating methods below only touch the snapshot; persisting the change
// is the caller's job, inside the tap's transaction.
type Card struct {
	ID      int64
	UIDHash string
	Number  string
	UserID  int64

	Status    CardStatus
	IssuedAt  time.Time
	ExpiresAt *time.Time

	TotalUses        int
	FailedAttempts   int
	LastFailedAt     *time.Time
	LastUsedAt       *time.Time
	RevocationReason string
}

// IsExpired reports whether the expiry timestamp has passed, regardless
// of what the status column says.
func (c *Card) IsExpired(now time.Time) bool {
	return c.ExpiresAt != nil && c.ExpiresAt.Before(now)
}

// ValidateForZone runs the card-authority checks in order, first failure
// wins: card status, expiry, owner account state, owner employment, zone
// grant. Returns StatusGranted with an empty reason when every check
// passes.
func (c *Card) ValidateForZone(owner *User, zone *Zone, hasGrant bool, now time.Time) (AccessStatus, string) {
	if c.Status != CardActive {
		switch {
		case c.Status == CardExpired || c.IsExpired(now):
			return StatusExpired, "Card has expired"
		case c.Status == CardLost:
			return StatusBlacklisted, "Card reported as lost"
		case c.Status == CardStolen:
			return StatusBlacklisted, "Card reported as stolen"
		case c.Status == CardSuspended:
			return StatusBlacklisted, "Card is suspended"
		case c.Status == CardInactive:
			return StatusInactive, "Card is inactive"
		case c.Status == CardDamaged:
			return StatusDenied, "Card is damaged"
		default:
			return StatusDenied, "Card is " + string(c.Status)
		}
	}
	if c.IsExpired(now) {
		return StatusExpired, "Card has expired"
	}
	if !owner.Active {
		return StatusInactive, "User account is inactive"
	}
	if !owner.IsEmployed(now) {
		return StatusDenied, "User employment terminated"
	}
	if zone != nil && !hasGrant {
		return StatusDenied, "No access to zone: " + zone.Name
	}
	return StatusGranted, ""
}

// RecordSuccess applies the grant-side bookkeeping: usage counter,
// last-used timestamp, and a failure-counter reset.
func (c *Card) RecordSuccess(now time.Time) {
	c.TotalUses++
	c.LastUsedAt = &now
	c.ResetFailedAttempts()
}

// RecordFailure increments the consecutive-failure counter and, at the
// lockout threshold, auto-suspends the card. The suspension sticks even
// though the precipitating tap was denied.
func (c *Card) RecordFailure(now time.Time) {
	c.FailedAttempts++
	c.LastFailedAt = &now
	if c.FailedAttempts >= LockoutThreshold && c.Status == CardActive {
		c.Status = CardSuspended
		c.RevocationReason = "Too many failed access attempts"
	}
}

// ResetFailedAttempts clears the failure counter. Idempotent.
func (c *Card) ResetFailedAttempts() {
	c.FailedAttempts = 0
	c.LastFailedAt = nil
}
