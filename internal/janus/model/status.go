package model

// AccessStatus is the fixed outcome taxonomy for a tap decision.
// Every decision resolves to exactly one of these; the human-readable
// reason string carried alongside is always more specific.
type AccessStatus string

const (
	StatusGranted     AccessStatus = "granted"
	StatusDenied      AccessStatus = "denied"
	StatusExpired     AccessStatus = "expired"
	StatusBlacklisted AccessStatus = "blacklisted"
	StatusInactive    AccessStatus = "inactive"
	StatusInvalidTime AccessStatus = "invalid_time"
	StatusInvalidZone AccessStatus = "invalid_zone"
	StatusInvalidCard AccessStatus = "invalid_card"
)

// IsSuccess reports whether the status represents a granted tap.
func (s AccessStatus) IsSuccess() bool { return s == StatusGranted }

// CardStatus is the lifecycle state of a credential. Lost/Stolen/Expired
// are terminal; Active<->Suspended is reversible by explicit reactivation.
type CardStatus string

const (
	CardActive    CardStatus = "active"
	CardInactive  CardStatus = "inactive"
	CardSuspended CardStatus = "suspended"
	CardExpired   CardStatus = "expired"
	CardLost      CardStatus = "lost"
	CardStolen    CardStatus = "stolen"
	CardDamaged   CardStatus = "damaged"
	CardPending   CardStatus = "pending"
)

// Blocked reports whether the status is one of the blocked states that
// resolve to a blacklisted decision.
func (s CardStatus) Blocked() bool {
	return s == CardLost || s == CardStolen || s == CardSuspended
}

type UserRole string

const (
	RoleSuperAdmin UserRole = "super_admin"
	RoleAdmin      UserRole = "admin"
	RoleManager    UserRole = "manager"
	RoleEmployee   UserRole = "employee"
	RoleVisitor    UserRole = "visitor"
	RoleContractor UserRole = "contractor"
	RoleSecurity   UserRole = "security"
	RoleGuest      UserRole = "guest"
)

// Priority returns the ordinal rank of the role, higher is more
// privileged. Unknown roles rank 0.
func (r UserRole) Priority() int {
	switch r {
	case RoleSuperAdmin:
		return 100
	case RoleAdmin:
		return 90
	case RoleManager:
		return 70
	case RoleSecurity:
		return 60
	case RoleEmployee:
		return 50
	case RoleContractor:
		return 30
	case RoleVisitor:
		return 20
	case RoleGuest:
		return 10
	default:
		return 0
	}
}

func (r UserRole) IsAdmin() bool { return r == RoleSuperAdmin || r == RoleAdmin }

// PolicyKind classifies an access policy. The kind is descriptive;
// evaluation applies whichever rule fields are populated, except that
// KindWhitelist additionally requires explicit whitelist membership.
type PolicyKind string

const (
	KindWhitelist  PolicyKind = "whitelist"
	KindBlacklist  PolicyKind = "blacklist"
	KindTimeBased  PolicyKind = "time_based"
	KindRoleBased  PolicyKind = "role_based"
	KindZoneBased  PolicyKind = "zone_based"
	KindLevelBased PolicyKind = "level_based"
	KindCustom     PolicyKind = "custom"
)
