package model

import "time"

// User is a snapshot of a credential owner.
type User struct {
	ID         int64
	FirstName  string
	LastName   string
	Email      string
	EmployeeID string
	Department string

	Role   UserRole
	Active bool

	HireDate        *time.Time
	TerminationDate *time.Time
	LastAccessAt    *time.Time
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// DisplayName is the name shown on decision results and listings, with
// the employee id appended when one is assigned.
func (u *User) DisplayName() string {
	if u.EmployeeID != "" {
		return u.FullName() + " (" + u.EmployeeID + ")"
	}
	return u.FullName()
}

// IsEmployed reports whether the user's employment has not been
// terminated as of now. A past termination date always wins over the
// active flag.
func (u *User) IsEmployed(now time.Time) bool {
	return u.TerminationDate == nil || !u.TerminationDate.Before(now)
}

// TouchLastAccess stamps the user's last successful access.
func (u *User) TouchLastAccess(now time.Time) {
	u.LastAccessAt = &now
}
