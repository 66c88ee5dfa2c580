package domain

import "time"

// Role enumerates user access levels.
type Role string

const (
	RoleEndUser      Role = "EndUser"
	RoleSupportAgent Role = "SupportAgent"
	RoleAdmin        Role = "Admin"
)

// Valid reports whether the role is one of the known levels.
func (r Role) Valid() bool {
	switch r {
	case RoleEndUser, RoleSupportAgent, RoleAdmin:
		return true
	}
	return false
}

// IsStaff reports whether the role may triage tickets.
func (r Role) IsStaff() bool {
	return r == RoleSupportAgent || r == RoleAdmin
}

// User is the domain model for everyone who signs in: end-users who
// file tickets, support agents and admins who work them.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Sanitized returns a copy safe to hand to clients (no credential hash).
func (u User) Sanitized() User {
	u.PasswordHash = ""
	return u
}
