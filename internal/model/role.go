// Package model defines the data structures used throughout the application.
package model

// Role is the access class assigned to an identity.
//
// Roles are stored as strings in the user_roles table but validated into
// this closed set at the lookup boundary. A string that is neither "admin"
// nor "donor" maps to RoleUnknown, which callers treat as a data-integrity
// fault rather than silently defaulting to "no role".
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleDonor   Role = "donor"
	RoleNone    Role = "none"    // no row in user_roles
	RoleUnknown Role = "unknown" // unrecognised value in user_roles
)

// ParseRole validates a raw role string from the store.
// The second return value is false for values outside the known set.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleDonor:
		return RoleDonor, true
	}
	return RoleUnknown, false
}

// HomePage returns the dashboard route an identity with this role is sent
// to when it requests a page it may not view.
func (r Role) HomePage() string {
	switch r {
	case RoleAdmin:
		return "/admin-dashboard"
	case RoleDonor:
		return "/donor-dashboard"
	default:
		return "/dashboard"
	}
}

// Identity is the authenticated subject for the current session.
// It is ephemeral — derived from the session token on every request and
// never persisted by this subsystem.
type Identity struct {
	Subject string `json:"subject"`
}
