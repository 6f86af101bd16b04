package services

import "golang.org/x/exp/slices"

// Role is the closed set of actor roles. Anything else coming off a token
// is treated as no role at all.
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

var moderatorRoles = []Role{RoleAdmin, RoleSuperAdmin}

// ParseRole validates a raw role string against the closed set.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleUser:
		return RoleUser, true
	case RoleAdmin:
		return RoleAdmin, true
	case RoleSuperAdmin:
		return RoleSuperAdmin, true
	default:
		return "", false
	}
}

// CanModerate reports whether the role may approve/reject events and reach
// the admin surface.
func (r Role) CanModerate() bool {
	return slices.Contains(moderatorRoles, r)
}

func (r Role) IsSuperAdmin() bool {
	return r == RoleSuperAdmin
}
