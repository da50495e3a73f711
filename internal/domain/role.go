package domain

// Role enumerates platform roles.
type Role string

const (
	RoleViewer     Role = "VIEWER"
	RoleTechnician Role = "TECHNICIAN"
	RoleITAdmin    Role = "IT_ADMIN"
	RoleManager    Role = "MANAGER"
	RoleSuperAdmin Role = "SUPERADMIN"
)

// MANAGER and IT_ADMIN share a rank; neither outranks the other.
var roleRanks = map[Role]int{
	RoleViewer:     1,
	RoleTechnician: 2,
	RoleITAdmin:    3,
	RoleManager:    3,
	RoleSuperAdmin: 4,
}

// Roles lists every valid role from lowest to highest rank.
func Roles() []Role {
	return []Role{RoleViewer, RoleTechnician, RoleITAdmin, RoleManager, RoleSuperAdmin}
}

// Rank returns the numeric rank of a role. Unknown roles rank 0.
func Rank(role Role) int {
	return roleRanks[role]
}

// Valid reports whether the role is known.
func (r Role) Valid() bool {
	_, ok := roleRanks[r]
	return ok
}

// HasHigherOrEqual reports whether a is at least as privileged as b.
func HasHigherOrEqual(a, b Role) bool {
	return Rank(a) >= Rank(b)
}

// HasStrictlyHigher reports whether a outranks b.
func HasStrictlyHigher(a, b Role) bool {
	return Rank(a) > Rank(b)
}

// IsAdminRank reports whether the role acts as a domain admin (MANAGER rank or above).
func IsAdminRank(role Role) bool {
	return HasHigherOrEqual(role, RoleManager)
}

// IsAdminOverride reports whether the role bypasses ownership checks entirely.
func IsAdminOverride(role Role) bool {
	return role == RoleSuperAdmin || role == RoleManager
}
