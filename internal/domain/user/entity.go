package user

type Role string

const (
	RoleAdmin    Role = "admin"    // Full visibility over the whole roster
	RoleHR       Role = "hr"       // Can inspect any employee's attendance
	RoleManager  Role = "manager"  // Can inspect any employee's attendance
	RoleEmployee Role = "employee" // Regular employee, self only
)

// ParseRole maps a claim string to a known Role.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleHR, RoleManager, RoleEmployee:
		return Role(s), true
	}
	return "", false
}

// IsAdmin checks if the role is admin
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// CanViewOthers checks if the role may read other employees' attendance
func (r Role) CanViewOthers() bool {
	return r == RoleAdmin || r == RoleHR || r == RoleManager
}
