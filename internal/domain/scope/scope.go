package scope

import (
	"github.com/pulsehr/attendance-backend-go/internal/domain/user"
)

// Caller is the authenticated identity attached to a request. Auth itself is
// an external collaborator; this core only consumes the verified claims.
type Caller struct {
	UserID     string
	EmployeeID string
	Role       user.Role
}

// Scope is the capability set resolved for one caller. Role checks happen
// here once instead of branching at every call site.
type Scope struct {
	OwnEmployeeID string
	role          user.Role
}

// Resolve maps a caller to its visibility/mutation capabilities:
// employees see themselves; managers and hr additionally read anyone;
// admins read anyone. Nobody punches on another employee's behalf.
func Resolve(caller Caller) Scope {
	return Scope{
		OwnEmployeeID: caller.EmployeeID,
		role:          caller.Role,
	}
}

// CanView reports whether the caller may read employeeID's attendance.
func (s Scope) CanView(employeeID string) bool {
	if employeeID == s.OwnEmployeeID {
		return true
	}
	return s.role.CanViewOthers()
}

// CanViewAll reports whether the caller may run roster-wide aggregations.
func (s Scope) CanViewAll() bool {
	return s.role.CanViewOthers()
}

// CanPunch reports whether the caller may record a punch for employeeID.
// Always self-only, regardless of role.
func (s Scope) CanPunch(employeeID string) bool {
	return employeeID == s.OwnEmployeeID && s.OwnEmployeeID != ""
}
