package employee

import "context"

// RosterRepository reads the employee directory. The roster bounds every
// cross-employee aggregation, so a whole-org snapshot is at most one
// classification per active employee.
type RosterRepository interface {
	// GetByID retrieves one roster entry
	GetByID(ctx context.Context, id string) (Employee, error)

	// ListActive returns all active employees
	ListActive(ctx context.Context) ([]Employee, error)
}
