package leave

import (
	"context"
	"time"
)

// Lookup is the leave-management collaborator. The attendance core never
// manages leave requests; it only asks whether a date is covered.
type Lookup interface {
	// IsOnLeave reports whether the employee has an approved leave day on date
	IsOnLeave(ctx context.Context, employeeID string, date time.Time) (bool, error)

	// OnLeaveSet returns the set of employee IDs on approved leave for date
	OnLeaveSet(ctx context.Context, date time.Time) (map[string]bool, error)

	// LeaveDaysInRange returns the employee's approved leave dates within
	// [from, to] inclusive, as YYYY-MM-DD keys
	LeaveDaysInRange(ctx context.Context, employeeID string, from, to time.Time) (map[string]bool, error)
}
