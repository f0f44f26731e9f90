package attendance

import (
	"context"
	"time"
)

// PunchRepository defines data access for the append-only punch ledger.
// Listing methods return events ordered by timestamp ascending; a single
// INSERT per punch keeps concurrent readers from ever observing a
// half-written sequence.
type PunchRepository interface {
	// Append stores a new punch event
	Append(ctx context.Context, event PunchEvent) (PunchEvent, error)

	// ListByEmployeeAndDate returns all punches for one employee-day,
	// ordered by timestamp
	ListByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) ([]PunchEvent, error)

	// ListByEmployeeAndRange returns punches for [from, to] inclusive,
	// ordered by timestamp
	ListByEmployeeAndRange(ctx context.Context, employeeID string, from, to time.Time) ([]PunchEvent, error)

	// ListByDate returns all employees' punches for one date, ordered by
	// employee then timestamp
	ListByDate(ctx context.Context, date time.Time) ([]PunchEvent, error)

	// LastByEmployeeAndDate returns the most recent punch of the day, or nil
	// when the day has none
	LastByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*PunchEvent, error)

	// MarkAbsent records an absence mark for an employee-day; duplicate marks
	// for the same employee-day are ignored
	MarkAbsent(ctx context.Context, mark AbsenceMark) error

	// ListAbsenceMarks returns employee IDs marked absent on date
	ListAbsenceMarks(ctx context.Context, date time.Time) (map[string]bool, error)

	// HasAbsenceMark reports whether the employee-day carries an absence mark
	HasAbsenceMark(ctx context.Context, employeeID string, date time.Time) (bool, error)

	// AbsenceMarksInRange returns the employee's marked-absent dates within
	// [from, to] inclusive, as YYYY-MM-DD keys
	AbsenceMarksInRange(ctx context.Context, employeeID string, from, to time.Time) (map[string]bool, error)

	// ListOpenDays returns, for date, the employees whose latest punch is an
	// "in" (still on the clock)
	ListOpenDays(ctx context.Context, date time.Time) ([]string, error)
}
