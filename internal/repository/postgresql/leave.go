package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/pulsehr/attendance-backend-go/internal/domain/leave"
	"github.com/pulsehr/attendance-backend-go/internal/pkg/database"
)

// leaveLookup reads the leave-management schema's approved requests. Only
// approved rows ever influence attendance.
type leaveLookup struct {
	db *database.DB
}

// NewLeaveLookup creates a leave lookup backed by the leave_requests table
func NewLeaveLookup(db *database.DB) leave.Lookup {
	return &leaveLookup{db: db}
}

// IsOnLeave reports whether the employee has an approved leave day on date
func (r *leaveLookup) IsOnLeave(ctx context.Context, employeeID string, date time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)
	day, _ := dayBounds(date)

	query := `
		SELECT EXISTS(
			SELECT 1 FROM leave_requests
			WHERE employee_id = $1
			  AND status = 'approved'
			  AND start_date <= $2 AND end_date >= $2
		)
	`

	var onLeave bool
	if err := q.QueryRow(ctx, query, employeeID, day).Scan(&onLeave); err != nil {
		return false, fmt.Errorf("failed to check leave: %w", err)
	}

	return onLeave, nil
}

// OnLeaveSet returns the set of employee IDs on approved leave for date
func (r *leaveLookup) OnLeaveSet(ctx context.Context, date time.Time) (map[string]bool, error) {
	q := GetQuerier(ctx, r.db)
	day, _ := dayBounds(date)

	query := `
		SELECT DISTINCT employee_id
		FROM leave_requests
		WHERE status = 'approved'
		  AND start_date <= $1 AND end_date >= $1
	`

	rows, err := q.Query(ctx, query, day)
	if err != nil {
		return nil, fmt.Errorf("failed to query leave set: %w", err)
	}
	defer rows.Close()

	set := make(map[string]bool)
	for rows.Next() {
		var employeeID string
		if err := rows.Scan(&employeeID); err != nil {
			return nil, fmt.Errorf("failed to scan leave row: %w", err)
		}
		set[employeeID] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read leave set: %w", err)
	}

	return set, nil
}

// LeaveDaysInRange returns the employee's approved leave dates within
// [from, to] inclusive, keyed by YYYY-MM-DD. Overlapping requests are
// clamped to the asked range.
func (r *leaveLookup) LeaveDaysInRange(ctx context.Context, employeeID string, from, to time.Time) (map[string]bool, error) {
	q := GetQuerier(ctx, r.db)
	start, _ := dayBounds(from)
	end, _ := dayBounds(to)

	query := `
		SELECT start_date, end_date
		FROM leave_requests
		WHERE employee_id = $1
		  AND status = 'approved'
		  AND start_date <= $3 AND end_date >= $2
	`

	rows, err := q.Query(ctx, query, employeeID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query leave days: %w", err)
	}
	defer rows.Close()

	days := make(map[string]bool)
	for rows.Next() {
		var reqStart, reqEnd time.Time
		if err := rows.Scan(&reqStart, &reqEnd); err != nil {
			return nil, fmt.Errorf("failed to scan leave request: %w", err)
		}

		if reqStart.Before(start) {
			reqStart = start
		}
		if reqEnd.After(end) {
			reqEnd = end
		}
		for d := reqStart; !d.After(reqEnd); d = d.AddDate(0, 0, 1) {
			days[d.Format("2006-01-02")] = true
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read leave days: %w", err)
	}

	return days, nil
}
