package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pulsehr/attendance-backend-go/internal/domain/attendance"
	"github.com/pulsehr/attendance-backend-go/internal/pkg/database"
)

type punchRepository struct {
	db *database.DB
}

// NewPunchRepository creates a punch ledger repository
func NewPunchRepository(db *database.DB) attendance.PunchRepository {
	return &punchRepository{db: db}
}

// dayBounds returns the half-open [start, end) instants covering date's day
// in date's location.
func dayBounds(date time.Time) (time.Time, time.Time) {
	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	return start, start.AddDate(0, 0, 1)
}

const punchColumns = `id, employee_id, timestamp, type, latitude, longitude, location_name, created_at`

func scanPunch(row pgx.Row) (attendance.PunchEvent, error) {
	var e attendance.PunchEvent
	var punchType string

	err := row.Scan(
		&e.ID,
		&e.EmployeeID,
		&e.Timestamp,
		&punchType,
		&e.Latitude,
		&e.Longitude,
		&e.LocationName,
		&e.CreatedAt,
	)
	if err != nil {
		return attendance.PunchEvent{}, err
	}

	e.Type = attendance.PunchType(punchType)
	return e, nil
}

func collectPunches(rows pgx.Rows) ([]attendance.PunchEvent, error) {
	defer rows.Close()

	var events []attendance.PunchEvent
	for rows.Next() {
		e, err := scanPunch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan punch event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read punch events: %w", err)
	}

	return events, nil
}

// Append stores a new punch event. The ledger is append-only; events are
// never updated or deleted.
func (r *punchRepository) Append(ctx context.Context, event attendance.PunchEvent) (attendance.PunchEvent, error) {
	q := GetQuerier(ctx, r.db)

	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO punch_events (id, employee_id, timestamp, type, latitude, longitude, location_name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := q.Exec(ctx, query,
		event.ID,
		event.EmployeeID,
		event.Timestamp,
		string(event.Type),
		event.Latitude,
		event.Longitude,
		event.LocationName,
		event.CreatedAt,
	)
	if err != nil {
		return attendance.PunchEvent{}, fmt.Errorf("failed to append punch event: %w", err)
	}

	return event, nil
}

// ListByEmployeeAndDate returns the employee's punches for one day, ordered
// by timestamp.
func (r *punchRepository) ListByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) ([]attendance.PunchEvent, error) {
	q := GetQuerier(ctx, r.db)
	start, end := dayBounds(date)

	query := fmt.Sprintf(`
		SELECT %s
		FROM punch_events
		WHERE employee_id = $1 AND timestamp >= $2 AND timestamp < $3
		ORDER BY timestamp ASC
	`, punchColumns)

	rows, err := q.Query(ctx, query, employeeID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query punch events: %w", err)
	}

	return collectPunches(rows)
}

// ListByEmployeeAndRange returns the employee's punches for [from, to]
// inclusive, ordered by timestamp.
func (r *punchRepository) ListByEmployeeAndRange(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.PunchEvent, error) {
	q := GetQuerier(ctx, r.db)
	start, _ := dayBounds(from)
	_, end := dayBounds(to)

	query := fmt.Sprintf(`
		SELECT %s
		FROM punch_events
		WHERE employee_id = $1 AND timestamp >= $2 AND timestamp < $3
		ORDER BY timestamp ASC
	`, punchColumns)

	rows, err := q.Query(ctx, query, employeeID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query punch events: %w", err)
	}

	return collectPunches(rows)
}

// ListByDate returns every employee's punches for one day, ordered by
// employee then timestamp.
func (r *punchRepository) ListByDate(ctx context.Context, date time.Time) ([]attendance.PunchEvent, error) {
	q := GetQuerier(ctx, r.db)
	start, end := dayBounds(date)

	query := fmt.Sprintf(`
		SELECT %s
		FROM punch_events
		WHERE timestamp >= $1 AND timestamp < $2
		ORDER BY employee_id ASC, timestamp ASC
	`, punchColumns)

	rows, err := q.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query punch events: %w", err)
	}

	return collectPunches(rows)
}

// LastByEmployeeAndDate returns the day's most recent punch, or nil when the
// day has none.
func (r *punchRepository) LastByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.PunchEvent, error) {
	q := GetQuerier(ctx, r.db)
	start, end := dayBounds(date)

	query := fmt.Sprintf(`
		SELECT %s
		FROM punch_events
		WHERE employee_id = $1 AND timestamp >= $2 AND timestamp < $3
		ORDER BY timestamp DESC
		LIMIT 1
	`, punchColumns)

	e, err := scanPunch(q.QueryRow(ctx, query, employeeID, start, end))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get last punch event: %w", err)
	}

	return &e, nil
}

// MarkAbsent records an absence mark for an employee-day. Re-marking the same
// day is a no-op.
func (r *punchRepository) MarkAbsent(ctx context.Context, mark attendance.AbsenceMark) error {
	q := GetQuerier(ctx, r.db)

	if mark.ID == "" {
		mark.ID = uuid.New().String()
	}
	if mark.CreatedAt.IsZero() {
		mark.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO absence_marks (id, employee_id, date, reason, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (employee_id, date) DO NOTHING
	`

	day, _ := dayBounds(mark.Date)
	_, err := q.Exec(ctx, query,
		mark.ID,
		mark.EmployeeID,
		day,
		mark.Reason,
		mark.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to mark absent: %w", err)
	}

	return nil
}

// ListAbsenceMarks returns the employee IDs marked absent on date.
func (r *punchRepository) ListAbsenceMarks(ctx context.Context, date time.Time) (map[string]bool, error) {
	q := GetQuerier(ctx, r.db)
	day, _ := dayBounds(date)

	query := `SELECT employee_id FROM absence_marks WHERE date = $1`

	rows, err := q.Query(ctx, query, day)
	if err != nil {
		return nil, fmt.Errorf("failed to query absence marks: %w", err)
	}
	defer rows.Close()

	marks := make(map[string]bool)
	for rows.Next() {
		var employeeID string
		if err := rows.Scan(&employeeID); err != nil {
			return nil, fmt.Errorf("failed to scan absence mark: %w", err)
		}
		marks[employeeID] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read absence marks: %w", err)
	}

	return marks, nil
}

// HasAbsenceMark reports whether the employee-day carries an absence mark.
func (r *punchRepository) HasAbsenceMark(ctx context.Context, employeeID string, date time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)
	day, _ := dayBounds(date)

	query := `SELECT EXISTS(SELECT 1 FROM absence_marks WHERE employee_id = $1 AND date = $2)`

	var exists bool
	if err := q.QueryRow(ctx, query, employeeID, day).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check absence mark: %w", err)
	}

	return exists, nil
}

// AbsenceMarksInRange returns the employee's marked-absent dates within
// [from, to] inclusive, keyed by YYYY-MM-DD.
func (r *punchRepository) AbsenceMarksInRange(ctx context.Context, employeeID string, from, to time.Time) (map[string]bool, error) {
	q := GetQuerier(ctx, r.db)
	start, _ := dayBounds(from)
	end, _ := dayBounds(to)

	query := `
		SELECT date
		FROM absence_marks
		WHERE employee_id = $1 AND date >= $2 AND date <= $3
	`

	rows, err := q.Query(ctx, query, employeeID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query absence marks: %w", err)
	}
	defer rows.Close()

	marks := make(map[string]bool)
	for rows.Next() {
		var date time.Time
		if err := rows.Scan(&date); err != nil {
			return nil, fmt.Errorf("failed to scan absence mark: %w", err)
		}
		marks[date.Format("2006-01-02")] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read absence marks: %w", err)
	}

	return marks, nil
}

// ListOpenDays returns the employees whose latest punch on date is an "in".
func (r *punchRepository) ListOpenDays(ctx context.Context, date time.Time) ([]string, error) {
	q := GetQuerier(ctx, r.db)
	start, end := dayBounds(date)

	query := `
		SELECT employee_id FROM (
			SELECT DISTINCT ON (employee_id) employee_id, type
			FROM punch_events
			WHERE timestamp >= $1 AND timestamp < $2
			ORDER BY employee_id, timestamp DESC
		) latest
		WHERE type = 'in'
	`

	rows, err := q.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query open days: %w", err)
	}
	defer rows.Close()

	var employeeIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan open day: %w", err)
		}
		employeeIDs = append(employeeIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read open days: %w", err)
	}

	return employeeIDs, nil
}
