package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/pulsehr/attendance-backend-go/internal/domain/employee"
	"github.com/pulsehr/attendance-backend-go/internal/pkg/database"
)

type rosterRepository struct {
	db *database.DB
}

// NewRosterRepository creates an employee roster repository
func NewRosterRepository(db *database.DB) employee.RosterRepository {
	return &rosterRepository{db: db}
}

const employeeColumns = `id, user_id, full_name, department, designation, is_active, created_at, updated_at`

// GetByID retrieves one roster entry
func (r *rosterRepository) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`
		SELECT %s
		FROM employees
		WHERE id = $1
	`, employeeColumns)

	var e employee.Employee
	err := q.QueryRow(ctx, query, id).Scan(
		&e.ID,
		&e.UserID,
		&e.FullName,
		&e.Department,
		&e.Designation,
		&e.IsActive,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}

	return e, nil
}

// ListActive returns all active employees ordered by name
func (r *rosterRepository) ListActive(ctx context.Context) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`
		SELECT %s
		FROM employees
		WHERE is_active = true
		ORDER BY full_name ASC
	`, employeeColumns)

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		var e employee.Employee
		if err := rows.Scan(
			&e.ID,
			&e.UserID,
			&e.FullName,
			&e.Department,
			&e.Designation,
			&e.IsActive,
			&e.CreatedAt,
			&e.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read employees: %w", err)
	}

	return employees, nil
}
