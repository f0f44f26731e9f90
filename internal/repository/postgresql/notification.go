package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pulsehr/attendance-backend-go/internal/domain/notification"
	"github.com/pulsehr/attendance-backend-go/internal/pkg/database"
)

type alertRepository struct {
	db *database.DB
}

// NewAlertRepository creates an alert repository
func NewAlertRepository(db *database.DB) notification.Repository {
	return &alertRepository{db: db}
}

// Create inserts a single alert
func (r *alertRepository) Create(ctx context.Context, a *notification.Alert) error {
	q := GetQuerier(ctx, r.db)

	if a.ID == "" {
		a.ID = uuid.New().String()
	}

	dataJSON, err := json.Marshal(a.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal alert data: %w", err)
	}

	query := `
		INSERT INTO attendance_alerts (id, employee_id, type, date, title, message, data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = q.Exec(ctx, query,
		a.ID,
		a.EmployeeID,
		string(a.Type),
		a.Date,
		a.Title,
		a.Message,
		dataJSON,
		a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create alert: %w", err)
	}

	return nil
}

// CreateBatch inserts multiple alerts in one round trip
func (r *alertRepository) CreateBatch(ctx context.Context, alerts []*notification.Alert) error {
	if len(alerts) == 0 {
		return nil
	}

	q := GetQuerier(ctx, r.db)

	valueStrings := make([]string, 0, len(alerts))
	valueArgs := make([]interface{}, 0, len(alerts)*8)

	for i, a := range alerts {
		if a.ID == "" {
			a.ID = uuid.New().String()
		}

		dataJSON, err := json.Marshal(a.Data)
		if err != nil {
			return fmt.Errorf("failed to marshal alert data: %w", err)
		}

		base := i * 8
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8,
		))
		valueArgs = append(valueArgs,
			a.ID,
			a.EmployeeID,
			string(a.Type),
			a.Date,
			a.Title,
			a.Message,
			dataJSON,
			a.CreatedAt,
		)
	}

	query := fmt.Sprintf(`
		INSERT INTO attendance_alerts (id, employee_id, type, date, title, message, data, created_at)
		VALUES %s
	`, strings.Join(valueStrings, ", "))

	_, err := q.Exec(ctx, query, valueArgs...)
	if err != nil {
		return fmt.Errorf("failed to batch create alerts: %w", err)
	}

	return nil
}

// ListByEmployee returns the most recent alerts for an employee
func (r *alertRepository) ListByEmployee(ctx context.Context, employeeID string, limit int) ([]notification.Alert, error) {
	q := GetQuerier(ctx, r.db)

	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := `
		SELECT id, employee_id, type, date, title, message, data, created_at
		FROM attendance_alerts
		WHERE employee_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := q.Query(ctx, query, employeeID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []notification.Alert
	for rows.Next() {
		var a notification.Alert
		var alertType string
		var dataJSON []byte
		var date time.Time

		if err := rows.Scan(
			&a.ID,
			&a.EmployeeID,
			&alertType,
			&date,
			&a.Title,
			&a.Message,
			&dataJSON,
			&a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}

		a.Type = notification.AlertType(alertType)
		a.Date = date
		if dataJSON != nil {
			if err := json.Unmarshal(dataJSON, &a.Data); err != nil {
				return nil, fmt.Errorf("failed to unmarshal alert data: %w", err)
			}
		}

		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read alerts: %w", err)
	}

	return alerts, nil
}
