package notification

import "context"

// Repository persists alerts for later retrieval.
type Repository interface {
	// Create inserts a single alert
	Create(ctx context.Context, alert *Alert) error

	// CreateBatch inserts a batch of alerts in one round trip
	CreateBatch(ctx context.Context, alerts []*Alert) error

	// ListByEmployee returns the most recent alerts for an employee
	ListByEmployee(ctx context.Context, employeeID string, limit int) ([]Alert, error)
}
