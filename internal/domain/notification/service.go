package notification

import "context"

// Service queues and delivers attendance alerts. Queueing never blocks the
// punch path and never returns delivery failures to the punch caller; an
// alert for the same (employee, date, type) is delivered at most once while
// the trigger condition stays active.
type Service interface {
	// QueueAlert enqueues an alert for async delivery; duplicates for an
	// active trigger are suppressed
	QueueAlert(ctx context.Context, req CreateAlertRequest)

	// ResetTrigger clears suppression for (employee, date, type), re-arming
	// the trigger after its condition has gone away
	ResetTrigger(employeeID string, date string, alertType AlertType)

	// Subscribe registers an SSE listener for an employee's alerts
	Subscribe(employeeID string) (<-chan AlertResponse, func())

	// Stop drains the queue and stops the workers
	Stop()
}
