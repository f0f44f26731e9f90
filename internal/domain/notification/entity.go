package notification

import "time"

// AlertType represents the type of attendance alert
type AlertType string

const (
	TypeLateEntry        AlertType = "late_entry"
	TypeEarlyExit        AlertType = "early_exit"
	TypeRunningOutOfTime AlertType = "running_out_of_time"
	TypeMarkedAbsent     AlertType = "marked_absent"
)

// Alert is a delivered attendance notification. Delivery is fire-and-forget:
// a punch succeeds whether or not its alert ever lands.
type Alert struct {
	ID         string
	EmployeeID string
	Type       AlertType
	Date       time.Time
	Title      string
	Message    string
	Data       map[string]interface{}
	CreatedAt  time.Time
}
