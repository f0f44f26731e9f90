package notification

import "time"

// CreateAlertRequest queues one alert for async delivery.
type CreateAlertRequest struct {
	EmployeeID string
	Type       AlertType
	Date       time.Time
	Title      string
	Message    string
	Data       map[string]interface{}
}

// AlertResponse is the wire form pushed over the SSE stream.
type AlertResponse struct {
	ID        string                 `json:"id"`
	Type      AlertType              `json:"type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Data      map[string]interface{} `json:"data,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}
