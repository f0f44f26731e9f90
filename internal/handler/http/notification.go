package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pulsehr/attendance-backend-go/internal/domain/notification"
	"github.com/pulsehr/attendance-backend-go/internal/handler/http/response"
)

// NotificationHandler serves stored alerts and the live SSE stream.
type NotificationHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
}

type notificationHandlerImpl struct {
	notifService notification.Service
	notifRepo    notification.Repository
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notifService notification.Service, notifRepo notification.Repository) NotificationHandler {
	return &notificationHandlerImpl{
		notifService: notifService,
		notifRepo:    notifRepo,
	}
}

// List returns the most recent alerts for the authenticated employee
func (h *notificationHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	caller := callerFromContext(r)
	if caller.EmployeeID == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	limit := getIntQueryParam(r, "limit", 20)

	alerts, err := h.notifRepo.ListByEmployee(r.Context(), caller.EmployeeID, limit)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	responses := make([]notification.AlertResponse, len(alerts))
	for i, a := range alerts {
		responses[i] = notification.AlertResponse{
			ID:        a.ID,
			Type:      a.Type,
			Title:     a.Title,
			Message:   a.Message,
			Data:      a.Data,
			CreatedAt: a.CreatedAt,
		}
	}

	response.Success(w, responses)
}

// Stream pushes the caller's alerts over server-sent events
func (h *notificationHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	caller := callerFromContext(r)
	if caller.EmployeeID == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.notifService.Subscribe(caller.EmployeeID)
	defer cleanup()

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"employee_id\":%q}\n\n", caller.EmployeeID)
	flusher.Flush()

	keepalive := time.NewTicker(30 * time.Second)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: alert\ndata: %s\n\n", data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
