package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pulsehr/attendance-backend-go/internal/domain/notification"
	"github.com/pulsehr/attendance-backend-go/internal/pkg/sse"
)

// Config holds alert pipeline configuration
type Config struct {
	BatchSize     int           // default: 100
	FlushInterval time.Duration // default: 5 seconds
	WorkerCount   int           // default: 2
	QueueSize     int           // default: 1000
}

type service struct {
	repo   notification.Repository
	hub    *sse.Hub
	config Config

	queue  chan notification.CreateAlertRequest
	wg     sync.WaitGroup
	stopCh chan struct{}

	// active holds the suppression keys for triggers that have already fired.
	// An alert for a key in this set is dropped until ResetTrigger re-arms it.
	mu     sync.Mutex
	active map[string]struct{}
}

// NewAlertService creates an alert service with background delivery workers.
func NewAlertService(repo notification.Repository, hub *sse.Hub, cfg Config) notification.Service {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.FlushInterval == 0 {
		cfg.FlushInterval = 5 * time.Second
	}
	if cfg.WorkerCount == 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize == 0 {
		cfg.QueueSize = 1000
	}

	s := &service{
		repo:   repo,
		hub:    hub,
		config: cfg,
		queue:  make(chan notification.CreateAlertRequest, cfg.QueueSize),
		stopCh: make(chan struct{}),
		active: make(map[string]struct{}),
	}

	for i := 0; i < cfg.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	slog.Info("alert service started",
		"workers", cfg.WorkerCount,
		"batch_size", cfg.BatchSize,
		"flush_interval", cfg.FlushInterval,
	)

	return s
}

func suppressionKey(employeeID, date string, alertType notification.AlertType) string {
	return employeeID + "|" + date + "|" + string(alertType)
}

// QueueAlert enqueues an alert for async delivery. The punch path never waits
// on delivery and never sees delivery failures; a full queue or a duplicate
// active trigger drops the alert.
func (s *service) QueueAlert(ctx context.Context, req notification.CreateAlertRequest) {
	key := suppressionKey(req.EmployeeID, req.Date.Format("2006-01-02"), req.Type)

	s.mu.Lock()
	if _, fired := s.active[key]; fired {
		s.mu.Unlock()
		return
	}
	s.active[key] = struct{}{}
	s.mu.Unlock()

	select {
	case s.queue <- req:
	case <-ctx.Done():
	default:
		slog.Warn("alert queue full, dropping alert",
			"employee_id", req.EmployeeID,
			"type", req.Type,
		)
	}
}

// ResetTrigger re-arms the (employee, date, type) trigger so the next
// occurrence of the condition raises a fresh alert.
func (s *service) ResetTrigger(employeeID string, date string, alertType notification.AlertType) {
	s.mu.Lock()
	delete(s.active, suppressionKey(employeeID, date, alertType))
	s.mu.Unlock()
}

// worker drains the queue in batches and flushes on a timer or on shutdown.
func (s *service) worker(id int) {
	defer s.wg.Done()

	batch := make([]notification.CreateAlertRequest, 0, s.config.BatchSize)
	ticker := time.NewTicker(s.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		alerts := make([]*notification.Alert, len(batch))
		for i, req := range batch {
			alerts[i] = &notification.Alert{
				ID:         uuid.New().String(),
				EmployeeID: req.EmployeeID,
				Type:       req.Type,
				Date:       req.Date,
				Title:      req.Title,
				Message:    req.Message,
				Data:       req.Data,
				CreatedAt:  time.Now(),
			}
		}

		if err := s.repo.CreateBatch(ctx, alerts); err != nil {
			slog.Error("failed to batch insert alerts", "worker", id, "error", err)
		} else {
			for _, a := range alerts {
				s.hub.Publish(a.EmployeeID, sse.Event{
					EmployeeID: a.EmployeeID,
					Event:      "alert",
					Data:       toResponse(a),
				})
			}
		}

		batch = batch[:0]
	}

	for {
		select {
		case req := <-s.queue:
			batch = append(batch, req)
			if len(batch) >= s.config.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.stopCh:
			flush()
			return
		}
	}
}

func toResponse(a *notification.Alert) notification.AlertResponse {
	return notification.AlertResponse{
		ID:        a.ID,
		Type:      a.Type,
		Title:     a.Title,
		Message:   a.Message,
		Data:      a.Data,
		CreatedAt: a.CreatedAt,
	}
}

// Subscribe opens an SSE subscription for one employee's alerts.
func (s *service) Subscribe(employeeID string) (<-chan notification.AlertResponse, func()) {
	ch, cleanup := s.hub.Subscribe(employeeID)

	out := make(chan notification.AlertResponse, 10)
	done := make(chan struct{})

	go func() {
		defer close(out)
		for {
			select {
			case event, ok := <-ch:
				if !ok {
					return
				}
				if resp, ok := event.Data.(notification.AlertResponse); ok {
					select {
					case out <- resp:
					case <-done:
						return
					}
				}
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return out, func() {
		once.Do(func() {
			close(done)
			cleanup()
		})
	}
}

// Stop drains the queue and stops the delivery workers.
func (s *service) Stop() {
	close(s.stopCh)
	s.wg.Wait()
	slog.Info("alert service stopped")
}
