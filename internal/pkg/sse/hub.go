package sse

import (
	"sync"
)

// Event is a server-sent event addressed to one employee's open streams.
type Event struct {
	EmployeeID string
	Event      string
	Data       interface{}
}

// Hub fans events out to per-employee subscriber channels. Publishing is
// non-blocking: a slow or full subscriber drops the event rather than holding
// up the publisher.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan Event]struct{}),
	}
}

// Subscribe registers a listener for employeeID and returns the channel plus
// a cleanup func. Cleanup closes the channel and drops empty buckets.
func (h *Hub) Subscribe(employeeID string) (chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, 16)

	if h.subscribers[employeeID] == nil {
		h.subscribers[employeeID] = make(map[chan Event]struct{})
	}
	h.subscribers[employeeID][ch] = struct{}{}

	cleanup := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subscribers[employeeID], ch)
		close(ch)
		if len(h.subscribers[employeeID]) == 0 {
			delete(h.subscribers, employeeID)
		}
	}

	return ch, cleanup
}

// Publish sends an event to every stream open for employeeID.
func (h *Hub) Publish(employeeID string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if subs, ok := h.subscribers[employeeID]; ok {
		for ch := range subs {
			select {
			case ch <- event:
			default:
				// subscriber is backed up, drop instead of blocking
			}
		}
	}
}

// SubscriberCount returns the number of open streams for employeeID.
func (h *Hub) SubscriberCount(employeeID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[employeeID])
}
