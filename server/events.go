package server

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventKind names a broadcast notification. Events carry no payload;
// consumers reload authoritative state from the API. A consumer may see the
// same kind more than once and must treat reloads as idempotent.
type EventKind string

const (
	EventLocationsUpdated     EventKind = "locations.updated"
	EventRoutesUpdated        EventKind = "routes.updated"
	EventSettingsUpdated      EventKind = "settings.updated"
	EventStyleUpdated         EventKind = "style.updated"
	EventSelectionModeChanged EventKind = "selection.mode.changed"
)

// Event is one broadcast notification.
type Event struct {
	Kind    EventKind `json:"kind"`
	Created int64     `json:"created"`
}

// Observer is one connected event consumer.
type Observer struct {
	ID     string
	Events chan Event
	Kill   chan bool
}

// NewObserver returns an observer with a buffered event channel.
func NewObserver() *Observer {
	return &Observer{
		ID:     uuid.NewString(),
		Events: make(chan Event, 16),
		Kill:   make(chan bool),
	}
}

// Hub fans events out to observers. Broadcast is fire-and-forget: a slow
// observer's full buffer drops the event rather than blocking the sender.
type Hub struct {
	mu        sync.RWMutex
	observers map[string]*Observer
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{observers: make(map[string]*Observer)}
}

// Observe registers an observer.
func (h *Hub) Observe(o *Observer) {
	h.mu.Lock()
	h.observers[o.ID] = o
	h.mu.Unlock()
}

// Forget removes an observer.
func (h *Hub) Forget(o *Observer) {
	h.mu.Lock()
	delete(h.observers, o.ID)
	h.mu.Unlock()
}

// Broadcast sends an event kind to every observer.
func (h *Hub) Broadcast(kind EventKind) {
	ev := Event{Kind: kind, Created: time.Now().UnixMilli()}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, o := range h.observers {
		select {
		case o.Events <- ev:
		default:
			log.Printf("[server] dropping %s for slow observer %s", kind, o.ID)
		}
	}
}
