package events

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	EventBookingCreated       = "booking_created"
	EventBookingStatusChanged = "booking_status_changed"
	EventBookingRescheduled   = "booking_rescheduled"
	EventUserRegistered       = "user_registered"
	EventUserUpdated          = "user_updated"
	EventUserDeleted          = "user_deleted"
)

// BookingEvents lists every event type that changes the booking collection.
var BookingEvents = []string{EventBookingCreated, EventBookingStatusChanged, EventBookingRescheduled}

// UserEvents lists every event type that changes the user collection.
var UserEvents = []string{EventUserRegistered, EventUserUpdated, EventUserDeleted}

// BookingEventPayload describes the minimal booking snapshot for event consumers.
type BookingEventPayload struct {
	BookingID   int64  `json:"booking_id"`
	UserID      int64  `json:"user_id"`
	UserName    string `json:"user_name"`
	RoomID      string `json:"room_id"`
	Status      string `json:"status"`
	Date        string `json:"date"`
	StartTime   int    `json:"start_time"`
	EndTime     int    `json:"end_time"`
	Reason      string `json:"reason,omitempty"`
	ChangedByID int64  `json:"changed_by_id,omitempty"`
}

type UserEventPayload struct {
	UserID      int64  `json:"user_id"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	ChangedByID int64  `json:"changed_by_id,omitempty"`
}

// Event represents a lightweight domain event.
type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for each of the given event types.
func (b *EventBus) Subscribe(handler EventHandler, eventTypes ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range eventTypes {
		b.subscribers[t] = append(b.subscribers[t], handler)
	}
}

// Publish notifies subscribers of the event type. Handler errors are
// collected and the first one is returned after every handler has run.
func (b *EventBus) Publish(event *Event) error {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	var first error
	for _, handler := range handlers {
		if err := handler(event); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
}
