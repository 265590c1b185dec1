package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType names what happened to a report
type EventType string

const (
	EventCreated EventType = "created"
	EventUpdated EventType = "updated"
	EventDeleted EventType = "deleted"
)

// Valid reports whether t is one of the known event types
func (t EventType) Valid() bool {
	switch t {
	case EventCreated, EventUpdated, EventDeleted:
		return true
	}
	return false
}

// ReportEvent is a lightweight notification about a report mutation.
// Consumers fetch the full report from the store by ID.
type ReportEvent struct {
	ID        int64     `json:"id"`
	Event     EventType `json:"event"`
	Date      string    `json:"date"`
	Timestamp time.Time `json:"timestamp"`
}

// NewReportEvent creates an event stamped with the current time
func NewReportEvent(event EventType, id int64, date string) *ReportEvent {
	return &ReportEvent{
		ID:        id,
		Event:     event,
		Date:      date,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ReportEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ReportEventFromJSON decodes a message and rejects unknown event types
func ReportEventFromJSON(data []byte) (*ReportEvent, error) {
	var msg ReportEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if !msg.Event.Valid() {
		return nil, fmt.Errorf("unknown report event %q", msg.Event)
	}
	if msg.ID <= 0 {
		return nil, fmt.Errorf("invalid report id %d", msg.ID)
	}
	return &msg, nil
}
