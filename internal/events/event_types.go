package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUsageRecorded EventType = "usage_recorded"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UsageRecordedPayload carries one usage log entry: which token invoked
// which capability and when.
type UsageRecordedPayload struct {
	Token     string    `json:"token"`
	Endpoint  string    `json:"endpoint"`
	Timestamp time.Time `json:"timestamp"`
}
