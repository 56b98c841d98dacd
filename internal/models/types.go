package models

import "time"

// EventType selects which canned payload a delivery carries.
type EventType string

const (
	EventGeneric         EventType = "generic"
	EventAssessment      EventType = "assessment"
	EventBackgroundCheck EventType = "background_check"
)

// ParseEventType reports whether s names a supported event type.
func ParseEventType(s string) (EventType, bool) {
	switch t := EventType(s); t {
	case EventGeneric, EventAssessment, EventBackgroundCheck:
		return t, true
	}
	return "", false
}

// DeliveryRequest is the validated form of an inbound /fake-api call.
// RawBody is the decoded JSON body exactly as the caller sent it.
type DeliveryRequest struct {
	Type        EventType
	CallbackURL string
	APIKey      string
	CandidateID string
	RawBody     map[string]any
}

// Job is a pending delivery. It is passed by value from the handler to the
// worker pool and is never shared.
type Job struct {
	ID          string
	Request     DeliveryRequest
	ScheduledAt time.Time
	FireAt      time.Time
}

// Ack is the synchronous response to an accepted request.
type Ack struct {
	Status     string    `json:"status"`
	ID         string    `json:"id"`
	Type       EventType `json:"type,omitempty"`
	ReceivedAt string    `json:"receivedAt"`
}

// ErrorResponse is the body returned for rejected requests.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
