package types

import (
	"time"

	"github.com/google/uuid"
)

// EventType names an application lifecycle change.
type EventType string

const (
	EventApplicationSubmitted EventType = "application.submitted"
	EventStatusChanged        EventType = "application.status_changed"
	EventApplicationWithdrawn EventType = "application.withdrawn"
	EventMatchCompleted       EventType = "application.match_completed"
)

// Event describes a change to an application. It is published to the
// event bus and pushed to the affected users.
type Event struct {
	Type          EventType         `json:"type"`
	ApplicationID uuid.UUID         `json:"application_id"`
	JobID         uuid.UUID         `json:"job_id"`
	JobTitle      string            `json:"job_title,omitempty"`
	SeekerID      uuid.UUID         `json:"seeker_id"`
	EmployerID    uuid.UUID         `json:"employer_id"`
	Status        ApplicationStatus `json:"status,omitempty"`
	OccurredAt    time.Time         `json:"occurred_at"`
}

// Recipients returns the users who should be notified about the event.
func (e Event) Recipients() []uuid.UUID {
	switch e.Type {
	case EventApplicationSubmitted, EventApplicationWithdrawn:
		return []uuid.UUID{e.EmployerID}
	case EventStatusChanged:
		return []uuid.UUID{e.SeekerID}
	case EventMatchCompleted:
		return []uuid.UUID{e.EmployerID, e.SeekerID}
	default:
		return nil
	}
}
