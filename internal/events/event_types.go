package events

import (
	"time"

	"github.com/shalom-church/portal/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventContentPublished EventType = "content_published"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ContentID string      `json:"content_id,omitempty"`
	ActorID   string      `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// ContentPublishedPayload returns the notification payload of a content_published event.
func (e Event) ContentPublishedPayload() (domain.NotificationEvent, bool) {
	switch p := e.Payload.(type) {
	case domain.NotificationEvent:
		return p, true
	case *domain.NotificationEvent:
		if p != nil {
			return *p, true
		}
	}
	return domain.NotificationEvent{}, false
}
