package realtime

import (
	"time"

	"github.com/google/uuid"
)

const EventProgressUpdated = "progress.updated"

// Message is the envelope carried by the bus. Channel is the id of the user the event is about.
type Message struct {
	Channel string `json:"channel"`
	Event   string `json:"event"`
	Data    any    `json:"data"`
}

// ProgressEvent is the payload of progress.updated.
type ProgressEvent struct {
	UserID      uuid.UUID  `json:"user_id"`
	CourseID    uuid.UUID  `json:"course_id"`
	Progress    float64    `json:"progress"`
	CompletedAt *time.Time `json:"completed_at"`
}

func NewProgressMessage(ev ProgressEvent) Message {
	return Message{
		Channel: ev.UserID.String(),
		Event:   EventProgressUpdated,
		Data:    ev,
	}
}

// UserChannel is the channel progress events for userID are published on.
func UserChannel(userID uuid.UUID) string { return userID.String() }
