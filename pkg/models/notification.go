package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType is the kind of message delivered to a user.
type NotificationType string

const (
	NotificationTaskAssigned NotificationType = "TASK_ASSIGNED"
	NotificationTaskTagged   NotificationType = "TASK_TAGGED"
)

// Notification is a per-recipient message. IsRead is the only field that
// changes after creation.
type Notification struct {
	ID        uuid.UUID            `json:"id"`
	Type      NotificationType     `json:"type"`
	Message   string               `json:"message"`
	UserID    uuid.UUID            `json:"user_id"`
	IsRead    bool                 `json:"is_read"`
	Metadata  NotificationMetadata `json:"metadata"`
	CreatedAt time.Time            `json:"created_at"`
}

// NotificationMetadata points the recipient at the task that triggered the
// notification and who triggered it.
type NotificationMetadata struct {
	TaskID    uuid.UUID `json:"taskId"`
	ProjectID uuid.UUID `json:"projectId"`
	ActorID   uuid.UUID `json:"actorId"`
}
