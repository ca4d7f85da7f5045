package models

import (
	"time"

	"github.com/google/uuid"
)

// TaskPriority orders work within a board.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "LOW"
	PriorityMedium TaskPriority = "MEDIUM"
	PriorityHigh   TaskPriority = "HIGH"
	PriorityUrgent TaskPriority = "URGENT"
)

// IsValid reports whether p is a known priority.
func (p TaskPriority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	default:
		return false
	}
}

// TaskStatus is the board column a task sits in.
type TaskStatus string

const (
	StatusBacklog    TaskStatus = "BACKLOG"
	StatusTodo       TaskStatus = "TODO"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusDone       TaskStatus = "DONE"
)

// IsValid reports whether s is a known status.
func (s TaskStatus) IsValid() bool {
	switch s {
	case StatusBacklog, StatusTodo, StatusInProgress, StatusDone:
		return true
	default:
		return false
	}
}

// Task is a card on a project board.
type Task struct {
	ID           uuid.UUID    `json:"id"`
	ProjectID    uuid.UUID    `json:"project_id"`
	Title        string       `json:"title"`
	Description  *string      `json:"description,omitempty"`
	Priority     TaskPriority `json:"priority"`
	Status       TaskStatus   `json:"status"`
	Deadline     time.Time    `json:"deadline"`
	CreatedByID  uuid.UUID    `json:"created_by_id"`
	AssignedToID *uuid.UUID   `json:"assigned_to_id,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`

	CreatedBy  *User      `json:"created_by,omitempty"`
	AssignedTo *User      `json:"assigned_to,omitempty"`
	Tags       []*TaskTag `json:"tags,omitempty"`
}

// IsAssignedTo reports whether userID is the task's current assignee.
func (t *Task) IsAssignedTo(userID uuid.UUID) bool {
	return t.AssignedToID != nil && *t.AssignedToID == userID
}

// TaskTag marks a user for visibility/notification on a task. It is
// distinct from assignment.
type TaskTag struct {
	TaskID    uuid.UUID `json:"task_id"`
	UserID    uuid.UUID `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	User      *User     `json:"user,omitempty"`
}

// DeadlineKey renders a deadline for exact comparison and display.
func DeadlineKey(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
