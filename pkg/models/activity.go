package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ActivityType is the kind of event an Activity records.
type ActivityType string

const (
	ActivityTaskCreated       ActivityType = "TASK_CREATED"
	ActivityTaskUpdated       ActivityType = "TASK_UPDATED"
	ActivityTaskAssigned      ActivityType = "TASK_ASSIGNED"
	ActivityTaskTagged        ActivityType = "TASK_TAGGED"
	ActivityTaskStatusChanged ActivityType = "TASK_STATUS_CHANGED"
	ActivityTaskDeleted       ActivityType = "TASK_DELETED"
)

// Activity is an immutable audit fact about a change inside a project.
// Stored in the activities table; never updated or deleted.
type Activity struct {
	ID          uuid.UUID        `json:"id"`
	Type        ActivityType     `json:"type"`
	Description string           `json:"description"`
	UserID      uuid.UUID        `json:"user_id"`
	ProjectID   uuid.UUID        `json:"project_id"`
	TaskID      *uuid.UUID       `json:"task_id,omitempty"`
	Metadata    ActivityMetadata `json:"metadata,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`

	User *User `json:"user,omitempty"`
}

// ActivityMetadata is the typed payload attached to an Activity.
// Each activity type has exactly one metadata record.
type ActivityMetadata interface {
	ActivityType() ActivityType
}

// TaskCreatedMetadata accompanies TASK_CREATED.
type TaskCreatedMetadata struct {
	Title string `json:"title"`
}

// FieldChange is the rendered old and new value of one task field.
type FieldChange struct {
	Old string `json:"old"`
	New string `json:"new"`
}

// TaskUpdatedMetadata accompanies TASK_UPDATED and lists every changed field.
type TaskUpdatedMetadata struct {
	Changes map[string]FieldChange `json:"changes"`
}

// TaskAssignedMetadata accompanies TASK_ASSIGNED.
type TaskAssignedMetadata struct {
	AssigneeID uuid.UUID `json:"assigneeId"`
}

// TaskTaggedMetadata accompanies TASK_TAGGED.
type TaskTaggedMetadata struct {
	TaggedUserID uuid.UUID `json:"taggedUserId"`
}

// StatusChangedMetadata accompanies TASK_STATUS_CHANGED.
type StatusChangedMetadata struct {
	OldStatus TaskStatus `json:"oldStatus"`
	NewStatus TaskStatus `json:"newStatus"`
}

// TaskDeletedMetadata accompanies TASK_DELETED. The title is kept so the
// log stays readable after the task row is gone.
type TaskDeletedMetadata struct {
	TaskID uuid.UUID `json:"taskId"`
	Title  string    `json:"title"`
}

func (TaskCreatedMetadata) ActivityType() ActivityType   { return ActivityTaskCreated }
func (TaskUpdatedMetadata) ActivityType() ActivityType   { return ActivityTaskUpdated }
func (TaskAssignedMetadata) ActivityType() ActivityType  { return ActivityTaskAssigned }
func (TaskTaggedMetadata) ActivityType() ActivityType    { return ActivityTaskTagged }
func (StatusChangedMetadata) ActivityType() ActivityType { return ActivityTaskStatusChanged }
func (TaskDeletedMetadata) ActivityType() ActivityType   { return ActivityTaskDeleted }

// DecodeActivityMetadata parses the stored metadata JSON for the given type.
// Empty input yields nil metadata.
func DecodeActivityMetadata(t ActivityType, data []byte) (ActivityMetadata, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}

	var (
		meta ActivityMetadata
		err  error
	)
	switch t {
	case ActivityTaskCreated:
		var m TaskCreatedMetadata
		err = json.Unmarshal(data, &m)
		meta = m
	case ActivityTaskUpdated:
		var m TaskUpdatedMetadata
		err = json.Unmarshal(data, &m)
		meta = m
	case ActivityTaskAssigned:
		var m TaskAssignedMetadata
		err = json.Unmarshal(data, &m)
		meta = m
	case ActivityTaskTagged:
		var m TaskTaggedMetadata
		err = json.Unmarshal(data, &m)
		meta = m
	case ActivityTaskStatusChanged:
		var m StatusChangedMetadata
		err = json.Unmarshal(data, &m)
		meta = m
	case ActivityTaskDeleted:
		var m TaskDeletedMetadata
		err = json.Unmarshal(data, &m)
		meta = m
	default:
		return nil, fmt.Errorf("unknown activity type %q", t)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s metadata: %w", t, err)
	}
	return meta, nil
}

// EncodeActivityMetadata serializes metadata for storage and checks that it
// matches the activity type.
func EncodeActivityMetadata(t ActivityType, meta ActivityMetadata) ([]byte, error) {
	if meta == nil {
		return nil, nil
	}
	if meta.ActivityType() != t {
		return nil, fmt.Errorf("metadata for %s attached to %s activity", meta.ActivityType(), t)
	}
	return json.Marshal(meta)
}
