package services

import (
	"fmt"
	"strings"

	"github.com/worknest/worknest-engine/pkg/models"
)

const unassignedLabel = "none"

// fieldDiff is one changed task field, rendered for humans.
type fieldDiff struct {
	Field  string
	Change models.FieldChange
}

func (d fieldDiff) clause() string {
	return fmt.Sprintf("%s from %q to %q", d.Field, d.Change.Old, d.Change.New)
}

// diffTask compares the stored task with the requested field set. The
// assignee is compared by id and rendered with the given names. Order is
// fixed: title, description, priority, status, deadline, assignee.
func diffTask(old *models.Task, in TaskInput, oldAssignee, newAssignee string) []fieldDiff {
	var diffs []fieldDiff
	add := func(field, before, after string) {
		if before != after {
			diffs = append(diffs, fieldDiff{Field: field, Change: models.FieldChange{Old: before, New: after}})
		}
	}

	add("title", old.Title, in.Title)
	add("description", derefString(old.Description), derefString(in.Description))
	add("priority", string(old.Priority), string(in.Priority))
	add("status", string(old.Status), string(in.Status))
	add("deadline", models.DeadlineKey(old.Deadline), models.DeadlineKey(in.Deadline))
	if !sameAssignee(old, in) {
		diffs = append(diffs, fieldDiff{Field: "assignee", Change: models.FieldChange{Old: oldAssignee, New: newAssignee}})
	}
	return diffs
}

// updateDescription renders the consolidated TASK_UPDATED description.
func updateDescription(title string, diffs []fieldDiff) string {
	clauses := make([]string, 0, len(diffs))
	for _, d := range diffs {
		clauses = append(clauses, d.clause())
	}
	return fmt.Sprintf("Updated task %q: %s", title, strings.Join(clauses, ", "))
}

func updateMetadata(diffs []fieldDiff) models.TaskUpdatedMetadata {
	changes := make(map[string]models.FieldChange, len(diffs))
	for _, d := range diffs {
		changes[d.Field] = d.Change
	}
	return models.TaskUpdatedMetadata{Changes: changes}
}

func sameAssignee(old *models.Task, in TaskInput) bool {
	switch {
	case old.AssignedToID == nil && in.AssignedToID == nil:
		return true
	case old.AssignedToID == nil || in.AssignedToID == nil:
		return false
	default:
		return *old.AssignedToID == *in.AssignedToID
	}
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
