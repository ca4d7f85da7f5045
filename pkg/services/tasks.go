package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/worknest/worknest-engine/pkg/apperrors"
	"github.com/worknest/worknest-engine/pkg/models"
	"github.com/worknest/worknest-engine/pkg/repositories"
)

const (
	taskTitleMin = 2
	taskTitleMax = 100
)

// TaskInput is the full editable field set of a task.
type TaskInput struct {
	Title        string
	Description  *string
	Priority     models.TaskPriority
	Status       models.TaskStatus
	Deadline     time.Time
	AssignedToID *uuid.UUID
}

// TaskUpdate is TaskInput plus the optional tag set. A nil TaggedUserIDs
// leaves tags untouched; an empty non-nil slice removes them all.
type TaskUpdate struct {
	TaskInput
	TaggedUserIDs []uuid.UUID
}

// TaskService runs task mutations and their activity and notification side
// effects. Each mutation commits atomically.
type TaskService interface {
	Create(ctx context.Context, projectID uuid.UUID, in TaskInput) (*models.Task, error)
	Update(ctx context.Context, taskID uuid.UUID, in TaskUpdate) (*models.Task, error)

	// UpdateStatus moves the task on the board. Setting the current status
	// again is a no-op.
	UpdateStatus(ctx context.Context, taskID uuid.UUID, status models.TaskStatus) (*models.Task, error)

	Delete(ctx context.Context, taskID uuid.UUID) error

	// GetByProject returns the tasks visible to the caller.
	GetByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Task, error)

	GetTaskActivities(ctx context.Context, taskID uuid.UUID) ([]*models.Activity, error)
}

type taskService struct {
	repo          repositories.TaskRepository
	users         repositories.UserRepository
	activities    ActivityService
	notifications NotificationService
	access        accessLoader
	runInTx       TxFunc
	logger        *zap.Logger
}

// NewTaskService creates a new TaskService.
func NewTaskService(
	repo repositories.TaskRepository,
	users repositories.UserRepository,
	projects repositories.ProjectRepository,
	members repositories.MemberRepository,
	activities ActivityService,
	notifications NotificationService,
	runInTx TxFunc,
	logger *zap.Logger,
) TaskService {
	return &taskService{
		repo:          repo,
		users:         users,
		activities:    activities,
		notifications: notifications,
		access:        accessLoader{projects: projects, members: members},
		runInTx:       runInTx,
		logger:        logger.Named("task-service"),
	}
}

var _ TaskService = (*taskService)(nil)

func validateTaskInput(in *TaskInput) error {
	title, err := requireLength("Title", in.Title, taskTitleMin, taskTitleMax)
	if err != nil {
		return err
	}
	in.Title = title

	if in.Description, err = optionalText("Description", in.Description, descriptionMaxLength); err != nil {
		return err
	}
	if !in.Priority.IsValid() {
		return apperrors.Validation("Invalid priority %q", in.Priority)
	}
	if !in.Status.IsValid() {
		return apperrors.Validation("Invalid status %q", in.Status)
	}
	if in.Deadline.IsZero() {
		return apperrors.Validation("Deadline is required")
	}
	// TIMESTAMPTZ keeps microseconds; finer digits would read back as a change.
	in.Deadline = in.Deadline.Truncate(time.Microsecond)
	return nil
}

// mutation carries per-request state shared by the side-effect helpers.
type mutation struct {
	access     *projectAccess
	names      map[uuid.UUID]string
	recipients []uuid.UUID
}

func (s *taskService) newMutation(access *projectAccess) *mutation {
	names := make(map[uuid.UUID]string, len(access.Members))
	for _, m := range access.Members {
		if m.User != nil {
			names[m.UserID] = m.User.DisplayName()
		}
	}
	return &mutation{access: access, names: names}
}

// nameOf renders a participant for descriptions and messages.
func (s *taskService) nameOf(ctx context.Context, m *mutation, userID uuid.UUID) (string, error) {
	if name, ok := m.names[userID]; ok {
		return name, nil
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve user name: %w", err)
	}
	m.names[userID] = user.DisplayName()
	return m.names[userID], nil
}

func (s *taskService) assigneeName(ctx context.Context, m *mutation, id *uuid.UUID) (string, error) {
	if id == nil {
		return unassignedLabel, nil
	}
	return s.nameOf(ctx, m, *id)
}

func (s *taskService) record(ctx context.Context, m *mutation, task *models.Task, description string, meta models.ActivityMetadata) error {
	taskID := task.ID
	return s.activities.Record(ctx, &models.Activity{
		Type:        meta.ActivityType(),
		Description: description,
		UserID:      m.access.Caller,
		ProjectID:   task.ProjectID,
		TaskID:      &taskID,
		Metadata:    meta,
	})
}

func (s *taskService) notify(ctx context.Context, m *mutation, task *models.Task, kind models.NotificationType, recipient uuid.UUID, message string) error {
	err := s.notifications.Notify(ctx, &models.Notification{
		Type:    kind,
		Message: message,
		UserID:  recipient,
		Metadata: models.NotificationMetadata{
			TaskID:    task.ID,
			ProjectID: task.ProjectID,
			ActorID:   m.access.Caller,
		},
	})
	if err != nil {
		return err
	}
	m.recipients = append(m.recipients, recipient)
	return nil
}

// assign notifies the new assignee and logs TASK_ASSIGNED.
func (s *taskService) assign(ctx context.Context, m *mutation, task *models.Task, assigneeID uuid.UUID) error {
	actor, err := s.nameOf(ctx, m, m.access.Caller)
	if err != nil {
		return err
	}
	assignee, err := s.nameOf(ctx, m, assigneeID)
	if err != nil {
		return err
	}

	msg := fmt.Sprintf("%s assigned you to %q", actor, task.Title)
	if err := s.notify(ctx, m, task, models.NotificationTaskAssigned, assigneeID, msg); err != nil {
		return err
	}
	desc := fmt.Sprintf("Assigned task %q to %s", task.Title, assignee)
	return s.record(ctx, m, task, desc, models.TaskAssignedMetadata{AssigneeID: assigneeID})
}

// tag adds one tag, notifies the tagged user and logs TASK_TAGGED.
func (s *taskService) tag(ctx context.Context, m *mutation, task *models.Task, userID uuid.UUID) error {
	if err := s.repo.AddTag(ctx, task.ID, userID); err != nil {
		return err
	}

	actor, err := s.nameOf(ctx, m, m.access.Caller)
	if err != nil {
		return err
	}
	tagged, err := s.nameOf(ctx, m, userID)
	if err != nil {
		return err
	}

	msg := fmt.Sprintf("%s tagged you on %q", actor, task.Title)
	if err := s.notify(ctx, m, task, models.NotificationTaskTagged, userID, msg); err != nil {
		return err
	}
	desc := fmt.Sprintf("Tagged %s on task %q", tagged, task.Title)
	return s.record(ctx, m, task, desc, models.TaskTaggedMetadata{TaggedUserID: userID})
}

// reconcileTags makes the task's tags match requested. Ids that cannot be
// tagged are dropped without error: non-participants, the creator and the
// assignee.
func (s *taskService) reconcileTags(ctx context.Context, m *mutation, task *models.Task, requested []uuid.UUID) error {
	current, err := s.repo.ListTags(ctx, task.ID)
	if err != nil {
		return err
	}
	have := make(map[uuid.UUID]bool, len(current))
	for _, t := range current {
		have[t.UserID] = true
	}
	want := make(map[uuid.UUID]bool, len(requested))
	for _, id := range requested {
		want[id] = true
	}

	var removed []uuid.UUID
	for _, t := range current {
		if !want[t.UserID] {
			removed = append(removed, t.UserID)
		}
	}
	if len(removed) > 0 {
		if err := s.repo.RemoveTags(ctx, task.ID, removed); err != nil {
			return err
		}
	}

	seen := make(map[uuid.UUID]bool, len(requested))
	for _, id := range requested {
		if have[id] || seen[id] {
			continue
		}
		seen[id] = true
		if id == task.CreatedByID || task.IsAssignedTo(id) {
			continue
		}
		if !IsAssignable(m.access.Project, m.access.Members, id) {
			continue
		}
		if err := s.tag(ctx, m, task, id); err != nil {
			return err
		}
	}
	return nil
}

// commit invalidates cached unread counts once the transaction is durable.
func (s *taskService) commit(ctx context.Context, m *mutation) {
	s.notifications.InvalidateUnread(ctx, m.recipients...)
}

func (s *taskService) Create(ctx context.Context, projectID uuid.UUID, in TaskInput) (*models.Task, error) {
	access, err := s.access.load(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := access.requireParticipant(); err != nil {
		return nil, err
	}
	if err := validateTaskInput(&in); err != nil {
		return nil, err
	}
	if in.AssignedToID != nil && !IsAssignable(access.Project, access.Members, *in.AssignedToID) {
		return nil, apperrors.Validation("Assigned user is not a member of this project")
	}

	task := &models.Task{
		ProjectID:    projectID,
		Title:        in.Title,
		Description:  in.Description,
		Priority:     in.Priority,
		Status:       in.Status,
		Deadline:     in.Deadline,
		CreatedByID:  access.Caller,
		AssignedToID: in.AssignedToID,
	}

	m := s.newMutation(access)
	err = s.runInTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, task); err != nil {
			return err
		}
		desc := fmt.Sprintf("Created task %q", task.Title)
		if err := s.record(ctx, m, task, desc, models.TaskCreatedMetadata{Title: task.Title}); err != nil {
			return err
		}
		if task.AssignedToID != nil {
			return s.assign(ctx, m, task, *task.AssignedToID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.commit(ctx, m)

	s.logger.Debug("Task created",
		zap.String("task_id", task.ID.String()),
		zap.String("project_id", projectID.String()))
	return s.repo.GetByID(ctx, task.ID)
}

func (s *taskService) Update(ctx context.Context, taskID uuid.UUID, in TaskUpdate) (*models.Task, error) {
	task, err := s.repo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	access, err := s.access.load(ctx, task.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := access.requireParticipant(); err != nil {
		return nil, err
	}
	if !access.Role.CanManage() && task.CreatedByID != access.Caller && !task.IsAssignedTo(access.Caller) {
		return nil, apperrors.Forbidden("You don't have permission to update this task")
	}
	if err := validateTaskInput(&in.TaskInput); err != nil {
		return nil, err
	}

	assigneeChanged := !sameAssignee(task, in.TaskInput)
	if assigneeChanged && in.AssignedToID != nil && !IsAssignable(access.Project, access.Members, *in.AssignedToID) {
		return nil, apperrors.Validation("Assigned user is not a member of this project")
	}

	m := s.newMutation(access)
	oldAssignee, err := s.assigneeName(ctx, m, task.AssignedToID)
	if err != nil {
		return nil, err
	}
	newAssignee, err := s.assigneeName(ctx, m, in.AssignedToID)
	if err != nil {
		return nil, err
	}
	diffs := diffTask(task, in.TaskInput, oldAssignee, newAssignee)

	updated := *task
	updated.Title = in.Title
	updated.Description = in.Description
	updated.Priority = in.Priority
	updated.Status = in.Status
	updated.Deadline = in.Deadline
	updated.AssignedToID = in.AssignedToID

	err = s.runInTx(ctx, func(ctx context.Context) error {
		if len(diffs) > 0 {
			if err := s.repo.Update(ctx, &updated); err != nil {
				return err
			}
			if err := s.record(ctx, m, &updated, updateDescription(updated.Title, diffs), updateMetadata(diffs)); err != nil {
				return err
			}
		}
		if assigneeChanged && updated.AssignedToID != nil {
			if err := s.assign(ctx, m, &updated, *updated.AssignedToID); err != nil {
				return err
			}
		}
		if in.TaggedUserIDs != nil {
			return s.reconcileTags(ctx, m, &updated, in.TaggedUserIDs)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.commit(ctx, m)

	return s.repo.GetByID(ctx, taskID)
}

func (s *taskService) UpdateStatus(ctx context.Context, taskID uuid.UUID, status models.TaskStatus) (*models.Task, error) {
	task, err := s.repo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	access, err := s.access.load(ctx, task.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := access.requireParticipant(); err != nil {
		return nil, err
	}
	if !status.IsValid() {
		return nil, apperrors.Validation("Invalid status %q", status)
	}

	old := task.Status
	m := s.newMutation(access)
	err = s.runInTx(ctx, func(ctx context.Context) error {
		if err := s.repo.UpdateStatus(ctx, taskID, status); err != nil {
			return err
		}
		desc := fmt.Sprintf("Moved task %q from %s to %s", task.Title, old, status)
		return s.record(ctx, m, task, desc, models.StatusChangedMetadata{OldStatus: old, NewStatus: status})
	})
	if err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, taskID)
}

func (s *taskService) Delete(ctx context.Context, taskID uuid.UUID) error {
	task, err := s.repo.GetByID(ctx, taskID)
	if err != nil {
		return err
	}
	access, err := s.access.load(ctx, task.ProjectID)
	if err != nil {
		return err
	}
	if err := access.requireParticipant(); err != nil {
		return err
	}
	if !access.Role.CanManage() && task.CreatedByID != access.Caller {
		return apperrors.Forbidden("You don't have permission to delete this task")
	}

	m := s.newMutation(access)
	err = s.runInTx(ctx, func(ctx context.Context) error {
		desc := fmt.Sprintf("Deleted task %q", task.Title)
		meta := models.TaskDeletedMetadata{TaskID: task.ID, Title: task.Title}
		if err := s.record(ctx, m, task, desc, meta); err != nil {
			return err
		}
		return s.repo.Delete(ctx, taskID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Task deleted",
		zap.String("task_id", taskID.String()),
		zap.String("project_id", task.ProjectID.String()))
	return nil
}

func (s *taskService) GetByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Task, error) {
	access, err := s.access.load(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := access.requireParticipant(); err != nil {
		return nil, err
	}

	var visibleTo *uuid.UUID
	if !access.Role.CanManage() {
		visibleTo = &access.Caller
	}
	return s.repo.ListByProject(ctx, projectID, visibleTo)
}

func (s *taskService) GetTaskActivities(ctx context.Context, taskID uuid.UUID) ([]*models.Activity, error) {
	return s.activities.GetByTask(ctx, taskID)
}
