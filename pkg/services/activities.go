package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/worknest/worknest-engine/pkg/models"
	"github.com/worknest/worknest-engine/pkg/repositories"
)

// DefaultActivityFeedLimit bounds the project activity feed when the caller
// does not ask for a size.
const DefaultActivityFeedLimit = 50

// maxActivityFeedLimit caps caller-provided feed sizes.
const maxActivityFeedLimit = 200

// ActivityService records and reads the append-only activity log.
type ActivityService interface {
	// Record appends an activity. The actor defaults to the caller.
	Record(ctx context.Context, activity *models.Activity) error

	// GetByTask returns the task's activities, newest first, actor expanded.
	GetByTask(ctx context.Context, taskID uuid.UUID) ([]*models.Activity, error)

	// GetByProject returns the project's most recent activities, including
	// those of deleted tasks.
	GetByProject(ctx context.Context, projectID uuid.UUID, limit int) ([]*models.Activity, error)
}

type activityService struct {
	repo   repositories.ActivityRepository
	tasks  repositories.TaskRepository
	access accessLoader
	logger *zap.Logger
}

// NewActivityService creates a new ActivityService.
func NewActivityService(
	repo repositories.ActivityRepository,
	tasks repositories.TaskRepository,
	projects repositories.ProjectRepository,
	members repositories.MemberRepository,
	logger *zap.Logger,
) ActivityService {
	return &activityService{
		repo:   repo,
		tasks:  tasks,
		access: accessLoader{projects: projects, members: members},
		logger: logger.Named("activity-service"),
	}
}

var _ ActivityService = (*activityService)(nil)

func (s *activityService) Record(ctx context.Context, activity *models.Activity) error {
	if activity.UserID == uuid.Nil {
		caller, err := callerID(ctx)
		if err != nil {
			return err
		}
		activity.UserID = caller
	}

	if err := s.repo.Create(ctx, activity); err != nil {
		return err
	}

	s.logger.Debug("Recorded activity",
		zap.String("type", string(activity.Type)),
		zap.String("project_id", activity.ProjectID.String()))
	return nil
}

func (s *activityService) GetByTask(ctx context.Context, taskID uuid.UUID) ([]*models.Activity, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
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

	return s.repo.ListByTask(ctx, taskID)
}

func (s *activityService) GetByProject(ctx context.Context, projectID uuid.UUID, limit int) ([]*models.Activity, error) {
	access, err := s.access.load(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := access.requireParticipant(); err != nil {
		return nil, err
	}

	switch {
	case limit <= 0:
		limit = DefaultActivityFeedLimit
	case limit > maxActivityFeedLimit:
		limit = maxActivityFeedLimit
	}

	return s.repo.ListByProject(ctx, projectID, limit)
}
