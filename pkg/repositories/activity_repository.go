package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/worknest/worknest-engine/pkg/models"
)

// ActivityRepository provides append-only access to the activity log.
// There is deliberately no update or delete.
type ActivityRepository interface {
	// Create inserts a new activity entry.
	Create(ctx context.Context, activity *models.Activity) error

	// ListByTask returns all activities for a task, newest first, actor expanded.
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]*models.Activity, error)

	// ListByProject returns the project's most recent activities, newest first.
	ListByProject(ctx context.Context, projectID uuid.UUID, limit int) ([]*models.Activity, error)
}

type activityRepository struct{}

// NewActivityRepository creates a new ActivityRepository.
func NewActivityRepository() ActivityRepository {
	return &activityRepository{}
}

var _ ActivityRepository = (*activityRepository)(nil)

func (r *activityRepository) Create(ctx context.Context, activity *models.Activity) error {
	q, err := querier(ctx)
	if err != nil {
		return err
	}

	if activity.ID == uuid.Nil {
		activity.ID = uuid.New()
	}
	activity.CreatedAt = time.Now()

	metadata, err := models.EncodeActivityMetadata(activity.Type, activity.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode activity metadata: %w", err)
	}

	query := `
		INSERT INTO activities (
			id, type, description, user_id, project_id, task_id, metadata, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = q.Exec(ctx, query,
		activity.ID,
		activity.Type,
		activity.Description,
		activity.UserID,
		activity.ProjectID,
		activity.TaskID,
		metadata,
		activity.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create activity: %w", err)
	}

	return nil
}

const activitySelect = `
	SELECT a.id, a.type, a.description, a.user_id, a.project_id, a.task_id, a.metadata, a.created_at,
	       u.id, u.email, u.name, u.image
	FROM activities a
	LEFT JOIN users u ON u.id = a.user_id`

func (r *activityRepository) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*models.Activity, error) {
	return r.list(ctx, activitySelect+`
		WHERE a.task_id = $1
		ORDER BY a.created_at DESC, a.seq DESC`, taskID)
}

func (r *activityRepository) ListByProject(ctx context.Context, projectID uuid.UUID, limit int) ([]*models.Activity, error) {
	return r.list(ctx, activitySelect+`
		WHERE a.project_id = $1
		ORDER BY a.created_at DESC, a.seq DESC
		LIMIT $2`, projectID, limit)
}

func (r *activityRepository) list(ctx context.Context, query string, args ...any) ([]*models.Activity, error) {
	q, err := querier(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer rows.Close()

	var activities []*models.Activity
	for rows.Next() {
		activity, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, activity)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activities: %w", err)
	}

	return activities, nil
}

func scanActivity(row pgx.Row) (*models.Activity, error) {
	var a models.Activity
	var metadata []byte
	var actor joinedUser

	dest := []any{
		&a.ID,
		&a.Type,
		&a.Description,
		&a.UserID,
		&a.ProjectID,
		&a.TaskID,
		&metadata,
		&a.CreatedAt,
	}
	if err := row.Scan(append(dest, actor.dest()...)...); err != nil {
		return nil, fmt.Errorf("failed to scan activity: %w", err)
	}

	meta, err := models.DecodeActivityMetadata(a.Type, metadata)
	if err != nil {
		return nil, err
	}
	a.Metadata = meta
	a.User = actor.user()
	return &a, nil
}
