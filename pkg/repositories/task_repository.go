package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/worknest/worknest-engine/pkg/database"
	"github.com/worknest/worknest-engine/pkg/models"
)

// TaskRepository defines the interface for task and task tag data access.
type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	// GetByID returns the task with creator, assignee and tags expanded.
	GetByID(ctx context.Context, taskID uuid.UUID) (*models.Task, error)
	// Update writes every editable field of the task.
	Update(ctx context.Context, task *models.Task) error
	UpdateStatus(ctx context.Context, taskID uuid.UUID, status models.TaskStatus) error
	// Delete removes the task; its tags cascade. Activities keep the id.
	Delete(ctx context.Context, taskID uuid.UUID) error
	// ListByProject returns the project's tasks, most recently updated first.
	// A non-nil visibleTo restricts the result to tasks that user created,
	// is assigned to, or is tagged on.
	ListByProject(ctx context.Context, projectID uuid.UUID, visibleTo *uuid.UUID) ([]*models.Task, error)

	ListTags(ctx context.Context, taskID uuid.UUID) ([]*models.TaskTag, error)
	AddTag(ctx context.Context, taskID, userID uuid.UUID) error
	RemoveTags(ctx context.Context, taskID uuid.UUID, userIDs []uuid.UUID) error

	// DetachUser unassigns userID from every task of the project and removes
	// their tags there. Returns the number of tasks that lost the assignee.
	DetachUser(ctx context.Context, projectID, userID uuid.UUID) (int64, error)
}

type taskRepository struct{}

// NewTaskRepository creates a new task repository.
func NewTaskRepository() TaskRepository {
	return &taskRepository{}
}

var _ TaskRepository = (*taskRepository)(nil)

const taskSelect = `
	SELECT t.id, t.project_id, t.title, t.description, t.priority, t.status, t.deadline,
	       t.created_by_id, t.assigned_to_id, t.created_at, t.updated_at,
	       c.id, c.email, c.name, c.image,
	       a.id, a.email, a.name, a.image
	FROM tasks t
	LEFT JOIN users c ON c.id = t.created_by_id
	LEFT JOIN users a ON a.id = t.assigned_to_id`

func (r *taskRepository) Create(ctx context.Context, task *models.Task) error {
	q, err := querier(ctx)
	if err != nil {
		return err
	}

	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now

	query := `
		INSERT INTO tasks (
			id, project_id, title, description, priority, status, deadline,
			created_by_id, assigned_to_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err = q.Exec(ctx, query,
		task.ID,
		task.ProjectID,
		task.Title,
		task.Description,
		task.Priority,
		task.Status,
		task.Deadline,
		task.CreatedByID,
		task.AssignedToID,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", translate(err, "Task"))
	}
	return nil
}

func (r *taskRepository) GetByID(ctx context.Context, taskID uuid.UUID) (*models.Task, error) {
	q, err := querier(ctx)
	if err != nil {
		return nil, err
	}

	task, err := scanTask(q.QueryRow(ctx, taskSelect+` WHERE t.id = $1`, taskID))
	if err != nil {
		return nil, translate(err, "Task")
	}

	if task.Tags, err = r.ListTags(ctx, taskID); err != nil {
		return nil, err
	}
	return task, nil
}

func (r *taskRepository) Update(ctx context.Context, task *models.Task) error {
	q, err := querier(ctx)
	if err != nil {
		return err
	}

	task.UpdatedAt = time.Now()
	query := `
		UPDATE tasks
		SET title = $1, description = $2, priority = $3, status = $4,
		    deadline = $5, assigned_to_id = $6, updated_at = $7
		WHERE id = $8`

	result, err := q.Exec(ctx, query,
		task.Title,
		task.Description,
		task.Priority,
		task.Status,
		task.Deadline,
		task.AssignedToID,
		task.UpdatedAt,
		task.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if result.RowsAffected() == 0 {
		return translate(pgx.ErrNoRows, "Task")
	}
	return nil
}

func (r *taskRepository) UpdateStatus(ctx context.Context, taskID uuid.UUID, status models.TaskStatus) error {
	q, err := querier(ctx)
	if err != nil {
		return err
	}

	result, err := q.Exec(ctx,
		`UPDATE tasks SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now(), taskID)
	if err != nil {
		return fmt.Errorf("failed to update task status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return translate(pgx.ErrNoRows, "Task")
	}
	return nil
}

func (r *taskRepository) Delete(ctx context.Context, taskID uuid.UUID) error {
	q, err := querier(ctx)
	if err != nil {
		return err
	}

	result, err := q.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, taskID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if result.RowsAffected() == 0 {
		return translate(pgx.ErrNoRows, "Task")
	}
	return nil
}

func (r *taskRepository) ListByProject(ctx context.Context, projectID uuid.UUID, visibleTo *uuid.UUID) ([]*models.Task, error) {
	q, err := querier(ctx)
	if err != nil {
		return nil, err
	}

	query := taskSelect + ` WHERE t.project_id = $1`
	args := []any{projectID}
	if visibleTo != nil {
		query += `
		AND (t.created_by_id = $2
		     OR t.assigned_to_id = $2
		     OR EXISTS (SELECT 1 FROM task_tags tt WHERE tt.task_id = t.id AND tt.user_id = $2))`
		args = append(args, *visibleTo)
	}
	query += ` ORDER BY t.updated_at DESC`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.Task
	byID := make(map[uuid.UUID]*models.Task)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
		byID[task.ID] = task
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}

	if len(tasks) == 0 {
		return tasks, nil
	}
	if err := r.attachTags(ctx, q, byID); err != nil {
		return nil, err
	}
	return tasks, nil
}

// attachTags loads the tags of every task in byID with one query.
func (r *taskRepository) attachTags(ctx context.Context, q database.Querier, byID map[uuid.UUID]*models.Task) error {
	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id.String())
	}

	rows, err := q.Query(ctx, tagSelect+` WHERE tt.task_id = ANY($1::uuid[]) ORDER BY tt.created_at`, ids)
	if err != nil {
		return fmt.Errorf("failed to list task tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return fmt.Errorf("failed to scan task tag: %w", err)
		}
		if task, ok := byID[tag.TaskID]; ok {
			task.Tags = append(task.Tags, tag)
		}
	}
	return rows.Err()
}

const tagSelect = `
	SELECT tt.task_id, tt.user_id, tt.created_at, u.id, u.email, u.name, u.image
	FROM task_tags tt
	JOIN users u ON u.id = tt.user_id`

func (r *taskRepository) ListTags(ctx context.Context, taskID uuid.UUID) ([]*models.TaskTag, error) {
	q, err := querier(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx, tagSelect+` WHERE tt.task_id = $1 ORDER BY tt.created_at`, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list task tags: %w", err)
	}
	defer rows.Close()

	var tags []*models.TaskTag
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task tag: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task tags: %w", err)
	}
	return tags, nil
}

func (r *taskRepository) AddTag(ctx context.Context, taskID, userID uuid.UUID) error {
	q, err := querier(ctx)
	if err != nil {
		return err
	}

	_, err = q.Exec(ctx, `
		INSERT INTO task_tags (task_id, user_id, created_at) VALUES ($1, $2, $3)
		ON CONFLICT (task_id, user_id) DO NOTHING`,
		taskID, userID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to add task tag: %w", err)
	}
	return nil
}

func (r *taskRepository) RemoveTags(ctx context.Context, taskID uuid.UUID, userIDs []uuid.UUID) error {
	if len(userIDs) == 0 {
		return nil
	}

	q, err := querier(ctx)
	if err != nil {
		return err
	}

	ids := make([]string, len(userIDs))
	for i, id := range userIDs {
		ids[i] = id.String()
	}

	_, err = q.Exec(ctx,
		`DELETE FROM task_tags WHERE task_id = $1 AND user_id = ANY($2::uuid[])`,
		taskID, ids)
	if err != nil {
		return fmt.Errorf("failed to remove task tags: %w", err)
	}
	return nil
}

func (r *taskRepository) DetachUser(ctx context.Context, projectID, userID uuid.UUID) (int64, error) {
	q, err := querier(ctx)
	if err != nil {
		return 0, err
	}

	result, err := q.Exec(ctx,
		`UPDATE tasks SET assigned_to_id = NULL, updated_at = NOW()
		 WHERE project_id = $1 AND assigned_to_id = $2`,
		projectID, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to unassign tasks: %w", err)
	}

	_, err = q.Exec(ctx,
		`DELETE FROM task_tags tt
		 USING tasks t
		 WHERE tt.task_id = t.id AND t.project_id = $1 AND tt.user_id = $2`,
		projectID, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to remove task tags: %w", err)
	}
	return result.RowsAffected(), nil
}

func scanTask(row pgx.Row) (*models.Task, error) {
	var t models.Task
	var creator, assignee joinedUser

	dest := []any{
		&t.ID,
		&t.ProjectID,
		&t.Title,
		&t.Description,
		&t.Priority,
		&t.Status,
		&t.Deadline,
		&t.CreatedByID,
		&t.AssignedToID,
		&t.CreatedAt,
		&t.UpdatedAt,
	}
	dest = append(dest, creator.dest()...)
	dest = append(dest, assignee.dest()...)

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	t.CreatedBy = creator.user()
	t.AssignedTo = assignee.user()
	return &t, nil
}

func scanTag(row pgx.Row) (*models.TaskTag, error) {
	var tag models.TaskTag
	u := &models.User{}
	if err := row.Scan(&tag.TaskID, &tag.UserID, &tag.CreatedAt, &u.ID, &u.Email, &u.Name, &u.Image); err != nil {
		return nil, err
	}
	tag.User = u
	return &tag, nil
}
