package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/worknest/worknest-engine/pkg/models"
)

// ProjectRepository defines the interface for project data access.
type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	GetByID(ctx context.Context, projectID uuid.UUID) (*models.Project, error)
	Update(ctx context.Context, project *models.Project) error
	// Delete removes the project; members, tasks and invitations cascade.
	Delete(ctx context.Context, projectID uuid.UUID) error
	// ListForUser returns projects the user owns or is a member of,
	// most recently updated first.
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.ProjectSummary, error)
}

type projectRepository struct{}

// NewProjectRepository creates a new project repository.
func NewProjectRepository() ProjectRepository {
	return &projectRepository{}
}

var _ ProjectRepository = (*projectRepository)(nil)

func (r *projectRepository) Create(ctx context.Context, project *models.Project) error {
	q, err := querier(ctx)
	if err != nil {
		return err
	}

	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}
	now := time.Now()
	project.CreatedAt = now
	project.UpdatedAt = now

	query := `
		INSERT INTO projects (id, name, description, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err = q.Exec(ctx, query,
		project.ID,
		project.Name,
		project.Description,
		project.OwnerID,
		project.CreatedAt,
		project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", translate(err, "Project"))
	}
	return nil
}

func (r *projectRepository) GetByID(ctx context.Context, projectID uuid.UUID) (*models.Project, error) {
	q, err := querier(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, name, description, owner_id, created_at, updated_at
		FROM projects
		WHERE id = $1`

	var p models.Project
	err = q.QueryRow(ctx, query, projectID).Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.OwnerID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, translate(err, "Project")
	}
	return &p, nil
}

func (r *projectRepository) Update(ctx context.Context, project *models.Project) error {
	q, err := querier(ctx)
	if err != nil {
		return err
	}

	project.UpdatedAt = time.Now()
	result, err := q.Exec(ctx,
		`UPDATE projects SET name = $1, description = $2, updated_at = $3 WHERE id = $4`,
		project.Name, project.Description, project.UpdatedAt, project.ID)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	if result.RowsAffected() == 0 {
		return translate(pgx.ErrNoRows, "Project")
	}
	return nil
}

func (r *projectRepository) Delete(ctx context.Context, projectID uuid.UUID) error {
	q, err := querier(ctx)
	if err != nil {
		return err
	}

	result, err := q.Exec(ctx, `DELETE FROM projects WHERE id = $1`, projectID)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if result.RowsAffected() == 0 {
		return translate(pgx.ErrNoRows, "Project")
	}
	return nil
}

func (r *projectRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.ProjectSummary, error) {
	q, err := querier(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT p.id, p.name, p.description, p.owner_id, p.created_at, p.updated_at,
		       o.id, o.email, o.name, o.image,
		       (SELECT COUNT(*) FROM tasks t WHERE t.project_id = p.id),
		       (SELECT COUNT(*) FROM project_members pm WHERE pm.project_id = p.id)
		FROM projects p
		JOIN users o ON o.id = p.owner_id
		WHERE p.owner_id = $1
		   OR EXISTS (
		       SELECT 1 FROM project_members m
		       WHERE m.project_id = p.id AND m.user_id = $1
		   )
		ORDER BY p.updated_at DESC`

	rows, err := q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var summaries []*models.ProjectSummary
	for rows.Next() {
		var s models.ProjectSummary
		owner := &models.User{}
		if err := rows.Scan(
			&s.ID,
			&s.Name,
			&s.Description,
			&s.OwnerID,
			&s.CreatedAt,
			&s.UpdatedAt,
			&owner.ID,
			&owner.Email,
			&owner.Name,
			&owner.Image,
			&s.TaskCount,
			&s.MemberCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		s.Owner = owner
		summaries = append(summaries, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating projects: %w", err)
	}

	return summaries, nil
}
