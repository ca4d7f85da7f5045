package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/worknest/worknest-engine/pkg/models"
)

// MemberRepository defines the interface for project membership data access.
// The project owner never has a row here.
type MemberRepository interface {
	// ListByProject returns the project's members with their user expanded,
	// in join order.
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.ProjectMember, error)
	Add(ctx context.Context, member *models.ProjectMember) error
	UpdateRole(ctx context.Context, projectID, userID uuid.UUID, role models.MemberRole) error
	Remove(ctx context.Context, projectID, userID uuid.UUID) error
}

type memberRepository struct{}

// NewMemberRepository creates a new member repository.
func NewMemberRepository() MemberRepository {
	return &memberRepository{}
}

var _ MemberRepository = (*memberRepository)(nil)

func (r *memberRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.ProjectMember, error) {
	q, err := querier(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT m.project_id, m.user_id, m.role, m.joined_at,
		       u.id, u.email, u.name, u.image
		FROM project_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.project_id = $1
		ORDER BY m.joined_at`

	rows, err := q.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []*models.ProjectMember
	for rows.Next() {
		var m models.ProjectMember
		u := &models.User{}
		if err := rows.Scan(
			&m.ProjectID,
			&m.UserID,
			&m.Role,
			&m.JoinedAt,
			&u.ID,
			&u.Email,
			&u.Name,
			&u.Image,
		); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		m.User = u
		members = append(members, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating members: %w", err)
	}

	return members, nil
}

func (r *memberRepository) Add(ctx context.Context, member *models.ProjectMember) error {
	q, err := querier(ctx)
	if err != nil {
		return err
	}

	member.JoinedAt = time.Now()
	_, err = q.Exec(ctx,
		`INSERT INTO project_members (project_id, user_id, role, joined_at) VALUES ($1, $2, $3, $4)`,
		member.ProjectID, member.UserID, member.Role, member.JoinedAt)
	if err != nil {
		return fmt.Errorf("failed to add member: %w", translate(err, "Member"))
	}
	return nil
}

func (r *memberRepository) UpdateRole(ctx context.Context, projectID, userID uuid.UUID, role models.MemberRole) error {
	q, err := querier(ctx)
	if err != nil {
		return err
	}

	result, err := q.Exec(ctx,
		`UPDATE project_members SET role = $1 WHERE project_id = $2 AND user_id = $3`,
		role, projectID, userID)
	if err != nil {
		return fmt.Errorf("failed to update member role: %w", err)
	}
	if result.RowsAffected() == 0 {
		return translate(pgx.ErrNoRows, "Member")
	}
	return nil
}

func (r *memberRepository) Remove(ctx context.Context, projectID, userID uuid.UUID) error {
	q, err := querier(ctx)
	if err != nil {
		return err
	}

	result, err := q.Exec(ctx,
		`DELETE FROM project_members WHERE project_id = $1 AND user_id = $2`,
		projectID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	if result.RowsAffected() == 0 {
		return translate(pgx.ErrNoRows, "Member")
	}
	return nil
}
