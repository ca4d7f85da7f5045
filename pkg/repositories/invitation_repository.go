package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/worknest/worknest-engine/pkg/apperrors"
	"github.com/worknest/worknest-engine/pkg/models"
)

// InvitationRepository defines the interface for invitation data access.
type InvitationRepository interface {
	GetByID(ctx context.Context, invitationID uuid.UUID) (*models.Invitation, error)
	GetByProjectAndEmail(ctx context.Context, projectID uuid.UUID, email string) (*models.Invitation, error)
	// Upsert creates a PENDING invitation for (project, email), or resets an
	// existing row for that pair back to PENDING with the new inviter.
	// The invitation's ID is set to the stored row's id.
	Upsert(ctx context.Context, inv *models.Invitation) error
	// Resolve moves a PENDING invitation to a terminal status. It fails with
	// a validation error when the row is no longer PENDING.
	Resolve(ctx context.Context, invitationID uuid.UUID, status models.InvitationStatus) error
	// ListPendingForEmail returns PENDING invitations addressed to email,
	// newest first, with project and inviter expanded.
	ListPendingForEmail(ctx context.Context, email string) ([]*models.Invitation, error)
}

type invitationRepository struct{}

// NewInvitationRepository creates a new invitation repository.
func NewInvitationRepository() InvitationRepository {
	return &invitationRepository{}
}

var _ InvitationRepository = (*invitationRepository)(nil)

const invitationColumns = `id, project_id, email, status, inviter_id, created_at, updated_at`

func (r *invitationRepository) GetByID(ctx context.Context, invitationID uuid.UUID) (*models.Invitation, error) {
	return r.getOne(ctx, `SELECT `+invitationColumns+` FROM invitations WHERE id = $1`, invitationID)
}

func (r *invitationRepository) GetByProjectAndEmail(ctx context.Context, projectID uuid.UUID, email string) (*models.Invitation, error) {
	return r.getOne(ctx,
		`SELECT `+invitationColumns+` FROM invitations WHERE project_id = $1 AND email = $2`,
		projectID, email)
}

func (r *invitationRepository) getOne(ctx context.Context, query string, args ...any) (*models.Invitation, error) {
	q, err := querier(ctx)
	if err != nil {
		return nil, err
	}

	var inv models.Invitation
	err = q.QueryRow(ctx, query, args...).Scan(
		&inv.ID,
		&inv.ProjectID,
		&inv.Email,
		&inv.Status,
		&inv.InviterID,
		&inv.CreatedAt,
		&inv.UpdatedAt,
	)
	if err != nil {
		return nil, translate(err, "Invitation")
	}
	return &inv, nil
}

func (r *invitationRepository) Upsert(ctx context.Context, inv *models.Invitation) error {
	q, err := querier(ctx)
	if err != nil {
		return err
	}

	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	inv.Status = models.InvitationPending
	now := time.Now()

	query := `
		INSERT INTO invitations (id, project_id, email, status, inviter_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (project_id, email) DO UPDATE
		SET status = EXCLUDED.status,
		    inviter_id = EXCLUDED.inviter_id,
		    updated_at = EXCLUDED.updated_at
		RETURNING id, created_at, updated_at`

	err = q.QueryRow(ctx, query,
		inv.ID,
		inv.ProjectID,
		inv.Email,
		inv.Status,
		inv.InviterID,
		now,
	).Scan(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert invitation: %w", err)
	}
	return nil
}

func (r *invitationRepository) Resolve(ctx context.Context, invitationID uuid.UUID, status models.InvitationStatus) error {
	q, err := querier(ctx)
	if err != nil {
		return err
	}

	result, err := q.Exec(ctx, `
		UPDATE invitations SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4`,
		status, time.Now(), invitationID, models.InvitationPending)
	if err != nil {
		return fmt.Errorf("failed to update invitation: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.Validation("This invitation is no longer pending")
	}
	return nil
}

func (r *invitationRepository) ListPendingForEmail(ctx context.Context, email string) ([]*models.Invitation, error) {
	q, err := querier(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT i.id, i.project_id, i.email, i.status, i.inviter_id, i.created_at, i.updated_at,
		       p.id, p.name, p.description, p.owner_id, p.created_at, p.updated_at,
		       u.id, u.email, u.name, u.image
		FROM invitations i
		JOIN projects p ON p.id = i.project_id
		JOIN users u ON u.id = i.inviter_id
		WHERE i.email = $1 AND i.status = $2
		ORDER BY i.updated_at DESC`

	rows, err := q.Query(ctx, query, email, models.InvitationPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	defer rows.Close()

	var invitations []*models.Invitation
	for rows.Next() {
		var inv models.Invitation
		p := &models.Project{}
		u := &models.User{}
		if err := rows.Scan(
			&inv.ID, &inv.ProjectID, &inv.Email, &inv.Status, &inv.InviterID, &inv.CreatedAt, &inv.UpdatedAt,
			&p.ID, &p.Name, &p.Description, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt,
			&u.ID, &u.Email, &u.Name, &u.Image,
		); err != nil {
			return nil, fmt.Errorf("failed to scan invitation: %w", err)
		}
		inv.Project = p
		inv.Inviter = u
		invitations = append(invitations, &inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invitations: %w", err)
	}

	return invitations, nil
}
