package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/worknest/worknest-engine/pkg/apperrors"
	"github.com/worknest/worknest-engine/pkg/auth"
	"github.com/worknest/worknest-engine/pkg/logging"
	"github.com/worknest/worknest-engine/pkg/models"
	"github.com/worknest/worknest-engine/pkg/repositories"
)

// InvitationService manages project invitations keyed by (project, email).
type InvitationService interface {
	// Invite creates a PENDING invitation, or resets a resolved one back to
	// PENDING with the caller as inviter.
	Invite(ctx context.Context, projectID uuid.UUID, email string) (*models.Invitation, error)

	// Accept marks the invitation ACCEPTED and adds the caller as MEMBER.
	Accept(ctx context.Context, invitationID uuid.UUID) (*models.Invitation, error)

	// Decline marks the invitation REVOKED.
	Decline(ctx context.Context, invitationID uuid.UUID) (*models.Invitation, error)

	// GetPending returns the caller's pending invitations, newest first.
	GetPending(ctx context.Context) ([]*models.Invitation, error)
}

type invitationService struct {
	repo    repositories.InvitationRepository
	users   repositories.UserRepository
	members repositories.MemberRepository
	access  accessLoader
	runInTx TxFunc
	logger  *zap.Logger
}

// NewInvitationService creates a new InvitationService.
func NewInvitationService(
	repo repositories.InvitationRepository,
	users repositories.UserRepository,
	projects repositories.ProjectRepository,
	members repositories.MemberRepository,
	runInTx TxFunc,
	logger *zap.Logger,
) InvitationService {
	return &invitationService{
		repo:    repo,
		users:   users,
		members: members,
		access:  accessLoader{projects: projects, members: members},
		runInTx: runInTx,
		logger:  logger.Named("invitation-service"),
	}
}

var _ InvitationService = (*invitationService)(nil)

// normalizeEmail lower-cases and validates an address. Display-name forms
// such as "Ann <ann@example.com>" are rejected.
func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", apperrors.Validation("Invalid email address")
	}
	return email, nil
}

func (s *invitationService) Invite(ctx context.Context, projectID uuid.UUID, rawEmail string) (*models.Invitation, error) {
	access, err := s.access.load(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !access.Role.CanManage() {
		return nil, apperrors.Forbidden("You don't have permission to invite members")
	}

	email, err := normalizeEmail(rawEmail)
	if err != nil {
		return nil, err
	}

	owner, err := s.users.GetByID(ctx, access.Project.OwnerID)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(owner.Email, email) {
		return nil, apperrors.Validation("This user is the owner of the project")
	}
	for _, m := range access.Members {
		if m.User != nil && strings.EqualFold(m.User.Email, email) {
			return nil, apperrors.Validation("This user is already a member of the project")
		}
	}

	existing, err := s.repo.GetByProjectAndEmail(ctx, projectID, email)
	switch {
	case err == nil:
		if existing.Status == models.InvitationPending {
			return nil, apperrors.Validation("An invitation has already been sent to this email")
		}
	case !errors.Is(err, apperrors.ErrNotFound):
		return nil, err
	}

	inv := &models.Invitation{
		ProjectID: projectID,
		Email:     email,
		InviterID: access.Caller,
	}
	if err := s.repo.Upsert(ctx, inv); err != nil {
		return nil, err
	}

	s.logger.Info("Invitation sent",
		zap.String("project_id", projectID.String()),
		zap.String("invitation_id", inv.ID.String()),
		zap.String("email", logging.MaskEmail(email)))
	return inv, nil
}

// loadForCaller fetches a PENDING invitation addressed to the caller.
func (s *invitationService) loadForCaller(ctx context.Context, invitationID uuid.UUID) (*models.Invitation, uuid.UUID, error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, uuid.Nil, err
	}
	email := auth.GetEmailFromContext(ctx)
	if email == "" {
		return nil, uuid.Nil, apperrors.Unauthorized("Token has no email claim")
	}

	inv, err := s.repo.GetByID(ctx, invitationID)
	if err != nil {
		return nil, uuid.Nil, err
	}
	if !strings.EqualFold(inv.Email, email) {
		return nil, uuid.Nil, apperrors.Forbidden("This invitation is not for you")
	}
	if inv.Status.IsTerminal() {
		return nil, uuid.Nil, apperrors.Validation("This invitation is no longer pending")
	}
	return inv, caller, nil
}

func (s *invitationService) Accept(ctx context.Context, invitationID uuid.UUID) (*models.Invitation, error) {
	inv, caller, err := s.loadForCaller(ctx, invitationID)
	if err != nil {
		return nil, err
	}

	err = s.runInTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Resolve(ctx, inv.ID, models.InvitationAccepted); err != nil {
			return err
		}
		member := &models.ProjectMember{
			ProjectID: inv.ProjectID,
			UserID:    caller,
			Role:      models.MemberRoleMember,
		}
		if err := s.members.Add(ctx, member); err != nil {
			if errors.Is(err, apperrors.ErrConflict) {
				return apperrors.Validation("You are already a member of this project")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	inv.Status = models.InvitationAccepted
	s.logger.Info("Invitation accepted",
		zap.String("project_id", inv.ProjectID.String()),
		zap.String("user_id", caller.String()))
	return inv, nil
}

func (s *invitationService) Decline(ctx context.Context, invitationID uuid.UUID) (*models.Invitation, error) {
	inv, _, err := s.loadForCaller(ctx, invitationID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Resolve(ctx, inv.ID, models.InvitationRevoked); err != nil {
		return nil, err
	}
	inv.Status = models.InvitationRevoked
	return inv, nil
}

func (s *invitationService) GetPending(ctx context.Context) ([]*models.Invitation, error) {
	if _, err := callerID(ctx); err != nil {
		return nil, err
	}
	email := auth.GetEmailFromContext(ctx)
	if email == "" {
		return nil, apperrors.Unauthorized("Token has no email claim")
	}
	return s.repo.ListPendingForEmail(ctx, email)
}
