package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/worknest/worknest-engine/pkg/apperrors"
	"github.com/worknest/worknest-engine/pkg/models"
	"github.com/worknest/worknest-engine/pkg/repositories"
)

const (
	projectNameMin       = 2
	projectNameMax       = 50
	descriptionMaxLength = 500
	msgMemberNotFound    = "Member not found in this project"
)

// ProjectService defines the interface for project operations.
type ProjectService interface {
	// Create makes the caller the owner of a new project. The owner is not
	// added as a member row.
	Create(ctx context.Context, name string, description *string) (*models.Project, error)

	// GetAll returns projects the caller owns or is a member of.
	GetAll(ctx context.Context) ([]*models.ProjectSummary, error)

	// GetByID returns the project with its owner and members expanded.
	GetByID(ctx context.Context, projectID uuid.UUID) (*models.ProjectDetail, error)

	Update(ctx context.Context, projectID uuid.UUID, name string, description *string) (*models.Project, error)

	// Delete removes the project and everything in it. Owner only.
	Delete(ctx context.Context, projectID uuid.UUID) error

	InviteMember(ctx context.Context, projectID uuid.UUID, email string) (*models.Invitation, error)
	UpdateMemberRole(ctx context.Context, projectID, userID uuid.UUID, role models.MemberRole) error
	RemoveMember(ctx context.Context, projectID, userID uuid.UUID) error
}

type projectService struct {
	repo        repositories.ProjectRepository
	members     repositories.MemberRepository
	users       repositories.UserRepository
	tasks       repositories.TaskRepository
	invitations InvitationService
	access      accessLoader
	runInTx     TxFunc
	logger      *zap.Logger
}

// NewProjectService creates a new ProjectService.
func NewProjectService(
	repo repositories.ProjectRepository,
	members repositories.MemberRepository,
	users repositories.UserRepository,
	tasks repositories.TaskRepository,
	invitations InvitationService,
	runInTx TxFunc,
	logger *zap.Logger,
) ProjectService {
	return &projectService{
		repo:        repo,
		members:     members,
		users:       users,
		tasks:       tasks,
		invitations: invitations,
		access:      accessLoader{projects: repo, members: members},
		runInTx:     runInTx,
		logger:      logger.Named("project-service"),
	}
}

var _ ProjectService = (*projectService)(nil)

func (s *projectService) Create(ctx context.Context, name string, description *string) (*models.Project, error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	name, err = requireLength("Project name", name, projectNameMin, projectNameMax)
	if err != nil {
		return nil, err
	}
	description, err = optionalText("Description", description, descriptionMaxLength)
	if err != nil {
		return nil, err
	}

	project := &models.Project{
		Name:        name,
		Description: description,
		OwnerID:     caller,
	}
	if err := s.repo.Create(ctx, project); err != nil {
		return nil, err
	}

	s.logger.Info("Project created",
		zap.String("project_id", project.ID.String()),
		zap.String("owner_id", caller.String()))
	return project, nil
}

func (s *projectService) GetAll(ctx context.Context) ([]*models.ProjectSummary, error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListForUser(ctx, caller)
}

func (s *projectService) GetByID(ctx context.Context, projectID uuid.UUID) (*models.ProjectDetail, error) {
	access, err := s.access.load(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := access.requireParticipant(); err != nil {
		return nil, err
	}

	owner, err := s.users.GetByID(ctx, access.Project.OwnerID)
	if err != nil {
		return nil, err
	}

	members := access.Members
	if members == nil {
		members = []*models.ProjectMember{}
	}
	return &models.ProjectDetail{
		Project: *access.Project,
		Owner:   owner,
		Members: members,
	}, nil
}

func (s *projectService) Update(ctx context.Context, projectID uuid.UUID, name string, description *string) (*models.Project, error) {
	access, err := s.access.load(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := access.requireParticipant(); err != nil {
		return nil, err
	}
	if !access.Role.CanManage() {
		return nil, apperrors.Forbidden("You don't have permission to update this project")
	}

	name, err = requireLength("Project name", name, projectNameMin, projectNameMax)
	if err != nil {
		return nil, err
	}
	description, err = optionalText("Description", description, descriptionMaxLength)
	if err != nil {
		return nil, err
	}

	project := access.Project
	project.Name = name
	project.Description = description
	if err := s.repo.Update(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *projectService) Delete(ctx context.Context, projectID uuid.UUID) error {
	access, err := s.access.load(ctx, projectID)
	if err != nil {
		return err
	}
	if access.Role != models.ProjectRoleOwner {
		return apperrors.Forbidden("Only the project owner can delete the project")
	}

	if err := s.repo.Delete(ctx, projectID); err != nil {
		return err
	}

	s.logger.Info("Project deleted", zap.String("project_id", projectID.String()))
	return nil
}

func (s *projectService) InviteMember(ctx context.Context, projectID uuid.UUID, email string) (*models.Invitation, error) {
	return s.invitations.Invite(ctx, projectID, email)
}

func (s *projectService) UpdateMemberRole(ctx context.Context, projectID, userID uuid.UUID, role models.MemberRole) error {
	access, err := s.access.load(ctx, projectID)
	if err != nil {
		return err
	}
	if !access.Role.CanManage() {
		return apperrors.Forbidden("You don't have permission to update member roles")
	}
	if !role.IsValid() {
		return apperrors.Validation("Role must be ADMIN or MEMBER")
	}
	if userID == access.Project.OwnerID {
		return apperrors.Validation("The project owner's role cannot be changed")
	}
	if access.member(userID) == nil {
		return apperrors.NotFound(msgMemberNotFound)
	}

	return s.members.UpdateRole(ctx, projectID, userID, role)
}

func (s *projectService) RemoveMember(ctx context.Context, projectID, userID uuid.UUID) error {
	access, err := s.access.load(ctx, projectID)
	if err != nil {
		return err
	}
	if !access.Role.CanManage() {
		return apperrors.Forbidden("You don't have permission to remove members")
	}
	if userID == access.Project.OwnerID {
		return apperrors.Forbidden("Cannot remove the project owner")
	}
	if access.member(userID) == nil {
		return apperrors.NotFound(msgMemberNotFound)
	}

	// A former member may not stay assigned or tagged on the project's tasks.
	var unassigned int64
	err = s.runInTx(ctx, func(ctx context.Context) error {
		if err := s.members.Remove(ctx, projectID, userID); err != nil {
			return err
		}
		n, err := s.tasks.DetachUser(ctx, projectID, userID)
		unassigned = n
		return err
	})
	if err != nil {
		return err
	}

	s.logger.Info("Member removed",
		zap.String("project_id", projectID.String()),
		zap.String("user_id", userID.String()),
		zap.Int64("tasks_unassigned", unassigned))
	return nil
}
