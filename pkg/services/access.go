package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/worknest/worknest-engine/pkg/apperrors"
	"github.com/worknest/worknest-engine/pkg/models"
	"github.com/worknest/worknest-engine/pkg/repositories"
)

// ResolveRole computes userID's role on project. The owner check runs
// first, so a user is never both OWNER and ADMIN/MEMBER.
func ResolveRole(project *models.Project, members []*models.ProjectMember, userID uuid.UUID) models.ProjectRole {
	if project == nil {
		return models.ProjectRoleNone
	}
	if project.OwnerID == userID {
		return models.ProjectRoleOwner
	}
	for _, m := range members {
		if m.UserID != userID {
			continue
		}
		switch m.Role {
		case models.MemberRoleAdmin:
			return models.ProjectRoleAdmin
		case models.MemberRoleMember:
			return models.ProjectRoleMember
		}
	}
	return models.ProjectRoleNone
}

// IsAssignable reports whether userID is the owner or a current member,
// i.e. may be assigned to or tagged on the project's tasks.
func IsAssignable(project *models.Project, members []*models.ProjectMember, userID uuid.UUID) bool {
	return ResolveRole(project, members, userID).IsParticipant()
}

// projectAccess is a project with its members and the caller's role on it.
type projectAccess struct {
	Project *models.Project
	Members []*models.ProjectMember
	Caller  uuid.UUID
	Role    models.ProjectRole
}

// requireParticipant rejects callers with no role on the project.
func (a *projectAccess) requireParticipant() error {
	if !a.Role.IsParticipant() {
		return apperrors.Forbidden("You don't have access to this project")
	}
	return nil
}

// member returns the member row for userID, or nil.
func (a *projectAccess) member(userID uuid.UUID) *models.ProjectMember {
	for _, m := range a.Members {
		if m.UserID == userID {
			return m
		}
	}
	return nil
}

// accessLoader fetches what ResolveRole needs for a project.
type accessLoader struct {
	projects repositories.ProjectRepository
	members  repositories.MemberRepository
}

func (l accessLoader) load(ctx context.Context, projectID uuid.UUID) (*projectAccess, error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	project, err := l.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	members, err := l.members.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	return &projectAccess{
		Project: project,
		Members: members,
		Caller:  caller,
		Role:    ResolveRole(project, members, caller),
	}, nil
}
