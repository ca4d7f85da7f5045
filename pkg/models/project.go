// Package models contains domain types for worknest-engine.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Project is a board of tasks with exactly one owner.
type Project struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	OwnerID     uuid.UUID `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProjectDetail is a project with its owner and members expanded.
type ProjectDetail struct {
	Project
	Owner   *User            `json:"owner"`
	Members []*ProjectMember `json:"members"`
}

// ProjectSummary is a project as listed on the caller's dashboard.
type ProjectSummary struct {
	Project
	Owner       *User `json:"owner"`
	TaskCount   int   `json:"task_count"`
	MemberCount int   `json:"member_count"`
}

// MemberRole is the role stored on a ProjectMember row.
type MemberRole string

// Member role constants. The owner is not a member and has no MemberRole.
const (
	MemberRoleAdmin  MemberRole = "ADMIN"
	MemberRoleMember MemberRole = "MEMBER"
)

// IsValid reports whether r is ADMIN or MEMBER.
func (r MemberRole) IsValid() bool {
	return r == MemberRoleAdmin || r == MemberRoleMember
}

// ProjectMember links a non-owner user to a project.
type ProjectMember struct {
	ProjectID uuid.UUID  `json:"project_id"`
	UserID    uuid.UUID  `json:"user_id"`
	Role      MemberRole `json:"role"`
	JoinedAt  time.Time  `json:"joined_at"`
	User      *User      `json:"user,omitempty"`
}

// ProjectRole is a caller's resolved permission tier on a project.
type ProjectRole string

const (
	ProjectRoleOwner  ProjectRole = "OWNER"
	ProjectRoleAdmin  ProjectRole = "ADMIN"
	ProjectRoleMember ProjectRole = "MEMBER"
	ProjectRoleNone   ProjectRole = "NONE"
)

// IsParticipant reports whether the role grants any access to the project.
func (r ProjectRole) IsParticipant() bool {
	return r == ProjectRoleOwner || r == ProjectRoleAdmin || r == ProjectRoleMember
}

// CanManage reports whether the role may manage members, invitations and
// all tasks of the project.
func (r ProjectRole) CanManage() bool {
	return r == ProjectRoleOwner || r == ProjectRoleAdmin
}
