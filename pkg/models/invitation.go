package models

import (
	"time"

	"github.com/google/uuid"
)

// InvitationStatus is the lifecycle state of an invitation.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "PENDING"
	InvitationAccepted InvitationStatus = "ACCEPTED"
	InvitationRevoked  InvitationStatus = "REVOKED"
)

// IsTerminal reports whether no further transition is allowed from s.
func (s InvitationStatus) IsTerminal() bool {
	return s == InvitationAccepted || s == InvitationRevoked
}

// Invitation is an offer of project membership keyed by (project, email).
type Invitation struct {
	ID        uuid.UUID        `json:"id"`
	ProjectID uuid.UUID        `json:"project_id"`
	Email     string           `json:"email"`
	Status    InvitationStatus `json:"status"`
	InviterID uuid.UUID        `json:"inviter_id"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`

	Project *Project `json:"project,omitempty"`
	Inviter *User    `json:"inviter,omitempty"`
}
