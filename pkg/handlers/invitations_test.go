package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/worknest/worknest-engine/pkg/apperrors"
	"github.com/worknest/worknest-engine/pkg/models"
)

func TestInvitationsHandler_Accept(t *testing.T) {
	id := uuid.New()
	svc := &mockInvitationService{invitation: &models.Invitation{ID: id, Status: models.InvitationAccepted}}
	h := NewInvitationsHandler(svc, nil, zap.NewNop())

	req := authedRequest(t, http.MethodPost, "/api/invitations/x/accept", nil)
	req.SetPathValue("iid", id.String())
	rec := httptest.NewRecorder()
	h.Accept(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, svc.gotID)

	var got models.Invitation
	decodeData(t, rec, &got)
	assert.Equal(t, models.InvitationAccepted, got.Status)
}

func TestInvitationsHandler_Accept_NotPending(t *testing.T) {
	svc := &mockInvitationService{err: apperrors.Validation("This invitation is no longer pending")}
	h := NewInvitationsHandler(svc, nil, zap.NewNop())

	req := authedRequest(t, http.MethodPost, "/api/invitations/x/accept", nil)
	req.SetPathValue("iid", uuid.NewString())
	rec := httptest.NewRecorder()
	h.Accept(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "This invitation is no longer pending", decodeError(t, rec)["message"])
}

func TestInvitationsHandler_Decline_WrongRecipient(t *testing.T) {
	svc := &mockInvitationService{err: apperrors.Forbidden("This invitation is not for you")}
	h := NewInvitationsHandler(svc, nil, zap.NewNop())

	req := authedRequest(t, http.MethodPost, "/api/invitations/x/decline", nil)
	req.SetPathValue("iid", uuid.NewString())
	rec := httptest.NewRecorder()
	h.Decline(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestInvitationsHandler_ListPending(t *testing.T) {
	svc := &mockInvitationService{invitations: []*models.Invitation{{ID: uuid.New()}}}
	h := NewInvitationsHandler(svc, nil, zap.NewNop())

	rec := httptest.NewRecorder()
	h.ListPending(rec, authedRequest(t, http.MethodGet, "/api/invitations", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var got []*models.Invitation
	decodeData(t, rec, &got)
	assert.Len(t, got, 1)
}
