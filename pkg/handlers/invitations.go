package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/worknest/worknest-engine/pkg/audit"
	"github.com/worknest/worknest-engine/pkg/auth"
	"github.com/worknest/worknest-engine/pkg/services"
)

// InvitationsHandler serves the invitee's side of invitations. Sending an
// invitation lives under the project routes.
type InvitationsHandler struct {
	invitationService services.InvitationService
	responder
}

// NewInvitationsHandler creates a new invitations handler.
func NewInvitationsHandler(invitationService services.InvitationService, auditor *audit.SecurityAuditor, logger *zap.Logger) *InvitationsHandler {
	return &InvitationsHandler{
		invitationService: invitationService,
		responder:         responder{logger: logger, auditor: auditor},
	}
}

// RegisterRoutes registers the invitations handler's routes on the given mux.
func (h *InvitationsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware, scope ScopeMiddleware) {
	mux.HandleFunc("GET /api/invitations", authMiddleware.RequireAuth(scope(h.ListPending)))
	mux.HandleFunc("POST /api/invitations/{iid}/accept", authMiddleware.RequireAuth(scope(h.Accept)))
	mux.HandleFunc("POST /api/invitations/{iid}/decline", authMiddleware.RequireAuth(scope(h.Decline)))
}

// ListPending handles GET /api/invitations
func (h *InvitationsHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	invitations, err := h.invitationService.GetPending(r.Context())
	if err != nil {
		h.serviceError(w, r, err, "Failed to list invitations")
		return
	}
	h.ok(w, http.StatusOK, invitations)
}

// Accept handles POST /api/invitations/{iid}/accept
func (h *InvitationsHandler) Accept(w http.ResponseWriter, r *http.Request) {
	invitationID, ok := ParseInvitationID(w, r, h.logger)
	if !ok {
		return
	}

	invitation, err := h.invitationService.Accept(r.Context(), invitationID)
	if err != nil {
		h.serviceError(w, r, err, "Failed to accept invitation")
		return
	}
	h.ok(w, http.StatusOK, invitation)
}

// Decline handles POST /api/invitations/{iid}/decline
func (h *InvitationsHandler) Decline(w http.ResponseWriter, r *http.Request) {
	invitationID, ok := ParseInvitationID(w, r, h.logger)
	if !ok {
		return
	}

	invitation, err := h.invitationService.Decline(r.Context(), invitationID)
	if err != nil {
		h.serviceError(w, r, err, "Failed to decline invitation")
		return
	}
	h.ok(w, http.StatusOK, invitation)
}
