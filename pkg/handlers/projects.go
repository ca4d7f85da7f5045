package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/worknest/worknest-engine/pkg/audit"
	"github.com/worknest/worknest-engine/pkg/auth"
	"github.com/worknest/worknest-engine/pkg/models"
	"github.com/worknest/worknest-engine/pkg/services"
)

// ScopeMiddleware wraps an authenticated handler with the per-request
// database scope and user provisioning.
type ScopeMiddleware func(http.HandlerFunc) http.HandlerFunc

// ProjectRequest is the body of POST /api/projects and PUT /api/projects/{pid}.
type ProjectRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// InviteMemberRequest is the body of POST /api/projects/{pid}/invitations.
type InviteMemberRequest struct {
	Email string `json:"email"`
}

// UpdateMemberRoleRequest is the body of PUT /api/projects/{pid}/members/{uid}.
type UpdateMemberRoleRequest struct {
	Role models.MemberRole `json:"role"`
}

// ProjectsHandler handles project and membership HTTP requests.
type ProjectsHandler struct {
	projectService  services.ProjectService
	activityService services.ActivityService
	responder
}

// NewProjectsHandler creates a new projects handler.
func NewProjectsHandler(
	projectService services.ProjectService,
	activityService services.ActivityService,
	auditor *audit.SecurityAuditor,
	logger *zap.Logger,
) *ProjectsHandler {
	return &ProjectsHandler{
		projectService:  projectService,
		activityService: activityService,
		responder:       responder{logger: logger, auditor: auditor},
	}
}

// RegisterRoutes registers the projects handler's routes on the given mux.
func (h *ProjectsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware, scope ScopeMiddleware) {
	mux.HandleFunc("GET /api/projects", authMiddleware.RequireAuth(scope(h.List)))
	mux.HandleFunc("POST /api/projects", authMiddleware.RequireAuth(scope(h.Create)))
	mux.HandleFunc("GET /api/projects/{pid}", authMiddleware.RequireAuth(scope(h.Get)))
	mux.HandleFunc("PUT /api/projects/{pid}", authMiddleware.RequireAuth(scope(h.Update)))
	mux.HandleFunc("DELETE /api/projects/{pid}", authMiddleware.RequireAuth(scope(h.Delete)))
	mux.HandleFunc("POST /api/projects/{pid}/invitations", authMiddleware.RequireAuth(scope(h.InviteMember)))
	mux.HandleFunc("PUT /api/projects/{pid}/members/{uid}", authMiddleware.RequireAuth(scope(h.UpdateMemberRole)))
	mux.HandleFunc("DELETE /api/projects/{pid}/members/{uid}", authMiddleware.RequireAuth(scope(h.RemoveMember)))
	mux.HandleFunc("GET /api/projects/{pid}/activities", authMiddleware.RequireAuth(scope(h.Activities)))
}

// List handles GET /api/projects
// Returns projects the caller owns or belongs to.
func (h *ProjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projectService.GetAll(r.Context())
	if err != nil {
		h.serviceError(w, r, err, "Failed to list projects")
		return
	}
	h.ok(w, http.StatusOK, projects)
}

// Create handles POST /api/projects
func (h *ProjectsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ProjectRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	project, err := h.projectService.Create(r.Context(), req.Name, req.Description)
	if err != nil {
		h.serviceError(w, r, err, "Failed to create project")
		return
	}
	h.ok(w, http.StatusCreated, project)
}

// Get handles GET /api/projects/{pid}
// Returns the project with owner and members.
func (h *ProjectsHandler) Get(w http.ResponseWriter, r *http.Request) {
	projectID, ok := ParseProjectID(w, r, h.logger)
	if !ok {
		return
	}

	project, err := h.projectService.GetByID(r.Context(), projectID)
	if err != nil {
		h.serviceError(w, r, err, "Failed to get project")
		return
	}
	h.ok(w, http.StatusOK, project)
}

// Update handles PUT /api/projects/{pid}
func (h *ProjectsHandler) Update(w http.ResponseWriter, r *http.Request) {
	projectID, ok := ParseProjectID(w, r, h.logger)
	if !ok {
		return
	}

	var req ProjectRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	project, err := h.projectService.Update(r.Context(), projectID, req.Name, req.Description)
	if err != nil {
		h.serviceError(w, r, err, "Failed to update project")
		return
	}
	h.ok(w, http.StatusOK, project)
}

// Delete handles DELETE /api/projects/{pid}
func (h *ProjectsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	projectID, ok := ParseProjectID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.projectService.Delete(r.Context(), projectID); err != nil {
		h.serviceError(w, r, err, "Failed to delete project")
		return
	}
	h.ok(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// InviteMember handles POST /api/projects/{pid}/invitations
func (h *ProjectsHandler) InviteMember(w http.ResponseWriter, r *http.Request) {
	projectID, ok := ParseProjectID(w, r, h.logger)
	if !ok {
		return
	}

	var req InviteMemberRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	invitation, err := h.projectService.InviteMember(r.Context(), projectID, req.Email)
	if err != nil {
		h.serviceError(w, r, err, "Failed to invite member")
		return
	}
	h.ok(w, http.StatusCreated, invitation)
}

// UpdateMemberRole handles PUT /api/projects/{pid}/members/{uid}
func (h *ProjectsHandler) UpdateMemberRole(w http.ResponseWriter, r *http.Request) {
	projectID, userID, ok := ParseProjectAndUserIDs(w, r, h.logger)
	if !ok {
		return
	}

	var req UpdateMemberRoleRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	if err := h.projectService.UpdateMemberRole(r.Context(), projectID, userID, req.Role); err != nil {
		h.serviceError(w, r, err, "Failed to update member role")
		return
	}
	h.ok(w, http.StatusOK, map[string]string{"status": "updated"})
}

// RemoveMember handles DELETE /api/projects/{pid}/members/{uid}
func (h *ProjectsHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	projectID, userID, ok := ParseProjectAndUserIDs(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.projectService.RemoveMember(r.Context(), projectID, userID); err != nil {
		h.serviceError(w, r, err, "Failed to remove member")
		return
	}
	h.ok(w, http.StatusOK, map[string]string{"status": "removed"})
}

// Activities handles GET /api/projects/{pid}/activities?limit=N
// Returns the project feed, newest first.
func (h *ProjectsHandler) Activities(w http.ResponseWriter, r *http.Request) {
	projectID, ok := ParseProjectID(w, r, h.logger)
	if !ok {
		return
	}

	limit := services.DefaultActivityFeedLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.fail(w, http.StatusBadRequest, "bad_request", "limit must be a positive integer")
			return
		}
		limit = n
	}

	activities, err := h.activityService.GetByProject(r.Context(), projectID, limit)
	if err != nil {
		h.serviceError(w, r, err, "Failed to get activities")
		return
	}
	h.ok(w, http.StatusOK, activities)
}
