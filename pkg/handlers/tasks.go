package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/worknest/worknest-engine/pkg/audit"
	"github.com/worknest/worknest-engine/pkg/auth"
	"github.com/worknest/worknest-engine/pkg/models"
	"github.com/worknest/worknest-engine/pkg/services"
)

// TaskRequest is the body of task create and update. TaggedUserIDs is only
// read on update: omit it to leave tags alone, send [] to clear them.
type TaskRequest struct {
	Title         string              `json:"title"`
	Description   *string             `json:"description"`
	Priority      models.TaskPriority `json:"priority"`
	Status        models.TaskStatus   `json:"status"`
	Deadline      time.Time           `json:"deadline"`
	AssignedToID  *uuid.UUID          `json:"assigned_to_id"`
	TaggedUserIDs []uuid.UUID         `json:"tagged_user_ids"`
}

func (req TaskRequest) input() services.TaskInput {
	return services.TaskInput{
		Title:        req.Title,
		Description:  req.Description,
		Priority:     req.Priority,
		Status:       req.Status,
		Deadline:     req.Deadline,
		AssignedToID: req.AssignedToID,
	}
}

// UpdateTaskStatusRequest is the body of PATCH /api/tasks/{tid}/status.
type UpdateTaskStatusRequest struct {
	Status models.TaskStatus `json:"status"`
}

// TasksHandler handles task board HTTP requests.
type TasksHandler struct {
	taskService services.TaskService
	responder
}

// NewTasksHandler creates a new tasks handler.
func NewTasksHandler(taskService services.TaskService, auditor *audit.SecurityAuditor, logger *zap.Logger) *TasksHandler {
	return &TasksHandler{
		taskService: taskService,
		responder:   responder{logger: logger, auditor: auditor},
	}
}

// RegisterRoutes registers the tasks handler's routes on the given mux.
func (h *TasksHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware, scope ScopeMiddleware) {
	mux.HandleFunc("GET /api/projects/{pid}/tasks", authMiddleware.RequireAuth(scope(h.List)))
	mux.HandleFunc("POST /api/projects/{pid}/tasks", authMiddleware.RequireAuth(scope(h.Create)))
	mux.HandleFunc("PUT /api/tasks/{tid}", authMiddleware.RequireAuth(scope(h.Update)))
	mux.HandleFunc("PATCH /api/tasks/{tid}/status", authMiddleware.RequireAuth(scope(h.UpdateStatus)))
	mux.HandleFunc("DELETE /api/tasks/{tid}", authMiddleware.RequireAuth(scope(h.Delete)))
	mux.HandleFunc("GET /api/tasks/{tid}/activities", authMiddleware.RequireAuth(scope(h.Activities)))
}

// List handles GET /api/projects/{pid}/tasks
// Plain members only see tasks they created, are assigned to or are tagged on.
func (h *TasksHandler) List(w http.ResponseWriter, r *http.Request) {
	projectID, ok := ParseProjectID(w, r, h.logger)
	if !ok {
		return
	}

	tasks, err := h.taskService.GetByProject(r.Context(), projectID)
	if err != nil {
		h.serviceError(w, r, err, "Failed to list tasks")
		return
	}
	h.ok(w, http.StatusOK, tasks)
}

// Create handles POST /api/projects/{pid}/tasks
func (h *TasksHandler) Create(w http.ResponseWriter, r *http.Request) {
	projectID, ok := ParseProjectID(w, r, h.logger)
	if !ok {
		return
	}

	var req TaskRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	task, err := h.taskService.Create(r.Context(), projectID, req.input())
	if err != nil {
		h.serviceError(w, r, err, "Failed to create task")
		return
	}
	h.ok(w, http.StatusCreated, task)
}

// Update handles PUT /api/tasks/{tid}
func (h *TasksHandler) Update(w http.ResponseWriter, r *http.Request) {
	taskID, ok := ParseTaskID(w, r, h.logger)
	if !ok {
		return
	}

	var req TaskRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	task, err := h.taskService.Update(r.Context(), taskID, services.TaskUpdate{
		TaskInput:     req.input(),
		TaggedUserIDs: req.TaggedUserIDs,
	})
	if err != nil {
		h.serviceError(w, r, err, "Failed to update task")
		return
	}
	h.ok(w, http.StatusOK, task)
}

// UpdateStatus handles PATCH /api/tasks/{tid}/status
func (h *TasksHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	taskID, ok := ParseTaskID(w, r, h.logger)
	if !ok {
		return
	}

	var req UpdateTaskStatusRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	task, err := h.taskService.UpdateStatus(r.Context(), taskID, req.Status)
	if err != nil {
		h.serviceError(w, r, err, "Failed to update task status")
		return
	}
	h.ok(w, http.StatusOK, task)
}

// Delete handles DELETE /api/tasks/{tid}
func (h *TasksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	taskID, ok := ParseTaskID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.taskService.Delete(r.Context(), taskID); err != nil {
		h.serviceError(w, r, err, "Failed to delete task")
		return
	}
	h.ok(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Activities handles GET /api/tasks/{tid}/activities
func (h *TasksHandler) Activities(w http.ResponseWriter, r *http.Request) {
	taskID, ok := ParseTaskID(w, r, h.logger)
	if !ok {
		return
	}

	activities, err := h.taskService.GetTaskActivities(r.Context(), taskID)
	if err != nil {
		h.serviceError(w, r, err, "Failed to get task activities")
		return
	}
	h.ok(w, http.StatusOK, activities)
}
