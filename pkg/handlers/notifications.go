package handlers

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/worknest/worknest-engine/pkg/audit"
	"github.com/worknest/worknest-engine/pkg/auth"
	"github.com/worknest/worknest-engine/pkg/services"
)

// UnreadCountResponse for GET /api/notifications/unread-count
type UnreadCountResponse struct {
	Count int `json:"count"`
}

// MarkAllReadResponse for POST /api/notifications/read-all
type MarkAllReadResponse struct {
	Updated int64  `json:"updated"`
	Message string `json:"message"`
}

// NotificationsHandler handles the caller's notification inbox.
type NotificationsHandler struct {
	notificationService services.NotificationService
	responder
}

// NewNotificationsHandler creates a new notifications handler.
func NewNotificationsHandler(notificationService services.NotificationService, auditor *audit.SecurityAuditor, logger *zap.Logger) *NotificationsHandler {
	return &NotificationsHandler{
		notificationService: notificationService,
		responder:           responder{logger: logger, auditor: auditor},
	}
}

// RegisterRoutes registers the notifications handler's routes on the given mux.
func (h *NotificationsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware, scope ScopeMiddleware) {
	mux.HandleFunc("GET /api/notifications", authMiddleware.RequireAuth(scope(h.List)))
	mux.HandleFunc("GET /api/notifications/unread-count", authMiddleware.RequireAuth(scope(h.UnreadCount)))
	mux.HandleFunc("POST /api/notifications/read-all", authMiddleware.RequireAuth(scope(h.MarkAllAsRead)))
	mux.HandleFunc("POST /api/notifications/{nid}/read", authMiddleware.RequireAuth(scope(h.MarkAsRead)))
}

// List handles GET /api/notifications
func (h *NotificationsHandler) List(w http.ResponseWriter, r *http.Request) {
	notifications, err := h.notificationService.GetMyNotifications(r.Context())
	if err != nil {
		h.serviceError(w, r, err, "Failed to list notifications")
		return
	}
	h.ok(w, http.StatusOK, notifications)
}

// UnreadCount handles GET /api/notifications/unread-count
func (h *NotificationsHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.notificationService.GetUnreadCount(r.Context())
	if err != nil {
		h.serviceError(w, r, err, "Failed to count notifications")
		return
	}
	h.ok(w, http.StatusOK, UnreadCountResponse{Count: count})
}

// MarkAsRead handles POST /api/notifications/{nid}/read
func (h *NotificationsHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	notificationID, ok := ParseNotificationID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.notificationService.MarkAsRead(r.Context(), notificationID); err != nil {
		h.serviceError(w, r, err, "Failed to mark notification as read")
		return
	}
	h.ok(w, http.StatusOK, map[string]string{"status": "read"})
}

// MarkAllAsRead handles POST /api/notifications/read-all
func (h *NotificationsHandler) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	updated, err := h.notificationService.MarkAllAsRead(r.Context())
	if err != nil {
		h.serviceError(w, r, err, "Failed to mark notifications as read")
		return
	}

	noun := "notifications"
	if updated == 1 {
		noun = "notification"
	}
	h.ok(w, http.StatusOK, MarkAllReadResponse{
		Updated: updated,
		Message: fmt.Sprintf("Marked %d %s as read", updated, noun),
	})
}
