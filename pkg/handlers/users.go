package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/worknest/worknest-engine/pkg/audit"
	"github.com/worknest/worknest-engine/pkg/auth"
	"github.com/worknest/worknest-engine/pkg/models"
	"github.com/worknest/worknest-engine/pkg/services"
)

// UsersHandler handles the caller's session and preferences.
type UsersHandler struct {
	userService services.UserService
	sessions    *auth.SessionStore
	responder
}

// NewUsersHandler creates a new users handler. sessions may be nil, in which
// case cookie login is disabled and POST /api/session only echoes the user.
func NewUsersHandler(userService services.UserService, sessions *auth.SessionStore, auditor *audit.SecurityAuditor, logger *zap.Logger) *UsersHandler {
	return &UsersHandler{
		userService: userService,
		sessions:    sessions,
		responder:   responder{logger: logger, auditor: auditor},
	}
}

// RegisterRoutes registers the users handler's routes on the given mux.
func (h *UsersHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware, scope ScopeMiddleware) {
	mux.HandleFunc("GET /api/session", authMiddleware.RequireAuth(scope(h.GetSession)))
	mux.HandleFunc("POST /api/session", authMiddleware.RequireAuth(scope(h.Login)))
	mux.HandleFunc("DELETE /api/session", h.Logout)
	mux.HandleFunc("GET /api/user/preferences", authMiddleware.RequireAuth(scope(h.GetPreferences)))
	mux.HandleFunc("PUT /api/user/preferences", authMiddleware.RequireAuth(scope(h.UpdatePreferences)))
}

// Provision makes sure the caller has a user row before next runs. It must
// be wrapped by auth and request-scope middleware.
func (h *UsersHandler) Provision(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.GetClaims(r.Context())
		if !ok {
			h.fail(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
			return
		}

		if _, err := h.userService.EnsureFromClaims(r.Context(), claims); err != nil {
			h.serviceError(w, r, err, "Failed to provision user")
			return
		}
		next(w, r)
	}
}

// GetSession handles GET /api/session
func (h *UsersHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.GetSession(r.Context())
	if err != nil {
		h.serviceError(w, r, err, "Failed to get session")
		return
	}
	h.ok(w, http.StatusOK, user)
}

// Login handles POST /api/session
// Stores the already-validated bearer token in the signed session cookie.
func (h *UsersHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h.sessions != nil {
		token, _ := auth.GetToken(r.Context())
		if err := h.sessions.SaveToken(w, r, token); err != nil {
			h.logger.Error("Failed to save session", zap.Error(err))
			h.fail(w, http.StatusInternalServerError, "internal_error", "Failed to save session")
			return
		}
	}

	user, err := h.userService.GetSession(r.Context())
	if err != nil {
		h.serviceError(w, r, err, "Failed to get session")
		return
	}
	h.ok(w, http.StatusOK, user)
}

// Logout handles DELETE /api/session
func (h *UsersHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if h.sessions != nil {
		if err := h.sessions.Clear(w, r); err != nil {
			h.logger.Error("Failed to clear session", zap.Error(err))
			h.fail(w, http.StatusInternalServerError, "internal_error", "Failed to clear session")
			return
		}
	}
	h.ok(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// GetPreferences handles GET /api/user/preferences
func (h *UsersHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	prefs, err := h.userService.GetPreferences(r.Context())
	if err != nil {
		h.serviceError(w, r, err, "Failed to get preferences")
		return
	}
	h.ok(w, http.StatusOK, prefs)
}

// UpdatePreferences handles PUT /api/user/preferences
// Unknown keys are rejected.
func (h *UsersHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var prefs models.UserPreferences
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&prefs); err != nil {
		h.fail(w, http.StatusBadRequest, "bad_request", "Invalid preferences")
		return
	}

	updated, err := h.userService.UpdatePreferences(r.Context(), prefs)
	if err != nil {
		h.serviceError(w, r, err, "Failed to update preferences")
		return
	}
	h.ok(w, http.StatusOK, updated)
}
