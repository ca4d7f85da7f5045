package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ParseProjectID extracts and validates the project ID from the request path.
// Returns the parsed UUID and true on success, or uuid.Nil and false on error
// (after writing an error response).
// Expects path parameter: pid
func ParseProjectID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (uuid.UUID, bool) {
	return parseUUID(w, r, "pid", "Invalid project ID format", logger)
}

// ParseTaskID extracts and validates the task ID from the request path.
// Expects path parameter: tid
func ParseTaskID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (uuid.UUID, bool) {
	return parseUUID(w, r, "tid", "Invalid task ID format", logger)
}

// ParseInvitationID extracts and validates the invitation ID from the request path.
// Expects path parameter: iid
func ParseInvitationID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (uuid.UUID, bool) {
	return parseUUID(w, r, "iid", "Invalid invitation ID format", logger)
}

// ParseNotificationID extracts and validates the notification ID from the request path.
// Expects path parameter: nid
func ParseNotificationID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (uuid.UUID, bool) {
	return parseUUID(w, r, "nid", "Invalid notification ID format", logger)
}

// ParseProjectAndUserIDs extracts and validates both project and member user IDs.
// Expects path parameters: pid, uid
func ParseProjectAndUserIDs(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (uuid.UUID, uuid.UUID, bool) {
	projectID, ok := ParseProjectID(w, r, logger)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}

	userID, ok := parseUUID(w, r, "uid", "Invalid user ID format", logger)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}

	return projectID, userID, true
}

// parseUUID is the internal helper that does the actual parsing work.
func parseUUID(w http.ResponseWriter, r *http.Request, pathParam, errorMessage string, logger *zap.Logger) (uuid.UUID, bool) {
	idStr := r.PathValue(pathParam)
	id, err := uuid.Parse(idStr)
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "bad_request", errorMessage); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
		return uuid.Nil, false
	}
	return id, true
}
