package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/worknest/worknest-engine/pkg/apperrors"
	"github.com/worknest/worknest-engine/pkg/audit"
	"github.com/worknest/worknest-engine/pkg/logging"
	"github.com/worknest/worknest-engine/pkg/middleware"
)

// ApiResponse wraps successful responses.
type ApiResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse writes a JSON error response and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(map[string]string{
		"error":   errorCode,
		"message": message,
	})
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// errorStatus maps a service error kind to its HTTP status and error code.
// Conflicts surface as bad requests; the caller can fix them by changing
// the input.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrConflict):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// responder writes service results for one handler. auditor may be nil.
type responder struct {
	logger  *zap.Logger
	auditor *audit.SecurityAuditor
}

// ok writes data wrapped in a successful ApiResponse.
func (rs responder) ok(w http.ResponseWriter, status int, data any) {
	if err := WriteJSON(w, status, ApiResponse{Success: true, Data: data}); err != nil {
		rs.logger.Error("Failed to write response", zap.Error(err))
	}
}

// fail writes a JSON error body without consulting the service error kinds.
func (rs responder) fail(w http.ResponseWriter, status int, code, message string) {
	if err := ErrorResponse(w, status, code, message); err != nil {
		rs.logger.Error("Failed to write error response", zap.Error(err))
	}
}

// WriteServiceError maps err to a JSON error response. Unknown errors are
// logged and hidden behind fallback; refusals go to the security audit log
// when auditor is non-nil.
func WriteServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string, logger *zap.Logger, auditor *audit.SecurityAuditor) {
	status, code := errorStatus(err)
	message := apperrors.Message(err, fallback)

	switch status {
	case http.StatusInternalServerError:
		logger.Error(fallback,
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.RequestIDFromContext(r.Context())),
			zap.String("error", logging.SanitizeError(err)))
		message = fallback
	case http.StatusForbidden:
		if auditor != nil {
			auditor.LogAccessDenied(r.Context(), audit.AccessDeniedDetails{
				Method: r.Method,
				Path:   r.URL.Path,
				Reason: message,
			}, r.RemoteAddr)
		}
	}

	if err := ErrorResponse(w, status, code, message); err != nil {
		logger.Error("Failed to write error response", zap.Error(err))
	}
}

func (rs responder) serviceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	WriteServiceError(w, r, err, fallback, rs.logger, rs.auditor)
}

// decodeBody decodes a JSON request body into v, writing a 400 on failure.
func (rs responder) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		rs.fail(w, http.StatusBadRequest, "bad_request", "Invalid request body")
		return false
	}
	return true
}
