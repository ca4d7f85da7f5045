// Package audit provides security audit logging for SIEM consumption.
// Security-relevant events are logged as structured JSON under the
// "security_audit" logger so they can be filtered and alerted on.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/worknest/worknest-engine/pkg/auth"
)

// SecurityEventType categorizes security-relevant events for filtering and alerting.
type SecurityEventType string

const (
	// EventAccessDenied is logged when an authenticated caller is refused an
	// operation on a project, task, invitation or notification.
	EventAccessDenied SecurityEventType = "access_denied"
	// EventAuthenticationFailure is logged when a request carries a token
	// that fails validation.
	EventAuthenticationFailure SecurityEventType = "authentication_failure"
)

// SecurityEvent represents an auditable security event.
type SecurityEvent struct {
	Timestamp time.Time         `json:"timestamp"`
	EventType SecurityEventType `json:"event_type"`
	UserID    string            `json:"user_id,omitempty"`
	ClientIP  string            `json:"client_ip,omitempty"`
	Details   any               `json:"details"`
	Severity  string            `json:"severity"` // info, warning, critical
}

// AccessDeniedDetails describes a refused request.
type AccessDeniedDetails struct {
	Method string `json:"method"`
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// AuthFailureDetails describes a rejected credential.
type AuthFailureDetails struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// SecurityAuditor logs security events for SIEM consumption.
type SecurityAuditor struct {
	logger *zap.Logger
}

// NewSecurityAuditor creates a new security auditor under the
// "security_audit" logger namespace.
func NewSecurityAuditor(logger *zap.Logger) *SecurityAuditor {
	return &SecurityAuditor{logger: logger.Named("security_audit")}
}

// LogAccessDenied records a permission failure at WARN level. The user ID
// is taken from the JWT claims in ctx when present.
func (a *SecurityAuditor) LogAccessDenied(ctx context.Context, details AccessDeniedDetails, clientIP string) {
	userID := auth.GetUserIDFromContext(ctx)
	event := a.event(EventAccessDenied, userID, clientIP, details, "warning")

	a.logger.Warn("Access denied",
		zap.String("event_json", event),
		zap.String("user_id", userID),
		zap.String("method", details.Method),
		zap.String("path", details.Path),
		zap.String("client_ip", clientIP),
		zap.String("severity", "warning"),
	)
}

// LogAuthFailure records a rejected token at INFO level; expired sessions
// are routine and should not page anyone.
func (a *SecurityAuditor) LogAuthFailure(details AuthFailureDetails, clientIP string) {
	event := a.event(EventAuthenticationFailure, "", clientIP, details, "info")

	a.logger.Info("Authentication failed",
		zap.String("event_json", event),
		zap.String("path", details.Path),
		zap.String("reason", details.Reason),
		zap.String("client_ip", clientIP),
		zap.String("severity", "info"),
	)
}

func (a *SecurityAuditor) event(t SecurityEventType, userID, clientIP string, details any, severity string) string {
	// Marshaling known struct types cannot fail.
	data, _ := json.Marshal(SecurityEvent{
		Timestamp: time.Now().UTC(),
		EventType: t,
		UserID:    userID,
		ClientIP:  clientIP,
		Details:   details,
		Severity:  severity,
	})
	return string(data)
}
