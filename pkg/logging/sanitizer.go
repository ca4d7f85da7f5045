// Package logging builds the process logger and scrubs credentials and
// personal data before they reach it.
package logging

import (
	"regexp"
	"strings"
)

// RedactedText is the replacement text for sensitive data.
const RedactedText = "[REDACTED]"

var (
	// password=xxx, pwd=xxx, pass=xxx up to the next delimiter
	passwordPattern = regexp.MustCompile(`(?i)(password|pwd|pass)=[^;&\s]+`)

	// three base64url segments, with or without a Bearer prefix
	jwtPattern = regexp.MustCompile(`(Bearer\s+)?eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]+\.[A-Za-z0-9_-]*`)

	// user:pass@host in URLs
	connStringPattern = regexp.MustCompile(`://[^:/\s]+:[^@\s]+@`)
)

// SanitizeConnectionString removes credentials from a PostgreSQL or Redis
// connection string. The host and database stay visible.
func SanitizeConnectionString(connStr string) string {
	if connStr == "" {
		return ""
	}
	sanitized := passwordPattern.ReplaceAllString(connStr, "${1}="+RedactedText)
	return connStringPattern.ReplaceAllString(sanitized, "://"+RedactedText+"@")
}

// SanitizeToken removes JWTs, including bearer headers, from s.
func SanitizeToken(s string) string {
	return jwtPattern.ReplaceAllString(s, RedactedText)
}

// SanitizeError renders err with credentials and tokens removed.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return SanitizeToken(SanitizeConnectionString(err.Error()))
}

// MaskEmail keeps the first character of the local part and the domain:
// "olivia@example.com" becomes "o***@example.com".
func MaskEmail(email string) string {
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" {
		return RedactedText
	}
	return local[:1] + "***@" + domain
}
