package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an authenticated person. Identity comes from the auth server's
// JWT subject; the row is provisioned on first authenticated request.
type User struct {
	ID          uuid.UUID       `json:"id"`
	Email       string          `json:"email"`
	Name        string          `json:"name"`
	Image       string          `json:"image,omitempty"`
	Preferences UserPreferences `json:"-"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// DisplayName returns the user's name, falling back to the email address.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// UserPreferences is the per-user settings record.
// Stored as JSONB in users.preferences.
type UserPreferences struct {
	DarkMode bool `json:"darkMode"`
}
