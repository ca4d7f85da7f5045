package auth

import (
	"crypto/sha256"
	"net/http"

	"github.com/gorilla/sessions"
)

// SessionName is the name of the signed session cookie.
const SessionName = "worknest-session"

const (
	sessionKeyToken = "token"
	sessionMaxAge   = 7 * 24 * 60 * 60
)

// SessionStore keeps the caller's bearer token in a signed cookie so browser
// clients do not have to send an Authorization header.
type SessionStore struct {
	store *sessions.CookieStore
}

// NewSessionStore creates a cookie-backed session store.
//
// The secret is SHA-256 hashed to derive the 32-byte signing key, so it must
// be the same across restarts and across every instance behind a load balancer.
func NewSessionStore(secret string, settings CookieSettings) *SessionStore {
	key := sha256.Sum256([]byte(secret))

	store := sessions.NewCookieStore(key[:])
	store.Options = &sessions.Options{
		Path:     "/",
		Domain:   settings.Domain,
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		Secure:   settings.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &SessionStore{store: store}
}

// Token returns the token stored in the request's session cookie.
func (s *SessionStore) Token(r *http.Request) (string, bool) {
	session, err := s.store.Get(r, SessionName)
	if err != nil {
		return "", false
	}
	token, ok := session.Values[sessionKeyToken].(string)
	return token, ok && token != ""
}

// SaveToken stores token in the session cookie.
func (s *SessionStore) SaveToken(w http.ResponseWriter, r *http.Request, token string) error {
	// A cookie signed with a rotated secret fails to decode; Get still
	// returns a fresh session in that case.
	session, _ := s.store.Get(r, SessionName)
	session.Values[sessionKeyToken] = token
	return session.Save(r, w)
}

// Clear expires the session cookie.
func (s *SessionStore) Clear(w http.ResponseWriter, r *http.Request) error {
	session, _ := s.store.Get(r, SessionName)
	delete(session.Values, sessionKeyToken)
	session.Options.MaxAge = -1
	return session.Save(r, w)
}
