package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Common authentication errors.
var (
	ErrMissingAuthorization = errors.New("missing authorization")
	ErrInvalidAuthFormat    = errors.New("invalid authorization header format")
)

// AuthService defines the interface for authentication operations.
type AuthService interface {
	// ValidateRequest extracts and validates a JWT from the request.
	// It checks for the token in:
	//   1. The signed session cookie (browser clients)
	//   2. Authorization header with "Bearer" scheme (API clients)
	// Returns the validated claims, the raw token string, or an error.
	ValidateRequest(r *http.Request) (*Claims, string, error)

	// ValidateToken validates a raw token, e.g. one presented at login.
	ValidateToken(ctx context.Context, token string) (*Claims, error)
}

type authService struct {
	validator TokenValidator
	sessions  *SessionStore
	logger    *zap.Logger
}

// NewAuthService creates a new AuthService. sessions may be nil, in which
// case only the Authorization header is consulted.
func NewAuthService(validator TokenValidator, sessions *SessionStore, logger *zap.Logger) AuthService {
	return &authService{
		validator: validator,
		sessions:  sessions,
		logger:    logger,
	}
}

func (s *authService) ValidateRequest(r *http.Request) (*Claims, string, error) {
	tokenString, tokenSource, err := s.extractToken(r)
	if err != nil {
		return nil, "", err
	}

	claims, err := s.validator.ValidateToken(r.Context(), tokenString)
	if err != nil {
		s.logger.Debug("JWT validation failed",
			zap.Error(err),
			zap.String("path", r.URL.Path),
			zap.String("token_source", tokenSource))
		return nil, "", err
	}

	return claims, tokenString, nil
}

func (s *authService) extractToken(r *http.Request) (string, string, error) {
	if s.sessions != nil {
		if token, ok := s.sessions.Token(r); ok {
			return token, "session", nil
		}
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		s.logger.Debug("No JWT found in request",
			zap.String("path", r.URL.Path),
			zap.String("method", r.Method))
		return "", "", ErrMissingAuthorization
	}

	scheme, token, found := strings.Cut(authHeader, " ")
	if !found || scheme != "Bearer" || token == "" || strings.Contains(token, " ") {
		s.logger.Debug("Invalid Authorization header format",
			zap.String("path", r.URL.Path))
		return "", "", ErrInvalidAuthFormat
	}
	return token, "header", nil
}

func (s *authService) ValidateToken(ctx context.Context, token string) (*Claims, error) {
	return s.validator.ValidateToken(ctx, token)
}

var _ AuthService = (*authService)(nil)
