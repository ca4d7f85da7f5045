package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/worknest/worknest-engine/pkg/apperrors"
	"github.com/worknest/worknest-engine/pkg/auth"
	"github.com/worknest/worknest-engine/pkg/logging"
	"github.com/worknest/worknest-engine/pkg/models"
	"github.com/worknest/worknest-engine/pkg/repositories"
)

// UserService provisions users from token claims and manages the caller's
// own record.
type UserService interface {
	// EnsureFromClaims creates or refreshes the user row described by the
	// token. Repeated calls with unchanged claims do not write.
	EnsureFromClaims(ctx context.Context, claims *auth.Claims) (*models.User, error)

	// GetSession returns the caller's user record.
	GetSession(ctx context.Context) (*models.User, error)

	GetPreferences(ctx context.Context) (models.UserPreferences, error)
	UpdatePreferences(ctx context.Context, prefs models.UserPreferences) (models.UserPreferences, error)
}

type userService struct {
	repo   repositories.UserRepository
	logger *zap.Logger
}

// NewUserService creates a new UserService.
func NewUserService(repo repositories.UserRepository, logger *zap.Logger) UserService {
	return &userService{
		repo:   repo,
		logger: logger.Named("user-service"),
	}
}

var _ UserService = (*userService)(nil)

func (s *userService) EnsureFromClaims(ctx context.Context, claims *auth.Claims) (*models.User, error) {
	if claims == nil {
		return nil, apperrors.Unauthorized("Authentication required")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, apperrors.Unauthorized("Invalid token subject")
	}
	email := strings.ToLower(strings.TrimSpace(claims.Email))
	if email == "" {
		return nil, apperrors.Unauthorized("Token has no email claim")
	}

	existing, err := s.repo.GetByID(ctx, userID)
	switch {
	case err == nil:
		if existing.Email == email && existing.Name == claims.Name && existing.Image == claims.Picture {
			return existing, nil
		}
	case !errors.Is(err, apperrors.ErrNotFound):
		return nil, err
	}

	user := &models.User{
		ID:    userID,
		Email: email,
		Name:  claims.Name,
		Image: claims.Picture,
	}
	if err := s.repo.Upsert(ctx, user); err != nil {
		return nil, err
	}

	if existing == nil {
		s.logger.Info("Provisioned user",
			zap.String("user_id", userID.String()),
			zap.String("email", logging.MaskEmail(email)))
	}
	return user, nil
}

func (s *userService) GetSession(ctx context.Context) (*models.User, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, userID)
}

func (s *userService) GetPreferences(ctx context.Context) (models.UserPreferences, error) {
	user, err := s.GetSession(ctx)
	if err != nil {
		return models.UserPreferences{}, err
	}
	return user.Preferences, nil
}

func (s *userService) UpdatePreferences(ctx context.Context, prefs models.UserPreferences) (models.UserPreferences, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return models.UserPreferences{}, err
	}
	if err := s.repo.UpdatePreferences(ctx, userID, prefs); err != nil {
		return models.UserPreferences{}, err
	}
	return prefs, nil
}
