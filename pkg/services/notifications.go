package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/worknest/worknest-engine/pkg/apperrors"
	"github.com/worknest/worknest-engine/pkg/models"
	"github.com/worknest/worknest-engine/pkg/repositories"
)

// NotificationService manages the caller's notifications. Notifications are
// created by other services and never deleted.
type NotificationService interface {
	// Notify appends a notification for notification.UserID.
	Notify(ctx context.Context, notification *models.Notification) error

	GetMyNotifications(ctx context.Context) ([]*models.Notification, error)
	GetUnreadCount(ctx context.Context) (int, error)
	MarkAsRead(ctx context.Context, notificationID uuid.UUID) error

	// MarkAllAsRead returns the number of notifications that were unread.
	MarkAllAsRead(ctx context.Context) (int64, error)

	// InvalidateUnread drops cached unread counts. Call after the
	// transaction that created notifications has committed.
	InvalidateUnread(ctx context.Context, userIDs ...uuid.UUID)
}

type notificationService struct {
	repo   repositories.NotificationRepository
	cache  UnreadCache
	logger *zap.Logger
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(repo repositories.NotificationRepository, cache UnreadCache, logger *zap.Logger) NotificationService {
	if cache == nil {
		cache = noopUnreadCache{}
	}
	return &notificationService{
		repo:   repo,
		cache:  cache,
		logger: logger.Named("notification-service"),
	}
}

var _ NotificationService = (*notificationService)(nil)

func (s *notificationService) Notify(ctx context.Context, notification *models.Notification) error {
	notification.IsRead = false
	if err := s.repo.Create(ctx, notification); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, notification.UserID)
	return nil
}

func (s *notificationService) GetMyNotifications(ctx context.Context) ([]*models.Notification, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByUser(ctx, userID)
}

func (s *notificationService) GetUnreadCount(ctx context.Context) (int, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return 0, err
	}

	cached, version, ok := s.cache.Get(ctx, userID)
	if ok {
		return cached, nil
	}

	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, err
	}
	s.cache.Set(ctx, userID, count, version)
	return count, nil
}

func (s *notificationService) MarkAsRead(ctx context.Context, notificationID uuid.UUID) error {
	userID, err := callerID(ctx)
	if err != nil {
		return err
	}

	notification, err := s.repo.GetByID(ctx, notificationID)
	if err != nil {
		return err
	}
	if notification.UserID != userID {
		return apperrors.Forbidden("You don't have permission to mark this notification as read")
	}

	if err := s.repo.MarkRead(ctx, notificationID); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, userID)
	return nil
}

func (s *notificationService) MarkAllAsRead(ctx context.Context) (int64, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return 0, err
	}

	count, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, err
	}
	s.cache.Invalidate(ctx, userID)

	s.logger.Debug("Marked notifications read",
		zap.String("user_id", userID.String()),
		zap.Int64("count", count))
	return count, nil
}

func (s *notificationService) InvalidateUnread(ctx context.Context, userIDs ...uuid.UUID) {
	s.cache.Invalidate(ctx, userIDs...)
}
