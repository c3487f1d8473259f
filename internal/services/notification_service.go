package services

import (
	"context"
	"greenquest/internal/models"
	"greenquest/internal/repositories"
	"greenquest/internal/validation"

	"go.uber.org/zap"
)

// notificationService implements NotificationService as a persisted
// inbox. An insert is the whole delivery; there is no push channel.
type notificationService struct {
	notificationRepo repositories.NotificationRepository
	logger           *zap.Logger
}

// NewNotificationService creates a new notification service
func NewNotificationService(
	notificationRepo repositories.NotificationRepository,
	logger *zap.Logger,
) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

// CreateNotification inserts an inbox entry
func (s *notificationService) CreateNotification(ctx context.Context, req *CreateNotificationRequest) error {
	if err := validation.ValidateStruct(req); err != nil {
		return NewValidationError("invalid notification request", err)
	}
	if !models.ValidateNotificationType(req.Type) {
		return NewValidationError("unknown notification type", nil)
	}

	notification := &models.Notification{
		UserID:  req.UserID,
		Type:    req.Type,
		Message: req.Message,
	}

	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		s.logger.Error("Failed to create notification",
			zap.Error(err),
			zap.Int64("user_id", req.UserID),
			zap.String("type", req.Type),
		)
		return NewInternalError("failed to create notification")
	}

	return nil
}

// GetUserNotifications lists a user's inbox
func (s *notificationService) GetUserNotifications(ctx context.Context, req *GetNotificationsRequest) (*models.PaginatedResponse[*models.Notification], error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid notifications request", err)
	}

	result, err := s.notificationRepo.GetByUserID(ctx, req.UserID, req.Pagination)
	if err != nil {
		return nil, NewInternalError("failed to list notifications")
	}

	if req.UnreadOnly {
		unread := make([]*models.Notification, 0, len(result.Data))
		for _, n := range result.Data {
			if n.IsUnread() {
				unread = append(unread, n)
			}
		}
		result.Data = unread
	}

	return result, nil
}

// MarkAsRead marks a single notification as read. Only the owner can
// mark their notifications.
func (s *notificationService) MarkAsRead(ctx context.Context, notificationID, userID int64) error {
	if notificationID <= 0 || userID <= 0 {
		return NewValidationError("invalid notification or user ID", nil)
	}

	notification, err := s.notificationRepo.GetByID(ctx, notificationID)
	if err != nil {
		return NewInternalError("failed to load notification")
	}
	if notification == nil {
		return NewNotFoundError("notification not found")
	}
	if notification.UserID != userID {
		return NewForbiddenError("cannot mark another user's notification")
	}

	if err := s.notificationRepo.MarkAsRead(ctx, notificationID); err != nil {
		return NewInternalError("failed to mark notification read")
	}

	return nil
}

// MarkAllAsRead marks every unread notification for a user
func (s *notificationService) MarkAllAsRead(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return NewValidationError("invalid user ID", nil)
	}

	marked, err := s.notificationRepo.MarkAllAsRead(ctx, userID)
	if err != nil {
		return NewInternalError("failed to mark notifications read")
	}

	s.logger.Debug("Marked notifications read",
		zap.Int64("user_id", userID),
		zap.Int("count", marked),
	)

	return nil
}

// GetUnreadCount counts a user's unread notifications
func (s *notificationService) GetUnreadCount(ctx context.Context, userID int64) (int, error) {
	if userID <= 0 {
		return 0, NewValidationError("invalid user ID", nil)
	}

	count, err := s.notificationRepo.CountUnread(ctx, userID)
	if err != nil {
		return 0, NewInternalError("failed to count unread notifications")
	}
	return count, nil
}
