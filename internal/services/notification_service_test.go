package services

import (
	"context"
	"greenquest/internal/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCreateNotification(t *testing.T) {
	ctx := context.Background()

	t.Run("known type is inserted unread", func(t *testing.T) {
		var stored *models.Notification
		repo := &fakeNotificationRepo{
			create: func(ctx context.Context, notification *models.Notification) error {
				stored = notification
				return nil
			},
		}
		svc := NewNotificationService(repo, zap.NewNop())

		err := svc.CreateNotification(ctx, &CreateNotificationRequest{
			UserID:  7,
			Type:    models.NotificationBadge,
			Message: "You earned a new badge: First Steps!",
		})
		require.NoError(t, err)
		assert.False(t, stored.IsRead)
		assert.Equal(t, models.NotificationBadge, stored.Type)
	})

	t.Run("unknown type is rejected", func(t *testing.T) {
		svc := NewNotificationService(&fakeNotificationRepo{}, zap.NewNop())

		err := svc.CreateNotification(ctx, &CreateNotificationRequest{
			UserID:  7,
			Type:    "carrier_pigeon",
			Message: "hello",
		})
		assert.True(t, IsValidationError(err))
	})
}

func TestMarkAsRead(t *testing.T) {
	ctx := context.Background()

	t.Run("owner marks their notification", func(t *testing.T) {
		var marked int64
		repo := &fakeNotificationRepo{
			getByID: func(ctx context.Context, id int64) (*models.Notification, error) {
				return &models.Notification{ID: id, UserID: 7}, nil
			},
			markAsRead: func(ctx context.Context, id int64) error {
				marked = id
				return nil
			},
		}
		svc := NewNotificationService(repo, zap.NewNop())

		require.NoError(t, svc.MarkAsRead(ctx, 12, 7))
		assert.Equal(t, int64(12), marked)
	})

	t.Run("another user's notification is off limits", func(t *testing.T) {
		repo := &fakeNotificationRepo{
			getByID: func(ctx context.Context, id int64) (*models.Notification, error) {
				return &models.Notification{ID: id, UserID: 7}, nil
			},
		}
		svc := NewNotificationService(repo, zap.NewNop())

		err := svc.MarkAsRead(ctx, 12, 99)
		assert.True(t, IsErrorType(err, "FORBIDDEN"))
	})

	t.Run("missing notification", func(t *testing.T) {
		svc := NewNotificationService(&fakeNotificationRepo{}, zap.NewNop())

		err := svc.MarkAsRead(ctx, 12, 7)
		assert.True(t, IsNotFoundError(err))
	})
}

func TestGetUserNotifications(t *testing.T) {
	ctx := context.Background()

	t.Run("unread filter drops read entries", func(t *testing.T) {
		repo := &fakeNotificationRepo{}
		svc := NewNotificationService(repo, zap.NewNop())

		// The fake's list returns an empty page; the filter must still
		// leave a non-nil slice behind.
		result, err := svc.GetUserNotifications(ctx, &GetNotificationsRequest{
			UserID:     7,
			UnreadOnly: true,
		})
		require.NoError(t, err)
		assert.NotNil(t, result.Data)
		assert.Empty(t, result.Data)
	})
}
