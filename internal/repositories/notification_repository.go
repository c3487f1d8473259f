package repositories

import (
	"context"
	"fmt"
	"greenquest/internal/database"
	"greenquest/internal/models"
	"time"

	"go.uber.org/zap"
)

type notificationRepository struct {
	*BaseRepository
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *database.Manager, logger *zap.Logger) NotificationRepository {
	return &notificationRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// Create inserts an inbox entry
func (r *notificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	query := `
		INSERT INTO notifications (user_id, type, message, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	notification.CreatedAt = time.Now()

	err := r.QueryRowContext(ctx, query,
		notification.UserID,
		notification.Type,
		notification.Message,
		notification.IsRead,
		notification.CreatedAt,
	).Scan(&notification.ID)

	if err != nil {
		r.GetLogger().Error("Failed to create notification",
			zap.Error(err),
			zap.Int64("user_id", notification.UserID),
			zap.String("type", notification.Type),
		)
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

// GetByID retrieves a notification by ID
func (r *notificationRepository) GetByID(ctx context.Context, id int64) (*models.Notification, error) {
	query := `
		SELECT id, user_id, type, message, is_read, created_at, read_at
		FROM notifications
		WHERE id = $1`

	notification := &models.Notification{}
	err := r.QueryRowContext(ctx, query, id).Scan(
		&notification.ID,
		&notification.UserID,
		&notification.Type,
		&notification.Message,
		&notification.IsRead,
		&notification.CreatedAt,
		&notification.ReadAt,
	)

	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		r.GetLogger().Error("Failed to get notification", zap.Error(err), zap.Int64("notification_id", id))
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}

	return notification, nil
}

// GetByUserID retrieves a user's notifications with pagination
func (r *notificationRepository) GetByUserID(ctx context.Context, userID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Notification], error) {
	params = r.NormalizePagination(params)

	countQuery := `SELECT COUNT(*) FROM notifications WHERE user_id = $1`
	total, err := r.GetTotalCount(ctx, countQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count notifications: %w", err)
	}

	query := `
		SELECT id, user_id, type, message, is_read, created_at, read_at
		FROM notifications
		WHERE user_id = $1`
	clause, pageArgs := r.OrderLimitOffset(params, 2)
	query += clause
	args := append([]interface{}{userID}, pageArgs...)

	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*models.Notification
	for rows.Next() {
		notification := &models.Notification{}
		err := rows.Scan(
			&notification.ID,
			&notification.UserID,
			&notification.Type,
			&notification.Message,
			&notification.IsRead,
			&notification.CreatedAt,
			&notification.ReadAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, notification)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notifications: %w", err)
	}

	return &models.PaginatedResponse[*models.Notification]{
		Data:       notifications,
		Pagination: r.BuildPaginationMeta(params, total),
	}, nil
}

// MarkAsRead marks a single notification as read
func (r *notificationRepository) MarkAsRead(ctx context.Context, id int64) error {
	query := `
		UPDATE notifications
		SET is_read = true, read_at = $2
		WHERE id = $1 AND is_read = false`

	_, err := r.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		r.GetLogger().Error("Failed to mark notification read", zap.Error(err), zap.Int64("notification_id", id))
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

// MarkAllAsRead marks every unread notification for a user as read and
// returns how many rows changed.
func (r *notificationRepository) MarkAllAsRead(ctx context.Context, userID int64) (int, error) {
	query := `
		UPDATE notifications
		SET is_read = true, read_at = $2
		WHERE user_id = $1 AND is_read = false`

	result, err := r.ExecContext(ctx, query, userID, time.Now())
	if err != nil {
		r.GetLogger().Error("Failed to mark all notifications read", zap.Error(err), zap.Int64("user_id", userID))
		return 0, fmt.Errorf("failed to mark all notifications read: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(rowsAffected), nil
}

// CountUnread counts a user's unread notifications
func (r *notificationRepository) CountUnread(ctx context.Context, userID int64) (int, error) {
	query := `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = false`

	var count int
	err := r.QueryRowContext(ctx, query, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}
