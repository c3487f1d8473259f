package notifications

import (
	"net/http"
	"strconv"

	"greenquest/internal/contextutils"
	"greenquest/internal/response"
	"greenquest/internal/services"

	"go.uber.org/zap"
)

// NotificationController handles inbox API endpoints
type NotificationController struct {
	services *services.ServiceCollection
	logger   *zap.Logger
	builder  *response.Builder
}

// NewNotificationController creates a new notification controller
func NewNotificationController(
	sc *services.ServiceCollection,
	logger *zap.Logger,
	builder *response.Builder,
) *NotificationController {
	return &NotificationController{
		services: sc,
		logger:   logger,
		builder:  builder,
	}
}

// List handles GET /api/v1/notifications
func (c *NotificationController) List(w http.ResponseWriter, r *http.Request) {
	req := services.GetNotificationsRequest{
		UserID:     contextutils.GetUserID(r.Context()),
		Pagination: response.ParsePagination(r),
		UnreadOnly: r.URL.Query().Get("unread") == "true",
	}

	page, err := c.services.NotificationService.GetUserNotifications(r.Context(), &req)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WritePaginated(w, r, page.Data, &page.Pagination)
}

// MarkRead handles POST /api/v1/notifications/{id}/read
func (c *NotificationController) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		c.builder.WriteError(w, r, services.NewValidationError("invalid notification ID", err))
		return
	}

	userID := contextutils.GetUserID(r.Context())
	if err := c.services.NotificationService.MarkAsRead(r.Context(), id, userID); err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteNoContent(w, r)
}

// MarkAllRead handles POST /api/v1/notifications/read-all
func (c *NotificationController) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID := contextutils.GetUserID(r.Context())
	if err := c.services.NotificationService.MarkAllAsRead(r.Context(), userID); err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteNoContent(w, r)
}

// UnreadCount handles GET /api/v1/notifications/unread-count
func (c *NotificationController) UnreadCount(w http.ResponseWriter, r *http.Request) {
	userID := contextutils.GetUserID(r.Context())
	count, err := c.services.NotificationService.GetUnreadCount(r.Context(), userID)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, map[string]int{"unread": count})
}
