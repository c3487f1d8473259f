package badges

import (
	"encoding/json"
	"net/http"
	"strconv"

	"greenquest/internal/contextutils"
	"greenquest/internal/response"
	"greenquest/internal/services"

	"go.uber.org/zap"
)

// BadgeController handles badge catalog and award API endpoints
type BadgeController struct {
	services *services.ServiceCollection
	logger   *zap.Logger
	builder  *response.Builder
}

// NewBadgeController creates a new badge controller
func NewBadgeController(
	sc *services.ServiceCollection,
	logger *zap.Logger,
	builder *response.Builder,
) *BadgeController {
	return &BadgeController{
		services: sc,
		logger:   logger,
		builder:  builder,
	}
}

// ListBadges handles GET /api/v1/badges. Admins may include inactive
// definitions with ?include_inactive=true.
func (c *BadgeController) ListBadges(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("include_inactive") == "true" &&
		contextutils.GetUserRole(r.Context()) == "admin"

	badges, err := c.services.BadgeService.ListBadges(r.Context(), includeInactive)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, badges)
}

// GetMyBadges handles GET /api/v1/badges/mine
func (c *BadgeController) GetMyBadges(w http.ResponseWriter, r *http.Request) {
	userID := contextutils.GetUserID(r.Context())
	badges, err := c.services.BadgeService.GetUserBadges(r.Context(), userID)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, badges)
}

// CheckBadges handles POST /api/v1/badges/check, re-evaluating the
// logged-in user's progress against all active badges.
func (c *BadgeController) CheckBadges(w http.ResponseWriter, r *http.Request) {
	userID := contextutils.GetUserID(r.Context())
	result, err := c.services.BadgeService.CheckAndAwardBadges(r.Context(), userID)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, result)
}

// CreateBadge handles POST /api/v1/badges (admin only)
func (c *BadgeController) CreateBadge(w http.ResponseWriter, r *http.Request) {
	var req services.CreateBadgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}

	badge, err := c.services.BadgeService.CreateBadge(r.Context(), &req)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteCreated(w, r, badge)
}

// UpdateBadge handles PUT /api/v1/badges/{id} (admin only)
func (c *BadgeController) UpdateBadge(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		c.builder.WriteError(w, r, services.NewValidationError("invalid badge ID", err))
		return
	}

	var req services.UpdateBadgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}
	req.ID = id

	badge, err := c.services.BadgeService.UpdateBadge(r.Context(), &req)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, badge)
}
