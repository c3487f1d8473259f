package users

import (
	"encoding/json"
	"net/http"
	"strconv"

	"greenquest/internal/contextutils"
	"greenquest/internal/response"
	"greenquest/internal/services"

	"go.uber.org/zap"
)

// UserController handles user and progress API endpoints
type UserController struct {
	services *services.ServiceCollection
	logger   *zap.Logger
	builder  *response.Builder
}

// NewUserController creates a new user controller
func NewUserController(
	sc *services.ServiceCollection,
	logger *zap.Logger,
	builder *response.Builder,
) *UserController {
	return &UserController{
		services: sc,
		logger:   logger,
		builder:  builder,
	}
}

// ===============================
// PROFILE
// ===============================

// GetProfile handles GET /api/v1/users/profile
func (c *UserController) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := contextutils.GetUserID(r.Context())
	user, err := c.services.UserService.GetUserByID(r.Context(), userID)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, user)
}

// UpdateProfile handles PUT /api/v1/users/profile
func (c *UserController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req services.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}
	req.UserID = contextutils.GetUserID(r.Context())

	user, err := c.services.UserService.UpdateUser(r.Context(), &req)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, user)
}

// DeactivateAccount handles DELETE /api/v1/users/profile
func (c *UserController) DeactivateAccount(w http.ResponseWriter, r *http.Request) {
	userID := contextutils.GetUserID(r.Context())
	if err := c.services.UserService.DeactivateUser(r.Context(), userID, "user requested deactivation"); err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	if err := c.services.AuthService.LogoutAllDevices(r.Context(), userID); err != nil {
		c.logger.Warn("Failed to logout deactivated user", zap.Error(err), zap.Int64("user_id", userID))
	}
	c.builder.WriteNoContent(w, r)
}

// GetUser handles GET /api/v1/users/{id}
func (c *UserController) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	user, err := c.services.UserService.GetUserByID(r.Context(), userID)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, user)
}

// ===============================
// ADMINISTRATION
// ===============================

// ListUsers handles GET /api/v1/users (admin only)
func (c *UserController) ListUsers(w http.ResponseWriter, r *http.Request) {
	req := services.ListUsersRequest{Pagination: response.ParsePagination(r)}
	if role := r.URL.Query().Get("role"); role != "" {
		req.Role = &role
	}

	page, err := c.services.UserService.ListUsers(r.Context(), &req)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WritePaginated(w, r, page.Data, &page.Pagination)
}

// UpdateRole handles PUT /api/v1/users/{id}/role (admin only)
func (c *UserController) UpdateRole(w http.ResponseWriter, r *http.Request) {
	targetID, err := pathID(r, "id")
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	var body struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}

	user, err := c.services.UserService.UpdateUserRole(r.Context(), &services.UpdateUserRoleRequest{
		AdminID: contextutils.GetUserID(r.Context()),
		UserID:  targetID,
		Role:    body.Role,
	})
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, user)
}

// GetPlatformStats handles GET /api/v1/admin/stats (admin only)
func (c *UserController) GetPlatformStats(w http.ResponseWriter, r *http.Request) {
	stats, err := c.services.UserService.GetPlatformStats(r.Context())
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, stats)
}

// ===============================
// PROGRESS & LEADERBOARD
// ===============================

// GetLeaderboard handles GET /api/v1/users/leaderboard
//
//	@Summary	Top users ranked by points balance
//	@Tags		users
//	@Produce	json
//	@Success	200	{object}	response.APIResponse
//	@Router		/api/v1/users/leaderboard [get]
func (c *UserController) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	users, err := c.services.UserService.GetLeaderboard(r.Context(), limit)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, users)
}

// GetMyProgress handles GET /api/v1/users/progress
func (c *UserController) GetMyProgress(w http.ResponseWriter, r *http.Request) {
	userID := contextutils.GetUserID(r.Context())
	snapshot, err := c.services.ProgressService.GetUserProgress(r.Context(), userID)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, snapshot)
}

// GetUserProgress handles GET /api/v1/users/{id}/progress
func (c *UserController) GetUserProgress(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	snapshot, err := c.services.ProgressService.GetUserProgress(r.Context(), userID)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, snapshot)
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, services.NewValidationError("invalid "+name, err)
	}
	return id, nil
}
