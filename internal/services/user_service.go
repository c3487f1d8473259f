package services

import (
	"context"
	"fmt"
	"greenquest/internal/cache"
	"greenquest/internal/events"
	"greenquest/internal/models"
	"greenquest/internal/repositories"
	"greenquest/internal/validation"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// userService implements UserService
type userService struct {
	userRepo repositories.UserRepository
	cache    cache.Cache
	events   events.EventBus
	logger   *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(
	userRepo repositories.UserRepository,
	c cache.Cache,
	eventBus events.EventBus,
	logger *zap.Logger,
) UserService {
	return &userService{
		userRepo: userRepo,
		cache:    c,
		events:   eventBus,
		logger:   logger,
	}
}

// ===============================
// CORE CRUD OPERATIONS
// ===============================

// CreateUser creates a user with a hashed password. New users start at
// level 1 with the reporter role unless one is given.
func (s *userService) CreateUser(ctx context.Context, req *CreateUserRequest) (*models.User, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid user request", err)
	}

	existing, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, NewInternalError("failed to check existing email")
	}
	if existing != nil {
		return nil, NewConflictError("email already registered", "EMAIL_TAKEN")
	}

	existing, err = s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, NewInternalError("failed to check existing username")
	}
	if existing != nil {
		return nil, NewConflictError("username already taken", "USERNAME_TAKEN")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, NewInternalError("failed to hash password")
	}

	role := req.Role
	if role == "" {
		role = models.RoleUser
	}

	user := &models.User{
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: string(hash),
		Role:         role,
		Level:        1,
		IsActive:     true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		s.logger.Error("Failed to create user", zap.Error(err), zap.String("username", req.Username))
		return nil, NewInternalError("failed to create user")
	}

	if err := s.events.Publish(ctx, events.NewUserCreatedEvent(user.ID, user.Email, user.Username)); err != nil {
		s.logger.Warn("Failed to publish user created event", zap.Error(err), zap.Int64("user_id", user.ID))
	}

	s.logger.Info("User created",
		zap.Int64("user_id", user.ID),
		zap.String("username", user.Username),
		zap.String("role", user.Role),
	)

	return user, nil
}

// GetUserByID retrieves a user by ID
func (s *userService) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	if id <= 0 {
		return nil, NewValidationError("invalid user ID", nil)
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, NewInternalError("failed to load user")
	}
	if user == nil {
		return nil, NewNotFoundError("user not found")
	}
	return user, nil
}

// GetUserByUsername retrieves a user by username
func (s *userService) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	if username == "" {
		return nil, NewValidationError("username is required", nil)
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, NewInternalError("failed to load user")
	}
	if user == nil {
		return nil, NewNotFoundError("user not found")
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email
func (s *userService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if email == "" {
		return nil, NewValidationError("email is required", nil)
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, NewInternalError("failed to load user")
	}
	if user == nil {
		return nil, NewNotFoundError("user not found")
	}
	return user, nil
}

// UpdateUser updates a user's own profile fields
func (s *userService) UpdateUser(ctx context.Context, req *UpdateUserRequest) (*models.User, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid update request", err)
	}

	user, err := s.GetUserByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	if req.Email != nil && *req.Email != user.Email {
		existing, err := s.userRepo.GetByEmail(ctx, *req.Email)
		if err != nil {
			return nil, NewInternalError("failed to check existing email")
		}
		if existing != nil {
			return nil, NewConflictError("email already registered", "EMAIL_TAKEN")
		}
		user.Email = *req.Email
	}
	if req.Username != nil && *req.Username != user.Username {
		existing, err := s.userRepo.GetByUsername(ctx, *req.Username)
		if err != nil {
			return nil, NewInternalError("failed to check existing username")
		}
		if existing != nil {
			return nil, NewConflictError("username already taken", "USERNAME_TAKEN")
		}
		user.Username = *req.Username
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, NewInternalError("failed to update user")
	}

	s.invalidateUserCaches(ctx, user.ID)
	return user, nil
}

// DeactivateUser soft-deletes a user. Their reports, ledger entries and
// badges stay; they just cannot sign in anymore.
func (s *userService) DeactivateUser(ctx context.Context, userID int64, reason string) error {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.userRepo.Deactivate(ctx, userID); err != nil {
		return NewInternalError("failed to deactivate user")
	}

	s.invalidateUserCaches(ctx, userID)

	if err := s.events.Publish(ctx, events.NewUserDeactivatedEvent(userID, user.Username, reason)); err != nil {
		s.logger.Warn("Failed to publish user deactivated event", zap.Error(err), zap.Int64("user_id", userID))
	}

	s.logger.Info("User deactivated",
		zap.Int64("user_id", userID),
		zap.String("username", user.Username),
		zap.String("reason", reason),
	)

	return nil
}

// ===============================
// USER MANAGEMENT
// ===============================

// ListUsers lists users, optionally filtered by role
func (s *userService) ListUsers(ctx context.Context, req *ListUsersRequest) (*models.PaginatedResponse[*models.User], error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid list request", err)
	}

	if req.Role != nil {
		result, err := s.userRepo.GetByRole(ctx, *req.Role, req.Pagination)
		if err != nil {
			return nil, NewInternalError("failed to list users")
		}
		return result, nil
	}

	result, err := s.userRepo.List(ctx, req.Pagination)
	if err != nil {
		return nil, NewInternalError("failed to list users")
	}
	return result, nil
}

// UpdateUserRole changes a user's role. Admin only, and an admin cannot
// demote themselves so the platform always keeps at least one.
func (s *userService) UpdateUserRole(ctx context.Context, req *UpdateUserRoleRequest) (*models.User, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid role request", err)
	}

	admin, err := s.GetUserByID(ctx, req.AdminID)
	if err != nil {
		return nil, err
	}
	if !admin.IsAdmin() {
		return nil, NewForbiddenError("only admins can change roles")
	}
	if req.AdminID == req.UserID && req.Role != models.RoleAdmin {
		return nil, NewBusinessError("admins cannot demote themselves", "SELF_DEMOTION")
	}

	user, err := s.GetUserByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	oldRole := user.Role
	user.Role = req.Role
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, NewInternalError("failed to update role")
	}

	s.invalidateUserCaches(ctx, user.ID)

	s.logger.Info("User role updated",
		zap.Int64("user_id", user.ID),
		zap.String("old_role", oldRole),
		zap.String("new_role", user.Role),
		zap.Int64("admin_id", req.AdminID),
	)

	return user, nil
}

// ===============================
// ANALYTICS
// ===============================

// GetLeaderboard returns the top users by earned points. Cached briefly
// since it backs a public page and tolerates slight staleness.
func (s *userService) GetLeaderboard(ctx context.Context, limit int) ([]*models.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	cacheKey := fmt.Sprintf("leaderboard:%d", limit)
	if cached, found := s.cache.Get(ctx, cacheKey); found {
		if users, ok := cached.([]*models.User); ok {
			return users, nil
		}
	}

	users, err := s.userRepo.GetLeaderboard(ctx, limit)
	if err != nil {
		return nil, NewInternalError("failed to load leaderboard")
	}

	if err := s.cache.Set(ctx, cacheKey, users, cache.ShortTTL); err != nil {
		s.logger.Warn("Failed to cache leaderboard", zap.Error(err))
	}

	return users, nil
}

// GetPlatformStats aggregates platform-wide counters
func (s *userService) GetPlatformStats(ctx context.Context) (*PlatformStatsResponse, error) {
	byRole, err := s.userRepo.CountByRole(ctx)
	if err != nil {
		return nil, NewInternalError("failed to count users")
	}

	return &PlatformStatsResponse{
		UsersByRole:     byRole,
		GeneratedAt:     time.Now(),
		LeaderboardSize: 10,
	}, nil
}

func (s *userService) invalidateUserCaches(ctx context.Context, userID int64) {
	s.cache.Delete(ctx, fmt.Sprintf("user:%d:progress", userID))
	s.cache.DeletePattern(ctx, "leaderboard:*")
}
