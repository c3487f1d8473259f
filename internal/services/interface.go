package services

import (
	"context"
	"greenquest/internal/models"
)

// ===============================
// CORE SERVICE INTERFACES
// ===============================

// UserService defines user business logic
type UserService interface {
	// Core CRUD operations
	CreateUser(ctx context.Context, req *CreateUserRequest) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, req *UpdateUserRequest) (*models.User, error)
	DeactivateUser(ctx context.Context, userID int64, reason string) error

	// User management
	ListUsers(ctx context.Context, req *ListUsersRequest) (*models.PaginatedResponse[*models.User], error)
	UpdateUserRole(ctx context.Context, req *UpdateUserRoleRequest) (*models.User, error)

	// Analytics
	GetLeaderboard(ctx context.Context, limit int) ([]*models.User, error)
	GetPlatformStats(ctx context.Context) (*PlatformStatsResponse, error)
}

// ReportService defines waste report and pickup task business logic.
// Completing a report or pickup triggers the gamification pipeline:
// reward grant (with its ledger entry), level recalculation, badge
// evaluation and notifications.
type ReportService interface {
	// Core CRUD operations
	CreateReport(ctx context.Context, req *CreateReportRequest) (*models.Report, error)
	GetReportByID(ctx context.Context, id int64) (*models.Report, error)
	UpdateReport(ctx context.Context, req *UpdateReportRequest) (*models.Report, error)
	DeleteReport(ctx context.Context, reportID, userID int64) error

	// Listing and filtering
	ListReports(ctx context.Context, req *ListReportsRequest) (*models.PaginatedResponse[*models.Report], error)
	GetReportsByUser(ctx context.Context, userID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Report], error)
	GetPickupTasks(ctx context.Context, collectorID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Report], error)

	// Lifecycle
	UpdateReportStatus(ctx context.Context, req *UpdateReportStatusRequest) (*models.Report, error)
	AssignPickup(ctx context.Context, req *AssignPickupRequest) (*models.Report, error)
	CompletePickup(ctx context.Context, req *CompletePickupRequest) (*models.Report, error)
}

// LedgerService defines the append-only point ledger operations
type LedgerService interface {
	// RecordTransaction appends an entry; the type decides whether the
	// amount adds to or subtracts from the derived balance.
	RecordTransaction(ctx context.Context, req *RecordTransactionRequest) (*models.Transaction, error)
	GetBalance(ctx context.Context, userID int64) (int, error)
	GetTransactions(ctx context.Context, userID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Transaction], error)
}

// RewardService defines reward grant and redemption business logic.
// Grants and redemptions each append a ledger entry and create a
// notification.
type RewardService interface {
	// Grants
	GrantReward(ctx context.Context, req *GrantRewardRequest) (*models.Reward, error)
	GetUserRewards(ctx context.Context, userID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Reward], error)

	// Redemption. A catalog reward ID of zero redeems the entire
	// balance instead of a specific catalog entry.
	RedeemReward(ctx context.Context, req *RedeemRewardRequest) (*RedemptionResult, error)

	// Catalog. For a known user the listing is prefixed with the
	// redeem-all sentinel entry (ID zero) priced at their balance.
	GetAvailableRewards(ctx context.Context, userID int64) ([]*models.CatalogReward, error)
	CreateCatalogReward(ctx context.Context, req *CreateCatalogRewardRequest) (*models.CatalogReward, error)
	UpdateCatalogReward(ctx context.Context, req *UpdateCatalogRewardRequest) (*models.CatalogReward, error)
}

// ProgressService computes user progress snapshots and maintains levels
type ProgressService interface {
	// GetUserProgress computes the snapshot from current data. It is a
	// pure read: no rows change.
	GetUserProgress(ctx context.Context, userID int64) (*models.ProgressSnapshot, error)

	// UpdateUserLevel recomputes the level from the snapshot and
	// persists it only when it changed. A user's level never regresses.
	UpdateUserLevel(ctx context.Context, userID int64) (*LevelUpdateResult, error)
}

// BadgeService defines badge catalog management and awarding
type BadgeService interface {
	// Catalog management
	CreateBadge(ctx context.Context, req *CreateBadgeRequest) (*models.Badge, error)
	UpdateBadge(ctx context.Context, req *UpdateBadgeRequest) (*models.Badge, error)
	ListBadges(ctx context.Context, includeInactive bool) ([]*models.Badge, error)
	GetUserBadges(ctx context.Context, userID int64) ([]*models.UserBadge, error)

	// CheckAndAwardBadges evaluates all active badges against a user's
	// progress and awards any newly satisfied ones at most once.
	CheckAndAwardBadges(ctx context.Context, userID int64) (*BadgeAwardResult, error)
}

// NotificationService defines the persisted inbox business logic
type NotificationService interface {
	CreateNotification(ctx context.Context, req *CreateNotificationRequest) error
	GetUserNotifications(ctx context.Context, req *GetNotificationsRequest) (*models.PaginatedResponse[*models.Notification], error)
	MarkAsRead(ctx context.Context, notificationID, userID int64) error
	MarkAllAsRead(ctx context.Context, userID int64) error
	GetUnreadCount(ctx context.Context, userID int64) (int, error)
}

// AuthService defines authentication and session business logic
type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)
	Logout(ctx context.Context, req *LogoutRequest) error
	LogoutAllDevices(ctx context.Context, userID int64) error
	ChangePassword(ctx context.Context, req *ChangePasswordRequest) error

	// ValidateSession resolves a session token to the user and their
	// server-side role.
	ValidateSession(ctx context.Context, token string) (*models.Session, error)
	CleanupExpiredSessions(ctx context.Context) (int, error)
}

// ===============================
// INFRASTRUCTURE SERVICES
// ===============================

// FileService handles media uploads for report images
type FileService interface {
	UploadImage(ctx context.Context, req *FileUploadRequest) (*FileUploadResult, error)
	DeleteFile(ctx context.Context, publicID string) error
}
