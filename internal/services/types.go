package services

import (
	"greenquest/internal/models"
	"io"
	"time"
)

// ===============================
// USER & AUTH TYPES
// ===============================

// CreateUserRequest represents a user creation request
type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email,max=320"`
	Username string `json:"username" validate:"required,min=3,max=50,alphanum"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Role     string `json:"role" validate:"omitempty,oneof=user admin agent"`
}

// UpdateUserRequest represents a user profile update request
type UpdateUserRequest struct {
	UserID   int64   `json:"user_id" validate:"required"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email,max=320"`
	Username *string `json:"username,omitempty" validate:"omitempty,min=3,max=50,alphanum"`
}

// UpdateUserRoleRequest represents an admin role change request
type UpdateUserRoleRequest struct {
	AdminID int64  `json:"admin_id" validate:"required"`
	UserID  int64  `json:"user_id" validate:"required"`
	Role    string `json:"role" validate:"required,oneof=user admin agent"`
}

// ListUsersRequest represents a user listing request
type ListUsersRequest struct {
	Pagination models.PaginationParams `json:"pagination"`
	Role       *string                 `json:"role,omitempty" validate:"omitempty,oneof=user admin agent"`
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Email     string  `json:"email" validate:"required,email,max=320"`
	Username  string  `json:"username" validate:"required,min=3,max=50,alphanum"`
	Password  string  `json:"password" validate:"required,min=8,max=128"`
	IPAddress *string `json:"-"`
	UserAgent *string `json:"-"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Identifier string  `json:"identifier" validate:"required"` // email or username
	Password   string  `json:"password" validate:"required"`
	IPAddress  *string `json:"-"`
	UserAgent  *string `json:"-"`
}

// LogoutRequest represents a logout request
type LogoutRequest struct {
	SessionToken string `json:"-" validate:"required"`
}

// ChangePasswordRequest represents a password change request
type ChangePasswordRequest struct {
	UserID          int64  `json:"user_id" validate:"required"`
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=128"`
}

// AuthResponse represents a successful authentication result
type AuthResponse struct {
	User         *models.User `json:"user"`
	SessionToken string       `json:"session_token"`
	AccessToken  string       `json:"access_token"`
	ExpiresAt    time.Time    `json:"expires_at"`
}

// PlatformStatsResponse aggregates platform-wide counters
type PlatformStatsResponse struct {
	UsersByRole     map[string]int `json:"users_by_role"`
	GeneratedAt     time.Time      `json:"generated_at"`
	LeaderboardSize int            `json:"leaderboard_size"`
}

// ===============================
// REPORT & PICKUP TYPES
// ===============================

// CreateReportRequest represents a waste report submission. Amount
// arrives as a string so malformed decimals are rejected at the
// boundary instead of silently collapsing to zero.
type CreateReportRequest struct {
	UserID    int64  `json:"user_id" validate:"required"`
	Location  string `json:"location" validate:"required,max=255"`
	WasteType string `json:"waste_type" validate:"required,max=100"`
	Amount    string `json:"amount" validate:"required"`

	// Optional image upload
	Image *FileUploadRequest `json:"-"`
}

// UpdateReportRequest represents a report content update
type UpdateReportRequest struct {
	ReportID  int64   `json:"report_id" validate:"required"`
	UserID    int64   `json:"user_id" validate:"required"`
	Location  *string `json:"location,omitempty" validate:"omitempty,max=255"`
	WasteType *string `json:"waste_type,omitempty" validate:"omitempty,max=100"`
	Amount    *string `json:"amount,omitempty"`
}

// ListReportsRequest represents a report listing request
type ListReportsRequest struct {
	Pagination models.PaginationParams `json:"pagination"`
	Status     *string                 `json:"status,omitempty" validate:"omitempty,oneof=pending assigned in_progress completed cancelled"`
}

// UpdateReportStatusRequest represents a report status transition.
// ActorID identifies who requests the change; role checks happen in
// the service.
type UpdateReportStatusRequest struct {
	ReportID  int64  `json:"report_id" validate:"required"`
	ActorID   int64  `json:"actor_id" validate:"required"`
	ActorRole string `json:"actor_role" validate:"required,oneof=user admin agent"`
	Status    string `json:"status" validate:"required,oneof=pending assigned in_progress completed cancelled"`
}

// AssignPickupRequest attaches a collector to a pending report
type AssignPickupRequest struct {
	ReportID    int64 `json:"report_id" validate:"required"`
	CollectorID int64 `json:"collector_id" validate:"required"`
}

// CompletePickupRequest marks an assigned pickup as completed by its collector
type CompletePickupRequest struct {
	ReportID    int64 `json:"report_id" validate:"required"`
	CollectorID int64 `json:"collector_id" validate:"required"`
}

// ===============================
// LEDGER TYPES
// ===============================

// RecordTransactionRequest appends a ledger entry
type RecordTransactionRequest struct {
	UserID      int64  `json:"user_id" validate:"required"`
	Type        string `json:"type" validate:"required,oneof=earned_report earned_collect redeemed"`
	Amount      int    `json:"amount" validate:"gt=0"`
	Description string `json:"description" validate:"max=255"`
}

// ===============================
// REWARD TYPES
// ===============================

// GrantRewardRequest creates a reward grant for a user. Type names the
// earning ledger entry the grant appends; it defaults to earned_report.
type GrantRewardRequest struct {
	UserID      int64   `json:"user_id" validate:"required"`
	Name        string  `json:"name" validate:"required,max=255"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	Points      int     `json:"points" validate:"min=0"`
	Type        string  `json:"type,omitempty" validate:"omitempty,oneof=earned_report earned_collect"`
}

// RedeemRewardRequest redeems points. CatalogRewardID zero means
// redeem the entire balance rather than a catalog entry.
type RedeemRewardRequest struct {
	UserID          int64 `json:"user_id" validate:"required"`
	CatalogRewardID int64 `json:"catalog_reward_id" validate:"min=0"`
}

// RedemptionResult describes what a redemption actually did
type RedemptionResult struct {
	Transaction   *models.Transaction   `json:"transaction"`
	CatalogReward *models.CatalogReward `json:"catalog_reward,omitempty"`
	PointsSpent   int                   `json:"points_spent"`
	NewBalance    int                   `json:"new_balance"`
	GrantsMarked  int                   `json:"grants_marked"`
}

// CreateCatalogRewardRequest creates a catalog entry
type CreateCatalogRewardRequest struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	Cost        int     `json:"cost" validate:"gt=0"`
	IsActive    bool    `json:"is_active"`
}

// UpdateCatalogRewardRequest updates a catalog entry
type UpdateCatalogRewardRequest struct {
	ID          int64   `json:"id" validate:"required"`
	Name        *string `json:"name,omitempty" validate:"omitempty,max=255"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	Cost        *int    `json:"cost,omitempty" validate:"omitempty,gt=0"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// ===============================
// PROGRESS & BADGE TYPES
// ===============================

// LevelUpdateResult reports the outcome of a level recalculation
type LevelUpdateResult struct {
	UserID    int64 `json:"user_id"`
	OldLevel  int   `json:"old_level"`
	NewLevel  int   `json:"new_level"`
	LeveledUp bool  `json:"leveled_up"`
}

// CreateBadgeRequest creates a badge definition
type CreateBadgeRequest struct {
	Name          string  `json:"name" validate:"required,max=100"`
	Description   string  `json:"description" validate:"max=500"`
	Icon          string  `json:"icon" validate:"max=100"`
	Color         string  `json:"color" validate:"omitempty,len=7"`
	CriteriaType  string  `json:"criteria_type" validate:"required"`
	CriteriaValue float64 `json:"criteria_value" validate:"min=0"`
	IsActive      bool    `json:"is_active"`
}

// UpdateBadgeRequest updates a badge definition
type UpdateBadgeRequest struct {
	ID            int64    `json:"id" validate:"required"`
	Name          *string  `json:"name,omitempty" validate:"omitempty,max=100"`
	Description   *string  `json:"description,omitempty" validate:"omitempty,max=500"`
	Icon          *string  `json:"icon,omitempty" validate:"omitempty,max=100"`
	Color         *string  `json:"color,omitempty" validate:"omitempty,len=7"`
	CriteriaType  *string  `json:"criteria_type,omitempty"`
	CriteriaValue *float64 `json:"criteria_value,omitempty" validate:"omitempty,min=0"`
	IsActive      *bool    `json:"is_active,omitempty"`
}

// BadgeAwardResult reports the outcome of a badge evaluation pass
type BadgeAwardResult struct {
	UserID       int64           `json:"user_id"`
	NewBadges    []*models.Badge `json:"new_badges"`
	AwardedCount int             `json:"awarded_count"`
	SkippedCount int             `json:"skipped_count"`
	EvaluatedAt  time.Time       `json:"evaluated_at"`
}

// ===============================
// NOTIFICATION TYPES
// ===============================

// CreateNotificationRequest creates an inbox entry
type CreateNotificationRequest struct {
	UserID  int64  `json:"user_id" validate:"required"`
	Type    string `json:"type" validate:"required,max=50"`
	Message string `json:"message" validate:"required,max=500"`
}

// GetNotificationsRequest lists a user's inbox
type GetNotificationsRequest struct {
	UserID     int64                   `json:"user_id" validate:"required"`
	Pagination models.PaginationParams `json:"pagination"`
	UnreadOnly bool                    `json:"unread_only"`
}

// ===============================
// FILE TYPES
// ===============================

// FileUploadRequest represents a file upload
type FileUploadRequest struct {
	UserID      int64     `json:"user_id" validate:"required"`
	File        io.Reader `json:"-"`
	FileName    string    `json:"file_name" validate:"required"`
	FileSize    int64     `json:"file_size" validate:"required,max=10485760"`
	ContentType string    `json:"content_type" validate:"required"`
	Folder      string    `json:"folder,omitempty"`
}

// FileUploadResult represents the upload outcome
type FileUploadResult struct {
	URL       string    `json:"url"`
	PublicID  string    `json:"public_id"`
	FileSize  int64     `json:"file_size"`
	Format    string    `json:"format"`
	CreatedAt time.Time `json:"created_at"`
}
