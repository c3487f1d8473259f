package repositories

import (
	"context"
	"greenquest/internal/models"
	"time"
)

// ===============================
// CORE REPOSITORY INTERFACES
// ===============================

// UserRepository defines the contract for user data operations
type UserRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Deactivate(ctx context.Context, id int64) error

	// Level management. UpdateLevel persists a new level; it is only
	// called when the computed level actually changed.
	UpdateLevel(ctx context.Context, userID int64, level int) error
	UpdateLastSeen(ctx context.Context, userID int64) error

	// Listing and analytics
	List(ctx context.Context, params models.PaginationParams) (*models.PaginatedResponse[*models.User], error)
	GetByRole(ctx context.Context, role string, params models.PaginationParams) (*models.PaginatedResponse[*models.User], error)
	GetLeaderboard(ctx context.Context, limit int) ([]*models.User, error)
	CountByRole(ctx context.Context) (map[string]int, error)
}

// ReportRepository defines the contract for waste report data operations
type ReportRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, report *models.Report) error
	GetByID(ctx context.Context, id int64) (*models.Report, error)
	Update(ctx context.Context, report *models.Report) error
	Delete(ctx context.Context, id int64) error

	// Status management
	UpdateStatus(ctx context.Context, reportID int64, status string, completedAt *time.Time) error
	AssignCollector(ctx context.Context, reportID, collectorID int64) error

	// Listing and filtering
	List(ctx context.Context, params models.PaginationParams) (*models.PaginatedResponse[*models.Report], error)
	GetByUserID(ctx context.Context, userID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Report], error)
	GetByCollectorID(ctx context.Context, collectorID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Report], error)
	GetByStatus(ctx context.Context, status string, params models.PaginationParams) (*models.PaginatedResponse[*models.Report], error)

	// Progress aggregation inputs
	SumCompletedAmountByUser(ctx context.Context, userID int64) (float64, error)
	CountCompletedByUser(ctx context.Context, userID int64) (int, error)
	CountCompletedByCollector(ctx context.Context, collectorID int64) (int, error)
}

// RewardRepository defines the contract for reward grant and catalog operations
type RewardRepository interface {
	// Per-user grants
	Create(ctx context.Context, reward *models.Reward) error
	GetByID(ctx context.Context, id int64) (*models.Reward, error)
	GetByUserID(ctx context.Context, userID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Reward], error)
	MarkAllSpent(ctx context.Context, userID int64) (int, error)

	// Catalog
	GetCatalogRewardByID(ctx context.Context, id int64) (*models.CatalogReward, error)
	ListCatalogRewards(ctx context.Context, activeOnly bool) ([]*models.CatalogReward, error)
	CreateCatalogReward(ctx context.Context, reward *models.CatalogReward) error
	UpdateCatalogReward(ctx context.Context, reward *models.CatalogReward) error
}

// TransactionRepository defines the contract for the append-only point ledger
type TransactionRepository interface {
	// Append-only: there is no update or delete on ledger rows.
	Create(ctx context.Context, tx *models.Transaction) error
	GetByUserID(ctx context.Context, userID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Transaction], error)

	// Folds over the ledger
	GetBalance(ctx context.Context, userID int64) (int, error)
	SumEarnedByUser(ctx context.Context, userID int64) (int, error)
	CountRedeemedByUser(ctx context.Context, userID int64) (int, error)
}

// BadgeRepository defines the contract for the badge catalog and awards
type BadgeRepository interface {
	// Catalog
	Create(ctx context.Context, badge *models.Badge) error
	GetByID(ctx context.Context, id int64) (*models.Badge, error)
	Update(ctx context.Context, badge *models.Badge) error
	ListActive(ctx context.Context) ([]*models.Badge, error)
	ListAll(ctx context.Context) ([]*models.Badge, error)

	// Awards. AwardBadges inserts the batch with the uniqueness
	// constraint as the final guard and returns how many rows were
	// actually inserted.
	AwardBadges(ctx context.Context, userID int64, badgeIDs []int64) (int, error)
	GetAwardedBadgeIDs(ctx context.Context, userID int64) (map[int64]bool, error)
	GetUserBadges(ctx context.Context, userID int64) ([]*models.UserBadge, error)
}

// NotificationRepository defines the contract for the persisted inbox
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	GetByID(ctx context.Context, id int64) (*models.Notification, error)
	GetByUserID(ctx context.Context, userID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Notification], error)
	MarkAsRead(ctx context.Context, id int64) error
	MarkAllAsRead(ctx context.Context, userID int64) (int, error)
	CountUnread(ctx context.Context, userID int64) (int, error)
}

// SessionRepository defines the contract for server-issued sessions
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByToken(ctx context.Context, token string) (*models.Session, error)
	UpdateLastActivity(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
	DeleteByUserID(ctx context.Context, userID int64) error
	DeleteExpired(ctx context.Context) (int, error)
}
