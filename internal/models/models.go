package models

import (
	"time"
)

// ===============================
// CORE ENTITIES
// ===============================

// User represents a platform participant: a reporter, a pickup agent or an admin.
type User struct {
	// Primary fields
	ID       int64  `json:"id" db:"id"`
	Email    string `json:"email" db:"email" validate:"required,email,max=320"`
	Username string `json:"username" db:"username" validate:"required,min=3,max=50,alphanum"`

	// Authentication
	PasswordHash string `json:"-" db:"password_hash"`
	IsActive     bool   `json:"is_active" db:"is_active"`

	// Gamification
	Level int `json:"level" db:"level" validate:"min=1"`

	// System fields
	Role string `json:"role" db:"role" validate:"required,oneof=user admin agent"`

	// Timestamps
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
	LastSeen  time.Time `json:"last_seen" db:"last_seen"`

	// Computed/joined fields (not in DB)
	PointsBalance int `json:"points_balance,omitempty" db:"-"`
	BadgeCount    int `json:"badge_count,omitempty" db:"-"`
	ReportsCount  int `json:"reports_count,omitempty" db:"-"`
}

// Report represents a waste-reporting event and, once a collector is
// assigned, the pickup task that fulfils it.
type Report struct {
	// Core fields
	ID          int64   `json:"id" db:"id"`
	UserID      int64   `json:"user_id" db:"user_id" validate:"required"`
	CollectorID *int64  `json:"collector_id,omitempty" db:"collector_id"`
	Location    string  `json:"location" db:"location" validate:"required,max=255"`
	WasteType   string  `json:"waste_type" db:"waste_type" validate:"required,max=100"`
	Amount      float64 `json:"amount" db:"amount" validate:"gt=0"`
	Status      string  `json:"status" db:"status" validate:"oneof=pending assigned in_progress completed cancelled"`

	// Media and verification
	ImageURL           *string `json:"image_url,omitempty" db:"image_url"`
	ImagePublicID      *string `json:"image_public_id,omitempty" db:"image_public_id"`
	VerificationResult *string `json:"verification_result,omitempty" db:"verification_result"`

	// Timestamps
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`

	// Reporter information (joined)
	Username string `json:"username,omitempty" db:"username"`

	// Collector information (joined)
	CollectorUsername *string `json:"collector_username,omitempty" db:"collector_username"`
}

// Reward represents a named grant of points to a user. Grants accumulate
// as a user earns points and are flagged spent on redemption; the point
// balance itself is always derived from the transaction ledger.
type Reward struct {
	ID          int64   `json:"id" db:"id"`
	UserID      int64   `json:"user_id" db:"user_id" validate:"required"`
	Name        string  `json:"name" db:"name" validate:"required,max=255"`
	Description *string `json:"description,omitempty" db:"description"`
	Points      int     `json:"points" db:"points"`
	IsSpent     bool    `json:"is_spent" db:"is_spent"`

	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	SpentAt   *time.Time `json:"spent_at,omitempty" db:"spent_at"`
}

// CatalogReward is an admin-managed reward users can redeem points
// against. Catalog availability (is_active) is distinct from the
// per-user grant spent flag on Reward.
type CatalogReward struct {
	ID          int64   `json:"id" db:"id"`
	Name        string  `json:"name" db:"name" validate:"required,max=255"`
	Description *string `json:"description,omitempty" db:"description"`
	Cost        int     `json:"cost" db:"cost" validate:"gt=0"`
	IsActive    bool    `json:"is_active" db:"is_active"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Transaction is an immutable ledger entry. A user's balance is the fold
// of all their transactions: earned types add, everything else subtracts.
type Transaction struct {
	ID          int64  `json:"id" db:"id"`
	UserID      int64  `json:"user_id" db:"user_id" validate:"required"`
	Type        string `json:"type" db:"type" validate:"required,oneof=earned_report earned_collect redeemed"`
	Amount      int    `json:"amount" db:"amount"`
	Description string `json:"description" db:"description" validate:"max=255"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// IsEarning reports whether the transaction adds to the balance.
func (t *Transaction) IsEarning() bool {
	return TransactionAddsToBalance(t.Type)
}

// Notification represents a persisted inbox entry for a user. There is
// no delivery guarantee beyond the insert.
type Notification struct {
	ID      int64  `json:"id" db:"id"`
	UserID  int64  `json:"user_id" db:"user_id" validate:"required"`
	Type    string `json:"type" db:"type" validate:"required,max=50"`
	Message string `json:"message" db:"message" validate:"required,max=500"`

	IsRead bool `json:"is_read" db:"is_read"`

	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	ReadAt    *time.Time `json:"read_at,omitempty" db:"read_at"`
}

// IsUnread checks if the notification is unread
func (n *Notification) IsUnread() bool {
	return !n.IsRead
}

// Session represents a server-issued session resolved to a user and role
// on every request. Client-held role claims are never trusted.
type Session struct {
	ID           int64     `json:"id" db:"id"`
	UserID       int64     `json:"user_id" db:"user_id" validate:"required"`
	SessionToken string    `json:"session_token" db:"session_token" validate:"required"`
	ExpiresAt    time.Time `json:"expires_at" db:"expires_at" validate:"required"`
	LastActivity time.Time `json:"last_activity" db:"last_activity"`

	IPAddress *string   `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent *string   `json:"user_agent,omitempty" db:"user_agent"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// Joined fields
	UserRole string `json:"user_role" db:"-"`
}

// IsExpired checks if a session is expired
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// ===============================
// PROGRESS
// ===============================

// ProgressSnapshot is the computed tuple of a user's cumulative
// achievement at a point in time. Computing it is a pure read.
type ProgressSnapshot struct {
	UserID               int64   `json:"user_id"`
	WasteCollected       float64 `json:"waste_collected"`
	ReportsSubmitted     int     `json:"reports_submitted"`
	RewardsRedeemed      int     `json:"rewards_redeemed"`
	CO2Offset            float64 `json:"co2_offset"`
	PointsEarned         int     `json:"points_earned"`
	UserLevel            int     `json:"user_level"`
	PickupTasksCompleted int     `json:"pickup_tasks_completed"`
}

// ===============================
// PAGINATION & QUERY HELPERS
// ===============================

// PaginationParams represents pagination parameters
type PaginationParams struct {
	Limit  int    `json:"limit" validate:"min=0,max=100"`
	Offset int    `json:"offset" validate:"min=0"`
	Sort   string `json:"sort,omitempty" validate:"omitempty,oneof=created_at updated_at amount status"`
	Order  string `json:"order,omitempty" validate:"omitempty,oneof=asc desc"`
}

// PaginatedResponse represents a paginated API response
type PaginatedResponse[T any] struct {
	Data       []T            `json:"data"`
	Pagination PaginationMeta `json:"pagination"`
	Filters    map[string]any `json:"filters,omitempty"`
}

// PaginationMeta contains pagination metadata
type PaginationMeta struct {
	CurrentPage  int   `json:"current_page"`
	TotalPages   int   `json:"total_pages"`
	TotalItems   int64 `json:"total_items"`
	ItemsPerPage int   `json:"items_per_page"`
	HasNext      bool  `json:"has_next"`
	HasPrev      bool  `json:"has_prev"`
}

// ===============================
// HELPER METHODS
// ===============================

// IsOwnedBy checks if the user submitted the report
func (r *Report) IsOwnedBy(userID int64) bool {
	return r.UserID == userID
}

// IsAssignedTo checks if the report's pickup is assigned to the collector
func (r *Report) IsAssignedTo(collectorID int64) bool {
	return r.CollectorID != nil && *r.CollectorID == collectorID
}

// IsCompleted checks if the report reached its terminal successful state
func (r *Report) IsCompleted() bool {
	return r.Status == ReportStatusCompleted
}

// IsAdmin checks if the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsAgent checks if the user holds the pickup agent role
func (u *User) IsAgent() bool {
	return u.Role == RoleAgent
}
