package repositories

import (
	"context"
	"fmt"
	"greenquest/internal/database"
	"greenquest/internal/models"
	"time"

	"go.uber.org/zap"
)

type userRepository struct {
	*BaseRepository
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.Manager, logger *zap.Logger) UserRepository {
	return &userRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// ===============================
// BASIC CRUD OPERATIONS
// ===============================

// Create creates a new user
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, username, password_hash, role, level, is_active, created_at, updated_at, last_seen)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	user.LastSeen = now
	if user.Level < 1 {
		user.Level = 1
	}

	err := r.QueryRowContext(ctx, query,
		user.Email,
		user.Username,
		user.PasswordHash,
		user.Role,
		user.Level,
		user.IsActive,
		user.CreatedAt,
		user.UpdatedAt,
		user.LastSeen,
	).Scan(&user.ID)

	if err != nil {
		r.GetLogger().Error("Failed to create user",
			zap.Error(err),
			zap.String("email", user.Email),
			zap.String("username", user.Username),
		)
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID
func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `
		SELECT u.id, u.email, u.username, u.password_hash, u.role, u.level,
		       u.is_active, u.created_at, u.updated_at, u.last_seen,
		       COALESCE(b.badge_count, 0) AS badge_count,
		       COALESCE(rp.reports_count, 0) AS reports_count
		FROM users u
		LEFT JOIN (
			SELECT user_id, COUNT(*) AS badge_count
			FROM user_badges GROUP BY user_id
		) b ON b.user_id = u.id
		LEFT JOIN (
			SELECT user_id, COUNT(*) AS reports_count
			FROM reports GROUP BY user_id
		) rp ON rp.user_id = u.id
		WHERE u.id = $1`

	user := &models.User{}
	err := r.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.PasswordHash,
		&user.Role,
		&user.Level,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.LastSeen,
		&user.BadgeCount,
		&user.ReportsCount,
	)

	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		r.GetLogger().Error("Failed to get user by ID", zap.Error(err), zap.Int64("user_id", id))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// GetByEmail retrieves a user by email address
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, email, username, password_hash, role, level,
		       is_active, created_at, updated_at, last_seen
		FROM users
		WHERE email = $1`

	user := &models.User{}
	err := r.QueryRowContext(ctx, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.PasswordHash,
		&user.Role,
		&user.Level,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.LastSeen,
	)

	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		r.GetLogger().Error("Failed to get user by email", zap.Error(err))
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// GetByUsername retrieves a user by username
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `
		SELECT id, email, username, password_hash, role, level,
		       is_active, created_at, updated_at, last_seen
		FROM users
		WHERE username = $1`

	user := &models.User{}
	err := r.QueryRowContext(ctx, query, username).Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.PasswordHash,
		&user.Role,
		&user.Level,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.LastSeen,
	)

	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		r.GetLogger().Error("Failed to get user by username", zap.Error(err), zap.String("username", username))
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}

	return user, nil
}

// Update updates a user's mutable profile fields
func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET email = $2, username = $3, role = $4, is_active = $5, updated_at = $6
		WHERE id = $1`

	user.UpdatedAt = time.Now()

	result, err := r.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.Username,
		user.Role,
		user.IsActive,
		user.UpdatedAt,
	)
	if err != nil {
		r.GetLogger().Error("Failed to update user", zap.Error(err), zap.Int64("user_id", user.ID))
		return fmt.Errorf("failed to update user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("user not found: %d", user.ID)
	}

	return nil
}

// Deactivate soft-deletes a user account
func (r *userRepository) Deactivate(ctx context.Context, id int64) error {
	query := `UPDATE users SET is_active = false, updated_at = $2 WHERE id = $1`

	result, err := r.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		r.GetLogger().Error("Failed to deactivate user", zap.Error(err), zap.Int64("user_id", id))
		return fmt.Errorf("failed to deactivate user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("user not found: %d", id)
	}

	return nil
}

// ===============================
// LEVEL MANAGEMENT
// ===============================

// UpdateLevel persists a user's new level
func (r *userRepository) UpdateLevel(ctx context.Context, userID int64, level int) error {
	query := `UPDATE users SET level = $2, updated_at = $3 WHERE id = $1`

	result, err := r.ExecContext(ctx, query, userID, level, time.Now())
	if err != nil {
		r.GetLogger().Error("Failed to update user level",
			zap.Error(err),
			zap.Int64("user_id", userID),
			zap.Int("level", level),
		)
		return fmt.Errorf("failed to update user level: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("user not found: %d", userID)
	}

	return nil
}

// UpdateLastSeen updates the last-seen timestamp
func (r *userRepository) UpdateLastSeen(ctx context.Context, userID int64) error {
	query := `UPDATE users SET last_seen = $2 WHERE id = $1`

	_, err := r.ExecContext(ctx, query, userID, time.Now())
	if err != nil {
		r.GetLogger().Error("Failed to update last seen", zap.Error(err), zap.Int64("user_id", userID))
		return fmt.Errorf("failed to update last seen: %w", err)
	}

	return nil
}

// ===============================
// LISTING & ANALYTICS
// ===============================

// List retrieves users with pagination
func (r *userRepository) List(ctx context.Context, params models.PaginationParams) (*models.PaginatedResponse[*models.User], error) {
	return r.listUsers(ctx, params, "", nil)
}

// GetByRole retrieves users filtered by role
func (r *userRepository) GetByRole(ctx context.Context, role string, params models.PaginationParams) (*models.PaginatedResponse[*models.User], error) {
	return r.listUsers(ctx, params, "WHERE role = $1", []interface{}{role})
}

func (r *userRepository) listUsers(ctx context.Context, params models.PaginationParams, where string, args []interface{}) (*models.PaginatedResponse[*models.User], error) {
	params = r.NormalizePagination(params)

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM users %s", where)
	total, err := r.GetTotalCount(ctx, countQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, email, username, role, level, is_active, created_at, updated_at, last_seen
		FROM users %s`, where)
	clause, pageArgs := r.OrderLimitOffset(params, len(args)+1)
	query += clause
	args = append(args, pageArgs...)

	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		err := rows.Scan(
			&user.ID,
			&user.Email,
			&user.Username,
			&user.Role,
			&user.Level,
			&user.IsActive,
			&user.CreatedAt,
			&user.UpdatedAt,
			&user.LastSeen,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return &models.PaginatedResponse[*models.User]{
		Data:       users,
		Pagination: r.BuildPaginationMeta(params, total),
	}, nil
}

// GetLeaderboard retrieves the top users ranked by earned points
func (r *userRepository) GetLeaderboard(ctx context.Context, limit int) ([]*models.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	query := `
		SELECT u.id, u.email, u.username, u.role, u.level, u.is_active,
		       u.created_at, u.updated_at, u.last_seen,
		       COALESCE(t.earned, 0) AS points_earned
		FROM users u
		LEFT JOIN (
			SELECT user_id, SUM(amount) AS earned
			FROM transactions
			WHERE type IN ('earned_report', 'earned_collect')
			GROUP BY user_id
		) t ON t.user_id = u.id
		WHERE u.is_active = true
		ORDER BY points_earned DESC, u.created_at ASC
		LIMIT $1`

	rows, err := r.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		err := rows.Scan(
			&user.ID,
			&user.Email,
			&user.Username,
			&user.Role,
			&user.Level,
			&user.IsActive,
			&user.CreatedAt,
			&user.UpdatedAt,
			&user.LastSeen,
			&user.PointsBalance,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// CountByRole returns active user counts grouped by role
func (r *userRepository) CountByRole(ctx context.Context) (map[string]int, error) {
	query := `SELECT role, COUNT(*) FROM users WHERE is_active = true GROUP BY role`

	rows, err := r.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count users by role: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var role string
		var count int
		if err := rows.Scan(&role, &count); err != nil {
			return nil, fmt.Errorf("failed to scan role count: %w", err)
		}
		counts[role] = count
	}
	return counts, rows.Err()
}
