package repositories

import (
	"context"
	"fmt"
	"greenquest/internal/database"
	"greenquest/internal/models"
	"strings"
	"time"

	"go.uber.org/zap"
)

type badgeRepository struct {
	*BaseRepository
}

// NewBadgeRepository creates a new badge repository
func NewBadgeRepository(db *database.Manager, logger *zap.Logger) BadgeRepository {
	return &badgeRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// ===============================
// CATALOG
// ===============================

// Create creates a badge definition
func (r *badgeRepository) Create(ctx context.Context, badge *models.Badge) error {
	query := `
		INSERT INTO badges (name, description, icon, color, criteria_type, criteria_value, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	badge.CreatedAt = time.Now()

	err := r.QueryRowContext(ctx, query,
		badge.Name,
		badge.Description,
		badge.Icon,
		badge.Color,
		badge.CriteriaType,
		badge.CriteriaValue,
		badge.IsActive,
		badge.CreatedAt,
	).Scan(&badge.ID)

	if err != nil {
		r.GetLogger().Error("Failed to create badge", zap.Error(err), zap.String("name", badge.Name))
		return fmt.Errorf("failed to create badge: %w", err)
	}

	return nil
}

// GetByID retrieves a badge definition by ID
func (r *badgeRepository) GetByID(ctx context.Context, id int64) (*models.Badge, error) {
	query := `
		SELECT id, name, description, icon, color, criteria_type, criteria_value, is_active, created_at, updated_at
		FROM badges
		WHERE id = $1`

	badge := &models.Badge{}
	err := r.QueryRowContext(ctx, query, id).Scan(
		&badge.ID,
		&badge.Name,
		&badge.Description,
		&badge.Icon,
		&badge.Color,
		&badge.CriteriaType,
		&badge.CriteriaValue,
		&badge.IsActive,
		&badge.CreatedAt,
		&badge.UpdatedAt,
	)

	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		r.GetLogger().Error("Failed to get badge by ID", zap.Error(err), zap.Int64("badge_id", id))
		return nil, fmt.Errorf("failed to get badge: %w", err)
	}

	return badge, nil
}

// Update updates a badge definition
func (r *badgeRepository) Update(ctx context.Context, badge *models.Badge) error {
	query := `
		UPDATE badges
		SET name = $2, description = $3, icon = $4, color = $5,
		    criteria_type = $6, criteria_value = $7, is_active = $8, updated_at = $9
		WHERE id = $1`

	now := time.Now()
	badge.UpdatedAt = &now

	result, err := r.ExecContext(ctx, query,
		badge.ID,
		badge.Name,
		badge.Description,
		badge.Icon,
		badge.Color,
		badge.CriteriaType,
		badge.CriteriaValue,
		badge.IsActive,
		badge.UpdatedAt,
	)
	if err != nil {
		r.GetLogger().Error("Failed to update badge", zap.Error(err), zap.Int64("badge_id", badge.ID))
		return fmt.Errorf("failed to update badge: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("badge not found: %d", badge.ID)
	}

	return nil
}

// ListActive lists badges currently eligible for awarding
func (r *badgeRepository) ListActive(ctx context.Context) ([]*models.Badge, error) {
	return r.listBadges(ctx, true)
}

// ListAll lists every badge definition including inactive ones
func (r *badgeRepository) ListAll(ctx context.Context) ([]*models.Badge, error) {
	return r.listBadges(ctx, false)
}

func (r *badgeRepository) listBadges(ctx context.Context, activeOnly bool) ([]*models.Badge, error) {
	query := `
		SELECT id, name, description, icon, color, criteria_type, criteria_value, is_active, created_at, updated_at
		FROM badges`
	if activeOnly {
		query += ` WHERE is_active = true`
	}
	query += ` ORDER BY criteria_value ASC, name ASC`

	rows, err := r.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list badges: %w", err)
	}
	defer rows.Close()

	var badges []*models.Badge
	for rows.Next() {
		badge := &models.Badge{}
		err := rows.Scan(
			&badge.ID,
			&badge.Name,
			&badge.Description,
			&badge.Icon,
			&badge.Color,
			&badge.CriteriaType,
			&badge.CriteriaValue,
			&badge.IsActive,
			&badge.CreatedAt,
			&badge.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan badge: %w", err)
		}
		badges = append(badges, badge)
	}
	return badges, rows.Err()
}

// ===============================
// AWARDS
// ===============================

// AwardBadges inserts award rows for the given badge IDs. The
// (user_id, badge_id) uniqueness constraint is the final idempotence
// guard: duplicates are silently skipped via ON CONFLICT DO NOTHING,
// so a concurrent awarder never produces a second row. Returns the
// number of rows actually inserted.
func (r *badgeRepository) AwardBadges(ctx context.Context, userID int64, badgeIDs []int64) (int, error) {
	if len(badgeIDs) == 0 {
		return 0, nil
	}

	now := time.Now()
	values := make([]string, 0, len(badgeIDs))
	args := make([]interface{}, 0, len(badgeIDs)*3)
	for i, badgeID := range badgeIDs {
		base := i * 3
		values = append(values, fmt.Sprintf("($%d, $%d, $%d)", base+1, base+2, base+3))
		args = append(args, userID, badgeID, now)
	}

	query := fmt.Sprintf(`
		INSERT INTO user_badges (user_id, badge_id, awarded_at)
		VALUES %s
		ON CONFLICT (user_id, badge_id) DO NOTHING`, strings.Join(values, ", "))

	result, err := r.ExecContext(ctx, query, args...)
	if err != nil {
		r.GetLogger().Error("Failed to award badges",
			zap.Error(err),
			zap.Int64("user_id", userID),
			zap.Int64s("badge_ids", badgeIDs),
		)
		return 0, fmt.Errorf("failed to award badges: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(rowsAffected), nil
}

// GetAwardedBadgeIDs returns the set of badge IDs already held by a user
func (r *badgeRepository) GetAwardedBadgeIDs(ctx context.Context, userID int64) (map[int64]bool, error) {
	query := `SELECT badge_id FROM user_badges WHERE user_id = $1`

	rows, err := r.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get awarded badge IDs: %w", err)
	}
	defer rows.Close()

	awarded := make(map[int64]bool)
	for rows.Next() {
		var badgeID int64
		if err := rows.Scan(&badgeID); err != nil {
			return nil, fmt.Errorf("failed to scan badge ID: %w", err)
		}
		awarded[badgeID] = true
	}
	return awarded, rows.Err()
}

// GetUserBadges retrieves a user's awarded badges with badge info joined
func (r *badgeRepository) GetUserBadges(ctx context.Context, userID int64) ([]*models.UserBadge, error) {
	query := `
		SELECT ub.id, ub.user_id, ub.badge_id, ub.awarded_at, b.name, b.icon, b.color
		FROM user_badges ub
		JOIN badges b ON b.id = ub.badge_id
		WHERE ub.user_id = $1
		ORDER BY ub.awarded_at DESC`

	rows, err := r.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user badges: %w", err)
	}
	defer rows.Close()

	var badges []*models.UserBadge
	for rows.Next() {
		ub := &models.UserBadge{}
		err := rows.Scan(
			&ub.ID,
			&ub.UserID,
			&ub.BadgeID,
			&ub.AwardedAt,
			&ub.Name,
			&ub.Icon,
			&ub.Color,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user badge: %w", err)
		}
		badges = append(badges, ub)
	}
	return badges, rows.Err()
}
