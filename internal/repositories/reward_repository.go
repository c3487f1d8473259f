package repositories

import (
	"context"
	"fmt"
	"greenquest/internal/database"
	"greenquest/internal/models"
	"time"

	"go.uber.org/zap"
)

type rewardRepository struct {
	*BaseRepository
}

// NewRewardRepository creates a new reward repository
func NewRewardRepository(db *database.Manager, logger *zap.Logger) RewardRepository {
	return &rewardRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// ===============================
// PER-USER GRANTS
// ===============================

// Create creates a reward grant for a user
func (r *rewardRepository) Create(ctx context.Context, reward *models.Reward) error {
	query := `
		INSERT INTO rewards (user_id, name, description, points, is_spent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	reward.CreatedAt = time.Now()

	err := r.QueryRowContext(ctx, query,
		reward.UserID,
		reward.Name,
		reward.Description,
		reward.Points,
		reward.IsSpent,
		reward.CreatedAt,
	).Scan(&reward.ID)

	if err != nil {
		r.GetLogger().Error("Failed to create reward grant",
			zap.Error(err),
			zap.Int64("user_id", reward.UserID),
			zap.String("name", reward.Name),
		)
		return fmt.Errorf("failed to create reward: %w", err)
	}

	return nil
}

// GetByID retrieves a reward grant by ID
func (r *rewardRepository) GetByID(ctx context.Context, id int64) (*models.Reward, error) {
	query := `
		SELECT id, user_id, name, description, points, is_spent, created_at, spent_at
		FROM rewards
		WHERE id = $1`

	reward := &models.Reward{}
	err := r.QueryRowContext(ctx, query, id).Scan(
		&reward.ID,
		&reward.UserID,
		&reward.Name,
		&reward.Description,
		&reward.Points,
		&reward.IsSpent,
		&reward.CreatedAt,
		&reward.SpentAt,
	)

	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		r.GetLogger().Error("Failed to get reward by ID", zap.Error(err), zap.Int64("reward_id", id))
		return nil, fmt.Errorf("failed to get reward: %w", err)
	}

	return reward, nil
}

// GetByUserID retrieves a user's reward grants with pagination
func (r *rewardRepository) GetByUserID(ctx context.Context, userID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Reward], error) {
	params = r.NormalizePagination(params)

	countQuery := `SELECT COUNT(*) FROM rewards WHERE user_id = $1`
	total, err := r.GetTotalCount(ctx, countQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count rewards: %w", err)
	}

	query := `
		SELECT id, user_id, name, description, points, is_spent, created_at, spent_at
		FROM rewards
		WHERE user_id = $1`
	clause, pageArgs := r.OrderLimitOffset(params, 2)
	query += clause
	args := append([]interface{}{userID}, pageArgs...)

	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list rewards: %w", err)
	}
	defer rows.Close()

	var rewards []*models.Reward
	for rows.Next() {
		reward := &models.Reward{}
		err := rows.Scan(
			&reward.ID,
			&reward.UserID,
			&reward.Name,
			&reward.Description,
			&reward.Points,
			&reward.IsSpent,
			&reward.CreatedAt,
			&reward.SpentAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reward: %w", err)
		}
		rewards = append(rewards, reward)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rewards: %w", err)
	}

	return &models.PaginatedResponse[*models.Reward]{
		Data:       rewards,
		Pagination: r.BuildPaginationMeta(params, total),
	}, nil
}

// MarkAllSpent flags every unspent grant for a user as spent and
// returns how many rows changed.
func (r *rewardRepository) MarkAllSpent(ctx context.Context, userID int64) (int, error) {
	query := `
		UPDATE rewards
		SET is_spent = true, spent_at = $2
		WHERE user_id = $1 AND is_spent = false`

	result, err := r.ExecContext(ctx, query, userID, time.Now())
	if err != nil {
		r.GetLogger().Error("Failed to mark rewards spent", zap.Error(err), zap.Int64("user_id", userID))
		return 0, fmt.Errorf("failed to mark rewards spent: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(rowsAffected), nil
}

// ===============================
// CATALOG
// ===============================

// GetCatalogRewardByID retrieves a catalog entry by ID
func (r *rewardRepository) GetCatalogRewardByID(ctx context.Context, id int64) (*models.CatalogReward, error) {
	query := `
		SELECT id, name, description, cost, is_active, created_at, updated_at
		FROM reward_catalog
		WHERE id = $1`

	reward := &models.CatalogReward{}
	err := r.QueryRowContext(ctx, query, id).Scan(
		&reward.ID,
		&reward.Name,
		&reward.Description,
		&reward.Cost,
		&reward.IsActive,
		&reward.CreatedAt,
		&reward.UpdatedAt,
	)

	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		r.GetLogger().Error("Failed to get catalog reward", zap.Error(err), zap.Int64("reward_id", id))
		return nil, fmt.Errorf("failed to get catalog reward: %w", err)
	}

	return reward, nil
}

// ListCatalogRewards lists catalog entries, optionally only active ones
func (r *rewardRepository) ListCatalogRewards(ctx context.Context, activeOnly bool) ([]*models.CatalogReward, error) {
	query := `
		SELECT id, name, description, cost, is_active, created_at, updated_at
		FROM reward_catalog`
	if activeOnly {
		query += ` WHERE is_active = true`
	}
	query += ` ORDER BY cost ASC, name ASC`

	rows, err := r.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog rewards: %w", err)
	}
	defer rows.Close()

	var rewards []*models.CatalogReward
	for rows.Next() {
		reward := &models.CatalogReward{}
		err := rows.Scan(
			&reward.ID,
			&reward.Name,
			&reward.Description,
			&reward.Cost,
			&reward.IsActive,
			&reward.CreatedAt,
			&reward.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan catalog reward: %w", err)
		}
		rewards = append(rewards, reward)
	}
	return rewards, rows.Err()
}

// CreateCatalogReward creates a catalog entry
func (r *rewardRepository) CreateCatalogReward(ctx context.Context, reward *models.CatalogReward) error {
	query := `
		INSERT INTO reward_catalog (name, description, cost, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	now := time.Now()
	reward.CreatedAt = now
	reward.UpdatedAt = now

	err := r.QueryRowContext(ctx, query,
		reward.Name,
		reward.Description,
		reward.Cost,
		reward.IsActive,
		reward.CreatedAt,
		reward.UpdatedAt,
	).Scan(&reward.ID)

	if err != nil {
		r.GetLogger().Error("Failed to create catalog reward", zap.Error(err), zap.String("name", reward.Name))
		return fmt.Errorf("failed to create catalog reward: %w", err)
	}

	return nil
}

// UpdateCatalogReward updates a catalog entry
func (r *rewardRepository) UpdateCatalogReward(ctx context.Context, reward *models.CatalogReward) error {
	query := `
		UPDATE reward_catalog
		SET name = $2, description = $3, cost = $4, is_active = $5, updated_at = $6
		WHERE id = $1`

	reward.UpdatedAt = time.Now()

	result, err := r.ExecContext(ctx, query,
		reward.ID,
		reward.Name,
		reward.Description,
		reward.Cost,
		reward.IsActive,
		reward.UpdatedAt,
	)
	if err != nil {
		r.GetLogger().Error("Failed to update catalog reward", zap.Error(err), zap.Int64("reward_id", reward.ID))
		return fmt.Errorf("failed to update catalog reward: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("catalog reward not found: %d", reward.ID)
	}

	return nil
}
