package repositories

import (
	"context"
	"fmt"
	"greenquest/internal/database"
	"greenquest/internal/models"
	"time"

	"go.uber.org/zap"
)

type transactionRepository struct {
	*BaseRepository
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *database.Manager, logger *zap.Logger) TransactionRepository {
	return &transactionRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// Create appends a ledger entry. Entries are never updated or deleted.
func (r *transactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	query := `
		INSERT INTO transactions (user_id, type, amount, description, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	tx.CreatedAt = time.Now()

	err := r.QueryRowContext(ctx, query,
		tx.UserID,
		tx.Type,
		tx.Amount,
		tx.Description,
		tx.CreatedAt,
	).Scan(&tx.ID)

	if err != nil {
		r.GetLogger().Error("Failed to create transaction",
			zap.Error(err),
			zap.Int64("user_id", tx.UserID),
			zap.String("type", tx.Type),
			zap.Int("amount", tx.Amount),
		)
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

// GetByUserID retrieves a user's ledger entries with pagination
func (r *transactionRepository) GetByUserID(ctx context.Context, userID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Transaction], error) {
	params = r.NormalizePagination(params)

	countQuery := `SELECT COUNT(*) FROM transactions WHERE user_id = $1`
	total, err := r.GetTotalCount(ctx, countQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count transactions: %w", err)
	}

	query := `
		SELECT id, user_id, type, amount, description, created_at
		FROM transactions
		WHERE user_id = $1`
	clause, pageArgs := r.OrderLimitOffset(params, 2)
	query += clause
	args := append([]interface{}{userID}, pageArgs...)

	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*models.Transaction
	for rows.Next() {
		tx := &models.Transaction{}
		err := rows.Scan(
			&tx.ID,
			&tx.UserID,
			&tx.Type,
			&tx.Amount,
			&tx.Description,
			&tx.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return &models.PaginatedResponse[*models.Transaction]{
		Data:       transactions,
		Pagination: r.BuildPaginationMeta(params, total),
	}, nil
}

// GetBalance folds the ledger into a balance: earned types add,
// everything else subtracts. Clamped at zero against historical data
// written before redemptions checked the balance.
func (r *transactionRepository) GetBalance(ctx context.Context, userID int64) (int, error) {
	query := `
		SELECT COALESCE(SUM(
			CASE WHEN type IN ('earned_report', 'earned_collect') THEN amount ELSE -amount END
		), 0)
		FROM transactions
		WHERE user_id = $1`

	var balance int
	err := r.QueryRowContext(ctx, query, userID).Scan(&balance)
	if err != nil {
		r.GetLogger().Error("Failed to compute balance", zap.Error(err), zap.Int64("user_id", userID))
		return 0, fmt.Errorf("failed to compute balance: %w", err)
	}

	if balance < 0 {
		balance = 0
	}
	return balance, nil
}

// CountRedeemedByUser counts a user's redemption entries
func (r *transactionRepository) CountRedeemedByUser(ctx context.Context, userID int64) (int, error) {
	query := `SELECT COUNT(*) FROM transactions WHERE user_id = $1 AND type = 'redeemed'`

	var count int
	err := r.QueryRowContext(ctx, query, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count redemptions: %w", err)
	}
	return count, nil
}

// SumEarnedByUser totals lifetime earned points, ignoring redemptions
func (r *transactionRepository) SumEarnedByUser(ctx context.Context, userID int64) (int, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE user_id = $1 AND type IN ('earned_report', 'earned_collect')`

	var total int
	err := r.QueryRowContext(ctx, query, userID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum earned points: %w", err)
	}
	return total, nil
}
