package services

import (
	"context"
	"greenquest/internal/events"
	"greenquest/internal/models"
	"greenquest/internal/repositories"
	"greenquest/internal/validation"

	"go.uber.org/zap"
)

// ledgerService implements LedgerService on the append-only
// transactions table. Balances are never stored; every read folds the
// ledger so the history stays the single source of truth.
type ledgerService struct {
	transactionRepo repositories.TransactionRepository
	events          events.EventBus
	logger          *zap.Logger
}

// NewLedgerService creates a new ledger service
func NewLedgerService(
	transactionRepo repositories.TransactionRepository,
	eventBus events.EventBus,
	logger *zap.Logger,
) LedgerService {
	return &ledgerService{
		transactionRepo: transactionRepo,
		events:          eventBus,
		logger:          logger,
	}
}

// RecordTransaction appends a ledger entry
func (s *ledgerService) RecordTransaction(ctx context.Context, req *RecordTransactionRequest) (*models.Transaction, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid transaction request", err)
	}
	if !models.ValidateTransactionType(req.Type) {
		return nil, NewValidationError("unknown transaction type", nil)
	}

	tx := &models.Transaction{
		UserID:      req.UserID,
		Type:        req.Type,
		Amount:      req.Amount,
		Description: req.Description,
	}

	if err := s.transactionRepo.Create(ctx, tx); err != nil {
		s.logger.Error("Failed to record transaction",
			zap.Error(err),
			zap.Int64("user_id", req.UserID),
			zap.String("type", req.Type),
		)
		return nil, NewInternalError("failed to record transaction")
	}

	if tx.IsEarning() {
		if err := s.events.Publish(ctx, events.NewPointsEarnedEvent(tx.ID, tx.UserID, tx.Type, tx.Amount)); err != nil {
			s.logger.Warn("Failed to publish points earned event", zap.Error(err), zap.Int64("transaction_id", tx.ID))
		}
	}

	s.logger.Info("Transaction recorded",
		zap.Int64("transaction_id", tx.ID),
		zap.Int64("user_id", tx.UserID),
		zap.String("type", tx.Type),
		zap.Int("amount", tx.Amount),
	)

	return tx, nil
}

// GetBalance folds the user's ledger into their current balance
func (s *ledgerService) GetBalance(ctx context.Context, userID int64) (int, error) {
	if userID <= 0 {
		return 0, NewValidationError("invalid user ID", nil)
	}

	balance, err := s.transactionRepo.GetBalance(ctx, userID)
	if err != nil {
		return 0, NewInternalError("failed to compute balance")
	}
	return balance, nil
}

// GetTransactions lists a user's ledger entries
func (s *ledgerService) GetTransactions(ctx context.Context, userID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Transaction], error) {
	if userID <= 0 {
		return nil, NewValidationError("invalid user ID", nil)
	}

	result, err := s.transactionRepo.GetByUserID(ctx, userID, params)
	if err != nil {
		return nil, NewInternalError("failed to list transactions")
	}
	return result, nil
}
