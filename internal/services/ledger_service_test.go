package services

import (
	"context"
	"greenquest/internal/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRecordTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("earning entry is appended and publishes an event", func(t *testing.T) {
		txRepo := &fakeTransactionRepo{
			create: func(ctx context.Context, tx *models.Transaction) error {
				tx.ID = 41
				return nil
			},
		}
		bus := &fakeEventBus{}
		svc := NewLedgerService(txRepo, bus, zap.NewNop())

		tx, err := svc.RecordTransaction(ctx, &RecordTransactionRequest{
			UserID:      7,
			Type:        models.TransactionEarnedReport,
			Amount:      10,
			Description: "Waste report #3 completed",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(41), tx.ID)
		assert.Equal(t, int64(7), tx.UserID)
		assert.Equal(t, []string{"points.earned"}, bus.eventTypes())
	})

	t.Run("redemption entry publishes no earning event", func(t *testing.T) {
		bus := &fakeEventBus{}
		svc := NewLedgerService(&fakeTransactionRepo{}, bus, zap.NewNop())

		_, err := svc.RecordTransaction(ctx, &RecordTransactionRequest{
			UserID: 7,
			Type:   models.TransactionRedeemed,
			Amount: 30,
		})
		require.NoError(t, err)
		assert.Empty(t, bus.published)
	})

	t.Run("unknown type is rejected before any write", func(t *testing.T) {
		var created bool
		txRepo := &fakeTransactionRepo{
			create: func(ctx context.Context, tx *models.Transaction) error {
				created = true
				return nil
			},
		}
		svc := NewLedgerService(txRepo, &fakeEventBus{}, zap.NewNop())

		_, err := svc.RecordTransaction(ctx, &RecordTransactionRequest{
			UserID: 7,
			Type:   "bonus",
			Amount: 10,
		})
		assert.True(t, IsValidationError(err))
		assert.False(t, created)
	})

	t.Run("non-positive amount is rejected", func(t *testing.T) {
		svc := NewLedgerService(&fakeTransactionRepo{}, &fakeEventBus{}, zap.NewNop())

		_, err := svc.RecordTransaction(ctx, &RecordTransactionRequest{
			UserID: 7,
			Type:   models.TransactionEarnedCollect,
			Amount: 0,
		})
		assert.True(t, IsValidationError(err))
	})
}

func TestGetBalance(t *testing.T) {
	ctx := context.Background()

	t.Run("folds the ledger through the repository", func(t *testing.T) {
		txRepo := &fakeTransactionRepo{
			getBalance: func(ctx context.Context, userID int64) (int, error) {
				return 120, nil
			},
		}
		svc := NewLedgerService(txRepo, &fakeEventBus{}, zap.NewNop())

		balance, err := svc.GetBalance(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, 120, balance)
	})

	t.Run("rejects invalid user ID", func(t *testing.T) {
		svc := NewLedgerService(&fakeTransactionRepo{}, &fakeEventBus{}, zap.NewNop())

		_, err := svc.GetBalance(ctx, 0)
		assert.True(t, IsValidationError(err))
	})
}
