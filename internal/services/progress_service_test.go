package services

import (
	"context"
	"greenquest/internal/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newProgressServiceForTest(userRepo *fakeUserRepo, reportRepo *fakeReportRepo, txRepo *fakeTransactionRepo, notifier *fakeNotifier, bus *fakeEventBus) ProgressService {
	return NewProgressService(userRepo, reportRepo, txRepo, notifier, newTestCache(), bus, zap.NewNop())
}

func TestGetUserProgress(t *testing.T) {
	ctx := context.Background()

	t.Run("snapshot is derived from the source tables", func(t *testing.T) {
		userRepo := &fakeUserRepo{
			getByID: func(ctx context.Context, id int64) (*models.User, error) {
				return &models.User{ID: id, Level: 3, IsActive: true}, nil
			},
		}
		reportRepo := &fakeReportRepo{
			sumCompletedAmountByUser: func(ctx context.Context, userID int64) (float64, error) {
				return 80, nil
			},
			countCompletedByUser: func(ctx context.Context, userID int64) (int, error) {
				return 6, nil
			},
			countCompletedByCollector: func(ctx context.Context, collectorID int64) (int, error) {
				return 2, nil
			},
		}
		txRepo := &fakeTransactionRepo{
			sumEarnedByUser: func(ctx context.Context, userID int64) (int, error) {
				return 100, nil
			},
			countRedeemedByUser: func(ctx context.Context, userID int64) (int, error) {
				return 1, nil
			},
		}
		svc := newProgressServiceForTest(userRepo, reportRepo, txRepo, &fakeNotifier{}, &fakeEventBus{})

		snapshot, err := svc.GetUserProgress(ctx, 7)
		require.NoError(t, err)

		assert.Equal(t, int64(7), snapshot.UserID)
		assert.Equal(t, 80.0, snapshot.WasteCollected)
		assert.Equal(t, 40.0, snapshot.CO2Offset, "CO2 offset is half the collected kilograms")
		assert.Equal(t, 6, snapshot.ReportsSubmitted)
		assert.Equal(t, 1, snapshot.RewardsRedeemed)
		assert.Equal(t, 100, snapshot.PointsEarned)
		assert.Equal(t, 3, snapshot.UserLevel)
		assert.Equal(t, 2, snapshot.PickupTasksCompleted)
	})

	t.Run("unknown user", func(t *testing.T) {
		svc := newProgressServiceForTest(&fakeUserRepo{}, &fakeReportRepo{}, &fakeTransactionRepo{}, &fakeNotifier{}, &fakeEventBus{})

		_, err := svc.GetUserProgress(ctx, 7)
		assert.True(t, IsNotFoundError(err))
	})
}

func TestUpdateUserLevel(t *testing.T) {
	ctx := context.Background()

	progressFixture := func(storedLevel int, waste float64) (*fakeUserRepo, *fakeReportRepo) {
		userRepo := &fakeUserRepo{
			getByID: func(ctx context.Context, id int64) (*models.User, error) {
				return &models.User{ID: id, Level: storedLevel, IsActive: true}, nil
			},
		}
		reportRepo := &fakeReportRepo{
			sumCompletedAmountByUser: func(ctx context.Context, userID int64) (float64, error) {
				return waste, nil
			},
		}
		return userRepo, reportRepo
	}

	t.Run("crossing a threshold persists the new level", func(t *testing.T) {
		userRepo, reportRepo := progressFixture(1, 60)
		var persisted int
		userRepo.updateLevel = func(ctx context.Context, userID int64, level int) error {
			persisted = level
			return nil
		}
		notifier := &fakeNotifier{}
		bus := &fakeEventBus{}
		svc := newProgressServiceForTest(userRepo, reportRepo, &fakeTransactionRepo{}, notifier, bus)

		result, err := svc.UpdateUserLevel(ctx, 7)
		require.NoError(t, err)

		assert.True(t, result.LeveledUp)
		assert.Equal(t, 1, result.OldLevel)
		assert.Equal(t, 2, result.NewLevel)
		assert.Equal(t, 2, persisted)
		assert.Equal(t, []string{"user.level_changed"}, bus.eventTypes())
		require.Len(t, notifier.created, 1)
		assert.Equal(t, models.NotificationLevelUp, notifier.created[0].Type)
	})

	t.Run("unchanged level writes nothing", func(t *testing.T) {
		userRepo, reportRepo := progressFixture(2, 60)
		var writes int
		userRepo.updateLevel = func(ctx context.Context, userID int64, level int) error {
			writes++
			return nil
		}
		bus := &fakeEventBus{}
		svc := newProgressServiceForTest(userRepo, reportRepo, &fakeTransactionRepo{}, &fakeNotifier{}, bus)

		result, err := svc.UpdateUserLevel(ctx, 7)
		require.NoError(t, err)

		assert.False(t, result.LeveledUp)
		assert.Zero(t, writes)
		assert.Empty(t, bus.published)
	})

	t.Run("level never regresses below the stored maximum", func(t *testing.T) {
		// Snapshot only qualifies for level 2, but the user already
		// reached 4.
		userRepo, reportRepo := progressFixture(4, 60)
		var writes int
		userRepo.updateLevel = func(ctx context.Context, userID int64, level int) error {
			writes++
			return nil
		}
		svc := newProgressServiceForTest(userRepo, reportRepo, &fakeTransactionRepo{}, &fakeNotifier{}, &fakeEventBus{})

		result, err := svc.UpdateUserLevel(ctx, 7)
		require.NoError(t, err)

		assert.False(t, result.LeveledUp)
		assert.Equal(t, 4, result.OldLevel)
		assert.Equal(t, 4, result.NewLevel)
		assert.Zero(t, writes)
	})
}
