package services

import (
	"context"
	"greenquest/internal/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func snapshotProviderFor(snapshot *models.ProgressSnapshot) SnapshotProvider {
	return func(ctx context.Context, userID int64) (*models.ProgressSnapshot, error) {
		return snapshot, nil
	}
}

func TestCheckAndAwardBadges(t *testing.T) {
	ctx := context.Background()

	t.Run("satisfied badges are awarded with one aggregate notification", func(t *testing.T) {
		var awardedIDs []int64
		badgeRepo := &fakeBadgeRepo{
			listActive: func(ctx context.Context) ([]*models.Badge, error) {
				return []*models.Badge{
					{ID: 1, Name: "First Steps", CriteriaType: models.CriteriaFirstWasteCollection},
					{ID: 2, Name: "Collector", CriteriaType: models.CriteriaWasteCollection, CriteriaValue: 100},
					{ID: 3, Name: "Reporter", CriteriaType: models.CriteriaReportsSubmitted, CriteriaValue: 5},
				}, nil
			},
			awardBadges: func(ctx context.Context, userID int64, badgeIDs []int64) (int, error) {
				awardedIDs = badgeIDs
				return len(badgeIDs), nil
			},
		}
		notifier := &fakeNotifier{}
		bus := &fakeEventBus{}
		snapshot := &models.ProgressSnapshot{WasteCollected: 150, ReportsSubmitted: 3}
		svc := NewBadgeService(badgeRepo, notifier, snapshotProviderFor(snapshot), bus, zap.NewNop())

		result, err := svc.CheckAndAwardBadges(ctx, 7)
		require.NoError(t, err)

		assert.Equal(t, 2, result.AwardedCount)
		assert.Equal(t, []int64{1, 2}, awardedIDs)
		assert.Equal(t, []string{"badges.awarded"}, bus.eventTypes())

		require.Len(t, notifier.created, 1, "multiple badges collapse into one notification")
		assert.Equal(t, models.NotificationBadge, notifier.created[0].Type)
		assert.Contains(t, notifier.created[0].Message, "2 new badges")
	})

	t.Run("single badge notification counts one badge", func(t *testing.T) {
		badgeRepo := &fakeBadgeRepo{
			listActive: func(ctx context.Context) ([]*models.Badge, error) {
				return []*models.Badge{
					{ID: 1, Name: "First Steps", CriteriaType: models.CriteriaFirstWasteCollection},
				}, nil
			},
		}
		notifier := &fakeNotifier{}
		snapshot := &models.ProgressSnapshot{WasteCollected: 10}
		svc := NewBadgeService(badgeRepo, notifier, snapshotProviderFor(snapshot), &fakeEventBus{}, zap.NewNop())

		result, err := svc.CheckAndAwardBadges(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, 1, result.AwardedCount)

		require.Len(t, notifier.created, 1)
		assert.Equal(t, "You earned 1 new badge: First Steps!", notifier.created[0].Message)
	})

	t.Run("already awarded badges are not re-evaluated", func(t *testing.T) {
		var awardCalls int
		badgeRepo := &fakeBadgeRepo{
			listActive: func(ctx context.Context) ([]*models.Badge, error) {
				return []*models.Badge{
					{ID: 1, Name: "First Steps", CriteriaType: models.CriteriaFirstWasteCollection},
				}, nil
			},
			getAwardedBadgeIDs: func(ctx context.Context, userID int64) (map[int64]bool, error) {
				return map[int64]bool{1: true}, nil
			},
			awardBadges: func(ctx context.Context, userID int64, badgeIDs []int64) (int, error) {
				awardCalls++
				return len(badgeIDs), nil
			},
		}
		snapshot := &models.ProgressSnapshot{WasteCollected: 10}
		svc := NewBadgeService(badgeRepo, &fakeNotifier{}, snapshotProviderFor(snapshot), &fakeEventBus{}, zap.NewNop())

		result, err := svc.CheckAndAwardBadges(ctx, 7)
		require.NoError(t, err)
		assert.Zero(t, result.AwardedCount)
		assert.Zero(t, awardCalls)
	})

	t.Run("concurrent pass that won the race suppresses the notification", func(t *testing.T) {
		badgeRepo := &fakeBadgeRepo{
			listActive: func(ctx context.Context) ([]*models.Badge, error) {
				return []*models.Badge{
					{ID: 1, Name: "First Steps", CriteriaType: models.CriteriaFirstWasteCollection},
				}, nil
			},
			awardBadges: func(ctx context.Context, userID int64, badgeIDs []int64) (int, error) {
				// Another pass inserted the row first; ON CONFLICT ate ours.
				return 0, nil
			},
		}
		notifier := &fakeNotifier{}
		bus := &fakeEventBus{}
		snapshot := &models.ProgressSnapshot{WasteCollected: 10}
		svc := NewBadgeService(badgeRepo, notifier, snapshotProviderFor(snapshot), bus, zap.NewNop())

		result, err := svc.CheckAndAwardBadges(ctx, 7)
		require.NoError(t, err)
		assert.Zero(t, result.AwardedCount)
		assert.Empty(t, notifier.created)
		assert.Empty(t, bus.published)
	})

	t.Run("unknown criteria type is skipped, not fatal", func(t *testing.T) {
		badgeRepo := &fakeBadgeRepo{
			listActive: func(ctx context.Context) ([]*models.Badge, error) {
				return []*models.Badge{
					{ID: 1, Name: "Legacy", CriteriaType: "moon_phase"},
					{ID: 2, Name: "First Steps", CriteriaType: models.CriteriaFirstWasteCollection},
				}, nil
			},
		}
		snapshot := &models.ProgressSnapshot{WasteCollected: 10}
		svc := NewBadgeService(badgeRepo, &fakeNotifier{}, snapshotProviderFor(snapshot), &fakeEventBus{}, zap.NewNop())

		result, err := svc.CheckAndAwardBadges(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, 1, result.SkippedCount)
		assert.Equal(t, 1, result.AwardedCount)
	})

	t.Run("no satisfied badges means no writes at all", func(t *testing.T) {
		var awardCalls int
		badgeRepo := &fakeBadgeRepo{
			listActive: func(ctx context.Context) ([]*models.Badge, error) {
				return []*models.Badge{
					{ID: 2, Name: "Collector", CriteriaType: models.CriteriaWasteCollection, CriteriaValue: 100},
				}, nil
			},
			awardBadges: func(ctx context.Context, userID int64, badgeIDs []int64) (int, error) {
				awardCalls++
				return 0, nil
			},
		}
		snapshot := &models.ProgressSnapshot{WasteCollected: 20}
		svc := NewBadgeService(badgeRepo, &fakeNotifier{}, snapshotProviderFor(snapshot), &fakeEventBus{}, zap.NewNop())

		result, err := svc.CheckAndAwardBadges(ctx, 7)
		require.NoError(t, err)
		assert.Zero(t, result.AwardedCount)
		assert.Zero(t, awardCalls)
	})
}

func TestCreateBadge(t *testing.T) {
	ctx := context.Background()

	t.Run("valid criteria type is accepted", func(t *testing.T) {
		badgeRepo := &fakeBadgeRepo{
			create: func(ctx context.Context, badge *models.Badge) error {
				badge.ID = 4
				return nil
			},
		}
		svc := NewBadgeService(badgeRepo, &fakeNotifier{}, nil, &fakeEventBus{}, zap.NewNop())

		badge, err := svc.CreateBadge(ctx, &CreateBadgeRequest{
			Name:          "Eco Warrior",
			CriteriaType:  models.CriteriaCO2Offset,
			CriteriaValue: 50,
			IsActive:      true,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(4), badge.ID)
	})

	t.Run("unknown criteria type is rejected at write time", func(t *testing.T) {
		var created bool
		badgeRepo := &fakeBadgeRepo{
			create: func(ctx context.Context, badge *models.Badge) error {
				created = true
				return nil
			},
		}
		svc := NewBadgeService(badgeRepo, &fakeNotifier{}, nil, &fakeEventBus{}, zap.NewNop())

		_, err := svc.CreateBadge(ctx, &CreateBadgeRequest{
			Name:         "Mystery",
			CriteriaType: "moon_phase",
		})
		assert.True(t, IsValidationError(err))
		assert.False(t, created)
	})
}
