package services

import (
	"context"
	"fmt"
	"greenquest/internal/cache"
	"greenquest/internal/events"
	"greenquest/internal/models"
	"greenquest/internal/repositories"

	"go.uber.org/zap"
)

// CO2FactorPerKg converts kilograms of collected waste to kilograms of
// CO2 offset.
const CO2FactorPerKg = 0.5

// progressService implements ProgressService. Snapshots are computed
// from the reports, rewards and transactions tables on demand; nothing
// is precomputed or stored.
type progressService struct {
	userRepo        repositories.UserRepository
	reportRepo      repositories.ReportRepository
	transactionRepo repositories.TransactionRepository
	notification    NotificationService
	cache           cache.Cache
	events          events.EventBus
	logger          *zap.Logger
}

// NewProgressService creates a new progress service
func NewProgressService(
	userRepo repositories.UserRepository,
	reportRepo repositories.ReportRepository,
	transactionRepo repositories.TransactionRepository,
	notification NotificationService,
	c cache.Cache,
	eventBus events.EventBus,
	logger *zap.Logger,
) ProgressService {
	return &progressService{
		userRepo:        userRepo,
		reportRepo:      reportRepo,
		transactionRepo: transactionRepo,
		notification:    notification,
		cache:           c,
		events:          eventBus,
		logger:          logger,
	}
}

// GetUserProgress computes a user's progress snapshot. Pure read.
func (s *progressService) GetUserProgress(ctx context.Context, userID int64) (*models.ProgressSnapshot, error) {
	if userID <= 0 {
		return nil, NewValidationError("invalid user ID", nil)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, NewInternalError("failed to load user")
	}
	if user == nil {
		return nil, NewNotFoundError("user not found")
	}

	waste, err := s.reportRepo.SumCompletedAmountByUser(ctx, userID)
	if err != nil {
		return nil, NewInternalError("failed to aggregate collected waste")
	}

	reports, err := s.reportRepo.CountCompletedByUser(ctx, userID)
	if err != nil {
		return nil, NewInternalError("failed to count completed reports")
	}

	// Redemptions are counted from the ledger: one redeemed entry per
	// redemption, regardless of how many grant rows it consumed.
	redeemed, err := s.transactionRepo.CountRedeemedByUser(ctx, userID)
	if err != nil {
		return nil, NewInternalError("failed to count redemptions")
	}

	pointsEarned, err := s.transactionRepo.SumEarnedByUser(ctx, userID)
	if err != nil {
		return nil, NewInternalError("failed to sum earned points")
	}

	pickups, err := s.reportRepo.CountCompletedByCollector(ctx, userID)
	if err != nil {
		return nil, NewInternalError("failed to count completed pickups")
	}

	return &models.ProgressSnapshot{
		UserID:               userID,
		WasteCollected:       waste,
		ReportsSubmitted:     reports,
		RewardsRedeemed:      redeemed,
		CO2Offset:            waste * CO2FactorPerKg,
		PointsEarned:         pointsEarned,
		UserLevel:            user.Level,
		PickupTasksCompleted: pickups,
	}, nil
}

// UpdateUserLevel recomputes the user's level from their snapshot and
// persists it only when it changed. Levels never regress: the stored
// level is the maximum the user has ever reached.
func (s *progressService) UpdateUserLevel(ctx context.Context, userID int64) (*LevelUpdateResult, error) {
	snapshot, err := s.GetUserProgress(ctx, userID)
	if err != nil {
		return nil, err
	}

	oldLevel := snapshot.UserLevel
	newLevel := LevelFor(snapshot)
	if newLevel < oldLevel {
		newLevel = oldLevel
	}

	result := &LevelUpdateResult{
		UserID:   userID,
		OldLevel: oldLevel,
		NewLevel: newLevel,
	}

	if newLevel == oldLevel {
		return result, nil
	}

	if err := s.userRepo.UpdateLevel(ctx, userID, newLevel); err != nil {
		return nil, NewInternalError("failed to persist level")
	}
	result.LeveledUp = true

	s.cache.Delete(ctx, fmt.Sprintf("user:%d:progress", userID))

	if err := s.events.Publish(ctx, events.NewLevelChangedEvent(userID, oldLevel, newLevel)); err != nil {
		s.logger.Warn("Failed to publish level changed event", zap.Error(err), zap.Int64("user_id", userID))
	}

	if s.notification != nil {
		if err := s.notification.CreateNotification(ctx, &CreateNotificationRequest{
			UserID:  userID,
			Type:    models.NotificationLevelUp,
			Message: fmt.Sprintf("Congratulations! You reached level %d.", newLevel),
		}); err != nil {
			s.logger.Warn("Failed to create level up notification", zap.Error(err), zap.Int64("user_id", userID))
		}
	}

	s.logger.Info("User level updated",
		zap.Int64("user_id", userID),
		zap.Int("old_level", oldLevel),
		zap.Int("new_level", newLevel),
	)

	return result, nil
}
