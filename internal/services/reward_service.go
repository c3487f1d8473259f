package services

import (
	"context"
	"fmt"
	"greenquest/internal/cache"
	"greenquest/internal/events"
	"greenquest/internal/models"
	"greenquest/internal/repositories"
	"greenquest/internal/validation"

	"go.uber.org/zap"
)

// RedeemAllRewardID is the catalog reward ID sentinel that redeems the
// user's entire balance instead of a specific catalog entry.
const RedeemAllRewardID = 0

// rewardService implements RewardService
type rewardService struct {
	rewardRepo      repositories.RewardRepository
	transactionRepo repositories.TransactionRepository
	notification    NotificationService
	cache           cache.Cache
	events          events.EventBus
	logger          *zap.Logger
}

// NewRewardService creates a new reward service
func NewRewardService(
	rewardRepo repositories.RewardRepository,
	transactionRepo repositories.TransactionRepository,
	notification NotificationService,
	c cache.Cache,
	eventBus events.EventBus,
	logger *zap.Logger,
) RewardService {
	return &rewardService{
		rewardRepo:      rewardRepo,
		transactionRepo: transactionRepo,
		notification:    notification,
		cache:           c,
		events:          eventBus,
		logger:          logger,
	}
}

// ===============================
// GRANTS
// ===============================

// GrantReward records a named reward grant for a user. The points land
// as an earning ledger entry so they reach the derived balance, and the
// user gets a notification about the grant.
func (s *rewardService) GrantReward(ctx context.Context, req *GrantRewardRequest) (*models.Reward, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid grant request", err)
	}

	txType := req.Type
	if txType == "" {
		txType = models.TransactionEarnedReport
	}

	// The ledger entry is the authoritative record; write it first. A
	// zero-point grant is purely honorary and skips the ledger.
	var tx *models.Transaction
	if req.Points > 0 {
		tx = &models.Transaction{
			UserID:      req.UserID,
			Type:        txType,
			Amount:      req.Points,
			Description: req.Name,
		}
		if err := s.transactionRepo.Create(ctx, tx); err != nil {
			s.logger.Error("Failed to record grant transaction", zap.Error(err), zap.Int64("user_id", req.UserID))
			return nil, NewInternalError("failed to grant reward")
		}
	}

	reward := &models.Reward{
		UserID:      req.UserID,
		Name:        req.Name,
		Description: req.Description,
		Points:      req.Points,
		IsSpent:     false,
	}

	if err := s.rewardRepo.Create(ctx, reward); err != nil {
		s.logger.Error("Failed to grant reward", zap.Error(err), zap.Int64("user_id", req.UserID))
		return nil, NewInternalError("failed to grant reward")
	}

	if tx != nil {
		if err := s.events.Publish(ctx, events.NewPointsEarnedEvent(tx.ID, tx.UserID, tx.Type, tx.Amount)); err != nil {
			s.logger.Warn("Failed to publish points earned event", zap.Error(err), zap.Int64("transaction_id", tx.ID))
		}
	}

	if s.notification != nil {
		if err := s.notification.CreateNotification(ctx, &CreateNotificationRequest{
			UserID:  req.UserID,
			Type:    models.NotificationReward,
			Message: fmt.Sprintf("You received a reward: %s (+%d points).", req.Name, req.Points),
		}); err != nil {
			s.logger.Warn("Failed to create grant notification", zap.Error(err), zap.Int64("user_id", req.UserID))
		}
	}

	s.invalidateRewardCaches(ctx, req.UserID)

	s.logger.Info("Reward granted",
		zap.Int64("reward_id", reward.ID),
		zap.Int64("user_id", reward.UserID),
		zap.String("name", reward.Name),
		zap.Int("points", reward.Points),
	)

	return reward, nil
}

// GetUserRewards lists a user's reward grants
func (s *rewardService) GetUserRewards(ctx context.Context, userID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Reward], error) {
	if userID <= 0 {
		return nil, NewValidationError("invalid user ID", nil)
	}

	result, err := s.rewardRepo.GetByUserID(ctx, userID, params)
	if err != nil {
		return nil, NewInternalError("failed to list rewards")
	}
	return result, nil
}

// ===============================
// REDEMPTION
// ===============================

// RedeemReward redeems points against a catalog reward, or the entire
// balance when the catalog reward ID is the redeem-all sentinel. The
// balance check happens before any write; an insufficient balance
// leaves the ledger and grant store untouched.
func (s *rewardService) RedeemReward(ctx context.Context, req *RedeemRewardRequest) (*RedemptionResult, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid redemption request", err)
	}

	balance, err := s.transactionRepo.GetBalance(ctx, req.UserID)
	if err != nil {
		return nil, NewInternalError("failed to compute balance")
	}

	var catalogReward *models.CatalogReward
	var cost int
	var description string

	if req.CatalogRewardID == RedeemAllRewardID {
		if balance <= 0 {
			return nil, NewInsufficientBalanceError(balance, 1)
		}
		cost = balance
		description = "Redeemed full point balance"
	} else {
		catalogReward, err = s.rewardRepo.GetCatalogRewardByID(ctx, req.CatalogRewardID)
		if err != nil {
			return nil, NewInternalError("failed to load catalog reward")
		}
		if catalogReward == nil || !catalogReward.IsActive {
			return nil, NewNotFoundError("catalog reward not found")
		}
		if balance < catalogReward.Cost {
			return nil, NewInsufficientBalanceError(balance, catalogReward.Cost)
		}
		cost = catalogReward.Cost
		description = fmt.Sprintf("Redeemed reward: %s", catalogReward.Name)
	}

	tx := &models.Transaction{
		UserID:      req.UserID,
		Type:        models.TransactionRedeemed,
		Amount:      cost,
		Description: description,
	}
	if err := s.transactionRepo.Create(ctx, tx); err != nil {
		s.logger.Error("Failed to record redemption", zap.Error(err), zap.Int64("user_id", req.UserID))
		return nil, NewInternalError("failed to record redemption")
	}

	// Only a redeem-all zeroes the grant rows. A catalog redemption
	// spends from the derived balance and leaves grants untouched, so
	// the spent flags keep meaning "consumed by a full redemption".
	var marked int
	if req.CatalogRewardID == RedeemAllRewardID {
		marked, err = s.rewardRepo.MarkAllSpent(ctx, req.UserID)
		if err != nil {
			// The ledger entry stands; the spent flags are presentation
			// state and will be caught up on the next redemption.
			s.logger.Error("Failed to mark grants spent after redemption",
				zap.Error(err),
				zap.Int64("user_id", req.UserID),
				zap.Int64("transaction_id", tx.ID),
			)
			marked = 0
		}
	}

	if err := s.events.Publish(ctx, events.NewPointsRedeemedEvent(tx.ID, req.UserID, req.CatalogRewardID, cost)); err != nil {
		s.logger.Warn("Failed to publish redemption event", zap.Error(err), zap.Int64("transaction_id", tx.ID))
	}

	if s.notification != nil {
		message := fmt.Sprintf("You redeemed %d points.", cost)
		if catalogReward != nil {
			message = fmt.Sprintf("You redeemed %d points for %s.", cost, catalogReward.Name)
		}
		if err := s.notification.CreateNotification(ctx, &CreateNotificationRequest{
			UserID:  req.UserID,
			Type:    models.NotificationReward,
			Message: message,
		}); err != nil {
			s.logger.Warn("Failed to create redemption notification", zap.Error(err), zap.Int64("user_id", req.UserID))
		}
	}

	s.invalidateRewardCaches(ctx, req.UserID)

	s.logger.Info("Reward redeemed",
		zap.Int64("user_id", req.UserID),
		zap.Int64("catalog_reward_id", req.CatalogRewardID),
		zap.Int("points_spent", cost),
		zap.Int("new_balance", balance-cost),
	)

	return &RedemptionResult{
		Transaction:   tx,
		CatalogReward: catalogReward,
		PointsSpent:   cost,
		NewBalance:    balance - cost,
		GrantsMarked:  marked,
	}, nil
}

// ===============================
// CATALOG
// ===============================

// GetAvailableRewards lists active catalog rewards. For a known user
// the listing leads with the redeem-all sentinel entry: ID zero, priced
// at their current balance. Only the catalog rows are cached; the
// sentinel is computed per call so its price tracks the ledger.
func (s *rewardService) GetAvailableRewards(ctx context.Context, userID int64) ([]*models.CatalogReward, error) {
	cacheKey := "rewards:catalog:active"
	var catalog []*models.CatalogReward
	if cached, found := s.cache.Get(ctx, cacheKey); found {
		if rewards, ok := cached.([]*models.CatalogReward); ok {
			catalog = rewards
		}
	}

	if catalog == nil {
		rewards, err := s.rewardRepo.ListCatalogRewards(ctx, true)
		if err != nil {
			return nil, NewInternalError("failed to list catalog rewards")
		}
		catalog = rewards
		s.cache.Set(ctx, cacheKey, catalog, cache.MediumTTL)
	}

	if userID <= 0 {
		return catalog, nil
	}

	balance, err := s.transactionRepo.GetBalance(ctx, userID)
	if err != nil {
		return nil, NewInternalError("failed to compute balance")
	}

	listing := make([]*models.CatalogReward, 0, len(catalog)+1)
	listing = append(listing, &models.CatalogReward{
		ID:       RedeemAllRewardID,
		Name:     "Redeem all points",
		Cost:     balance,
		IsActive: true,
	})
	return append(listing, catalog...), nil
}

// CreateCatalogReward creates an admin-managed catalog entry
func (s *rewardService) CreateCatalogReward(ctx context.Context, req *CreateCatalogRewardRequest) (*models.CatalogReward, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid catalog reward request", err)
	}

	reward := &models.CatalogReward{
		Name:        req.Name,
		Description: req.Description,
		Cost:        req.Cost,
		IsActive:    req.IsActive,
	}

	if err := s.rewardRepo.CreateCatalogReward(ctx, reward); err != nil {
		s.logger.Error("Failed to create catalog reward", zap.Error(err), zap.String("name", req.Name))
		return nil, NewInternalError("failed to create catalog reward")
	}

	s.cache.Delete(ctx, "rewards:catalog:active")

	s.logger.Info("Catalog reward created",
		zap.Int64("reward_id", reward.ID),
		zap.String("name", reward.Name),
		zap.Int("cost", reward.Cost),
	)

	return reward, nil
}

// UpdateCatalogReward updates a catalog entry
func (s *rewardService) UpdateCatalogReward(ctx context.Context, req *UpdateCatalogRewardRequest) (*models.CatalogReward, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid catalog reward request", err)
	}

	reward, err := s.rewardRepo.GetCatalogRewardByID(ctx, req.ID)
	if err != nil {
		return nil, NewInternalError("failed to load catalog reward")
	}
	if reward == nil {
		return nil, NewNotFoundError("catalog reward not found")
	}

	if req.Name != nil {
		reward.Name = *req.Name
	}
	if req.Description != nil {
		reward.Description = req.Description
	}
	if req.Cost != nil {
		reward.Cost = *req.Cost
	}
	if req.IsActive != nil {
		reward.IsActive = *req.IsActive
	}

	if err := s.rewardRepo.UpdateCatalogReward(ctx, reward); err != nil {
		s.logger.Error("Failed to update catalog reward", zap.Error(err), zap.Int64("reward_id", req.ID))
		return nil, NewInternalError("failed to update catalog reward")
	}

	s.cache.Delete(ctx, "rewards:catalog:active")

	return reward, nil
}

// invalidateRewardCaches drops cached reward data for a user
func (s *rewardService) invalidateRewardCaches(ctx context.Context, userID int64) {
	keys := []string{
		fmt.Sprintf("user:%d:balance", userID),
		fmt.Sprintf("user:%d:progress", userID),
	}
	for _, key := range keys {
		if err := s.cache.Delete(ctx, key); err != nil {
			s.logger.Debug("Failed to invalidate cache key", zap.String("key", key), zap.Error(err))
		}
	}
}
