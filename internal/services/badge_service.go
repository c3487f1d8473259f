package services

import (
	"context"
	"fmt"
	"greenquest/internal/events"
	"greenquest/internal/models"
	"greenquest/internal/repositories"
	"greenquest/internal/validation"
	"strings"
	"time"

	"go.uber.org/zap"
)

// SnapshotProvider computes a user's progress snapshot. Taking it as a
// function keeps the badge service free of a ProgressService dependency.
type SnapshotProvider func(ctx context.Context, userID int64) (*models.ProgressSnapshot, error)

// badgeService implements BadgeService. Awarding is idempotent: the
// in-memory awarded set filters the obvious duplicates and the
// (user_id, badge_id) uniqueness constraint catches concurrent races.
type badgeService struct {
	badgeRepo    repositories.BadgeRepository
	notification NotificationService
	snapshot     SnapshotProvider
	events       events.EventBus
	logger       *zap.Logger
}

// NewBadgeService creates a new badge service
func NewBadgeService(
	badgeRepo repositories.BadgeRepository,
	notification NotificationService,
	snapshot SnapshotProvider,
	eventBus events.EventBus,
	logger *zap.Logger,
) BadgeService {
	return &badgeService{
		badgeRepo:    badgeRepo,
		notification: notification,
		snapshot:     snapshot,
		events:       eventBus,
		logger:       logger,
	}
}

// ===============================
// CATALOG MANAGEMENT
// ===============================

// CreateBadge creates a badge definition. Criteria are validated here,
// at write time, so evaluation never sees a malformed active badge
// created through this path.
func (s *badgeService) CreateBadge(ctx context.Context, req *CreateBadgeRequest) (*models.Badge, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid badge request", err)
	}
	if !models.ValidateBadgeCriteriaType(req.CriteriaType) {
		return nil, NewValidationError(fmt.Sprintf("unknown criteria type %q", req.CriteriaType), nil)
	}

	badge := &models.Badge{
		Name:          req.Name,
		Description:   req.Description,
		Icon:          req.Icon,
		Color:         req.Color,
		CriteriaType:  req.CriteriaType,
		CriteriaValue: req.CriteriaValue,
		IsActive:      req.IsActive,
	}

	if err := s.badgeRepo.Create(ctx, badge); err != nil {
		s.logger.Error("Failed to create badge", zap.Error(err), zap.String("name", req.Name))
		return nil, NewInternalError("failed to create badge")
	}

	s.logger.Info("Badge created",
		zap.Int64("badge_id", badge.ID),
		zap.String("name", badge.Name),
		zap.String("criteria_type", badge.CriteriaType),
	)

	return badge, nil
}

// UpdateBadge updates a badge definition
func (s *badgeService) UpdateBadge(ctx context.Context, req *UpdateBadgeRequest) (*models.Badge, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid badge request", err)
	}

	badge, err := s.badgeRepo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, NewInternalError("failed to load badge")
	}
	if badge == nil {
		return nil, NewNotFoundError("badge not found")
	}

	if req.Name != nil {
		badge.Name = *req.Name
	}
	if req.Description != nil {
		badge.Description = *req.Description
	}
	if req.Icon != nil {
		badge.Icon = *req.Icon
	}
	if req.Color != nil {
		badge.Color = *req.Color
	}
	if req.CriteriaType != nil {
		if !models.ValidateBadgeCriteriaType(*req.CriteriaType) {
			return nil, NewValidationError(fmt.Sprintf("unknown criteria type %q", *req.CriteriaType), nil)
		}
		badge.CriteriaType = *req.CriteriaType
	}
	if req.CriteriaValue != nil {
		badge.CriteriaValue = *req.CriteriaValue
	}
	if req.IsActive != nil {
		badge.IsActive = *req.IsActive
	}

	if err := s.badgeRepo.Update(ctx, badge); err != nil {
		s.logger.Error("Failed to update badge", zap.Error(err), zap.Int64("badge_id", req.ID))
		return nil, NewInternalError("failed to update badge")
	}

	return badge, nil
}

// ListBadges lists badge definitions
func (s *badgeService) ListBadges(ctx context.Context, includeInactive bool) ([]*models.Badge, error) {
	var badges []*models.Badge
	var err error
	if includeInactive {
		badges, err = s.badgeRepo.ListAll(ctx)
	} else {
		badges, err = s.badgeRepo.ListActive(ctx)
	}
	if err != nil {
		return nil, NewInternalError("failed to list badges")
	}
	return badges, nil
}

// GetUserBadges lists a user's awarded badges
func (s *badgeService) GetUserBadges(ctx context.Context, userID int64) ([]*models.UserBadge, error) {
	if userID <= 0 {
		return nil, NewValidationError("invalid user ID", nil)
	}

	badges, err := s.badgeRepo.GetUserBadges(ctx, userID)
	if err != nil {
		return nil, NewInternalError("failed to load user badges")
	}
	return badges, nil
}

// ===============================
// AWARDING
// ===============================

// CheckAndAwardBadges evaluates every active badge against the user's
// progress and awards the newly satisfied ones. Badges with an unknown
// criteria type (from data written before criteria validation existed)
// are skipped with a warning instead of failing the pass. However many
// badges land, the user gets one aggregate notification.
func (s *badgeService) CheckAndAwardBadges(ctx context.Context, userID int64) (*BadgeAwardResult, error) {
	if userID <= 0 {
		return nil, NewValidationError("invalid user ID", nil)
	}
	if s.snapshot == nil {
		return nil, NewInternalError("progress snapshot provider not configured")
	}

	snapshot, err := s.snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}

	badges, err := s.badgeRepo.ListActive(ctx)
	if err != nil {
		return nil, NewInternalError("failed to list active badges")
	}

	awarded, err := s.badgeRepo.GetAwardedBadgeIDs(ctx, userID)
	if err != nil {
		return nil, NewInternalError("failed to load awarded badges")
	}

	result := &BadgeAwardResult{
		UserID:      userID,
		EvaluatedAt: time.Now(),
	}

	var newBadges []*models.Badge
	for _, badge := range badges {
		if awarded[badge.ID] {
			continue
		}

		satisfied, known := badge.Satisfies(snapshot)
		if !known {
			result.SkippedCount++
			s.logger.Warn("Skipping badge with unknown criteria type",
				zap.Int64("badge_id", badge.ID),
				zap.String("criteria_type", badge.CriteriaType),
			)
			continue
		}
		if satisfied {
			newBadges = append(newBadges, badge)
		}
	}

	if len(newBadges) == 0 {
		return result, nil
	}

	badgeIDs := make([]int64, len(newBadges))
	badgeNames := make([]string, len(newBadges))
	for i, b := range newBadges {
		badgeIDs[i] = b.ID
		badgeNames[i] = b.Name
	}

	inserted, err := s.badgeRepo.AwardBadges(ctx, userID, badgeIDs)
	if err != nil {
		s.logger.Error("Failed to award badges", zap.Error(err), zap.Int64("user_id", userID))
		return nil, NewInternalError("failed to award badges")
	}

	result.NewBadges = newBadges
	result.AwardedCount = inserted

	// A concurrent pass may have inserted some rows first; only notify
	// when this pass actually landed at least one.
	if inserted > 0 {
		if err := s.events.Publish(ctx, events.NewBadgesAwardedEvent(userID, badgeIDs, badgeNames)); err != nil {
			s.logger.Warn("Failed to publish badges awarded event", zap.Error(err), zap.Int64("user_id", userID))
		}

		if s.notification != nil {
			message := fmt.Sprintf("You earned 1 new badge: %s!", badgeNames[0])
			if len(badgeNames) > 1 {
				message = fmt.Sprintf("You earned %d new badges: %s!", len(badgeNames), strings.Join(badgeNames, ", "))
			}
			if err := s.notification.CreateNotification(ctx, &CreateNotificationRequest{
				UserID:  userID,
				Type:    models.NotificationBadge,
				Message: message,
			}); err != nil {
				s.logger.Warn("Failed to create badge notification", zap.Error(err), zap.Int64("user_id", userID))
			}
		}
	}

	s.logger.Info("Badge evaluation completed",
		zap.Int64("user_id", userID),
		zap.Int("awarded", inserted),
		zap.Int("skipped", result.SkippedCount),
	)

	return result, nil
}
