package services

import (
	"context"
	"fmt"
	"greenquest/internal/cache"
	"greenquest/internal/events"
	"greenquest/internal/models"
	"greenquest/internal/repositories"
	"greenquest/internal/validation"
	"time"

	"go.uber.org/zap"
)

// Points awarded per completed action
const (
	PointsPerReport     = 10
	PointsPerCollection = 20
)

// reportService implements ReportService. Completion drives the
// gamification pipeline: ledger entry, reward grant, level update,
// badge evaluation. Each step runs once and failures after the ledger
// write are logged and skipped rather than rolled back; the pipeline
// is self-healing because progress is always recomputed from source
// tables.
type reportService struct {
	reportRepo  repositories.ReportRepository
	userRepo    repositories.UserRepository
	rewards     RewardService
	progress    ProgressService
	badges      BadgeService
	notifier    NotificationService
	fileService FileService
	cache       cache.Cache
	events      events.EventBus
	logger      *zap.Logger
}

// NewReportService creates a new report service
func NewReportService(
	reportRepo repositories.ReportRepository,
	userRepo repositories.UserRepository,
	rewards RewardService,
	progress ProgressService,
	badges BadgeService,
	notifier NotificationService,
	fileService FileService,
	c cache.Cache,
	eventBus events.EventBus,
	logger *zap.Logger,
) ReportService {
	return &reportService{
		reportRepo:  reportRepo,
		userRepo:    userRepo,
		rewards:     rewards,
		progress:    progress,
		badges:      badges,
		notifier:    notifier,
		fileService: fileService,
		cache:       c,
		events:      eventBus,
		logger:      logger,
	}
}

// ===============================
// CORE CRUD OPERATIONS
// ===============================

// CreateReport submits a new waste report. The amount is parsed and
// validated here so a malformed decimal is rejected instead of being
// stored as zero.
func (s *reportService) CreateReport(ctx context.Context, req *CreateReportRequest) (*models.Report, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid report request", err)
	}

	amount, err := validation.ParseAmount(req.Amount)
	if err != nil {
		return nil, NewValidationError(err.Error(), nil)
	}

	user, err := s.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, NewInternalError("failed to load user")
	}
	if user == nil || !user.IsActive {
		return nil, NewNotFoundError("user not found")
	}

	report := &models.Report{
		UserID:    req.UserID,
		Location:  req.Location,
		WasteType: req.WasteType,
		Amount:    amount,
		Status:    models.ReportStatusPending,
	}

	if req.Image != nil && s.fileService != nil {
		upload, err := s.fileService.UploadImage(ctx, req.Image)
		if err != nil {
			s.logger.Warn("Report image upload failed, continuing without image",
				zap.Error(err),
				zap.Int64("user_id", req.UserID),
			)
		} else {
			report.ImageURL = &upload.URL
			report.ImagePublicID = &upload.PublicID
		}
	}

	if err := s.reportRepo.Create(ctx, report); err != nil {
		s.logger.Error("Failed to create report", zap.Error(err), zap.Int64("user_id", req.UserID))
		return nil, NewInternalError("failed to create report")
	}

	if err := s.events.Publish(ctx, events.NewReportCreatedEvent(report.ID, report.UserID, report.WasteType, report.Amount, report.Location)); err != nil {
		s.logger.Warn("Failed to publish report created event", zap.Error(err), zap.Int64("report_id", report.ID))
	}

	s.logger.Info("Report created",
		zap.Int64("report_id", report.ID),
		zap.Int64("user_id", report.UserID),
		zap.String("waste_type", report.WasteType),
		zap.Float64("amount", report.Amount),
	)

	return report, nil
}

// GetReportByID retrieves a report
func (s *reportService) GetReportByID(ctx context.Context, id int64) (*models.Report, error) {
	if id <= 0 {
		return nil, NewValidationError("invalid report ID", nil)
	}

	report, err := s.reportRepo.GetByID(ctx, id)
	if err != nil {
		return nil, NewInternalError("failed to load report")
	}
	if report == nil {
		return nil, NewNotFoundError("report not found")
	}
	return report, nil
}

// UpdateReport updates a report's content. Only the submitter may edit,
// and only while the report is still pending.
func (s *reportService) UpdateReport(ctx context.Context, req *UpdateReportRequest) (*models.Report, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid report update request", err)
	}

	report, err := s.GetReportByID(ctx, req.ReportID)
	if err != nil {
		return nil, err
	}
	if !report.IsOwnedBy(req.UserID) {
		return nil, NewForbiddenError("cannot edit another user's report")
	}
	if report.Status != models.ReportStatusPending {
		return nil, NewBusinessError("only pending reports can be edited", "REPORT_NOT_EDITABLE")
	}

	if req.Location != nil {
		report.Location = *req.Location
	}
	if req.WasteType != nil {
		report.WasteType = *req.WasteType
	}
	if req.Amount != nil {
		amount, err := validation.ParseAmount(*req.Amount)
		if err != nil {
			return nil, NewValidationError(err.Error(), nil)
		}
		report.Amount = amount
	}

	if err := s.reportRepo.Update(ctx, report); err != nil {
		return nil, NewInternalError("failed to update report")
	}

	return report, nil
}

// DeleteReport removes a pending report. Submitter only.
func (s *reportService) DeleteReport(ctx context.Context, reportID, userID int64) error {
	report, err := s.GetReportByID(ctx, reportID)
	if err != nil {
		return err
	}
	if !report.IsOwnedBy(userID) {
		return NewForbiddenError("cannot delete another user's report")
	}
	if report.Status != models.ReportStatusPending {
		return NewBusinessError("only pending reports can be deleted", "REPORT_NOT_DELETABLE")
	}

	if report.ImagePublicID != nil && s.fileService != nil {
		if err := s.fileService.DeleteFile(ctx, *report.ImagePublicID); err != nil {
			s.logger.Warn("Failed to delete report image", zap.Error(err), zap.Int64("report_id", reportID))
		}
	}

	if err := s.reportRepo.Delete(ctx, reportID); err != nil {
		return NewInternalError("failed to delete report")
	}

	return nil
}

// ===============================
// LISTING & FILTERING
// ===============================

// ListReports lists reports, optionally filtered by status
func (s *reportService) ListReports(ctx context.Context, req *ListReportsRequest) (*models.PaginatedResponse[*models.Report], error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid list request", err)
	}

	if req.Status != nil {
		result, err := s.reportRepo.GetByStatus(ctx, *req.Status, req.Pagination)
		if err != nil {
			return nil, NewInternalError("failed to list reports")
		}
		return result, nil
	}

	result, err := s.reportRepo.List(ctx, req.Pagination)
	if err != nil {
		return nil, NewInternalError("failed to list reports")
	}
	return result, nil
}

// GetReportsByUser lists a user's submitted reports
func (s *reportService) GetReportsByUser(ctx context.Context, userID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Report], error) {
	if userID <= 0 {
		return nil, NewValidationError("invalid user ID", nil)
	}

	result, err := s.reportRepo.GetByUserID(ctx, userID, params)
	if err != nil {
		return nil, NewInternalError("failed to list reports")
	}
	return result, nil
}

// GetPickupTasks lists a collector's assigned pickups
func (s *reportService) GetPickupTasks(ctx context.Context, collectorID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Report], error) {
	if collectorID <= 0 {
		return nil, NewValidationError("invalid collector ID", nil)
	}

	result, err := s.reportRepo.GetByCollectorID(ctx, collectorID, params)
	if err != nil {
		return nil, NewInternalError("failed to list pickup tasks")
	}
	return result, nil
}

// ===============================
// LIFECYCLE
// ===============================

// UpdateReportStatus transitions a report through its lifecycle. The
// transition table is the single authority on which moves are legal;
// role checks decide who may request them. Reaching the completed
// state runs the gamification pipeline for the submitter.
func (s *reportService) UpdateReportStatus(ctx context.Context, req *UpdateReportStatusRequest) (*models.Report, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid status request", err)
	}

	report, err := s.GetReportByID(ctx, req.ReportID)
	if err != nil {
		return nil, err
	}

	if !models.ValidateReportTransition(report.Status, req.Status) {
		return nil, NewInvalidStatusError(report.Status, req.Status)
	}

	if err := s.authorizeTransition(report, req); err != nil {
		return nil, err
	}

	var completedAt *time.Time
	if req.Status == models.ReportStatusCompleted {
		now := time.Now()
		completedAt = &now
	}

	fromStatus := report.Status
	if err := s.reportRepo.UpdateStatus(ctx, req.ReportID, req.Status, completedAt); err != nil {
		return nil, NewInternalError("failed to update report status")
	}
	report.Status = req.Status
	report.CompletedAt = completedAt

	if err := s.events.Publish(ctx, events.NewReportStatusChangedEvent(report.ID, req.ActorID, fromStatus, req.Status)); err != nil {
		s.logger.Warn("Failed to publish status change event", zap.Error(err), zap.Int64("report_id", report.ID))
	}

	if req.Status == models.ReportStatusCompleted {
		s.runCompletionPipeline(ctx, report.UserID, models.TransactionEarnedReport, PointsPerReport,
			fmt.Sprintf("Waste report #%d completed", report.ID))
	}

	s.logger.Info("Report status updated",
		zap.Int64("report_id", report.ID),
		zap.String("from", fromStatus),
		zap.String("to", req.Status),
		zap.Int64("actor_id", req.ActorID),
	)

	return report, nil
}

// authorizeTransition enforces who may request a given move
func (s *reportService) authorizeTransition(report *models.Report, req *UpdateReportStatusRequest) error {
	switch req.ActorRole {
	case models.RoleAdmin:
		return nil
	case models.RoleAgent:
		if report.IsAssignedTo(req.ActorID) {
			return nil
		}
		return NewForbiddenError("pickup is not assigned to this agent")
	case models.RoleUser:
		// Submitters may only cancel their own pending reports.
		if report.IsOwnedBy(req.ActorID) && req.Status == models.ReportStatusCancelled {
			return nil
		}
		return NewForbiddenError("users may only cancel their own pending reports")
	}
	return NewForbiddenError("unknown role")
}

// AssignPickup attaches a collector to a pending report. The collector
// must hold the agent role.
func (s *reportService) AssignPickup(ctx context.Context, req *AssignPickupRequest) (*models.Report, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid assignment request", err)
	}

	report, err := s.GetReportByID(ctx, req.ReportID)
	if err != nil {
		return nil, err
	}
	if !models.ValidateReportTransition(report.Status, models.ReportStatusAssigned) {
		return nil, NewInvalidStatusError(report.Status, models.ReportStatusAssigned)
	}

	collector, err := s.userRepo.GetByID(ctx, req.CollectorID)
	if err != nil {
		return nil, NewInternalError("failed to load collector")
	}
	if collector == nil || !collector.IsActive {
		return nil, NewNotFoundError("collector not found")
	}
	if !collector.IsAgent() {
		return nil, NewBusinessError("collector must be a pickup agent", "NOT_AN_AGENT")
	}

	if err := s.reportRepo.AssignCollector(ctx, req.ReportID, req.CollectorID); err != nil {
		return nil, NewInternalError("failed to assign collector")
	}
	report.Status = models.ReportStatusAssigned
	report.CollectorID = &req.CollectorID

	if err := s.events.Publish(ctx, events.NewPickupAssignedEvent(req.ReportID, req.CollectorID)); err != nil {
		s.logger.Warn("Failed to publish pickup assigned event", zap.Error(err), zap.Int64("report_id", req.ReportID))
	}

	if s.notifier != nil {
		if err := s.notifier.CreateNotification(ctx, &CreateNotificationRequest{
			UserID:  req.CollectorID,
			Type:    models.NotificationPickup,
			Message: fmt.Sprintf("You have been assigned pickup task #%d at %s.", report.ID, report.Location),
		}); err != nil {
			s.logger.Warn("Failed to notify collector of assignment", zap.Error(err), zap.Int64("collector_id", req.CollectorID))
		}
	}

	return report, nil
}

// CompletePickup marks an assigned pickup completed by its collector
// and runs the gamification pipeline for both sides: the collector
// earns collection points, the submitter earns report points.
func (s *reportService) CompletePickup(ctx context.Context, req *CompletePickupRequest) (*models.Report, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid completion request", err)
	}

	report, err := s.GetReportByID(ctx, req.ReportID)
	if err != nil {
		return nil, err
	}
	if !report.IsAssignedTo(req.CollectorID) {
		return nil, NewForbiddenError("pickup is not assigned to this collector")
	}
	if !models.ValidateReportTransition(report.Status, models.ReportStatusCompleted) {
		return nil, NewInvalidStatusError(report.Status, models.ReportStatusCompleted)
	}

	now := time.Now()
	fromStatus := report.Status
	if err := s.reportRepo.UpdateStatus(ctx, req.ReportID, models.ReportStatusCompleted, &now); err != nil {
		return nil, NewInternalError("failed to complete pickup")
	}
	report.Status = models.ReportStatusCompleted
	report.CompletedAt = &now

	if err := s.events.Publish(ctx, events.NewPickupCompletedEvent(report.ID, req.CollectorID, report.Amount)); err != nil {
		s.logger.Warn("Failed to publish pickup completed event", zap.Error(err), zap.Int64("report_id", report.ID))
	}

	s.runCompletionPipeline(ctx, req.CollectorID, models.TransactionEarnedCollect, PointsPerCollection,
		fmt.Sprintf("Pickup task #%d completed", report.ID))
	s.runCompletionPipeline(ctx, report.UserID, models.TransactionEarnedReport, PointsPerReport,
		fmt.Sprintf("Waste report #%d collected", report.ID))

	if s.notifier != nil {
		if err := s.notifier.CreateNotification(ctx, &CreateNotificationRequest{
			UserID:  report.UserID,
			Type:    models.NotificationReport,
			Message: fmt.Sprintf("Your waste report #%d has been collected.", report.ID),
		}); err != nil {
			s.logger.Warn("Failed to notify submitter of completion", zap.Error(err), zap.Int64("user_id", report.UserID))
		}
	}

	s.logger.Info("Pickup completed",
		zap.Int64("report_id", report.ID),
		zap.Int64("collector_id", req.CollectorID),
		zap.String("from", fromStatus),
	)

	return report, nil
}

// ===============================
// GAMIFICATION PIPELINE
// ===============================

// runCompletionPipeline walks a user through the earning steps in
// order: reward grant (which appends the ledger entry), level
// recalculation, badge evaluation. A failed step is logged and the
// rest still run; every step derives from source tables so a skipped
// grant or level update corrects itself on the next pass.
func (s *reportService) runCompletionPipeline(ctx context.Context, userID int64, txType string, points int, description string) {
	if _, err := s.rewards.GrantReward(ctx, &GrantRewardRequest{
		UserID: userID,
		Name:   description,
		Points: points,
		Type:   txType,
	}); err != nil {
		s.logger.Error("Pipeline: failed to grant reward",
			zap.Error(err),
			zap.Int64("user_id", userID),
			zap.String("type", txType),
		)
	}

	if _, err := s.progress.UpdateUserLevel(ctx, userID); err != nil {
		s.logger.Error("Pipeline: failed to update level",
			zap.Error(err),
			zap.Int64("user_id", userID),
		)
	}

	if _, err := s.badges.CheckAndAwardBadges(ctx, userID); err != nil {
		s.logger.Error("Pipeline: failed to evaluate badges",
			zap.Error(err),
			zap.Int64("user_id", userID),
		)
	}

	s.cache.Delete(ctx, fmt.Sprintf("user:%d:progress", userID))
	s.cache.Delete(ctx, fmt.Sprintf("user:%d:balance", userID))
}
