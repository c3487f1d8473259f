package services

import (
	"context"
	"greenquest/internal/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// reportServiceFixture bundles the collaborators a report service test
// needs to inspect afterwards.
type reportServiceFixture struct {
	reportRepo *fakeReportRepo
	userRepo   *fakeUserRepo
	rewards    *fakeRewardService
	progress   *fakeProgressService
	badges     *fakeBadgeService
	notifier   *fakeNotifier
	bus        *fakeEventBus

	grants       []*GrantRewardRequest
	levelUpdates []int64
	badgeChecks  []int64
}

func newReportServiceFixture() *reportServiceFixture {
	f := &reportServiceFixture{
		reportRepo: &fakeReportRepo{},
		userRepo:   &fakeUserRepo{},
		notifier:   &fakeNotifier{},
		bus:        &fakeEventBus{},
	}
	f.rewards = &fakeRewardService{
		grantReward: func(ctx context.Context, req *GrantRewardRequest) (*models.Reward, error) {
			f.grants = append(f.grants, req)
			return &models.Reward{UserID: req.UserID, Points: req.Points}, nil
		},
	}
	f.progress = &fakeProgressService{
		updateUserLevel: func(ctx context.Context, userID int64) (*LevelUpdateResult, error) {
			f.levelUpdates = append(f.levelUpdates, userID)
			return &LevelUpdateResult{UserID: userID}, nil
		},
	}
	f.badges = &fakeBadgeService{
		checkAndAwardBadges: func(ctx context.Context, userID int64) (*BadgeAwardResult, error) {
			f.badgeChecks = append(f.badgeChecks, userID)
			return &BadgeAwardResult{UserID: userID}, nil
		},
	}
	return f
}

func (f *reportServiceFixture) service() ReportService {
	return NewReportService(
		f.reportRepo, f.userRepo,
		f.rewards, f.progress, f.badges, f.notifier,
		nil, newTestCache(), f.bus, zap.NewNop(),
	)
}

func TestCreateReport(t *testing.T) {
	ctx := context.Background()

	t.Run("valid report starts out pending", func(t *testing.T) {
		f := newReportServiceFixture()
		f.userRepo.getByID = func(ctx context.Context, id int64) (*models.User, error) {
			return &models.User{ID: id, IsActive: true, Role: models.RoleUser}, nil
		}
		var stored *models.Report
		f.reportRepo.create = func(ctx context.Context, report *models.Report) error {
			report.ID = 3
			stored = report
			return nil
		}

		report, err := f.service().CreateReport(ctx, &CreateReportRequest{
			UserID:    7,
			Location:  "Market Street",
			WasteType: "plastic",
			Amount:    "12.5",
		})
		require.NoError(t, err)

		assert.Equal(t, int64(3), report.ID)
		assert.Equal(t, models.ReportStatusPending, stored.Status)
		assert.Equal(t, 12.5, stored.Amount)
		assert.Equal(t, []string{"report.created"}, f.bus.eventTypes())
	})

	t.Run("malformed amount is rejected, not zeroed", func(t *testing.T) {
		f := newReportServiceFixture()
		var created bool
		f.reportRepo.create = func(ctx context.Context, report *models.Report) error {
			created = true
			return nil
		}

		_, err := f.service().CreateReport(ctx, &CreateReportRequest{
			UserID:    7,
			Location:  "Market Street",
			WasteType: "plastic",
			Amount:    "12,5kg",
		})
		assert.True(t, IsValidationError(err))
		assert.False(t, created)
	})

	t.Run("deactivated user cannot report", func(t *testing.T) {
		f := newReportServiceFixture()
		f.userRepo.getByID = func(ctx context.Context, id int64) (*models.User, error) {
			return &models.User{ID: id, IsActive: false}, nil
		}

		_, err := f.service().CreateReport(ctx, &CreateReportRequest{
			UserID:    7,
			Location:  "Market Street",
			WasteType: "plastic",
			Amount:    "5",
		})
		assert.True(t, IsNotFoundError(err))
	})
}

func TestUpdateReportStatus(t *testing.T) {
	ctx := context.Background()

	reportInState := func(f *reportServiceFixture, status string, collectorID *int64) {
		f.reportRepo.getByID = func(ctx context.Context, id int64) (*models.Report, error) {
			return &models.Report{ID: id, UserID: 7, CollectorID: collectorID, Status: status, Amount: 10}, nil
		}
	}

	t.Run("disallowed transition is rejected with the transition error", func(t *testing.T) {
		f := newReportServiceFixture()
		reportInState(f, models.ReportStatusPending, nil)

		_, err := f.service().UpdateReportStatus(ctx, &UpdateReportStatusRequest{
			ReportID:  3,
			ActorID:   1,
			ActorRole: models.RoleAdmin,
			Status:    models.ReportStatusCompleted,
		})
		require.Error(t, err)
		assert.True(t, IsInvalidStatusError(err))
		assert.Equal(t, 422, GetServiceError(err).GetStatusCode())
		assert.Empty(t, f.grants)
	})

	t.Run("terminal states have no outgoing transitions", func(t *testing.T) {
		f := newReportServiceFixture()
		reportInState(f, models.ReportStatusCompleted, nil)

		_, err := f.service().UpdateReportStatus(ctx, &UpdateReportStatusRequest{
			ReportID:  3,
			ActorID:   1,
			ActorRole: models.RoleAdmin,
			Status:    models.ReportStatusCancelled,
		})
		assert.True(t, IsInvalidStatusError(err))
	})

	t.Run("submitter may cancel their own pending report", func(t *testing.T) {
		f := newReportServiceFixture()
		reportInState(f, models.ReportStatusPending, nil)

		report, err := f.service().UpdateReportStatus(ctx, &UpdateReportStatusRequest{
			ReportID:  3,
			ActorID:   7,
			ActorRole: models.RoleUser,
			Status:    models.ReportStatusCancelled,
		})
		require.NoError(t, err)
		assert.Equal(t, models.ReportStatusCancelled, report.Status)
	})

	t.Run("submitter may not cancel someone else's report", func(t *testing.T) {
		f := newReportServiceFixture()
		reportInState(f, models.ReportStatusPending, nil)

		_, err := f.service().UpdateReportStatus(ctx, &UpdateReportStatusRequest{
			ReportID:  3,
			ActorID:   99,
			ActorRole: models.RoleUser,
			Status:    models.ReportStatusCancelled,
		})
		assert.True(t, IsErrorType(err, "FORBIDDEN"))
	})

	t.Run("agent may only move their own assignment", func(t *testing.T) {
		f := newReportServiceFixture()
		collector := int64(20)
		reportInState(f, models.ReportStatusAssigned, &collector)

		_, err := f.service().UpdateReportStatus(ctx, &UpdateReportStatusRequest{
			ReportID:  3,
			ActorID:   21,
			ActorRole: models.RoleAgent,
			Status:    models.ReportStatusInProgress,
		})
		assert.True(t, IsErrorType(err, "FORBIDDEN"))
	})

	t.Run("completion by an admin runs the pipeline for the submitter", func(t *testing.T) {
		f := newReportServiceFixture()
		reportInState(f, models.ReportStatusInProgress, nil)

		report, err := f.service().UpdateReportStatus(ctx, &UpdateReportStatusRequest{
			ReportID:  3,
			ActorID:   1,
			ActorRole: models.RoleAdmin,
			Status:    models.ReportStatusCompleted,
		})
		require.NoError(t, err)

		assert.Equal(t, models.ReportStatusCompleted, report.Status)
		assert.NotNil(t, report.CompletedAt)

		require.Len(t, f.grants, 1)
		assert.Equal(t, int64(7), f.grants[0].UserID)
		assert.Equal(t, models.TransactionEarnedReport, f.grants[0].Type)
		assert.Equal(t, PointsPerReport, f.grants[0].Points)

		assert.Equal(t, []int64{7}, f.levelUpdates)
		assert.Equal(t, []int64{7}, f.badgeChecks)
	})
}

func TestAssignPickup(t *testing.T) {
	ctx := context.Background()

	t.Run("pending report gets its collector", func(t *testing.T) {
		f := newReportServiceFixture()
		f.reportRepo.getByID = func(ctx context.Context, id int64) (*models.Report, error) {
			return &models.Report{ID: id, UserID: 7, Status: models.ReportStatusPending, Location: "Market Street"}, nil
		}
		f.userRepo.getByID = func(ctx context.Context, id int64) (*models.User, error) {
			return &models.User{ID: id, IsActive: true, Role: models.RoleAgent}, nil
		}
		var assigned int64
		f.reportRepo.assignCollector = func(ctx context.Context, reportID, collectorID int64) error {
			assigned = collectorID
			return nil
		}

		report, err := f.service().AssignPickup(ctx, &AssignPickupRequest{ReportID: 3, CollectorID: 20})
		require.NoError(t, err)

		assert.Equal(t, models.ReportStatusAssigned, report.Status)
		assert.Equal(t, int64(20), assigned)
		assert.Equal(t, []string{"pickup.assigned"}, f.bus.eventTypes())

		require.Len(t, f.notifier.created, 1)
		assert.Equal(t, int64(20), f.notifier.created[0].UserID)
		assert.Equal(t, models.NotificationPickup, f.notifier.created[0].Type)
	})

	t.Run("collector must hold the agent role", func(t *testing.T) {
		f := newReportServiceFixture()
		f.reportRepo.getByID = func(ctx context.Context, id int64) (*models.Report, error) {
			return &models.Report{ID: id, UserID: 7, Status: models.ReportStatusPending}, nil
		}
		f.userRepo.getByID = func(ctx context.Context, id int64) (*models.User, error) {
			return &models.User{ID: id, IsActive: true, Role: models.RoleUser}, nil
		}

		_, err := f.service().AssignPickup(ctx, &AssignPickupRequest{ReportID: 3, CollectorID: 20})
		assert.True(t, IsBusinessError(err))
	})

	t.Run("already assigned report cannot be reassigned", func(t *testing.T) {
		f := newReportServiceFixture()
		collector := int64(20)
		f.reportRepo.getByID = func(ctx context.Context, id int64) (*models.Report, error) {
			return &models.Report{ID: id, UserID: 7, CollectorID: &collector, Status: models.ReportStatusAssigned}, nil
		}

		_, err := f.service().AssignPickup(ctx, &AssignPickupRequest{ReportID: 3, CollectorID: 21})
		assert.True(t, IsInvalidStatusError(err))
	})
}

func TestCompletePickup(t *testing.T) {
	ctx := context.Background()

	assignedReport := func(f *reportServiceFixture, collectorID int64) {
		f.reportRepo.getByID = func(ctx context.Context, id int64) (*models.Report, error) {
			return &models.Report{ID: id, UserID: 7, CollectorID: &collectorID, Status: models.ReportStatusAssigned, Amount: 10}, nil
		}
	}

	t.Run("both sides earn through the pipeline", func(t *testing.T) {
		f := newReportServiceFixture()
		assignedReport(f, 20)

		report, err := f.service().CompletePickup(ctx, &CompletePickupRequest{ReportID: 3, CollectorID: 20})
		require.NoError(t, err)

		assert.Equal(t, models.ReportStatusCompleted, report.Status)
		assert.NotNil(t, report.CompletedAt)

		require.Len(t, f.grants, 2)
		assert.Equal(t, int64(20), f.grants[0].UserID)
		assert.Equal(t, models.TransactionEarnedCollect, f.grants[0].Type)
		assert.Equal(t, PointsPerCollection, f.grants[0].Points)
		assert.Equal(t, int64(7), f.grants[1].UserID)
		assert.Equal(t, models.TransactionEarnedReport, f.grants[1].Type)
		assert.Equal(t, PointsPerReport, f.grants[1].Points)

		assert.Equal(t, []int64{20, 7}, f.levelUpdates)
		assert.Equal(t, []int64{20, 7}, f.badgeChecks)
		assert.Equal(t, []string{"pickup.completed"}, f.bus.eventTypes())

		// The submitter is told their waste was collected.
		require.Len(t, f.notifier.created, 1)
		assert.Equal(t, int64(7), f.notifier.created[0].UserID)
	})

	t.Run("only the assigned collector may complete", func(t *testing.T) {
		f := newReportServiceFixture()
		assignedReport(f, 20)

		_, err := f.service().CompletePickup(ctx, &CompletePickupRequest{ReportID: 3, CollectorID: 21})
		assert.True(t, IsErrorType(err, "FORBIDDEN"))
		assert.Empty(t, f.grants)
	})

	t.Run("a failing pipeline step does not fail the completion", func(t *testing.T) {
		f := newReportServiceFixture()
		assignedReport(f, 20)
		f.rewards.grantReward = func(ctx context.Context, req *GrantRewardRequest) (*models.Reward, error) {
			return nil, NewInternalError("ledger down")
		}

		report, err := f.service().CompletePickup(ctx, &CompletePickupRequest{ReportID: 3, CollectorID: 20})
		require.NoError(t, err)
		assert.Equal(t, models.ReportStatusCompleted, report.Status)

		// The later steps still ran for both users.
		assert.Equal(t, []int64{20, 7}, f.levelUpdates)
		assert.Equal(t, []int64{20, 7}, f.badgeChecks)
	})
}

func TestUpdateReport(t *testing.T) {
	ctx := context.Background()

	t.Run("only the submitter may edit", func(t *testing.T) {
		f := newReportServiceFixture()
		f.reportRepo.getByID = func(ctx context.Context, id int64) (*models.Report, error) {
			return &models.Report{ID: id, UserID: 7, Status: models.ReportStatusPending}, nil
		}

		location := "New Street"
		_, err := f.service().UpdateReport(ctx, &UpdateReportRequest{
			ReportID: 3,
			UserID:   99,
			Location: &location,
		})
		assert.True(t, IsErrorType(err, "FORBIDDEN"))
	})

	t.Run("non-pending reports are frozen", func(t *testing.T) {
		f := newReportServiceFixture()
		f.reportRepo.getByID = func(ctx context.Context, id int64) (*models.Report, error) {
			return &models.Report{ID: id, UserID: 7, Status: models.ReportStatusAssigned}, nil
		}

		location := "New Street"
		_, err := f.service().UpdateReport(ctx, &UpdateReportRequest{
			ReportID: 3,
			UserID:   7,
			Location: &location,
		})
		assert.True(t, IsBusinessError(err))
	})
}

func TestDeleteReport(t *testing.T) {
	ctx := context.Background()

	t.Run("pending report deleted by its submitter", func(t *testing.T) {
		f := newReportServiceFixture()
		f.reportRepo.getByID = func(ctx context.Context, id int64) (*models.Report, error) {
			return &models.Report{ID: id, UserID: 7, Status: models.ReportStatusPending}, nil
		}
		var deleted int64
		f.reportRepo.delete = func(ctx context.Context, id int64) error {
			deleted = id
			return nil
		}

		err := f.service().DeleteReport(ctx, 3, 7)
		require.NoError(t, err)
		assert.Equal(t, int64(3), deleted)
	})

	t.Run("assigned report cannot be deleted", func(t *testing.T) {
		f := newReportServiceFixture()
		f.reportRepo.getByID = func(ctx context.Context, id int64) (*models.Report, error) {
			return &models.Report{ID: id, UserID: 7, Status: models.ReportStatusAssigned}, nil
		}

		err := f.service().DeleteReport(ctx, 3, 7)
		assert.True(t, IsBusinessError(err))
	})
}
