package services

import (
	"context"
	"greenquest/internal/cache"
	"greenquest/internal/events"
	"greenquest/internal/models"
	"greenquest/internal/repositories"
	"time"

	"go.uber.org/zap"
)

// Hand-written fakes for the repository and service interfaces. Each
// method delegates to an optional function field; unset fields return
// zero values so a test only wires the calls it actually exercises.

// ===============================
// REPOSITORY FAKES
// ===============================

type fakeUserRepo struct {
	create         func(ctx context.Context, user *models.User) error
	getByID        func(ctx context.Context, id int64) (*models.User, error)
	getByEmail     func(ctx context.Context, email string) (*models.User, error)
	getByUsername  func(ctx context.Context, username string) (*models.User, error)
	update         func(ctx context.Context, user *models.User) error
	deactivate     func(ctx context.Context, id int64) error
	updateLevel    func(ctx context.Context, userID int64, level int) error
	updateLastSeen func(ctx context.Context, userID int64) error
	getLeaderboard func(ctx context.Context, limit int) ([]*models.User, error)
	countByRole    func(ctx context.Context) (map[string]int, error)
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	if f.create != nil {
		return f.create(ctx, user)
	}
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if f.getByID != nil {
		return f.getByID(ctx, id)
	}
	return nil, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.getByEmail != nil {
		return f.getByEmail(ctx, email)
	}
	return nil, nil
}

func (f *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if f.getByUsername != nil {
		return f.getByUsername(ctx, username)
	}
	return nil, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	if f.update != nil {
		return f.update(ctx, user)
	}
	return nil
}

func (f *fakeUserRepo) Deactivate(ctx context.Context, id int64) error {
	if f.deactivate != nil {
		return f.deactivate(ctx, id)
	}
	return nil
}

func (f *fakeUserRepo) UpdateLevel(ctx context.Context, userID int64, level int) error {
	if f.updateLevel != nil {
		return f.updateLevel(ctx, userID, level)
	}
	return nil
}

func (f *fakeUserRepo) UpdateLastSeen(ctx context.Context, userID int64) error {
	if f.updateLastSeen != nil {
		return f.updateLastSeen(ctx, userID)
	}
	return nil
}

func (f *fakeUserRepo) List(ctx context.Context, params models.PaginationParams) (*models.PaginatedResponse[*models.User], error) {
	return &models.PaginatedResponse[*models.User]{}, nil
}

func (f *fakeUserRepo) GetByRole(ctx context.Context, role string, params models.PaginationParams) (*models.PaginatedResponse[*models.User], error) {
	return &models.PaginatedResponse[*models.User]{}, nil
}

func (f *fakeUserRepo) GetLeaderboard(ctx context.Context, limit int) ([]*models.User, error) {
	if f.getLeaderboard != nil {
		return f.getLeaderboard(ctx, limit)
	}
	return nil, nil
}

func (f *fakeUserRepo) CountByRole(ctx context.Context) (map[string]int, error) {
	if f.countByRole != nil {
		return f.countByRole(ctx)
	}
	return map[string]int{}, nil
}

type fakeReportRepo struct {
	create                    func(ctx context.Context, report *models.Report) error
	getByID                   func(ctx context.Context, id int64) (*models.Report, error)
	update                    func(ctx context.Context, report *models.Report) error
	delete                    func(ctx context.Context, id int64) error
	updateStatus              func(ctx context.Context, reportID int64, status string, completedAt *time.Time) error
	assignCollector           func(ctx context.Context, reportID, collectorID int64) error
	sumCompletedAmountByUser  func(ctx context.Context, userID int64) (float64, error)
	countCompletedByUser      func(ctx context.Context, userID int64) (int, error)
	countCompletedByCollector func(ctx context.Context, collectorID int64) (int, error)
}

func (f *fakeReportRepo) Create(ctx context.Context, report *models.Report) error {
	if f.create != nil {
		return f.create(ctx, report)
	}
	return nil
}

func (f *fakeReportRepo) GetByID(ctx context.Context, id int64) (*models.Report, error) {
	if f.getByID != nil {
		return f.getByID(ctx, id)
	}
	return nil, nil
}

func (f *fakeReportRepo) Update(ctx context.Context, report *models.Report) error {
	if f.update != nil {
		return f.update(ctx, report)
	}
	return nil
}

func (f *fakeReportRepo) Delete(ctx context.Context, id int64) error {
	if f.delete != nil {
		return f.delete(ctx, id)
	}
	return nil
}

func (f *fakeReportRepo) UpdateStatus(ctx context.Context, reportID int64, status string, completedAt *time.Time) error {
	if f.updateStatus != nil {
		return f.updateStatus(ctx, reportID, status, completedAt)
	}
	return nil
}

func (f *fakeReportRepo) AssignCollector(ctx context.Context, reportID, collectorID int64) error {
	if f.assignCollector != nil {
		return f.assignCollector(ctx, reportID, collectorID)
	}
	return nil
}

func (f *fakeReportRepo) List(ctx context.Context, params models.PaginationParams) (*models.PaginatedResponse[*models.Report], error) {
	return &models.PaginatedResponse[*models.Report]{}, nil
}

func (f *fakeReportRepo) GetByUserID(ctx context.Context, userID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Report], error) {
	return &models.PaginatedResponse[*models.Report]{}, nil
}

func (f *fakeReportRepo) GetByCollectorID(ctx context.Context, collectorID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Report], error) {
	return &models.PaginatedResponse[*models.Report]{}, nil
}

func (f *fakeReportRepo) GetByStatus(ctx context.Context, status string, params models.PaginationParams) (*models.PaginatedResponse[*models.Report], error) {
	return &models.PaginatedResponse[*models.Report]{}, nil
}

func (f *fakeReportRepo) SumCompletedAmountByUser(ctx context.Context, userID int64) (float64, error) {
	if f.sumCompletedAmountByUser != nil {
		return f.sumCompletedAmountByUser(ctx, userID)
	}
	return 0, nil
}

func (f *fakeReportRepo) CountCompletedByUser(ctx context.Context, userID int64) (int, error) {
	if f.countCompletedByUser != nil {
		return f.countCompletedByUser(ctx, userID)
	}
	return 0, nil
}

func (f *fakeReportRepo) CountCompletedByCollector(ctx context.Context, collectorID int64) (int, error) {
	if f.countCompletedByCollector != nil {
		return f.countCompletedByCollector(ctx, collectorID)
	}
	return 0, nil
}

type fakeRewardRepo struct {
	create               func(ctx context.Context, reward *models.Reward) error
	getByID              func(ctx context.Context, id int64) (*models.Reward, error)
	markAllSpent         func(ctx context.Context, userID int64) (int, error)
	getCatalogRewardByID func(ctx context.Context, id int64) (*models.CatalogReward, error)
	listCatalogRewards   func(ctx context.Context, activeOnly bool) ([]*models.CatalogReward, error)
	createCatalogReward  func(ctx context.Context, reward *models.CatalogReward) error
	updateCatalogReward  func(ctx context.Context, reward *models.CatalogReward) error
}

func (f *fakeRewardRepo) Create(ctx context.Context, reward *models.Reward) error {
	if f.create != nil {
		return f.create(ctx, reward)
	}
	return nil
}

func (f *fakeRewardRepo) GetByID(ctx context.Context, id int64) (*models.Reward, error) {
	if f.getByID != nil {
		return f.getByID(ctx, id)
	}
	return nil, nil
}

func (f *fakeRewardRepo) GetByUserID(ctx context.Context, userID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Reward], error) {
	return &models.PaginatedResponse[*models.Reward]{}, nil
}

func (f *fakeRewardRepo) MarkAllSpent(ctx context.Context, userID int64) (int, error) {
	if f.markAllSpent != nil {
		return f.markAllSpent(ctx, userID)
	}
	return 0, nil
}

func (f *fakeRewardRepo) GetCatalogRewardByID(ctx context.Context, id int64) (*models.CatalogReward, error) {
	if f.getCatalogRewardByID != nil {
		return f.getCatalogRewardByID(ctx, id)
	}
	return nil, nil
}

func (f *fakeRewardRepo) ListCatalogRewards(ctx context.Context, activeOnly bool) ([]*models.CatalogReward, error) {
	if f.listCatalogRewards != nil {
		return f.listCatalogRewards(ctx, activeOnly)
	}
	return nil, nil
}

func (f *fakeRewardRepo) CreateCatalogReward(ctx context.Context, reward *models.CatalogReward) error {
	if f.createCatalogReward != nil {
		return f.createCatalogReward(ctx, reward)
	}
	return nil
}

func (f *fakeRewardRepo) UpdateCatalogReward(ctx context.Context, reward *models.CatalogReward) error {
	if f.updateCatalogReward != nil {
		return f.updateCatalogReward(ctx, reward)
	}
	return nil
}

type fakeTransactionRepo struct {
	create              func(ctx context.Context, tx *models.Transaction) error
	getBalance          func(ctx context.Context, userID int64) (int, error)
	sumEarnedByUser     func(ctx context.Context, userID int64) (int, error)
	countRedeemedByUser func(ctx context.Context, userID int64) (int, error)
}

func (f *fakeTransactionRepo) Create(ctx context.Context, tx *models.Transaction) error {
	if f.create != nil {
		return f.create(ctx, tx)
	}
	return nil
}

func (f *fakeTransactionRepo) GetByUserID(ctx context.Context, userID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Transaction], error) {
	return &models.PaginatedResponse[*models.Transaction]{}, nil
}

func (f *fakeTransactionRepo) GetBalance(ctx context.Context, userID int64) (int, error) {
	if f.getBalance != nil {
		return f.getBalance(ctx, userID)
	}
	return 0, nil
}

func (f *fakeTransactionRepo) SumEarnedByUser(ctx context.Context, userID int64) (int, error) {
	if f.sumEarnedByUser != nil {
		return f.sumEarnedByUser(ctx, userID)
	}
	return 0, nil
}

func (f *fakeTransactionRepo) CountRedeemedByUser(ctx context.Context, userID int64) (int, error) {
	if f.countRedeemedByUser != nil {
		return f.countRedeemedByUser(ctx, userID)
	}
	return 0, nil
}

type fakeBadgeRepo struct {
	create             func(ctx context.Context, badge *models.Badge) error
	getByID            func(ctx context.Context, id int64) (*models.Badge, error)
	update             func(ctx context.Context, badge *models.Badge) error
	listActive         func(ctx context.Context) ([]*models.Badge, error)
	listAll            func(ctx context.Context) ([]*models.Badge, error)
	awardBadges        func(ctx context.Context, userID int64, badgeIDs []int64) (int, error)
	getAwardedBadgeIDs func(ctx context.Context, userID int64) (map[int64]bool, error)
	getUserBadges      func(ctx context.Context, userID int64) ([]*models.UserBadge, error)
}

func (f *fakeBadgeRepo) Create(ctx context.Context, badge *models.Badge) error {
	if f.create != nil {
		return f.create(ctx, badge)
	}
	return nil
}

func (f *fakeBadgeRepo) GetByID(ctx context.Context, id int64) (*models.Badge, error) {
	if f.getByID != nil {
		return f.getByID(ctx, id)
	}
	return nil, nil
}

func (f *fakeBadgeRepo) Update(ctx context.Context, badge *models.Badge) error {
	if f.update != nil {
		return f.update(ctx, badge)
	}
	return nil
}

func (f *fakeBadgeRepo) ListActive(ctx context.Context) ([]*models.Badge, error) {
	if f.listActive != nil {
		return f.listActive(ctx)
	}
	return nil, nil
}

func (f *fakeBadgeRepo) ListAll(ctx context.Context) ([]*models.Badge, error) {
	if f.listAll != nil {
		return f.listAll(ctx)
	}
	return nil, nil
}

func (f *fakeBadgeRepo) AwardBadges(ctx context.Context, userID int64, badgeIDs []int64) (int, error) {
	if f.awardBadges != nil {
		return f.awardBadges(ctx, userID, badgeIDs)
	}
	return len(badgeIDs), nil
}

func (f *fakeBadgeRepo) GetAwardedBadgeIDs(ctx context.Context, userID int64) (map[int64]bool, error) {
	if f.getAwardedBadgeIDs != nil {
		return f.getAwardedBadgeIDs(ctx, userID)
	}
	return map[int64]bool{}, nil
}

func (f *fakeBadgeRepo) GetUserBadges(ctx context.Context, userID int64) ([]*models.UserBadge, error) {
	if f.getUserBadges != nil {
		return f.getUserBadges(ctx, userID)
	}
	return nil, nil
}

type fakeNotificationRepo struct {
	create        func(ctx context.Context, notification *models.Notification) error
	getByID       func(ctx context.Context, id int64) (*models.Notification, error)
	markAsRead    func(ctx context.Context, id int64) error
	markAllAsRead func(ctx context.Context, userID int64) (int, error)
	countUnread   func(ctx context.Context, userID int64) (int, error)
}

func (f *fakeNotificationRepo) Create(ctx context.Context, notification *models.Notification) error {
	if f.create != nil {
		return f.create(ctx, notification)
	}
	return nil
}

func (f *fakeNotificationRepo) GetByID(ctx context.Context, id int64) (*models.Notification, error) {
	if f.getByID != nil {
		return f.getByID(ctx, id)
	}
	return nil, nil
}

func (f *fakeNotificationRepo) GetByUserID(ctx context.Context, userID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Notification], error) {
	return &models.PaginatedResponse[*models.Notification]{}, nil
}

func (f *fakeNotificationRepo) MarkAsRead(ctx context.Context, id int64) error {
	if f.markAsRead != nil {
		return f.markAsRead(ctx, id)
	}
	return nil
}

func (f *fakeNotificationRepo) MarkAllAsRead(ctx context.Context, userID int64) (int, error) {
	if f.markAllAsRead != nil {
		return f.markAllAsRead(ctx, userID)
	}
	return 0, nil
}

func (f *fakeNotificationRepo) CountUnread(ctx context.Context, userID int64) (int, error) {
	if f.countUnread != nil {
		return f.countUnread(ctx, userID)
	}
	return 0, nil
}

type fakeSessionRepo struct {
	create             func(ctx context.Context, session *models.Session) error
	getByToken         func(ctx context.Context, token string) (*models.Session, error)
	updateLastActivity func(ctx context.Context, id int64) error
	delete             func(ctx context.Context, id int64) error
	deleteByUserID     func(ctx context.Context, userID int64) error
	deleteExpired      func(ctx context.Context) (int, error)
}

func (f *fakeSessionRepo) Create(ctx context.Context, session *models.Session) error {
	if f.create != nil {
		return f.create(ctx, session)
	}
	return nil
}

func (f *fakeSessionRepo) GetByToken(ctx context.Context, token string) (*models.Session, error) {
	if f.getByToken != nil {
		return f.getByToken(ctx, token)
	}
	return nil, nil
}

func (f *fakeSessionRepo) UpdateLastActivity(ctx context.Context, id int64) error {
	if f.updateLastActivity != nil {
		return f.updateLastActivity(ctx, id)
	}
	return nil
}

func (f *fakeSessionRepo) Delete(ctx context.Context, id int64) error {
	if f.delete != nil {
		return f.delete(ctx, id)
	}
	return nil
}

func (f *fakeSessionRepo) DeleteByUserID(ctx context.Context, userID int64) error {
	if f.deleteByUserID != nil {
		return f.deleteByUserID(ctx, userID)
	}
	return nil
}

func (f *fakeSessionRepo) DeleteExpired(ctx context.Context) (int, error) {
	if f.deleteExpired != nil {
		return f.deleteExpired(ctx)
	}
	return 0, nil
}

// ===============================
// SERVICE FAKES
// ===============================

type fakeUserService struct {
	createUser func(ctx context.Context, req *CreateUserRequest) (*models.User, error)
}

func (f *fakeUserService) CreateUser(ctx context.Context, req *CreateUserRequest) (*models.User, error) {
	if f.createUser != nil {
		return f.createUser(ctx, req)
	}
	return &models.User{Email: req.Email, Username: req.Username, Role: req.Role, IsActive: true, Level: 1}, nil
}

func (f *fakeUserService) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return nil, nil
}

func (f *fakeUserService) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return nil, nil
}

func (f *fakeUserService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, nil
}

func (f *fakeUserService) UpdateUser(ctx context.Context, req *UpdateUserRequest) (*models.User, error) {
	return nil, nil
}

func (f *fakeUserService) DeactivateUser(ctx context.Context, userID int64, reason string) error {
	return nil
}

func (f *fakeUserService) ListUsers(ctx context.Context, req *ListUsersRequest) (*models.PaginatedResponse[*models.User], error) {
	return &models.PaginatedResponse[*models.User]{}, nil
}

func (f *fakeUserService) UpdateUserRole(ctx context.Context, req *UpdateUserRoleRequest) (*models.User, error) {
	return nil, nil
}

func (f *fakeUserService) GetLeaderboard(ctx context.Context, limit int) ([]*models.User, error) {
	return nil, nil
}

func (f *fakeUserService) GetPlatformStats(ctx context.Context) (*PlatformStatsResponse, error) {
	return &PlatformStatsResponse{}, nil
}

// fakeNotifier records every inbox insert so tests can assert who was
// told what.
type fakeNotifier struct {
	created []*CreateNotificationRequest
	fail    error
}

func (f *fakeNotifier) CreateNotification(ctx context.Context, req *CreateNotificationRequest) error {
	if f.fail != nil {
		return f.fail
	}
	f.created = append(f.created, req)
	return nil
}

func (f *fakeNotifier) GetUserNotifications(ctx context.Context, req *GetNotificationsRequest) (*models.PaginatedResponse[*models.Notification], error) {
	return &models.PaginatedResponse[*models.Notification]{}, nil
}

func (f *fakeNotifier) MarkAsRead(ctx context.Context, notificationID, userID int64) error {
	return nil
}

func (f *fakeNotifier) MarkAllAsRead(ctx context.Context, userID int64) error {
	return nil
}

func (f *fakeNotifier) GetUnreadCount(ctx context.Context, userID int64) (int, error) {
	return 0, nil
}

type fakeRewardService struct {
	grantReward func(ctx context.Context, req *GrantRewardRequest) (*models.Reward, error)
}

func (f *fakeRewardService) GrantReward(ctx context.Context, req *GrantRewardRequest) (*models.Reward, error) {
	if f.grantReward != nil {
		return f.grantReward(ctx, req)
	}
	return &models.Reward{UserID: req.UserID, Name: req.Name, Points: req.Points}, nil
}

func (f *fakeRewardService) GetUserRewards(ctx context.Context, userID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Reward], error) {
	return &models.PaginatedResponse[*models.Reward]{}, nil
}

func (f *fakeRewardService) RedeemReward(ctx context.Context, req *RedeemRewardRequest) (*RedemptionResult, error) {
	return &RedemptionResult{}, nil
}

func (f *fakeRewardService) GetAvailableRewards(ctx context.Context, userID int64) ([]*models.CatalogReward, error) {
	return nil, nil
}

func (f *fakeRewardService) CreateCatalogReward(ctx context.Context, req *CreateCatalogRewardRequest) (*models.CatalogReward, error) {
	return nil, nil
}

func (f *fakeRewardService) UpdateCatalogReward(ctx context.Context, req *UpdateCatalogRewardRequest) (*models.CatalogReward, error) {
	return nil, nil
}

type fakeProgressService struct {
	getUserProgress func(ctx context.Context, userID int64) (*models.ProgressSnapshot, error)
	updateUserLevel func(ctx context.Context, userID int64) (*LevelUpdateResult, error)
}

func (f *fakeProgressService) GetUserProgress(ctx context.Context, userID int64) (*models.ProgressSnapshot, error) {
	if f.getUserProgress != nil {
		return f.getUserProgress(ctx, userID)
	}
	return &models.ProgressSnapshot{UserID: userID, UserLevel: 1}, nil
}

func (f *fakeProgressService) UpdateUserLevel(ctx context.Context, userID int64) (*LevelUpdateResult, error) {
	if f.updateUserLevel != nil {
		return f.updateUserLevel(ctx, userID)
	}
	return &LevelUpdateResult{UserID: userID, OldLevel: 1, NewLevel: 1}, nil
}

type fakeBadgeService struct {
	checkAndAwardBadges func(ctx context.Context, userID int64) (*BadgeAwardResult, error)
}

func (f *fakeBadgeService) CreateBadge(ctx context.Context, req *CreateBadgeRequest) (*models.Badge, error) {
	return nil, nil
}

func (f *fakeBadgeService) UpdateBadge(ctx context.Context, req *UpdateBadgeRequest) (*models.Badge, error) {
	return nil, nil
}

func (f *fakeBadgeService) ListBadges(ctx context.Context, includeInactive bool) ([]*models.Badge, error) {
	return nil, nil
}

func (f *fakeBadgeService) GetUserBadges(ctx context.Context, userID int64) ([]*models.UserBadge, error) {
	return nil, nil
}

func (f *fakeBadgeService) CheckAndAwardBadges(ctx context.Context, userID int64) (*BadgeAwardResult, error) {
	if f.checkAndAwardBadges != nil {
		return f.checkAndAwardBadges(ctx, userID)
	}
	return &BadgeAwardResult{UserID: userID}, nil
}

// ===============================
// EVENT BUS FAKE
// ===============================

// fakeEventBus records published events in order.
type fakeEventBus struct {
	published []events.Event
	fail      error
}

func (f *fakeEventBus) Publish(ctx context.Context, event events.Event) error {
	if f.fail != nil {
		return f.fail
	}
	f.published = append(f.published, event)
	return nil
}

func (f *fakeEventBus) PublishAsync(ctx context.Context, event events.Event) error {
	return f.Publish(ctx, event)
}

func (f *fakeEventBus) Subscribe(eventType string, handler events.EventHandler) error {
	return nil
}

func (f *fakeEventBus) SubscribePattern(pattern string, handler events.EventHandler) error {
	return nil
}

func (f *fakeEventBus) Unsubscribe(eventType string, handler events.EventHandler) error {
	return nil
}

func (f *fakeEventBus) Start(ctx context.Context) error { return nil }
func (f *fakeEventBus) Stop(ctx context.Context) error  { return nil }
func (f *fakeEventBus) Health() error                   { return nil }

func (f *fakeEventBus) Stats() *events.EventBusStats {
	return &events.EventBusStats{}
}

// eventTypes returns the published event types in order.
func (f *fakeEventBus) eventTypes() []string {
	types := make([]string, len(f.published))
	for i, e := range f.published {
		types[i] = e.GetEventType()
	}
	return types
}

// newTestCache returns a real in-memory cache for service tests.
func newTestCache() cache.Cache {
	return cache.NewMemoryCache(cache.DefaultConfig(), zap.NewNop())
}

// Compile-time interface checks for the fakes.
var (
	_ repositories.UserRepository         = (*fakeUserRepo)(nil)
	_ repositories.ReportRepository       = (*fakeReportRepo)(nil)
	_ repositories.RewardRepository       = (*fakeRewardRepo)(nil)
	_ repositories.TransactionRepository  = (*fakeTransactionRepo)(nil)
	_ repositories.BadgeRepository        = (*fakeBadgeRepo)(nil)
	_ repositories.NotificationRepository = (*fakeNotificationRepo)(nil)
	_ repositories.SessionRepository      = (*fakeSessionRepo)(nil)

	_ UserService         = (*fakeUserService)(nil)
	_ NotificationService = (*fakeNotifier)(nil)
	_ RewardService       = (*fakeRewardService)(nil)
	_ ProgressService     = (*fakeProgressService)(nil)
	_ BadgeService        = (*fakeBadgeService)(nil)
	_ events.EventBus     = (*fakeEventBus)(nil)
)
