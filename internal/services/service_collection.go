package services

import (
	"context"
	"fmt"
	"greenquest/internal/cache"
	"greenquest/internal/config"
	"greenquest/internal/database"
	"greenquest/internal/events"
	"greenquest/internal/repositories"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"go.uber.org/zap"
)

// ServiceCollection wires every service with its dependencies. Services
// are constructed in dependency order: infrastructure, repositories,
// then business services from the ledger outward.
type ServiceCollection struct {
	// Core services
	UserService         UserService         `json:"-"`
	AuthService         AuthService         `json:"-"`
	ReportService       ReportService       `json:"-"`
	LedgerService       LedgerService       `json:"-"`
	RewardService       RewardService       `json:"-"`
	ProgressService     ProgressService     `json:"-"`
	BadgeService        BadgeService        `json:"-"`
	NotificationService NotificationService `json:"-"`

	// Infrastructure services
	FileService FileService `json:"-"`

	// Infrastructure components
	Repositories *repositories.Collection `json:"-"`
	Cache        cache.Cache              `json:"-"`
	EventBus     events.EventBus          `json:"-"`
	Cloudinary   *cloudinary.Cloudinary   `json:"-"`
	Logger       *zap.Logger              `json:"-"`
	Config       *config.Config           `json:"-"`
	DBManager    *database.Manager        `json:"-"`
}

// NewServiceCollection creates and wires the full service graph
func NewServiceCollection(
	dbManager *database.Manager,
	cfg *config.Config,
	logger *zap.Logger,
) (*ServiceCollection, error) {
	if dbManager == nil {
		return nil, fmt.Errorf("database manager is required")
	}
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	sc := &ServiceCollection{
		DBManager: dbManager,
		Config:    cfg,
		Logger:    logger,
	}

	if err := sc.initializeInfrastructure(); err != nil {
		return nil, fmt.Errorf("failed to initialize infrastructure: %w", err)
	}
	if err := sc.initializeRepositories(); err != nil {
		return nil, fmt.Errorf("failed to initialize repositories: %w", err)
	}
	if err := sc.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	logger.Info("Service collection initialized")
	return sc, nil
}

// ===============================
// INITIALIZATION
// ===============================

func (sc *ServiceCollection) initializeInfrastructure() error {
	cacheConfig := &cache.Config{
		Provider:      sc.Config.Cache.Provider,
		TTL:           sc.Config.Cache.DefaultTTL,
		RedisURL:      sc.Config.Cache.RedisURL,
		RedisDB:       sc.Config.Cache.RedisDB,
		RedisPassword: sc.Config.Cache.RedisPassword,
		PoolSize:      sc.Config.Cache.PoolSize,
	}
	c, err := cache.NewCache(cacheConfig, sc.Logger)
	if err != nil {
		return fmt.Errorf("failed to create cache: %w", err)
	}
	sc.Cache = c

	sc.EventBus = events.NewInMemoryEventBus(events.DefaultEventBusConfig(), sc.Logger)

	if sc.Config.Cloudinary.CloudName != "" {
		cld, err := cloudinary.NewFromParams(
			sc.Config.Cloudinary.CloudName,
			sc.Config.Cloudinary.APIKey,
			sc.Config.Cloudinary.APISecret,
		)
		if err != nil {
			return fmt.Errorf("failed to initialize Cloudinary: %w", err)
		}
		sc.Cloudinary = cld
	}

	return nil
}

func (sc *ServiceCollection) initializeRepositories() error {
	repoConfig := &repositories.RepositoryConfig{
		EnableQueryLogging: sc.Config.Database.EnableQueryLogging,
		SlowQueryThreshold: sc.Config.Database.SlowQueryThreshold,
	}

	var err error
	sc.Repositories, err = repositories.NewCollection(sc.DBManager, sc.Logger, repoConfig)
	if err != nil {
		return fmt.Errorf("failed to create repository collection: %w", err)
	}
	return nil
}

func (sc *ServiceCollection) initializeServices() error {
	if sc.Cloudinary != nil {
		sc.FileService = NewFileService(sc.Cloudinary, sc.EventBus, sc.Logger, DefaultFileConfig())
	}

	sc.NotificationService = NewNotificationService(sc.Repositories.Notification, sc.Logger)

	sc.LedgerService = NewLedgerService(sc.Repositories.Transaction, sc.EventBus, sc.Logger)

	sc.RewardService = NewRewardService(
		sc.Repositories.Reward,
		sc.Repositories.Transaction,
		sc.NotificationService,
		sc.Cache,
		sc.EventBus,
		sc.Logger,
	)

	sc.ProgressService = NewProgressService(
		sc.Repositories.User,
		sc.Repositories.Report,
		sc.Repositories.Transaction,
		sc.NotificationService,
		sc.Cache,
		sc.EventBus,
		sc.Logger,
	)

	// Badge evaluation reads progress through a snapshot function so the
	// badge service has no direct ProgressService dependency.
	sc.BadgeService = NewBadgeService(
		sc.Repositories.Badge,
		sc.NotificationService,
		sc.ProgressService.GetUserProgress,
		sc.EventBus,
		sc.Logger,
	)

	sc.UserService = NewUserService(sc.Repositories.User, sc.Cache, sc.EventBus, sc.Logger)

	sc.AuthService = NewAuthService(
		sc.Repositories.User,
		sc.Repositories.Session,
		sc.UserService,
		sc.EventBus,
		sc.Logger,
		&AuthConfig{
			SessionTTL:     sc.Config.Auth.SessionTTL,
			AccessTokenTTL: sc.Config.Auth.JWTExpiry,
			BCryptCost:     sc.Config.Auth.BCryptCost,
			JWTSecret:      sc.Config.Auth.JWTSecret,
		},
	)

	sc.ReportService = NewReportService(
		sc.Repositories.Report,
		sc.Repositories.User,
		sc.RewardService,
		sc.ProgressService,
		sc.BadgeService,
		sc.NotificationService,
		sc.FileService,
		sc.Cache,
		sc.EventBus,
		sc.Logger,
	)

	return nil
}

// ===============================
// LIFECYCLE
// ===============================

// Start starts background components
func (sc *ServiceCollection) Start(ctx context.Context) error {
	if err := sc.EventBus.Start(ctx); err != nil {
		return fmt.Errorf("failed to start event bus: %w", err)
	}

	// Session cleanup runs on a timer for the life of the process.
	go sc.runSessionCleanup(ctx)

	sc.Logger.Info("Service collection started")
	return nil
}

// Shutdown gracefully shuts down all components
func (sc *ServiceCollection) Shutdown(ctx context.Context) error {
	sc.Logger.Info("Shutting down service collection")

	var errs []error
	if err := sc.EventBus.Stop(ctx); err != nil {
		errs = append(errs, fmt.Errorf("event bus stop: %w", err))
	}
	if err := sc.Cache.Close(); err != nil {
		errs = append(errs, fmt.Errorf("cache close: %w", err))
	}
	if err := sc.Repositories.Close(); err != nil {
		errs = append(errs, fmt.Errorf("repositories close: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown completed with %d errors: %v", len(errs), errs)
	}

	sc.Logger.Info("Service collection shutdown completed")
	return nil
}

// HealthCheck probes the collection's dependencies
func (sc *ServiceCollection) HealthCheck(ctx context.Context) error {
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := sc.DBManager.Health(checkCtx); err != nil {
		return fmt.Errorf("database unhealthy: %w", err)
	}
	if err := sc.Cache.Health(checkCtx); err != nil {
		return fmt.Errorf("cache unhealthy: %w", err)
	}
	if err := sc.EventBus.Health(); err != nil {
		return fmt.Errorf("event bus unhealthy: %w", err)
	}
	return nil
}

func (sc *ServiceCollection) runSessionCleanup(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if _, err := sc.AuthService.CleanupExpiredSessions(cleanupCtx); err != nil {
				sc.Logger.Error("Session cleanup failed", zap.Error(err))
			}
			cancel()
		case <-ctx.Done():
			return
		}
	}
}
