package repositories

import (
	"context"
	"fmt"
	"greenquest/internal/database"
	"time"

	"go.uber.org/zap"
)

// Collection holds all repository instances for dependency injection
type Collection struct {
	User         UserRepository
	Session      SessionRepository
	Report       ReportRepository
	Reward       RewardRepository
	Transaction  TransactionRepository
	Badge        BadgeRepository
	Notification NotificationRepository

	// Database and logger for custom operations
	db     *database.Manager
	logger *zap.Logger
}

// RepositoryConfig holds configuration for repository initialization
type RepositoryConfig struct {
	EnableQueryLogging bool
	SlowQueryThreshold time.Duration
}

// NewCollection creates a new repository collection with all dependencies
func NewCollection(db *database.Manager, logger *zap.Logger, config *RepositoryConfig) (*Collection, error) {
	if db == nil {
		return nil, fmt.Errorf("database manager is required")
	}

	if logger == nil {
		logger, _ = zap.NewProduction()
	}

	if config == nil {
		config = &RepositoryConfig{
			EnableQueryLogging: true,
			SlowQueryThreshold: 100 * time.Millisecond,
		}
	}

	collection := &Collection{
		db:     db,
		logger: logger,
	}

	collection.User = NewUserRepository(db, logger)
	collection.Session = NewSessionRepository(db, logger)
	collection.Report = NewReportRepository(db, logger)
	collection.Reward = NewRewardRepository(db, logger)
	collection.Transaction = NewTransactionRepository(db, logger)
	collection.Badge = NewBadgeRepository(db, logger)
	collection.Notification = NewNotificationRepository(db, logger)

	logger.Info("Repository collection initialized successfully",
		zap.Bool("query_logging", config.EnableQueryLogging),
		zap.Duration("slow_query_threshold", config.SlowQueryThreshold),
	)

	return collection, nil
}

// ===============================
// HEALTH AND MONITORING
// ===============================

// HealthCheck performs health checks on the database and repositories
func (c *Collection) HealthCheck(ctx context.Context) map[string]interface{} {
	health := make(map[string]interface{})

	start := time.Now()
	dbCheck := map[string]interface{}{"healthy": true}
	if err := c.db.Health(ctx); err != nil {
		dbCheck["healthy"] = false
		dbCheck["error"] = err.Error()
	}
	dbCheck["response_time"] = time.Since(start)
	health["database"] = dbCheck

	health["repositories"] = c.checkRepositoriesHealth(ctx)

	metrics := c.db.Metrics()
	health["performance"] = map[string]interface{}{
		"query_count":      metrics.QueryCount,
		"error_count":      metrics.ErrorCount,
		"slow_query_count": metrics.SlowQueryCount,
		"avg_query_time":   metrics.AvgQueryTime,
	}

	return health
}

// checkRepositoriesHealth runs a lightweight probe query per repository
func (c *Collection) checkRepositoriesHealth(ctx context.Context) map[string]interface{} {
	checks := make(map[string]interface{})

	checks["user"] = c.testRepositoryHealth(ctx, "users", func() error {
		_, err := c.User.CountByRole(ctx)
		return err
	})

	checks["transaction"] = c.testRepositoryHealth(ctx, "transactions", func() error {
		_, err := c.Transaction.GetBalance(ctx, 1)
		return err
	})

	checks["badge"] = c.testRepositoryHealth(ctx, "badges", func() error {
		_, err := c.Badge.ListActive(ctx)
		return err
	})

	checks["notification"] = c.testRepositoryHealth(ctx, "notifications", func() error {
		_, err := c.Notification.CountUnread(ctx, 1)
		return err
	})

	return checks
}

// testRepositoryHealth runs a test operation for a repository
func (c *Collection) testRepositoryHealth(ctx context.Context, name string, testFn func() error) map[string]interface{} {
	start := time.Now()
	err := testFn()
	duration := time.Since(start)

	result := map[string]interface{}{
		"duration": duration,
		"healthy":  err == nil,
	}

	if err != nil {
		result["error"] = err.Error()
		c.logger.Warn("Repository health check failed",
			zap.String("repository", name),
			zap.Error(err),
			zap.Duration("duration", duration),
		)
	}

	return result
}

// ===============================
// MAINTENANCE
// ===============================

// CleanupExpiredData purges expired sessions
func (c *Collection) CleanupExpiredData(ctx context.Context) error {
	sessionsDeleted, err := c.Session.DeleteExpired(ctx)
	if err != nil {
		return fmt.Errorf("failed to cleanup sessions: %w", err)
	}

	c.logger.Info("Batch cleanup completed",
		zap.Int("sessions_deleted", sessionsDeleted),
	)

	return nil
}

// ===============================
// UTILITIES
// ===============================

// GetDB returns the underlying database manager for advanced operations
func (c *Collection) GetDB() *database.Manager {
	return c.db
}

// GetLogger returns the logger instance
func (c *Collection) GetLogger() *zap.Logger {
	return c.logger
}

// Close closes all repository connections and cleans up resources
func (c *Collection) Close() error {
	c.logger.Info("Closing repository collection")

	if c.db != nil {
		return c.db.Close()
	}

	return nil
}
