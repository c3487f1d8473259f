package router

import (
	"net/http"

	"greenquest/internal/config"
	"greenquest/internal/handlers/api/v1/auth"
	"greenquest/internal/handlers/api/v1/badges"
	"greenquest/internal/handlers/api/v1/notifications"
	"greenquest/internal/handlers/api/v1/reports"
	"greenquest/internal/handlers/api/v1/rewards"
	"greenquest/internal/handlers/api/v1/users"
	"greenquest/internal/middleware"
	"greenquest/internal/models"
	"greenquest/internal/response"
	"greenquest/internal/services"

	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// New configures all HTTP routes and wraps them with the middleware
// stack. Returns the root handler.
func New(
	sc *services.ServiceCollection,
	cfg *config.Config,
	logger *zap.Logger,
) http.Handler {
	mux := http.NewServeMux()

	responseConfig := response.DefaultConfig()
	if cfg.IsDevelopment() {
		responseConfig = response.DevelopmentConfig()
	}
	builder := response.NewBuilder(responseConfig, logger)

	authMW := middleware.NewAuthMiddleware(sc.AuthService, builder, cfg.Auth.SessionName, logger)

	addHealthRoutes(mux, sc, builder)
	addSwaggerRoutes(mux)
	addAPIRoutes(mux, sc, cfg, authMW, builder, logger)

	// Outermost first: request ID, logging, recovery, then security.
	var handler http.Handler = mux
	handler = middleware.RateLimit(sc.Cache, &cfg.Security, logger)(handler)
	handler = middleware.SecureHeaders(&cfg.Security)(handler)
	handler = middleware.CORS(&cfg.Security)(handler)
	handler = middleware.Recovery(logger)(handler)
	handler = middleware.RequestLogging()(handler)
	handler = middleware.RequestID(logger)(handler)

	logger.Info("Router configured",
		zap.String("environment", cfg.Server.Environment),
		zap.String("swagger_ui", "/swagger/"),
	)

	return handler
}

// addAPIRoutes registers the versioned JSON API
func addAPIRoutes(
	mux *http.ServeMux,
	sc *services.ServiceCollection,
	cfg *config.Config,
	authMW *middleware.AuthMiddleware,
	builder *response.Builder,
	logger *zap.Logger,
) {
	authController := auth.NewAuthController(sc, logger, builder, &cfg.Auth)
	userController := users.NewUserController(sc, logger, builder)
	reportController := reports.NewReportController(sc, logger, builder)
	rewardController := rewards.NewRewardController(sc, logger, builder)
	badgeController := badges.NewBadgeController(sc, logger, builder)
	notificationController := notifications.NewNotificationController(sc, logger, builder)

	public := func(h http.HandlerFunc) http.Handler {
		return authMW.Authenticate(false)(h)
	}
	authed := func(h http.HandlerFunc) http.Handler {
		return authMW.Authenticate(true)(h)
	}
	role := func(h http.HandlerFunc, roles ...string) http.Handler {
		return authMW.Authenticate(true)(authMW.RequireRole(roles...)(h))
	}

	// Auth
	mux.Handle("POST /api/v1/auth/register", public(authController.Register))
	mux.Handle("POST /api/v1/auth/login", public(authController.Login))
	mux.Handle("POST /api/v1/auth/logout", public(authController.Logout))
	mux.Handle("POST /api/v1/auth/logout-all", authed(authController.LogoutAllDevices))
	mux.Handle("POST /api/v1/auth/change-password", authed(authController.ChangePassword))
	mux.Handle("GET /api/v1/auth/me", authed(authController.Me))

	// Users & progress
	mux.Handle("GET /api/v1/users/leaderboard", public(userController.GetLeaderboard))
	mux.Handle("GET /api/v1/users/profile", authed(userController.GetProfile))
	mux.Handle("PUT /api/v1/users/profile", authed(userController.UpdateProfile))
	mux.Handle("DELETE /api/v1/users/profile", authed(userController.DeactivateAccount))
	mux.Handle("GET /api/v1/users/progress", authed(userController.GetMyProgress))
	mux.Handle("GET /api/v1/users/{id}", authed(userController.GetUser))
	mux.Handle("GET /api/v1/users/{id}/progress", authed(userController.GetUserProgress))
	mux.Handle("GET /api/v1/users", role(userController.ListUsers, models.RoleAdmin))
	mux.Handle("PUT /api/v1/users/{id}/role", role(userController.UpdateRole, models.RoleAdmin))
	mux.Handle("GET /api/v1/admin/stats", role(userController.GetPlatformStats, models.RoleAdmin))

	// Reports & pickups
	mux.Handle("POST /api/v1/reports", authed(reportController.CreateReport))
	mux.Handle("GET /api/v1/reports", role(reportController.ListReports, models.RoleAdmin, models.RoleAgent))
	mux.Handle("GET /api/v1/reports/mine", authed(reportController.GetMyReports))
	mux.Handle("GET /api/v1/reports/{id}", authed(reportController.GetReport))
	mux.Handle("PUT /api/v1/reports/{id}", authed(reportController.UpdateReport))
	mux.Handle("DELETE /api/v1/reports/{id}", authed(reportController.DeleteReport))
	mux.Handle("PUT /api/v1/reports/{id}/status", authed(reportController.UpdateStatus))
	mux.Handle("POST /api/v1/reports/{id}/assign", role(reportController.AssignPickup, models.RoleAdmin))
	mux.Handle("POST /api/v1/reports/{id}/complete", role(reportController.CompletePickup, models.RoleAgent))
	mux.Handle("GET /api/v1/pickups", role(reportController.GetPickupTasks, models.RoleAgent))

	// Rewards & ledger
	mux.Handle("GET /api/v1/rewards", authed(rewardController.GetMyRewards))
	mux.Handle("GET /api/v1/rewards/catalog", public(rewardController.GetCatalog))
	mux.Handle("POST /api/v1/rewards/redeem", authed(rewardController.Redeem))
	mux.Handle("GET /api/v1/rewards/balance", authed(rewardController.GetBalance))
	mux.Handle("POST /api/v1/rewards/grant", role(rewardController.GrantReward, models.RoleAdmin))
	mux.Handle("POST /api/v1/rewards/catalog", role(rewardController.CreateCatalogReward, models.RoleAdmin))
	mux.Handle("PUT /api/v1/rewards/catalog/{id}", role(rewardController.UpdateCatalogReward, models.RoleAdmin))
	mux.Handle("GET /api/v1/transactions", authed(rewardController.GetTransactions))

	// Badges
	mux.Handle("GET /api/v1/badges", public(badgeController.ListBadges))
	mux.Handle("GET /api/v1/badges/mine", authed(badgeController.GetMyBadges))
	mux.Handle("POST /api/v1/badges/check", authed(badgeController.CheckBadges))
	mux.Handle("POST /api/v1/badges", role(badgeController.CreateBadge, models.RoleAdmin))
	mux.Handle("PUT /api/v1/badges/{id}", role(badgeController.UpdateBadge, models.RoleAdmin))

	// Notifications
	mux.Handle("GET /api/v1/notifications", authed(notificationController.List))
	mux.Handle("GET /api/v1/notifications/unread-count", authed(notificationController.UnreadCount))
	mux.Handle("POST /api/v1/notifications/read-all", authed(notificationController.MarkAllRead))
	mux.Handle("POST /api/v1/notifications/{id}/read", authed(notificationController.MarkRead))
}

// addHealthRoutes registers liveness and readiness probes
func addHealthRoutes(mux *http.ServeMux, sc *services.ServiceCollection, builder *response.Builder) {
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		builder.WriteSuccess(w, r, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := sc.HealthCheck(r.Context()); err != nil {
			builder.WriteError(w, r, services.NewServiceUnavailableError(err.Error()))
			return
		}
		builder.WriteSuccess(w, r, map[string]string{"status": "ready"})
	})
}

// addSwaggerRoutes serves the API documentation
func addSwaggerRoutes(mux *http.ServeMux) {
	mux.Handle("GET /swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	mux.HandleFunc("GET /swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		http.ServeFile(w, r, "./docs/swagger.json")
	})
}
