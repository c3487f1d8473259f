package middleware

import (
	"context"
	"net/http"
	"strings"

	"greenquest/internal/contextutils"
	"greenquest/internal/models"
	"greenquest/internal/response"
	"greenquest/internal/services"

	"go.uber.org/zap"
)

// AuthMiddleware resolves session tokens into an authenticated request
// context. Roles always come from the stored session row, never from a
// client-supplied token.
type AuthMiddleware struct {
	authService services.AuthService
	builder     *response.Builder
	cookieName  string
	logger      *zap.Logger
}

// NewAuthMiddleware creates session authentication middleware
func NewAuthMiddleware(
	authService services.AuthService,
	builder *response.Builder,
	cookieName string,
	logger *zap.Logger,
) *AuthMiddleware {
	if cookieName == "" {
		cookieName = "gq_session"
	}
	return &AuthMiddleware{
		authService: authService,
		builder:     builder,
		cookieName:  cookieName,
		logger:      logger,
	}
}

// Authenticate validates the session token from the request. When
// required is false, unauthenticated requests pass through without an
// identity in context.
func (am *AuthMiddleware) Authenticate(required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := am.extractToken(r)
			if token == "" {
				if required {
					am.builder.WriteError(w, r, services.NewUnauthorizedError("authentication required"))
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			session, err := am.authService.ValidateSession(r.Context(), token)
			if err != nil {
				if required {
					am.builder.WriteError(w, r, err)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx := contextutils.WithUserID(r.Context(), session.UserID)
			ctx = contextutils.WithUserRole(ctx, session.UserRole)
			ctx = context.WithValue(ctx, SessionKey, session)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole allows only requests whose session role is in the list.
// Must run after Authenticate(true).
func (am *AuthMiddleware) RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := contextutils.GetUserRole(r.Context())
			if role == "" {
				am.builder.WriteError(w, r, services.NewUnauthorizedError("authentication required"))
				return
			}

			for _, allowed := range roles {
				if role == allowed {
					next.ServeHTTP(w, r)
					return
				}
			}

			am.logger.Warn("Role check failed",
				zap.Int64("user_id", contextutils.GetUserID(r.Context())),
				zap.String("role", role),
				zap.String("path", r.URL.Path),
			)
			am.builder.WriteError(w, r, services.NewForbiddenError("insufficient permissions"))
		})
	}
}

// extractToken reads the session token from the session cookie or the
// Authorization header.
func (am *AuthMiddleware) extractToken(r *http.Request) string {
	if cookie, err := r.Cookie(am.cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// GetSession extracts the authenticated session from context
func GetSession(ctx context.Context) *models.Session {
	if session, ok := ctx.Value(SessionKey).(*models.Session); ok {
		return session
	}
	return nil
}
