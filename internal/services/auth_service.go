package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"greenquest/internal/events"
	"greenquest/internal/models"
	"greenquest/internal/repositories"
	"greenquest/internal/validation"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthConfig holds authentication service configuration
type AuthConfig struct {
	SessionTTL     time.Duration `json:"session_ttl"`
	AccessTokenTTL time.Duration `json:"access_token_ttl"`
	BCryptCost     int           `json:"bcrypt_cost"`
	JWTSecret      string        `json:"-"`
}

// DefaultAuthConfig returns default authentication configuration
func DefaultAuthConfig() *AuthConfig {
	return &AuthConfig{
		SessionTTL:     24 * time.Hour,
		AccessTokenTTL: 1 * time.Hour,
		BCryptCost:     12,
	}
}

// authService implements AuthService. Sessions are server-issued rows
// resolved to a user and role on every request; the short-lived JWT
// access token is a convenience for API clients and never carries
// authority over the session row.
type authService struct {
	userRepo    repositories.UserRepository
	sessionRepo repositories.SessionRepository
	userService UserService
	events      events.EventBus
	logger      *zap.Logger
	config      *AuthConfig
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo repositories.UserRepository,
	sessionRepo repositories.SessionRepository,
	userService UserService,
	eventBus events.EventBus,
	logger *zap.Logger,
	config *AuthConfig,
) AuthService {
	if config == nil {
		config = DefaultAuthConfig()
	}
	return &authService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		userService: userService,
		events:      eventBus,
		logger:      logger,
		config:      config,
	}
}

// ===============================
// AUTHENTICATION
// ===============================

// Register creates a new user account and an initial session
func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid registration request", err)
	}

	user, err := s.userService.CreateUser(ctx, &CreateUserRequest{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
		Role:     models.RoleUser,
	})
	if err != nil {
		return nil, err
	}

	resp, err := s.issueSession(ctx, user, req.IPAddress, req.UserAgent)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User registered",
		zap.Int64("user_id", user.ID),
		zap.String("username", user.Username),
	)

	return resp, nil
}

// Login authenticates by email or username and creates a session
func (s *authService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid login request", err)
	}

	var user *models.User
	var err error
	if strings.Contains(req.Identifier, "@") {
		user, err = s.userRepo.GetByEmail(ctx, req.Identifier)
	} else {
		user, err = s.userRepo.GetByUsername(ctx, req.Identifier)
	}
	if err != nil {
		s.logger.Error("Failed to load user during login", zap.Error(err))
		return nil, NewInternalError("authentication failed")
	}
	if user == nil {
		return nil, NewUnauthorizedError("invalid credentials")
	}
	if !user.IsActive {
		return nil, NewUnauthorizedError("account is deactivated")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("Invalid password attempt",
			zap.Int64("user_id", user.ID),
			zap.String("username", user.Username),
		)
		return nil, NewUnauthorizedError("invalid credentials")
	}

	resp, err := s.issueSession(ctx, user, req.IPAddress, req.UserAgent)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateLastSeen(ctx, user.ID); err != nil {
		s.logger.Warn("Failed to update last seen", zap.Error(err), zap.Int64("user_id", user.ID))
	}

	var ip, ua string
	if req.IPAddress != nil {
		ip = *req.IPAddress
	}
	if req.UserAgent != nil {
		ua = *req.UserAgent
	}
	if err := s.events.Publish(ctx, events.NewUserLoggedInEvent(user.ID, ip, ua)); err != nil {
		s.logger.Warn("Failed to publish login event", zap.Error(err))
	}

	s.logger.Info("User logged in",
		zap.Int64("user_id", user.ID),
		zap.String("username", user.Username),
	)

	return resp, nil
}

// Logout invalidates a single session
func (s *authService) Logout(ctx context.Context, req *LogoutRequest) error {
	if err := validation.ValidateStruct(req); err != nil {
		return NewValidationError("invalid logout request", err)
	}

	session, err := s.sessionRepo.GetByToken(ctx, req.SessionToken)
	if err != nil {
		return NewInternalError("failed to load session")
	}
	if session == nil {
		// Already gone; logout is idempotent.
		return nil
	}

	if err := s.sessionRepo.Delete(ctx, session.ID); err != nil {
		return NewInternalError("failed to logout")
	}

	if err := s.events.Publish(ctx, events.NewUserLoggedOutEvent(session.UserID)); err != nil {
		s.logger.Warn("Failed to publish logout event", zap.Error(err))
	}

	s.logger.Info("User logged out", zap.Int64("user_id", session.UserID))
	return nil
}

// LogoutAllDevices invalidates every session for a user
func (s *authService) LogoutAllDevices(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return NewValidationError("invalid user ID", nil)
	}

	if err := s.sessionRepo.DeleteByUserID(ctx, userID); err != nil {
		return NewInternalError("failed to logout from all devices")
	}

	s.logger.Info("User logged out from all devices", zap.Int64("user_id", userID))
	return nil
}

// ChangePassword verifies the current password, stores the new hash
// and invalidates every existing session.
func (s *authService) ChangePassword(ctx context.Context, req *ChangePasswordRequest) error {
	if err := validation.ValidateStruct(req); err != nil {
		return NewValidationError("invalid change password request", err)
	}

	user, err := s.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		return NewInternalError("failed to load user")
	}
	if user == nil {
		return NewNotFoundError("user not found")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return NewValidationError("current password is incorrect", nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.config.BCryptCost)
	if err != nil {
		return NewInternalError("failed to hash password")
	}

	user.PasswordHash = string(hash)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return NewInternalError("failed to change password")
	}

	if err := s.sessionRepo.DeleteByUserID(ctx, req.UserID); err != nil {
		s.logger.Warn("Failed to invalidate sessions after password change", zap.Error(err))
	}

	if err := s.events.Publish(ctx, events.NewPasswordChangedEvent(req.UserID)); err != nil {
		s.logger.Warn("Failed to publish password changed event", zap.Error(err))
	}

	s.logger.Info("Password changed", zap.Int64("user_id", req.UserID))
	return nil
}

// ===============================
// SESSION MANAGEMENT
// ===============================

// ValidateSession resolves a session token to the user and their
// current server-side role. Expired sessions are deleted on sight.
func (s *authService) ValidateSession(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, NewUnauthorizedError("missing session token")
	}

	session, err := s.sessionRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, NewInternalError("failed to load session")
	}
	if session == nil || !session.IsActive {
		return nil, NewUnauthorizedError("invalid session")
	}
	if session.IsExpired() {
		if err := s.sessionRepo.Delete(ctx, session.ID); err != nil {
			s.logger.Warn("Failed to delete expired session", zap.Error(err), zap.Int64("session_id", session.ID))
		}
		return nil, NewUnauthorizedError("session expired")
	}

	if err := s.sessionRepo.UpdateLastActivity(ctx, session.ID); err != nil {
		s.logger.Warn("Failed to update session activity", zap.Error(err), zap.Int64("session_id", session.ID))
	}

	return session, nil
}

// CleanupExpiredSessions removes expired session rows
func (s *authService) CleanupExpiredSessions(ctx context.Context) (int, error) {
	deleted, err := s.sessionRepo.DeleteExpired(ctx)
	if err != nil {
		return 0, NewInternalError("failed to cleanup sessions")
	}
	if deleted > 0 {
		s.logger.Info("Expired sessions cleaned up", zap.Int("deleted", deleted))
	}
	return deleted, nil
}

// ===============================
// TOKEN HELPERS
// ===============================

// issueSession creates a session row plus a short-lived access token
func (s *authService) issueSession(ctx context.Context, user *models.User, ipAddress, userAgent *string) (*AuthResponse, error) {
	token, err := generateSessionToken()
	if err != nil {
		return nil, NewInternalError("failed to generate session token")
	}

	session := &models.Session{
		UserID:       user.ID,
		SessionToken: token,
		ExpiresAt:    time.Now().Add(s.config.SessionTTL),
		LastActivity: time.Now(),
		IPAddress:    ipAddress,
		UserAgent:    userAgent,
		IsActive:     true,
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		s.logger.Error("Failed to create session", zap.Error(err), zap.Int64("user_id", user.ID))
		return nil, NewInternalError("failed to create session")
	}

	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, NewInternalError("failed to generate access token")
	}

	user.PasswordHash = ""

	return &AuthResponse{
		User:         user,
		SessionToken: token,
		AccessToken:  accessToken,
		ExpiresAt:    session.ExpiresAt,
	}, nil
}

// generateAccessToken signs a short-lived JWT for API clients. The
// role claim is informational; authorization always re-reads the role
// from the session lookup.
func (s *authService) generateAccessToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      fmt.Sprintf("%d", user.ID),
		"username": user.Username,
		"role":     user.Role,
		"iat":      now.Unix(),
		"exp":      now.Add(s.config.AccessTokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

// generateSessionToken generates a secure random session token
func generateSessionToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}
