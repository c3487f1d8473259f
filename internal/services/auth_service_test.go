package services

import (
	"context"
	"greenquest/internal/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// testAuthConfig keeps bcrypt cheap so the suite stays fast.
func testAuthConfig() *AuthConfig {
	return &AuthConfig{
		SessionTTL:     time.Hour,
		AccessTokenTTL: time.Minute,
		BCryptCost:     bcrypt.MinCost,
		JWTSecret:      "test-secret",
	}
}

func hashFor(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	activeUser := func(t *testing.T) *models.User {
		return &models.User{
			ID:           7,
			Email:        "kiprotich@example.com",
			Username:     "kiprotich",
			PasswordHash: hashFor(t, "correct horse"),
			Role:         models.RoleUser,
			IsActive:     true,
			Level:        1,
		}
	}

	t.Run("email identifier with the right password", func(t *testing.T) {
		user := activeUser(t)
		userRepo := &fakeUserRepo{
			getByEmail: func(ctx context.Context, email string) (*models.User, error) {
				assert.Equal(t, user.Email, email)
				return user, nil
			},
		}
		var storedSession *models.Session
		sessionRepo := &fakeSessionRepo{
			create: func(ctx context.Context, session *models.Session) error {
				session.ID = 1
				storedSession = session
				return nil
			},
		}
		bus := &fakeEventBus{}
		svc := NewAuthService(userRepo, sessionRepo, &fakeUserService{}, bus, zap.NewNop(), testAuthConfig())

		resp, err := svc.Login(ctx, &LoginRequest{Identifier: "kiprotich@example.com", Password: "correct horse"})
		require.NoError(t, err)

		assert.NotEmpty(t, resp.SessionToken)
		assert.NotEmpty(t, resp.AccessToken)
		assert.Equal(t, resp.SessionToken, storedSession.SessionToken)
		assert.True(t, storedSession.IsActive)
		assert.Empty(t, resp.User.PasswordHash, "hash never leaves the service")
		assert.Contains(t, bus.eventTypes(), "user.logged_in")
	})

	t.Run("username identifier routes to the username lookup", func(t *testing.T) {
		user := activeUser(t)
		var byUsername bool
		userRepo := &fakeUserRepo{
			getByUsername: func(ctx context.Context, username string) (*models.User, error) {
				byUsername = true
				return user, nil
			},
		}
		svc := NewAuthService(userRepo, &fakeSessionRepo{}, &fakeUserService{}, &fakeEventBus{}, zap.NewNop(), testAuthConfig())

		_, err := svc.Login(ctx, &LoginRequest{Identifier: "kiprotich", Password: "correct horse"})
		require.NoError(t, err)
		assert.True(t, byUsername)
	})

	t.Run("wrong password", func(t *testing.T) {
		user := activeUser(t)
		userRepo := &fakeUserRepo{
			getByUsername: func(ctx context.Context, username string) (*models.User, error) {
				return user, nil
			},
		}
		var sessionCreated bool
		sessionRepo := &fakeSessionRepo{
			create: func(ctx context.Context, session *models.Session) error {
				sessionCreated = true
				return nil
			},
		}
		svc := NewAuthService(userRepo, sessionRepo, &fakeUserService{}, &fakeEventBus{}, zap.NewNop(), testAuthConfig())

		_, err := svc.Login(ctx, &LoginRequest{Identifier: "kiprotich", Password: "wrong"})
		assert.True(t, IsErrorType(err, "UNAUTHORIZED"))
		assert.False(t, sessionCreated)
	})

	t.Run("unknown user gets the same error as a wrong password", func(t *testing.T) {
		svc := NewAuthService(&fakeUserRepo{}, &fakeSessionRepo{}, &fakeUserService{}, &fakeEventBus{}, zap.NewNop(), testAuthConfig())

		_, err := svc.Login(ctx, &LoginRequest{Identifier: "nobody", Password: "whatever"})
		assert.True(t, IsErrorType(err, "UNAUTHORIZED"))
	})

	t.Run("deactivated account cannot login", func(t *testing.T) {
		user := activeUser(t)
		user.IsActive = false
		userRepo := &fakeUserRepo{
			getByUsername: func(ctx context.Context, username string) (*models.User, error) {
				return user, nil
			},
		}
		svc := NewAuthService(userRepo, &fakeSessionRepo{}, &fakeUserService{}, &fakeEventBus{}, zap.NewNop(), testAuthConfig())

		_, err := svc.Login(ctx, &LoginRequest{Identifier: "kiprotich", Password: "correct horse"})
		assert.True(t, IsErrorType(err, "UNAUTHORIZED"))
	})
}

func TestValidateSession(t *testing.T) {
	ctx := context.Background()

	t.Run("live session updates its activity", func(t *testing.T) {
		var touched int64
		sessionRepo := &fakeSessionRepo{
			getByToken: func(ctx context.Context, token string) (*models.Session, error) {
				return &models.Session{
					ID:           4,
					UserID:       7,
					SessionToken: token,
					ExpiresAt:    time.Now().Add(time.Hour),
					IsActive:     true,
					UserRole:     models.RoleAgent,
				}, nil
			},
			updateLastActivity: func(ctx context.Context, id int64) error {
				touched = id
				return nil
			},
		}
		svc := NewAuthService(&fakeUserRepo{}, sessionRepo, &fakeUserService{}, &fakeEventBus{}, zap.NewNop(), testAuthConfig())

		session, err := svc.ValidateSession(ctx, "tok")
		require.NoError(t, err)
		assert.Equal(t, models.RoleAgent, session.UserRole)
		assert.Equal(t, int64(4), touched)
	})

	t.Run("expired session is deleted on sight", func(t *testing.T) {
		var deleted int64
		sessionRepo := &fakeSessionRepo{
			getByToken: func(ctx context.Context, token string) (*models.Session, error) {
				return &models.Session{
					ID:        4,
					UserID:    7,
					ExpiresAt: time.Now().Add(-time.Minute),
					IsActive:  true,
				}, nil
			},
			delete: func(ctx context.Context, id int64) error {
				deleted = id
				return nil
			},
		}
		svc := NewAuthService(&fakeUserRepo{}, sessionRepo, &fakeUserService{}, &fakeEventBus{}, zap.NewNop(), testAuthConfig())

		_, err := svc.ValidateSession(ctx, "tok")
		assert.True(t, IsErrorType(err, "UNAUTHORIZED"))
		assert.Equal(t, int64(4), deleted)
	})

	t.Run("missing token", func(t *testing.T) {
		svc := NewAuthService(&fakeUserRepo{}, &fakeSessionRepo{}, &fakeUserService{}, &fakeEventBus{}, zap.NewNop(), testAuthConfig())

		_, err := svc.ValidateSession(ctx, "")
		assert.True(t, IsErrorType(err, "UNAUTHORIZED"))
	})
}

func TestLogout(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown token is a no-op", func(t *testing.T) {
		svc := NewAuthService(&fakeUserRepo{}, &fakeSessionRepo{}, &fakeUserService{}, &fakeEventBus{}, zap.NewNop(), testAuthConfig())

		assert.NoError(t, svc.Logout(ctx, &LogoutRequest{SessionToken: "gone"}))
	})

	t.Run("known token deletes the session", func(t *testing.T) {
		var deleted int64
		sessionRepo := &fakeSessionRepo{
			getByToken: func(ctx context.Context, token string) (*models.Session, error) {
				return &models.Session{ID: 4, UserID: 7, SessionToken: token}, nil
			},
			delete: func(ctx context.Context, id int64) error {
				deleted = id
				return nil
			},
		}
		bus := &fakeEventBus{}
		svc := NewAuthService(&fakeUserRepo{}, sessionRepo, &fakeUserService{}, bus, zap.NewNop(), testAuthConfig())

		require.NoError(t, svc.Logout(ctx, &LogoutRequest{SessionToken: "tok"}))
		assert.Equal(t, int64(4), deleted)
		assert.Equal(t, []string{"user.logged_out"}, bus.eventTypes())
	})
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("success rehashes and drops every session", func(t *testing.T) {
		user := &models.User{ID: 7, PasswordHash: hashFor(t, "old pass"), IsActive: true}
		var savedHash string
		userRepo := &fakeUserRepo{
			getByID: func(ctx context.Context, id int64) (*models.User, error) {
				return user, nil
			},
			update: func(ctx context.Context, u *models.User) error {
				savedHash = u.PasswordHash
				return nil
			},
		}
		var droppedFor int64
		sessionRepo := &fakeSessionRepo{
			deleteByUserID: func(ctx context.Context, userID int64) error {
				droppedFor = userID
				return nil
			},
		}
		svc := NewAuthService(userRepo, sessionRepo, &fakeUserService{}, &fakeEventBus{}, zap.NewNop(), testAuthConfig())

		err := svc.ChangePassword(ctx, &ChangePasswordRequest{
			UserID:          7,
			CurrentPassword: "old pass",
			NewPassword:     "brand new pass",
		})
		require.NoError(t, err)

		assert.Equal(t, int64(7), droppedFor)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(savedHash), []byte("brand new pass")))
	})

	t.Run("wrong current password", func(t *testing.T) {
		user := &models.User{ID: 7, PasswordHash: hashFor(t, "old pass"), IsActive: true}
		userRepo := &fakeUserRepo{
			getByID: func(ctx context.Context, id int64) (*models.User, error) {
				return user, nil
			},
		}
		svc := NewAuthService(userRepo, &fakeSessionRepo{}, &fakeUserService{}, &fakeEventBus{}, zap.NewNop(), testAuthConfig())

		err := svc.ChangePassword(ctx, &ChangePasswordRequest{
			UserID:          7,
			CurrentPassword: "not it",
			NewPassword:     "brand new pass",
		})
		assert.True(t, IsValidationError(err))
	})
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("new accounts always start as regular users", func(t *testing.T) {
		var requestedRole string
		userService := &fakeUserService{
			createUser: func(ctx context.Context, req *CreateUserRequest) (*models.User, error) {
				requestedRole = req.Role
				return &models.User{ID: 9, Email: req.Email, Username: req.Username, Role: req.Role, IsActive: true, Level: 1}, nil
			},
		}
		svc := NewAuthService(&fakeUserRepo{}, &fakeSessionRepo{}, userService, &fakeEventBus{}, zap.NewNop(), testAuthConfig())

		resp, err := svc.Register(ctx, &RegisterRequest{
			Email:    "new@example.com",
			Username: "newuser",
			Password: "longenough",
		})
		require.NoError(t, err)

		assert.Equal(t, models.RoleUser, requestedRole)
		assert.NotEmpty(t, resp.SessionToken)
		assert.True(t, resp.ExpiresAt.After(time.Now()))
	})

	t.Run("short password is rejected before user creation", func(t *testing.T) {
		var created bool
		userService := &fakeUserService{
			createUser: func(ctx context.Context, req *CreateUserRequest) (*models.User, error) {
				created = true
				return nil, nil
			},
		}
		svc := NewAuthService(&fakeUserRepo{}, &fakeSessionRepo{}, userService, &fakeEventBus{}, zap.NewNop(), testAuthConfig())

		_, err := svc.Register(ctx, &RegisterRequest{
			Email:    "new@example.com",
			Username: "newuser",
			Password: "short",
		})
		assert.True(t, IsValidationError(err))
		assert.False(t, created)
	})
}
