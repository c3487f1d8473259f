package repositories

import (
	"context"
	"fmt"
	"greenquest/internal/database"
	"greenquest/internal/models"
	"time"

	"go.uber.org/zap"
)

type sessionRepository struct {
	*BaseRepository
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *database.Manager, logger *zap.Logger) SessionRepository {
	return &sessionRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// Create stores a new session
func (r *sessionRepository) Create(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO sessions (user_id, session_token, expires_at, last_activity, ip_address, user_agent, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	now := time.Now()
	session.CreatedAt = now
	session.LastActivity = now
	session.IsActive = true

	err := r.QueryRowContext(ctx, query,
		session.UserID,
		session.SessionToken,
		session.ExpiresAt,
		session.LastActivity,
		session.IPAddress,
		session.UserAgent,
		session.IsActive,
		session.CreatedAt,
	).Scan(&session.ID)

	if err != nil {
		r.GetLogger().Error("Failed to create session", zap.Error(err), zap.Int64("user_id", session.UserID))
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// GetByToken resolves a session token to the session and the holder's
// role. The role always comes from this lookup, never from the client.
func (r *sessionRepository) GetByToken(ctx context.Context, token string) (*models.Session, error) {
	query := `
		SELECT s.id, s.user_id, s.session_token, s.expires_at, s.last_activity,
		       s.ip_address, s.user_agent, s.is_active, s.created_at, u.role
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.session_token = $1 AND s.is_active = true`

	session := &models.Session{}
	err := r.QueryRowContext(ctx, query, token).Scan(
		&session.ID,
		&session.UserID,
		&session.SessionToken,
		&session.ExpiresAt,
		&session.LastActivity,
		&session.IPAddress,
		&session.UserAgent,
		&session.IsActive,
		&session.CreatedAt,
		&session.UserRole,
	)

	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		r.GetLogger().Error("Failed to get session by token", zap.Error(err))
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return session, nil
}

// UpdateLastActivity touches the session's activity timestamp
func (r *sessionRepository) UpdateLastActivity(ctx context.Context, id int64) error {
	query := `UPDATE sessions SET last_activity = $2 WHERE id = $1`

	_, err := r.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update session activity: %w", err)
	}
	return nil
}

// Delete removes a session
func (r *sessionRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM sessions WHERE id = $1`

	_, err := r.ExecContext(ctx, query, id)
	if err != nil {
		r.GetLogger().Error("Failed to delete session", zap.Error(err), zap.Int64("session_id", id))
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteByUserID removes all sessions for a user
func (r *sessionRepository) DeleteByUserID(ctx context.Context, userID int64) error {
	query := `DELETE FROM sessions WHERE user_id = $1`

	_, err := r.ExecContext(ctx, query, userID)
	if err != nil {
		r.GetLogger().Error("Failed to delete user sessions", zap.Error(err), zap.Int64("user_id", userID))
		return fmt.Errorf("failed to delete user sessions: %w", err)
	}
	return nil
}

// DeleteExpired purges expired sessions and returns how many were removed
func (r *sessionRepository) DeleteExpired(ctx context.Context) (int, error) {
	query := `DELETE FROM sessions WHERE expires_at < $1`

	result, err := r.ExecContext(ctx, query, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(rowsAffected), nil
}
