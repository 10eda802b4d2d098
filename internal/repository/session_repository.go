package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/placement-api/internal/models"
)

// SessionRepository persists admin sessions referenced by issued tokens.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository constructs a SessionRepository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create stores a new session.
func (r *SessionRepository) Create(ctx context.Context, session *models.AdminSession) error {
	query := r.db.Rebind("INSERT INTO admin_sessions (id, user_id, username, created_at, expires_at) VALUES (?, ?, ?, ?, ?)")
	if _, err := r.db.ExecContext(ctx, query, session.ID, session.UserID, session.Username, session.CreatedAt, session.ExpiresAt); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// FindByID returns a session by id.
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*models.AdminSession, error) {
	query := r.db.Rebind("SELECT id, user_id, username, created_at, expires_at, revoked_at FROM admin_sessions WHERE id = ?")
	var session models.AdminSession
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find session: %w", err)
	}
	return &session, nil
}

// Revoke marks a session as ended. Revoking twice keeps the first timestamp.
func (r *SessionRepository) Revoke(ctx context.Context, id string, at time.Time) error {
	query := r.db.Rebind("UPDATE admin_sessions SET revoked_at = ? WHERE id = ? AND revoked_at IS NULL")
	if _, err := r.db.ExecContext(ctx, query, at, id); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// DeleteExpired prunes sessions that expired before the cutoff.
func (r *SessionRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM admin_sessions WHERE expires_at < ?"), before)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
