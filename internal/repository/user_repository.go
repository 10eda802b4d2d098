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

const userColumns = "id, username, password_hash, email, role, last_login, status, created_at"

// UserRepository provides database access for admin accounts.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByUsername returns an account by username regardless of status.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.AdminUser, error) {
	query := r.db.Rebind("SELECT " + userColumns + " FROM admin_users WHERE username = ? LIMIT 1")
	var user models.AdminUser
	if err := r.db.GetContext(ctx, &user, query, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find user by username: %w", err)
	}
	return &user, nil
}

// FindByID returns an account by id.
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*models.AdminUser, error) {
	query := r.db.Rebind("SELECT " + userColumns + " FROM admin_users WHERE id = ? LIMIT 1")
	var user models.AdminUser
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

// ExistsByUsername checks if a username is taken, optionally excluding one id.
func (r *UserRepository) ExistsByUsername(ctx context.Context, username string, excludeID int64) (bool, error) {
	query := "SELECT 1 FROM admin_users WHERE username = ?"
	args := []interface{}{username}
	if excludeID > 0 {
		query += " AND id <> ?"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, r.db.Rebind(query+" LIMIT 1"), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check username: %w", err)
	}
	return true, nil
}

// List returns every account ordered by username. Password hashes are not selected.
func (r *UserRepository) List(ctx context.Context) ([]models.AdminUser, error) {
	users := []models.AdminUser{}
	const query = "SELECT id, username, email, role, last_login, status, created_at FROM admin_users ORDER BY username ASC"
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Count returns the number of accounts.
func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM admin_users"); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return total, nil
}

// Create inserts an account and sets its id.
func (r *UserRepository) Create(ctx context.Context, user *models.AdminUser) error {
	id, err := insertReturningID(ctx, r.db,
		"INSERT INTO admin_users (username, password_hash, email, role, status) VALUES (?, ?, ?, ?, ?)",
		user.Username, user.PasswordHash, user.Email, user.Role, user.Status)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	user.ID = id
	return nil
}

// Update replaces profile fields and the password hash.
func (r *UserRepository) Update(ctx context.Context, user *models.AdminUser) error {
	query := r.db.Rebind("UPDATE admin_users SET username = ?, password_hash = ?, email = ?, role = ?, status = ? WHERE id = ?")
	res, err := r.db.ExecContext(ctx, query, user.Username, user.PasswordHash, user.Email, user.Role, user.Status, user.ID)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return expectAffected(res)
}

// UpdateLastLogin stamps a successful sign-in.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id int64, ts time.Time) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind("UPDATE admin_users SET last_login = ? WHERE id = ?"), ts, id); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

// Delete removes an account; its sessions go with it.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM admin_sessions WHERE user_id = ?"), id); err != nil {
			return fmt.Errorf("delete user sessions: %w", err)
		}
		res, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM admin_users WHERE id = ?"), id)
		if err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return expectAffected(res)
	})
}
