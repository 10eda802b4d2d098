package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/placement-api/internal/models"
)

// ActivityRepository appends to and reads the admin activity feed.
type ActivityRepository struct {
	db *sqlx.DB
}

// NewActivityRepository constructs an ActivityRepository.
func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Append records one entry.
func (r *ActivityRepository) Append(ctx context.Context, entry *models.ActivityEntry) error {
	id, err := insertReturningID(ctx, r.db,
		"INSERT INTO activity_log (action, description, actor, created_at) VALUES (?, ?, ?, ?)",
		entry.Action, entry.Description, entry.Actor, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("append activity: %w", err)
	}
	entry.ID = id
	return nil
}

// List returns the newest entries first.
func (r *ActivityRepository) List(ctx context.Context, limit int) ([]models.ActivityEntry, error) {
	entries := []models.ActivityEntry{}
	query := fmt.Sprintf("SELECT id, action, description, actor, created_at FROM activity_log ORDER BY created_at DESC, id DESC LIMIT %d", limit)
	if err := r.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	return entries, nil
}
