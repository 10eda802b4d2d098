package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/placement-api/internal/models"
	appErrors "github.com/noah-isme/placement-api/pkg/errors"
)

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 200
)

type activityRepository interface {
	Append(ctx context.Context, entry *models.ActivityEntry) error
	List(ctx context.Context, limit int) ([]models.ActivityEntry, error)
}

// ActivityService records admin actions and serves the activity feed.
type ActivityService struct {
	repo   activityRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewActivityService constructs an ActivityService.
func NewActivityService(repo activityRepository, logger *zap.Logger) *ActivityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityService{repo: repo, logger: logger, now: time.Now}
}

// Record appends an entry. The feed is informational, so a failed append is
// logged and never fails the caller's operation.
func (s *ActivityService) Record(ctx context.Context, actor, action, description string) {
	if s == nil || s.repo == nil {
		return
	}
	entry := &models.ActivityEntry{
		Action:      action,
		Description: description,
		Actor:       actor,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.repo.Append(ctx, entry); err != nil {
		s.logger.Warn("record activity failed", zap.String("action", action), zap.Error(err))
	}
}

// List returns the newest entries first.
func (s *ActivityService) List(ctx context.Context, limit int) ([]models.ActivityEntry, error) {
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	if limit > maxActivityLimit {
		limit = maxActivityLimit
	}
	entries, err := s.repo.List(ctx, limit)
	if err != nil {
		s.logger.Error("list activity", zap.Error(err))
		return nil, appErrors.Internal(err)
	}
	return entries, nil
}

// Tracker runs the side effects shared by every write: activity feed,
// stats cache invalidation and mutation counters. The zero value is a no-op.
type Tracker struct {
	activity *ActivityService
	cache    *CacheService
	metrics  *MetricsService
}

// NewTracker wires the write side effects.
func NewTracker(activity *ActivityService, cache *CacheService, metrics *MetricsService) Tracker {
	return Tracker{activity: activity, cache: cache, metrics: metrics}
}

// Changed is called after a successful write.
func (t Tracker) Changed(ctx context.Context, actor, kind, action, description string) {
	t.cache.Invalidate(ctx, statsCachePattern)
	t.metrics.RecordMutation(kind, strings.ToLower(action))
	t.activity.Record(ctx, actor, action, description)
}
