package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/placement-api/internal/dto"
	"github.com/noah-isme/placement-api/internal/models"
	"github.com/noah-isme/placement-api/pkg/currency"
)

type statsRepository interface {
	Dashboard(ctx context.Context) (*models.DashboardStats, error)
	DepartmentStats(ctx context.Context) ([]models.DepartmentStat, error)
	CompanyHires(ctx context.Context) ([]models.CompanyHires, error)
	YearStats(ctx context.Context) ([]models.YearStat, error)
}

// StatsService composes the dashboard and analytics read models. Results are
// cached until the next write invalidates them.
type StatsService struct {
	repo    statsRepository
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
}

// NewStatsService constructs a StatsService.
func NewStatsService(repo statsRepository, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{repo: repo, cache: cache, metrics: metrics, logger: logger}
}

// Dashboard returns the headline numbers and whether they came from cache.
func (s *StatsService) Dashboard(ctx context.Context) (*dto.DashboardView, bool, error) {
	var cached dto.DashboardView
	if s.cache.Get(ctx, cacheKeyDashboard, &cached) {
		return &cached, true, nil
	}
	stats, err := s.summary(ctx)
	if err != nil {
		return nil, false, err
	}
	view := dto.NewDashboardView(*stats)
	s.cache.Set(ctx, cacheKeyDashboard, view)
	return &view, false, nil
}

// Analytics returns the department, company and year breakdowns and whether
// they came from cache.
func (s *StatsService) Analytics(ctx context.Context) (*dto.AnalyticsView, bool, error) {
	var cached dto.AnalyticsView
	if s.cache.Get(ctx, cacheKeyAnalytics, &cached) {
		return &cached, true, nil
	}

	start := time.Now()
	defer func() { s.metrics.ObserveDBQuery("stats.analytics", time.Since(start)) }()

	summary, err := s.summary(ctx)
	if err != nil {
		return nil, false, err
	}
	analytics := models.Analytics{Summary: *summary}
	if analytics.Departments, err = s.repo.DepartmentStats(ctx); err != nil {
		return nil, false, storeError(s.logger, "department stats", err)
	}
	if analytics.Companies, err = s.repo.CompanyHires(ctx); err != nil {
		return nil, false, storeError(s.logger, "company hires", err)
	}
	if analytics.Years, err = s.repo.YearStats(ctx); err != nil {
		return nil, false, storeError(s.logger, "year stats", err)
	}

	view := dto.NewAnalyticsView(analytics)
	s.cache.Set(ctx, cacheKeyAnalytics, view)
	return &view, false, nil
}

func (s *StatsService) summary(ctx context.Context) (*models.DashboardStats, error) {
	stats, err := s.repo.Dashboard(ctx)
	if err != nil {
		return nil, storeError(s.logger, "dashboard stats", err)
	}
	stats.PlacementRate = placementRate(stats.TotalStudents, stats.StudentCount)
	return stats, nil
}

// placementRate is placed/students as a percentage with one decimal; zero
// when there are no students.
func placementRate(placed, students int64) float64 {
	if students <= 0 {
		return 0
	}
	return currency.RoundTo(float64(placed)/float64(students)*100, 1)
}
