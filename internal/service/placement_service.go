package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/placement-api/internal/dto"
	"github.com/noah-isme/placement-api/internal/models"
	"github.com/noah-isme/placement-api/pkg/currency"
	appErrors "github.com/noah-isme/placement-api/pkg/errors"
)

type placementRepository interface {
	List(ctx context.Context, filter models.PlacementFilter) ([]models.PlacementView, int, error)
	ListAll(ctx context.Context, filter models.PlacementFilter) ([]models.PlacementView, error)
	ListRecent(ctx context.Context) ([]models.PlacementView, error)
	FindByID(ctx context.Context, id int64) (*models.PlacementView, error)
	FilterOptions(ctx context.Context) (*models.FilterOptions, error)
	Create(ctx context.Context, placement *models.Placement) error
	Update(ctx context.Context, placement *models.Placement) error
	Delete(ctx context.Context, id int64) error
}

type studentLookup interface {
	FindByID(ctx context.Context, id int64) (*models.Student, error)
}

type companyLookup interface {
	FindByID(ctx context.Context, id int64) (*models.CompanySummary, error)
}

// PlacementService runs the placement list query and placement writes.
type PlacementService struct {
	validated
	repo      placementRepository
	students  studentLookup
	companies companyLookup
	cache     *CacheService
	metrics   *MetricsService
	tracker   Tracker
	logger    *zap.Logger
}

// NewPlacementService constructs the placement service.
func NewPlacementService(repo placementRepository, students studentLookup, companies companyLookup, cache *CacheService, metrics *MetricsService, tracker Tracker, validate *validator.Validate, logger *zap.Logger) *PlacementService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlacementService{
		validated: newValidated(validate),
		repo:      repo,
		students:  students,
		companies: companies,
		cache:     cache,
		metrics:   metrics,
		tracker:   tracker,
		logger:    logger,
	}
}

// List returns one page of placements matching the filter.
func (s *PlacementService) List(ctx context.Context, filter models.PlacementFilter) (*dto.PlacementPage, error) {
	filter = filter.Normalize()
	start := time.Now()
	items, total, err := s.repo.List(ctx, filter)
	s.metrics.ObserveDBQuery("placements.list", time.Since(start))
	if err != nil {
		return nil, storeError(s.logger, "list placements", err)
	}
	page := dto.NewPlacementPage(items, filter, total)
	return &page, nil
}

// ListAll returns every placement matching the filter, ignoring paging.
func (s *PlacementService) ListAll(ctx context.Context, filter models.PlacementFilter) ([]models.PlacementView, error) {
	start := time.Now()
	items, err := s.repo.ListAll(ctx, filter)
	s.metrics.ObserveDBQuery("placements.list_all", time.Since(start))
	if err != nil {
		return nil, storeError(s.logger, "list all placements", err)
	}
	return items, nil
}

// ListRecent returns every placement newest first for the admin table.
func (s *PlacementService) ListRecent(ctx context.Context) ([]dto.PlacementView, error) {
	items, err := s.repo.ListRecent(ctx)
	if err != nil {
		return nil, storeError(s.logger, "list recent placements", err)
	}
	return dto.NewPlacementViews(items), nil
}

// FilterOptions returns the distinct values offered by the placement filters
// and whether they came from cache.
func (s *PlacementService) FilterOptions(ctx context.Context) (*models.FilterOptions, bool, error) {
	var cached models.FilterOptions
	if s.cache.Get(ctx, cacheKeyFilterOptions, &cached) {
		return &cached, true, nil
	}
	opts, err := s.repo.FilterOptions(ctx)
	if err != nil {
		return nil, false, storeError(s.logger, "load filter options", err)
	}
	s.cache.Set(ctx, cacheKeyFilterOptions, opts)
	return opts, false, nil
}

// Save creates the placement when req.ID is zero and replaces it otherwise.
// The package is entered in lakhs and stored in rupees.
func (s *PlacementService) Save(ctx context.Context, actor string, req dto.SavePlacementRequest) (*dto.PlacementView, bool, error) {
	if err := s.check(req); err != nil {
		return nil, false, err
	}
	if err := s.ensureReferences(ctx, req.StudentID, req.CompanyID); err != nil {
		return nil, false, err
	}

	placement := &models.Placement{
		ID:        req.ID,
		StudentID: req.StudentID,
		CompanyID: req.CompanyID,
		Package:   currency.LakhsToAmount(req.Package),
		Year:      req.Year,
		Status:    req.Status,
	}

	created := placement.ID == 0
	action := models.ActivityUpdate
	if created {
		action = models.ActivityCreate
		if err := s.repo.Create(ctx, placement); err != nil {
			return nil, false, storeError(s.logger, "create placement", err)
		}
	} else if err := s.repo.Update(ctx, placement); err != nil {
		return nil, false, storeError(s.logger, "update placement", err)
	}

	saved, err := s.repo.FindByID(ctx, placement.ID)
	if err != nil {
		return nil, false, storeError(s.logger, "reload placement", err)
	}
	verb := "Updated"
	if created {
		verb = "Created"
	}
	s.tracker.Changed(ctx, actor, dto.KindPlacement, action,
		fmt.Sprintf("%s placement for %s at %s (%s)", verb, saved.StudentName, saved.CompanyName, currency.FormatLakhs(saved.Package)))

	view := dto.NewPlacementView(*saved)
	return &view, created, nil
}

// Delete removes one placement.
func (s *PlacementService) Delete(ctx context.Context, actor string, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeError(s.logger, "delete placement", err)
	}
	s.tracker.Changed(ctx, actor, dto.KindPlacement, models.ActivityDelete, fmt.Sprintf("Deleted placement #%d", id))
	return nil
}

func (s *PlacementService) ensureReferences(ctx context.Context, studentID, companyID int64) error {
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "Student does not exist")
		}
		return storeError(s.logger, "find placement student", err)
	}
	if _, err := s.companies.FindByID(ctx, companyID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "Company does not exist")
		}
		return storeError(s.logger, "find placement company", err)
	}
	return nil
}
