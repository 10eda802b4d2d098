package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/placement-api/internal/dto"
	"github.com/noah-isme/placement-api/internal/models"
)

type companyRepository interface {
	List(ctx context.Context, filter models.CompanyFilter) ([]models.CompanySummary, error)
	FindByID(ctx context.Context, id int64) (*models.CompanySummary, error)
	Create(ctx context.Context, company *models.Company) error
	Update(ctx context.Context, company *models.Company) error
	Delete(ctx context.Context, id int64) error
}

// CompanyService handles company use-cases.
type CompanyService struct {
	validated
	repo    companyRepository
	tracker Tracker
	logger  *zap.Logger
}

// NewCompanyService constructs the company service.
func NewCompanyService(repo companyRepository, tracker Tracker, validate *validator.Validate, logger *zap.Logger) *CompanyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CompanyService{validated: newValidated(validate), repo: repo, tracker: tracker, logger: logger}
}

// List returns companies with hires, highest and average package.
func (s *CompanyService) List(ctx context.Context, filter models.CompanyFilter) ([]dto.CompanyView, error) {
	companies, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, storeError(s.logger, "list companies", err)
	}
	return dto.NewCompanyViews(companies), nil
}

// Get returns a company with its aggregates.
func (s *CompanyService) Get(ctx context.Context, id int64) (*dto.CompanyView, error) {
	company, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(s.logger, "get company", err)
	}
	view := dto.NewCompanyView(*company)
	return &view, nil
}

// Save creates the company when req.ID is zero and replaces it otherwise.
func (s *CompanyService) Save(ctx context.Context, actor string, req dto.SaveCompanyRequest) (*models.Company, bool, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Website = strings.TrimSpace(req.Website)
	if err := s.check(req); err != nil {
		return nil, false, err
	}

	company := &models.Company{
		ID:          req.ID,
		Name:        req.Name,
		Sector:      strings.TrimSpace(req.Sector),
		Website:     req.Website,
		Logo:        strings.TrimSpace(req.Logo),
		Description: strings.TrimSpace(req.Description),
	}

	if company.ID == 0 {
		if err := s.repo.Create(ctx, company); err != nil {
			return nil, false, storeError(s.logger, "create company", err)
		}
		s.tracker.Changed(ctx, actor, dto.KindCompany, models.ActivityCreate, "Created company "+company.Name)
		return company, true, nil
	}

	if err := s.repo.Update(ctx, company); err != nil {
		return nil, false, storeError(s.logger, "update company", err)
	}
	s.tracker.Changed(ctx, actor, dto.KindCompany, models.ActivityUpdate, "Updated company "+company.Name)
	return company, false, nil
}

// Delete removes a company and every placement referencing it.
func (s *CompanyService) Delete(ctx context.Context, actor string, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeError(s.logger, "delete company", err)
	}
	s.tracker.Changed(ctx, actor, dto.KindCompany, models.ActivityDelete, fmt.Sprintf("Deleted company #%d", id))
	return nil
}
