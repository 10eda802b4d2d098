package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/placement-api/internal/dto"
	"github.com/noah-isme/placement-api/internal/models"
	"github.com/noah-isme/placement-api/pkg/currency"
	appErrors "github.com/noah-isme/placement-api/pkg/errors"
	"github.com/noah-isme/placement-api/pkg/export"
)

type rollLookup interface {
	FindByRoll(ctx context.Context, roll string) (*models.Student, error)
}

type companyNameLookup interface {
	FindByName(ctx context.Context, name string) (*models.Company, error)
}

type placementCreator interface {
	Create(ctx context.Context, placement *models.Placement) error
}

// ImportService loads placements from uploaded CSV, JSON or XLSX tables.
// Rows reference students by roll and companies by name.
type ImportService struct {
	validated
	placements placementCreator
	students   rollLookup
	companies  companyNameLookup
	tracker    Tracker
	logger     *zap.Logger
}

// NewImportService constructs an ImportService.
func NewImportService(placements placementCreator, students rollLookup, companies companyNameLookup, tracker Tracker, validate *validator.Validate, logger *zap.Logger) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{
		validated:  newValidated(validate),
		placements: placements,
		students:   students,
		companies:  companies,
		tracker:    tracker,
		logger:     logger,
	}
}

// Import creates one placement per valid row. Invalid rows are reported and
// skipped; they never abort the rest of the file.
func (s *ImportService) Import(ctx context.Context, actor string, format export.Format, r io.Reader) (*dto.ImportResult, error) {
	records, err := export.ReadRecords(format, r)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Invalid import file: "+err.Error())
	}

	result := &dto.ImportResult{Errors: []dto.ImportRowError{}}
	for i, record := range records {
		row := i + 1
		placement, err := s.placementFromRecord(ctx, record)
		if err == nil {
			err = s.placements.Create(ctx, placement)
			if err != nil {
				err = storeError(s.logger, "import placement", err)
			}
		}
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, dto.ImportRowError{Row: row, Message: appErrors.FromError(err).Message})
			continue
		}
		result.Imported++
	}

	if result.Imported > 0 {
		s.tracker.Changed(ctx, actor, dto.KindPlacement, models.ActivityImport,
			fmt.Sprintf("Imported %d placement records", result.Imported))
	}
	s.logger.Info("placements imported", zap.Int("imported", result.Imported), zap.Int("failed", result.Failed))
	return result, nil
}

func (s *ImportService) placementFromRecord(ctx context.Context, record export.Record) (*models.Placement, error) {
	roll := strings.TrimSpace(record["roll"])
	if roll == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Roll is required")
	}
	companyName := strings.TrimSpace(record["company"])
	if companyName == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Company is required")
	}

	req := dto.SavePlacementRequest{Status: strings.TrimSpace(record["status"])}
	if req.Status == "" {
		req.Status = models.PlacementPlaced
	}
	var err error
	if req.Package, err = parseLakhs(record); err != nil {
		return nil, err
	}
	if req.Year, err = strconv.Atoi(strings.TrimSpace(record["year"])); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Year must be a number")
	}

	student, err := s.students.FindByRoll(ctx, roll)
	if err != nil {
		return nil, lookupError(s.logger, err, fmt.Sprintf("No student with roll %s", roll))
	}
	company, err := s.companies.FindByName(ctx, companyName)
	if err != nil {
		return nil, lookupError(s.logger, err, fmt.Sprintf("No company named %s", companyName))
	}
	req.StudentID = student.ID
	req.CompanyID = company.ID

	if err := s.check(req); err != nil {
		return nil, err
	}
	return &models.Placement{
		StudentID: req.StudentID,
		CompanyID: req.CompanyID,
		Package:   currency.LakhsToAmount(req.Package),
		Year:      req.Year,
		Status:    req.Status,
	}, nil
}

// parseLakhs reads the package column, accepting the export header too.
func parseLakhs(record export.Record) (float64, error) {
	raw := strings.TrimSpace(record["package"])
	if raw == "" {
		raw = strings.TrimSpace(record["package (lpa)"])
	}
	if raw == "" {
		return 0, appErrors.Clone(appErrors.ErrValidation, "Package is required")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "Package must be a non-negative number")
	}
	return v, nil
}

func lookupError(logger *zap.Logger, err error, missing string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrValidation, missing)
	}
	return storeError(logger, "import lookup", err)
}
