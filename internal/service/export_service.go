package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/placement-api/internal/dto"
	"github.com/noah-isme/placement-api/internal/models"
	"github.com/noah-isme/placement-api/pkg/export"
	appErrors "github.com/noah-isme/placement-api/pkg/errors"
)

const placementExportTitle = "Placement Records"

type placementLister interface {
	ListAll(ctx context.Context, filter models.PlacementFilter) ([]models.PlacementView, error)
}

type tableRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type documentRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders filtered placements as downloadable files.
type ExportService struct {
	placements placementLister
	csv        tableRenderer
	json       tableRenderer
	pdf        documentRenderer
	xlsx       documentRenderer
	logger     *zap.Logger
	now        func() time.Time
}

// NewExportService constructs an ExportService with the default renderers.
func NewExportService(placements placementLister, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		placements: placements,
		csv:        export.NewCSVExporter(),
		json:       export.NewJSONExporter(),
		pdf:        export.NewPDFExporter(),
		xlsx:       export.NewXLSXExporter(),
		logger:     logger,
		now:        time.Now,
	}
}

// Export renders every placement matching filter, across all pages, in format.
func (s *ExportService) Export(ctx context.Context, filter models.PlacementFilter, format export.Format) (*ExportFile, error) {
	items, err := s.placements.ListAll(ctx, filter)
	if err != nil {
		return nil, appErrors.FromError(err)
	}
	dataset := dto.PlacementDataset(items)

	var body []byte
	switch format {
	case export.FormatCSV:
		body, err = s.csv.Render(dataset)
	case export.FormatJSON:
		body, err = s.json.Render(dataset)
	case export.FormatPDF:
		body, err = s.pdf.Render(dataset, placementExportTitle)
	case export.FormatXLSX:
		body, err = s.xlsx.Render(dataset, placementExportTitle)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("Format %q is not supported", format))
	}
	if err != nil {
		s.logger.Error("render export", zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.Internal(err)
	}

	s.logger.Info("placements exported", zap.String("format", string(format)), zap.Int("rows", len(items)))
	return &ExportFile{
		Filename:    format.Filename("placements-" + s.now().Format("20060102-150405")),
		ContentType: format.ContentType(),
		Body:        body,
	}, nil
}
