package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/placement-api/internal/models"
	"github.com/noah-isme/placement-api/pkg/export"
	appErrors "github.com/noah-isme/placement-api/pkg/errors"
)

type placementListerStub struct {
	items      []models.PlacementView
	lastFilter models.PlacementFilter
}

func (s *placementListerStub) ListAll(ctx context.Context, filter models.PlacementFilter) ([]models.PlacementView, error) {
	s.lastFilter = filter
	return s.items, nil
}

func newExportServiceForTest() (*ExportService, *placementListerStub) {
	stub := &placementListerStub{items: []models.PlacementView{
		{Placement: models.Placement{ID: 1, Package: 1200000, Year: 2024, Status: "Placed"}, StudentName: "John Doe", Roll: "CS001", Department: "Computer Science", CompanyName: "Tech Corp"},
		{Placement: models.Placement{ID: 2, Package: 900000, Year: 2024, Status: "Placed"}, StudentName: "Jane Smith", Roll: "EC001", Department: "Electronics", CompanyName: "Electro Ltd"},
	}}
	svc := NewExportService(stub, nil)
	svc.now = func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC) }
	return svc, stub
}

func TestExportServiceCSV(t *testing.T) {
	svc, stub := newExportServiceForTest()

	file, err := svc.Export(context.Background(), models.PlacementFilter{Department: "Electronics"}, export.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "Electronics", stub.lastFilter.Department)
	assert.Equal(t, "placements-20240506-070809.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)

	lines := strings.Split(strings.TrimSpace(string(file.Body)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Student,Roll,Department,Company,Package (LPA),Year,Status", lines[0])
	assert.Equal(t, "John Doe,CS001,Computer Science,Tech Corp,12.0,2024,Placed", lines[1])
}

func TestExportServiceJSON(t *testing.T) {
	svc, _ := newExportServiceForTest()

	file, err := svc.Export(context.Background(), models.PlacementFilter{}, export.FormatJSON)
	require.NoError(t, err)

	var rows []map[string]string
	require.NoError(t, json.Unmarshal(file.Body, &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "9.0", rows[1]["Package (LPA)"])
}

func TestExportServiceBinaryFormats(t *testing.T) {
	svc, _ := newExportServiceForTest()

	pdf, err := svc.Export(context.Background(), models.PlacementFilter{}, export.FormatPDF)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(pdf.Body), "%PDF"))

	xlsx, err := svc.Export(context.Background(), models.PlacementFilter{}, export.FormatXLSX)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(xlsx.Body), "PK"))
	assert.Equal(t, "placements-20240506-070809.xlsx", xlsx.Filename)
}

func TestExportServiceUnknownFormat(t *testing.T) {
	svc, _ := newExportServiceForTest()
	_, err := svc.Export(context.Background(), models.PlacementFilter{}, export.Format("doc"))
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}
