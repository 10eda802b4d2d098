package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/placement-api/internal/dto"
	"github.com/noah-isme/placement-api/internal/middleware"
	"github.com/noah-isme/placement-api/internal/models"
	"github.com/noah-isme/placement-api/internal/service"
	appErrors "github.com/noah-isme/placement-api/pkg/errors"
	"github.com/noah-isme/placement-api/pkg/export"
)

type fakePlacementSrv struct {
	page       *dto.PlacementPage
	options    *models.FilterOptions
	lastFilter models.PlacementFilter
	lastSave   dto.SavePlacementRequest
	lastActor  string
	deleted    int64
	err        error
}

func (f *fakePlacementSrv) List(_ context.Context, filter models.PlacementFilter) (*dto.PlacementPage, error) {
	f.lastFilter = filter
	if f.err != nil {
		return nil, f.err
	}
	if f.page != nil {
		return f.page, nil
	}
	page := dto.NewPlacementPage(nil, filter, 0)
	return &page, nil
}

func (f *fakePlacementSrv) FilterOptions(context.Context) (*models.FilterOptions, bool, error) {
	return f.options, true, f.err
}

func (f *fakePlacementSrv) Save(_ context.Context, actor string, req dto.SavePlacementRequest) (*dto.PlacementView, bool, error) {
	f.lastSave = req
	f.lastActor = actor
	if f.err != nil {
		return nil, false, f.err
	}
	return &dto.PlacementView{ID: 7, StudentID: req.StudentID, CompanyID: req.CompanyID, Year: req.Year, Status: req.Status}, req.ID == 0, nil
}

func (f *fakePlacementSrv) Delete(_ context.Context, actor string, id int64) error {
	f.lastActor = actor
	f.deleted = id
	return f.err
}

type fakeExporter struct {
	format     export.Format
	lastFilter models.PlacementFilter
}

func (f *fakeExporter) Export(_ context.Context, filter models.PlacementFilter, format export.Format) (*service.ExportFile, error) {
	f.format = format
	f.lastFilter = filter
	return &service.ExportFile{Filename: "placements." + string(format), ContentType: format.ContentType(), Body: []byte("Student,Roll\n")}, nil
}

type fakeImporter struct {
	format export.Format
	body   string
	actor  string
}

func (f *fakeImporter) Import(_ context.Context, actor string, format export.Format, r io.Reader) (*dto.ImportResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	f.format = format
	f.body = string(data)
	f.actor = actor
	return &dto.ImportResult{Imported: 1, Errors: []dto.ImportRowError{}}, nil
}

func newPlacementTestHandler(srv *fakePlacementSrv) (*PlacementHandler, *fakeExporter, *fakeImporter) {
	exporter := &fakeExporter{}
	importer := &fakeImporter{}
	return NewPlacementHandler(srv, exporter, importer), exporter, importer
}

func signedIn(c *gin.Context) {
	c.Set(middleware.ContextIdentityKey, &models.Identity{UserID: 1, Username: "admin", SessionID: "sess-1"})
}

func TestPlacementHandlerListNormalizesQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakePlacementSrv{}
	handler, _, _ := newPlacementTestHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/placements?search=%20ali%20&department=all&year=all&minPackage=10&sortField=package&sortDirection=DESC&page=0&perPage=500", nil)

	handler.List(c)

	require.Equal(t, http.StatusOK, rec.Code)
	f := srv.lastFilter
	assert.Equal(t, "ali", f.Search)
	assert.Empty(t, f.Department)
	assert.Zero(t, f.Year)
	require.NotNil(t, f.MinPackage)
	assert.Equal(t, 10.0, *f.MinPackage)
	assert.Nil(t, f.MaxPackage)
	assert.Equal(t, models.SortByPackage, f.SortField)
	assert.Equal(t, models.SortDesc, f.SortDirection)
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, models.MaxPerPage, f.PerPage)
}

func TestPlacementHandlerListEmptyState(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _, _ := newPlacementTestHandler(&fakePlacementSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/placements?search=zzz", nil)

	handler.List(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data       []interface{}          `json:"data"`
		Pagination models.Pagination      `json:"pagination"`
		Meta       map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotNil(t, body.Data)
	assert.Empty(t, body.Data)
	assert.Equal(t, 0, body.Pagination.Total)
	assert.False(t, body.Pagination.HasPrev)
	assert.Equal(t, true, body.Meta["empty"])
	assert.Equal(t, dto.EmptyMessage, body.Meta["message"])
}

func TestPlacementHandlerListRejectsBadNumbers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakePlacementSrv{}
	handler, _, _ := newPlacementTestHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/placements?year=twenty", nil)

	handler.List(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "year must be a number")
}

func TestPlacementHandlerFiltersMeta(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _, _ := newPlacementTestHandler(&fakePlacementSrv{options: &models.FilterOptions{Years: []int{2024, 2023}}})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/placements/filters", nil)

	handler.Filters(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, true, envelope.Meta["cache_hit"])
	assert.Equal(t, []interface{}{float64(2024), float64(2023)}, envelope.Data["years"])
}

func TestPlacementHandlerExport(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, exporter, _ := newPlacementTestHandler(&fakePlacementSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/placements/export?format=XLSX&status=Placed", nil)

	handler.Export(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, export.FormatXLSX, exporter.format)
	assert.Equal(t, "Placed", exporter.lastFilter.Status)
	assert.Equal(t, `attachment; filename="placements.xlsx"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, export.FormatXLSX.ContentType(), rec.Header().Get("Content-Type"))
}

func TestPlacementHandlerExportUnknownFormat(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _, _ := newPlacementTestHandler(&fakePlacementSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/placements/export?format=docx", nil)

	handler.Export(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlacementHandlerImportMultipart(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _, importer := newPlacementTestHandler(&fakePlacementSrv{})

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "placements.json")
	require.NoError(t, err)
	_, _ = part.Write([]byte(`[{"roll":"CS001"}]`))
	require.NoError(t, writer.Close())

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/placements/import", &buf)
	c.Request.Header.Set("Content-Type", writer.FormDataContentType())
	signedIn(c)

	handler.Import(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, export.FormatJSON, importer.format)
	assert.Equal(t, `[{"roll":"CS001"}]`, importer.body)
	assert.Equal(t, "admin", importer.actor)
}

func TestPlacementHandlerImportRawBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _, importer := newPlacementTestHandler(&fakePlacementSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/placements/import", strings.NewReader("roll,company\nCS001,TCS\n"))
	c.Request.Header.Set("Content-Type", "text/csv")

	handler.Import(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, export.FormatCSV, importer.format)
	assert.Contains(t, importer.body, "CS001,TCS")
}

func TestPlacementHandlerImportRejectsPDF(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _, _ := newPlacementTestHandler(&fakePlacementSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/placements/import?format=pdf", strings.NewReader("%PDF"))

	handler.Import(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlacementHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakePlacementSrv{}
	handler, _, _ := newPlacementTestHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	body := `{"id":99,"student_id":1,"company_id":2,"package":12.5,"year":2024,"status":"Placed"}`
	c.Request = httptest.NewRequest(http.MethodPost, "/placements", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	signedIn(c)

	handler.Create(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Zero(t, srv.lastSave.ID)
	assert.Equal(t, 12.5, srv.lastSave.Package)
	assert.Equal(t, "admin", srv.lastActor)
}

func TestPlacementHandlerUpdateUsesPathID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakePlacementSrv{}
	handler, _, _ := newPlacementTestHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Params = gin.Params{{Key: "id", Value: "5"}}
	c.Request = httptest.NewRequest(http.MethodPut, "/placements/5", strings.NewReader(`{"student_id":1,"company_id":2,"year":2024,"status":"Pending"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Update(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(5), srv.lastSave.ID)
}

func TestPlacementHandlerDelete(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("invalid id", func(t *testing.T) {
		handler, _, _ := newPlacementTestHandler(&fakePlacementSrv{})
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		c.Params = gin.Params{{Key: "id", Value: "abc"}}
		c.Request = httptest.NewRequest(http.MethodDelete, "/placements/abc", nil)

		handler.Delete(c)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing", func(t *testing.T) {
		handler, _, _ := newPlacementTestHandler(&fakePlacementSrv{err: appErrors.ErrNotFound})
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		c.Params = gin.Params{{Key: "id", Value: "42"}}
		c.Request = httptest.NewRequest(http.MethodDelete, "/placements/42", nil)

		handler.Delete(c)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "record not found")
	})

	t.Run("removed", func(t *testing.T) {
		srv := &fakePlacementSrv{}
		handler, _, _ := newPlacementTestHandler(srv)
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		c.Params = gin.Params{{Key: "id", Value: "3"}}
		c.Request = httptest.NewRequest(http.MethodDelete, "/placements/3", nil)

		handler.Delete(c)

		assert.Equal(t, http.StatusNoContent, c.Writer.Status())
		assert.Equal(t, int64(3), srv.deleted)
	})
}
