package handler

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/placement-api/internal/dto"
	"github.com/noah-isme/placement-api/internal/middleware"
	"github.com/noah-isme/placement-api/internal/models"
	"github.com/noah-isme/placement-api/internal/service"
	appErrors "github.com/noah-isme/placement-api/pkg/errors"
	"github.com/noah-isme/placement-api/pkg/export"
	"github.com/noah-isme/placement-api/pkg/response"
)

type placementService interface {
	List(ctx context.Context, filter models.PlacementFilter) (*dto.PlacementPage, error)
	FilterOptions(ctx context.Context) (*models.FilterOptions, bool, error)
	Save(ctx context.Context, actor string, req dto.SavePlacementRequest) (*dto.PlacementView, bool, error)
	Delete(ctx context.Context, actor string, id int64) error
}

type placementExporter interface {
	Export(ctx context.Context, filter models.PlacementFilter, format export.Format) (*service.ExportFile, error)
}

type placementImporter interface {
	Import(ctx context.Context, actor string, format export.Format, r io.Reader) (*dto.ImportResult, error)
}

// PlacementHandler exposes placement endpoints.
type PlacementHandler struct {
	service  placementService
	exporter placementExporter
	importer placementImporter
}

// NewPlacementHandler constructs the handler.
func NewPlacementHandler(svc placementService, exporter placementExporter, importer placementImporter) *PlacementHandler {
	return &PlacementHandler{service: svc, exporter: exporter, importer: importer}
}

// List godoc
// @Summary List placements
// @Description Filter, sort and paginate placement records
// @Tags Placements
// @Produce json
// @Param search query string false "Student name, roll or company"
// @Param department query string false "Department or all"
// @Param company query string false "Company name or all"
// @Param year query string false "Year or all"
// @Param status query string false "Placed, Pending or all"
// @Param minPackage query number false "Minimum package in lakhs"
// @Param maxPackage query number false "Maximum package in lakhs"
// @Param sortField query string false "name, package or year"
// @Param sortDirection query string false "asc or desc"
// @Param page query int false "Page"
// @Param perPage query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /placements [get]
func (h *PlacementHandler) List(c *gin.Context) {
	filter, err := bindPlacementFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	page, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	meta := map[string]interface{}{"empty": page.Empty}
	if page.Message != "" {
		meta["message"] = page.Message
	}
	response.JSON(c, http.StatusOK, page.Data, &page.Pagination, meta)
}

// Filters godoc
// @Summary Placement filter options
// @Description Distinct departments, companies and years for filter controls
// @Tags Placements
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /placements/filters [get]
func (h *PlacementHandler) Filters(c *gin.Context) {
	options, cacheHit, err := h.service.FilterOptions(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, options, nil, middleware.SetCacheHit(c, cacheHit))
}

// Export godoc
// @Summary Export placements
// @Description Download every placement matching the filter
// @Tags Placements
// @Produce octet-stream
// @Param format query string false "csv, json, pdf or xlsx"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /placements/export [get]
func (h *PlacementHandler) Export(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
		return
	}
	filter, err := bindPlacementFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	file, err := h.exporter.Export(c.Request.Context(), filter, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

// Import godoc
// @Summary Import placements
// @Description Import placements from a CSV, JSON or XLSX upload referencing student roll and company name
// @Tags Placements
// @Accept multipart/form-data
// @Produce json
// @Param file formData file false "Import file"
// @Param format query string false "csv, json or xlsx"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /placements/import [post]
func (h *PlacementHandler) Import(c *gin.Context) {
	rawFormat := c.Query("format")
	var body io.Reader = c.Request.Body

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		header, err := c.FormFile("file")
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
			return
		}
		file, err := header.Open()
		if err != nil {
			response.Error(c, invalidPayload(err))
			return
		}
		defer file.Close()
		body = file
		if rawFormat == "" {
			rawFormat = strings.TrimPrefix(filepath.Ext(header.Filename), ".")
		}
	}

	format, err := export.ParseFormat(rawFormat)
	if err != nil || format == export.FormatPDF {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unsupported import format"))
		return
	}

	result, err := h.importer.Import(c.Request.Context(), actorName(c), format, body)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// Create godoc
// @Summary Create placement
// @Tags Placements
// @Accept json
// @Produce json
// @Param payload body dto.SavePlacementRequest true "Placement payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /placements [post]
func (h *PlacementHandler) Create(c *gin.Context) {
	var req dto.SavePlacementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	req.ID = 0

	placement, _, err := h.service.Save(c.Request.Context(), actorName(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, placement)
}

// Update godoc
// @Summary Update placement
// @Tags Placements
// @Accept json
// @Produce json
// @Param id path int true "Placement ID"
// @Param payload body dto.SavePlacementRequest true "Placement payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /placements/{id} [put]
func (h *PlacementHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.SavePlacementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	req.ID = id

	placement, _, err := h.service.Save(c.Request.Context(), actorName(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, placement)
}

// Delete godoc
// @Summary Delete placement
// @Tags Placements
// @Param id path int true "Placement ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /placements/{id} [delete]
func (h *PlacementHandler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), actorName(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func bindPlacementFilter(c *gin.Context) (models.PlacementFilter, error) {
	var query dto.PlacementListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		return models.PlacementFilter{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters")
	}
	filter, err := query.Filter()
	if err != nil {
		return filter, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	return filter, nil
}
