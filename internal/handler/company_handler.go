package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/placement-api/internal/dto"
	"github.com/noah-isme/placement-api/internal/models"
	"github.com/noah-isme/placement-api/pkg/response"
)

type companyService interface {
	List(ctx context.Context, filter models.CompanyFilter) ([]dto.CompanyView, error)
	Get(ctx context.Context, id int64) (*dto.CompanyView, error)
	Save(ctx context.Context, actor string, req dto.SaveCompanyRequest) (*models.Company, bool, error)
	Delete(ctx context.Context, actor string, id int64) error
}

// CompanyHandler exposes company endpoints.
type CompanyHandler struct {
	service companyService
}

// NewCompanyHandler constructs the handler.
func NewCompanyHandler(svc companyService) *CompanyHandler {
	return &CompanyHandler{service: svc}
}

// List godoc
// @Summary List companies
// @Description Companies with hires, highest and average package
// @Tags Companies
// @Produce json
// @Param search query string false "Name search"
// @Param sector query string false "Sector"
// @Success 200 {object} response.Envelope
// @Router /companies [get]
func (h *CompanyHandler) List(c *gin.Context) {
	filter := models.CompanyFilter{
		Search: strings.TrimSpace(c.Query("search")),
		Sector: strings.TrimSpace(c.Query("sector")),
	}
	companies, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, companies)
}

// Get godoc
// @Summary Get company
// @Tags Companies
// @Produce json
// @Param id path int true "Company ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /companies/{id} [get]
func (h *CompanyHandler) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	company, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, company)
}

// Create godoc
// @Summary Create company
// @Tags Companies
// @Accept json
// @Produce json
// @Param payload body dto.SaveCompanyRequest true "Company payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /companies [post]
func (h *CompanyHandler) Create(c *gin.Context) {
	var req dto.SaveCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	req.ID = 0

	company, _, err := h.service.Save(c.Request.Context(), actorName(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, company)
}

// Update godoc
// @Summary Update company
// @Tags Companies
// @Accept json
// @Produce json
// @Param id path int true "Company ID"
// @Param payload body dto.SaveCompanyRequest true "Company payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /companies/{id} [put]
func (h *CompanyHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.SaveCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	req.ID = id

	company, _, err := h.service.Save(c.Request.Context(), actorName(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, company)
}

// Delete godoc
// @Summary Delete company
// @Description Deletes the company and its placements
// @Tags Companies
// @Param id path int true "Company ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /companies/{id} [delete]
func (h *CompanyHandler) Delete(c *gin.Context) {
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
