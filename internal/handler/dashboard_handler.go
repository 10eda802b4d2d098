package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/placement-api/internal/dto"
	"github.com/noah-isme/placement-api/internal/middleware"
	appErrors "github.com/noah-isme/placement-api/pkg/errors"
	"github.com/noah-isme/placement-api/pkg/response"
)

type statsService interface {
	Dashboard(ctx context.Context) (*dto.DashboardView, bool, error)
	Analytics(ctx context.Context) (*dto.AnalyticsView, bool, error)
}

// DashboardHandler wires the stats service to HTTP endpoints.
type DashboardHandler struct {
	service statsService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service statsService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Stats godoc
// @Summary Dashboard headline numbers
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/stats [get]
func (h *DashboardHandler) Stats(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	stats, cacheHit, err := h.service.Dashboard(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil, middleware.SetCacheHit(c, cacheHit))
}

// Analytics godoc
// @Summary Placement analytics
// @Description Department, company and year breakdowns
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /analytics [get]
func (h *DashboardHandler) Analytics(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	analytics, cacheHit, err := h.service.Analytics(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, analytics, nil, middleware.SetCacheHit(c, cacheHit))
}
