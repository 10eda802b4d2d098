package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/placement-api/internal/models"
	appErrors "github.com/noah-isme/placement-api/pkg/errors"
	"github.com/noah-isme/placement-api/pkg/response"
)

type activityService interface {
	List(ctx context.Context, limit int) ([]models.ActivityEntry, error)
}

// ActivityHandler serves the admin activity feed.
type ActivityHandler struct {
	service activityService
}

// NewActivityHandler constructs the handler.
func NewActivityHandler(svc activityService) *ActivityHandler {
	return &ActivityHandler{service: svc}
}

// List godoc
// @Summary Recent admin activity
// @Description Newest first
// @Tags Activity
// @Produce json
// @Param limit query int false "Maximum entries (default 50, max 200)"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /activity [get]
func (h *ActivityHandler) List(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "limit must be a number"))
			return
		}
		limit = parsed
	}

	entries, err := h.service.List(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, entries)
}
