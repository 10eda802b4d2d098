package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/noah-isme/placement-api/internal/dto"
	"github.com/noah-isme/placement-api/internal/middleware"
	"github.com/noah-isme/placement-api/internal/models"
	appErrors "github.com/noah-isme/placement-api/pkg/errors"
	"github.com/noah-isme/placement-api/pkg/logger"
)

var errUnknownType = appErrors.Clone(appErrors.ErrValidation, "Unknown record type")

// ActionServices are the collaborators behind the action endpoint.
type ActionServices struct {
	Auth       authService
	Placements placementService
	Companies  companyService
	Students   studentService
	Users      userService
	Stats      statsService
}

// ActionHandler serves the single-endpoint action protocol used by the
// legacy web pages. Every request names an action and carries flat fields.
type ActionHandler struct {
	services ActionServices
	cookie   SessionCookie
}

// NewActionHandler constructs the dispatcher.
func NewActionHandler(services ActionServices, cookie SessionCookie) *ActionHandler {
	return &ActionHandler{services: services, cookie: cookie}
}

// Dispatch godoc
// @Summary Legacy action endpoint
// @Description Form or JSON body with an action discriminator (login, logout, list, get_placements, get_filter_options, save, delete, dashboard_stats, analytics and their aliases)
// @Tags Legacy
// @Accept json
// @Accept x-www-form-urlencoded
// @Produce json
// @Param payload body dto.ActionEnvelope true "Action"
// @Success 200 {object} dto.LegacyResponse
// @Failure 400 {object} dto.LegacyResponse
// @Failure 401 {object} dto.LegacyResponse
// @Router /api/action [post]
func (h *ActionHandler) Dispatch(c *gin.Context) {
	var envelope dto.ActionEnvelope
	if err := bindAction(c, &envelope); err != nil {
		h.fail(c, invalidPayload(err))
		return
	}

	action, ok := dto.CanonicalAction(envelope.Action)
	c.Set(logger.ActionKey, action)
	if !ok {
		h.fail(c, appErrors.Clone(appErrors.ErrUnknownAction, "Unknown action"))
		return
	}

	switch action {
	case dto.ActionLogin:
		h.login(c)
	case dto.ActionLogout:
		h.logout(c)
	case dto.ActionList:
		h.list(c)
	case dto.ActionGetPlacements:
		h.placements(c)
	case dto.ActionGetFilterOptions:
		h.filterOptions(c)
	case dto.ActionSave:
		h.save(c)
	case dto.ActionDelete:
		h.delete(c)
	case dto.ActionDashboardStats:
		h.dashboard(c)
	case dto.ActionAnalytics:
		h.analytics(c)
	}
}

func (h *ActionHandler) login(c *gin.Context) {
	var req dto.LoginAction
	if err := bindAction(c, &req); err != nil {
		h.fail(c, invalidPayload(err))
		return
	}
	res, err := h.services.Auth.Login(c.Request.Context(), models.LoginRequest{Username: req.Username, Password: req.Password})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.cookie.set(c, res.Token)
	h.ok(c, dto.LegacyResponse{Success: true, Username: res.Username, Data: res})
}

func (h *ActionHandler) logout(c *gin.Context) {
	if err := h.services.Auth.Logout(c.Request.Context(), middleware.CurrentIdentity(c)); err != nil {
		h.fail(c, err)
		return
	}
	h.cookie.clear(c)
	h.ok(c, dto.LegacyResponse{Success: true})
}

func (h *ActionHandler) list(c *gin.Context) {
	var req dto.ListAction
	if err := bindAction(c, &req); err != nil {
		h.fail(c, invalidPayload(err))
		return
	}
	kind, ok := dto.CanonicalKind(req.Type)
	if !ok {
		h.fail(c, errUnknownType)
		return
	}

	ctx := c.Request.Context()
	var (
		data interface{}
		err  error
	)
	switch kind {
	case dto.KindPlacement:
		h.placementPage(c, req.PlacementListQuery)
		return
	case dto.KindCompany:
		data, err = h.services.Companies.List(ctx, models.CompanyFilter{Search: req.Search})
	case dto.KindStudent:
		if !h.requireIdentity(c) {
			return
		}
		data, err = h.services.Students.List(ctx)
	case dto.KindUser:
		if !h.requireIdentity(c) {
			return
		}
		data, err = h.services.Users.List(ctx)
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, dto.LegacyResponse{Success: true, Data: data})
}

func (h *ActionHandler) placements(c *gin.Context) {
	var query dto.PlacementListQuery
	if err := bindAction(c, &query); err != nil {
		h.fail(c, invalidPayload(err))
		return
	}
	h.placementPage(c, query)
}

func (h *ActionHandler) placementPage(c *gin.Context, query dto.PlacementListQuery) {
	filter, err := query.Filter()
	if err != nil {
		h.fail(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
		return
	}
	page, err := h.services.Placements.List(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, dto.LegacyPage(*page))
}

func (h *ActionHandler) filterOptions(c *gin.Context) {
	options, _, err := h.services.Placements.FilterOptions(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, dto.LegacyResponse{Success: true, Data: options})
}

func (h *ActionHandler) save(c *gin.Context) {
	if !h.requireIdentity(c) {
		return
	}
	var typed dto.TypedAction
	if err := bindAction(c, &typed); err != nil {
		h.fail(c, invalidPayload(err))
		return
	}
	kind, ok := dto.CanonicalKind(typed.Type)
	if !ok {
		h.fail(c, errUnknownType)
		return
	}

	data, created, err := h.saveRecord(c, kind)
	if err != nil {
		h.fail(c, err)
		return
	}
	message := "Updated successfully"
	if created {
		message = "Created successfully"
	}
	h.ok(c, dto.LegacyResponse{Success: true, Message: message, Data: data})
}

func (h *ActionHandler) saveRecord(c *gin.Context, kind string) (interface{}, bool, error) {
	ctx := c.Request.Context()
	actor := actorName(c)

	switch kind {
	case dto.KindPlacement:
		var req dto.SavePlacementRequest
		if err := bindAction(c, &req); err != nil {
			return nil, false, invalidPayload(err)
		}
		return h.services.Placements.Save(ctx, actor, req)
	case dto.KindCompany:
		var req dto.SaveCompanyRequest
		if err := bindAction(c, &req); err != nil {
			return nil, false, invalidPayload(err)
		}
		return h.services.Companies.Save(ctx, actor, req)
	case dto.KindStudent:
		var req dto.SaveStudentRequest
		if err := bindAction(c, &req); err != nil {
			return nil, false, invalidPayload(err)
		}
		return h.services.Students.Save(ctx, actor, req)
	default:
		var req dto.SaveUserRequest
		if err := bindAction(c, &req); err != nil {
			return nil, false, invalidPayload(err)
		}
		return h.services.Users.Save(ctx, actor, req)
	}
}

func (h *ActionHandler) delete(c *gin.Context) {
	if !h.requireIdentity(c) {
		return
	}
	var req dto.DeleteAction
	if err := bindAction(c, &req); err != nil {
		h.fail(c, invalidPayload(err))
		return
	}
	kind, ok := dto.CanonicalKind(req.Type)
	if !ok {
		h.fail(c, errUnknownType)
		return
	}
	id, err := parseIDValue(req.ID.String())
	if err != nil {
		h.fail(c, err)
		return
	}

	ctx := c.Request.Context()
	actor := actorName(c)
	switch kind {
	case dto.KindPlacement:
		err = h.services.Placements.Delete(ctx, actor, id)
	case dto.KindCompany:
		err = h.services.Companies.Delete(ctx, actor, id)
	case dto.KindStudent:
		err = h.services.Students.Delete(ctx, actor, id)
	case dto.KindUser:
		err = h.services.Users.Delete(ctx, actor, id)
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, dto.LegacyResponse{Success: true, Message: "Deleted successfully"})
}

func (h *ActionHandler) dashboard(c *gin.Context) {
	stats, _, err := h.services.Stats.Dashboard(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, dto.LegacyResponse{Success: true, Data: stats})
}

func (h *ActionHandler) analytics(c *gin.Context) {
	analytics, _, err := h.services.Stats.Analytics(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, dto.LegacyResponse{Success: true, Data: analytics})
}

func (h *ActionHandler) requireIdentity(c *gin.Context) bool {
	if middleware.CurrentIdentity(c) == nil {
		h.fail(c, appErrors.ErrUnauthorized)
		return false
	}
	return true
}

func (h *ActionHandler) ok(c *gin.Context, body dto.LegacyResponse) {
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, body)
}

// fail keeps the typed status while answering in the legacy shape.
func (h *ActionHandler) fail(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	_ = c.Error(err)
	c.Header("Cache-Control", "no-store")
	c.AbortWithStatusJSON(appErr.Status, dto.LegacyResponse{Success: false, Message: appErr.Message})
}

// bindAction decodes the body into dest. JSON bodies are cached so each
// action can decode its own view of the same payload.
func bindAction(c *gin.Context, dest interface{}) error {
	if c.ContentType() == binding.MIMEJSON {
		return c.ShouldBindBodyWith(dest, binding.JSON)
	}
	return c.ShouldBindWith(dest, binding.Form)
}
