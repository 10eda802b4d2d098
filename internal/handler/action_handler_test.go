package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/placement-api/internal/dto"
	"github.com/noah-isme/placement-api/internal/models"
	appErrors "github.com/noah-isme/placement-api/pkg/errors"
	"github.com/noah-isme/placement-api/pkg/logger"
)

type actionFixture struct {
	handler    *ActionHandler
	auth       *fakeAuthSrv
	placements *fakePlacementSrv
	companies  *fakeCompanySrv
	students   *fakeStudentSrv
	users      *fakeUserSrv
}

func newActionFixture() *actionFixture {
	f := &actionFixture{
		auth:       &fakeAuthSrv{result: &models.LoginResult{Token: "signed", Username: "admin"}},
		placements: &fakePlacementSrv{},
		companies:  &fakeCompanySrv{},
		students:   &fakeStudentSrv{},
		users:      &fakeUserSrv{},
	}
	f.handler = NewActionHandler(ActionServices{
		Auth:       f.auth,
		Placements: f.placements,
		Companies:  f.companies,
		Students:   f.students,
		Users:      f.users,
		Stats:      &fakeStatsSrv{dashboard: &dto.DashboardView{PlacementRate: 66.7}},
	}, testCookie)
	return f
}

func postForm(values url.Values, signed bool) (*gin.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/action", strings.NewReader(values.Encode()))
	c.Request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if signed {
		signedIn(c)
	}
	return c, rec
}

func postJSON(body string, signed bool) (*gin.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/action", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	if signed {
		signedIn(c)
	}
	return c, rec
}

func decodeLegacy(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestActionUnknown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	f := newActionFixture()

	c, rec := postForm(url.Values{"action": {"drop_tables"}}, true)
	f.handler.Dispatch(c)

	body := decodeLegacy(t, rec)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Unknown action", body["message"])
}

func TestActionAdminLoginAlias(t *testing.T) {
	gin.SetMode(gin.TestMode)
	f := newActionFixture()

	c, rec := postForm(url.Values{"action": {"admin_login"}, "username": {"admin"}, "password": {"admin123"}}, false)
	f.handler.Dispatch(c)

	body := decodeLegacy(t, rec)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "admin", body["username"])
	assert.Equal(t, "admin123", f.auth.loginReq.Password)
	assert.Equal(t, dto.ActionLogin, c.GetString(logger.ActionKey))
	assert.NotNil(t, findCookie(rec, "placement_session"))
}

func TestActionLoginFailureMessage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	f := newActionFixture()
	f.auth.err = appErrors.ErrInvalidCredentials

	c, rec := postJSON(`{"action":"login","username":"admin","password":"nope"}`, false)
	f.handler.Dispatch(c)

	body := decodeLegacy(t, rec)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "invalid credentials", body["message"])
}

func TestActionMutationsRequireSession(t *testing.T) {
	gin.SetMode(gin.TestMode)

	for _, action := range []string{"save", "save_admin_data", "delete", "delete_admin_data"} {
		f := newActionFixture()
		c, rec := postForm(url.Values{"action": {action}, "type": {"student"}, "id": {"1"}, "name": {"x"}}, false)
		f.handler.Dispatch(c)

		body := decodeLegacy(t, rec)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, action)
		assert.Equal(t, "not authenticated", body["message"], action)
		assert.Zero(t, f.students.deleted, action)
		assert.Empty(t, f.students.saved.Name, action)
	}
}

func TestActionListPublicAndAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	f := newActionFixture()

	c, rec := postForm(url.Values{"action": {"get_admin_data"}, "type": {"students"}}, false)
	f.handler.Dispatch(c)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	c, rec = postForm(url.Values{"action": {"get_admin_data"}, "type": {"students"}}, true)
	f.handler.Dispatch(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "CS001")

	c, rec = postForm(url.Values{"action": {"list"}, "type": {"companies"}, "search": {"tc"}}, false)
	f.handler.Dispatch(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tc", f.companies.filter.Search)

	c, rec = postForm(url.Values{"action": {"list"}, "type": {"invoices"}}, true)
	f.handler.Dispatch(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestActionGetPlacementsCarriesPagination(t *testing.T) {
	gin.SetMode(gin.TestMode)
	f := newActionFixture()
	items := []models.PlacementView{{Placement: models.Placement{ID: 1, Package: 1250000}, StudentName: "Asha"}}
	filter := models.PlacementFilter{Page: 2, PerPage: 1}.Normalize()
	page := dto.NewPlacementPage(items, filter, 3)
	f.placements.page = &page

	c, rec := postForm(url.Values{
		"action":  {"get_placements"},
		"sort":    {"package:desc"},
		"page":    {"2"},
		"perPage": {"1"},
		"year":    {"all"},
	}, false)
	f.handler.Dispatch(c)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeLegacy(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(3), body["total"])
	assert.Equal(t, float64(2), body["page"])
	assert.Equal(t, float64(3), body["totalPages"])
	assert.Equal(t, true, body["hasPrev"])
	assert.Equal(t, models.SortByPackage, f.placements.lastFilter.SortField)
	assert.Equal(t, models.SortDesc, f.placements.lastFilter.SortDirection)
	assert.Zero(t, f.placements.lastFilter.Year)
	data := body["data"].([]interface{})
	require.Len(t, data, 1)
	assert.Equal(t, "₹12.5L", data[0].(map[string]interface{})["packageDisplay"])
}

func TestActionGetPlacementsLegacyPackageRange(t *testing.T) {
	gin.SetMode(gin.TestMode)
	f := newActionFixture()

	c, rec := postForm(url.Values{
		"action":     {"get_placements"},
		"packageMin": {"5"},
		"packageMax": {"10"},
	}, false)
	f.handler.Dispatch(c)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, f.placements.lastFilter.MinPackage)
	require.NotNil(t, f.placements.lastFilter.MaxPackage)
	assert.Equal(t, 5.0, *f.placements.lastFilter.MinPackage)
	assert.Equal(t, 10.0, *f.placements.lastFilter.MaxPackage)

	c, rec = postJSON(`{"action":"get_placements","packageMin":"1.5","packageMax":12}`, false)
	f.handler.Dispatch(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1.5, *f.placements.lastFilter.MinPackage)
	assert.Equal(t, 12.0, *f.placements.lastFilter.MaxPackage)
}

func TestActionGetPlacementsRejectsInfinitePackage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	f := newActionFixture()

	c, rec := postForm(url.Values{"action": {"get_placements"}, "maxPackage": {"Inf"}}, false)
	f.handler.Dispatch(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeLegacy(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "maxPackage must be a number", body["message"])
}

func TestActionSavePlacementJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	f := newActionFixture()

	c, rec := postJSON(`{"action":"save_admin_data","type":"placements","student_id":1,"company_id":2,"package":12.5,"year":2024,"status":"Placed"}`, true)
	f.handler.Dispatch(c)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeLegacy(t, rec)
	assert.Equal(t, "Created successfully", body["message"])
	assert.Equal(t, int64(1), f.placements.lastSave.StudentID)
	assert.Equal(t, 12.5, f.placements.lastSave.Package)
	assert.Equal(t, "admin", f.placements.lastActor)
}

func TestActionSaveUserForm(t *testing.T) {
	gin.SetMode(gin.TestMode)
	f := newActionFixture()

	c, rec := postForm(url.Values{"action": {"save"}, "type": {"user"}, "id": {"2"}, "username": {"editor"}, "role": {"editor"}}, true)
	f.handler.Dispatch(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Updated successfully", decodeLegacy(t, rec)["message"])
	assert.Equal(t, int64(2), f.users.saved.ID)
	assert.Equal(t, "editor", f.users.saved.Role)
}

func TestActionDelete(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("company", func(t *testing.T) {
		f := newActionFixture()
		c, rec := postJSON(`{"action":"delete_admin_data","type":"companies","id":"3"}`, true)
		f.handler.Dispatch(c)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, int64(3), f.companies.deleted)
		assert.Equal(t, "Deleted successfully", decodeLegacy(t, rec)["message"])
	})

	t.Run("missing record", func(t *testing.T) {
		f := newActionFixture()
		f.placements.err = appErrors.ErrNotFound
		c, rec := postForm(url.Values{"action": {"delete"}, "type": {"placement"}, "id": {"99"}}, true)
		f.handler.Dispatch(c)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "record not found", decodeLegacy(t, rec)["message"])
	})

	t.Run("bad id", func(t *testing.T) {
		f := newActionFixture()
		c, rec := postForm(url.Values{"action": {"delete"}, "type": {"student"}, "id": {"abc"}}, true)
		f.handler.Dispatch(c)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestActionLogoutAnonymous(t *testing.T) {
	gin.SetMode(gin.TestMode)
	f := newActionFixture()

	c, rec := postForm(url.Values{"action": {"logout"}}, false)
	f.handler.Dispatch(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeLegacy(t, rec)["success"])
	assert.Equal(t, 1, f.auth.logoutCall)
}

func TestActionDashboardAlias(t *testing.T) {
	gin.SetMode(gin.TestMode)
	f := newActionFixture()

	c, rec := postForm(url.Values{"action": {"get_dashboard_stats"}}, false)
	f.handler.Dispatch(c)

	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeLegacy(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, 66.7, data["placementRate"])
}
