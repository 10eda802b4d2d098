package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/placement-api/internal/models"
	appErrors "github.com/noah-isme/placement-api/pkg/errors"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func TestJSONWithPagination(t *testing.T) {
	c, w := newContext()
	p := models.NewPagination(1, 10, 3)
	JSON(c, http.StatusOK, []string{"a"}, &p, map[string]interface{}{"empty": false})

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.Equal(t, float64(1), body["pagination"].(map[string]interface{})["totalPages"])
	assert.Equal(t, false, body["meta"].(map[string]interface{})["empty"])
}

func TestErrorHidesInternalDetail(t *testing.T) {
	c, w := newContext()
	Error(c, errors.New("pq: relation \"placements\" does not exist"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "relation")
	assert.Contains(t, w.Body.String(), "error performing operation")
	assert.True(t, c.IsAborted())
}

func TestErrorKeepsTypedStatus(t *testing.T) {
	c, w := newContext()
	Error(c, appErrors.Clone(appErrors.ErrValidation, "Username is required"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Username is required")
}

func TestAttachment(t *testing.T) {
	c, w := newContext()
	Attachment(c, "placements.csv", "text/csv", []byte("a,b\n"))

	assert.Equal(t, `attachment; filename="placements.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "a,b\n", w.Body.String())
}
