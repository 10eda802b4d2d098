package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/placement-api/internal/middleware"
	appErrors "github.com/noah-isme/placement-api/pkg/errors"
)

// SessionCookie describes the HttpOnly cookie carrying the session token.
type SessionCookie struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

func (s SessionCookie) set(c *gin.Context, token string) {
	if s.Name == "" {
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.Name, token, int(s.MaxAge.Seconds()), "/", "", s.Secure, true)
}

func (s SessionCookie) clear(c *gin.Context) {
	if s.Name == "" {
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.Name, "", -1, "/", "", s.Secure, true)
}

func actorName(c *gin.Context) string {
	if identity := middleware.CurrentIdentity(c); identity != nil {
		return identity.Username
	}
	return ""
}

func parseID(c *gin.Context) (int64, error) {
	return parseIDValue(c.Param("id"))
}

func parseIDValue(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid id")
	}
	return id, nil
}

func invalidPayload(err error) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload")
}
