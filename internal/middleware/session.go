package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/placement-api/internal/models"
	appErrors "github.com/noah-isme/placement-api/pkg/errors"
	"github.com/noah-isme/placement-api/pkg/response"
)

// ContextIdentityKey is the gin context key storing the signed-in admin.
const ContextIdentityKey = "currentIdentity"

type sessionAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*models.Identity, error)
}

// Session attaches the caller's identity when a valid session token is
// presented as a bearer token or in the session cookie. It never blocks.
func Session(auth sessionAuthenticator, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := SessionToken(c, cookieName)
		if token == "" {
			c.Next()
			return
		}
		identity, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.Next()
			return
		}
		c.Set(ContextIdentityKey, identity)
		c.Next()
	}
}

// RequireAdmin rejects anonymous callers with a uniform 401.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentIdentity(c) == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			return
		}
		c.Next()
	}
}

// CurrentIdentity returns the signed-in admin or nil.
func CurrentIdentity(c *gin.Context) *models.Identity {
	value, exists := c.Get(ContextIdentityKey)
	if !exists {
		return nil
	}
	identity, ok := value.(*models.Identity)
	if !ok {
		return nil
	}
	return identity
}

// SessionToken extracts the token from the Authorization header, falling back
// to the session cookie.
func SessionToken(c *gin.Context, cookieName string) string {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if cookieName == "" {
		return ""
	}
	cookie, err := c.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return cookie
}
