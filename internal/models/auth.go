package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds admin credentials.
type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// LoginResult is returned after a successful sign-in.
type LoginResult struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AdminSession is the server-side record behind a session token.
type AdminSession struct {
	ID        string     `db:"id" json:"id"`
	UserID    int64      `db:"user_id" json:"user_id"`
	Username  string     `db:"username" json:"username"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	ExpiresAt time.Time  `db:"expires_at" json:"expires_at"`
	RevokedAt *time.Time `db:"revoked_at" json:"revoked_at,omitempty"`
}

// Valid reports whether the session can still authenticate requests at now.
func (s AdminSession) Valid(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}

// SessionClaims is the JWT payload. The registered ID claim carries the session id.
type SessionClaims struct {
	UserID   int64  `json:"uid"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Identity is the authenticated caller attached to a request.
type Identity struct {
	UserID    int64  `json:"id"`
	Username  string `json:"username"`
	SessionID string `json:"-"`
}
