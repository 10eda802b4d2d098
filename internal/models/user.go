package models

import "time"

// Admin roles. Roles are stored and displayed but every active account has
// the same permissions.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleViewer = "viewer"
)

// Account statuses.
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// AdminUser is an operator account able to sign in.
type AdminUser struct {
	ID           int64      `db:"id" json:"id"`
	Username     string     `db:"username" json:"username"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Email        string     `db:"email" json:"email"`
	Role         string     `db:"role" json:"role"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	Status       string     `db:"status" json:"status"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

// IsActive reports whether the account may authenticate.
func (u AdminUser) IsActive() bool {
	return u.Status == UserStatusActive
}
