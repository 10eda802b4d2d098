package models

import "time"

// Activity kinds recorded in the admin feed.
const (
	ActivityLogin  = "LOGIN"
	ActivityLogout = "LOGOUT"
	ActivityCreate = "CREATE"
	ActivityUpdate = "UPDATE"
	ActivityDelete = "DELETE"
	ActivityImport = "IMPORT"
)

// ActivityEntry is one line in the append-only admin activity feed.
type ActivityEntry struct {
	ID          int64     `db:"id" json:"id"`
	Action      string    `db:"action" json:"action"`
	Description string    `db:"description" json:"description"`
	Actor       string    `db:"actor" json:"user"`
	CreatedAt   time.Time `db:"created_at" json:"timestamp"`
}
