package models

import "time"

// Placement outcomes.
const (
	PlacementPlaced  = "Placed"
	PlacementPending = "Pending"
)

// Placement links a student to a company with a package in stored rupees.
type Placement struct {
	ID        int64     `db:"id" json:"id"`
	StudentID int64     `db:"student_id" json:"student_id"`
	CompanyID int64     `db:"company_id" json:"company_id"`
	Package   int64     `db:"package" json:"package"`
	Year      int       `db:"year" json:"year"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// PlacementView is a placement joined with the student and company it references.
type PlacementView struct {
	Placement
	StudentName string `db:"student_name" json:"student_name"`
	Roll        string `db:"roll" json:"roll"`
	Department  string `db:"department" json:"department"`
	CompanyName string `db:"company_name" json:"company_name"`
}
