package models

import "time"

// Departments used by the demo dataset and offered by default in forms.
var Departments = []string{"Computer Science", "Electronics", "Mechanical"}

// StudentStatusActive is the status assigned when none is supplied.
const StudentStatusActive = "Active"

// Student is a candidate tracked by the placement cell.
type Student struct {
	ID         int64     `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Roll       string    `db:"roll" json:"roll"`
	Department string    `db:"department" json:"department"`
	Email      string    `db:"email" json:"email"`
	Phone      string    `db:"phone" json:"phone"`
	Status     string    `db:"status" json:"status"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
