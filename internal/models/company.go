package models

import "time"

// Company is a recruiting partner.
type Company struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Sector      string    `db:"sector" json:"sector"`
	Website     string    `db:"website" json:"website"`
	Logo        string    `db:"logo" json:"logo"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// CompanySummary is a company plus aggregates derived from its placements.
// Companies without placements report zero for every aggregate.
type CompanySummary struct {
	Company
	Hires          int64   `db:"hires" json:"hires"`
	HighestPackage int64   `db:"highest_package" json:"highest_package"`
	AveragePackage float64 `db:"average_package" json:"average_package"`
}

// CompanyFilter narrows the company listing.
type CompanyFilter struct {
	Search string
	Sector string
}
