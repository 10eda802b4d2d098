package models

import (
	"math"
	"strings"
)

// Pagination limits for list queries.
const (
	DefaultPerPage = 10
	MaxPerPage     = 100
	// MaxPage keeps the row offset of any page within int range.
	MaxPage = math.MaxInt32 / MaxPerPage
)

// Sort fields accepted by the placement list.
const (
	SortByName    = "name"
	SortByPackage = "package"
	SortByYear    = "year"
)

// Sort directions.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// filterAll is the sentinel select value that disables a filter.
const filterAll = "all"

// PlacementFilter is the combined search, filter, sort and page request for
// the placement list. Package bounds are in lakhs.
type PlacementFilter struct {
	Search        string
	Department    string
	Company       string
	Year          int
	Status        string
	MinPackage    *float64
	MaxPackage    *float64
	SortField     string
	SortDirection string
	Page          int
	PerPage       int
}

// Normalize trims inputs, clears "all" selections and clamps sort and paging
// values into their supported ranges.
func (f PlacementFilter) Normalize() PlacementFilter {
	f.Search = strings.TrimSpace(f.Search)
	f.Department = selection(f.Department)
	f.Company = selection(f.Company)
	f.Status = selection(f.Status)
	if f.Year < 0 {
		f.Year = 0
	}

	switch strings.ToLower(strings.TrimSpace(f.SortField)) {
	case SortByPackage:
		f.SortField = SortByPackage
	case SortByYear:
		f.SortField = SortByYear
	case SortByName:
		f.SortField = SortByName
	default:
		f.SortField = SortByName
		f.SortDirection = SortAsc
	}
	if strings.EqualFold(strings.TrimSpace(f.SortDirection), SortDesc) {
		f.SortDirection = SortDesc
	} else {
		f.SortDirection = SortAsc
	}

	if f.Page < 1 {
		f.Page = 1
	}
	if f.Page > MaxPage {
		f.Page = MaxPage
	}
	if f.PerPage <= 0 {
		f.PerPage = DefaultPerPage
	}
	if f.PerPage > MaxPerPage {
		f.PerPage = MaxPerPage
	}
	return f
}

// Offset is the number of rows skipped before the requested page.
func (f PlacementFilter) Offset() int {
	if f.Page < 1 || f.PerPage < 1 {
		return 0
	}
	if f.Page-1 > math.MaxInt32/f.PerPage {
		return math.MaxInt32
	}
	return (f.Page - 1) * f.PerPage
}

// ParseSort splits a "field:direction" string. A missing direction is "asc".
func ParseSort(raw string) (field, direction string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ""
	}
	field, direction, _ = strings.Cut(raw, ":")
	if direction == "" {
		direction = SortAsc
	}
	return field, direction
}

func selection(v string) string {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, filterAll) {
		return ""
	}
	return v
}

// Pagination describes where a page sits within a result set.
type Pagination struct {
	Page       int  `json:"page"`
	PerPage    int  `json:"perPage"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasPrev    bool `json:"hasPrev"`
	HasNext    bool `json:"hasNext"`
}

// NewPagination computes page counts and navigation flags.
func NewPagination(page, perPage, total int) Pagination {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if page < 1 {
		page = 1
	}
	totalPages := 0
	if total > 0 {
		totalPages = (total + perPage - 1) / perPage
	}
	return Pagination{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
	}
}
