package dto

import (
	"math"
	"strconv"

	"github.com/noah-isme/placement-api/internal/models"
)

// SaveStudentRequest creates a student when ID is zero, otherwise replaces it.
type SaveStudentRequest struct {
	ID         int64  `json:"id" form:"id"`
	Name       string `json:"name" form:"name" validate:"required,max=120"`
	Roll       string `json:"roll" form:"roll" validate:"required,max=32"`
	Department string `json:"department" form:"department" validate:"required,max=80"`
	Email      string `json:"email" form:"email" validate:"omitempty,email"`
	Phone      string `json:"phone" form:"phone" validate:"omitempty,max=32"`
	Status     string `json:"status" form:"status" validate:"omitempty,max=32"`
}

// SaveCompanyRequest creates a company when ID is zero, otherwise replaces it.
type SaveCompanyRequest struct {
	ID          int64  `json:"id" form:"id"`
	Name        string `json:"name" form:"name" validate:"required,max=120"`
	Sector      string `json:"sector" form:"sector" validate:"max=80"`
	Website     string `json:"website" form:"website" validate:"omitempty,url"`
	Logo        string `json:"logo" form:"logo" validate:"max=255"`
	Description string `json:"description" form:"description" validate:"max=2000"`
}

// SavePlacementRequest creates or replaces a placement. Package is entered in
// lakhs and stored in rupees.
type SavePlacementRequest struct {
	ID        int64   `json:"id" form:"id"`
	StudentID int64   `json:"student_id" form:"student_id" validate:"required,gt=0"`
	CompanyID int64   `json:"company_id" form:"company_id" validate:"required,gt=0"`
	Package   float64 `json:"package" form:"package" validate:"gte=0,lte=100000"`
	Year      int     `json:"year" form:"year" validate:"required,gte=1990,lte=2100"`
	Status    string  `json:"status" form:"status" validate:"required,oneof=Placed Pending"`
}

// SaveUserRequest creates or updates an admin account. Password may be left
// empty on update to keep the current one.
type SaveUserRequest struct {
	ID       int64  `json:"id" form:"id"`
	Username string `json:"username" form:"username" validate:"required,max=64"`
	Password string `json:"password" form:"password" validate:"omitempty,min=6"`
	Email    string `json:"email" form:"email" validate:"omitempty,email"`
	Role     string `json:"role" form:"role" validate:"omitempty,oneof=admin editor viewer"`
	Status   string `json:"status" form:"status" validate:"omitempty,oneof=active inactive"`
}

// PlacementListQuery is the wire form of a placement filter. Year and package
// bounds arrive as text because "all" and "" are valid selections.
type PlacementListQuery struct {
	Search        string     `json:"search" form:"search"`
	Department    string     `json:"department" form:"department"`
	Company       string     `json:"company" form:"company"`
	Year          FlexString `json:"year" form:"year"`
	Status        string     `json:"status" form:"status"`
	MinPackage    FlexString `json:"minPackage" form:"minPackage"`
	MaxPackage    FlexString `json:"maxPackage" form:"maxPackage"`
	PackageMin    FlexString `json:"packageMin" form:"packageMin"`
	PackageMax    FlexString `json:"packageMax" form:"packageMax"`
	Sort          string     `json:"sort" form:"sort"`
	SortField     string     `json:"sortField" form:"sortField"`
	SortDirection string     `json:"sortDirection" form:"sortDirection"`
	Page          FlexString `json:"page" form:"page"`
	PerPage       FlexString `json:"perPage" form:"perPage"`
}

// MaxPackageLakhs bounds package amounts accepted from clients.
const MaxPackageLakhs = 100000

// FieldError reports a query parameter that could not be parsed.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	if e.Reason != "" {
		return e.Field + " " + e.Reason
	}
	return e.Field + " must be a number"
}

// Filter converts the query into a filter. A legacy "field:dir" sort is used
// when sortField is absent, and legacy packageMin/packageMax fill in missing
// minPackage/maxPackage.
func (q PlacementListQuery) Filter() (models.PlacementFilter, error) {
	f := models.PlacementFilter{
		Search:        q.Search,
		Department:    q.Department,
		Company:       q.Company,
		Status:        q.Status,
		SortField:     q.SortField,
		SortDirection: q.SortDirection,
	}
	if f.SortField == "" {
		f.SortField, f.SortDirection = models.ParseSort(q.Sort)
	}

	var err error
	if f.Year, err = optionalInt("year", q.Year.String(), true); err != nil {
		return f, err
	}
	if f.Page, err = optionalInt("page", q.Page.String(), false); err != nil {
		return f, err
	}
	if f.PerPage, err = optionalInt("perPage", q.PerPage.String(), false); err != nil {
		return f, err
	}
	minRaw, minField := q.MinPackage.String(), "minPackage"
	if minRaw == "" {
		minRaw, minField = q.PackageMin.String(), "packageMin"
	}
	maxRaw, maxField := q.MaxPackage.String(), "maxPackage"
	if maxRaw == "" {
		maxRaw, maxField = q.PackageMax.String(), "packageMax"
	}
	if f.MinPackage, err = optionalFloat(minField, minRaw); err != nil {
		return f, err
	}
	if f.MaxPackage, err = optionalFloat(maxField, maxRaw); err != nil {
		return f, err
	}
	return f.Normalize(), nil
}

func optionalInt(field, raw string, allowAll bool) (int, error) {
	if raw == "" || (allowAll && raw == "all") {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &FieldError{Field: field}
	}
	return v, nil
}

func optionalFloat(field, raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, &FieldError{Field: field}
	}
	if v < 0 || v > MaxPackageLakhs {
		return nil, &FieldError{Field: field, Reason: "must be between 0 and 100000"}
	}
	return &v, nil
}

// ImportRowError describes one rejected import row. Row is 1-based over data rows.
type ImportRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportResult summarises a placement import.
type ImportResult struct {
	Imported int              `json:"imported"`
	Failed   int              `json:"failed"`
	Errors   []ImportRowError `json:"errors"`
}
