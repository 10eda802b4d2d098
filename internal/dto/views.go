package dto

import (
	"strconv"
	"time"

	"github.com/noah-isme/placement-api/internal/models"
	"github.com/noah-isme/placement-api/pkg/currency"
	"github.com/noah-isme/placement-api/pkg/export"
)

// EmptyMessage accompanies list responses with no rows.
const EmptyMessage = "No records found"

// Money pairs a stored rupee amount with its lakhs rendering. It is the only
// place amounts are converted for display.
type Money struct {
	Amount  int64   `json:"amount"`
	Lakhs   float64 `json:"lakhs"`
	Display string  `json:"display"`
}

// NewMoney converts a stored amount once.
func NewMoney(amount int64) Money {
	return Money{Amount: amount, Lakhs: currency.AmountToLakhs(amount), Display: currency.FormatLakhs(amount)}
}

// PlacementView is the listing row for a placement.
type PlacementView struct {
	ID             int64     `json:"id"`
	StudentID      int64     `json:"student_id"`
	CompanyID      int64     `json:"company_id"`
	Name           string    `json:"name"`
	Roll           string    `json:"roll"`
	Department     string    `json:"department"`
	Company        string    `json:"company"`
	Package        int64     `json:"package"`
	PackageLakhs   float64   `json:"packageLakhs"`
	PackageDisplay string    `json:"packageDisplay"`
	Year           int       `json:"year"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewPlacementView maps a joined placement.
func NewPlacementView(p models.PlacementView) PlacementView {
	money := NewMoney(p.Package)
	return PlacementView{
		ID:             p.ID,
		StudentID:      p.StudentID,
		CompanyID:      p.CompanyID,
		Name:           p.StudentName,
		Roll:           p.Roll,
		Department:     p.Department,
		Company:        p.CompanyName,
		Package:        p.Package,
		PackageLakhs:   money.Lakhs,
		PackageDisplay: money.Display,
		Year:           p.Year,
		Status:         p.Status,
		CreatedAt:      p.CreatedAt,
	}
}

// NewPlacementViews maps a slice, never returning nil.
func NewPlacementViews(items []models.PlacementView) []PlacementView {
	views := make([]PlacementView, 0, len(items))
	for _, p := range items {
		views = append(views, NewPlacementView(p))
	}
	return views
}

// PlacementPage is one page of the placement list.
type PlacementPage struct {
	Data       []PlacementView   `json:"data"`
	Pagination models.Pagination `json:"pagination"`
	Empty      bool              `json:"empty"`
	Message    string            `json:"message,omitempty"`
}

// NewPlacementPage builds a page and flags the empty state.
func NewPlacementPage(items []models.PlacementView, filter models.PlacementFilter, total int) PlacementPage {
	page := PlacementPage{
		Data:       NewPlacementViews(items),
		Pagination: models.NewPagination(filter.Page, filter.PerPage, total),
	}
	if len(page.Data) == 0 {
		page.Empty = true
		page.Message = EmptyMessage
	}
	return page
}

// CompanyView is a company with its placement aggregates rendered.
type CompanyView struct {
	ID                    int64   `json:"id"`
	Name                  string  `json:"name"`
	Sector                string  `json:"sector"`
	Website               string  `json:"website"`
	Logo                  string  `json:"logo"`
	Description           string  `json:"description"`
	Hires                 int64   `json:"hires"`
	HighestPackage        int64   `json:"highestPackage"`
	HighestPackageLakhs   float64 `json:"highestPackageLakhs"`
	HighestPackageDisplay string  `json:"highestPackageDisplay"`
	AveragePackage        int64   `json:"averagePackage"`
	AveragePackageLakhs   float64 `json:"averagePackageLakhs"`
	AveragePackageDisplay string  `json:"averagePackageDisplay"`
}

// NewCompanyView maps a company summary.
func NewCompanyView(c models.CompanySummary) CompanyView {
	highest := NewMoney(c.HighestPackage)
	average := NewMoney(roundAmount(c.AveragePackage))
	return CompanyView{
		ID:                    c.ID,
		Name:                  c.Name,
		Sector:                c.Sector,
		Website:               c.Website,
		Logo:                  c.Logo,
		Description:           c.Description,
		Hires:                 c.Hires,
		HighestPackage:        highest.Amount,
		HighestPackageLakhs:   highest.Lakhs,
		HighestPackageDisplay: highest.Display,
		AveragePackage:        average.Amount,
		AveragePackageLakhs:   average.Lakhs,
		AveragePackageDisplay: average.Display,
	}
}

// NewCompanyViews maps a slice, never returning nil.
func NewCompanyViews(items []models.CompanySummary) []CompanyView {
	views := make([]CompanyView, 0, len(items))
	for _, c := range items {
		views = append(views, NewCompanyView(c))
	}
	return views
}

// DashboardView carries the headline numbers.
type DashboardView struct {
	TotalStudents         int64   `json:"totalStudents"`
	StudentCount          int64   `json:"studentCount"`
	TotalCompanies        int64   `json:"totalCompanies"`
	PlacementRate         float64 `json:"placementRate"`
	HighestPackage        float64 `json:"highestPackage"`
	HighestPackageDisplay string  `json:"highestPackageDisplay"`
}

// NewDashboardView maps dashboard stats.
func NewDashboardView(s models.DashboardStats) DashboardView {
	highest := NewMoney(s.HighestPackage)
	return DashboardView{
		TotalStudents:         s.TotalStudents,
		StudentCount:          s.StudentCount,
		TotalCompanies:        s.TotalCompanies,
		PlacementRate:         s.PlacementRate,
		HighestPackage:        highest.Lakhs,
		HighestPackageDisplay: highest.Display,
	}
}

// DepartmentStatView is one department row in analytics.
type DepartmentStatView struct {
	Department string  `json:"department"`
	Placed     int64   `json:"placed"`
	AvgPackage float64 `json:"avgPackage"`
}

// YearStatView is one year row in analytics.
type YearStatView struct {
	Year       int     `json:"year"`
	Placed     int64   `json:"placed"`
	AvgPackage float64 `json:"avgPackage"`
}

// AnalyticsView is the analytics payload. TotalStudents here is the size of
// the student table; average packages are in lakhs.
type AnalyticsView struct {
	TotalStudents  int64                 `json:"totalStudents"`
	TotalCompanies int64                 `json:"totalCompanies"`
	PlacedStudents int64                 `json:"placedStudents"`
	PlacementRate  float64               `json:"placementRate"`
	HighestPackage float64               `json:"highestPackage"`
	DeptStats      []DepartmentStatView  `json:"deptStats"`
	CompanyStats   []models.CompanyHires `json:"companyStats"`
	YearStats      []YearStatView        `json:"yearStats"`
}

// NewAnalyticsView maps analytics.
func NewAnalyticsView(a models.Analytics) AnalyticsView {
	view := AnalyticsView{
		TotalStudents:  a.Summary.StudentCount,
		TotalCompanies: a.Summary.TotalCompanies,
		PlacedStudents: a.Summary.TotalStudents,
		PlacementRate:  a.Summary.PlacementRate,
		HighestPackage: currency.AmountToLakhs(a.Summary.HighestPackage),
		DeptStats:      make([]DepartmentStatView, 0, len(a.Departments)),
		CompanyStats:   a.Companies,
		YearStats:      make([]YearStatView, 0, len(a.Years)),
	}
	if view.CompanyStats == nil {
		view.CompanyStats = []models.CompanyHires{}
	}
	for _, d := range a.Departments {
		view.DeptStats = append(view.DeptStats, DepartmentStatView{
			Department: d.Department,
			Placed:     d.Placed,
			AvgPackage: currency.AmountToLakhs(roundAmount(d.AveragePackage)),
		})
	}
	for _, y := range a.Years {
		view.YearStats = append(view.YearStats, YearStatView{
			Year:       y.Year,
			Placed:     y.Placed,
			AvgPackage: currency.AmountToLakhs(roundAmount(y.AveragePackage)),
		})
	}
	return view
}

// UserView is an admin account without credentials.
type UserView struct {
	ID        int64      `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	Status    string     `json:"status"`
	LastLogin *time.Time `json:"last_login"`
}

// NewUserViews maps accounts, never returning nil.
func NewUserViews(users []models.AdminUser) []UserView {
	views := make([]UserView, 0, len(users))
	for _, u := range users {
		views = append(views, NewUserView(u))
	}
	return views
}

// NewUserView maps one account.
func NewUserView(u models.AdminUser) UserView {
	return UserView{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role, Status: u.Status, LastLogin: u.LastLogin}
}

// Placement export columns.
var placementExportHeaders = []string{"Student", "Roll", "Department", "Company", "Package (LPA)", "Year", "Status"}

// PlacementDataset renders placements as an export table.
func PlacementDataset(items []models.PlacementView) export.Dataset {
	rows := make([]map[string]string, 0, len(items))
	for _, p := range items {
		rows = append(rows, map[string]string{
			"Student":       p.StudentName,
			"Roll":          p.Roll,
			"Department":    p.Department,
			"Company":       p.CompanyName,
			"Package (LPA)": strconv.FormatFloat(currency.AmountToLakhs(p.Package), 'f', 1, 64),
			"Year":          strconv.Itoa(p.Year),
			"Status":        p.Status,
		})
	}
	return export.Dataset{Headers: placementExportHeaders, Rows: rows}
}

func roundAmount(v float64) int64 {
	return int64(currency.RoundTo(v, 0))
}
