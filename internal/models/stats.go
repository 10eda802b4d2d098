package models

import "time"

// DashboardStats holds the headline numbers. TotalStudents counts placed
// students; StudentCount is the size of the student table.
type DashboardStats struct {
	TotalStudents  int64   `db:"placed" json:"totalStudents"`
	StudentCount   int64   `db:"students" json:"studentCount"`
	TotalCompanies int64   `db:"companies" json:"totalCompanies"`
	PlacementRate  float64 `json:"placementRate"`
	HighestPackage int64   `db:"highest" json:"highestPackage"`
}

// DepartmentStat aggregates placements per department.
type DepartmentStat struct {
	Department     string  `db:"department" json:"department"`
	Placed         int64   `db:"placed" json:"placed"`
	AveragePackage float64 `db:"avg_package" json:"avgPackage"`
}

// CompanyHires counts placements per company.
type CompanyHires struct {
	Company string `db:"company" json:"company"`
	Hires   int64  `db:"hires" json:"hires"`
}

// YearStat aggregates placements per year.
type YearStat struct {
	Year           int     `db:"year" json:"year"`
	Placed         int64   `db:"placed" json:"placed"`
	AveragePackage float64 `db:"avg_package" json:"avgPackage"`
}

// Analytics is the breakdown behind the analytics view.
type Analytics struct {
	Summary     DashboardStats   `json:"summary"`
	Departments []DepartmentStat `json:"deptStats"`
	Companies   []CompanyHires   `json:"companyStats"`
	Years       []YearStat       `json:"yearStats"`
}

// FilterOptions lists the distinct values offered by the placement filters.
type FilterOptions struct {
	Departments []string `json:"departments"`
	Companies   []string `json:"companies"`
	Years       []int    `json:"years"`
}

// SystemMetrics is a point-in-time summary of the process counters.
type SystemMetrics struct {
	RequestsTotal            uint64    `json:"requestsTotal"`
	AverageRequestDurationMs float64   `json:"averageRequestDurationMs"`
	CacheHits                uint64    `json:"cacheHits"`
	CacheMisses              uint64    `json:"cacheMisses"`
	CacheHitRatio            float64   `json:"cacheHitRatio"`
	DBQueryCount             uint64    `json:"dbQueryCount"`
	AverageDBQueryDurationMs float64   `json:"averageDbQueryDurationMs"`
	LoginFailures            uint64    `json:"loginFailures"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generatedAt"`
}
