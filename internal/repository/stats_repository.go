package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/placement-api/internal/models"
)

// StatsRepository runs the aggregate queries behind the dashboard and analytics views.
type StatsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository constructs a StatsRepository.
func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// Dashboard returns the raw headline counts. Placement rate is derived by the caller.
func (r *StatsRepository) Dashboard(ctx context.Context) (*models.DashboardStats, error) {
	query := r.db.Rebind(`SELECT
        (SELECT COUNT(*) FROM placements WHERE status = ?) AS placed,
        (SELECT COUNT(*) FROM students) AS students,
        (SELECT COUNT(*) FROM companies) AS companies,
        (SELECT COALESCE(MAX(package), 0) FROM placements) AS highest`)
	var stats models.DashboardStats
	if err := r.db.GetContext(ctx, &stats, query, models.PlacementPlaced); err != nil {
		return nil, fmt.Errorf("dashboard stats: %w", err)
	}
	return &stats, nil
}

// DepartmentStats counts placements and averages packages per student department.
// Departments without placements report zero.
func (r *StatsRepository) DepartmentStats(ctx context.Context) ([]models.DepartmentStat, error) {
	const query = `SELECT s.department AS department,
        COUNT(p.id) AS placed,
        COALESCE(AVG(p.package), 0) AS avg_package
        FROM students s
        LEFT JOIN placements p ON p.student_id = s.id
        GROUP BY s.department
        ORDER BY s.department`
	stats := []models.DepartmentStat{}
	if err := r.db.SelectContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("department stats: %w", err)
	}
	return stats, nil
}

// CompanyHires counts placements per company name.
func (r *StatsRepository) CompanyHires(ctx context.Context) ([]models.CompanyHires, error) {
	const query = `SELECT c.name AS company,
        COUNT(p.id) AS hires
        FROM companies c
        LEFT JOIN placements p ON p.company_id = c.id
        GROUP BY c.name
        ORDER BY hires DESC, c.name ASC`
	stats := []models.CompanyHires{}
	if err := r.db.SelectContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("company hires: %w", err)
	}
	return stats, nil
}

// YearStats counts placed students and averages packages per placement year.
func (r *StatsRepository) YearStats(ctx context.Context) ([]models.YearStat, error) {
	query := r.db.Rebind(`SELECT p.year AS year,
        SUM(CASE WHEN p.status = ? THEN 1 ELSE 0 END) AS placed,
        COALESCE(AVG(p.package), 0) AS avg_package
        FROM placements p
        GROUP BY p.year
        ORDER BY p.year ASC`)
	stats := []models.YearStat{}
	if err := r.db.SelectContext(ctx, &stats, query, models.PlacementPlaced); err != nil {
		return nil, fmt.Errorf("year stats: %w", err)
	}
	return stats, nil
}
