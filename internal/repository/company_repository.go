package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/placement-api/internal/models"
)

const companySummarySelect = `SELECT c.id, c.name, c.sector, c.website, c.logo, c.description, c.created_at,
        COUNT(p.id) AS hires,
        COALESCE(MAX(p.package), 0) AS highest_package,
        COALESCE(AVG(p.package), 0) AS average_package
        FROM companies c
        LEFT JOIN placements p ON p.company_id = c.id`

const companyGroupBy = "GROUP BY c.id, c.name, c.sector, c.website, c.logo, c.description, c.created_at"

// CompanyRepository manages persistence for recruiting companies.
type CompanyRepository struct {
	db *sqlx.DB
}

// NewCompanyRepository constructs a CompanyRepository.
func NewCompanyRepository(db *sqlx.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

// List returns companies with hire aggregates ordered by name.
func (r *CompanyRepository) List(ctx context.Context, filter models.CompanyFilter) ([]models.CompanySummary, error) {
	conditions := []string{"1=1"}
	var args []interface{}
	if search := strings.TrimSpace(filter.Search); search != "" {
		conditions = append(conditions, "(LOWER(c.name) LIKE ?"+likeEscape+" OR LOWER(c.sector) LIKE ?"+likeEscape+")")
		like := containsPattern(search)
		args = append(args, like, like)
	}
	if sector := strings.TrimSpace(filter.Sector); sector != "" && !strings.EqualFold(sector, "all") {
		conditions = append(conditions, "c.sector = ?")
		args = append(args, sector)
	}

	query := fmt.Sprintf("%s WHERE %s %s ORDER BY c.name ASC", companySummarySelect, strings.Join(conditions, " AND "), companyGroupBy)
	companies := []models.CompanySummary{}
	if err := r.db.SelectContext(ctx, &companies, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	return companies, nil
}

// FindByID returns one company with its aggregates.
func (r *CompanyRepository) FindByID(ctx context.Context, id int64) (*models.CompanySummary, error) {
	query := fmt.Sprintf("%s WHERE c.id = ? %s", companySummarySelect, companyGroupBy)
	var company models.CompanySummary
	if err := r.db.GetContext(ctx, &company, r.db.Rebind(query), id); err != nil {
		return nil, err
	}
	return &company, nil
}

// FindByName looks a company up by exact, case-insensitive name.
func (r *CompanyRepository) FindByName(ctx context.Context, name string) (*models.Company, error) {
	var company models.Company
	query := r.db.Rebind("SELECT id, name, sector, website, logo, description, created_at FROM companies WHERE LOWER(name) = LOWER(?) ORDER BY id LIMIT 1")
	if err := r.db.GetContext(ctx, &company, query, strings.TrimSpace(name)); err != nil {
		return nil, err
	}
	return &company, nil
}

// Count returns the number of companies.
func (r *CompanyRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM companies"); err != nil {
		return 0, fmt.Errorf("count companies: %w", err)
	}
	return total, nil
}

// Create inserts a company and sets its id.
func (r *CompanyRepository) Create(ctx context.Context, company *models.Company) error {
	id, err := insertReturningID(ctx, r.db,
		"INSERT INTO companies (name, sector, website, logo, description) VALUES (?, ?, ?, ?, ?)",
		company.Name, company.Sector, company.Website, company.Logo, company.Description)
	if err != nil {
		return fmt.Errorf("create company: %w", err)
	}
	company.ID = id
	return nil
}

// Update replaces every editable field of a company.
func (r *CompanyRepository) Update(ctx context.Context, company *models.Company) error {
	query := r.db.Rebind("UPDATE companies SET name = ?, sector = ?, website = ?, logo = ?, description = ? WHERE id = ?")
	res, err := r.db.ExecContext(ctx, query, company.Name, company.Sector, company.Website, company.Logo, company.Description, company.ID)
	if err != nil {
		return fmt.Errorf("update company: %w", err)
	}
	return expectAffected(res)
}

// Delete removes a company together with its placements.
func (r *CompanyRepository) Delete(ctx context.Context, id int64) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM placements WHERE company_id = ?"), id); err != nil {
			return fmt.Errorf("delete company placements: %w", err)
		}
		res, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM companies WHERE id = ?"), id)
		if err != nil {
			return fmt.Errorf("delete company: %w", err)
		}
		return expectAffected(res)
	})
}
