package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/placement-api/internal/models"
	"github.com/noah-isme/placement-api/pkg/currency"
)

const placementViewSelect = `SELECT p.id, p.student_id, p.company_id, p.package, p.year, p.status, p.created_at,
        s.name AS student_name, s.roll, s.department, c.name AS company_name`

const placementJoins = `FROM placements p
        JOIN students s ON s.id = p.student_id
        JOIN companies c ON c.id = p.company_id`

var placementSortColumns = map[string]string{
	models.SortByName:    "s.name",
	models.SortByPackage: "p.package",
	models.SortByYear:    "p.year",
}

// PlacementRepository runs the placement list query and placement CRUD.
type PlacementRepository struct {
	db *sqlx.DB
}

// NewPlacementRepository constructs a PlacementRepository.
func NewPlacementRepository(db *sqlx.DB) *PlacementRepository {
	return &PlacementRepository{db: db}
}

// List returns one page of placements matching every active filter and the
// total number of matches. Pages past the end yield an empty slice.
func (r *PlacementRepository) List(ctx context.Context, filter models.PlacementFilter) ([]models.PlacementView, int, error) {
	filter = filter.Normalize()
	where, args := placementConditions(filter)

	query := fmt.Sprintf("%s %s %s %s LIMIT %d OFFSET %d", placementViewSelect, placementJoins, where, placementOrder(filter), filter.PerPage, filter.Offset())
	placements := []models.PlacementView{}
	if err := r.db.SelectContext(ctx, &placements, r.db.Rebind(query), args...); err != nil {
		return nil, 0, fmt.Errorf("list placements: %w", err)
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) %s %s", placementJoins, where)
	if err := r.db.GetContext(ctx, &total, r.db.Rebind(countQuery), args...); err != nil {
		return nil, 0, fmt.Errorf("count placements: %w", err)
	}
	return placements, total, nil
}

// ListAll returns every placement matching the filter in the requested order,
// ignoring paging. Used by exports.
func (r *PlacementRepository) ListAll(ctx context.Context, filter models.PlacementFilter) ([]models.PlacementView, error) {
	filter = filter.Normalize()
	where, args := placementConditions(filter)

	query := fmt.Sprintf("%s %s %s %s", placementViewSelect, placementJoins, where, placementOrder(filter))
	placements := []models.PlacementView{}
	if err := r.db.SelectContext(ctx, &placements, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list all placements: %w", err)
	}
	return placements, nil
}

// ListRecent returns every placement newest first for the admin table.
func (r *PlacementRepository) ListRecent(ctx context.Context) ([]models.PlacementView, error) {
	query := fmt.Sprintf("%s %s ORDER BY p.created_at DESC, p.id DESC", placementViewSelect, placementJoins)
	placements := []models.PlacementView{}
	if err := r.db.SelectContext(ctx, &placements, query); err != nil {
		return nil, fmt.Errorf("list recent placements: %w", err)
	}
	return placements, nil
}

// FindByID returns a single joined placement.
func (r *PlacementRepository) FindByID(ctx context.Context, id int64) (*models.PlacementView, error) {
	query := fmt.Sprintf("%s %s WHERE p.id = ?", placementViewSelect, placementJoins)
	var placement models.PlacementView
	if err := r.db.GetContext(ctx, &placement, r.db.Rebind(query), id); err != nil {
		return nil, err
	}
	return &placement, nil
}

// FilterOptions returns the distinct values that populate the filter controls.
func (r *PlacementRepository) FilterOptions(ctx context.Context) (*models.FilterOptions, error) {
	opts := &models.FilterOptions{Departments: []string{}, Companies: []string{}, Years: []int{}}
	if err := r.db.SelectContext(ctx, &opts.Departments, "SELECT DISTINCT department FROM students ORDER BY department"); err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	if err := r.db.SelectContext(ctx, &opts.Companies, "SELECT DISTINCT name FROM companies ORDER BY name"); err != nil {
		return nil, fmt.Errorf("list company names: %w", err)
	}
	if err := r.db.SelectContext(ctx, &opts.Years, "SELECT DISTINCT year FROM placements ORDER BY year DESC"); err != nil {
		return nil, fmt.Errorf("list years: %w", err)
	}
	return opts, nil
}

// Count returns the number of placements.
func (r *PlacementRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM placements"); err != nil {
		return 0, fmt.Errorf("count placements: %w", err)
	}
	return total, nil
}

// Create inserts a placement and sets its id.
func (r *PlacementRepository) Create(ctx context.Context, placement *models.Placement) error {
	id, err := insertReturningID(ctx, r.db,
		"INSERT INTO placements (student_id, company_id, package, year, status) VALUES (?, ?, ?, ?, ?)",
		placement.StudentID, placement.CompanyID, placement.Package, placement.Year, placement.Status)
	if err != nil {
		return fmt.Errorf("create placement: %w", err)
	}
	placement.ID = id
	return nil
}

// Update replaces every editable field of a placement.
func (r *PlacementRepository) Update(ctx context.Context, placement *models.Placement) error {
	query := r.db.Rebind("UPDATE placements SET student_id = ?, company_id = ?, package = ?, year = ?, status = ? WHERE id = ?")
	res, err := r.db.ExecContext(ctx, query, placement.StudentID, placement.CompanyID, placement.Package, placement.Year, placement.Status, placement.ID)
	if err != nil {
		return fmt.Errorf("update placement: %w", err)
	}
	return expectAffected(res)
}

// Delete removes one placement.
func (r *PlacementRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM placements WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("delete placement: %w", err)
	}
	return expectAffected(res)
}

func placementConditions(filter models.PlacementFilter) (string, []interface{}) {
	conditions := []string{"1=1"}
	var args []interface{}

	if filter.Search != "" {
		like := containsPattern(filter.Search)
		conditions = append(conditions, "(LOWER(s.name) LIKE ?"+likeEscape+" OR LOWER(s.roll) LIKE ?"+likeEscape+" OR LOWER(c.name) LIKE ?"+likeEscape+")")
		args = append(args, like, like, like)
	}
	if filter.Department != "" {
		conditions = append(conditions, "s.department = ?")
		args = append(args, filter.Department)
	}
	if filter.Company != "" {
		conditions = append(conditions, "c.name = ?")
		args = append(args, filter.Company)
	}
	if filter.Year > 0 {
		conditions = append(conditions, "p.year = ?")
		args = append(args, filter.Year)
	}
	if filter.Status != "" {
		conditions = append(conditions, "p.status = ?")
		args = append(args, filter.Status)
	}
	if filter.MinPackage != nil {
		conditions = append(conditions, "p.package >= ?")
		args = append(args, currency.LakhsToAmount(*filter.MinPackage))
	}
	if filter.MaxPackage != nil {
		conditions = append(conditions, "p.package <= ?")
		args = append(args, currency.LakhsToAmount(*filter.MaxPackage))
	}

	return "WHERE " + strings.Join(conditions, " AND "), args
}

func placementOrder(filter models.PlacementFilter) string {
	column, ok := placementSortColumns[filter.SortField]
	if !ok {
		column = "s.name"
	}
	direction := "ASC"
	if filter.SortDirection == models.SortDesc {
		direction = "DESC"
	}
	return fmt.Sprintf("ORDER BY %s %s, p.id ASC", column, direction)
}
