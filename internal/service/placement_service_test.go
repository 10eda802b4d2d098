package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/placement-api/internal/dto"
	"github.com/noah-isme/placement-api/internal/models"
	appErrors "github.com/noah-isme/placement-api/pkg/errors"
)

type mockPlacementRepo struct {
	placements  map[int64]models.Placement
	students    *mockStudentRepo
	companies   *mockCompanyRepo
	nextID      int64
	lastFilter  models.PlacementFilter
	listTotal   int
	options     *models.FilterOptions
	optionCalls int
	err         error
}

func newMockPlacementRepo(students *mockStudentRepo, companies *mockCompanyRepo) *mockPlacementRepo {
	return &mockPlacementRepo{placements: map[int64]models.Placement{}, students: students, companies: companies, nextID: 1}
}

func (m *mockPlacementRepo) view(p models.Placement) models.PlacementView {
	v := models.PlacementView{Placement: p}
	if s, ok := m.students.students[p.StudentID]; ok {
		v.StudentName, v.Roll, v.Department = s.Name, s.Roll, s.Department
	}
	if c, ok := m.companies.companies[p.CompanyID]; ok {
		v.CompanyName = c.Name
	}
	return v
}

func (m *mockPlacementRepo) all() []models.PlacementView {
	out := make([]models.PlacementView, 0, len(m.placements))
	for id := int64(1); id < m.nextID; id++ {
		if p, ok := m.placements[id]; ok {
			out = append(out, m.view(p))
		}
	}
	return out
}

func (m *mockPlacementRepo) List(ctx context.Context, filter models.PlacementFilter) ([]models.PlacementView, int, error) {
	m.lastFilter = filter
	if m.err != nil {
		return nil, 0, m.err
	}
	items := m.all()
	if filter.Offset() >= len(items) {
		return []models.PlacementView{}, len(items), nil
	}
	return items[filter.Offset():], len(items), nil
}

func (m *mockPlacementRepo) ListAll(ctx context.Context, filter models.PlacementFilter) ([]models.PlacementView, error) {
	m.lastFilter = filter
	return m.all(), m.err
}

func (m *mockPlacementRepo) ListRecent(ctx context.Context) ([]models.PlacementView, error) {
	items := m.all()
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	return items, m.err
}

func (m *mockPlacementRepo) FindByID(ctx context.Context, id int64) (*models.PlacementView, error) {
	p, ok := m.placements[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	v := m.view(p)
	return &v, nil
}

func (m *mockPlacementRepo) FilterOptions(ctx context.Context) (*models.FilterOptions, error) {
	m.optionCalls++
	if m.options == nil {
		return &models.FilterOptions{Departments: []string{}, Companies: []string{}, Years: []int{}}, nil
	}
	return m.options, nil
}

func (m *mockPlacementRepo) Count(ctx context.Context) (int, error) {
	return len(m.placements), nil
}

func (m *mockPlacementRepo) Create(ctx context.Context, placement *models.Placement) error {
	placement.ID = m.nextID
	m.nextID++
	m.placements[placement.ID] = *placement
	return nil
}

func (m *mockPlacementRepo) Update(ctx context.Context, placement *models.Placement) error {
	if _, ok := m.placements[placement.ID]; !ok {
		return sql.ErrNoRows
	}
	m.placements[placement.ID] = *placement
	return nil
}

func (m *mockPlacementRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.placements[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.placements, id)
	return nil
}

func seededRepos() (*mockStudentRepo, *mockCompanyRepo, *mockPlacementRepo) {
	students := newMockStudentRepo(
		models.Student{ID: 1, Name: "John Doe", Roll: "CS001", Department: "Computer Science"},
		models.Student{ID: 2, Name: "Jane Smith", Roll: "EC001", Department: "Electronics"},
	)
	companies := newMockCompanyRepo(
		models.CompanySummary{Company: models.Company{ID: 1, Name: "Tech Corp"}},
		models.CompanySummary{Company: models.Company{ID: 2, Name: "Electro Ltd"}},
	)
	return students, companies, newMockPlacementRepo(students, companies)
}

func TestPlacementServiceSaveConvertsLakhs(t *testing.T) {
	students, companies, repo := seededRepos()
	tracker, activity, cache := newTestTracker()
	svc := NewPlacementService(repo, students, companies, nil, nil, tracker, nil, nil)

	view, created, err := svc.Save(context.Background(), "admin", dto.SavePlacementRequest{
		StudentID: 1, CompanyID: 1, Package: 12.5, Year: 2024, Status: models.PlacementPlaced,
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, int64(1250000), repo.placements[view.ID].Package)
	assert.Equal(t, "₹12.5L", view.PackageDisplay)
	assert.Equal(t, "John Doe", view.Name)
	assert.Equal(t, "Tech Corp", view.Company)
	assert.Equal(t, []string{models.ActivityCreate}, activity.actions())
	assert.Contains(t, activity.entries[0].Description, "John Doe at Tech Corp")
	assert.Equal(t, []string{statsCachePattern}, cache.deleted)
}

func TestPlacementServiceSaveRejectsBadInput(t *testing.T) {
	students, companies, repo := seededRepos()
	svc := NewPlacementService(repo, students, companies, nil, nil, Tracker{}, nil, nil)

	_, _, err := svc.Save(context.Background(), "admin", dto.SavePlacementRequest{StudentID: 1, CompanyID: 1, Package: 3, Year: 2024, Status: "Rejected"})
	require.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Equal(t, "Status must be one of: Placed, Pending", appErrors.FromError(err).Message)

	_, _, err = svc.Save(context.Background(), "admin", dto.SavePlacementRequest{CompanyID: 1, Package: 3, Year: 2024, Status: "Placed"})
	require.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Equal(t, "Student id is required", appErrors.FromError(err).Message)

	_, _, err = svc.Save(context.Background(), "admin", dto.SavePlacementRequest{StudentID: 99, CompanyID: 1, Package: 3, Year: 2024, Status: "Placed"})
	require.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Equal(t, "Student does not exist", appErrors.FromError(err).Message)

	_, _, err = svc.Save(context.Background(), "admin", dto.SavePlacementRequest{ID: 7, StudentID: 1, CompanyID: 2, Package: 3, Year: 2024, Status: "Placed"})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.Empty(t, repo.placements)
}

func TestPlacementServiceListNormalizesAndFlagsEmpty(t *testing.T) {
	students, companies, repo := seededRepos()
	metrics := NewMetricsService()
	svc := NewPlacementService(repo, students, companies, nil, metrics, Tracker{}, nil, nil)

	page, err := svc.List(context.Background(), models.PlacementFilter{Page: 0, PerPage: 500, SortField: "salary"})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.lastFilter.Page)
	assert.Equal(t, models.MaxPerPage, repo.lastFilter.PerPage)
	assert.Equal(t, models.SortByName, repo.lastFilter.SortField)
	assert.True(t, page.Empty)
	assert.Equal(t, dto.EmptyMessage, page.Message)
	assert.NotNil(t, page.Data)
	assert.Equal(t, uint64(1), metrics.Snapshot().DBQueryCount)
}

func TestPlacementServiceListPastLastPage(t *testing.T) {
	students, companies, repo := seededRepos()
	svc := NewPlacementService(repo, students, companies, nil, nil, Tracker{}, nil, nil)
	for i := 0; i < 3; i++ {
		_, _, err := svc.Save(context.Background(), "admin", dto.SavePlacementRequest{StudentID: 1, CompanyID: 1, Package: 5, Year: 2024, Status: "Placed"})
		require.NoError(t, err)
	}

	page, err := svc.List(context.Background(), models.PlacementFilter{Page: 5, PerPage: 2})
	require.NoError(t, err)
	assert.Empty(t, page.Data)
	assert.Equal(t, 3, page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.TotalPages)
	assert.False(t, page.Pagination.HasNext)
}

func TestPlacementServiceFilterOptionsCached(t *testing.T) {
	students, companies, repo := seededRepos()
	repo.options = &models.FilterOptions{Departments: []string{"Computer Science"}, Companies: []string{"Tech Corp"}, Years: []int{2024, 2023}}
	cache := NewCacheService(newMemoryCache(), nil, 0, nil, true)
	svc := NewPlacementService(repo, students, companies, cache, nil, Tracker{}, nil, nil)

	first, hit, err := svc.FilterOptions(context.Background())
	require.NoError(t, err)
	assert.False(t, hit)
	second, hit, err := svc.FilterOptions(context.Background())
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.optionCalls)
}

func TestPlacementServiceDelete(t *testing.T) {
	students, companies, repo := seededRepos()
	svc := NewPlacementService(repo, students, companies, nil, nil, Tracker{}, nil, nil)

	assert.ErrorIs(t, svc.Delete(context.Background(), "admin", 1), appErrors.ErrNotFound)

	repo.err = errors.New("boom")
	_, err := svc.List(context.Background(), models.PlacementFilter{})
	assert.ErrorIs(t, err, appErrors.ErrInternal)
}
