package repository

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/placement-api/internal/models"
	"github.com/noah-isme/placement-api/pkg/config"
	"github.com/noah-isme/placement-api/pkg/database"
)

func newSQLiteStore(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.Open(context.Background(), config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "placements.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seedPlacements(t *testing.T, db *sqlx.DB) {
	t.Helper()
	ctx := context.Background()
	students := NewStudentRepository(db)
	companies := NewCompanyRepository(db)
	placements := NewPlacementRepository(db)

	rows := []struct {
		name, roll, company string
		amount              int64
	}{
		{"Asha Rao", "CS001", "Tech Corp", 1250000},
		{"Ben_Ito", "EC002", "Electro Ltd", 450000},
		{"Chen Li", "ME003", "Mech Works", 800000},
		{"Dev Patel", "CS004", "Tech Corp", 1500000},
	}
	companyIDs := map[string]int64{}
	for _, row := range rows {
		student := &models.Student{Name: row.name, Roll: row.roll, Department: "Computer Science", Status: "Active"}
		require.NoError(t, students.Create(ctx, student))
		if _, ok := companyIDs[row.company]; !ok {
			company := &models.Company{Name: row.company}
			require.NoError(t, companies.Create(ctx, company))
			companyIDs[row.company] = company.ID
		}
		require.NoError(t, placements.Create(ctx, &models.Placement{
			StudentID: student.ID, CompanyID: companyIDs[row.company], Package: row.amount, Year: 2024, Status: "Placed",
		}))
	}
}

func placementIDs(items []models.PlacementView) []int64 {
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ids
}

func TestPlacementRepositoryPackageOrderReverses(t *testing.T) {
	db := newSQLiteStore(t)
	seedPlacements(t, db)
	repo := NewPlacementRepository(db)
	ctx := context.Background()

	desc, total, err := repo.List(ctx, models.PlacementFilter{SortField: "package", SortDirection: "desc"})
	require.NoError(t, err)
	require.Equal(t, 4, total)
	asc, _, err := repo.List(ctx, models.PlacementFilter{SortField: "package", SortDirection: "asc"})
	require.NoError(t, err)

	descIDs := placementIDs(desc)
	ascIDs := placementIDs(asc)
	require.Len(t, ascIDs, len(descIDs))
	for i := range descIDs {
		assert.Equal(t, descIDs[i], ascIDs[len(ascIDs)-1-i])
	}
	assert.Equal(t, int64(1500000), desc[0].Package)
	assert.Equal(t, int64(450000), asc[0].Package)
}

func TestPlacementRepositoryHugePageIsEmpty(t *testing.T) {
	db := newSQLiteStore(t)
	seedPlacements(t, db)
	repo := NewPlacementRepository(db)

	items, total, err := repo.List(context.Background(), models.PlacementFilter{Page: math.MaxInt, PerPage: 10})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.Empty(t, items)
}

func TestPlacementRepositorySearchTreatsWildcardsLiterally(t *testing.T) {
	db := newSQLiteStore(t)
	seedPlacements(t, db)
	repo := NewPlacementRepository(db)
	ctx := context.Background()

	items, total, err := repo.List(ctx, models.PlacementFilter{Search: "_"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "Ben_Ito", items[0].StudentName)

	_, total, err = repo.List(ctx, models.PlacementFilter{Search: "%"})
	require.NoError(t, err)
	assert.Zero(t, total)

	_, total, err = repo.List(ctx, models.PlacementFilter{Search: "tech"})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}
