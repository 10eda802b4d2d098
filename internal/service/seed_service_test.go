package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/placement-api/internal/models"
)

func TestSeedServicePopulatesEmptyStore(t *testing.T) {
	students := newMockStudentRepo()
	companies := newMockCompanyRepo()
	placements := newMockPlacementRepo(students, companies)
	users := newMockUserRepo()
	svc := NewSeedService(students, companies, placements, users, SeedConfig{DemoData: true, AdminEmail: "admin@example.com", AdminPassword: "admin123"}, nil)
	svc.cost = bcrypt.MinCost

	require.NoError(t, svc.Run(context.Background()))
	assert.Len(t, students.students, 3)
	assert.Len(t, companies.companies, 3)
	require.Len(t, placements.placements, 3)
	require.Len(t, users.users, 1)

	admin := users.users[1]
	assert.Equal(t, "admin", admin.Username)
	assert.True(t, admin.IsActive())
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("admin123")))

	views := placements.all()
	assert.Equal(t, "John Doe", views[0].StudentName)
	assert.Equal(t, "Tech Corp", views[0].CompanyName)
	assert.Equal(t, int64(1200000), views[0].Package)
	assert.Equal(t, models.PlacementPending, views[2].Status)

	// A second run is a no-op.
	require.NoError(t, svc.Run(context.Background()))
	assert.Len(t, students.students, 3)
	assert.Len(t, placements.placements, 3)
	assert.Len(t, users.users, 1)
}

func TestSeedServiceKeepsExistingRows(t *testing.T) {
	students := newMockStudentRepo(models.Student{ID: 1, Name: "Existing", Roll: "X1", Department: "Mechanical"})
	companies := newMockCompanyRepo()
	placements := newMockPlacementRepo(students, companies)
	users := newMockUserRepo(models.AdminUser{ID: 1, Username: "root"})
	svc := NewSeedService(students, companies, placements, users, SeedConfig{DemoData: true, AdminPassword: "admin123"}, nil)

	require.NoError(t, svc.Run(context.Background()))
	assert.Len(t, students.students, 1)
	assert.Len(t, companies.companies, 3)
	assert.Empty(t, placements.placements, "seed rolls are missing so no placement can be resolved")
	assert.Len(t, users.users, 1)
}

func TestSeedServiceAdminOnly(t *testing.T) {
	students := newMockStudentRepo()
	companies := newMockCompanyRepo()
	users := newMockUserRepo()
	svc := NewSeedService(students, companies, newMockPlacementRepo(students, companies), users, SeedConfig{AdminUsername: "ops", AdminPassword: "pw123456"}, nil)
	svc.cost = bcrypt.MinCost

	require.NoError(t, svc.Run(context.Background()))
	assert.Empty(t, students.students)
	assert.Equal(t, "ops", users.users[1].Username)
}
