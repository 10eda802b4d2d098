package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/placement-api/internal/dto"
	"github.com/noah-isme/placement-api/internal/models"
	appErrors "github.com/noah-isme/placement-api/pkg/errors"
)

type mockUserRepo struct {
	users      map[int64]models.AdminUser
	nextID     int64
	lastLogins map[int64]time.Time
	deleted    []int64
}

func newMockUserRepo(users ...models.AdminUser) *mockUserRepo {
	m := &mockUserRepo{users: map[int64]models.AdminUser{}, nextID: 1, lastLogins: map[int64]time.Time{}}
	for _, u := range users {
		m.users[u.ID] = u
		if u.ID >= m.nextID {
			m.nextID = u.ID + 1
		}
	}
	return m
}

func (m *mockUserRepo) List(ctx context.Context) ([]models.AdminUser, error) {
	out := make([]models.AdminUser, 0, len(m.users))
	for _, u := range m.users {
		u.PasswordHash = ""
		out = append(out, u)
	}
	return out, nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id int64) (*models.AdminUser, error) {
	if u, ok := m.users[id]; ok {
		return &u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (*models.AdminUser, error) {
	for _, u := range m.users {
		if u.Username == username {
			found := u
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) ExistsByUsername(ctx context.Context, username string, excludeID int64) (bool, error) {
	for _, u := range m.users {
		if u.Username == username && u.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepo) Count(ctx context.Context) (int, error) {
	return len(m.users), nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.AdminUser) error {
	user.ID = m.nextID
	m.nextID++
	m.users[user.ID] = *user
	return nil
}

func (m *mockUserRepo) Update(ctx context.Context, user *models.AdminUser) error {
	if _, ok := m.users[user.ID]; !ok {
		return sql.ErrNoRows
	}
	m.users[user.ID] = *user
	return nil
}

func (m *mockUserRepo) UpdateLastLogin(ctx context.Context, id int64, ts time.Time) error {
	m.lastLogins[id] = ts
	return nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.users[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.users, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func newTestUserService(repo *mockUserRepo) *UserService {
	svc := NewUserService(repo, Tracker{}, nil, nil)
	svc.cost = bcrypt.MinCost
	return svc
}

func TestUserServiceCreateHashesPassword(t *testing.T) {
	repo := newMockUserRepo()
	svc := newTestUserService(repo)

	view, created, err := svc.Save(context.Background(), "admin", dto.SaveUserRequest{Username: "editor1", Password: "secret1", Email: "e@example.com"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.RoleAdmin, view.Role)
	assert.Equal(t, models.UserStatusActive, view.Status)

	stored := repo.users[view.ID]
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret1")))
}

func TestUserServiceUpdateKeepsPasswordWhenBlank(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := newMockUserRepo(models.AdminUser{ID: 1, Username: "admin", PasswordHash: string(hash), Role: models.RoleAdmin, Status: models.UserStatusActive})
	svc := newTestUserService(repo)

	_, created, err := svc.Save(context.Background(), "admin", dto.SaveUserRequest{ID: 1, Username: "admin", Email: "new@example.com", Status: models.UserStatusInactive})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, string(hash), repo.users[1].PasswordHash)
	assert.Equal(t, models.UserStatusInactive, repo.users[1].Status)
	assert.Equal(t, models.RoleAdmin, repo.users[1].Role)
}

func TestUserServiceValidation(t *testing.T) {
	repo := newMockUserRepo(models.AdminUser{ID: 1, Username: "admin"})
	svc := newTestUserService(repo)

	_, _, err := svc.Save(context.Background(), "admin", dto.SaveUserRequest{Password: "secret1"})
	require.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Equal(t, "Username is required", appErrors.FromError(err).Message)

	_, _, err = svc.Save(context.Background(), "admin", dto.SaveUserRequest{Username: "someone"})
	require.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Equal(t, "Password is required", appErrors.FromError(err).Message)

	_, _, err = svc.Save(context.Background(), "admin", dto.SaveUserRequest{Username: "admin", Password: "secret1"})
	assert.ErrorIs(t, err, appErrors.ErrConflict)

	_, _, err = svc.Save(context.Background(), "admin", dto.SaveUserRequest{ID: 9, Username: "ghost"})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestUserServiceDelete(t *testing.T) {
	repo := newMockUserRepo(
		models.AdminUser{ID: 1, Username: "admin"},
		models.AdminUser{ID: 2, Username: "editor1"},
	)
	svc := newTestUserService(repo)

	assert.ErrorIs(t, svc.Delete(context.Background(), "admin", 1), appErrors.ErrConflict)
	require.NoError(t, svc.Delete(context.Background(), "admin", 2))
	assert.Equal(t, []int64{2}, repo.deleted)
	assert.ErrorIs(t, svc.Delete(context.Background(), "admin", 2), appErrors.ErrNotFound)
}

func TestUserServiceListOmitsHashes(t *testing.T) {
	repo := newMockUserRepo(models.AdminUser{ID: 1, Username: "admin", PasswordHash: "x"})
	views, err := newTestUserService(repo).List(context.Background())
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "admin", views[0].Username)
}
