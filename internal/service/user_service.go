package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/placement-api/internal/dto"
	"github.com/noah-isme/placement-api/internal/models"
	appErrors "github.com/noah-isme/placement-api/pkg/errors"
)

type userRepository interface {
	List(ctx context.Context) ([]models.AdminUser, error)
	FindByID(ctx context.Context, id int64) (*models.AdminUser, error)
	ExistsByUsername(ctx context.Context, username string, excludeID int64) (bool, error)
	Create(ctx context.Context, user *models.AdminUser) error
	Update(ctx context.Context, user *models.AdminUser) error
	Delete(ctx context.Context, id int64) error
}

// UserService manages admin accounts.
type UserService struct {
	validated
	repo    userRepository
	tracker Tracker
	logger  *zap.Logger
	cost    int
}

// NewUserService constructs the user service.
func NewUserService(repo userRepository, tracker Tracker, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{validated: newValidated(validate), repo: repo, tracker: tracker, logger: logger, cost: bcrypt.DefaultCost}
}

// List returns accounts without credentials.
func (s *UserService) List(ctx context.Context) ([]dto.UserView, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, storeError(s.logger, "list users", err)
	}
	return dto.NewUserViews(users), nil
}

// Save creates the account when req.ID is zero and replaces it otherwise. A
// blank password on update keeps the stored hash.
func (s *UserService) Save(ctx context.Context, actor string, req dto.SaveUserRequest) (*dto.UserView, bool, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := s.check(req); err != nil {
		return nil, false, err
	}
	if req.ID == 0 && req.Password == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "Password is required")
	}

	exists, err := s.repo.ExistsByUsername(ctx, req.Username, req.ID)
	if err != nil {
		return nil, false, storeError(s.logger, "check username", err)
	}
	if exists {
		return nil, false, appErrors.Clone(appErrors.ErrConflict, "username already exists")
	}

	user := &models.AdminUser{ID: req.ID}
	if req.ID != 0 {
		existing, err := s.repo.FindByID(ctx, req.ID)
		if err != nil {
			return nil, false, storeError(s.logger, "find user", err)
		}
		user = existing
	}
	user.Username = req.Username
	user.Email = strings.TrimSpace(req.Email)
	user.Role = valueOr(req.Role, valueOr(user.Role, models.RoleAdmin))
	user.Status = valueOr(req.Status, valueOr(user.Status, models.UserStatusActive))
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
		if err != nil {
			return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
		}
		user.PasswordHash = string(hash)
	}

	if user.ID == 0 {
		if err := s.repo.Create(ctx, user); err != nil {
			return nil, false, storeError(s.logger, "create user", err)
		}
		s.tracker.Changed(ctx, actor, dto.KindUser, models.ActivityCreate, "Created user "+user.Username)
		view := dto.NewUserView(*user)
		return &view, true, nil
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, false, storeError(s.logger, "update user", err)
	}
	s.tracker.Changed(ctx, actor, dto.KindUser, models.ActivityUpdate, "Updated user "+user.Username)
	view := dto.NewUserView(*user)
	return &view, false, nil
}

// Delete removes an account and its sessions. Callers cannot delete the
// account they are signed in with.
func (s *UserService) Delete(ctx context.Context, actor string, id int64) error {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return storeError(s.logger, "find user", err)
	}
	if user.Username == actor {
		return appErrors.Clone(appErrors.ErrConflict, "cannot delete the signed-in account")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeError(s.logger, "delete user", err)
	}
	s.tracker.Changed(ctx, actor, dto.KindUser, models.ActivityDelete, fmt.Sprintf("Deleted user %s", user.Username))
	return nil
}

func valueOr(v, fallback string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return fallback
}
