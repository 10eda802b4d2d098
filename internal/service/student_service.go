package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/placement-api/internal/dto"
	"github.com/noah-isme/placement-api/internal/models"
	appErrors "github.com/noah-isme/placement-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context) ([]models.Student, error)
	FindByID(ctx context.Context, id int64) (*models.Student, error)
	ExistsByRoll(ctx context.Context, roll string, excludeID int64) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id int64) error
}

// StudentService handles student use-cases.
type StudentService struct {
	validated
	repo    studentRepository
	tracker Tracker
	logger  *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, tracker Tracker, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{validated: newValidated(validate), repo: repo, tracker: tracker, logger: logger}
}

// List returns every student ordered by name.
func (s *StudentService) List(ctx context.Context) ([]models.Student, error) {
	students, err := s.repo.List(ctx)
	if err != nil {
		return nil, storeError(s.logger, "list students", err)
	}
	return students, nil
}

// Get returns a student by id.
func (s *StudentService) Get(ctx context.Context, id int64) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(s.logger, "get student", err)
	}
	return student, nil
}

// Save creates the student when req.ID is zero and replaces it otherwise.
// The returned flag reports whether a new record was created.
func (s *StudentService) Save(ctx context.Context, actor string, req dto.SaveStudentRequest) (*models.Student, bool, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Roll = strings.TrimSpace(req.Roll)
	req.Department = strings.TrimSpace(req.Department)
	if err := s.check(req); err != nil {
		return nil, false, err
	}

	exists, err := s.repo.ExistsByRoll(ctx, req.Roll, req.ID)
	if err != nil {
		return nil, false, storeError(s.logger, "check student roll", err)
	}
	if exists {
		return nil, false, appErrors.Clone(appErrors.ErrConflict, "roll already exists")
	}

	student := &models.Student{
		ID:         req.ID,
		Name:       req.Name,
		Roll:       req.Roll,
		Department: req.Department,
		Email:      strings.TrimSpace(req.Email),
		Phone:      strings.TrimSpace(req.Phone),
		Status:     strings.TrimSpace(req.Status),
	}
	if student.Status == "" {
		student.Status = models.StudentStatusActive
	}

	if student.ID == 0 {
		if err := s.repo.Create(ctx, student); err != nil {
			return nil, false, storeError(s.logger, "create student", err)
		}
		s.tracker.Changed(ctx, actor, dto.KindStudent, models.ActivityCreate, fmt.Sprintf("Created student %s (%s)", student.Name, student.Roll))
		return student, true, nil
	}

	if err := s.repo.Update(ctx, student); err != nil {
		return nil, false, storeError(s.logger, "update student", err)
	}
	s.tracker.Changed(ctx, actor, dto.KindStudent, models.ActivityUpdate, fmt.Sprintf("Updated student %s (%s)", student.Name, student.Roll))
	return student, false, nil
}

// Delete removes a student and every placement referencing it.
func (s *StudentService) Delete(ctx context.Context, actor string, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeError(s.logger, "delete student", err)
	}
	s.tracker.Changed(ctx, actor, dto.KindStudent, models.ActivityDelete, fmt.Sprintf("Deleted student #%d", id))
	return nil
}
