package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/placement-api/internal/models"
)

type seedStudentStore interface {
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, student *models.Student) error
	FindByRoll(ctx context.Context, roll string) (*models.Student, error)
}

type seedCompanyStore interface {
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, company *models.Company) error
	FindByName(ctx context.Context, name string) (*models.Company, error)
}

type seedPlacementStore interface {
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, placement *models.Placement) error
}

type seedUserStore interface {
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, user *models.AdminUser) error
}

// SeedConfig controls first-run data.
type SeedConfig struct {
	DemoData      bool
	AdminUsername string
	AdminEmail    string
	AdminPassword string
}

type seedPlacement struct {
	roll    string
	company string
	amount  int64
	year    int
	status  string
}

var (
	demoStudents = []models.Student{
		{Name: "John Doe", Roll: "CS001", Department: "Computer Science", Email: "john@example.com", Status: models.StudentStatusActive},
		{Name: "Jane Smith", Roll: "EC001", Department: "Electronics", Email: "jane@example.com", Status: models.StudentStatusActive},
		{Name: "Mike Johnson", Roll: "ME001", Department: "Mechanical", Email: "mike@example.com", Status: models.StudentStatusActive},
	}
	demoCompanies = []models.Company{
		{Name: "Tech Corp", Sector: "IT", Website: "https://techcorp.com", Logo: "assets/images/logo.svg"},
		{Name: "Electro Ltd", Sector: "Electronics", Website: "https://electro.com", Logo: "assets/images/logo.svg"},
		{Name: "Mech Solutions", Sector: "Manufacturing", Website: "https://mechsol.com", Logo: "assets/images/logo.svg"},
	}
	demoPlacements = []seedPlacement{
		{roll: "CS001", company: "Tech Corp", amount: 1200000, year: 2024, status: models.PlacementPlaced},
		{roll: "EC001", company: "Electro Ltd", amount: 900000, year: 2024, status: models.PlacementPlaced},
		{roll: "ME001", company: "Mech Solutions", amount: 800000, year: 2024, status: models.PlacementPending},
	}
)

// SeedService populates empty tables on startup. Each table is seeded only
// when it has no rows, so restarts never duplicate data.
type SeedService struct {
	students   seedStudentStore
	companies  seedCompanyStore
	placements seedPlacementStore
	users      seedUserStore
	cfg        SeedConfig
	logger     *zap.Logger
	cost       int
}

// NewSeedService constructs a SeedService.
func NewSeedService(students seedStudentStore, companies seedCompanyStore, placements seedPlacementStore, users seedUserStore, cfg SeedConfig, logger *zap.Logger) *SeedService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.AdminUsername == "" {
		cfg.AdminUsername = "admin"
	}
	return &SeedService{students: students, companies: companies, placements: placements, users: users, cfg: cfg, logger: logger, cost: bcrypt.DefaultCost}
}

// Run seeds the admin account and, when enabled, the demo dataset.
func (s *SeedService) Run(ctx context.Context) error {
	if err := s.seedAdmin(ctx); err != nil {
		return err
	}
	if !s.cfg.DemoData {
		return nil
	}
	if err := s.seedStudents(ctx); err != nil {
		return err
	}
	if err := s.seedCompanies(ctx); err != nil {
		return err
	}
	return s.seedPlacements(ctx)
}

func (s *SeedService) seedAdmin(ctx context.Context) error {
	n, err := s.users.Count(ctx)
	if err != nil || n > 0 {
		return err
	}
	if s.cfg.AdminPassword == "" {
		return fmt.Errorf("seed admin: default password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(s.cfg.AdminPassword), s.cost)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	user := &models.AdminUser{
		Username:     s.cfg.AdminUsername,
		PasswordHash: string(hash),
		Email:        s.cfg.AdminEmail,
		Role:         models.RoleAdmin,
		Status:       models.UserStatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	s.logger.Info("seeded admin account", zap.String("username", user.Username))
	return nil
}

func (s *SeedService) seedStudents(ctx context.Context) error {
	n, err := s.students.Count(ctx)
	if err != nil || n > 0 {
		return err
	}
	for _, student := range demoStudents {
		student := student
		if err := s.students.Create(ctx, &student); err != nil {
			return fmt.Errorf("seed students: %w", err)
		}
	}
	s.logger.Info("seeded students", zap.Int("count", len(demoStudents)))
	return nil
}

func (s *SeedService) seedCompanies(ctx context.Context) error {
	n, err := s.companies.Count(ctx)
	if err != nil || n > 0 {
		return err
	}
	for _, company := range demoCompanies {
		company := company
		if err := s.companies.Create(ctx, &company); err != nil {
			return fmt.Errorf("seed companies: %w", err)
		}
	}
	s.logger.Info("seeded companies", zap.Int("count", len(demoCompanies)))
	return nil
}

// seedPlacements resolves references by roll and company name so it works
// against whatever ids the store assigned.
func (s *SeedService) seedPlacements(ctx context.Context) error {
	n, err := s.placements.Count(ctx)
	if err != nil || n > 0 {
		return err
	}
	seeded := 0
	for _, p := range demoPlacements {
		student, err := s.students.FindByRoll(ctx, p.roll)
		if err != nil {
			s.logger.Warn("skip seed placement", zap.String("roll", p.roll), zap.Error(err))
			continue
		}
		company, err := s.companies.FindByName(ctx, p.company)
		if err != nil {
			s.logger.Warn("skip seed placement", zap.String("company", p.company), zap.Error(err))
			continue
		}
		placement := &models.Placement{StudentID: student.ID, CompanyID: company.ID, Package: p.amount, Year: p.year, Status: p.status}
		if err := s.placements.Create(ctx, placement); err != nil {
			return fmt.Errorf("seed placements: %w", err)
		}
		seeded++
	}
	s.logger.Info("seeded placements", zap.Int("count", seeded))
	return nil
}
