package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "github.com/noah-isme/placement-api/api/swagger"
	"github.com/noah-isme/placement-api/internal/handler"
	"github.com/noah-isme/placement-api/internal/repository"
	"github.com/noah-isme/placement-api/internal/router"
	"github.com/noah-isme/placement-api/internal/service"
	"github.com/noah-isme/placement-api/pkg/cache"
	"github.com/noah-isme/placement-api/pkg/config"
	"github.com/noah-isme/placement-api/pkg/database"
	"github.com/noah-isme/placement-api/pkg/logger"
)

// @title Placement Records API
// @version 1.0.0
// @description Students, partner companies, placement outcomes and analytics
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if err := run(cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	ctx := context.Background()

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	logr.Info("database ready", zap.String("driver", cfg.Database.Driver))

	metrics := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if cfg.Cache.Enabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, running without cache", zap.Error(err))
		} else {
			redisRepo := repository.NewCacheRepository(client, "placement:")
			defer redisRepo.Close() //nolint:errcheck
			cacheRepo = redisRepo
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logr, cacheRepo != nil)

	validate := service.NewValidator()

	studentRepo := repository.NewStudentRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	placementRepo := repository.NewPlacementRepository(db)
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	activitySvc := service.NewActivityService(activityRepo, logr)
	tracker := service.NewTracker(activitySvc, cacheSvc, metrics)

	studentSvc := service.NewStudentService(studentRepo, tracker, validate, logr)
	companySvc := service.NewCompanyService(companyRepo, tracker, validate, logr)
	placementSvc := service.NewPlacementService(placementRepo, studentRepo, companyRepo, cacheSvc, metrics, tracker, validate, logr)
	userSvc := service.NewUserService(userRepo, tracker, validate, logr)
	statsSvc := service.NewStatsService(statsRepo, cacheSvc, metrics, logr)
	exportSvc := service.NewExportService(placementSvc, logr)
	importSvc := service.NewImportService(placementRepo, studentRepo, companyRepo, tracker, validate, logr)
	authSvc := service.NewAuthService(userRepo, sessionRepo, activitySvc, metrics, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	seeder := service.NewSeedService(studentRepo, companyRepo, placementRepo, userRepo, service.SeedConfig{
		DemoData:      cfg.Seed.DemoData,
		AdminUsername: cfg.Seed.AdminUsername,
		AdminEmail:    cfg.Seed.AdminEmail,
		AdminPassword: cfg.Seed.AdminDefaultPassword,
	}, logr)
	if err := seeder.Run(ctx); err != nil {
		return fmt.Errorf("seed database: %w", err)
	}

	cookie := handler.SessionCookie{
		Name:   cfg.Session.CookieName,
		Secure: cfg.Session.CookieSecure,
		MaxAge: cfg.JWT.Expiration,
	}
	engine := router.New(cfg, logr, authSvc, metrics, router.Handlers{
		Auth:       handler.NewAuthHandler(authSvc, cookie),
		Placements: handler.NewPlacementHandler(placementSvc, exportSvc, importSvc),
		Companies:  handler.NewCompanyHandler(companySvc),
		Students:   handler.NewStudentHandler(studentSvc),
		Users:      handler.NewUserHandler(userSvc),
		Activity:   handler.NewActivityHandler(activitySvc),
		Dashboard:  handler.NewDashboardHandler(statsSvc),
		Metrics:    handler.NewMetricsHandler(metrics, db),
		Action: handler.NewActionHandler(handler.ActionServices{
			Auth:       authSvc,
			Placements: placementSvc,
			Companies:  companySvc,
			Students:   studentSvc,
			Users:      userSvc,
			Stats:      statsSvc,
		}, cookie),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		serverErrors <- srv.ListenAndServe()
	}()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case sig := <-signals:
		logr.Info("shutdown signal received", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	logr.Info("server stopped")
	return nil
}
