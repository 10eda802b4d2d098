package router

import (
	"context"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/placement-api/internal/handler"
	"github.com/noah-isme/placement-api/internal/middleware"
	"github.com/noah-isme/placement-api/internal/models"
	"github.com/noah-isme/placement-api/internal/service"
	"github.com/noah-isme/placement-api/pkg/config"
	"github.com/noah-isme/placement-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/placement-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/placement-api/pkg/middleware/requestid"
)

// Authenticator resolves session tokens for the session middleware.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.Identity, error)
}

// Handlers groups every HTTP handler mounted by the router.
type Handlers struct {
	Auth       *handler.AuthHandler
	Placements *handler.PlacementHandler
	Companies  *handler.CompanyHandler
	Students   *handler.StudentHandler
	Users      *handler.UserHandler
	Activity   *handler.ActivityHandler
	Dashboard  *handler.DashboardHandler
	Metrics    *handler.MetricsHandler
	Action     *handler.ActionHandler
}

// New builds the gin engine with the middleware chain and the route table.
func New(cfg *config.Config, logr *zap.Logger, auth Authenticator, metrics *service.MetricsService, h Handlers) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, "/health", "/ready", "/metrics"))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.WithResponseMeta())
	r.Use(middleware.Session(auth, cfg.Session.CookieName))

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r.POST("/api/action", h.Action.Dispatch)

	api := r.Group(cfg.APIPrefix)
	admin := middleware.RequireAdmin()

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/logout", h.Auth.Logout)
		authGroup.GET("/me", admin, h.Auth.Me)
	}

	placements := api.Group("/placements")
	{
		placements.GET("", h.Placements.List)
		placements.GET("/filters", h.Placements.Filters)
		placements.GET("/export", h.Placements.Export)
		placements.POST("", admin, h.Placements.Create)
		placements.POST("/import", admin, h.Placements.Import)
		placements.PUT("/:id", admin, h.Placements.Update)
		placements.DELETE("/:id", admin, h.Placements.Delete)
	}

	companies := api.Group("/companies")
	{
		companies.GET("", h.Companies.List)
		companies.GET("/:id", h.Companies.Get)
		companies.POST("", admin, h.Companies.Create)
		companies.PUT("/:id", admin, h.Companies.Update)
		companies.DELETE("/:id", admin, h.Companies.Delete)
	}

	api.GET("/dashboard/stats", h.Dashboard.Stats)
	api.GET("/analytics", h.Dashboard.Analytics)

	protected := api.Group("")
	protected.Use(admin)
	{
		students := protected.Group("/students")
		students.GET("", h.Students.List)
		students.GET("/:id", h.Students.Get)
		students.POST("", h.Students.Create)
		students.PUT("/:id", h.Students.Update)
		students.DELETE("/:id", h.Students.Delete)

		users := protected.Group("/users")
		users.GET("", h.Users.List)
		users.POST("", h.Users.Create)
		users.PUT("/:id", h.Users.Update)
		users.DELETE("/:id", h.Users.Delete)

		protected.GET("/activity", h.Activity.List)
		protected.GET("/system/metrics", h.Metrics.System)
	}

	return r
}
