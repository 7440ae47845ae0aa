package routes

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/infra/config"
	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/infra/security"
	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/infra/telemetry"
	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/transport/http/handlers"
	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/transport/http/middleware"
	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Permissions *usecase.PermissionService
	Claims      *usecase.ClaimsService
	Promotions  *usecase.PromotionService
	Roles       *usecase.RoleService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config   *config.AppConfig
	Logger   *zap.Logger
	Services ServiceSet
	Verifier *security.TokenVerifier
	Metrics  *middleware.HTTPMetrics
	Outcomes *telemetry.Provider
	Database DatabaseChecker
	Cache    CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler())
	}

	authMiddleware := middleware.RequireAuth(deps.Verifier)

	healthOptions := make([]handlers.HealthOption, 0, 2)
	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}
	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Cache.HealthCheck))
	}

	healthHandler := handlers.NewHealthHandler(healthOptions...)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		if deps.Services.Permissions != nil {
			accessGroup := api.Group("")
			accessGroup.Use(authMiddleware)
			accessHandler := handlers.NewAccessHandler(deps.Services.Permissions)
			accessHandler.RegisterRoutes(accessGroup)
		}

		if deps.Services.Claims != nil {
			claimsGroup := api.Group("")
			claimsGroup.Use(authMiddleware)
			claimsHandler := handlers.NewClaimsHandler(deps.Services.Claims, deps.Outcomes)
			claimsHandler.RegisterRoutes(claimsGroup)
		}

		if deps.Services.Promotions != nil {
			promotionGroup := api.Group("")
			promotionGroup.Use(authMiddleware)
			promotionHandler := handlers.NewPromotionHandler(deps.Services.Promotions, deps.Outcomes)
			promotionHandler.RegisterRoutes(promotionGroup)
		}

		if deps.Services.Roles != nil {
			rolesGroup := api.Group("/roles")
			rolesGroup.Use(authMiddleware)
			roleHandler := handlers.NewRoleHandler(deps.Services.Roles)
			roleHandler.RegisterRoutes(rolesGroup)
		}
	}

	return r
}
