package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/core/port"
	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/infra/config"
	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/infra/database"
	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/infra/identity"
	kafkainfra "github.com/VeloF2025/Life-Arrow-V1-sub001/internal/infra/kafka"
	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/infra/logger"
	redisinfra "github.com/VeloF2025/Life-Arrow-V1-sub001/internal/infra/redis"
	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/infra/security"
	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/infra/telemetry"
	postgresrepo "github.com/VeloF2025/Life-Arrow-V1-sub001/internal/repository/postgres"
	redisrepo "github.com/VeloF2025/Life-Arrow-V1-sub001/internal/repository/redis"
	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/transport/http/middleware"
	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/transport/http/routes"
	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/usecase"
)

type Application struct {
	cfg    *config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
	pool   *pgxpool.Pool
	redis  *redisinfra.Client
	tracer *telemetry.TracerProvider
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	outcomes, err := telemetry.Attach(nil)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	var tracer *telemetry.TracerProvider
	if cfg.Telemetry.OTLPEndpoint != "" {
		tracer, err = telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
		if err != nil {
			return nil, fmt.Errorf("init tracing: %w", err)
		}
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		return nil, fmt.Errorf("init redis: %w", err)
	}

	verifier, err := security.NewTokenVerifier(cfg.JWT.Secret, cfg.JWT.Issuer)
	if err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("init token verifier: %w", err)
	}

	repos := postgresrepo.NewRepositories(pool)
	claimsMirror := redisrepo.NewClaimsMirrorRepository(redisClient.Client(), cfg.Redis.ClaimsPrefix)
	identityClient := identity.NewClient(cfg.Identity, log)

	var eventPublisher port.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaProducer, err := kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			eventPublisher = kafkainfra.NewStubPublisher(log)
		} else {
			eventPublisher = kafkainfra.NewEventPublisher(kafkaProducer, cfg.App, log)
			log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		eventPublisher = kafkainfra.NewStubPublisher(log)
	}

	if err := usecase.SeedSystemRoles(ctx, repos.Roles, log); err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("seed system roles: %w", err)
	}

	permissionService := usecase.NewPermissionService(repos.Users, repos.Roles)
	claimsService := usecase.NewClaimsService(repos.Users, repos.Roles, claimsMirror, identityClient, eventPublisher, log).
		WithBatchTuning(cfg.Sync.ChunkSize, cfg.Sync.ChunkDelay)
	promotionService := usecase.NewPromotionService(repos.Users, permissionService, identityClient, eventPublisher, log)
	roleService := usecase.NewRoleService(repos.Roles, repos.Users, permissionService, eventPublisher, log).
		WithClaimsService(claimsService)

	metrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{})
	if err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	engine := routes.Register(routes.Dependencies{
		Config:   cfg,
		Logger:   log,
		Verifier: verifier,
		Metrics:  metrics,
		Outcomes: outcomes,
		Database: pool,
		Cache:    redisClient,
		Services: routes.ServiceSet{
			Permissions: permissionService,
			Claims:      claimsService,
			Promotions:  promotionService,
			Roles:       roleService,
		},
	})

	return &Application{
		cfg:    cfg,
		engine: engine,
		logger: log,
		pool:   pool,
		redis:  redisClient,
		tracer: tracer,
	}, nil
}

func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()
	defer func() {
		if a.tracer != nil {
			if err := a.tracer.Shutdown(context.Background()); err != nil {
				a.logger.Warn("tracer shutdown failed", zap.Error(err))
			}
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting access API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}
