package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/admissions-crm/internal/access"
	httptransport "github.com/spec-kit/admissions-crm/internal/api/http"
	"github.com/spec-kit/admissions-crm/internal/api/http/handlers"
	"github.com/spec-kit/admissions-crm/internal/auth"
	"github.com/spec-kit/admissions-crm/internal/config"
	"github.com/spec-kit/admissions-crm/internal/events"
	"github.com/spec-kit/admissions-crm/internal/observability"
	"github.com/spec-kit/admissions-crm/internal/persistence"
	"github.com/spec-kit/admissions-crm/internal/repository"
	"github.com/spec-kit/admissions-crm/internal/service"
	"github.com/spec-kit/admissions-crm/internal/worker"
)

type repositories struct {
	users      repository.UserRepository
	leads      repository.LeadRepository
	activities repository.LeadActivityRepository
	courses    repository.CourseRepository
	filters    repository.SavedFilterRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	metrics := observability.NewMetrics()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if !cfg.Postgres.LocalMode() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	repos := buildRepositories(cfg, pg, redis)

	resolver := access.NewResolver(access.VisibilityConfig{ManagerSeesAll: cfg.Visibility.ManagerSeesAll})
	dispatcher := events.NewInMemoryDispatcher()
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:     repos.users,
		TokenManager: tokens,
		Logger:       logger,
	})
	userService := service.NewUserService(*cfg, service.UserDependencies{
		UserRepo:   repos.users,
		Resolver:   resolver,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	leadService := service.NewLeadService(*cfg, service.LeadDependencies{
		LeadRepo:     repos.leads,
		UserRepo:     repos.users,
		ActivityRepo: repos.activities,
		Resolver:     resolver,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		LeadRepo:     repos.leads,
		UserRepo:     repos.users,
		ActivityRepo: repos.activities,
		Resolver:     resolver,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	courseService := service.NewCourseService(repos.courses)
	filterService := service.NewSavedFilterService(repos.filters)
	reportService := service.NewReportService(leadService)

	worker.StartNotificationWorker(service.NewNotificationService(dispatcher, logger, metrics, cfg.Notification), logger)

	if cfg.Auth.DemoAdminEmail != "" {
		if _, err := authService.EnsureDemoAdmin(ctx, cfg.Auth.DemoAdminEmail, cfg.Auth.DemoAdminPassword); err != nil {
			logger.Fatal("failed to seed demo admin", zap.Error(err))
		}
	}

	if cfg.FollowUp.Enabled {
		followUps := worker.NewFollowUpWorker(cfg.FollowUp, leadService, dispatcher, metrics, logger)
		go followUps.Run(ctx)
	}

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Users:          handlers.NewUsersHandler(userService),
		Leads:          handlers.NewLeadsHandler(leadService, assignmentService, filterService),
		Filters:        handlers.NewFiltersHandler(filterService),
		Courses:        handlers.NewCoursesHandler(courseService),
		Reports:        handlers.NewReportsHandler(reportService),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, repos.users),
		Metrics:        metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = app.Shutdown()
}

// buildRepositories selects Postgres-backed stores, or in-memory ones in local
// mode. Saved filters live in Redis whenever it is configured.
func buildRepositories(cfg *config.Config, pg *persistence.Postgres, redis *persistence.Redis) repositories {
	var repos repositories
	if cfg.Postgres.LocalMode() {
		repos = repositories{
			users:      repository.NewMemoryUserRepository(),
			leads:      repository.NewMemoryLeadRepository(),
			activities: repository.NewMemoryLeadActivityRepository(),
			courses:    repository.NewMemoryCourseRepository(),
		}
	} else {
		pool := pg.PoolHandle()
		repos = repositories{
			users:      repository.NewUserRepository(pool),
			leads:      repository.NewLeadRepository(pool),
			activities: repository.NewLeadActivityRepository(pool),
			courses:    repository.NewCourseRepository(pool),
		}
	}
	if redis.Configured() {
		repos.filters = repository.NewRedisSavedFilterRepository(redis.Client, cfg.Redis.KeyPrefix)
	} else {
		repos.filters = repository.NewMemorySavedFilterRepository()
	}
	return repos
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
