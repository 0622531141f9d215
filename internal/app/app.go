// Package app assembles the server: repositories, services, handlers and the
// event subscribers, wired onto one chi router.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/frahmantamala/timesheet-management/api"
	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/approval"
	approvalPostgres "github.com/frahmantamala/timesheet-management/internal/approval/postgres"
	"github.com/frahmantamala/timesheet-management/internal/assignment"
	assignmentPostgres "github.com/frahmantamala/timesheet-management/internal/assignment/postgres"
	"github.com/frahmantamala/timesheet-management/internal/audit"
	"github.com/frahmantamala/timesheet-management/internal/auth"
	authPostgres "github.com/frahmantamala/timesheet-management/internal/auth/postgres"
	"github.com/frahmantamala/timesheet-management/internal/confirm"
	"github.com/frahmantamala/timesheet-management/internal/core/events"
	"github.com/frahmantamala/timesheet-management/internal/department"
	departmentPostgres "github.com/frahmantamala/timesheet-management/internal/department/postgres"
	"github.com/frahmantamala/timesheet-management/internal/obs"
	"github.com/frahmantamala/timesheet-management/internal/project"
	projectPostgres "github.com/frahmantamala/timesheet-management/internal/project/postgres"
	"github.com/frahmantamala/timesheet-management/internal/timesheet"
	timesheetPostgres "github.com/frahmantamala/timesheet-management/internal/timesheet/postgres"
	"github.com/frahmantamala/timesheet-management/internal/transport"
	"github.com/frahmantamala/timesheet-management/internal/transport/middleware"
	"github.com/frahmantamala/timesheet-management/internal/transport/rest"
	"github.com/frahmantamala/timesheet-management/internal/transport/swagger"
	"github.com/frahmantamala/timesheet-management/internal/user"
	userPostgres "github.com/frahmantamala/timesheet-management/internal/user/postgres"
)

// Set at build time with -ldflags.
var (
	Version = "dev"
	Commit  = "none"
)

type Deps struct {
	Config *internal.Config
	DB     *gorm.DB
	// SQL backs the department scope queries. When nil, Scopes must be set.
	SQL    *sqlx.DB
	Redis  *redis.Client
	Scopes approval.ScopeReader
	Logger *slog.Logger
}

type App struct {
	Router  *chi.Mux
	Bus     *events.EventBus
	Metrics *obs.Metrics
}

func New(ctx context.Context, deps Deps) (*App, error) {
	cfg := deps.Config
	lg := deps.Logger

	if _, err := swagger.Load(ctx, api.OpenAPI); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}

	bus := events.NewEventBus(lg)
	audit.NewLogger(lg).Register(bus)

	var metrics *obs.Metrics
	if cfg.Observability.Metrics.Enabled {
		metrics = obs.NewMetrics()
		metrics.SetBuildInfo(Version, Commit)
		metrics.Subscribe(bus)
	}

	var store confirm.Store = confirm.NewMemoryStore()
	if cfg.Confirmation.Store == "redis" {
		if deps.Redis == nil {
			return nil, fmt.Errorf("confirmation store is redis but no redis client was provided")
		}
		store = confirm.NewRedisStore(deps.Redis)
	}
	confirms := confirm.NewManager(store, cfg.Confirmation.TTL, lg)

	scopes := deps.Scopes
	if scopes == nil {
		if deps.SQL == nil {
			return nil, fmt.Errorf("either a sql connection or a scope reader is required")
		}
		scopes = approvalPostgres.NewScopeReader(deps.SQL)
	}

	userRepo := userPostgres.NewUserRepository(deps.DB)
	departmentRepo := departmentPostgres.NewDepartmentRepository(deps.DB)
	projectRepo := projectPostgres.NewProjectRepository(deps.DB)
	assignmentRepo := assignmentPostgres.NewAssignmentRepository(deps.DB)
	timesheetRepo := timesheetPostgres.NewTimesheetRepository(deps.DB)

	tokens := auth.NewJWTTokenGenerator(cfg.Security.JWTSecret, cfg.Security.AccessTokenDuration)
	authSvc := auth.NewService(authPostgres.NewRepository(deps.DB), tokens, lg)
	userSvc := user.NewService(userRepo, confirms, cfg.Security.BCryptCost, lg)
	departmentSvc := department.NewService(departmentRepo, userRepo, confirms, bus, lg)
	projectSvc := project.NewService(projectRepo, assignmentRepo, confirms, lg)
	assignmentSvc := assignment.NewService(assignmentRepo, projectRepo, userRepo, bus, lg)
	timesheetSvc := timesheet.NewService(timesheetRepo, userRepo, lg).
		WithTargetChecks(projectRepo, assignmentRepo).
		WithPublisher(bus)
	approvalSvc := approval.NewService(approvalPostgres.NewApprovalRepository(deps.DB), userRepo, scopes, bus, lg)

	base := transport.NewBaseHandler(lg)
	handlers := rest.Handlers{
		Auth:         auth.NewHandler(base, authSvc),
		Users:        user.NewHandler(base, userSvc),
		Departments:  department.NewHandler(base, departmentSvc),
		Projects:     project.NewHandler(base, projectSvc),
		Assignments:  assignment.NewHandler(base, assignmentSvc),
		Timesheets:   timesheet.NewHandler(base, timesheetSvc),
		Approvals:    approval.NewHandler(base, approvalSvc),
		Confirmation: confirm.NewHandler(base, confirms),
	}

	checks := map[string]rest.Check{
		"database": func(ctx context.Context) error {
			sqlDB, err := deps.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if deps.Redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return deps.Redis.Ping(ctx).Err()
		}
	}

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, handlers, rest.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		OpenAPI:        api.OpenAPI,
		Metrics:        metrics,
		MetricsPath:    cfg.Observability.Metrics.Path,
		LoginLimiter:   middleware.NewRateLimiter(cfg.Server.LoginRatePerSec, cfg.Server.LoginBurst),
		HealthChecks:   checks,
	}, lg)

	return &App{Router: router, Bus: bus, Metrics: metrics}, nil
}
