package rest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/timesheet-management/internal/approval"
	"github.com/frahmantamala/timesheet-management/internal/assignment"
	"github.com/frahmantamala/timesheet-management/internal/auth"
	"github.com/frahmantamala/timesheet-management/internal/confirm"
	"github.com/frahmantamala/timesheet-management/internal/core/domain"
	"github.com/frahmantamala/timesheet-management/internal/department"
	"github.com/frahmantamala/timesheet-management/internal/obs"
	"github.com/frahmantamala/timesheet-management/internal/project"
	"github.com/frahmantamala/timesheet-management/internal/timesheet"
	"github.com/frahmantamala/timesheet-management/internal/transport/middleware"
	"github.com/frahmantamala/timesheet-management/internal/transport/swagger"
	"github.com/frahmantamala/timesheet-management/internal/user"
)

type Handlers struct {
	Auth         *auth.Handler
	Users        *user.Handler
	Departments  *department.Handler
	Projects     *project.Handler
	Assignments  *assignment.Handler
	Timesheets   *timesheet.Handler
	Approvals    *approval.Handler
	Confirmation *confirm.Handler
}

type Options struct {
	AllowedOrigins string
	OpenAPI        []byte
	Metrics        *obs.Metrics
	MetricsPath    string
	LoginLimiter   *middleware.RateLimiter
	HealthChecks   map[string]Check
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, opts Options, logger *slog.Logger) {
	healthHandler := NewHealthHandler(opts.HealthChecks)

	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.CORS(opts.AllowedOrigins))
	if opts.Metrics != nil {
		router.Use(opts.Metrics.Instrument)
		router.Handle(opts.MetricsPath, opts.Metrics.Handler())
	}

	if len(opts.OpenAPI) > 0 {
		router.Get(swagger.DocumentPath, swagger.Document(opts.OpenAPI))
		router.Handle("/swagger/*", swagger.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(ar chi.Router) {
			login := http.Handler(http.HandlerFunc(h.Auth.Login))
			if opts.LoginLimiter != nil {
				login = opts.LoginLimiter.Middleware(login)
			}
			ar.Method(http.MethodPost, "/login", login)
			ar.Post("/logout", h.Auth.Logout)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Route("/users", func(ur chi.Router) {
				ur.Get("/me", h.Users.GetCurrentUser)
				ur.Get("/", h.Users.ListUsers)
				ur.With(middleware.RequireRole(domain.RoleAdmin)).Post("/", h.Users.CreateUser)
				ur.Route("/{id}", func(ir chi.Router) {
					ir.Get("/", h.Users.GetUser)
					ir.With(middleware.RequireRole(domain.RoleAdmin)).Put("/", h.Users.UpdateUser)
					ir.With(middleware.RequireRole(domain.RoleAdmin)).Post("/delete-proposals", h.Users.ProposeDelete)
					ir.Get("/assignments", h.Assignments.ListUserAssignments)
					ir.Get("/projects", h.Assignments.ListUserProjects)
				})
			})

			pr.Route("/departments", func(dr chi.Router) {
				dr.Get("/", h.Departments.ListDepartments)
				dr.Post("/", h.Departments.CreateDepartment)
				dr.Route("/{id}", func(ir chi.Router) {
					ir.Get("/", h.Departments.GetDepartment)
					ir.Put("/", h.Departments.UpdateDepartment)
					ir.Post("/manager-proposals", h.Departments.ProposeManagerChange)
					ir.Post("/delete-proposals", h.Departments.ProposeDelete)
					ir.Get("/timesheets", h.Timesheets.ListDepartment)
				})
			})

			pr.Post("/confirmations/{token}", h.Confirmation.Commit)

			pr.Route("/projects", func(pjr chi.Router) {
				pjr.Get("/", h.Projects.ListProjects)
				pjr.Post("/", h.Projects.CreateProject)
				pjr.Route("/{id}", func(ir chi.Router) {
					ir.Get("/", h.Projects.GetProject)
					ir.Put("/", h.Projects.UpdateProject)
					ir.Delete("/", h.Projects.DeleteProject)
					ir.Route("/assignments", func(asr chi.Router) {
						asr.Get("/", h.Assignments.ListProjectAssignments)
						asr.Post("/", h.Assignments.Assign)
						asr.Post("/batch", h.Assignments.AssignBatch)
						asr.Get("/{userId}", h.Assignments.GetAssignment)
						asr.Put("/{userId}", h.Assignments.UpdateRole)
						asr.Delete("/{userId}", h.Assignments.Unassign)
					})
				})
			})

			pr.Route("/timesheets", func(tr chi.Router) {
				tr.Get("/", h.Timesheets.ListMine)
				tr.Post("/", h.Timesheets.CreateEntry)
				tr.Get("/me/stats", h.Timesheets.MyStats)
				tr.Get("/{id}", h.Timesheets.GetEntry)
				tr.Put("/{id}", h.Timesheets.UpdateEntry)
				tr.Delete("/{id}", h.Timesheets.DeleteEntry)
			})

			pr.Route("/approvals", func(apr chi.Router) {
				apr.Use(middleware.RequireRole(domain.RoleManager, domain.RoleAdmin))
				apr.Put("/{id}/status", h.Approvals.UpdateStatus)
				apr.Get("/pending", h.Approvals.ListPending)
			})
			pr.Get("/managers/{id}/stats", h.Approvals.ManagerStats)
		})
	})
}
