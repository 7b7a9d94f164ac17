package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/admissions-crm/internal/api/http/handlers"
	"github.com/spec-kit/admissions-crm/internal/auth"
	"github.com/spec-kit/admissions-crm/internal/domain"
	"github.com/spec-kit/admissions-crm/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Leads          *handlers.LeadsHandler
	Filters        *handlers.FiltersHandler
	Courses        *handlers.CoursesHandler
	Reports        *handlers.ReportsHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", cfg.Metrics.Handler())
	}

	authenticated := []fiber.Handler{cfg.AuthMiddleware.Handle, auth.RequireAnyRole()}

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/password/change", append(authenticated, cfg.Auth.ChangePassword)...)

	supervisors := auth.RequireRole(
		domain.RoleSeniorManager,
		domain.RoleManager,
		domain.RoleFloorManager,
		domain.RoleTeamLeader,
	)
	catalogEditors := auth.RequireRole(domain.RoleSeniorManager, domain.RoleManager)

	users := app.Group("/users", authenticated...)
	users.Get("/", cfg.Users.List)
	users.Get("/roles", cfg.Users.Roles)
	users.Get("/assignable", cfg.Users.Assignable)
	users.Post("/", supervisors, cfg.Users.Create)
	users.Patch("/:id", supervisors, cfg.Users.Update)
	users.Post("/:id/deactivate", supervisors, cfg.Users.Deactivate)
	users.Post("/:id/password", supervisors, cfg.Users.ResetPassword)
	users.Get("/:id/reporting-line", cfg.Users.ReportingLine)

	leads := app.Group("/leads", authenticated...)
	leads.Get("/", cfg.Leads.List)
	leads.Post("/", cfg.Leads.Create)
	leads.Get("/kanban", cfg.Leads.Kanban)
	leads.Get("/export", cfg.Leads.Export)
	leads.Post("/import", cfg.Leads.Import)
	leads.Post("/distribute", supervisors, cfg.Leads.Distribute)
	leads.Get("/:id", cfg.Leads.Get)
	leads.Patch("/:id", cfg.Leads.Update)
	leads.Delete("/:id", cfg.Leads.Delete)
	leads.Post("/:id/status", cfg.Leads.ChangeStatus)
	leads.Post("/:id/move", cfg.Leads.Move)
	leads.Post("/:id/assign", cfg.Leads.Assign)
	leads.Get("/:id/activity", cfg.Leads.Activity)

	filters := app.Group("/filters", authenticated...)
	filters.Get("/", cfg.Filters.List)
	filters.Put("/:name", cfg.Filters.Save)
	filters.Delete("/:name", cfg.Filters.Delete)

	courses := app.Group("/courses", authenticated...)
	courses.Get("/", cfg.Courses.List)
	courses.Post("/", catalogEditors, cfg.Courses.Create)
	courses.Patch("/:id", catalogEditors, cfg.Courses.Update)

	reports := app.Group("/reports", authenticated...)
	reports.Get("/sales", cfg.Reports.Sales)
	reports.Get("/sales/export", cfg.Reports.ExportSales)
	reports.Get("/analytics", cfg.Reports.Analytics)
	reports.Get("/dashboard", cfg.Reports.Dashboard)
	reports.Get("/branches", cfg.Reports.Branches)
	reports.Get("/recent", cfg.Reports.Recent)
}
