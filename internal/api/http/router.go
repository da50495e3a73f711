package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/itops-service/internal/api/http/handlers"
	"github.com/spec-kit/itops-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Metrics        *handlers.MetricsHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	Assets         *handlers.AssetsHandler
	Projects       *handlers.ProjectsHandler
	Activity       *handlers.ActivityHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api/v1", cfg.AuthMiddleware.Handle, auth.RequireActor())

	tickets := api.Group("/tickets")
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Patch("/:id", cfg.Tickets.UpdateTicket)
	tickets.Delete("/:id", cfg.Tickets.DeleteTicket)
	tickets.Post("/:id/assign", cfg.Tickets.AssignTicket)
	tickets.Post("/:id/unassign", cfg.Tickets.UnassignTicket)
	tickets.Post("/:id/resolve", cfg.Tickets.ResolveTicket)
	tickets.Post("/:id/reopen", cfg.Tickets.ReopenTicket)
	tickets.Post("/:id/close", cfg.Tickets.CloseTicket)
	tickets.Get("/:id/permissions", cfg.Tickets.Permissions)
	tickets.Get("/:id/status-history", cfg.Tickets.StatusHistory)

	assets := api.Group("/assets")
	assets.Get("", cfg.Assets.ListAssets)
	assets.Post("", cfg.Assets.CreateAsset)
	assets.Get("/:id", cfg.Assets.GetAsset)
	assets.Patch("/:id", cfg.Assets.UpdateAsset)
	assets.Delete("/:id", cfg.Assets.DeleteAsset)
	assets.Post("/:id/assign", cfg.Assets.AssignAsset)
	assets.Post("/:id/unassign", cfg.Assets.UnassignAsset)
	assets.Get("/:id/permissions", cfg.Assets.Permissions)
	assets.Get("/:id/status-history", cfg.Assets.StatusHistory)

	projects := api.Group("/projects")
	projects.Get("", cfg.Projects.ListProjects)
	projects.Post("", cfg.Projects.CreateProject)
	projects.Get("/:id", cfg.Projects.GetProject)
	projects.Patch("/:id", cfg.Projects.UpdateProject)
	projects.Delete("/:id", cfg.Projects.DeleteProject)
	projects.Post("/:id/assign", cfg.Projects.AssignProject)
	projects.Post("/:id/unassign", cfg.Projects.UnassignProject)
	projects.Get("/:id/permissions", cfg.Projects.Permissions)
	projects.Get("/:id/status-history", cfg.Projects.StatusHistory)

	users := api.Group("/users")
	users.Get("/me", cfg.Users.Me)
	users.Get("", cfg.Users.ListUsers)
	users.Post("", cfg.Users.CreateUser)
	users.Get("/:id", cfg.Users.GetUser)
	users.Patch("/:id", cfg.Users.UpdateUser)
	users.Delete("/:id", cfg.Users.DeleteUser)
	users.Post("/:id/role", cfg.Users.ChangeRole)
	users.Get("/:id/permissions", cfg.Users.Permissions)
	users.Get("/:id/status-history", cfg.Users.StatusHistory)

	api.Get("/activity", auth.RequireAdminRank(), cfg.Activity.ListActivity)
	api.Get("/metrics", auth.RequireAdminRank(), cfg.Metrics.Metrics)
}
