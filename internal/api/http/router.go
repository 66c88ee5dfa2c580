package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/quickdesk/helpdesk-service/internal/api/http/handlers"
	"github.com/quickdesk/helpdesk-service/internal/auth"
	"github.com/quickdesk/helpdesk-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Data           *handlers.DataHandler
	Tickets        *handlers.TicketsHandler
	Notifications  *handlers.NotificationsHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Admin mutations sit behind the
// Admin role guard in addition to the service-layer check.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")
	api.Post("/auth/register", cfg.Auth.Register)
	api.Post("/auth/login", cfg.Auth.Login)

	protected := api.Group("", cfg.AuthMiddleware.Handle, auth.RequireRole())
	protected.Get("/data", cfg.Data.Snapshot)

	protected.Get("/tickets", cfg.Tickets.List)
	protected.Post("/tickets", cfg.Tickets.Create)
	protected.Get("/tickets/:id", cfg.Tickets.Get)
	protected.Post("/tickets/:id/comments", cfg.Tickets.AddComment)
	protected.Put("/tickets/:id/status", auth.RequireStaff(), cfg.Tickets.UpdateStatus)
	protected.Put("/tickets/:id/vote", cfg.Tickets.Vote)

	protected.Get("/notifications", cfg.Notifications.Inbox)
	protected.Put("/notifications/read", cfg.Notifications.MarkRead)

	admin := protected.Group("", auth.RequireRole(domain.RoleAdmin))
	admin.Get("/users", cfg.Admin.ListUsers)
	admin.Put("/users/:id/role", cfg.Admin.UpdateUserRole)
	admin.Delete("/users/:id", cfg.Admin.DeleteUser)
	admin.Post("/categories", cfg.Admin.CreateCategory)
	admin.Delete("/categories/:id", cfg.Admin.DeleteCategory)
}
