package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cablesur/claims-service/internal/api/http/handlers"
	"github.com/cablesur/claims-service/internal/auth"
	"github.com/cablesur/claims-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Claims         *handlers.ClaimsHandler
	Assignments    *handlers.AssignmentsHandler
	Notifications  *handlers.NotificationsHandler
	Clients        *handlers.ClientsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	app.Post("/auth/login", cfg.Auth.Login)

	protected := app.Group("", cfg.AuthMiddleware.Handle)
	protected.Post("/auth/password/change", auth.RequireRole(), cfg.Auth.ChangePassword)
	protected.Post("/auth/staff", auth.AdminOnly(), cfg.Auth.CreateStaff)

	claims := protected.Group("/claims")
	claims.Get("/check-active", auth.RequireRole(), cfg.Claims.CheckActive)
	claims.Get("/", auth.RequireRole(), cfg.Claims.ListClaims)
	claims.Post("/", auth.RequireRole(domain.StaffRoleAdmin, domain.StaffRoleOperator), cfg.Claims.CreateClaim)
	claims.Get("/:id", auth.RequireRole(), cfg.Claims.GetClaim)
	claims.Get("/:id/history", auth.RequireRole(), cfg.Claims.GetHistory)
	claims.Post("/:id/transition", auth.CanWrite(), cfg.Claims.Transition)
	claims.Post("/:id/reassign", auth.RequireRole(domain.StaffRoleAdmin, domain.StaffRoleOperator), cfg.Assignments.ReassignClaim)

	assignments := protected.Group("/assignments", auth.RequireRole(domain.StaffRoleAdmin, domain.StaffRoleOperator))
	assignments.Post("/sector", cfg.Assignments.AssignSector)
	assignments.Post("/auto", cfg.Assignments.AutoAssign)
	assignments.Get("/sectors", cfg.Assignments.ListSectors)
	assignments.Get("/groups", cfg.Assignments.ListGroups)

	notifications := protected.Group("/notifications", auth.RequireRole())
	notifications.Get("/", cfg.Notifications.List)
	notifications.Get("/unread-count", cfg.Notifications.UnreadCount)
	notifications.Post("/read-all", cfg.Notifications.MarkAllRead)
	notifications.Post("/urgent", auth.RequireRole(domain.StaffRoleAdmin, domain.StaffRoleOperator), cfg.Notifications.SendUrgentAlert)
	notifications.Post("/:id/read", cfg.Notifications.MarkRead)

	clients := protected.Group("/clients", auth.RequireRole())
	clients.Get("/:number", cfg.Clients.GetClient)
	clients.Put("/:number", auth.CanWrite(), cfg.Clients.SaveClient)
}
