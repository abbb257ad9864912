package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/workorder-service/internal/api/http/handlers"
	"github.com/spec-kit/workorder-service/internal/auth"
	"github.com/spec-kit/workorder-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	APIPrefix      string
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	WorkOrders     *handlers.WorkOrdersHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
	RateLimiter    *RateLimiter
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", cfg.Metrics.Handler())
	}

	api := app.Group(cfg.APIPrefix)
	authenticated := cfg.AuthMiddleware.Handle

	authGroup := api.Group("/auth")
	throttled := cfg.RateLimiter.Handler()
	authGroup.Post("/register", throttled, cfg.Auth.Register)
	authGroup.Post("/login", throttled, cfg.Auth.Login)
	authGroup.Post("/logout", cfg.Auth.Logout)
	authGroup.Patch("/profile", authenticated, auth.RequireAuthenticated(), cfg.Auth.UpdateProfile)
	authGroup.Get("/users", authenticated, auth.RequireAdmin(), cfg.Auth.ListUsers)
	authGroup.Delete("/:id", authenticated, auth.RequireAdmin(), cfg.Auth.DeleteUser)

	workOrders := api.Group("/work-orders", authenticated, auth.RequireAuthenticated())
	workOrders.Post("/", auth.RequireAdmin(), cfg.WorkOrders.Create)
	workOrders.Get("/", cfg.WorkOrders.List)
	workOrders.Patch("/:id/assign-technician", auth.RequireAdmin(), cfg.WorkOrders.AssignTechnician)
	workOrders.Patch("/:id/status", cfg.WorkOrders.UpdateStatus)
	workOrders.Patch("/:id/observations", cfg.WorkOrders.UpdateObservations)
}
