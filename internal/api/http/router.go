package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/garage-auth/internal/api/http/handlers"
	"github.com/spec-kit/garage-auth/internal/auth"
	"github.com/spec-kit/garage-auth/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health        *handlers.HealthHandler
	Auth          *handlers.AuthHandler
	Authenticator *auth.RequestAuthenticator
	Metrics       *observability.Metrics
}

// RegisterRoutes wires HTTP routes. The authenticator runs on every request; guards decide access.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	app.Use(cfg.Authenticator.Handle)

	authGroup := app.Group("/auth")
	authGroup.Post("/signin", cfg.Auth.SignIn)
	authGroup.Put("/refresh", cfg.Auth.Refresh)
	authGroup.Post("/logout", cfg.Auth.Logout)

	api := app.Group("/api/v1", auth.RequireAuthenticated())
	api.Get("/me", cfg.Auth.Me)
}
