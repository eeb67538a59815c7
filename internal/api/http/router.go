package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/image-moderation-service/internal/api/http/handlers"
	"github.com/spec-kit/image-moderation-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Tokens         *handlers.TokensHandler
	Moderation     *handlers.ModerationHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	if cfg.Health != nil {
		app.Get("/health/live", cfg.Health.Live)
		app.Get("/health/ready", cfg.Health.Ready)
	}

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Tokens.Login)
	authGroup.Post("/verify", cfg.AuthMiddleware.Handle, cfg.Tokens.Verify)

	tokens := authGroup.Group("/tokens", cfg.AuthMiddleware.Handle, cfg.AuthMiddleware.RequireAdmin)
	tokens.Post("", cfg.Tokens.Create)
	tokens.Get("", cfg.Tokens.List)
	tokens.Delete("/:token", cfg.Tokens.Revoke)

	app.Post("/moderate", cfg.AuthMiddleware.Handle, cfg.Moderation.Moderate)
}
