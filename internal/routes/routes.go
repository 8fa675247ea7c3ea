package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/MedSync-Fiap/notificacao-api/internal/handlers"
)

// SetupRoutes configures all application routes with dependencies.
func SetupRoutes(app *fiber.App, healthHandler *handlers.HealthHandler, notificationsHandler *handlers.NotificationsHandler) {
	app.Get("/health", healthHandler.HealthCheck)

	api := app.Group("/api/v1")
	{
		api.Post("/notificacoes", notificationsHandler.Create)
	}
}
