package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/haoyun-crm/feishu-intake-bot/internal/config"
	"github.com/haoyun-crm/feishu-intake-bot/internal/handlers"
	"github.com/haoyun-crm/feishu-intake-bot/internal/middleware"
)

// Setup registers all HTTP routes.
func Setup(app *fiber.App, cfg *config.Config, webhook *handlers.WebhookHandler, health *handlers.HealthHandler, configHandler *handlers.ConfigHandler) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"service": "Feishu Intake Bot",
			"endpoints": fiber.Map{
				"webhook": "/webhook",
				"health":  "/health",
				"config":  "/config",
			},
		})
	})

	app.Post("/webhook", middleware.VerifyLarkToken(cfg.VerificationToken), webhook.Handle)
	app.Get("/health", health.Check)
	app.Get("/config", configHandler.Show)
}
