package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/haoyun-crm/feishu-intake-bot/internal/config"
	"github.com/haoyun-crm/feishu-intake-bot/internal/services"
	"github.com/haoyun-crm/feishu-intake-bot/internal/storage"
)

// HealthHandler reports service and session-store health.
type HealthHandler struct {
	cfg     *config.Config
	store   storage.Store
	archive *services.ArchiveService // nil when archiving is disabled
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(cfg *config.Config, store storage.Store, archive *services.ArchiveService) *HealthHandler {
	return &HealthHandler{cfg: cfg, store: store, archive: archive}
}

// Check returns service status, session-store connectivity and archive
// counts when the archive database is configured.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	redisStatus := "connected"
	if err := h.store.Ping(c.Context()); err != nil {
		redisStatus = "disabled"
	}

	response := fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"app_id":    h.cfg.AppID,
		"redis":     redisStatus,
	}

	if h.archive != nil {
		response["archive"] = fiber.Map{
			"customers": h.archive.Count(c.Context()),
		}
	}

	return c.JSON(response)
}
