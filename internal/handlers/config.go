package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/haoyun-crm/feishu-intake-bot/internal/config"
	"github.com/haoyun-crm/feishu-intake-bot/internal/services"
)

// ConfigHandler exposes the effective table configuration for diagnostics.
type ConfigHandler struct {
	cfg     *config.Config
	locator *services.TableLocator
}

// NewConfigHandler creates a config handler.
func NewConfigHandler(cfg *config.Config, locator *services.TableLocator) *ConfigHandler {
	return &ConfigHandler{cfg: cfg, locator: locator}
}

// Show returns the configured app id and table URL, the raw parsed triple
// and the best-effort resolved table id.
func (h *ConfigHandler) Show(c *fiber.Ctx) error {
	parsed, err := services.ParseBaseURL(h.cfg.BaseURL)
	if err != nil {
		log.Printf("Failed to parse BASE_URL: %v", err)
	}

	var tableID interface{}
	if loc, err := h.locator.Resolve(c.Context()); err == nil {
		tableID = loc.TableID
	} else {
		log.Printf("Best-effort table resolution failed: %v", err)
	}

	return c.JSON(fiber.Map{
		"app_id":        h.cfg.AppID,
		"base_url":      h.cfg.BaseURL,
		"target_table":  h.cfg.TargetTableName,
		"parsed_params": parsed,
		"table_id":      tableID,
	})
}
