package handlers

import (
	"encoding/json"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/haoyun-crm/feishu-intake-bot/internal/models"
	"github.com/haoyun-crm/feishu-intake-bot/internal/services"
)

// eventTypeMessage is the only event type the bot acts on.
const eventTypeMessage = "im.message.receive_v1"

// WebhookHandler terminates the Feishu event webhook.
type WebhookHandler struct {
	intake *services.IntakeService
}

// NewWebhookHandler creates the webhook handler.
func NewWebhookHandler(intake *services.IntakeService) *WebhookHandler {
	return &WebhookHandler{intake: intake}
}

// Handle processes one webhook delivery: echo the url_verification
// challenge, dispatch message events to the intake flow, acknowledge
// everything else.
func (h *WebhookHandler) Handle(c *fiber.Ctx) error {
	var envelope models.EventEnvelope
	if err := c.BodyParser(&envelope); err != nil {
		log.Printf("Failed to parse webhook body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid webhook payload",
		})
	}

	if envelope.Type == "url_verification" {
		return c.JSON(fiber.Map{"challenge": envelope.Challenge})
	}

	var header models.EventHeader
	if len(envelope.Event) > 0 {
		if err := json.Unmarshal(envelope.Event, &header); err != nil {
			log.Printf("Failed to parse event header: %v", err)
		}
	}

	if header.Type == eventTypeMessage {
		var event models.MessageEvent
		if err := json.Unmarshal(envelope.Event, &event); err != nil {
			log.Printf("Failed to parse message event: %v", err)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid message event",
			})
		}

		if err := h.intake.HandleMessageEvent(c.Context(), &event); err != nil {
			// Bubbles to the fiber error handler: 500 {"error": ...}.
			return err
		}
		return c.JSON(fiber.Map{"msg": "Message processed"})
	}

	return c.JSON(fiber.Map{"msg": "Event received"})
}
