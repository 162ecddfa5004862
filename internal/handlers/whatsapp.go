package handlers

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Ananth-NQI/dukachat-backend/internal/models"
	"github.com/Ananth-NQI/dukachat-backend/internal/whatsapp"
)

// IncomingHandler is the part of services.Dispatcher the webhook needs
type IncomingHandler interface {
	HandleIncoming(ctx context.Context, in whatsapp.Incoming)
}

// WhatsAppHandler handles WhatsApp Cloud API webhook requests
type WhatsAppHandler struct {
	verifyToken string
	dispatcher  IncomingHandler
}

// NewWhatsAppHandler creates a new WhatsApp handler
func NewWhatsAppHandler(verifyToken string, dispatcher IncomingHandler) *WhatsAppHandler {
	return &WhatsAppHandler{
		verifyToken: verifyToken,
		dispatcher:  dispatcher,
	}
}

// Verify answers the subscription handshake:
// GET /webhook/whatsapp?hub.mode=subscribe&hub.verify_token=TOKEN&hub.challenge=CHALLENGE
func (h *WhatsAppHandler) Verify(c *fiber.Ctx) error {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && h.verifyToken != "" && token == h.verifyToken {
		log.Println("✅ Webhook verification successful")
		return c.Status(fiber.StatusOK).SendString(challenge)
	}

	log.Printf("⚠️  Webhook verification failed: mode=%q token_match=%v", mode, token == h.verifyToken)
	return c.Status(fiber.StatusForbidden).SendString("verification failed")
}

// HandleWebhook processes a delivery. It always answers 200 so the provider
// does not retry: parse and processing errors are only logged.
func (h *WhatsAppHandler) HandleWebhook(c *fiber.Ctx) error {
	incoming, errs := whatsapp.ParseWebhook(c.Body())
	for _, err := range errs {
		log.Printf("webhook: %v", err)
	}

	ctx := c.UserContext()
	for _, in := range incoming {
		log.Printf("📱 WhatsApp %s from %s: %s", in.Type, in.Event.CustomerID, in.Summary())
		h.process(ctx, in)
	}

	return c.SendStatus(fiber.StatusOK)
}

// process isolates one message so a panic cannot skip the rest of the batch
func (h *WhatsAppHandler) process(ctx context.Context, in whatsapp.Incoming) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ panic handling message %s from %s: %v", in.Event.MessageID, in.Event.CustomerID, r)
		}
	}()
	h.dispatcher.HandleIncoming(ctx, in)
}

// HandleTwilioWebhook processes one form-encoded message posted by Twilio.
// Like HandleWebhook it always answers 200.
func (h *WhatsAppHandler) HandleTwilioWebhook(c *fiber.Ctx) error {
	var payload whatsapp.TwilioWebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		log.Printf("twilio webhook: %v", err)
		return c.SendStatus(fiber.StatusOK)
	}
	if payload.From == "" {
		log.Println("twilio webhook: message has no sender")
		return c.SendStatus(fiber.StatusOK)
	}

	in := whatsapp.NormalizeTwilio(payload)
	log.Printf("📱 Twilio %s from %s: %s", in.Type, in.Event.CustomerID, in.Summary())
	h.process(c.UserContext(), in)

	return c.SendStatus(fiber.StatusOK)
}

// TestWebhookPayload is a plain text message for local testing
type TestWebhookPayload struct {
	From    string `json:"from"`
	Message string `json:"message"`
}

// HandleTestWebhook feeds a text message through the flow (development only)
func (h *WhatsAppHandler) HandleTestWebhook(c *fiber.Ctx) error {
	var payload TestWebhookPayload
	if err := c.BodyParser(&payload); err != nil || payload.From == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid test payload",
		})
	}

	log.Printf("🧪 Test webhook received from %s: %s", payload.From, payload.Message)

	ev := models.TextEvent(payload.From, payload.Message)
	ev.MessageID = "test-" + time.Now().Format("20060102150405.000000000")
	h.dispatcher.HandleIncoming(c.UserContext(), whatsapp.Incoming{Event: ev, Type: "text", Supported: true})

	return c.JSON(fiber.Map{
		"success": true,
	})
}
