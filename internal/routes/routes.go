package routes

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/Ananth-NQI/dukachat-backend/internal/handlers"
	"github.com/Ananth-NQI/dukachat-backend/internal/middleware"
)

// Options are the route-level settings taken from config
type Options struct {
	AppSecret     string
	ProofAPIToken string
	Development   bool

	// Twilio inbound is mounted when Twilio is the active gateway
	TwilioInbound    bool
	TwilioAuthToken  string
	TwilioWebhookURL string
}

// Handlers groups everything the routes dispatch to
type Handlers struct {
	WhatsApp *handlers.WhatsAppHandler
	Payment  *handlers.PaymentHandler
	Orders   *handlers.OrderHandler
	Health   *handlers.HealthHandler
}

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, h Handlers, opts Options) {

	// Root endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Welcome to DukaChat Backend!",
			"version": h.Health.Version,
			"endpoints": fiber.Map{
				"health":  "/health",
				"webhook": "/webhook/whatsapp",
				"proof":   "/api/payments/proof",
			},
		})
	})

	app.Get("/health", h.Health.Check)

	// ========== WEBHOOK ROUTES ==========
	webhooks := app.Group("/webhook")
	webhooks.Get("/whatsapp", h.WhatsApp.Verify)
	webhooks.Post("/whatsapp", middleware.ValidateHubSignature(opts.AppSecret), h.WhatsApp.HandleWebhook)
	if opts.TwilioInbound {
		webhooks.Post("/twilio", middleware.ValidateTwilioSignature(opts.TwilioAuthToken, opts.TwilioWebhookURL), h.WhatsApp.HandleTwilioWebhook)
	}

	// ========== API ROUTES ==========
	api := app.Group("/api", middleware.ValidateAPIToken(opts.ProofAPIToken))
	api.Post("/payments/proof", h.Payment.SubmitProof)
	api.Get("/orders/:ref", h.Orders.GetOrder)
	api.Get("/conversations/:customer/messages", h.Orders.GetMessages)

	// ========== TEST ROUTES (Development Only) ==========
	if opts.Development {
		app.Post("/test/whatsapp", h.WhatsApp.HandleTestWebhook)
		log.Println("⚠️  /test/whatsapp enabled for development")
	}
}
