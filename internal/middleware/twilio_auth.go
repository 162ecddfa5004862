package middleware

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/twilio/twilio-go/client"
)

// TwilioSignatureHeader carries Twilio's request signature
const TwilioSignatureHeader = "X-Twilio-Signature"

// ValidateTwilioSignature validates that the webhook request is from Twilio.
// publicURL is the address Twilio was configured with; when empty it is
// rebuilt from the request. An empty authToken disables the check.
func ValidateTwilioSignature(authToken, publicURL string) fiber.Handler {
	if authToken == "" {
		log.Println("⚠️  TWILIO_AUTH_TOKEN not set - Twilio webhook signatures are not checked")
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	validator := client.NewRequestValidator(authToken)

	return func(c *fiber.Ctx) error {
		signature := c.Get(TwilioSignatureHeader)
		if signature == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing Twilio signature",
			})
		}

		url := publicURL
		if url == "" {
			url = getFullURL(c)
		}

		formParams := make(map[string]string)
		c.Request().PostArgs().VisitAll(func(key, value []byte) {
			formParams[string(key)] = string(value)
		})

		if !validator.Validate(url, formParams, signature) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid signature",
			})
		}

		return c.Next()
	}
}

// getFullURL constructs the full URL for the request
func getFullURL(c *fiber.Ctx) string {
	return fmt.Sprintf("%s://%s%s", c.Protocol(), c.Hostname(), c.OriginalURL())
}
