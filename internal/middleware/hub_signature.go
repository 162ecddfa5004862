package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// SignatureHeader carries the HMAC-SHA256 of the raw webhook body
const SignatureHeader = "X-Hub-Signature-256"

// ValidateHubSignature checks the webhook signature against the app secret.
// With no secret configured every request passes.
func ValidateHubSignature(appSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if appSecret == "" {
			return c.Next()
		}

		if !ValidSignature(appSecret, c.Body(), c.Get(SignatureHeader)) {
			log.Printf("webhook: invalid signature from %s", c.IP())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid signature",
			})
		}
		return c.Next()
	}
}

// ValidSignature reports whether header ("sha256=<hex>") matches body
func ValidSignature(appSecret string, body []byte, header string) bool {
	sig, ok := strings.CutPrefix(strings.TrimSpace(header), "sha256=")
	if !ok || sig == "" {
		return false
	}
	return hmac.Equal([]byte(strings.ToLower(sig)), []byte(Sign(appSecret, body)))
}

// Sign returns the hex HMAC-SHA256 of body
func Sign(appSecret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
