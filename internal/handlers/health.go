package handlers

import "github.com/gofiber/fiber/v2"

// HealthHandler handles health check requests
type HealthHandler struct {
	Version  string
	Storage  string
	Sessions string
	Gateway  string

	// Ping checks the database; nil for in-memory storage
	Ping func() error
	// Breaker reports the outbound circuit state; nil when not wrapped
	Breaker interface{ State() string }
}

// Check returns the health status of the service
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	status := "healthy"
	code := fiber.StatusOK
	database := "n/a"

	if h.Ping != nil {
		database = "connected"
		if err := h.Ping(); err != nil {
			database = "error: " + err.Error()
			status = "unhealthy"
			code = fiber.StatusServiceUnavailable
		}
	}

	gateway := fiber.Map{"kind": h.Gateway}
	if h.Breaker != nil {
		gateway["breaker"] = h.Breaker.State()
	}

	return c.Status(code).JSON(fiber.Map{
		"status":   status,
		"service":  "DukaChat Backend",
		"version":  h.Version,
		"storage":  h.Storage,
		"database": database,
		"sessions": h.Sessions,
		"gateway":  gateway,
	})
}
