package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

// APIKeyConfig configures APIKeyAuthMiddleware.
type APIKeyConfig struct {
	// Key is the shared secret callers must present.
	Key string
	// AllowEmpty lets every request through while no key is configured (development only).
	AllowEmpty bool
}

// APIKeyAuthMiddleware authenticates requests carrying the shared API key in
// X-API-Key or as a bearer token.
func APIKeyAuthMiddleware(cfg APIKeyConfig) fiber.Handler {
	if cfg.Key == "" {
		if cfg.AllowEmpty {
			log.Warn("[API] API_KEY is not set, /api/v1 is unprotected")
		} else {
			log.Error("[API] API_KEY is not set, /api/v1 rejects every request")
		}
	}

	return func(c *fiber.Ctx) error {
		if cfg.Key == "" {
			if cfg.AllowEmpty {
				return c.Next()
			}
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"success": false, "error": "API key not configured"})
		}

		apiKey := extractAPIKeyFromHeader(c)
		if apiKey == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "error": "Missing API key"})
		}
		if subtle.ConstantTimeCompare([]byte(apiKey), []byte(cfg.Key)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "error": "Invalid API key"})
		}

		return c.Next()
	}
}

func extractAPIKeyFromHeader(c *fiber.Ctx) string {
	apiKey := strings.TrimSpace(c.Get("X-API-Key"))
	if apiKey != "" {
		return apiKey
	}
	auth := strings.TrimSpace(c.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}
