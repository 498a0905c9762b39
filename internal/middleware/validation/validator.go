package validation

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Config struct {
	MaxReviewLength     int
	AllowedContentTypes []string
	Logger              *zap.Logger
}

// Middleware validates the analyze request body before it reaches the
// handler: acceptable content type, review present, and a length cap so a
// single submission cannot bloat the history log.
func Middleware(cfg Config) fiber.Handler {
	if cfg.MaxReviewLength == 0 {
		cfg.MaxReviewLength = 10000
	}
	if len(cfg.AllowedContentTypes) == 0 {
		cfg.AllowedContentTypes = []string{"application/json"}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodPost || !strings.HasSuffix(c.Path(), "/reviews/analyze") {
			return c.Next()
		}

		contentType := c.Get("Content-Type")
		allowed := false
		for _, t := range cfg.AllowedContentTypes {
			if strings.Contains(contentType, t) {
				allowed = true
				break
			}
		}
		if !allowed {
			return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{
				"error": "Unsupported content type",
			})
		}

		var req struct {
			Review string `json:"review"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid JSON format",
			})
		}

		if len(req.Review) > cfg.MaxReviewLength {
			cfg.Logger.Warn("Oversized review rejected",
				zap.String("ip", c.IP()),
				zap.Int("length", len(req.Review)),
			)
			return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
				"error": "Review exceeds maximum length",
			})
		}

		if strings.ContainsRune(req.Review, '\x00') {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Review contains invalid characters",
			})
		}

		return c.Next()
	}
}
