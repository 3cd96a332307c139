package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/sirupsen/logrus"

	"transcript-api/config"
)

// RateLimiter enforces one rule per client IP with an in-memory fixed
// window. Rejected requests get 429 with the rule in the description.
func RateLimiter(rule config.Rule, log *logrus.Logger) fiber.Handler {
	description := rule.String()
	return limiter.New(limiter.Config{
		Max:        rule.Max,
		Expiration: rule.Window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			log.WithFields(logrus.Fields{
				"request_id": RequestID(c),
				"client_ip":  c.IP(),
				"limit":      description,
			}).Warn("Rate limit exceeded")
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       "Rate limit exceeded",
				"description": description,
			})
		},
	})
}

// RateLimiters returns one limiter per rule, in order.
func RateLimiters(rules []config.Rule, log *logrus.Logger) []fiber.Handler {
	handlers := make([]fiber.Handler, 0, len(rules))
	for _, r := range rules {
		handlers = append(handlers, RateLimiter(r, log))
	}
	return handlers
}
