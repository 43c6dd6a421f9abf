package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/noah-isme/gema-events-api/internal/utils"
)

// RateLimitMessage is returned once a caller exhausts a write budget.
const RateLimitMessage = "too many record changes, slow down"

// RateLimit caps record writes per bucket ("events", "participants") and acting user.
// Calls without an authenticated user share a budget per client IP.
func RateLimit(bucket string, max int, window time.Duration) fiber.Handler {
	if max <= 0 {
		max = 10
	}
	if window <= 0 {
		window = time.Second
	}

	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			if id, ok := c.Locals(LocalUserID).(uint); ok && id != 0 {
				return fmt.Sprintf("%s:user:%d", bucket, id)
			}
			return fmt.Sprintf("%s:ip:%s", bucket, c.IP())
		},
		LimitReached: func(c *fiber.Ctx) error {
			return utils.SendError(c, fiber.StatusTooManyRequests, RateLimitMessage)
		},
	})
}
