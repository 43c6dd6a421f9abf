package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-events-api/internal/utils"
)

// DeactivatedMessage is returned to users whose account has been switched off.
const DeactivatedMessage = "Sorry. Your account has been deactivated."

// RequireActive rejects requests from deactivated accounts.
func RequireActive() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if active, ok := c.Locals(LocalUserActive).(bool); ok && !active {
			return utils.SendError(c, fiber.StatusForbidden, DeactivatedMessage)
		}
		return c.Next()
	}
}
