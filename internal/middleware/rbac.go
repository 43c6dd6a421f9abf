package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-events-api/internal/policy"
	"github.com/noah-isme/gema-events-api/internal/utils"
)

// ForbiddenMessage matches the message record policies return on a denied ability.
const ForbiddenMessage = "this action is unauthorized"

// RequireRole gates a whole route group on the caller's role, for surfaces such as
// the activity trail that sit outside per-record policy checks. Roles are matched
// case-insensitively against the token's role claim.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		if normalized := strings.ToLower(strings.TrimSpace(role)); normalized != "" {
			allowed[normalized] = struct{}{}
		}
	}

	return func(c *fiber.Ctx) error {
		if _, ok := allowed[roleFromLocals(c)]; !ok {
			return utils.SendError(c, fiber.StatusForbidden, ForbiddenMessage)
		}
		return c.Next()
	}
}

// RequireAdmin is RequireRole for the admin role.
func RequireAdmin() fiber.Handler {
	return RequireRole(policy.RoleAdmin)
}

func roleFromLocals(c *fiber.Ctx) string {
	return normalizeRole(c.Locals(LocalUserRole))
}
