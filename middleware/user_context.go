// middleware/user_context.go
package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// UserContextMiddleware extracts the identity the Gateway forwards after
// authenticating the caller. Session issuance and verification live at
// the gateway; this service only consumes the headers.
func UserContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userEmail := c.Get("X-User-Email")
		rolesStr := c.Get("X-User-Roles")

		var roles []string
		if rolesStr != "" {
			for _, r := range strings.Split(rolesStr, ",") {
				r = strings.TrimSpace(r)
				if r != "" {
					roles = append(roles, r)
				}
			}
		}

		// Attach to ctx for handlers
		c.Locals("user_email", userEmail)
		c.Locals("user_roles", roles)

		return c.Next()
	}
}
