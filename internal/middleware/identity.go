package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/auth"
	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/utils"
)

const identityLocal = "identity"

// Identity extracts the caller identity from the X-User-Id and X-User-Role
// headers. The headers are trusted without verification; this is an
// explicit development stand-in for real authentication.
func Identity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity := auth.Normalize(c.Get("X-User-Id"), c.Get("X-User-Role"))
		c.Locals(identityLocal, identity)

		return c.Next()
	}
}

// IdentityFromCtx returns the identity bound to the request, if any.
func IdentityFromCtx(c *fiber.Ctx) auth.Identity {
	if value := c.Locals(identityLocal); value != nil {
		if identity, ok := value.(auth.Identity); ok {
			return identity
		}
	}

	return auth.Identity{}
}

// RequireIdentity rejects requests that carry no valid identity headers.
func RequireIdentity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !IdentityFromCtx(c).Valid() {
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}

		return c.Next()
	}
}

// RequireRole ensures the caller holds one of the allowed roles.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		identity := IdentityFromCtx(c)
		if !identity.Valid() {
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}
		if _, ok := allowed[identity.Role]; !ok {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}

		return c.Next()
	}
}
