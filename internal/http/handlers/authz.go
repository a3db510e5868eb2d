package handlers

import (
	"strings"

	"mercado/internal/domain"
	applog "mercado/internal/log"
	"mercado/internal/services"
	"mercado/internal/validate"

	"github.com/gofiber/fiber/v2"
)

// RequireAuth resolves the bearer token into a verified user and stashes it
// in Locals for the rest of the chain.
func RequireAuth(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		token := strings.TrimPrefix(header, "Bearer ")
		if token == "" || token == header {
			return failMsg(c, fiber.StatusUnauthorized, "no token provided")
		}
		u, err := auth.CurrentUser(c.Context(), token)
		if err != nil {
			applog.Security(c, "auth.invalid_token", nil)
			return failMsg(c, fiber.StatusUnauthorized, "invalid token")
		}
		c.Locals("user", u)
		c.Locals("userID", u.ID.Hex())
		c.Locals("token", token)
		return c.Next()
	}
}

// RequireAdmin must run after RequireAuth.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := currentUser(c)
		if u == nil || u.Role != "admin" {
			applog.Security(c, "access.denied.admin", nil)
			return failMsg(c, fiber.StatusForbidden, "admin only")
		}
		return c.Next()
	}
}

// RequireOwnerOrAdmin allows the admin role or an exact match between the
// authenticated user and the route's subject user id.
func RequireOwnerOrAdmin(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := currentUser(c)
		if u == nil {
			return failMsg(c, fiber.StatusUnauthorized, "no token provided")
		}
		id, okID := validate.OID(c.Params(param))
		if !okID {
			return fail(c, domain.ErrInvalidID)
		}
		if u.Role != "admin" && u.ID != id {
			applog.Security(c, "access.denied.owner", map[string]any{"subject": id.Hex()})
			return failMsg(c, fiber.StatusForbidden, "owner or admin only")
		}
		return c.Next()
	}
}

func currentUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals("user").(*domain.User)
	return u
}
