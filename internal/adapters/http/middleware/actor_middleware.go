package middleware

import (
	"github.com/gofiber/fiber/v2"

	"gearbook-backend/internal/core/domain"
)

// Actor identity arrives via trusted gateway headers; this service does
// not authenticate. X-User-Role defaults to student when absent.

// ActorMiddleware extracts the acting identity and stores it in Locals
func ActorMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Get("X-User-ID")
		if userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "Missing X-User-ID header",
			})
		}

		role := domain.Role(c.Get("X-User-Role"))
		switch role {
		case domain.RoleStudent, domain.RoleStaff, domain.RoleAdmin:
		case "":
			role = domain.RoleStudent
		default:
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "Unknown X-User-Role",
			})
		}

		c.Locals("actorID", userID)
		c.Locals("actorRole", role)
		return c.Next()
	}
}

// AdminOnly restricts a route group to staff and admin actors
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !GetActor(c).IsAdmin() {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"error":   "Staff access required",
			})
		}
		return c.Next()
	}
}

// GetActor rebuilds the actor stored by ActorMiddleware
func GetActor(c *fiber.Ctx) domain.Actor {
	id, _ := c.Locals("actorID").(string)
	role, _ := c.Locals("actorRole").(domain.Role)
	return domain.Actor{ID: id, Role: role}
}
