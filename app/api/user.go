package api

import "github.com/gofiber/fiber/v2"

// DefaultUserID is used when no identity header is present. Authentication
// is handled outside this service; handlers only scope data by the id.
const DefaultUserID = "local"

func userFrom(c *fiber.Ctx) string {
	if id := c.Get("X-User-ID"); id != "" {
		return id
	}
	return DefaultUserID
}
