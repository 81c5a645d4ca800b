package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/mindmeld-api/services"
)

// ClientInfo stores the caller's IP and user agent on the request context
// so services can attach them to activity records
func ClientInfo() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.SetUserContext(services.WithClientInfo(c.UserContext(), c.IP(), c.Get(fiber.HeaderUserAgent)))
		return c.Next()
	}
}
