package gateway

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Cors sets permissive CORS headers and short-circuits preflight requests.
// origin comes from configuration and defaults to "*".
func Cors(origin string) fiber.Handler {
	if origin == "" {
		origin = "*"
	}
	return func(c *fiber.Ctx) error {
		c.Set("Access-Control-Allow-Origin", origin)
		if c.Method() != fiber.MethodOptions {
			return c.Next()
		}
		c.Set("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
		c.Set("Access-Control-Allow-Headers", "authorization, origin, content-type, accept, X-CSRF-TOKEN")
		c.Set("Allow", "HEAD,GET,POST,PUT,PATCH,DELETE,OPTIONS")
		return c.SendStatus(http.StatusOK)
	}
}
