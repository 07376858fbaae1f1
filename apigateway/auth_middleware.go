package gateway

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const principalKey = "principal"

// AuthMiddleware verifies the Authorization bearer token and attaches the
// resulting Principal to the request. Handlers and gates behind it read the
// principal from locals; nothing downstream re-parses the token.
func (j *JWTAuth) AuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"message": "no token provided, unauthorized", "code": "unauthorized"})
		}
		claims, err := j.VerifyJWT(bearerToken(header))
		if err != nil {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"message": "invalid Token, unauthorized", "code": "unauthorized"})
		}
		c.Locals(principalKey, Principal{ID: claims.ID, IsAdmin: claims.IsAdmin})
		return c.Next()
	}
}

// bearerToken strips an RFC 6750 "Bearer " prefix. A bare token is passed
// through unchanged.
func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return header
}

// PrincipalFromCtx returns the principal set by AuthMiddleware, if any.
func PrincipalFromCtx(c *fiber.Ctx) (Principal, bool) {
	p, ok := c.Locals(principalKey).(Principal)
	return p, ok
}

// AdminOnly admits admins. It expects AuthMiddleware earlier in the chain
// and rejects as unauthenticated when stacked without it.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := PrincipalFromCtx(c)
		if !ok {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"message": "no token provided, unauthorized", "code": "unauthorized"})
		}
		if !p.IsAdmin {
			return forbidden(c)
		}
		return c.Next()
	}
}

// SelfOnly admits only the account named by the :id route parameter.
func SelfOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := PrincipalFromCtx(c)
		if !ok {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"message": "no token provided, unauthorized", "code": "unauthorized"})
		}
		if !isSelf(c, p) {
			return forbidden(c)
		}
		return c.Next()
	}
}

// SelfOrAdmin admits the account named by :id and any admin.
func SelfOrAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := PrincipalFromCtx(c)
		if !ok {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"message": "no token provided, unauthorized", "code": "unauthorized"})
		}
		if !isSelf(c, p) && !p.IsAdmin {
			return forbidden(c)
		}
		return c.Next()
	}
}

func isSelf(c *fiber.Ctx, p Principal) bool {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return false
	}
	return uint(id) == p.ID
}

func forbidden(c *fiber.Ctx) error {
	return c.Status(http.StatusForbidden).JSON(fiber.Map{"message": "you are not authorized to perform this action", "code": "forbidden"})
}
