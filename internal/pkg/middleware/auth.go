// Package middleware provides Fiber request middleware.
package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/yonderlust/yonderlust/internal/pkg/identity"
	"github.com/yonderlust/yonderlust/internal/pkg/usercontext"
)

// SessionAuth verifies the bearer session token on every request and
// installs the user context. Requests without a valid token get a JSON
// 401; no route behind this middleware runs anonymously.
func SessionAuth(verifier *identity.Verifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := identity.BearerToken(c.Get(fiber.HeaderAuthorization))
		claims, err := verifier.VerifySessionToken(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   "unauthorized",
				"message": "Valid session token required",
			})
		}

		usercontext.Set(c, usercontext.UserContext{
			UserID:     claims.Subject,
			IsLoggedIn: true,
		})
		return c.Next()
	}
}
