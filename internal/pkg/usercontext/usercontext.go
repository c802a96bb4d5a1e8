// Package usercontext carries the authenticated identity through Fiber
// request locals.
package usercontext

import "github.com/gofiber/fiber/v2"

const contextKey = "USER_CONTEXT"

// UserContext is the per-request identity set by the auth middleware.
// UserID is the Clerk user ID from the verified session token.
type UserContext struct {
	UserID     string `json:"user_id"`
	IsLoggedIn bool   `json:"is_logged_in"`
}

// Set installs the user context on the request.
func Set(c *fiber.Ctx, ctx UserContext) {
	c.Locals(contextKey, ctx)
}

// Get retrieves the user context, or an anonymous context if none is set.
func Get(c *fiber.Ctx) UserContext {
	if ctx := c.Locals(contextKey); ctx != nil {
		if uc, ok := ctx.(UserContext); ok {
			return uc
		}
	}
	return UserContext{}
}

// UserID returns the current user's ID, or "" if not logged in.
func UserID(c *fiber.Ctx) string {
	return Get(c).UserID
}
