package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/workorder-service/pkg/util/errorutil"
)

// RequireAdmin ensures the authenticated caller is an administrator.
// Admin-only routes answer 401 rather than 403 for non-admins.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !principal.User.IsAdmin {
			return apperrors.NewUnauthorized("administrator privileges required")
		}
		return c.Next()
	}
}

// RequireAuthenticated ensures a principal was loaded.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}
