package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/itops-service/internal/domain"
	apperrors "github.com/spec-kit/itops-service/pkg/util"
)

// RequireActor ensures the caller is authenticated.
func RequireActor() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := ActorFromContext(c); !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}

// RequireAdminRank limits a route to IT_ADMIN, MANAGER and SUPERADMIN.
func RequireAdminRank() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := ActorFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !domain.IsAdminRank(actor.Role) {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}
