package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/shalom-church/portal/internal/domain"
	apperrors "github.com/shalom-church/portal/pkg/util"
)

const roleKey = "auth_role"

// RoleResolver answers which role a principal holds.
type RoleResolver interface {
	ResolveRole(ctx context.Context, principal *domain.Principal) (domain.Role, error)
}

// RequireRole ensures the authenticated principal resolves to one of the allowed roles.
func RequireRole(resolver RoleResolver, allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthenticated("authentication required")
		}
		role, err := resolver.ResolveRole(c.UserContext(), principal)
		if err != nil {
			return err
		}
		if _, exists := allowedSet[role]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		c.Locals(roleKey, role)
		return c.Next()
	}
}

// RequireAdmin is RequireRole restricted to admins.
func RequireAdmin(resolver RoleResolver) fiber.Handler {
	return RequireRole(resolver, domain.RoleAdmin)
}

// RoleFromContext returns the role resolved by RequireRole.
func RoleFromContext(c *fiber.Ctx) (domain.Role, bool) {
	role, ok := c.Locals(roleKey).(domain.Role)
	return role, ok
}
