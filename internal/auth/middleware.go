package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/shalom-church/portal/internal/domain"
	apperrors "github.com/shalom-church/portal/pkg/util"
)

const principalKey = "auth_principal"

// IdentityProvider resolves bearer tokens into principals.
type IdentityProvider interface {
	GetUser(ctx context.Context, token string) (*domain.Principal, error)
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	identity IdentityProvider
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(identity IdentityProvider) *AuthMiddleware {
	return &AuthMiddleware{identity: identity}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	token, err := bearerToken(c)
	if err != nil {
		return err
	}

	principal, err := m.identity.GetUser(c.UserContext(), token)
	if err != nil {
		return err
	}

	c.Locals(principalKey, principal)
	return c.Next()
}

// Optional attaches the principal when a valid token is present and lets
// anonymous requests through otherwise.
func (m *AuthMiddleware) Optional(c *fiber.Ctx) error {
	if c.Get(fiber.HeaderAuthorization) == "" {
		return c.Next()
	}
	token, err := bearerToken(c)
	if err != nil {
		return c.Next()
	}
	if principal, err := m.identity.GetUser(c.UserContext(), token); err == nil {
		c.Locals(principalKey, principal)
	}
	return c.Next()
}

func bearerToken(c *fiber.Ctx) (string, error) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return "", apperrors.NewUnauthenticated("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", apperrors.NewUnauthenticated("invalid authorization header")
	}
	return strings.TrimSpace(parts[1]), nil
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*domain.Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*domain.Principal)
	return principal, ok && principal != nil
}
