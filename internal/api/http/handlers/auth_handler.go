package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/shalom-church/portal/internal/api/dto"
	"github.com/shalom-church/portal/internal/auth"
	"github.com/shalom-church/portal/internal/domain"
	apperrors "github.com/shalom-church/portal/pkg/util"
)

// IdentityService is the identity provider used by the auth endpoints.
type IdentityService interface {
	SignUp(ctx context.Context, email, password string, metadata map[string]any) (*domain.Session, error)
	SignIn(ctx context.Context, email, password string) (*domain.Session, error)
}

// AuthHandler exposes sign-up, sign-in and current-user endpoints.
type AuthHandler struct {
	identity IdentityService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(identity IdentityService) *AuthHandler {
	return &AuthHandler{identity: identity}
}

// SignUp handles POST /auth/signup.
func (h *AuthHandler) SignUp(c *fiber.Ctx) error {
	var req dto.SignUpRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidRequest("invalid payload", nil)
	}
	metadata := map[string]any{}
	if req.FullName != "" {
		metadata[domain.MetadataFullName] = req.FullName
	}
	if req.RequestedRole != "" {
		metadata[domain.MetadataRequestedRole] = req.RequestedRole
	}

	session, err := h.identity.SignUp(c.UserContext(), req.Email, req.Password, metadata)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": sessionBody(session)})
}

// SignIn handles POST /auth/signin.
func (h *AuthHandler) SignIn(c *fiber.Ctx) error {
	var req dto.SignInRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidRequest("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewInvalidRequest("email and password required", nil)
	}

	session, err := h.identity.SignIn(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": sessionBody(session)})
}

// CurrentUser handles GET /auth/user.
func (h *AuthHandler) CurrentUser(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	return c.JSON(fiber.Map{"data": userBody(principal)})
}

func sessionBody(session *domain.Session) fiber.Map {
	return fiber.Map{
		"user": userBody(session.Principal),
		"auth": dto.AuthResponse{Token: session.AccessToken, ExpiresAt: session.ExpiresAt},
	}
}

func userBody(p *domain.Principal) dto.UserResponse {
	return dto.UserResponse{ID: p.ID, Email: p.Email, FullName: p.DisplayName(), Metadata: p.Metadata}
}
