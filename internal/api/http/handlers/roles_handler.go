package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/shalom-church/portal/internal/api/dto"
	"github.com/shalom-church/portal/internal/auth"
	"github.com/shalom-church/portal/internal/domain"
	apperrors "github.com/shalom-church/portal/pkg/util"
)

// RoleService resolves and administers roles.
type RoleService interface {
	ResolveRole(ctx context.Context, principal *domain.Principal) (domain.Role, error)
	RefreshRole(ctx context.Context, principal *domain.Principal) (domain.Role, error)
	SetRole(ctx context.Context, caller *domain.Principal, targetID string, role domain.Role) (*domain.RoleAssignment, error)
	ListUsersWithRoles(ctx context.Context, caller *domain.Principal) ([]domain.UserWithRole, error)
}

// RolesHandler exposes role resolution and the admin user manager.
type RolesHandler struct {
	roles RoleService
}

// NewRolesHandler constructs handler.
func NewRolesHandler(roles RoleService) *RolesHandler {
	return &RolesHandler{roles: roles}
}

// MyRole handles GET /api/me/role. Anonymous callers get a null role.
func (h *RolesHandler) MyRole(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return c.JSON(dto.RoleResponse{})
	}
	role, err := h.roles.ResolveRole(c.UserContext(), principal)
	if err != nil {
		return err
	}
	return c.JSON(roleBody(role))
}

// RefreshMyRole handles POST /api/me/role/refresh.
func (h *RolesHandler) RefreshMyRole(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	role, err := h.roles.RefreshRole(c.UserContext(), principal)
	if err != nil {
		return err
	}
	return c.JSON(roleBody(role))
}

// ListUsers handles GET /api/admin/users.
func (h *RolesHandler) ListUsers(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	rows, err := h.roles.ListUsersWithRoles(c.UserContext(), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": rows})
}

// SetUserRole handles PUT /api/admin/users/:id/role.
func (h *RolesHandler) SetUserRole(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	var req dto.SetRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidRequest("invalid payload", nil)
	}
	assignment, err := h.roles.SetRole(c.UserContext(), principal, c.Params("id"), domain.Role(req.Role))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"user_id": assignment.UserID,
		"role":    assignment.Role,
	}})
}

func roleBody(role domain.Role) dto.RoleResponse {
	if role == domain.RoleNone {
		return dto.RoleResponse{}
	}
	value := string(role)
	return dto.RoleResponse{Role: &value}
}
