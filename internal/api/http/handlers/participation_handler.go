package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/shalom-church/portal/internal/api/dto"
	"github.com/shalom-church/portal/internal/auth"
	"github.com/shalom-church/portal/internal/domain"
	apperrors "github.com/shalom-church/portal/pkg/util"
)

// ParticipationService manages event registrations and ministry memberships.
type ParticipationService interface {
	RegisterForEvent(ctx context.Context, principal *domain.Principal, eventID, notes string) (*domain.EventRegistration, error)
	CancelEventRegistration(ctx context.Context, principal *domain.Principal, eventID string) (*domain.EventRegistration, error)
	IsRegistered(ctx context.Context, principal *domain.Principal, eventID string) (bool, error)
	JoinMinistry(ctx context.Context, principal *domain.Principal, ministryID string) (*domain.MinistryMembership, error)
	LeaveMinistry(ctx context.Context, principal *domain.Principal, ministryID string) (*domain.MinistryMembership, error)
	IsMember(ctx context.Context, principal *domain.Principal, ministryID string) (bool, error)
}

// ParticipationHandler exposes the caller's registrations and memberships.
type ParticipationHandler struct {
	participation ParticipationService
}

// NewParticipationHandler constructs handler.
func NewParticipationHandler(participation ParticipationService) *ParticipationHandler {
	return &ParticipationHandler{participation: participation}
}

// RegistrationStatus GET /api/events/:id/registration.
func (h *ParticipationHandler) RegistrationStatus(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	registered, err := h.participation.IsRegistered(c.UserContext(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"registered": registered})
}

// Register POST /api/events/:id/registration.
func (h *ParticipationHandler) Register(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	var req dto.EventRegistrationRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewInvalidRequest("invalid payload", nil)
		}
	}
	reg, err := h.participation.RegisterForEvent(c.UserContext(), principal, c.Params("id"), req.Notes)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": reg})
}

// CancelRegistration DELETE /api/events/:id/registration.
func (h *ParticipationHandler) CancelRegistration(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	reg, err := h.participation.CancelEventRegistration(c.UserContext(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": reg})
}

// MembershipStatus GET /api/ministries/:id/membership.
func (h *ParticipationHandler) MembershipStatus(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	member, err := h.participation.IsMember(c.UserContext(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"member": member})
}

// Join POST /api/ministries/:id/membership.
func (h *ParticipationHandler) Join(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	m, err := h.participation.JoinMinistry(c.UserContext(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": m})
}

// Leave DELETE /api/ministries/:id/membership.
func (h *ParticipationHandler) Leave(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	m, err := h.participation.LeaveMinistry(c.UserContext(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": m})
}
