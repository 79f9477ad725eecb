package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/shalom-church/portal/internal/api/dto"
	"github.com/shalom-church/portal/internal/auth"
	"github.com/shalom-church/portal/internal/domain"
	apperrors "github.com/shalom-church/portal/pkg/util"
)

// PreferenceService reads and writes email opt-ins.
type PreferenceService interface {
	EmailPreferences(ctx context.Context, principal *domain.Principal) (*domain.SubscriberPreference, error)
	UpdateEmailPreferences(ctx context.Context, principal *domain.Principal, pref domain.SubscriberPreference) (*domain.SubscriberPreference, error)
}

// PreferencesHandler exposes the caller's notification preferences.
type PreferencesHandler struct {
	prefs PreferenceService
}

// NewPreferencesHandler constructs handler.
func NewPreferencesHandler(prefs PreferenceService) *PreferencesHandler {
	return &PreferencesHandler{prefs: prefs}
}

// Get handles GET /api/me/email-preferences.
func (h *PreferencesHandler) Get(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	pref, err := h.prefs.EmailPreferences(c.UserContext(), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": pref})
}

// Update handles PUT /api/me/email-preferences.
func (h *PreferencesHandler) Update(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	var req dto.EmailPreferencesRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidRequest("invalid payload", nil)
	}
	pref, err := h.prefs.UpdateEmailPreferences(c.UserContext(), principal, domain.SubscriberPreference{
		Events:     req.Events,
		BlogPosts:  req.BlogPosts,
		Ministries: req.Ministries,
		Sermons:    req.Sermons,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": pref})
}
