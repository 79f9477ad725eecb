package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/shalom-church/portal/internal/api/dto"
	"github.com/shalom-church/portal/internal/auth"
	"github.com/shalom-church/portal/internal/domain"
	"github.com/shalom-church/portal/internal/observability"
	apperrors "github.com/shalom-church/portal/pkg/util"
)

// PaymentService opens checkout sessions.
type PaymentService interface {
	CreateCheckoutSession(ctx context.Context, principal *domain.Principal, req domain.PaymentIntentRequest) (*domain.CheckoutSession, error)
}

// NotificationDispatcher fans a publication out to subscribers.
type NotificationDispatcher interface {
	Dispatch(ctx context.Context, event domain.NotificationEvent) (*domain.DispatchSummary, error)
}

// ContactSender handles the contact form.
type ContactSender interface {
	Send(ctx context.Context, msg domain.ContactMessage) (*domain.ContactResult, error)
}

// FunctionsHandler serves the three browser-facing function endpoints. Failures
// are answered with {"error": message} and HTTP 500.
type FunctionsHandler struct {
	payments      PaymentService
	notifications NotificationDispatcher
	contact       ContactSender
	roles         auth.RoleResolver
	logger        *zap.Logger
	metrics       *observability.Metrics
}

// FunctionsDependencies groups the collaborators of FunctionsHandler.
type FunctionsDependencies struct {
	Payments      PaymentService
	Notifications NotificationDispatcher
	Contact       ContactSender
	Roles         auth.RoleResolver
	Logger        *zap.Logger
	Metrics       *observability.Metrics
}

// NewFunctionsHandler constructs handler.
func NewFunctionsHandler(deps FunctionsDependencies) *FunctionsHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FunctionsHandler{
		payments:      deps.Payments,
		notifications: deps.Notifications,
		contact:       deps.Contact,
		roles:         deps.Roles,
		logger:        logger,
		metrics:       deps.Metrics,
	}
}

// CreateDonationPayment handles POST /create-donation-payment.
func (h *FunctionsHandler) CreateDonationPayment(c *fiber.Ctx) error {
	var req dto.DonationPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, apperrors.NewInvalidRequest("invalid payload", nil))
	}
	principal, _ := auth.PrincipalFromContext(c)

	session, err := h.payments.CreateCheckoutSession(providerContext(c), principal, domain.PaymentIntentRequest{
		Amount:       req.Amount,
		Purpose:      domain.DonationPurpose(req.DonationType),
		IsRecurring:  req.IsRecurring,
		Frequency:    domain.Frequency(req.RecurringFrequency),
		CampaignName: req.CampaignName,
		Notes:        req.Notes,
		EventID:      req.EventID,
		ReturnOrigin: c.Get(fiber.HeaderOrigin),
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.DonationPaymentResponse{URL: session.URL})
}

// SendNotificationEmails handles POST /send-notification-emails. Admins only.
func (h *FunctionsHandler) SendNotificationEmails(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return h.fail(c, apperrors.NewUnauthenticated("User not authenticated"))
	}
	role, err := h.roles.ResolveRole(c.UserContext(), principal)
	if err != nil {
		return h.fail(c, err)
	}
	if role != domain.RoleAdmin {
		return h.fail(c, apperrors.NewForbidden("admin role required"))
	}

	var event domain.NotificationEvent
	if err := c.BodyParser(&event); err != nil {
		return h.fail(c, apperrors.NewInvalidRequest("invalid payload", nil))
	}
	summary, err := h.notifications.Dispatch(providerContext(c), event)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(summary)
}

// SendContactEmail handles POST /send-contact-email.
func (h *FunctionsHandler) SendContactEmail(c *fiber.Ctx) error {
	var req dto.ContactEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, apperrors.NewInvalidRequest("invalid payload", nil))
	}
	result, err := h.contact.Send(providerContext(c), domain.ContactMessage{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Subject:     req.Subject,
		Message:     req.Message,
		MessageType: req.MessageType,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(result)
}

// providerContext detaches provider calls from the request deadline so a
// checkout session or an email batch is never abandoned halfway.
func providerContext(c *fiber.Ctx) context.Context {
	return context.WithoutCancel(c.UserContext())
}

func (h *FunctionsHandler) fail(c *fiber.Ctx, err error) error {
	domainErr := apperrors.ToDomainError(err)
	h.metrics.RecordError(c.Route().Path, c.Method(), domainErr.Code)
	h.logger.Warn("function call failed",
		zap.String("path", c.Path()),
		zap.String("code", domainErr.Code),
		zap.Error(err))
	return c.Status(http.StatusInternalServerError).JSON(dto.FunctionError{Error: domainErr.Message})
}
