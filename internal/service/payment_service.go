package service

import (
	"context"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/shalom-church/portal/internal/domain"
	"github.com/shalom-church/portal/internal/observability"
	apperrors "github.com/shalom-church/portal/pkg/util"
)

// PaymentProvider is the hosted-checkout backend.
type PaymentProvider interface {
	FindOrCreateCustomer(ctx context.Context, email, name string) (string, error)
	CreateCheckoutSession(ctx context.Context, input domain.CheckoutSessionInput) (*domain.CheckoutSession, error)
}

// PaymentService builds checkout sessions for donations and event fees.
type PaymentService struct {
	provider PaymentProvider
	currency string
	siteURL  string
	logger   *zap.Logger
	metrics  *observability.Metrics
}

// PaymentDependencies groups the collaborators of PaymentService.
type PaymentDependencies struct {
	Provider PaymentProvider
	Currency string
	SiteURL  string
	Logger   *zap.Logger
	Metrics  *observability.Metrics
}

// NewPaymentService constructs the service.
func NewPaymentService(deps PaymentDependencies) *PaymentService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	currency := strings.ToLower(deps.Currency)
	if currency == "" {
		currency = "brl"
	}
	return &PaymentService{
		provider: deps.Provider,
		currency: currency,
		siteURL:  strings.TrimRight(deps.SiteURL, "/"),
		logger:   logger,
		metrics:  deps.Metrics,
	}
}

var recurringIntervals = map[domain.Frequency]domain.RecurringInterval{
	domain.FrequencyWeekly:    {Interval: "week", Count: 1},
	domain.FrequencyMonthly:   {Interval: "month", Count: 1},
	domain.FrequencyQuarterly: {Interval: "month", Count: 3},
	domain.FrequencyYearly:    {Interval: "year", Count: 1},
}

// CreateCheckoutSession validates the request and opens a hosted checkout
// session for the principal. Invalid input never reaches the provider.
func (s *PaymentService) CreateCheckoutSession(ctx context.Context, principal *domain.Principal, req domain.PaymentIntentRequest) (*domain.CheckoutSession, error) {
	if principal == nil || principal.ID == "" {
		return nil, apperrors.NewUnauthenticated("sign in required")
	}
	if principal.Email == "" {
		return nil, apperrors.NewUnauthenticated("user email not available")
	}

	unitAmount, err := minorUnits(req.Amount)
	if err != nil {
		return nil, err
	}

	var recurring *domain.RecurringInterval
	mode := domain.CheckoutModePayment
	if req.IsRecurring {
		freq := req.Frequency
		if freq == "" {
			freq = domain.FrequencyMonthly
		}
		interval, ok := recurringIntervals[freq]
		if !ok {
			return nil, apperrors.NewInvalidRequest("invalid recurring frequency",
				map[string]any{"recurringFrequency": string(req.Frequency)})
		}
		recurring = &interval
		mode = domain.CheckoutModeSubscription
	} else if req.Frequency != "" {
		if _, ok := recurringIntervals[req.Frequency]; !ok {
			return nil, apperrors.NewInvalidRequest("invalid recurring frequency",
				map[string]any{"recurringFrequency": string(req.Frequency)})
		}
	}

	customerID, err := s.provider.FindOrCreateCustomer(ctx, principal.Email, principal.DisplayName())
	if err != nil {
		s.logger.Error("payment customer lookup failed", zap.String("user_id", principal.ID), zap.Error(err))
		return nil, apperrors.NewPaymentProviderError(err)
	}

	description := purposeDescription(req.Purpose, req.CampaignName)
	origin := strings.TrimRight(req.ReturnOrigin, "/")
	if origin == "" {
		origin = s.siteURL
	}

	metadata := map[string]string{
		"user_id":       principal.ID,
		"donation_type": string(req.Purpose),
		"campaign_name": req.CampaignName,
		"notes":         req.Notes,
		"is_recurring":  strconv.FormatBool(req.IsRecurring),
	}
	if req.EventID != "" {
		metadata["event_id"] = req.EventID
	}

	input := domain.CheckoutSessionInput{
		CustomerID: customerID,
		Mode:       mode,
		LineItem: domain.CheckoutLineItem{
			Currency:    s.currency,
			Name:        description,
			Description: strings.TrimSpace(req.Notes),
			UnitAmount:  unitAmount,
			Recurring:   recurring,
		},
		SuccessURL: origin + "/doacoes?success=true&session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  origin + "/doacoes?canceled=true",
		Metadata:   metadata,
	}

	session, err := s.provider.CreateCheckoutSession(ctx, input)
	if err != nil {
		s.logger.Error("checkout session creation failed", zap.String("user_id", principal.ID), zap.Error(err))
		return nil, apperrors.NewPaymentProviderError(err)
	}

	s.metrics.RecordCheckout(string(mode))
	s.logger.Info("checkout session created",
		zap.String("user_id", principal.ID),
		zap.String("session_id", session.ID),
		zap.String("mode", string(mode)),
		zap.Int64("amount", unitAmount))
	return session, nil
}

func minorUnits(amount float64) (int64, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return 0, apperrors.NewInvalidRequest("amount must be a positive number", map[string]any{"amount": amount})
	}
	units := math.Round(amount * 100)
	if units < 1 || units > math.MaxInt64/2 {
		return 0, apperrors.NewInvalidRequest("amount out of range", map[string]any{"amount": amount})
	}
	return int64(units), nil
}

func purposeDescription(purpose domain.DonationPurpose, campaign string) string {
	switch purpose {
	case domain.PurposeTithe:
		return "Dízimo"
	case domain.PurposeOffering:
		return "Oferta"
	case domain.PurposeCampaign:
		if name := strings.TrimSpace(campaign); name != "" {
			return "Campanha: " + name
		}
		return "Campanha"
	case domain.PurposeMission:
		return "Missões"
	case domain.PurposeEvent:
		return "Inscrição em Evento"
	default:
		return "Doação"
	}
}
