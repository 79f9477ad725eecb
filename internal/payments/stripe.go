package payments

import (
	"context"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"

	"github.com/shalom-church/portal/internal/domain"
)

// StripeProvider opens hosted checkout sessions on Stripe.
type StripeProvider struct {
	api *client.API
}

// NewStripeProvider builds a provider bound to secretKey. A nil backends value
// uses the default Stripe endpoints.
func NewStripeProvider(secretKey string, backends *stripe.Backends) *StripeProvider {
	return &StripeProvider{api: client.New(secretKey, backends)}
}

// FindOrCreateCustomer reuses the first customer registered under email,
// creating one otherwise.
func (p *StripeProvider) FindOrCreateCustomer(ctx context.Context, email, name string) (string, error) {
	list := &stripe.CustomerListParams{Email: stripe.String(email)}
	list.Limit = stripe.Int64(1)
	list.Context = ctx

	iter := p.api.Customers.List(list)
	if iter.Next() {
		return iter.Customer().ID, nil
	}
	if err := iter.Err(); err != nil {
		return "", err
	}

	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  stripe.String(name),
	}
	params.Context = ctx
	c, err := p.api.Customers.New(params)
	if err != nil {
		return "", err
	}
	return c.ID, nil
}

// CreateCheckoutSession opens a session for a single ad-hoc priced item.
func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, input domain.CheckoutSessionInput) (*domain.CheckoutSession, error) {
	params := checkoutParams(input)
	params.Context = ctx

	sess, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, err
	}
	return &domain.CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

func checkoutParams(input domain.CheckoutSessionInput) *stripe.CheckoutSessionParams {
	item := input.LineItem
	priceData := &stripe.CheckoutSessionLineItemPriceDataParams{
		Currency: stripe.String(item.Currency),
		ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(item.Name),
		},
		UnitAmount: stripe.Int64(item.UnitAmount),
	}
	if item.Description != "" {
		priceData.ProductData.Description = stripe.String(item.Description)
	}
	if item.Recurring != nil {
		priceData.Recurring = &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
			Interval: stripe.String(item.Recurring.Interval),
		}
		if item.Recurring.Count > 1 {
			priceData.Recurring.IntervalCount = stripe.Int64(item.Recurring.Count)
		}
	}

	params := &stripe.CheckoutSessionParams{
		Customer:   stripe.String(input.CustomerID),
		Mode:       stripe.String(string(input.Mode)),
		SuccessURL: stripe.String(input.SuccessURL),
		CancelURL:  stripe.String(input.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: priceData,
				Quantity:  stripe.Int64(1),
			},
		},
	}
	for k, v := range input.Metadata {
		params.AddMetadata(k, v)
	}
	return params
}
