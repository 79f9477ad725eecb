package domain

// DonationPurpose classifies a contribution.
type DonationPurpose string

const (
	PurposeTithe    DonationPurpose = "tithe"
	PurposeOffering DonationPurpose = "offering"
	PurposeCampaign DonationPurpose = "campaign"
	PurposeMission  DonationPurpose = "mission"
	PurposeEvent    DonationPurpose = "event"
)

// Frequency is the internal recurrence vocabulary.
type Frequency string

const (
	FrequencyWeekly    Frequency = "weekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyYearly    Frequency = "yearly"
)

// PaymentIntentRequest is a donor's request for a hosted checkout.
type PaymentIntentRequest struct {
	Amount       float64
	Purpose      DonationPurpose
	IsRecurring  bool
	Frequency    Frequency
	CampaignName string
	Notes        string
	EventID      string
	// ReturnOrigin is the site origin the provider redirects back to.
	ReturnOrigin string
}

// CheckoutMode mirrors the provider's session modes.
type CheckoutMode string

const (
	CheckoutModePayment      CheckoutMode = "payment"
	CheckoutModeSubscription CheckoutMode = "subscription"
)

// RecurringInterval is the provider-side billing interval.
type RecurringInterval struct {
	Interval string
	Count    int64
}

// CheckoutLineItem is the single priced item of a session.
type CheckoutLineItem struct {
	Currency    string
	Name        string
	Description string
	UnitAmount  int64
	Recurring   *RecurringInterval
}

// CheckoutSessionInput is everything the provider needs to open a session.
type CheckoutSessionInput struct {
	CustomerID string
	Mode       CheckoutMode
	LineItem   CheckoutLineItem
	SuccessURL string
	CancelURL  string
	Metadata   map[string]string
}

// CheckoutSession is the provider's answer.
type CheckoutSession struct {
	ID  string
	URL string
}
