package dto

// DonationPaymentRequest is the body of POST /create-donation-payment.
type DonationPaymentRequest struct {
	Amount             float64 `json:"amount"`
	DonationType       string  `json:"donationType"`
	IsRecurring        bool    `json:"isRecurring"`
	RecurringFrequency string  `json:"recurringFrequency"`
	CampaignName       string  `json:"campaignName"`
	Notes              string  `json:"notes"`
	EventID            string  `json:"eventId"`
}

// DonationPaymentResponse carries the hosted checkout URL.
type DonationPaymentResponse struct {
	URL string `json:"url"`
}

// ContactEmailRequest is the body of POST /send-contact-email.
type ContactEmailRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Subject     string `json:"subject"`
	Message     string `json:"message"`
	MessageType string `json:"message_type"`
}

// FunctionError is the error body of the function endpoints.
type FunctionError struct {
	Error string `json:"error"`
}
