package mailer

import (
	"context"
	"errors"

	"github.com/resend/resend-go/v2"

	"github.com/shalom-church/portal/internal/domain"
)

// ResendSender delivers emails through the Resend API.
type ResendSender struct {
	client *resend.Client
}

// NewResendSender builds a sender for the given API key.
func NewResendSender(apiKey string) *ResendSender {
	return &ResendSender{client: resend.NewClient(apiKey)}
}

// Send delivers one email and returns the provider message id.
func (s *ResendSender) Send(ctx context.Context, email domain.Email) (string, error) {
	if s == nil || s.client == nil || s.client.ApiKey == "" {
		return "", errors.New("email provider not configured")
	}
	resp, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    email.From,
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTML,
	})
	if err != nil {
		return "", err
	}
	return resp.Id, nil
}
