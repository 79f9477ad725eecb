package service

import (
	"context"
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"github.com/shalom-church/portal/internal/domain"
	"github.com/shalom-church/portal/internal/mailer"
	"github.com/shalom-church/portal/internal/repository"
	apperrors "github.com/shalom-church/portal/pkg/util"
)

const defaultMessageType = "geral"

// ContactService handles the public contact form.
type ContactService struct {
	messages repository.ContactRepository
	sender   EmailSender
	from     string
	inbox    string
	logger   *zap.Logger
}

// ContactDependencies groups the collaborators of ContactService.
type ContactDependencies struct {
	Messages repository.ContactRepository
	Sender   EmailSender
	From     string
	Inbox    string
	Logger   *zap.Logger
}

// NewContactService constructs the service.
func NewContactService(deps ContactDependencies) *ContactService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContactService{
		messages: deps.Messages,
		sender:   deps.Sender,
		from:     deps.From,
		inbox:    deps.Inbox,
		logger:   logger,
	}
}

// Send stores the message, acknowledges the sender and forwards it to the church inbox.
func (s *ContactService) Send(ctx context.Context, msg domain.ContactMessage) (*domain.ContactResult, error) {
	msg.Name = strings.TrimSpace(msg.Name)
	msg.Email = strings.TrimSpace(msg.Email)
	msg.Phone = strings.TrimSpace(msg.Phone)
	msg.Subject = strings.TrimSpace(msg.Subject)
	msg.Message = strings.TrimSpace(msg.Message)
	msg.MessageType = strings.TrimSpace(msg.MessageType)
	if msg.MessageType == "" {
		msg.MessageType = defaultMessageType
	}
	if err := validateContact(msg); err != nil {
		return nil, err
	}

	if s.messages != nil {
		if err := s.messages.Create(ctx, &msg); err != nil {
			s.logger.Warn("contact message not stored", zap.String("email", msg.Email), zap.Error(err))
		}
	}

	confirmationHTML, err := mailer.RenderContactConfirmation(msg)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	confirmationID, err := s.sender.Send(ctx, domain.Email{
		From:    s.from,
		To:      []string{msg.Email},
		Subject: mailer.ContactConfirmationSubject(),
		HTML:    confirmationHTML,
	})
	if err != nil {
		s.logger.Error("contact confirmation email failed", zap.Error(err))
		return nil, apperrors.NewEmailProviderError(err)
	}

	notificationHTML, err := mailer.RenderContactNotification(msg)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	notificationID, err := s.sender.Send(ctx, domain.Email{
		From:    s.from,
		To:      []string{s.inbox},
		Subject: mailer.ContactNotificationSubject(msg),
		HTML:    notificationHTML,
	})
	if err != nil {
		s.logger.Error("contact inbox email failed", zap.Error(err))
		return nil, apperrors.NewEmailProviderError(err)
	}

	s.logger.Info("contact message delivered",
		zap.String("confirmation_id", confirmationID),
		zap.String("notification_id", notificationID))
	return &domain.ContactResult{
		Success:             true,
		ConfirmationEmailID: confirmationID,
		NotificationEmailID: notificationID,
	}, nil
}

func validateContact(msg domain.ContactMessage) error {
	fields := []struct{ name, value string }{
		{"name", msg.Name},
		{"email", msg.Email},
		{"subject", msg.Subject},
		{"message", msg.Message},
	}
	var missing []string
	for _, f := range fields {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return apperrors.NewInvalidRequest("missing required fields", map[string]any{"fields": missing})
	}
	if _, err := mail.ParseAddress(msg.Email); err != nil {
		return apperrors.NewInvalidRequest("invalid email address", map[string]any{"field": "email"})
	}
	return nil
}
