package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/shalom-church/portal/internal/domain"
	"github.com/shalom-church/portal/internal/events"
	"github.com/shalom-church/portal/internal/mailer"
	"github.com/shalom-church/portal/internal/observability"
	"github.com/shalom-church/portal/internal/repository"
	apperrors "github.com/shalom-church/portal/pkg/util"
)

const (
	msgNoSubscribers = "No users to notify"
	msgDispatched    = "Notification emails sent successfully"
)

// EmailSender delivers one email and returns the provider message id.
type EmailSender interface {
	Send(ctx context.Context, email domain.Email) (string, error)
}

// NotificationService fans publication events out to opted-in subscribers.
type NotificationService struct {
	dispatcher     events.Dispatcher
	preferences    repository.PreferenceRepository
	directory      UserDirectory
	sender         EmailSender
	from           string
	siteURL        string
	maxConcurrency int
	logger         *zap.Logger
	metrics        *observability.Metrics
}

// NotificationDependencies groups the collaborators of NotificationService.
type NotificationDependencies struct {
	Dispatcher  events.Dispatcher
	Preferences repository.PreferenceRepository
	Directory   UserDirectory
	Sender      EmailSender
	From        string
	SiteURL     string
	// MaxConcurrency caps simultaneous sends; zero means unbounded.
	MaxConcurrency int
	Logger         *zap.Logger
	Metrics        *observability.Metrics
}

// NewNotificationService creates the service.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher:     deps.Dispatcher,
		preferences:    deps.Preferences,
		directory:      deps.Directory,
		sender:         deps.Sender,
		from:           deps.From,
		siteURL:        strings.TrimRight(deps.SiteURL, "/"),
		maxConcurrency: deps.MaxConcurrency,
		logger:         logger,
		metrics:        deps.Metrics,
	}
}

// RegisterHandlers subscribes to content publication events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventContentPublished, n.handleContentPublished)
}

func (n *NotificationService) handleContentPublished(ctx context.Context, event events.Event) error {
	payload, ok := event.ContentPublishedPayload()
	if !ok {
		n.logger.Warn("content_published without payload", zap.String("event_id", event.ID))
		return nil
	}
	summary, err := n.Dispatch(ctx, payload)
	if err != nil {
		n.logger.Error("notification dispatch failed",
			zap.String("content_id", event.ContentID),
			zap.String("content_type", string(payload.ContentType)),
			zap.Error(err))
		return nil
	}
	n.logger.Info("notification dispatch finished",
		zap.String("content_id", event.ContentID),
		zap.Int("sent", summary.Sent),
		zap.Int("total", summary.Total))
	return nil
}

// Dispatch emails every subscriber opted into the event's content type. Sends
// run concurrently and individual failures only lower the sent count.
func (n *NotificationService) Dispatch(ctx context.Context, event domain.NotificationEvent) (*domain.DispatchSummary, error) {
	if strings.TrimSpace(event.Title) == "" {
		return nil, apperrors.NewInvalidRequest("title is required", map[string]any{"field": "title"})
	}

	userIDs, err := n.preferences.ListSubscriberIDs(ctx, event.ContentType)
	if err != nil {
		return nil, apperrors.NewStoreReadError(err)
	}
	if len(userIDs) == 0 {
		return &domain.DispatchSummary{Message: msgNoSubscribers}, nil
	}

	principals, err := n.directory.ListUsers(ctx)
	if err != nil {
		return nil, apperrors.NewStoreReadError(err)
	}
	emails := make(map[string]string, len(principals))
	for _, p := range principals {
		emails[p.ID] = p.Email
	}

	html, err := mailer.RenderNotification(event, n.siteURL)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	subject := mailer.NotificationSubject(event)

	results := make([]domain.RecipientResult, len(userIDs))
	g, gctx := errgroup.WithContext(ctx)
	if n.maxConcurrency > 0 {
		g.SetLimit(n.maxConcurrency)
	}
	for i, userID := range userIDs {
		g.Go(func() error {
			results[i] = n.sendOne(gctx, userID, emails[userID], subject, html)
			return nil
		})
	}
	_ = g.Wait()

	summary := &domain.DispatchSummary{
		Message: msgDispatched,
		Total:   len(userIDs),
		Results: results,
	}
	for _, r := range results {
		if r.Sent {
			summary.Sent++
		}
		n.metrics.RecordNotification(string(event.ContentType), r.Sent)
	}
	return summary, nil
}

func (n *NotificationService) sendOne(ctx context.Context, userID, address, subject, html string) domain.RecipientResult {
	result := domain.RecipientResult{UserID: userID, Email: address}
	if address == "" {
		result.Error = "no email address for user"
		n.logger.Warn("notification recipient without email", zap.String("user_id", userID))
		return result
	}
	id, err := n.sender.Send(ctx, domain.Email{
		From:    n.from,
		To:      []string{address},
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		result.Error = err.Error()
		n.logger.Warn("notification email failed", zap.String("user_id", userID), zap.Error(err))
		return result
	}
	result.Sent = true
	result.EmailID = id
	return result
}

// EmailPreferences returns the principal's opt-ins.
func (n *NotificationService) EmailPreferences(ctx context.Context, principal *domain.Principal) (*domain.SubscriberPreference, error) {
	if principal == nil || principal.ID == "" {
		return nil, apperrors.NewUnauthenticated("sign in required")
	}
	pref, err := n.preferences.Get(ctx, principal.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &domain.SubscriberPreference{UserID: principal.ID}, nil
		}
		return nil, apperrors.NewStoreReadError(err)
	}
	return pref, nil
}

// UpdateEmailPreferences replaces the principal's opt-ins.
func (n *NotificationService) UpdateEmailPreferences(ctx context.Context, principal *domain.Principal, pref domain.SubscriberPreference) (*domain.SubscriberPreference, error) {
	if principal == nil || principal.ID == "" {
		return nil, apperrors.NewUnauthenticated("sign in required")
	}
	pref.UserID = principal.ID
	if err := n.preferences.Upsert(ctx, &pref); err != nil {
		return nil, apperrors.MapError(err)
	}
	return &pref, nil
}
