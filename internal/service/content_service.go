package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/shalom-church/portal/internal/auth"
	"github.com/shalom-church/portal/internal/domain"
	"github.com/shalom-church/portal/internal/events"
	"github.com/shalom-church/portal/internal/repository"
	apperrors "github.com/shalom-church/portal/pkg/util"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
	relatedPostLimit = 3
)

// ContentService publishes events, sermons, ministries and blog posts.
type ContentService struct {
	content    repository.ContentRepository
	roles      auth.RoleResolver
	dispatcher events.Dispatcher
	logger     *zap.Logger
	pending    sync.WaitGroup
}

// ContentDependencies groups the collaborators of ContentService.
type ContentDependencies struct {
	Content    repository.ContentRepository
	Roles      auth.RoleResolver
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewContentService constructs the service.
func NewContentService(deps ContentDependencies) *ContentService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContentService{
		content:    deps.Content,
		roles:      deps.Roles,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// CreateEvent stores an event and announces it.
func (s *ContentService) CreateEvent(ctx context.Context, actor *domain.Principal, event domain.Event) (*domain.Event, error) {
	if err := s.requireAdmin(ctx, actor); err != nil {
		return nil, err
	}
	if err := validateEvent(&event); err != nil {
		return nil, err
	}
	event.CreatedBy = actor.ID

	if err := s.content.CreateEvent(ctx, &event); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.announce(ctx, actor, event.ID, domain.NotificationEvent{
		ContentType: domain.ContentEvent,
		Title:       event.Title,
		Description: event.Description,
		ContentID:   event.ID,
		EventDate:   event.EventDate.Format(time.RFC3339),
	})
	return &event, nil
}

// CreateSermon stores a sermon and announces it.
func (s *ContentService) CreateSermon(ctx context.Context, actor *domain.Principal, sermon domain.Sermon) (*domain.Sermon, error) {
	if err := s.requireAdmin(ctx, actor); err != nil {
		return nil, err
	}
	if err := validateSermon(&sermon); err != nil {
		return nil, err
	}
	sermon.CreatedBy = actor.ID

	if err := s.content.CreateSermon(ctx, &sermon); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.announce(ctx, actor, sermon.ID, domain.NotificationEvent{
		ContentType:  domain.ContentSermon,
		Title:        sermon.Title,
		Description:  sermon.Description,
		ContentID:    sermon.ID,
		PreacherName: sermon.PreacherName,
	})
	return &sermon, nil
}

// CreateMinistry stores a ministry and announces it.
func (s *ContentService) CreateMinistry(ctx context.Context, actor *domain.Principal, ministry domain.Ministry) (*domain.Ministry, error) {
	if err := s.requireAdmin(ctx, actor); err != nil {
		return nil, err
	}
	if err := validateMinistry(&ministry); err != nil {
		return nil, err
	}
	ministry.CreatedBy = actor.ID

	if err := s.content.CreateMinistry(ctx, &ministry); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.announce(ctx, actor, ministry.ID, domain.NotificationEvent{
		ContentType: domain.ContentMinistry,
		Title:       ministry.Name,
		Description: ministry.Description,
		ContentID:   ministry.ID,
	})
	return &ministry, nil
}

// CreateBlogPost stores a post under a unique slug and announces it.
func (s *ContentService) CreateBlogPost(ctx context.Context, actor *domain.Principal, post domain.BlogPost) (*domain.BlogPost, error) {
	if err := s.requireAdmin(ctx, actor); err != nil {
		return nil, err
	}
	post.Title = strings.TrimSpace(post.Title)
	post.Category = strings.TrimSpace(post.Category)
	if post.Title == "" {
		return nil, apperrors.NewInvalidRequest("title is required", map[string]any{"field": "title"})
	}
	if strings.TrimSpace(post.Content) == "" {
		return nil, apperrors.NewInvalidRequest("content is required", map[string]any{"field": "content"})
	}
	post.Slug = Slugify(post.Slug)
	if post.Slug == "" {
		post.Slug = Slugify(post.Title)
	}
	if post.Slug == "" {
		return nil, apperrors.NewInvalidRequest("title must contain letters or digits", map[string]any{"field": "title"})
	}
	if strings.TrimSpace(post.AuthorName) == "" {
		post.AuthorName = actor.DisplayName()
	}
	if post.PublishedAt.IsZero() {
		post.PublishedAt = time.Now().UTC()
	}
	post.AuthorID = actor.ID

	if err := s.content.CreateBlogPost(ctx, &post); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("slug already in use", map[string]any{"slug": post.Slug})
		}
		return nil, apperrors.MapError(err)
	}
	s.announce(ctx, actor, post.ID, domain.NotificationEvent{
		ContentType: domain.ContentBlog,
		Title:       post.Title,
		Description: post.Excerpt,
		ContentID:   post.ID,
		AuthorName:  post.AuthorName,
	})
	return &post, nil
}

// UpdateEvent overwrites an existing event. Edits are not announced.
func (s *ContentService) UpdateEvent(ctx context.Context, actor *domain.Principal, event domain.Event) (*domain.Event, error) {
	if err := s.requireAdmin(ctx, actor); err != nil {
		return nil, err
	}
	if err := requireID(event.ID); err != nil {
		return nil, err
	}
	if err := validateEvent(&event); err != nil {
		return nil, err
	}
	if err := s.content.UpdateEvent(ctx, &event); err != nil {
		return nil, notFoundOr(err, "event", event.ID)
	}
	return &event, nil
}

// UpdateSermon overwrites an existing sermon.
func (s *ContentService) UpdateSermon(ctx context.Context, actor *domain.Principal, sermon domain.Sermon) (*domain.Sermon, error) {
	if err := s.requireAdmin(ctx, actor); err != nil {
		return nil, err
	}
	if err := requireID(sermon.ID); err != nil {
		return nil, err
	}
	if err := validateSermon(&sermon); err != nil {
		return nil, err
	}
	if err := s.content.UpdateSermon(ctx, &sermon); err != nil {
		return nil, notFoundOr(err, "sermon", sermon.ID)
	}
	return &sermon, nil
}

// UpdateMinistry overwrites an existing ministry.
func (s *ContentService) UpdateMinistry(ctx context.Context, actor *domain.Principal, ministry domain.Ministry) (*domain.Ministry, error) {
	if err := s.requireAdmin(ctx, actor); err != nil {
		return nil, err
	}
	if err := requireID(ministry.ID); err != nil {
		return nil, err
	}
	if err := validateMinistry(&ministry); err != nil {
		return nil, err
	}
	if err := s.content.UpdateMinistry(ctx, &ministry); err != nil {
		return nil, notFoundOr(err, "ministry", ministry.ID)
	}
	return &ministry, nil
}

// GetBlogArticle opens a published post by slug, counts the view and loads up
// to three posts of the same category. Counting and related posts are best effort.
func (s *ContentService) GetBlogArticle(ctx context.Context, slug string) (*domain.BlogArticle, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, apperrors.NewInvalidRequest("slug is required", map[string]any{"field": "slug"})
	}
	post, err := s.content.GetBlogPostBySlug(ctx, slug)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewNotFound("blog post", map[string]any{"slug": slug})
	}
	if err != nil {
		return nil, apperrors.NewStoreReadError(err)
	}

	if views, err := s.content.IncrementBlogViews(ctx, post.ID); err != nil {
		s.logger.Warn("blog view not counted", zap.String("post_id", post.ID), zap.Error(err))
	} else {
		post.ViewCount = views
	}

	article := &domain.BlogArticle{Post: *post, Related: []domain.BlogPost{}}
	if post.Category == "" {
		return article, nil
	}
	related, err := s.content.ListRelatedBlogPosts(ctx, post.Category, post.ID, relatedPostLimit)
	if err != nil {
		s.logger.Warn("related posts unavailable", zap.String("post_id", post.ID), zap.Error(err))
		return article, nil
	}
	if related != nil {
		article.Related = related
	}
	return article, nil
}

// ListEvents returns the most recent events.
func (s *ContentService) ListEvents(ctx context.Context, limit int) ([]domain.Event, error) {
	items, err := s.content.ListEvents(ctx, clampLimit(limit))
	if err != nil {
		return nil, apperrors.NewStoreReadError(err)
	}
	return items, nil
}

// ListSermons returns the most recent sermons.
func (s *ContentService) ListSermons(ctx context.Context, limit int) ([]domain.Sermon, error) {
	items, err := s.content.ListSermons(ctx, clampLimit(limit))
	if err != nil {
		return nil, apperrors.NewStoreReadError(err)
	}
	return items, nil
}

// ListMinistries returns ministries.
func (s *ContentService) ListMinistries(ctx context.Context, limit int) ([]domain.Ministry, error) {
	items, err := s.content.ListMinistries(ctx, clampLimit(limit))
	if err != nil {
		return nil, apperrors.NewStoreReadError(err)
	}
	return items, nil
}

// ListBlogPosts returns the most recent posts.
func (s *ContentService) ListBlogPosts(ctx context.Context, limit int) ([]domain.BlogPost, error) {
	items, err := s.content.ListBlogPosts(ctx, clampLimit(limit))
	if err != nil {
		return nil, apperrors.NewStoreReadError(err)
	}
	return items, nil
}

// Wait blocks until announcements started by this service have finished.
func (s *ContentService) Wait() {
	s.pending.Wait()
}

func (s *ContentService) requireAdmin(ctx context.Context, actor *domain.Principal) error {
	if actor == nil || actor.ID == "" {
		return apperrors.NewUnauthenticated("sign in required")
	}
	role, err := s.roles.ResolveRole(ctx, actor)
	if err != nil {
		return err
	}
	if role != domain.RoleAdmin {
		return apperrors.NewForbidden("admin role required")
	}
	return nil
}

// announce publishes content_published in the background. The created record
// stands regardless of the outcome.
func (s *ContentService) announce(ctx context.Context, actor *domain.Principal, contentID string, payload domain.NotificationEvent) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventContentPublished,
		ContentID: contentID,
		ActorID:   actor.ID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
	bg := context.WithoutCancel(ctx)
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.dispatcher.Publish(bg, event); err != nil {
			s.logger.Warn("content_published not delivered",
				zap.String("content_id", contentID), zap.Error(err))
		}
	}()
}

func validateEvent(event *domain.Event) error {
	event.Title = strings.TrimSpace(event.Title)
	if event.Title == "" {
		return apperrors.NewInvalidRequest("title is required", map[string]any{"field": "title"})
	}
	if event.EventDate.IsZero() {
		return apperrors.NewInvalidRequest("event_date is required", map[string]any{"field": "event_date"})
	}
	if event.Price < 0 {
		return apperrors.NewInvalidRequest("price cannot be negative", map[string]any{"field": "price"})
	}
	if event.MaxParticipants != nil && *event.MaxParticipants <= 0 {
		return apperrors.NewInvalidRequest("max_participants must be positive", map[string]any{"field": "max_participants"})
	}
	return nil
}

func validateSermon(sermon *domain.Sermon) error {
	sermon.Title = strings.TrimSpace(sermon.Title)
	sermon.PreacherName = strings.TrimSpace(sermon.PreacherName)
	if sermon.Title == "" {
		return apperrors.NewInvalidRequest("title is required", map[string]any{"field": "title"})
	}
	if sermon.PreacherName == "" {
		return apperrors.NewInvalidRequest("preacher_name is required", map[string]any{"field": "preacher_name"})
	}
	if sermon.SermonDate.IsZero() {
		sermon.SermonDate = time.Now().UTC()
	}
	return nil
}

func validateMinistry(ministry *domain.Ministry) error {
	ministry.Name = strings.TrimSpace(ministry.Name)
	if ministry.Name == "" {
		return apperrors.NewInvalidRequest("name is required", map[string]any{"field": "name"})
	}
	return nil
}

func requireID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.NewInvalidRequest("invalid id", map[string]any{"id": id})
	}
	return nil
}

func notFoundOr(err error, resource, id string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound(resource, map[string]any{"id": id})
	}
	return apperrors.MapError(err)
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

var stripMarks = runes.Remove(runes.In(unicode.Mn))

// Slugify lowercases s, strips accents and joins words with hyphens.
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, stripMarks, norm.NFC)
	plain, _, err := transform.String(t, strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		plain = strings.ToLower(s)
	}

	var b strings.Builder
	dash := false
	for _, r := range plain {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
