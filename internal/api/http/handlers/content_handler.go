package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/shalom-church/portal/internal/api/dto"
	"github.com/shalom-church/portal/internal/auth"
	"github.com/shalom-church/portal/internal/domain"
	apperrors "github.com/shalom-church/portal/pkg/util"
)

// ContentService publishes and lists church content.
type ContentService interface {
	CreateEvent(ctx context.Context, actor *domain.Principal, event domain.Event) (*domain.Event, error)
	CreateSermon(ctx context.Context, actor *domain.Principal, sermon domain.Sermon) (*domain.Sermon, error)
	CreateMinistry(ctx context.Context, actor *domain.Principal, ministry domain.Ministry) (*domain.Ministry, error)
	CreateBlogPost(ctx context.Context, actor *domain.Principal, post domain.BlogPost) (*domain.BlogPost, error)
	ListEvents(ctx context.Context, limit int) ([]domain.Event, error)
	ListSermons(ctx context.Context, limit int) ([]domain.Sermon, error)
	ListMinistries(ctx context.Context, limit int) ([]domain.Ministry, error)
	ListBlogPosts(ctx context.Context, limit int) ([]domain.BlogPost, error)
	UpdateEvent(ctx context.Context, actor *domain.Principal, event domain.Event) (*domain.Event, error)
	UpdateSermon(ctx context.Context, actor *domain.Principal, sermon domain.Sermon) (*domain.Sermon, error)
	UpdateMinistry(ctx context.Context, actor *domain.Principal, ministry domain.Ministry) (*domain.Ministry, error)
	GetBlogArticle(ctx context.Context, slug string) (*domain.BlogArticle, error)
}

// ContentHandler exposes events, sermons, ministries and blog posts.
type ContentHandler struct {
	content ContentService
}

// NewContentHandler constructs handler.
func NewContentHandler(content ContentService) *ContentHandler {
	return &ContentHandler{content: content}
}

// ListEvents GET /api/events.
func (h *ContentHandler) ListEvents(c *fiber.Ctx) error {
	items, err := h.content.ListEvents(c.UserContext(), c.QueryInt("limit", 0))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateEvent POST /api/events.
func (h *ContentHandler) CreateEvent(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	event, err := parseEvent(c)
	if err != nil {
		return err
	}
	created, err := h.content.CreateEvent(c.UserContext(), principal, event)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": created})
}

// UpdateEvent PUT /api/events/:id.
func (h *ContentHandler) UpdateEvent(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	event, err := parseEvent(c)
	if err != nil {
		return err
	}
	event.ID = c.Params("id")
	updated, err := h.content.UpdateEvent(c.UserContext(), principal, event)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": updated})
}

// ListSermons GET /api/sermons.
func (h *ContentHandler) ListSermons(c *fiber.Ctx) error {
	items, err := h.content.ListSermons(c.UserContext(), c.QueryInt("limit", 0))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateSermon POST /api/sermons.
func (h *ContentHandler) CreateSermon(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	sermon, err := parseSermon(c)
	if err != nil {
		return err
	}
	created, err := h.content.CreateSermon(c.UserContext(), principal, sermon)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": created})
}

// UpdateSermon PUT /api/sermons/:id.
func (h *ContentHandler) UpdateSermon(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	sermon, err := parseSermon(c)
	if err != nil {
		return err
	}
	sermon.ID = c.Params("id")
	updated, err := h.content.UpdateSermon(c.UserContext(), principal, sermon)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": updated})
}

// ListMinistries GET /api/ministries.
func (h *ContentHandler) ListMinistries(c *fiber.Ctx) error {
	items, err := h.content.ListMinistries(c.UserContext(), c.QueryInt("limit", 0))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateMinistry POST /api/ministries.
func (h *ContentHandler) CreateMinistry(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	ministry, err := parseMinistry(c)
	if err != nil {
		return err
	}
	created, err := h.content.CreateMinistry(c.UserContext(), principal, ministry)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": created})
}

// UpdateMinistry PUT /api/ministries/:id.
func (h *ContentHandler) UpdateMinistry(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	ministry, err := parseMinistry(c)
	if err != nil {
		return err
	}
	ministry.ID = c.Params("id")
	updated, err := h.content.UpdateMinistry(c.UserContext(), principal, ministry)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": updated})
}

// ListBlogPosts GET /api/blog.
func (h *ContentHandler) ListBlogPosts(c *fiber.Ctx) error {
	items, err := h.content.ListBlogPosts(c.UserContext(), c.QueryInt("limit", 0))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateBlogPost POST /api/blog.
func (h *ContentHandler) CreateBlogPost(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	var req dto.CreateBlogPostRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidRequest("invalid payload", nil)
	}
	post, err := h.content.CreateBlogPost(c.UserContext(), principal, domain.BlogPost{
		Title:      req.Title,
		Slug:       req.Slug,
		Excerpt:    req.Excerpt,
		Content:    req.Content,
		AuthorName: req.AuthorName,
		Category:   req.Category,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": post})
}

// GetBlogArticle GET /api/blog/:slug.
func (h *ContentHandler) GetBlogArticle(c *fiber.Ctx) error {
	article, err := h.content.GetBlogArticle(c.UserContext(), c.Params("slug"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": article})
}

func parseEvent(c *fiber.Ctx) (domain.Event, error) {
	var req dto.CreateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.Event{}, apperrors.NewInvalidRequest("invalid payload", nil)
	}
	date, err := parseDate(req.EventDate, "event_date")
	if err != nil {
		return domain.Event{}, err
	}
	return domain.Event{
		Title:           req.Title,
		Description:     req.Description,
		EventDate:       date,
		Location:        req.Location,
		Price:           req.Price,
		MaxParticipants: req.MaxParticipants,
	}, nil
}

func parseSermon(c *fiber.Ctx) (domain.Sermon, error) {
	var req dto.CreateSermonRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.Sermon{}, apperrors.NewInvalidRequest("invalid payload", nil)
	}
	var date time.Time
	if req.SermonDate != "" {
		parsed, err := parseDate(req.SermonDate, "sermon_date")
		if err != nil {
			return domain.Sermon{}, err
		}
		date = parsed
	}
	return domain.Sermon{
		Title:        req.Title,
		Description:  req.Description,
		PreacherName: req.PreacherName,
		SermonDate:   date,
		MediaURL:     req.MediaURL,
	}, nil
}

func parseMinistry(c *fiber.Ctx) (domain.Ministry, error) {
	var req dto.CreateMinistryRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.Ministry{}, apperrors.NewInvalidRequest("invalid payload", nil)
	}
	return domain.Ministry{
		Name:        req.Name,
		Description: req.Description,
		LeaderName:  req.LeaderName,
	}, nil
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02"}

func parseDate(raw, field string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperrors.NewInvalidRequest("invalid date", map[string]any{"field": field, "value": raw})
}
