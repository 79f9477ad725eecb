package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shalom-church/portal/internal/domain"
)

// ContentRepository stores publishable content.
type ContentRepository interface {
	CreateEvent(ctx context.Context, event *domain.Event) error
	ListEvents(ctx context.Context, limit int) ([]domain.Event, error)
	CreateSermon(ctx context.Context, sermon *domain.Sermon) error
	ListSermons(ctx context.Context, limit int) ([]domain.Sermon, error)
	CreateMinistry(ctx context.Context, ministry *domain.Ministry) error
	ListMinistries(ctx context.Context, limit int) ([]domain.Ministry, error)
	CreateBlogPost(ctx context.Context, post *domain.BlogPost) error
	ListBlogPosts(ctx context.Context, limit int) ([]domain.BlogPost, error)

	// Update* overwrite the editable columns and return ErrNotFound for unknown ids.
	UpdateEvent(ctx context.Context, event *domain.Event) error
	UpdateSermon(ctx context.Context, sermon *domain.Sermon) error
	UpdateMinistry(ctx context.Context, ministry *domain.Ministry) error

	// GetBlogPostBySlug only sees published posts.
	GetBlogPostBySlug(ctx context.Context, slug string) (*domain.BlogPost, error)
	IncrementBlogViews(ctx context.Context, id string) (int, error)
	ListRelatedBlogPosts(ctx context.Context, category, excludeID string, limit int) ([]domain.BlogPost, error)
}

type contentRepository struct {
	pool *pgxpool.Pool
}

// NewContentRepository constructs repository.
func NewContentRepository(pool *pgxpool.Pool) ContentRepository {
	return &contentRepository{pool: pool}
}

func (r *contentRepository) CreateEvent(ctx context.Context, event *domain.Event) error {
	const query = `
        INSERT INTO events (title, description, event_date, location, price, max_participants, created_by)
        VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, '')::uuid)
        RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, query,
		event.Title,
		event.Description,
		event.EventDate,
		event.Location,
		event.Price,
		event.MaxParticipants,
		event.CreatedBy,
	).Scan(&event.ID, &event.CreatedAt)
	return mapPgError(err)
}

func (r *contentRepository) ListEvents(ctx context.Context, limit int) ([]domain.Event, error) {
	const query = `
        SELECT id, title, description, event_date, location, price::float8, max_participants,
               COALESCE(created_by::text, ''), created_at
        FROM events ORDER BY event_date LIMIT $1`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Event, error) {
		var e domain.Event
		err := row.Scan(&e.ID, &e.Title, &e.Description, &e.EventDate, &e.Location, &e.Price, &e.MaxParticipants, &e.CreatedBy, &e.CreatedAt)
		return e, err
	})
}

func (r *contentRepository) CreateSermon(ctx context.Context, sermon *domain.Sermon) error {
	const query = `
        INSERT INTO sermons (title, description, preacher_name, sermon_date, media_url, created_by)
        VALUES ($1, $2, $3, $4, $5, NULLIF($6, '')::uuid)
        RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, query,
		sermon.Title,
		sermon.Description,
		sermon.PreacherName,
		sermon.SermonDate,
		sermon.MediaURL,
		sermon.CreatedBy,
	).Scan(&sermon.ID, &sermon.CreatedAt)
	return mapPgError(err)
}

func (r *contentRepository) ListSermons(ctx context.Context, limit int) ([]domain.Sermon, error) {
	const query = `
        SELECT id, title, description, preacher_name, sermon_date, media_url,
               COALESCE(created_by::text, ''), created_at
        FROM sermons ORDER BY sermon_date DESC LIMIT $1`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Sermon, error) {
		var s domain.Sermon
		err := row.Scan(&s.ID, &s.Title, &s.Description, &s.PreacherName, &s.SermonDate, &s.MediaURL, &s.CreatedBy, &s.CreatedAt)
		return s, err
	})
}

func (r *contentRepository) CreateMinistry(ctx context.Context, ministry *domain.Ministry) error {
	const query = `
        INSERT INTO ministries (name, description, leader_name, created_by)
        VALUES ($1, $2, $3, NULLIF($4, '')::uuid)
        RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, query,
		ministry.Name,
		ministry.Description,
		ministry.LeaderName,
		ministry.CreatedBy,
	).Scan(&ministry.ID, &ministry.CreatedAt)
	return mapPgError(err)
}

func (r *contentRepository) ListMinistries(ctx context.Context, limit int) ([]domain.Ministry, error) {
	const query = `
        SELECT id, name, description, leader_name, COALESCE(created_by::text, ''), created_at
        FROM ministries ORDER BY name LIMIT $1`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Ministry, error) {
		var m domain.Ministry
		err := row.Scan(&m.ID, &m.Name, &m.Description, &m.LeaderName, &m.CreatedBy, &m.CreatedAt)
		return m, err
	})
}

func (r *contentRepository) CreateBlogPost(ctx context.Context, post *domain.BlogPost) error {
	const query = `
        INSERT INTO blog_posts (title, slug, excerpt, content, author_id, author_name, category, published_at)
        VALUES ($1, $2, $3, $4, NULLIF($5, '')::uuid, $6, $7, $8)
        RETURNING id, published_at, created_at`
	err := r.pool.QueryRow(ctx, query,
		post.Title,
		post.Slug,
		post.Excerpt,
		post.Content,
		post.AuthorID,
		post.AuthorName,
		post.Category,
		post.PublishedAt,
	).Scan(&post.ID, &post.PublishedAt, &post.CreatedAt)
	return mapPgError(err)
}

const blogPostColumns = `id, title, slug, excerpt, content, COALESCE(author_id::text, ''), author_name,
               category, view_count, published_at, created_at`

func scanBlogPost(row pgx.CollectableRow) (domain.BlogPost, error) {
	var p domain.BlogPost
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Excerpt, &p.Content, &p.AuthorID, &p.AuthorName,
		&p.Category, &p.ViewCount, &p.PublishedAt, &p.CreatedAt)
	return p, err
}

func (r *contentRepository) ListBlogPosts(ctx context.Context, limit int) ([]domain.BlogPost, error) {
	query := `SELECT ` + blogPostColumns + `
        FROM blog_posts WHERE is_published ORDER BY published_at DESC LIMIT $1`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanBlogPost)
}

func (r *contentRepository) GetBlogPostBySlug(ctx context.Context, slug string) (*domain.BlogPost, error) {
	query := `SELECT ` + blogPostColumns + `
        FROM blog_posts WHERE slug=$1 AND is_published`
	rows, err := r.pool.Query(ctx, query, slug)
	if err != nil {
		return nil, err
	}
	post, err := pgx.CollectExactlyOneRow(rows, scanBlogPost)
	if err != nil {
		return nil, mapPgError(err)
	}
	return &post, nil
}

func (r *contentRepository) IncrementBlogViews(ctx context.Context, id string) (int, error) {
	const query = `UPDATE blog_posts SET view_count = view_count + 1 WHERE id=$1 RETURNING view_count`
	var views int
	if err := r.pool.QueryRow(ctx, query, id).Scan(&views); err != nil {
		return 0, mapPgError(err)
	}
	return views, nil
}

func (r *contentRepository) ListRelatedBlogPosts(ctx context.Context, category, excludeID string, limit int) ([]domain.BlogPost, error) {
	query := `SELECT ` + blogPostColumns + `
        FROM blog_posts
        WHERE category=$1 AND id<>$2 AND is_published
        ORDER BY published_at DESC LIMIT $3`
	rows, err := r.pool.Query(ctx, query, category, excludeID, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanBlogPost)
}

func (r *contentRepository) UpdateEvent(ctx context.Context, event *domain.Event) error {
	const query = `
        UPDATE events
        SET title=$2, description=$3, event_date=$4, location=$5, price=$6, max_participants=$7, updated_at=NOW()
        WHERE id=$1
        RETURNING COALESCE(created_by::text, ''), created_at`
	err := r.pool.QueryRow(ctx, query,
		event.ID,
		event.Title,
		event.Description,
		event.EventDate,
		event.Location,
		event.Price,
		event.MaxParticipants,
	).Scan(&event.CreatedBy, &event.CreatedAt)
	return mapPgError(err)
}

func (r *contentRepository) UpdateSermon(ctx context.Context, sermon *domain.Sermon) error {
	const query = `
        UPDATE sermons
        SET title=$2, description=$3, preacher_name=$4, sermon_date=$5, media_url=$6, updated_at=NOW()
        WHERE id=$1
        RETURNING COALESCE(created_by::text, ''), created_at`
	err := r.pool.QueryRow(ctx, query,
		sermon.ID,
		sermon.Title,
		sermon.Description,
		sermon.PreacherName,
		sermon.SermonDate,
		sermon.MediaURL,
	).Scan(&sermon.CreatedBy, &sermon.CreatedAt)
	return mapPgError(err)
}

func (r *contentRepository) UpdateMinistry(ctx context.Context, ministry *domain.Ministry) error {
	const query = `
        UPDATE ministries
        SET name=$2, description=$3, leader_name=$4, updated_at=NOW()
        WHERE id=$1
        RETURNING COALESCE(created_by::text, ''), created_at`
	err := r.pool.QueryRow(ctx, query,
		ministry.ID,
		ministry.Name,
		ministry.Description,
		ministry.LeaderName,
	).Scan(&ministry.CreatedBy, &ministry.CreatedAt)
	return mapPgError(err)
}
