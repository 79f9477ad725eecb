package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shalom-church/portal/internal/domain"
)

// PreferenceRepository stores email opt-ins per user.
type PreferenceRepository interface {
	Get(ctx context.Context, userID string) (*domain.SubscriberPreference, error)
	Upsert(ctx context.Context, pref *domain.SubscriberPreference) error
	// ListSubscriberIDs returns users opted into the content type. Unknown types
	// match users opted into anything.
	ListSubscriberIDs(ctx context.Context, contentType domain.ContentType) ([]string, error)
}

type preferenceRepository struct {
	pool *pgxpool.Pool
}

// NewPreferenceRepository constructs repository.
func NewPreferenceRepository(pool *pgxpool.Pool) PreferenceRepository {
	return &preferenceRepository{pool: pool}
}

func (r *preferenceRepository) Get(ctx context.Context, userID string) (*domain.SubscriberPreference, error) {
	const query = `
        SELECT user_id, events, blog_posts, ministries, sermons
        FROM email_preferences WHERE user_id=$1`

	pref := domain.SubscriberPreference{UserID: userID}
	err := r.pool.QueryRow(ctx, query, userID).Scan(&pref.UserID, &pref.Events, &pref.BlogPosts, &pref.Ministries, &pref.Sermons)
	if err = mapPgError(err); err != nil {
		if errors.Is(err, ErrNotFound) {
			return &domain.SubscriberPreference{UserID: userID}, nil
		}
		return nil, err
	}
	return &pref, nil
}

func (r *preferenceRepository) Upsert(ctx context.Context, pref *domain.SubscriberPreference) error {
	const query = `
        INSERT INTO email_preferences (user_id, events, blog_posts, ministries, sermons)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (user_id) DO UPDATE SET
            events=EXCLUDED.events,
            blog_posts=EXCLUDED.blog_posts,
            ministries=EXCLUDED.ministries,
            sermons=EXCLUDED.sermons,
            updated_at=NOW()`

	_, err := r.pool.Exec(ctx, query, pref.UserID, pref.Events, pref.BlogPosts, pref.Ministries, pref.Sermons)
	return err
}

func (r *preferenceRepository) ListSubscriberIDs(ctx context.Context, contentType domain.ContentType) ([]string, error) {
	query := `SELECT user_id FROM email_preferences WHERE ` + preferenceFilter(contentType)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func preferenceFilter(contentType domain.ContentType) string {
	switch contentType {
	case domain.ContentEvent:
		return "events"
	case domain.ContentBlog:
		return "blog_posts"
	case domain.ContentMinistry:
		return "ministries"
	case domain.ContentSermon:
		return "sermons"
	default:
		return "(events OR blog_posts OR ministries OR sermons)"
	}
}
