package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shalom-church/portal/internal/domain"
)

// ContactRepository stores contact form submissions.
type ContactRepository interface {
	Create(ctx context.Context, msg *domain.ContactMessage) error
}

type contactRepository struct {
	pool *pgxpool.Pool
}

// NewContactRepository constructs repository.
func NewContactRepository(pool *pgxpool.Pool) ContactRepository {
	return &contactRepository{pool: pool}
}

func (r *contactRepository) Create(ctx context.Context, msg *domain.ContactMessage) error {
	const query = `
        INSERT INTO contact_messages (name, email, phone, subject, message, message_type)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		msg.Name,
		msg.Email,
		msg.Phone,
		msg.Subject,
		msg.Message,
		msg.MessageType,
	).Scan(&msg.ID, &msg.CreatedAt)
}
