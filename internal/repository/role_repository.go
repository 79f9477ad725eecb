package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shalom-church/portal/internal/domain"
)

// RoleRepository persists role assignments, one per user.
type RoleRepository interface {
	GetByUserID(ctx context.Context, userID string) (*domain.RoleAssignment, error)
	// Insert fails with ErrDuplicate when the user already has an assignment.
	Insert(ctx context.Context, userID string, role domain.Role) (*domain.RoleAssignment, error)
	Upsert(ctx context.Context, userID string, role domain.Role) (*domain.RoleAssignment, error)
	List(ctx context.Context) ([]domain.RoleAssignment, error)
}

type roleRepository struct {
	pool *pgxpool.Pool
}

// NewRoleRepository constructs repository.
func NewRoleRepository(pool *pgxpool.Pool) RoleRepository {
	return &roleRepository{pool: pool}
}

func (r *roleRepository) GetByUserID(ctx context.Context, userID string) (*domain.RoleAssignment, error) {
	const query = `
        SELECT id, user_id, role::text, created_at
        FROM user_roles WHERE user_id=$1`

	var ra domain.RoleAssignment
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&ra.ID, &ra.UserID, &ra.Role, &ra.CreatedAt); err != nil {
		return nil, mapPgError(err)
	}
	return &ra, nil
}

func (r *roleRepository) Insert(ctx context.Context, userID string, role domain.Role) (*domain.RoleAssignment, error) {
	const query = `
        INSERT INTO user_roles (user_id, role)
        VALUES ($1, $2::user_role)
        RETURNING id, user_id, role::text, created_at`

	var ra domain.RoleAssignment
	if err := r.pool.QueryRow(ctx, query, userID, string(role)).Scan(&ra.ID, &ra.UserID, &ra.Role, &ra.CreatedAt); err != nil {
		return nil, mapPgError(err)
	}
	return &ra, nil
}

func (r *roleRepository) Upsert(ctx context.Context, userID string, role domain.Role) (*domain.RoleAssignment, error) {
	const query = `
        INSERT INTO user_roles (user_id, role)
        VALUES ($1, $2::user_role)
        ON CONFLICT (user_id) DO UPDATE SET role=EXCLUDED.role
        RETURNING id, user_id, role::text, created_at`

	var ra domain.RoleAssignment
	if err := r.pool.QueryRow(ctx, query, userID, string(role)).Scan(&ra.ID, &ra.UserID, &ra.Role, &ra.CreatedAt); err != nil {
		return nil, mapPgError(err)
	}
	return &ra, nil
}

func (r *roleRepository) List(ctx context.Context) ([]domain.RoleAssignment, error) {
	const query = `SELECT id, user_id, role::text, created_at FROM user_roles`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.RoleAssignment
	for rows.Next() {
		var ra domain.RoleAssignment
		if err := rows.Scan(&ra.ID, &ra.UserID, &ra.Role, &ra.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, ra)
	}
	return out, rows.Err()
}
