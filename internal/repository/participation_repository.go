package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shalom-church/portal/internal/domain"
)

// ParticipationRepository stores event registrations and ministry memberships.
// Both tables keep one row per pair; leaving flips the status instead of deleting.
type ParticipationRepository interface {
	// UpsertRegistration returns ErrNotFound when the event or user does not exist.
	UpsertRegistration(ctx context.Context, reg *domain.EventRegistration) error
	// SetRegistrationStatus returns ErrNotFound when no registration exists.
	SetRegistrationStatus(ctx context.Context, userID, eventID string, status domain.RegistrationStatus) (*domain.EventRegistration, error)
	GetRegistration(ctx context.Context, userID, eventID string) (*domain.EventRegistration, error)

	UpsertMembership(ctx context.Context, m *domain.MinistryMembership) error
	SetMembershipStatus(ctx context.Context, userID, ministryID string, status domain.MembershipStatus) (*domain.MinistryMembership, error)
	GetMembership(ctx context.Context, userID, ministryID string) (*domain.MinistryMembership, error)
}

type participationRepository struct {
	pool *pgxpool.Pool
}

// NewParticipationRepository constructs repository.
func NewParticipationRepository(pool *pgxpool.Pool) ParticipationRepository {
	return &participationRepository{pool: pool}
}

func (r *participationRepository) UpsertRegistration(ctx context.Context, reg *domain.EventRegistration) error {
	const query = `
        INSERT INTO event_registrations (user_id, event_id, status, notes)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (user_id, event_id) DO UPDATE
        SET status=EXCLUDED.status, notes=EXCLUDED.notes, registered_at=NOW()
        RETURNING id, registered_at`
	err := r.pool.QueryRow(ctx, query, reg.UserID, reg.EventID, string(reg.Status), reg.Notes).
		Scan(&reg.ID, &reg.RegisteredAt)
	return mapPgError(err)
}

func (r *participationRepository) SetRegistrationStatus(ctx context.Context, userID, eventID string, status domain.RegistrationStatus) (*domain.EventRegistration, error) {
	const query = `
        UPDATE event_registrations SET status=$3
        WHERE user_id=$1 AND event_id=$2
        RETURNING id, user_id, event_id, status, notes, registered_at`
	var reg domain.EventRegistration
	err := r.pool.QueryRow(ctx, query, userID, eventID, string(status)).
		Scan(&reg.ID, &reg.UserID, &reg.EventID, &reg.Status, &reg.Notes, &reg.RegisteredAt)
	if err != nil {
		return nil, mapPgError(err)
	}
	return &reg, nil
}

func (r *participationRepository) GetRegistration(ctx context.Context, userID, eventID string) (*domain.EventRegistration, error) {
	const query = `
        SELECT id, user_id, event_id, status, notes, registered_at
        FROM event_registrations WHERE user_id=$1 AND event_id=$2`
	var reg domain.EventRegistration
	err := r.pool.QueryRow(ctx, query, userID, eventID).
		Scan(&reg.ID, &reg.UserID, &reg.EventID, &reg.Status, &reg.Notes, &reg.RegisteredAt)
	if err != nil {
		return nil, mapPgError(err)
	}
	return &reg, nil
}

func (r *participationRepository) UpsertMembership(ctx context.Context, m *domain.MinistryMembership) error {
	const query = `
        INSERT INTO ministry_memberships (user_id, ministry_id, status, role)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (user_id, ministry_id) DO UPDATE
        SET status=EXCLUDED.status, joined_at=NOW()
        RETURNING id, role, joined_at`
	err := r.pool.QueryRow(ctx, query, m.UserID, m.MinistryID, string(m.Status), m.Role).
		Scan(&m.ID, &m.Role, &m.JoinedAt)
	return mapPgError(err)
}

func (r *participationRepository) SetMembershipStatus(ctx context.Context, userID, ministryID string, status domain.MembershipStatus) (*domain.MinistryMembership, error) {
	const query = `
        UPDATE ministry_memberships SET status=$3
        WHERE user_id=$1 AND ministry_id=$2
        RETURNING id, user_id, ministry_id, status, role, joined_at`
	var m domain.MinistryMembership
	err := r.pool.QueryRow(ctx, query, userID, ministryID, string(status)).
		Scan(&m.ID, &m.UserID, &m.MinistryID, &m.Status, &m.Role, &m.JoinedAt)
	if err != nil {
		return nil, mapPgError(err)
	}
	return &m, nil
}

func (r *participationRepository) GetMembership(ctx context.Context, userID, ministryID string) (*domain.MinistryMembership, error) {
	const query = `
        SELECT id, user_id, ministry_id, status, role, joined_at
        FROM ministry_memberships WHERE user_id=$1 AND ministry_id=$2`
	var m domain.MinistryMembership
	err := r.pool.QueryRow(ctx, query, userID, ministryID).
		Scan(&m.ID, &m.UserID, &m.MinistryID, &m.Status, &m.Role, &m.JoinedAt)
	if err != nil {
		return nil, mapPgError(err)
	}
	return &m, nil
}
