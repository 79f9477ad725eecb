package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/shalom-church/portal/internal/domain"
	"github.com/shalom-church/portal/internal/repository"
	apperrors "github.com/shalom-church/portal/pkg/util"
)

// ParticipationService lets members register for events and join ministries.
type ParticipationService struct {
	repo   repository.ParticipationRepository
	logger *zap.Logger
}

// NewParticipationService constructs the service.
func NewParticipationService(repo repository.ParticipationRepository, logger *zap.Logger) *ParticipationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ParticipationService{repo: repo, logger: logger}
}

// RegisterForEvent confirms the caller's registration, reviving a cancelled one.
func (s *ParticipationService) RegisterForEvent(ctx context.Context, principal *domain.Principal, eventID, notes string) (*domain.EventRegistration, error) {
	if err := requireMember(principal); err != nil {
		return nil, err
	}
	if err := requireID(eventID); err != nil {
		return nil, err
	}
	reg := &domain.EventRegistration{
		UserID:  principal.ID,
		EventID: eventID,
		Status:  domain.RegistrationConfirmed,
		Notes:   strings.TrimSpace(notes),
	}
	if err := s.repo.UpsertRegistration(ctx, reg); err != nil {
		return nil, notFoundOr(err, "event", eventID)
	}
	s.logger.Info("event registration confirmed",
		zap.String("user_id", principal.ID), zap.String("event_id", eventID))
	return reg, nil
}

// CancelEventRegistration marks the caller's registration cancelled.
func (s *ParticipationService) CancelEventRegistration(ctx context.Context, principal *domain.Principal, eventID string) (*domain.EventRegistration, error) {
	if err := requireMember(principal); err != nil {
		return nil, err
	}
	if err := requireID(eventID); err != nil {
		return nil, err
	}
	reg, err := s.repo.SetRegistrationStatus(ctx, principal.ID, eventID, domain.RegistrationCancelled)
	if err != nil {
		return nil, notFoundOr(err, "registration", eventID)
	}
	s.logger.Info("event registration cancelled",
		zap.String("user_id", principal.ID), zap.String("event_id", eventID))
	return reg, nil
}

// IsRegistered reports whether the caller holds a confirmed registration.
func (s *ParticipationService) IsRegistered(ctx context.Context, principal *domain.Principal, eventID string) (bool, error) {
	if err := requireMember(principal); err != nil {
		return false, err
	}
	if err := requireID(eventID); err != nil {
		return false, err
	}
	reg, err := s.repo.GetRegistration(ctx, principal.ID, eventID)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, apperrors.NewStoreReadError(err)
	}
	return reg.Status == domain.RegistrationConfirmed, nil
}

// JoinMinistry makes the caller an active member.
func (s *ParticipationService) JoinMinistry(ctx context.Context, principal *domain.Principal, ministryID string) (*domain.MinistryMembership, error) {
	if err := requireMember(principal); err != nil {
		return nil, err
	}
	if err := requireID(ministryID); err != nil {
		return nil, err
	}
	m := &domain.MinistryMembership{
		UserID:     principal.ID,
		MinistryID: ministryID,
		Status:     domain.MembershipActive,
		Role:       domain.MembershipRoleMember,
	}
	if err := s.repo.UpsertMembership(ctx, m); err != nil {
		return nil, notFoundOr(err, "ministry", ministryID)
	}
	s.logger.Info("ministry joined",
		zap.String("user_id", principal.ID), zap.String("ministry_id", ministryID))
	return m, nil
}

// LeaveMinistry marks the caller's membership inactive.
func (s *ParticipationService) LeaveMinistry(ctx context.Context, principal *domain.Principal, ministryID string) (*domain.MinistryMembership, error) {
	if err := requireMember(principal); err != nil {
		return nil, err
	}
	if err := requireID(ministryID); err != nil {
		return nil, err
	}
	m, err := s.repo.SetMembershipStatus(ctx, principal.ID, ministryID, domain.MembershipInactive)
	if err != nil {
		return nil, notFoundOr(err, "membership", ministryID)
	}
	s.logger.Info("ministry left",
		zap.String("user_id", principal.ID), zap.String("ministry_id", ministryID))
	return m, nil
}

// IsMember reports whether the caller is an active member.
func (s *ParticipationService) IsMember(ctx context.Context, principal *domain.Principal, ministryID string) (bool, error) {
	if err := requireMember(principal); err != nil {
		return false, err
	}
	if err := requireID(ministryID); err != nil {
		return false, err
	}
	m, err := s.repo.GetMembership(ctx, principal.ID, ministryID)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, apperrors.NewStoreReadError(err)
	}
	return m.Status == domain.MembershipActive, nil
}

func requireMember(principal *domain.Principal) error {
	if principal == nil || principal.ID == "" {
		return apperrors.NewUnauthenticated("sign in required")
	}
	return nil
}
