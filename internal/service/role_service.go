package service

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shalom-church/portal/internal/domain"
	"github.com/shalom-church/portal/internal/observability"
	"github.com/shalom-church/portal/internal/repository"
	apperrors "github.com/shalom-church/portal/pkg/util"
)

// UserDirectory lists the identities known to the identity provider.
type UserDirectory interface {
	ListUsers(ctx context.Context) ([]domain.Principal, error)
}

// Resolution sources reported to metrics.
const (
	roleSourceCache       = "cache"
	roleSourceStore       = "store"
	roleSourceProvisioned = "provisioned"
	roleSourceDegraded    = "degraded"
)

// RoleService resolves, provisions and changes role assignments.
type RoleService struct {
	roles     repository.RoleRepository
	cache     repository.RoleCache
	directory UserDirectory
	logger    *zap.Logger
	metrics   *observability.Metrics
}

// RoleDependencies groups the collaborators of RoleService. Cache and Metrics are optional.
type RoleDependencies struct {
	Roles     repository.RoleRepository
	Cache     repository.RoleCache
	Directory UserDirectory
	Logger    *zap.Logger
	Metrics   *observability.Metrics
}

// NewRoleService constructs the service.
func NewRoleService(deps RoleDependencies) *RoleService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoleService{
		roles:     deps.Roles,
		cache:     deps.Cache,
		directory: deps.Directory,
		logger:    logger,
		metrics:   deps.Metrics,
	}
}

// ResolveRole returns the principal's role, provisioning an assignment from the
// signup hint when none exists. Store failures degrade to RoleUser.
func (s *RoleService) ResolveRole(ctx context.Context, principal *domain.Principal) (domain.Role, error) {
	if principal == nil || principal.ID == "" {
		return domain.RoleNone, apperrors.NewUnauthenticated("sign in required")
	}

	if role, ok := s.cached(ctx, principal.ID); ok {
		s.metrics.RecordRoleResolution(roleSourceCache)
		return role, nil
	}

	role, source := s.lookupOrProvision(ctx, principal)
	s.metrics.RecordRoleResolution(source)
	if source != roleSourceDegraded {
		s.remember(ctx, principal.ID, role)
	}
	return role, nil
}

// RefreshRole discards any cached role and resolves again.
func (s *RoleService) RefreshRole(ctx context.Context, principal *domain.Principal) (domain.Role, error) {
	if principal == nil || principal.ID == "" {
		return domain.RoleNone, apperrors.NewUnauthenticated("sign in required")
	}
	s.forget(ctx, principal.ID)
	return s.ResolveRole(ctx, principal)
}

// SetRole changes the target's assignment. The caller must hold admin. The
// target keeps any cached role until it refreshes.
func (s *RoleService) SetRole(ctx context.Context, caller *domain.Principal, targetID string, role domain.Role) (*domain.RoleAssignment, error) {
	if err := s.requireAdmin(ctx, caller); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, apperrors.NewInvalidRequest("role must be admin or user", map[string]any{"role": string(role)})
	}
	if _, err := uuid.Parse(targetID); err != nil {
		return nil, apperrors.NewInvalidRequest("invalid user id", map[string]any{"user_id": targetID})
	}

	assignment, err := s.roles.Upsert(ctx, targetID, role)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewNotFound("user", map[string]any{"user_id": targetID})
	}
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("role changed",
		zap.String("actor_id", caller.ID),
		zap.String("user_id", targetID),
		zap.String("role", string(role)))
	return assignment, nil
}

// ListUsersWithRoles returns every identity with its role. Identities without an
// assignment are reported as users.
func (s *RoleService) ListUsersWithRoles(ctx context.Context, caller *domain.Principal) ([]domain.UserWithRole, error) {
	if err := s.requireAdmin(ctx, caller); err != nil {
		return nil, err
	}

	principals, err := s.directory.ListUsers(ctx)
	if err != nil {
		return nil, apperrors.NewStoreReadError(err)
	}
	assignments, err := s.roles.List(ctx)
	if err != nil {
		return nil, apperrors.NewStoreReadError(err)
	}

	byUser := make(map[string]domain.Role, len(assignments))
	for _, a := range assignments {
		byUser[a.UserID] = a.Role
	}

	rows := make([]domain.UserWithRole, 0, len(principals))
	for i := range principals {
		p := &principals[i]
		role, ok := byUser[p.ID]
		if !ok {
			role = domain.RoleUser
		}
		rows = append(rows, domain.UserWithRole{
			ID:       p.ID,
			Email:    p.Email,
			FullName: p.DisplayName(),
			Role:     role,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Email < rows[j].Email })
	return rows, nil
}

func (s *RoleService) requireAdmin(ctx context.Context, caller *domain.Principal) error {
	if caller == nil || caller.ID == "" {
		return apperrors.NewUnauthenticated("sign in required")
	}
	role, err := s.ResolveRole(ctx, caller)
	if err != nil {
		return err
	}
	if role != domain.RoleAdmin {
		return apperrors.NewForbidden("admin role required")
	}
	return nil
}

func (s *RoleService) lookupOrProvision(ctx context.Context, principal *domain.Principal) (domain.Role, string) {
	assignment, err := s.roles.GetByUserID(ctx, principal.ID)
	if err == nil {
		return assignment.Role, roleSourceStore
	}
	if !errors.Is(err, repository.ErrNotFound) {
		s.logger.Warn("role lookup failed, degrading to user",
			zap.String("user_id", principal.ID), zap.Error(err))
		return domain.RoleUser, roleSourceDegraded
	}

	requested := principal.RequestedRole()
	created, err := s.roles.Insert(ctx, principal.ID, requested)
	switch {
	case err == nil:
		s.logger.Info("role provisioned",
			zap.String("user_id", principal.ID), zap.String("role", string(created.Role)))
		return created.Role, roleSourceProvisioned
	case errors.Is(err, repository.ErrDuplicate):
		// A concurrent resolver created the row first.
		existing, readErr := s.roles.GetByUserID(ctx, principal.ID)
		if readErr == nil {
			return existing.Role, roleSourceStore
		}
		s.logger.Warn("role re-read failed, degrading to user",
			zap.String("user_id", principal.ID), zap.Error(readErr))
		return domain.RoleUser, roleSourceDegraded
	default:
		s.logger.Warn("role provisioning failed, degrading to user",
			zap.String("user_id", principal.ID), zap.Error(err))
		return domain.RoleUser, roleSourceDegraded
	}
}

func (s *RoleService) cached(ctx context.Context, userID string) (domain.Role, bool) {
	if s.cache == nil {
		return domain.RoleNone, false
	}
	role, ok, err := s.cache.Get(ctx, userID)
	if err != nil {
		s.logger.Debug("role cache read failed", zap.String("user_id", userID), zap.Error(err))
		return domain.RoleNone, false
	}
	return role, ok
}

func (s *RoleService) remember(ctx context.Context, userID string, role domain.Role) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, userID, role); err != nil {
		s.logger.Debug("role cache write failed", zap.String("user_id", userID), zap.Error(err))
	}
}

func (s *RoleService) forget(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, userID); err != nil {
		s.logger.Debug("role cache evict failed", zap.String("user_id", userID), zap.Error(err))
	}
}
