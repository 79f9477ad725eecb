package service

import (
	"context"
	"errors"
	"strings"

	"github.com/shalom-church/portal/internal/auth"
	"github.com/shalom-church/portal/internal/config"
	"github.com/shalom-church/portal/internal/domain"
	"github.com/shalom-church/portal/internal/repository"
	apperrors "github.com/shalom-church/portal/pkg/util"
)

const minPasswordLength = 6

// AuthService is the in-house identity provider: registration, login and
// token verification.
type AuthService struct {
	users       repository.UserRepository
	tokenMgr    *auth.TokenManager
	bcryptCost  int
	adminEmails map[string]struct{}
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, users repository.UserRepository) *AuthService {
	adminEmails := make(map[string]struct{}, len(cfg.AdminEmails))
	for _, email := range cfg.AdminEmails {
		adminEmails[normalizeEmail(email)] = struct{}{}
	}
	return &AuthService{
		users:       users,
		tokenMgr:    auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		bcryptCost:  cfg.BcryptCost,
		adminEmails: adminEmails,
	}
}

// SignUp registers a new identity. metadata may carry requested_role and full_name.
// With an admin allowlist configured, an admin hint from any other email is
// stored as a user hint.
func (s *AuthService) SignUp(ctx context.Context, email, password string, metadata map[string]any) (*domain.Session, error) {
	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperrors.NewInvalidRequest("a valid email is required", map[string]any{"field": "email"})
	}
	if len(password) < minPasswordLength {
		return nil, apperrors.NewInvalidRequest("password must have at least 6 characters", map[string]any{"field": "password"})
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	metadata = s.restrictRoleHint(email, metadata)
	fullName, _ := metadata[domain.MetadataFullName].(string)

	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(fullName),
		Metadata:     metadata,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("email already registered", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return s.issue(user)
}

// SignIn authenticates with email and password.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthenticated("invalid credentials")
		}
		return nil, apperrors.NewStoreReadError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthenticated("invalid credentials")
	}
	return s.issue(user)
}

// GetUser resolves the principal behind an access token.
func (s *AuthService) GetUser(ctx context.Context, token string) (*domain.Principal, error) {
	claims, err := s.tokenMgr.ParseToken(token)
	if err != nil {
		return nil, apperrors.NewUnauthenticated("invalid or expired token")
	}
	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthenticated("user no longer exists")
		}
		return nil, apperrors.NewStoreReadError(err)
	}
	return user.Principal(), nil
}

// ListUsers returns every registered principal.
func (s *AuthService) ListUsers(ctx context.Context) ([]domain.Principal, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.NewStoreReadError(err)
	}
	principals := make([]domain.Principal, 0, len(users))
	for i := range users {
		principals = append(principals, *users[i].Principal())
	}
	return principals, nil
}

func (s *AuthService) restrictRoleHint(email string, metadata map[string]any) map[string]any {
	out := make(map[string]any, len(metadata)+1)
	for k, v := range metadata {
		out[k] = v
	}
	if len(s.adminEmails) == 0 {
		return out
	}
	if _, allowed := s.adminEmails[email]; allowed {
		return out
	}
	if (&domain.Principal{Metadata: out}).RequestedRole() == domain.RoleAdmin {
		out[domain.MetadataRequestedRole] = string(domain.RoleUser)
	}
	return out
}

func (s *AuthService) issue(user *domain.User) (*domain.Session, error) {
	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &domain.Session{Principal: user.Principal(), AccessToken: token, ExpiresAt: exp}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
