package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shalom-church/portal/internal/api/http/handlers"
	"github.com/shalom-church/portal/internal/auth"
	"github.com/shalom-church/portal/internal/config"
	"github.com/shalom-church/portal/internal/domain"
	"github.com/shalom-church/portal/internal/observability"
	apperrors "github.com/shalom-church/portal/pkg/util"
)

var (
	adminPrincipal  = &domain.Principal{ID: "11111111-1111-1111-1111-111111111111", Email: "pastor@example.com"}
	memberPrincipal = &domain.Principal{ID: "22222222-2222-2222-2222-222222222222", Email: "member@example.com"}
)

type stubIdentity struct{}

func (stubIdentity) GetUser(_ context.Context, token string) (*domain.Principal, error) {
	switch token {
	case "admin-token":
		return adminPrincipal, nil
	case "member-token":
		return memberPrincipal, nil
	}
	return nil, apperrors.NewUnauthenticated("invalid token")
}

func (stubIdentity) SignUp(_ context.Context, email, _ string, metadata map[string]any) (*domain.Session, error) {
	return &domain.Session{Principal: &domain.Principal{ID: "new", Email: email, Metadata: metadata}, AccessToken: "tok"}, nil
}

func (stubIdentity) SignIn(_ context.Context, _, _ string) (*domain.Session, error) {
	return nil, apperrors.NewUnauthenticated("invalid credentials")
}

type stubRoles struct {
	setCalls int
}

func (r *stubRoles) ResolveRole(_ context.Context, p *domain.Principal) (domain.Role, error) {
	if p == nil {
		return domain.RoleNone, apperrors.NewUnauthenticated("sign in required")
	}
	if p.ID == adminPrincipal.ID {
		return domain.RoleAdmin, nil
	}
	return domain.RoleUser, nil
}

func (r *stubRoles) RefreshRole(ctx context.Context, p *domain.Principal) (domain.Role, error) {
	return r.ResolveRole(ctx, p)
}

func (r *stubRoles) SetRole(_ context.Context, _ *domain.Principal, targetID string, role domain.Role) (*domain.RoleAssignment, error) {
	r.setCalls++
	return &domain.RoleAssignment{UserID: targetID, Role: role}, nil
}

func (r *stubRoles) ListUsersWithRoles(context.Context, *domain.Principal) ([]domain.UserWithRole, error) {
	return []domain.UserWithRole{{ID: adminPrincipal.ID, Email: adminPrincipal.Email, Role: domain.RoleAdmin}}, nil
}

type stubPayments struct {
	last        domain.PaymentIntentRequest
	err         error
	hadDeadline bool
}

func (p *stubPayments) CreateCheckoutSession(ctx context.Context, principal *domain.Principal, req domain.PaymentIntentRequest) (*domain.CheckoutSession, error) {
	if principal == nil {
		return nil, apperrors.NewUnauthenticated("User not authenticated")
	}
	p.last = req
	_, p.hadDeadline = ctx.Deadline()
	if p.err != nil {
		return nil, p.err
	}
	return &domain.CheckoutSession{ID: "cs_1", URL: "https://checkout.example/cs_1"}, nil
}

type stubNotifications struct {
	summary     domain.DispatchSummary
	calls       int
	last        domain.NotificationEvent
	hadDeadline bool
}

func (n *stubNotifications) Dispatch(ctx context.Context, event domain.NotificationEvent) (*domain.DispatchSummary, error) {
	n.calls++
	n.last = event
	_, n.hadDeadline = ctx.Deadline()
	s := n.summary
	return &s, nil
}

type stubContact struct{}

func (stubContact) Send(_ context.Context, msg domain.ContactMessage) (*domain.ContactResult, error) {
	if msg.Email == "" {
		return nil, apperrors.NewInvalidRequest("missing required fields", nil)
	}
	return &domain.ContactResult{Success: true, ConfirmationEmailID: "c-1", NotificationEmailID: "n-1"}, nil
}

type stubPrefs struct{}

func (stubPrefs) EmailPreferences(_ context.Context, p *domain.Principal) (*domain.SubscriberPreference, error) {
	return &domain.SubscriberPreference{UserID: p.ID, Events: true}, nil
}

func (stubPrefs) UpdateEmailPreferences(_ context.Context, p *domain.Principal, pref domain.SubscriberPreference) (*domain.SubscriberPreference, error) {
	pref.UserID = p.ID
	return &pref, nil
}

type stubContent struct {
	handlers.ContentService
	created int
	updated int
}

func (s *stubContent) CreateSermon(_ context.Context, _ *domain.Principal, sermon domain.Sermon) (*domain.Sermon, error) {
	s.created++
	sermon.ID = "sermon-1"
	return &sermon, nil
}

func (s *stubContent) ListSermons(context.Context, int) ([]domain.Sermon, error) {
	return []domain.Sermon{{ID: "sermon-1", Title: "Grace"}}, nil
}

func (s *stubContent) UpdateSermon(_ context.Context, _ *domain.Principal, sermon domain.Sermon) (*domain.Sermon, error) {
	if sermon.ID != "sermon-1" {
		return nil, apperrors.NewNotFound("sermon", nil)
	}
	s.updated++
	return &sermon, nil
}

func (s *stubContent) GetBlogArticle(_ context.Context, slug string) (*domain.BlogArticle, error) {
	if slug != "fe-e-obras" {
		return nil, apperrors.NewNotFound("blog post", nil)
	}
	return &domain.BlogArticle{
		Post:    domain.BlogPost{ID: "p1", Slug: slug, Title: "Fé e obras", ViewCount: 8},
		Related: []domain.BlogPost{{ID: "p2", Slug: "graca"}},
	}, nil
}

type stubParticipation struct {
	registered map[string]bool
	notes      string
}

func (s *stubParticipation) RegisterForEvent(_ context.Context, p *domain.Principal, eventID, notes string) (*domain.EventRegistration, error) {
	s.registered[eventID] = true
	s.notes = notes
	return &domain.EventRegistration{UserID: p.ID, EventID: eventID, Status: domain.RegistrationConfirmed, Notes: notes}, nil
}

func (s *stubParticipation) CancelEventRegistration(_ context.Context, p *domain.Principal, eventID string) (*domain.EventRegistration, error) {
	if !s.registered[eventID] {
		return nil, apperrors.NewNotFound("registration", nil)
	}
	s.registered[eventID] = false
	return &domain.EventRegistration{UserID: p.ID, EventID: eventID, Status: domain.RegistrationCancelled}, nil
}

func (s *stubParticipation) IsRegistered(_ context.Context, _ *domain.Principal, eventID string) (bool, error) {
	return s.registered[eventID], nil
}

func (s *stubParticipation) JoinMinistry(_ context.Context, p *domain.Principal, ministryID string) (*domain.MinistryMembership, error) {
	return &domain.MinistryMembership{UserID: p.ID, MinistryID: ministryID, Status: domain.MembershipActive, Role: domain.MembershipRoleMember}, nil
}

func (s *stubParticipation) LeaveMinistry(_ context.Context, p *domain.Principal, ministryID string) (*domain.MinistryMembership, error) {
	return &domain.MinistryMembership{UserID: p.ID, MinistryID: ministryID, Status: domain.MembershipInactive}, nil
}

func (s *stubParticipation) IsMember(context.Context, *domain.Principal, string) (bool, error) {
	return false, nil
}

type fixture struct {
	app           *fiber.App
	roles         *stubRoles
	payments      *stubPayments
	notifications *stubNotifications
	content       *stubContent
	participation *stubParticipation
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		roles:         &stubRoles{},
		payments:      &stubPayments{},
		notifications: &stubNotifications{summary: domain.DispatchSummary{Message: "Notification emails sent successfully", Sent: 2, Total: 3}},
		content:       &stubContent{},
		participation: &stubParticipation{registered: map[string]bool{}},
	}
	logger := zap.NewNop()
	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	timeout := config.AppConfig{RequestTimeoutSeconds: 30}.RequestTimeout()
	RegisterMiddlewares(app, logger, metrics, config.HTTPConfig{CORSAllowOrigins: "*"}, timeout)
	RegisterRoutes(app, RouteConfig{
		Health:        handlers.NewHealthHandler("portal", "test", nil, nil),
		Auth:          handlers.NewAuthHandler(stubIdentity{}),
		Roles:         handlers.NewRolesHandler(f.roles),
		Preferences:   handlers.NewPreferencesHandler(stubPrefs{}),
		Content:       handlers.NewContentHandler(f.content),
		Participation: handlers.NewParticipationHandler(f.participation),
		Functions: handlers.NewFunctionsHandler(handlers.FunctionsDependencies{
			Payments:      f.payments,
			Notifications: f.notifications,
			Contact:       stubContact{},
			Roles:         f.roles,
			Logger:        logger,
			Metrics:       metrics,
		}),
		AuthMiddleware: auth.NewAuthMiddleware(stubIdentity{}),
		RoleResolver:   f.roles,
		ContactLimiter: RateLimiter(RateLimitConfig{PerMinute: 1, Burst: 2}),
		Metrics:        metrics.Handler(),
	})
	f.app = app
	return f
}

func (f *fixture) do(t *testing.T, method, path, token, body string) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]any
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func TestPreflightReturnsCORSHeaders(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodOptions, "/create-donation-payment", nil)
	req.Header.Set("Origin", "https://shalom.example")
	req.Header.Set("Access-Control-Request-Method", "POST")

	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Headers"), "x-client-info")
}

func TestCreateDonationPayment(t *testing.T) {
	f := newFixture(t)
	resp, body := f.do(t, http.MethodPost, "/create-donation-payment", "member-token",
		`{"amount":100,"donationType":"tithe","isRecurring":true,"recurringFrequency":"quarterly","eventId":"evt-1"}`)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "https://checkout.example/cs_1", body["url"])
	assert.Equal(t, domain.FrequencyQuarterly, f.payments.last.Frequency)
	assert.Equal(t, domain.PurposeTithe, f.payments.last.Purpose)
	assert.Equal(t, "evt-1", f.payments.last.EventID)
}

func TestCreateDonationPaymentFailuresUseFunctionContract(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodPost, "/create-donation-payment", "", `{"amount":10,"donationType":"offering"}`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "User not authenticated", body["error"])

	f.payments.err = apperrors.NewPaymentProviderError(errors.New("Invalid API Key provided"))
	resp, body = f.do(t, http.MethodPost, "/create-donation-payment", "member-token", `{"amount":10,"donationType":"offering"}`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Invalid API Key provided", body["error"])
}

func TestSendNotificationEmailsRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	payload := `{"type":"sermon","title":"Grace","preacher_name":"Pr. Silva","content_id":"abc"}`

	resp, body := f.do(t, http.MethodPost, "/send-notification-emails", "member-token", payload)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "admin role required", body["error"])
	assert.Zero(t, f.notifications.calls)

	resp, body = f.do(t, http.MethodPost, "/send-notification-emails", "admin-token", payload)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Notification emails sent successfully", body["message"])
	assert.EqualValues(t, 2, body["sent"])
	assert.EqualValues(t, 3, body["total"])
}

func TestSendNotificationEmailsNoSubscribers(t *testing.T) {
	f := newFixture(t)
	f.notifications.summary = domain.DispatchSummary{Message: "No users to notify"}

	resp, body := f.do(t, http.MethodPost, "/send-notification-emails", "admin-token", `{"content_type":"event","title":"Culto"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, domain.ContentEvent, f.notifications.last.ContentType)
	assert.Equal(t, "No users to notify", body["message"])
	assert.EqualValues(t, 0, body["sent"])
	assert.EqualValues(t, 0, body["total"])
}

func TestProviderCallsIgnoreRequestTimeout(t *testing.T) {
	f := newFixture(t)

	resp, _ := f.do(t, http.MethodPost, "/send-notification-emails", "admin-token", `{"type":"blog","title":"Fé"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, f.notifications.calls)
	assert.False(t, f.notifications.hadDeadline)

	resp, _ = f.do(t, http.MethodPost, "/create-donation-payment", "member-token", `{"amount":25,"donationType":"mission"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, f.payments.hadDeadline)
}

func TestSendContactEmailAndRateLimit(t *testing.T) {
	f := newFixture(t)
	payload := `{"name":"Maria","email":"maria@example.com","subject":"Oi","message":"Olá","message_type":"geral"}`

	for i := 0; i < 2; i++ {
		resp, body := f.do(t, http.MethodPost, "/send-contact-email", "", payload)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "c-1", body["confirmationEmailId"])
		assert.Equal(t, "n-1", body["notificationEmailId"])
	}

	resp, body := f.do(t, http.MethodPost, "/send-contact-email", "", payload)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))
	assert.Equal(t, "RATE_LIMITED", body["error"].(map[string]any)["code"])
}

func TestMyRole(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodGet, "/api/me/role", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "role")
	assert.Nil(t, body["role"])

	_, body = f.do(t, http.MethodGet, "/api/me/role", "admin-token", "")
	assert.Equal(t, "admin", body["role"])

	resp, _ = f.do(t, http.MethodPost, "/api/me/role/refresh", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdminRoutes(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodPut, "/api/admin/users/"+memberPrincipal.ID+"/role", "member-token", `{"role":"admin"}`)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", body["error"].(map[string]any)["code"])
	assert.Zero(t, f.roles.setCalls)

	resp, body = f.do(t, http.MethodPut, "/api/admin/users/"+memberPrincipal.ID+"/role", "admin-token", `{"role":"admin"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "admin", body["data"].(map[string]any)["role"])

	resp, body = f.do(t, http.MethodGet, "/api/admin/users", "admin-token", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["data"], 1)
}

func TestContentRoutes(t *testing.T) {
	f := newFixture(t)
	payload := `{"title":"Grace","preacher_name":"Pr. Silva","sermon_date":"2025-03-02"}`

	resp, _ := f.do(t, http.MethodPost, "/api/sermons", "member-token", payload)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := f.do(t, http.MethodPost, "/api/sermons", "admin-token", payload)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "sermon-1", body["data"].(map[string]any)["id"])
	assert.Equal(t, 1, f.content.created)

	resp, body = f.do(t, http.MethodPost, "/api/sermons", "admin-token", `{"title":"Grace","preacher_name":"X","sermon_date":"ontem"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_REQUEST", body["error"].(map[string]any)["code"])

	resp, body = f.do(t, http.MethodGet, "/api/sermons", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["data"], 1)
}

func TestContentEditAndArticleRoutes(t *testing.T) {
	f := newFixture(t)
	payload := `{"title":"Graça abundante","preacher_name":"Pr. Lima"}`

	resp, _ := f.do(t, http.MethodPut, "/api/sermons/sermon-1", "member-token", payload)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := f.do(t, http.MethodPut, "/api/sermons/sermon-1", "admin-token", payload)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Graça abundante", body["data"].(map[string]any)["title"])
	assert.Equal(t, 1, f.content.updated)

	resp, body = f.do(t, http.MethodPut, "/api/sermons/sermon-9", "admin-token", payload)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", body["error"].(map[string]any)["code"])

	resp, body = f.do(t, http.MethodGet, "/api/blog/fe-e-obras", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]any)
	assert.EqualValues(t, 8, data["post"].(map[string]any)["view_count"])
	assert.Len(t, data["related"], 1)

	resp, _ = f.do(t, http.MethodGet, "/api/blog/nao-existe", "", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestParticipationRoutes(t *testing.T) {
	f := newFixture(t)
	const eventPath = "/api/events/33333333-3333-3333-3333-333333333333/registration"

	resp, _ := f.do(t, http.MethodPost, eventPath, "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := f.do(t, http.MethodGet, eventPath, "member-token", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["registered"])

	resp, body = f.do(t, http.MethodPost, eventPath, "member-token", `{"notes":"chego às 19h"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "confirmed", body["data"].(map[string]any)["status"])
	assert.Equal(t, "chego às 19h", f.participation.notes)

	resp, body = f.do(t, http.MethodPost, eventPath, "member-token", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "confirmed", body["data"].(map[string]any)["status"])

	_, body = f.do(t, http.MethodGet, eventPath, "member-token", "")
	assert.Equal(t, true, body["registered"])

	resp, body = f.do(t, http.MethodDelete, eventPath, "member-token", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "cancelled", body["data"].(map[string]any)["status"])

	resp, _ = f.do(t, http.MethodDelete, eventPath, "member-token", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	const ministryPath = "/api/ministries/44444444-4444-4444-4444-444444444444/membership"
	resp, body = f.do(t, http.MethodPost, ministryPath, "member-token", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "active", body["data"].(map[string]any)["status"])

	resp, body = f.do(t, http.MethodDelete, ministryPath, "member-token", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "inactive", body["data"].(map[string]any)["status"])

	_, body = f.do(t, http.MethodGet, ministryPath, "member-token", "")
	assert.Equal(t, false, body["member"])
}

func TestAuthAndPreferenceRoutes(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodPost, "/auth/signup", "", `{"email":"ana@example.com","password":"segredo1","requested_role":"admin"}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	data := body["data"].(map[string]any)
	assert.Equal(t, "tok", data["auth"].(map[string]any)["token"])
	assert.Equal(t, "admin", data["user"].(map[string]any)["user_metadata"].(map[string]any)["requested_role"])

	resp, body = f.do(t, http.MethodPost, "/auth/signin", "", `{"email":"ana@example.com","password":"x"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHENTICATED", body["error"].(map[string]any)["code"])

	resp, body = f.do(t, http.MethodPut, "/api/me/email-preferences", "member-token", `{"sermons":true}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	pref := body["data"].(map[string]any)
	assert.Equal(t, memberPrincipal.ID, pref["user_id"])
	assert.Equal(t, true, pref["sermons"])

	resp, _ = f.do(t, http.MethodGet, "/api/me/email-preferences", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUnknownRouteUsesEnvelope(t *testing.T) {
	f := newFixture(t)
	resp, body := f.do(t, http.MethodGet, "/nope", "", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", body["error"].(map[string]any)["code"])
}

func TestHealthAndMetrics(t *testing.T) {
	f := newFixture(t)
	resp, body := f.do(t, http.MethodGet, "/health/ready", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ready", body["status"])

	resp, _ = f.do(t, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
