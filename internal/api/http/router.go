package http

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/shalom-church/portal/internal/api/http/handlers"
	"github.com/shalom-church/portal/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Roles          *handlers.RolesHandler
	Preferences    *handlers.PreferencesHandler
	Content        *handlers.ContentHandler
	Participation  *handlers.ParticipationHandler
	Functions      *handlers.FunctionsHandler
	AuthMiddleware *auth.AuthMiddleware
	RoleResolver   auth.RoleResolver
	ContactLimiter fiber.Handler
	Metrics        http.Handler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics))
	}

	authn := cfg.AuthMiddleware.Handle
	optional := cfg.AuthMiddleware.Optional
	admin := auth.RequireAdmin(cfg.RoleResolver)

	authGroup := app.Group("/auth")
	authGroup.Post("/signup", cfg.Auth.SignUp)
	authGroup.Post("/signin", cfg.Auth.SignIn)
	authGroup.Get("/user", authn, cfg.Auth.CurrentUser)

	limiter := cfg.ContactLimiter
	if limiter == nil {
		limiter = func(c *fiber.Ctx) error { return c.Next() }
	}
	app.Post("/create-donation-payment", optional, cfg.Functions.CreateDonationPayment)
	app.Post("/send-notification-emails", optional, cfg.Functions.SendNotificationEmails)
	app.Post("/send-contact-email", limiter, cfg.Functions.SendContactEmail)

	api := app.Group("/api")
	api.Get("/me/role", optional, cfg.Roles.MyRole)
	api.Post("/me/role/refresh", authn, cfg.Roles.RefreshMyRole)
	api.Get("/me/email-preferences", authn, cfg.Preferences.Get)
	api.Put("/me/email-preferences", authn, cfg.Preferences.Update)

	adminGroup := api.Group("/admin", authn, admin)
	adminGroup.Get("/users", cfg.Roles.ListUsers)
	adminGroup.Put("/users/:id/role", cfg.Roles.SetUserRole)

	api.Get("/events", cfg.Content.ListEvents)
	api.Post("/events", authn, admin, cfg.Content.CreateEvent)
	api.Put("/events/:id", authn, admin, cfg.Content.UpdateEvent)
	api.Get("/sermons", cfg.Content.ListSermons)
	api.Post("/sermons", authn, admin, cfg.Content.CreateSermon)
	api.Put("/sermons/:id", authn, admin, cfg.Content.UpdateSermon)
	api.Get("/ministries", cfg.Content.ListMinistries)
	api.Post("/ministries", authn, admin, cfg.Content.CreateMinistry)
	api.Put("/ministries/:id", authn, admin, cfg.Content.UpdateMinistry)
	api.Get("/blog", cfg.Content.ListBlogPosts)
	api.Post("/blog", authn, admin, cfg.Content.CreateBlogPost)
	api.Get("/blog/:slug", cfg.Content.GetBlogArticle)

	api.Get("/events/:id/registration", authn, cfg.Participation.RegistrationStatus)
	api.Post("/events/:id/registration", authn, cfg.Participation.Register)
	api.Delete("/events/:id/registration", authn, cfg.Participation.CancelRegistration)
	api.Get("/ministries/:id/membership", authn, cfg.Participation.MembershipStatus)
	api.Post("/ministries/:id/membership", authn, cfg.Participation.Join)
	api.Delete("/ministries/:id/membership", authn, cfg.Participation.Leave)
}
