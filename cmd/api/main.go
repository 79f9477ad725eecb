package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/shalom-church/portal/internal/api/http"
	"github.com/shalom-church/portal/internal/api/http/handlers"
	"github.com/shalom-church/portal/internal/auth"
	"github.com/shalom-church/portal/internal/config"
	"github.com/shalom-church/portal/internal/events"
	"github.com/shalom-church/portal/internal/mailer"
	"github.com/shalom-church/portal/internal/observability"
	"github.com/shalom-church/portal/internal/payments"
	"github.com/shalom-church/portal/internal/persistence"
	"github.com/shalom-church/portal/internal/repository"
	"github.com/shalom-church/portal/internal/service"
	"github.com/shalom-church/portal/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()
	if pg.PoolHandle() == nil {
		logger.Fatal("POSTGRES_DSN is required")
	}

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	if cfg.Payments.StripeSecretKey == "" {
		logger.Warn("STRIPE_SECRET_KEY not set, checkout sessions will fail")
	}
	if cfg.Notification.ResendAPIKey == "" {
		logger.Warn("RESEND_API_KEY not set, emails will fail")
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	roleRepo := repository.NewRoleRepository(pool)
	prefRepo := repository.NewPreferenceRepository(pool)
	contentRepo := repository.NewContentRepository(pool)
	contactRepo := repository.NewContactRepository(pool)
	participationRepo := repository.NewParticipationRepository(pool)
	roleCache := repository.NewRedisRoleCache(redis.Client, cfg.Redis.RoleCacheTTL())

	sender := mailer.NewResendSender(cfg.Notification.ResendAPIKey)
	stripe := payments.NewStripeProvider(cfg.Payments.StripeSecretKey, nil)

	authService := service.NewAuthService(cfg.Auth, userRepo)
	roleService := service.NewRoleService(service.RoleDependencies{
		Roles:     roleRepo,
		Cache:     roleCache,
		Directory: authService,
		Logger:    logger,
		Metrics:   metrics,
	})
	paymentService := service.NewPaymentService(service.PaymentDependencies{
		Provider: stripe,
		Currency: cfg.Payments.Currency,
		SiteURL:  cfg.App.SiteURL,
		Logger:   logger,
		Metrics:  metrics,
	})
	notificationService := service.NewNotificationService(service.NotificationDependencies{
		Dispatcher:     dispatcher,
		Preferences:    prefRepo,
		Directory:      authService,
		Sender:         sender,
		From:           cfg.Notification.EmailFrom,
		SiteURL:        cfg.App.SiteURL,
		MaxConcurrency: cfg.Notification.MaxConcurrency,
		Logger:         logger,
		Metrics:        metrics,
	})
	contactService := service.NewContactService(service.ContactDependencies{
		Messages: contactRepo,
		Sender:   sender,
		From:     cfg.Notification.ContactFrom,
		Inbox:    cfg.Notification.ContactInbox,
		Logger:   logger,
	})
	contentService := service.NewContentService(service.ContentDependencies{
		Content:    contentRepo,
		Roles:      roleService,
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	participationService := service.NewParticipationService(participationRepo, logger)

	worker.StartNotificationWorker(notificationService)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httptransport.ErrorHandler,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.HTTP, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:        handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:          handlers.NewAuthHandler(authService),
		Roles:         handlers.NewRolesHandler(roleService),
		Preferences:   handlers.NewPreferencesHandler(notificationService),
		Content:       handlers.NewContentHandler(contentService),
		Participation: handlers.NewParticipationHandler(participationService),
		Functions: handlers.NewFunctionsHandler(handlers.FunctionsDependencies{
			Payments:      paymentService,
			Notifications: notificationService,
			Contact:       contactService,
			Roles:         roleService,
			Logger:        logger,
			Metrics:       metrics,
		}),
		AuthMiddleware: auth.NewAuthMiddleware(authService),
		RoleResolver:   roleService,
		ContactLimiter: httptransport.RateLimiter(httptransport.RateLimitConfig{
			PerMinute: cfg.HTTP.ContactRatePerMinute,
			Burst:     cfg.HTTP.ContactBurst,
		}),
		Metrics: metrics.Handler(),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
	contentService.Wait()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
