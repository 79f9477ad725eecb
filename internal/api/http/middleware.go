package http

import (
	"context"
	"errors"
	"net/http"
	"runtime/debug"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/shalom-church/portal/internal/config"
	"github.com/shalom-church/portal/internal/observability"
	apperrors "github.com/shalom-church/portal/pkg/util"
)

// AllowedHeaders lists request headers accepted from browsers.
const AllowedHeaders = "authorization, x-client-info, apikey, content-type"

// RegisterMiddlewares attaches global middlewares such as CORS, logging and error handling.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, httpCfg config.HTTPConfig, timeout time.Duration) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: httpCfg.CORSAllowOrigins,
		AllowHeaders: AllowedHeaders,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))
	app.Use(observability.RequestLogger(logger, metrics))
	app.Use(errorHandlingMiddleware(logger, metrics))
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				domainErr := toDomainError(err)
				metrics.RecordError(c.Route().Path, c.Method(), domainErr.Code)
				writeError(c, domainErr)
				if domainErr.HTTPStatus >= 500 {
					logger.Error("request failed", zap.String("path", c.Path()), zap.Error(domainErr))
				}
				err = nil
			}
		}()
		return c.Next()
	}
}

// ErrorHandler renders errors that escape the middleware chain.
func ErrorHandler(c *fiber.Ctx, err error) error {
	writeError(c, toDomainError(err))
	return nil
}

func writeError(c *fiber.Ctx, domainErr *apperrors.DomainError) {
	body := fiber.Map{
		"code":    domainErr.Code,
		"message": domainErr.Message,
	}
	if len(domainErr.Details) > 0 {
		body["details"] = domainErr.Details
	}
	_ = c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"error": body})
}

// toDomainError maps framework errors such as unknown routes onto the error envelope.
func toDomainError(err error) *apperrors.DomainError {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return apperrors.NewDomainError(codeForStatus(fiberErr.Code), fiberErr.Message, fiberErr.Code, nil)
	}
	return apperrors.ToDomainError(err)
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusRequestEntityTooLarge:
		return apperrors.CodeInvalidRequest
	case http.StatusUnauthorized:
		return apperrors.CodeUnauthenticated
	case http.StatusForbidden:
		return apperrors.CodeForbidden
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return apperrors.CodeNotFound
	case http.StatusTooManyRequests:
		return apperrors.CodeRateLimited
	default:
		return apperrors.CodeInternal
	}
}

// RateLimitConfig configures the per-client token bucket.
type RateLimitConfig struct {
	PerMinute int
	Burst     int
	// IdleTTL is how long an unused client bucket is kept.
	IdleTTL time.Duration
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter returns a per-IP token-bucket limiter. Rejected requests get 429
// with a Retry-After header.
func RateLimiter(cfg RateLimitConfig) fiber.Handler {
	if cfg.PerMinute <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 10 * time.Minute
	}
	every := rate.Every(time.Minute / time.Duration(cfg.PerMinute))

	var (
		mu        sync.Mutex
		clients   = map[string]*clientLimiter{}
		lastSweep = time.Now()
	)
	getLimiter := func(ip string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		now := time.Now()
		if now.Sub(lastSweep) > cfg.IdleTTL {
			for key, cl := range clients {
				if now.Sub(cl.lastSeen) > cfg.IdleTTL {
					delete(clients, key)
				}
			}
			lastSweep = now
		}
		cl, ok := clients[ip]
		if !ok {
			cl = &clientLimiter{limiter: rate.NewLimiter(every, cfg.Burst)}
			clients[ip] = cl
		}
		cl.lastSeen = now
		return cl.limiter
	}

	return func(c *fiber.Ctx) error {
		limiter := getLimiter(c.IP())
		reservation := limiter.Reserve()
		if !reservation.OK() {
			return apperrors.NewRateLimited("rate limit exceeded")
		}
		if delay := reservation.Delay(); delay > 0 {
			reservation.Cancel()
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(delay.Seconds())+1))
			return apperrors.NewRateLimited("rate limit exceeded")
		}
		return c.Next()
	}
}
