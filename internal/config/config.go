package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Payments     PaymentsConfig
	Notification NotificationConfig
	HTTP         HTTPConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	SiteURL               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr            string
	Password        string
	DB              int
	RoleCacheTTLSec int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
	// AdminEmails, when set, limits who may claim the admin role at signup.
	AdminEmails []string
}

// PaymentsConfig holds Stripe settings.
type PaymentsConfig struct {
	StripeSecretKey string
	Currency        string
}

// NotificationConfig holds email provider settings.
type NotificationConfig struct {
	ResendAPIKey   string
	EmailFrom      string
	ContactFrom    string
	ContactInbox   string
	MaxConcurrency int
}

// HTTPConfig holds transport level knobs.
type HTTPConfig struct {
	CORSAllowOrigins     string
	ContactRatePerMinute int
	ContactBurst         int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "church-portal"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			SiteURL:               strings.TrimRight(getEnv("SITE_URL", "https://localhost:5173"), "/"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:            getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password:        os.Getenv("REDIS_PASSWORD"),
			DB:              redisDB,
			RoleCacheTTLSec: getEnvAsInt("ROLE_CACHE_TTL_SECONDS", 300),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
			AdminEmails:           getEnvAsList("AUTH_ADMIN_EMAILS"),
		},
		Payments: PaymentsConfig{
			StripeSecretKey: os.Getenv("STRIPE_SECRET_KEY"),
			Currency:        strings.ToLower(getEnv("STRIPE_CURRENCY", "brl")),
		},
		Notification: NotificationConfig{
			ResendAPIKey:   os.Getenv("RESEND_API_KEY"),
			EmailFrom:      getEnv("NOTIFY_EMAIL_FROM", "Igreja Shalom <noreply@igreja-shalom.com>"),
			ContactFrom:    getEnv("CONTACT_EMAIL_FROM", "Assembleia de Deus Shalom <onboarding@resend.dev>"),
			ContactInbox:   getEnv("CONTACT_INBOX", "contato@igrejashalom.com.br"),
			MaxConcurrency: getEnvAsInt("NOTIFY_MAX_CONCURRENCY", 0),
		},
		HTTP: HTTPConfig{
			CORSAllowOrigins:     getEnv("CORS_ALLOW_ORIGINS", "*"),
			ContactRatePerMinute: getEnvAsInt("CONTACT_RATE_PER_MINUTE", 5),
			ContactBurst:         getEnvAsInt("CONTACT_BURST", 3),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// RoleCacheTTL returns how long a resolved role stays cached.
func (r RedisConfig) RoleCacheTTL() time.Duration {
	if r.RoleCacheTTLSec <= 0 {
		return 0
	}
	return time.Duration(r.RoleCacheTTLSec) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.ToLower(strings.TrimSpace(item)); item != "" {
			out = append(out, item)
		}
	}
	return out
}
