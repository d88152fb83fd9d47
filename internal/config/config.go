package config

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App       AppConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Session   SessionConfig
	Auth      AuthConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Mail      MailConfig
	Logger    LoggerConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string `env:"APP_NAME, default=ereignis-api"`
	Env                   string `env:"APP_ENV, default=development"`
	Host                  string `env:"APP_HOST, default=0.0.0.0"`
	Port                  string `env:"APP_PORT, default=4000"`
	Version               string `env:"APP_VERSION, default=dev"`
	RequestTimeoutSeconds int    `env:"HTTP_REQUEST_TIMEOUT_SECONDS, default=30"`
}

// PostgresConfig holds DB connection values. An empty DSN runs the API on in-memory stores.
type PostgresConfig struct {
	DSN            string `env:"POSTGRES_DSN"`
	MaxConns       int32  `env:"POSTGRES_MAX_CONNS, default=10"`
	MinConns       int32  `env:"POSTGRES_MIN_CONNS, default=2"`
	RunMigrations  bool   `env:"POSTGRES_RUN_MIGRATIONS, default=true"`
	MigrationsDir  string `env:"POSTGRES_MIGRATIONS_DIR, default=migrations"`
	ConnMaxIdleSec int32  `env:"POSTGRES_CONN_MAX_IDLE_SECONDS, default=30"`
	ConnMaxLifeSec int32  `env:"POSTGRES_CONN_MAX_LIFE_SECONDS, default=300"`
}

// RedisConfig points at the session cache. An empty URL keeps sessions in process.
type RedisConfig struct {
	URL       string `env:"REDIS_URL"`
	KeyPrefix string `env:"REDIS_SESSION_PREFIX, default=sess:"`
}

// SessionConfig describes the session cookie.
type SessionConfig struct {
	Secret     string        `env:"SESSION_SECRET, default=dev-session-secret"`
	CookieName string        `env:"SESSION_COOKIE_NAME, default=qid"`
	MaxAge     time.Duration `env:"SESSION_MAX_AGE, default=8760h"`
	Domain     string        `env:"SESSION_COOKIE_DOMAIN"`
}

// AuthConfig defines password and confirmation token parameters.
type AuthConfig struct {
	BcryptCost         int           `env:"AUTH_BCRYPT_COST, default=12"`
	ConfirmationSecret string        `env:"AUTH_CONFIRMATION_SECRET, default=dev-confirmation-secret"`
	ConfirmationTTL    time.Duration `env:"AUTH_CONFIRMATION_TTL, default=24h"`
}

// CORSConfig lists the browser origin allowed to send credentials.
type CORSConfig struct {
	Origin string `env:"CORS_ORIGIN, default=http://localhost:3000"`
}

// RateLimitConfig bounds requests per client on the operation endpoint.
type RateLimitConfig struct {
	Max    int           `env:"RATE_LIMIT_MAX, default=120"`
	Window time.Duration `env:"RATE_LIMIT_WINDOW, default=1m"`
}

// MailConfig configures outbound mail. Without an SMTP host messages are only logged.
type MailConfig struct {
	From            string `env:"MAIL_FROM, default=noreply@ereignis.local"`
	SMTPHost        string `env:"SMTP_HOST"`
	SMTPPort        int    `env:"SMTP_PORT, default=587"`
	SMTPUsername    string `env:"SMTP_USERNAME"`
	SMTPPassword    string `env:"SMTP_PASSWORD"`
	ConfirmationURL string `env:"MAIL_CONFIRMATION_URL, default=http://localhost:3000/confirm"`
	Workers         int    `env:"MAIL_WORKERS, default=2"`
	QueueSize       int    `env:"MAIL_QUEUE_SIZE, default=100"`
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string `env:"LOG_LEVEL, default=info"`
}

// Load reads .env when present and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return Process(context.Background(), envconfig.OsLookuper())
}

// Process fills a Config from lookuper, applying defaults.
func Process(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// IsProduction reports whether the service runs with production settings.
func (a AppConfig) IsProduction() bool {
	return a.Env == "production"
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}
