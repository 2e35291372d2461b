package app

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":3000"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	BaseURL string `envconfig:"BASE_URL" default:"http://localhost:3000"`

	DBBackend     string `envconfig:"DB_BACKEND" default:"sqlite"`
	SQLitePath    string `envconfig:"SQLITE_PATH" default:"data/carmine.db"`
	SQLServerConn string `envconfig:"SQLSERVER_CONN"`

	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	SessionSecret string        `envconfig:"SESSION_SECRET" required:"true"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"24h"`

	CSRFSecret string `envconfig:"CSRF_SECRET" required:"true"`

	// TokenSecret signs activation tokens. When empty the session secret is
	// reused, which keeps single-secret deployments working but means one
	// leaked secret compromises both sessions and activation links.
	TokenSecret   string        `envconfig:"TOKEN_SECRET"`
	ActivationTTL time.Duration `envconfig:"ACTIVATION_TTL" default:"24h"`

	SMTPHost     string `envconfig:"SMTP_HOST"`
	SMTPPort     int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUsername string `envconfig:"SMTP_USERNAME"`
	SMTPPassword string `envconfig:"SMTP_PASSWORD"`
	SMTPFrom     string `envconfig:"SMTP_FROM" default:"no-reply@carminevisuals.local"`
	ContactEmail string `envconfig:"CONTACT_EMAIL" default:"info@carminevisuals.local"`

	SeedAdminUser string `envconfig:"SEED_ADMIN_USER" default:"admin"`
	SeedAdminPass string `envconfig:"SEED_ADMIN_PASS" default:"Admin@123"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.SessionSecret == "" {
		return nil, errors.New("session secret must be provided")
	}
	if cfg.CSRFSecret == "" {
		return nil, errors.New("csrf secret must be provided")
	}
	if cfg.DBBackend != "sqlite" && cfg.DBBackend != "sqlserver" {
		return nil, errors.New("db backend must be sqlite or sqlserver")
	}
	if cfg.DBBackend == "sqlserver" && cfg.SQLServerConn == "" {
		return nil, errors.New("sqlserver backend requires a connection string")
	}
	return &cfg, nil
}

// EffectiveTokenSecret returns the activation token secret, falling back to
// the session secret when none is configured.
func (c *Config) EffectiveTokenSecret() (string, bool) {
	if c.TokenSecret != "" {
		return c.TokenSecret, false
	}
	return c.SessionSecret, true
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
