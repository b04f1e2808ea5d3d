package config

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// ErrSameSigningSecret is returned when both token secrets are identical.
// A compromise of one signing key must not allow forging the other token kind.
var ErrSameSigningSecret = errors.New("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must be distinct")

// Config holds application configuration loaded from environment variables.
type Config struct {
	Port            int           `envconfig:"PORT" default:"8080"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	Environment     string        `envconfig:"ENVIRONMENT" default:"development"`
	DatabaseURL     string        `envconfig:"DATABASE_URL" required:"true"`
	GoogleClientID  string        `envconfig:"GOOGLE_CLIENT_ID" required:"true"`
	AccessSecret    string        `envconfig:"JWT_ACCESS_SECRET" required:"true"`
	RefreshSecret   string        `envconfig:"JWT_REFRESH_SECRET" required:"true"`
	AccessTokenTTL  time.Duration `envconfig:"ACCESS_TOKEN_TTL" default:"15m"`
	RefreshTokenTTL time.Duration `envconfig:"REFRESH_TOKEN_TTL" default:"168h"`
	AdminEmail      string        `envconfig:"ADMIN_EMAIL" default:""`
	ClientOrigin    string        `envconfig:"CLIENT_ORIGIN" default:"http://localhost:5173"`
	Version         string        `envconfig:"VERSION" default:"dev"`
}

// Load reads configuration from environment variables into a Config struct.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, ErrSameSigningSecret
	}
	return &cfg, nil
}

// IsProduction reports whether the server runs with production hardening
// (Secure cookies, SameSite=Strict, rate limiting enabled).
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
