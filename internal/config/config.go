// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Rate limiter backends.
const (
	RateLimitBackendMemory = "memory"
	RateLimitBackendRedis  = "redis"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Database (PostgreSQL) for the append-only access log
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Cache / stream (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// Base URL embedded into magic links (e.g. https://gate.corp.example)
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	// Gate settings
	AllowedDomain string        `env:"ALLOWED_DOMAIN,required"`
	DownstreamURL string        `env:"DOWNSTREAM_URL,required"`
	SigningSecret string        `env:"SIGNING_SECRET,required"`
	TokenTTL      time.Duration `env:"TOKEN_TTL" envDefault:"300s"`
	RedirectDelay time.Duration `env:"REDIRECT_DELAY" envDefault:"2s"`

	// Rate limiting
	RequestLimit     int    `env:"REQUEST_LIMIT" envDefault:"5"`
	RateLimitBackend string `env:"RATE_LIMIT_BACKEND" envDefault:"memory"`

	// Outbound mail (SMTP)
	SMTPHost     string `env:"SMTP_HOST,required"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME" envDefault:""`
	SMTPPassword string `env:"SMTP_PASSWORD" envDefault:""`
	SMTPFrom     string `env:"SMTP_FROM,required"`
	SMTPFromName string `env:"SMTP_FROM_NAME" envDefault:""`
	SMTPTLS      bool   `env:"SMTP_TLS" envDefault:"true"`

	// Admin statistics endpoint. Empty hash disables the endpoint.
	AdminKeyHash string `env:"ADMIN_KEY_HASH" envDefault:""`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// StatsEnabled returns true if the admin statistics endpoint is configured.
func (c *Config) StatsEnabled() bool {
	return c.AdminKeyHash != ""
}

// Load parses environment variables and returns a Config.
// Returns an error if required variables are missing or values are out of range.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks constraints the env tags cannot express.
func (c *Config) validate() error {
	if c.RequestLimit <= 0 {
		return fmt.Errorf("REQUEST_LIMIT must be positive, got %d", c.RequestLimit)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}
	switch c.RateLimitBackend {
	case RateLimitBackendMemory, RateLimitBackendRedis:
	default:
		return fmt.Errorf("RATE_LIMIT_BACKEND must be %q or %q, got %q",
			RateLimitBackendMemory, RateLimitBackendRedis, c.RateLimitBackend)
	}
	return nil
}
