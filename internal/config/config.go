// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Cache and realtime pub/sub (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// Base URL used to build absolute short links (e.g., https://utmkit.ir)
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	// Geo lookup service for click enrichment.
	// The default is ip-api.com's free JSON endpoint.
	GeoIPEndpoint string        `env:"GEOIP_ENDPOINT" envDefault:"http://ip-api.com/json"`
	GeoIPTimeout  time.Duration `env:"GEOIP_TIMEOUT" envDefault:"2s"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Realtime streaming
	HeartbeatInterval time.Duration `env:"HEARTBEAT_INTERVAL" envDefault:"30s"`

	// Webhook delivery worker
	WebhookPollInterval time.Duration `env:"WEBHOOK_POLL_INTERVAL" envDefault:"5s"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// ShortURL builds the absolute short URL for a code.
func (c *Config) ShortURL(code string) string {
	return fmt.Sprintf("%s/l/%s", strings.TrimSuffix(c.BaseURL, "/"), code)
}

// Load parses environment variables and returns a Config.
// Returns an error if required variables are missing.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
