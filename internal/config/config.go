// Package config loads the server configuration from the environment.
//
// Values are read from process environment variables, optionally seeded from
// a .env file in the working directory.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const minSecretLength = 32

// Config holds runtime settings for the homehub server.
type Config struct {
	Port     string         `env:"PORT" envDefault:"3000"`
	Database DatabaseConfig `envPrefix:"DATABASE_"`
	Auth     AuthConfig
	Presence PresenceConfig
	Notify   NotifyConfig
	Logging  LoggingConfig `envPrefix:"LOG_"`

	ClientURL      string   `env:"CLIENT_URL"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`
}

// DatabaseConfig selects the SQL dialect and connection string.
type DatabaseConfig struct {
	Driver string `env:"DRIVER" envDefault:"postgres"`
	URL    string `env:"URL,required"`

	// Timeout bounds every single store call.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"5s"`
}

// AuthConfig contains token signing settings.
type AuthConfig struct {
	JWTSecret      string        `env:"JWT_SECRET,required"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"30m"`
}

// PresenceConfig drives the hub presence sweeper. An Interval of zero
// disables the sweeper.
type PresenceConfig struct {
	Interval         time.Duration `env:"PRESENCE_INTERVAL" envDefault:"30s"`
	HeartbeatTimeout time.Duration `env:"HEARTBEAT_TIMEOUT" envDefault:"2m"`
}

// NotifyConfig holds the optional chat webhooks that receive alarm and
// offline notifications. Both are disabled when empty.
type NotifyConfig struct {
	DiscordWebhook string        `env:"DISCORD_WEBHOOK_URL"`
	SlackWebhook   string        `env:"SLACK_WEBHOOK_URL"`
	Timeout        time.Duration `env:"NOTIFY_TIMEOUT" envDefault:"5s"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"`
}

var defaultOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
}

// Load reads an optional .env file and parses the environment into a Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env file: %w", err)
	}

	return Parse()
}

// Parse builds a Config from the current environment and validates it.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate checks values that env tags cannot express.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	if len(c.Auth.JWTSecret) < minSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d bytes", minSecretLength)
	}

	if c.Auth.AccessTokenTTL <= 0 {
		return errors.New("ACCESS_TOKEN_TTL must be positive")
	}

	if c.Database.Timeout <= 0 {
		return errors.New("DATABASE_TIMEOUT must be positive")
	}

	if c.Notify.Timeout <= 0 {
		return errors.New("NOTIFY_TIMEOUT must be positive")
	}

	for _, origin := range c.Origins() {
		if !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("origin %q must start with http:// or https://", origin)
		}
	}

	if c.Presence.Interval < 0 || c.Presence.HeartbeatTimeout <= 0 {
		return errors.New("invalid presence settings")
	}

	return nil
}

// Origins returns the CORS and websocket origin allow-list.
func (c *Config) Origins() []string {
	origins := make([]string, len(defaultOrigins))
	copy(origins, defaultOrigins)

	if c.ClientURL != "" {
		origins = append(origins, c.ClientURL)
	}

	for _, origin := range c.AllowedOrigins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}

	return origins
}
