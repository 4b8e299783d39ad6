package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// ServerConfig configures the chat backend. Values come from the environment,
// optionally seeded from a .env file.
type ServerConfig struct {
	Addr            string        `env:"TRAVELCHAT_ADDR" envDefault:":5000"`
	IntentsPath     string        `env:"TRAVELCHAT_INTENTS"`
	Threshold       float64       `env:"TRAVELCHAT_THRESHOLD" envDefault:"0.25"`
	Seed            int64         `env:"TRAVELCHAT_SEED"`
	AllowedOrigins  []string      `env:"TRAVELCHAT_CORS_ORIGINS" envSeparator:"," envDefault:"*"`
	LogLevel        string        `env:"TRAVELCHAT_LOG_LEVEL" envDefault:"info"`
	ShutdownTimeout time.Duration `env:"TRAVELCHAT_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// LoadServerConfig reads the server configuration. Missing env files are not an error.
func LoadServerConfig(envFiles ...string) (ServerConfig, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return ServerConfig{}, fmt.Errorf("failed to load env file: %w", err)
	}

	var cfg ServerConfig
	if err := env.Parse(&cfg); err != nil {
		return ServerConfig{}, fmt.Errorf("failed to parse server config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return ServerConfig{}, err
	}
	return cfg, nil
}

// Validate checks value ranges and normalises the listen address
func (c *ServerConfig) Validate() error {
	addr := strings.TrimSpace(c.Addr)
	if addr == "" || strings.Contains(addr, " ") {
		return fmt.Errorf("invalid TRAVELCHAT_ADDR value: %q", c.Addr)
	}
	if !strings.Contains(addr, ":") {
		// allow a bare port
		addr = ":" + addr
	}
	c.Addr = addr

	if c.Threshold < 0 || c.Threshold >= 1 {
		return fmt.Errorf("TRAVELCHAT_THRESHOLD must be in [0, 1), got %v", c.Threshold)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("TRAVELCHAT_SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}
