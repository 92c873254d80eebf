package config

import (
	"errors"
	"fmt"
	"strings"
)

// Config defines the transactions API service configuration.
type Config struct {
	HTTP struct {
		Port string `yaml:"port" env:"TRANSACTIONS_HTTP_PORT"`
	} `yaml:"http"`
	Database struct {
		DSN string `yaml:"dsn" env:"TRANSACTIONS_POSTGRES_DSN"`
	} `yaml:"database"`
	Redis struct {
		Addr     string `yaml:"addr" env:"TRANSACTIONS_REDIS_ADDR"`
		Password string `yaml:"password" env:"TRANSACTIONS_REDIS_PASSWORD"`
	} `yaml:"redis"`
}

// Load reads configuration from the optional YAML file and environment.
// The Redis address is optional: when empty, the live connector-status
// override is disabled and statuses come from the database only.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.HTTP.Port = "8080"

	if err := load(cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return nil, errors.New("config: database dsn required")
	}
	return cfg, nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}
