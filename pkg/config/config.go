package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for intake-hub.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values.
// Secrets (the credentials key, database password) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Database configuration (PostgreSQL)
	Database DatabaseConfig `yaml:"database"`

	// MigrationsPath is the directory containing SQL migrations.
	MigrationsPath string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`

	// Intake pipeline settings
	Intake IntakeConfig `yaml:"intake"`

	// Provider health monitoring settings
	Monitor MonitorConfig `yaml:"monitor"`

	// Encryption key for provider credentials at rest.
	// Must be a 32-byte key, base64 encoded. Generate with: openssl rand -base64 32
	// Server will fail to start if this is not set.
	CredentialsKey string `yaml:"-" env:"PROVIDER_CREDENTIALS_KEY"` // Secret - not in YAML
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"intake"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"intake_hub"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
}

// IntakeConfig holds intake pipeline settings.
type IntakeConfig struct {
	// UpstreamTimeoutSeconds bounds every upstream provider call.
	UpstreamTimeoutSeconds int `yaml:"upstream_timeout_seconds" env:"INTAKE_UPSTREAM_TIMEOUT_SECONDS" env-default:"30"`
}

// MonitorConfig holds provider health monitoring settings.
type MonitorConfig struct {
	// IntervalSeconds is the delay between health check rounds.
	IntervalSeconds int `yaml:"interval_seconds" env:"MONITOR_INTERVAL_SECONDS" env-default:"60"`
}

// ErrMissingCredentialsKey is returned when PROVIDER_CREDENTIALS_KEY is not set.
// This is fatal at startup: the service cannot store or read provider secrets without it.
var ErrMissingCredentialsKey = errors.New("PROVIDER_CREDENTIALS_KEY is required")

// Load reads configuration from config.yaml (if present) and the environment.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	if cfg.CredentialsKey == "" {
		return nil, ErrMissingCredentialsKey
	}

	return cfg, nil
}

// ConnectionString builds a pgx-compatible connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// UpstreamTimeout returns the bounded timeout for upstream provider calls.
func (c *IntakeConfig) UpstreamTimeout() time.Duration {
	return time.Duration(c.UpstreamTimeoutSeconds) * time.Second
}

// Interval returns the health check round interval.
func (c *MonitorConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}
