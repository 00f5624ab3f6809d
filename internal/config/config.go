package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server  ServerConfig
	Auth    AuthConfig
	Import  ImportConfig
	Catalog CatalogConfig
	DB      DatabaseConfig
	Logging LoggingConfig
}

type ServerConfig struct {
	Host      string
	Port      int
	RateLimit int
}

type AuthConfig struct {
	Secret     string
	SessionTTL time.Duration
	// APIKey grants anonymous access to the function endpoints.
	APIKey string
}

type ImportConfig struct {
	Workers    int
	BufferSize int
}

type CatalogConfig struct {
	OverridesPath string
}

type DatabaseConfig struct {
	Path string
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	host := getEnv("SERVER_HOST", "localhost")
	port := getEnvInt("SERVER_PORT", 8080)

	cfg := &Config{
		Server: ServerConfig{
			Host:      host,
			Port:      port,
			RateLimit: getEnvInt("RATE_LIMIT_RPS", 50),
		},
		Auth: AuthConfig{
			Secret:     getEnv("AUTH_SECRET", ""),
			SessionTTL: getEnvDuration("SESSION_TTL", 12*time.Hour),
			APIKey:     getEnv("API_KEY", ""),
		},
		Import: ImportConfig{
			Workers:    getEnvInt("IMPORT_WORKERS", 4),
			BufferSize: getEnvInt("IMPORT_BUFFER_SIZE", 64),
		},
		Catalog: CatalogConfig{
			OverridesPath: getEnv("CATALOG_OVERRIDES_PATH", "./data/catalog-overrides.json"),
		},
		DB: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/subtrans-ops.db"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Auth.Secret == "" {
		return fmt.Errorf("AUTH_SECRET is required")
	}
	if c.Auth.SessionTTL < time.Minute {
		return fmt.Errorf("session TTL must be at least 1 minute")
	}

	if c.Import.Workers < 1 {
		return fmt.Errorf("import workers must be at least 1")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
