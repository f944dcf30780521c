package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTP    HTTP
	DB      Postgres
	Redis   Redis
	Catalog Catalog
}

type HTTP struct {
	Port            int
	ShutdownTimeout time.Duration
}

type Postgres struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
}

type Redis struct {
	// Addr empty means the catalog cache is disabled.
	Addr string
}

type Catalog struct {
	CacheTTL time.Duration
}

// Load reads configuration from environment variables, falling back to
// development defaults.
func Load() (*Config, error) {
	port, err := strconv.Atoi(getEnv("HTTP_PORT", "3000"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_PORT: %w", err)
	}

	cacheTTL, err := time.ParseDuration(getEnv("CATALOG_CACHE_TTL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid CATALOG_CACHE_TTL: %w", err)
	}

	return &Config{
		HTTP: HTTP{
			Port:            port,
			ShutdownTimeout: 10 * time.Second,
		},
		DB: Postgres{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Database: getEnv("DB_NAME", "pos_backoffice"),
		},
		Redis: Redis{
			Addr: getEnv("REDIS_ADDR", ""),
		},
		Catalog: Catalog{
			CacheTTL: cacheTTL,
		},
	}, nil
}

// DSN builds the postgres connection string.
func (p Postgres) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		p.User, p.Password, p.Host, p.Port, p.Database,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
