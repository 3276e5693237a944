package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Storage backends
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// Config holds the service configuration read from the environment
type Config struct {
	Port           string   `env:"PORT" envDefault:"8080"`
	StorageBackend string   `env:"STORAGE_BACKEND" envDefault:"memory"`
	DatabaseURL    string   `env:"DATABASE_URL"`
	SQLitePath     string   `env:"SQLITE_PATH" envDefault:"thoughts.db"`
	JWTSecret      string   `env:"JWT_SECRET"`
	LogMode        string   `env:"LOG_MODE" envDefault:"development"`
	GinMode        string   `env:"GIN_MODE" envDefault:"release"`
	CORSOrigins    []string `env:"CORS_ORIGINS" envSeparator:","`
}

// LoadEnv loads environment variables from .env file
func LoadEnv() {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}
}

// Load parses the environment into a Config and validates it
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.StorageBackend = strings.ToLower(strings.TrimSpace(cfg.StorageBackend))
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks cross-field requirements
func (c Config) Validate() error {
	switch c.StorageBackend {
	case BackendMemory, BackendSQLite:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the %s backend", BackendPostgres)
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must be set")
	}
	return nil
}

// GetEnv gets an environment variable or returns a default value if not present
func GetEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
