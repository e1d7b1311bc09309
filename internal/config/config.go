// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/labstack/gommon/bytes"
)

const (
	DedupMemory = "memory"
	DedupRedis  = "redis"

	maxImportWorkers = 10
)

var DefaultEnvFiles = []string{".env", ".env.local"}

type DatabaseOptions struct {
	Driver string `env:"DATABASE_DRIVER" envDefault:"postgres"`
	URL    string `env:"DATABASE_URL"`
}

type LegacyOptions struct {
	Driver string `env:"LEGACY_DATABASE_DRIVER" envDefault:"postgres"`
	URL    string `env:"LEGACY_DATABASE_URL"`
}

type ImportOptions struct {
	Workers       int    `env:"IMPORT_WORKERS" envDefault:"4"`
	BaseDir       string `env:"IMPORT_BASE_DIR" envDefault:"."`
	MaxUploadSize string `env:"MAX_UPLOAD_SIZE" envDefault:"10M"`
}

// MaxUploadBytes parses MaxUploadSize using the same units as echo's body limit.
func (o ImportOptions) MaxUploadBytes() (int64, error) {
	n, err := bytes.Parse(o.MaxUploadSize)
	if err != nil {
		return 0, fmt.Errorf("invalid MAX_UPLOAD_SIZE=%q: %w", o.MaxUploadSize, err)
	}
	return n, nil
}

type MigrationOptions struct {
	BatchSize       int           `env:"MIGRATION_BATCH_SIZE" envDefault:"100"`
	Lease           time.Duration `env:"MIGRATION_LEASE" envDefault:"60s"`
	RecordsMaxLimit int           `env:"MIGRATION_RECORDS_MAX_LIMIT" envDefault:"1000"`
}

type DedupOptions struct {
	Backend        string        `env:"DEDUP_BACKEND" envDefault:"memory"` // memory or redis
	RedisURL       string        `env:"REDIS_URL"`
	ReservationTTL time.Duration `env:"DEDUP_RESERVATION_TTL" envDefault:"5m"`
}

type AuthOptions struct {
	AdminEmail        string        `env:"ADMIN_EMAIL"`
	AdminPasswordHash string        `env:"ADMIN_PASSWORD_HASH"`
	SessionDuration   time.Duration `env:"SESSION_DURATION" envDefault:"30m"`
	SidCookieKey      string        `env:"SID_COOKIE_KEY" envDefault:"sid"`
}

type MetricsOptions struct {
	Enabled bool   `env:"METRICS_ENABLED" envDefault:"true"`
	Path    string `env:"METRICS_PATH" envDefault:"/metrics"`
}

type Configuration struct {
	Database  DatabaseOptions
	Legacy    LegacyOptions
	Import    ImportOptions
	Migration MigrationOptions
	Dedup     DedupOptions
	Auth      AuthOptions
	Metrics   MetricsOptions

	Port      int    `env:"PORT" envDefault:"8080"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// Load reads the env files that exist, then the process environment.
// Variables already set in the environment win over file values.
func Load(envFiles ...string) (*Configuration, error) {
	if err := loadEnvFiles(envFiles); err != nil {
		return nil, err
	}

	c := &Configuration{}
	if err := env.Parse(c); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	c.normalize()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func loadEnvFiles(envFiles []string) error {
	existing := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			existing = append(existing, file)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("load env files: %w", err)
	}
	return nil
}

func (c *Configuration) normalize() {
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	c.Legacy.Driver = strings.ToLower(strings.TrimSpace(c.Legacy.Driver))
	c.Dedup.Backend = strings.ToLower(strings.TrimSpace(c.Dedup.Backend))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))

	if c.Import.Workers < 1 {
		c.Import.Workers = 1
	}
	if c.Import.Workers > maxImportWorkers {
		c.Import.Workers = maxImportWorkers
	}
}

func (c *Configuration) Validate() error {
	var errs []error

	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("invalid DATABASE_DRIVER=%q (expected postgres|sqlite)", c.Database.Driver))
	}
	if c.Database.URL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}

	switch c.Legacy.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("invalid LEGACY_DATABASE_DRIVER=%q (expected postgres|mysql|sqlite)", c.Legacy.Driver))
	}
	if c.Legacy.URL == "" {
		errs = append(errs, errors.New("LEGACY_DATABASE_URL is required"))
	}

	switch c.Dedup.Backend {
	case DedupMemory:
	case DedupRedis:
		if c.Dedup.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is required when DEDUP_BACKEND is 'redis'"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid DEDUP_BACKEND=%q (expected memory|redis)", c.Dedup.Backend))
	}

	if _, err := c.Import.MaxUploadBytes(); err != nil {
		errs = append(errs, err)
	}
	if c.Migration.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("MIGRATION_BATCH_SIZE must be positive, got %d", c.Migration.BatchSize))
	}
	if c.Migration.Lease <= 0 {
		errs = append(errs, fmt.Errorf("MIGRATION_LEASE must be positive, got %s", c.Migration.Lease))
	}
	if c.Migration.RecordsMaxLimit <= 0 {
		errs = append(errs, fmt.Errorf("MIGRATION_RECORDS_MAX_LIMIT must be positive, got %d", c.Migration.RecordsMaxLimit))
	}
	if c.Auth.SessionDuration <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_DURATION must be positive, got %s", c.Auth.SessionDuration))
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("invalid LOG_FORMAT=%q (expected text|json)", c.LogFormat))
	}

	return errors.Join(errs...)
}

func (c *Configuration) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}
