// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all runtime configuration for the Share Space backend.
// Values come from environment variables (a .env file is loaded by the
// entrypoints before this runs).
type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	Port        string `envconfig:"PORT" default:"8788"`

	// BaseURL is the externally visible origin used to build share links
	// and upload URLs, e.g. https://www.sharespace.media
	BaseURL string `envconfig:"BASE_URL" default:"http://localhost:8788"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	LogFile  string `envconfig:"LOG_FILE" default:"server.log"`

	DatabaseURL string `envconfig:"DATABASE_URL"`
	DBHost      string `envconfig:"DB_HOST" default:"localhost"`
	DBPort      string `envconfig:"DB_PORT" default:"5432"`
	DBUser      string `envconfig:"DB_USER" default:"postgres"`
	DBPassword  string `envconfig:"DB_PASSWORD"`
	DBName      string `envconfig:"DB_NAME" default:"sharespace"`
	DBSSLMode   string `envconfig:"DB_SSLMODE" default:"disable"`

	RedisHost     string `envconfig:"REDIS_HOST"`
	RedisPort     string `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`

	JWTSecret string        `envconfig:"JWT_SECRET"`
	JWTExpiry time.Duration `envconfig:"JWT_EXPIRY" default:"168h"`

	GoogleClientID     string `envconfig:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `envconfig:"GOOGLE_CLIENT_SECRET"`

	// Blob storage. Backend is "local" or "s3".
	StorageBackend string `envconfig:"STORAGE_BACKEND" default:"local"`
	UploadDir      string `envconfig:"UPLOAD_DIR" default:"./data/files"`
	MaxUploadSize  int64  `envconfig:"MAX_UPLOAD_SIZE" default:"52428800"` // 50 MiB

	AWSRegion  string `envconfig:"AWS_REGION"`
	AWSBucket  string `envconfig:"AWS_BUCKET"`
	CDNBaseURL string `envconfig:"CDN_BASE_URL"`

	// Share links. Backend is "memory", "redis" or "database".
	// A zero TTL keeps tokens until consumed.
	ShareLinkBackend       string        `envconfig:"SHARE_LINK_BACKEND" default:"database"`
	ShareLinkTTL           time.Duration `envconfig:"SHARE_LINK_TTL" default:"0"`
	ShareLinkSweepInterval time.Duration `envconfig:"SHARE_LINK_SWEEP_INTERVAL" default:"1h"`
	ShareLinkMaxPayload    int64         `envconfig:"SHARE_LINK_MAX_PAYLOAD" default:"26214400"` // 25 MiB

	// Rate limiting for the public consume endpoint
	ConsumeRateLimit  int           `envconfig:"CONSUME_RATE_LIMIT" default:"30"`
	ConsumeRateWindow time.Duration `envconfig:"CONSUME_RATE_WINDOW" default:"1m"`
}

// Load reads configuration from the environment
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}
	return &cfg, nil
}

// DSN returns the postgres connection string, preferring DATABASE_URL
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
