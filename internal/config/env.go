package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Sermon store backends.
const (
	StoreFile     = "file"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
	StoreS3       = "s3"
)

type Config struct {
	AIAPIKey          string        `env:"GEMINI_API_KEY"`
	GenModel          string        `env:"GEN_MODEL" envDefault:"gemini-1.5-flash"`
	CompletionTimeout time.Duration `env:"COMPLETION_TIMEOUT" envDefault:"60s"`

	Port        string   `env:"PORT" envDefault:"3001"`
	Vercel      bool     `env:"VERCEL"`
	CORSOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	WebDir      string   `env:"WEB_DIR"`
	LogLevel    string   `env:"LOG_LEVEL" envDefault:"info"`

	SermonStore string `env:"SERMON_STORE" envDefault:"file"`
	SermonsFile string `env:"SERMONS_FILE" envDefault:"sermons.json"`
	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`

	AwsAccessKey string `env:"AWS_ACCESS_KEY"`
	AwsSecretKey string `env:"AWS_SECRET_KEY"`
	AwsRegion    string `env:"AWS_REGION" envDefault:"us-east-2"`
	BucketName   string `env:"BUCKET_NAME"`
	S3Endpoint   string `env:"S3_ENDPOINT"`
	S3Key        string `env:"S3_KEY" envDefault:"sermons.json"`
}

// LoadConfig reads .env (if present) and the process environment.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("environment variables are invalid: %w", err)
	}
	cfg.SermonStore = strings.ToLower(strings.TrimSpace(cfg.SermonStore))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings the selected store backend needs.
// A missing GEMINI_API_KEY is allowed; chat requests report it instead.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.CompletionTimeout < 0 {
		return fmt.Errorf("COMPLETION_TIMEOUT must not be negative, got %s", c.CompletionTimeout)
	}
	switch c.SermonStore {
	case StoreFile:
		if c.SermonsFile == "" {
			return fmt.Errorf("SERMONS_FILE is required when SERMON_STORE=file")
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when SERMON_STORE=postgres")
		}
	case StoreRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when SERMON_STORE=redis")
		}
	case StoreS3:
		if c.BucketName == "" {
			return fmt.Errorf("BUCKET_NAME is required when SERMON_STORE=s3")
		}
		if c.AwsRegion == "" {
			return fmt.Errorf("AWS_REGION is required when SERMON_STORE=s3")
		}
	default:
		return fmt.Errorf("SERMON_STORE %q is not one of file, postgres, redis, s3", c.SermonStore)
	}
	return nil
}

// HasAPIKey reports whether a completion credential is configured.
func (c *Config) HasAPIKey() bool {
	return strings.TrimSpace(c.AIAPIKey) != ""
}

// Environment is the deployment tag reported by the health endpoint.
func (c *Config) Environment() string {
	if c.Vercel {
		return "vercel"
	}
	return "local"
}

// WritesEnabled is false on deployments whose filesystem is read-only.
func (c *Config) WritesEnabled() bool {
	return !(c.Vercel && c.SermonStore == StoreFile)
}
