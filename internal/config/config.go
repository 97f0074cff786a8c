package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const defaultJWTSecret = "change-me-in-production"

// Config holds all service configuration loaded from environment variables.
type Config struct {
	Env            string   `env:"APP_ENV"         envDefault:"development"`
	Port           string   `env:"PORT"            envDefault:"8000"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envDefault:"http://localhost:5173,http://localhost:3000" envSeparator:","`

	JWTSecret  string        `env:"JWT_SECRET"  envDefault:"change-me-in-production"`
	AccessTTL  time.Duration `env:"ACCESS_TTL"  envDefault:"24h"`
	RefreshTTL time.Duration `env:"REFRESH_TTL" envDefault:"168h"`

	MongoURI string `env:"MONGO_URL" envDefault:"mongodb://localhost:27017"`
	MongoDB  string `env:"MONGO_DB"  envDefault:"smart_blog_db"`

	// Optional backends; an empty address disables the feature that uses it.
	PostgresDSN    string `env:"POSTGRES_DSN"`
	RedisAddr      string `env:"REDIS_ADDR"`
	RedisPassword  string `env:"REDIS_PASSWORD"`
	MinioEndpoint  string `env:"MINIO_ENDPOINT"`
	MinioAccessKey string `env:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `env:"MINIO_SECRET_KEY"`
	MinioBucket    string `env:"MINIO_BUCKET"  envDefault:"avatars"`
	MinioUseSSL    bool   `env:"MINIO_USE_SSL" envDefault:"false"`

	OpenRouterAPIKey string        `env:"OPENROUTER_API_KEY"`
	OpenRouterURL    string        `env:"OPENROUTER_URL"  envDefault:"https://openrouter.ai/api/v1"`
	OpenRouterModel  string        `env:"OPENROUTER_MODEL" envDefault:"openrouter/auto"`
	AITimeout        time.Duration `env:"AI_TIMEOUT"      envDefault:"30s"`
	AICacheTTL       time.Duration `env:"AI_CACHE_TTL"    envDefault:"1h"`

	// Tracing exports to OTLP when an endpoint is set, or to stdout when
	// TRACE_STDOUT is on. Neither means no tracing.
	TraceEndpoint string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	TraceStdout   bool    `env:"TRACE_STDOUT"       envDefault:"false"`
	TraceRatio    float64 `env:"TRACE_SAMPLE_RATIO" envDefault:"1"`
}

// Load reads an optional .env file and then parses the environment.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// IsProduction reports whether APP_ENV names a production deployment.
func (c *Config) IsProduction() bool {
	e := strings.ToLower(c.Env)
	return e == "production" || e == "prod"
}

// Validate checks required values and production-only hardening rules.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.MongoURI == "" {
		return errors.New("MONGO_URL is required")
	}
	if c.AccessTTL <= 0 || c.RefreshTTL <= 0 {
		return errors.New("token ttls must be positive")
	}
	if c.TraceRatio < 0 || c.TraceRatio > 1 {
		return errors.New("TRACE_SAMPLE_RATIO must be between 0 and 1")
	}
	if c.IsProduction() {
		if c.JWTSecret == defaultJWTSecret {
			return errors.New("JWT_SECRET must be changed from the default value in production")
		}
		if len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 characters in production")
		}
	}
	return nil
}
