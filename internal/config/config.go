package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Supported storage backends
const (
	DriverMongo    = "mongodb"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

var (
	ErrMissingSecretKey = errors.New("SECRET_KEY is not set")
	ErrMissingStoreURI  = errors.New("store connection string is not set")
)

type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Auth      AuthConfig
}

type ServerConfig struct {
	Port            string        `env:"SERVER_PORT" envDefault:"8080"`
	Env             string        `env:"APP_ENV" envDefault:"dev"` // dev or prod
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"15s"`
	TrustedOrigins  []string      `env:"TRUSTED_ORIGINS" envDefault:"http://localhost:5173" envSeparator:","`
}

type StoreConfig struct {
	Driver        string `env:"STORE_DRIVER" envDefault:"mongodb"`
	MongoURI      string `env:"MONGO_URI"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"booktracker"`
	PostgresURL   string `env:"DATABASE_URL"`
}

// RedisConfig is optional; an empty Addr keeps rate limiting in-process
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

type RateLimitConfig struct {
	Requests int           `env:"RATE_LIMIT_REQUESTS" envDefault:"10"`
	Window   time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"15m"`
}

type AuthConfig struct {
	SecretKey   string `env:"SECRET_KEY"`
	Algorithm   string `env:"ALGORITHM" envDefault:"HS256"`
	TokenExpiry int    `env:"ACCESS_TOKEN_EXPIRE_MINUTES" envDefault:"30"`
}

// Load reads configuration from environment variables, after merging a .env
// file from the working directory when one exists
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Auth.SecretKey == "" {
		return ErrMissingSecretKey
	}

	switch c.Store.Driver {
	case DriverMongo:
		if c.Store.MongoURI == "" {
			return fmt.Errorf("MONGO_URI: %w", ErrMissingStoreURI)
		}
	case DriverPostgres:
		if c.Store.PostgresURL == "" {
			return fmt.Errorf("DATABASE_URL: %w", ErrMissingStoreURI)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.Store.Driver)
	}

	if c.Auth.TokenExpiry <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be positive, got %d", c.Auth.TokenExpiry)
	}

	if c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0 {
		return fmt.Errorf("rate limit must be positive, got %d per %s", c.RateLimit.Requests, c.RateLimit.Window)
	}

	return nil
}

// AccessTokenDuration returns the configured token validity window
func (c *AuthConfig) AccessTokenDuration() time.Duration {
	return time.Duration(c.TokenExpiry) * time.Minute
}

// IsDevelopment returns true if the environment is set to dev
func (c *ServerConfig) IsDevelopment() bool {
	return c.Env == "dev"
}
