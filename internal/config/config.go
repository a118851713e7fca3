package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds process configuration read from the environment.
type Config struct {
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`
	Port        string `env:"PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	MinioEndpoint  string `env:"MINIO_ENDPOINT" envDefault:"localhost:9000"`
	MinioAccessKey string `env:"MINIO_ACCESS_KEY" envDefault:"minioadmin"`
	MinioSecretKey string `env:"MINIO_SECRET_KEY" envDefault:"minioadmin"`
	MinioUseSSL    bool   `env:"MINIO_USE_SSL" envDefault:"false"`
	MinioBucket    string `env:"MINIO_BUCKET" envDefault:"actor-documents"`

	Token    TokenConfig
	Activity ActivityConfig

	// Minimum share the primary landlord keeps, in whole percent.
	PrimaryMinPercent int `env:"PRIMARY_MIN_PERCENT" envDefault:"25"`

	SelfServiceRateLimit  int           `env:"SELF_SERVICE_RATE_LIMIT" envDefault:"60"`
	SelfServiceRateWindow time.Duration `env:"SELF_SERVICE_RATE_WINDOW" envDefault:"1m"`
}

type TokenConfig struct {
	DefaultExpiryDays int           `env:"TOKEN_DEFAULT_EXPIRY_DAYS" envDefault:"7"`
	MinExpiryDays     int           `env:"TOKEN_MIN_EXPIRY_DAYS" envDefault:"1"`
	MaxExpiryDays     int           `env:"TOKEN_MAX_EXPIRY_DAYS" envDefault:"30"`
	SweepInterval     time.Duration `env:"TOKEN_SWEEP_INTERVAL" envDefault:"1h"`
}

type ActivityConfig struct {
	Buffer int `env:"ACTIVITY_LOG_BUFFER" envDefault:"256"`
}

// Load parses the environment and checks cross-field constraints.
func Load() (*Config, error) {
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
	t := c.Token
	if t.MinExpiryDays < 1 || t.MinExpiryDays > t.MaxExpiryDays {
		return fmt.Errorf("token expiry bounds [%d, %d] are invalid", t.MinExpiryDays, t.MaxExpiryDays)
	}
	if t.DefaultExpiryDays < t.MinExpiryDays || t.DefaultExpiryDays > t.MaxExpiryDays {
		return fmt.Errorf("default token expiry %d outside [%d, %d]", t.DefaultExpiryDays, t.MinExpiryDays, t.MaxExpiryDays)
	}
	if t.SweepInterval <= 0 {
		return fmt.Errorf("token sweep interval must be positive")
	}
	if c.PrimaryMinPercent < 1 || c.PrimaryMinPercent > 100 {
		return fmt.Errorf("primary minimum percent %d outside [1, 100]", c.PrimaryMinPercent)
	}
	if c.Activity.Buffer < 1 {
		return fmt.Errorf("activity log buffer must be positive")
	}
	return nil
}
