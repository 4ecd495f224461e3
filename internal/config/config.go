package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	Environment string `env:"APP_ENV" envDefault:"development"`
	ServerPort  string `env:"SERVER_PORT" envDefault:"8080"`
	AppURL      string `env:"APP_URL" envDefault:"http://localhost:8080"`

	MySQLDSN  string `env:"MYSQL_DSN" envDefault:"user:password@tcp(localhost:3306)/bankelig?charset=utf8mb4&parseTime=True&loc=Local"`
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`
	RedisPass string `env:"REDIS_PASSWORD"`

	// JWTSecret has no default on purpose: starting without one must fail
	// hard rather than sign sessions with a known value.
	JWTSecret string `env:"JWT_SECRET,notEmpty"`

	Mail MailConfig `envPrefix:"EMAIL_"`
}

// MailConfig holds SMTP settings for outbound mail.
type MailConfig struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     int    `env:"PORT" envDefault:"587"`
	Username string `env:"USER"`
	Password string `env:"PASS"`
	From     string `env:"FROM" envDefault:"no-reply@bankelig.local"`
}

// Load builds Config from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return &cfg, nil
}

// IsProduction reports whether the app runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
