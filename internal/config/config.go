// Package config loads runtime settings from the environment, with an
// optional local .env file for development.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURI   string `env:"DATABASE_URI"`
	TelegramToken string `env:"TELEGRAM_TOKEN"`

	AIAPIKey  string `env:"AI_API_KEY"`
	AIBaseURL string `env:"AI_BASE_URL" envDefault:"https://openrouter.ai/api/v1"`
	AIModel   string `env:"AI_MODEL" envDefault:"openai/gpt-4o-mini"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SMTPFrom     string `env:"SMTP_FROM"`
	EmailTo      string `env:"EMAIL_TO"`
	// Preferred email transport name ("smtp" or "log"); empty keeps the
	// first registered one.
	EmailPreferred string `env:"EMAIL_PREFERRED"`

	ExactAlarms    bool `env:"EXACT_ALARMS" envDefault:"true"`
	MaxExactAlarms int  `env:"MAX_EXACT_ALARMS" envDefault:"256"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// EmailEnabled reports whether the SMTP transport is configured.
func (c *Config) EmailEnabled() bool {
	return c.SMTPHost != "" && c.SMTPFrom != ""
}

func Load() (*Config, error) {
	// .env file is optional in production
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
