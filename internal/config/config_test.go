package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://openrouter.ai/api/v1", cfg.AIBaseURL)
	assert.Equal(t, "openai/gpt-4o-mini", cfg.AIModel)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.True(t, cfg.ExactAlarms)
	assert.Equal(t, 256, cfg.MaxExactAlarms)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DATABASE_URI", "postgres://localhost/remindly")
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	t.Setenv("EXACT_ALARMS", "false")
	t.Setenv("MAX_EXACT_ALARMS", "32")
	t.Setenv("EMAIL_PREFERRED", "log")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/remindly", cfg.DatabaseURI)
	assert.Equal(t, "123:abc", cfg.TelegramToken)
	assert.False(t, cfg.ExactAlarms)
	assert.Equal(t, 32, cfg.MaxExactAlarms)
	assert.Equal(t, "log", cfg.EmailPreferred)
}

func TestEmailEnabled(t *testing.T) {
	cfg := &Config{}
	assert.False(t, cfg.EmailEnabled())

	cfg.SMTPHost = "smtp.example.com"
	assert.False(t, cfg.EmailEnabled())

	cfg.SMTPFrom = "remindly@example.com"
	assert.True(t, cfg.EmailEnabled())
}
