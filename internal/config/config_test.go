package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_NAME", "")
	t.Setenv("PORT", "")
	t.Setenv("SLACK_BOT_TOKEN", "")
	t.Setenv("SLACK_CHANNEL_ID", "")

	cfg := Load()
	assert.Equal(t, "ndv-elo.db", cfg.DBName)
	assert.Equal(t, "8080", cfg.Port)
	assert.False(t, cfg.Slack.Enabled())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("DB_NAME", "darts.db")
	t.Setenv("SEASON", "2023")
	t.Setenv("SLACK_BOT_TOKEN", "xoxb-test")
	t.Setenv("SLACK_CHANNEL_ID", "C123")
	t.Setenv("SLACK_SIGNING_SECRET", "s3cret")
	t.Setenv("TURSO_PRIMARY_URL", "libsql://darts.turso.io")

	cfg := Load()
	assert.Equal(t, "darts.db", cfg.DBName)
	assert.Equal(t, "2023", cfg.Season)
	assert.True(t, cfg.Slack.Enabled())
	assert.Equal(t, "s3cret", cfg.Slack.SigningSecret)
	assert.Equal(t, "libsql://darts.turso.io", cfg.Turso.PrimaryURL)
}
