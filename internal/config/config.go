package config

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

const (
	defaultDBName = "ndv-elo.db"
	defaultPort   = "8080"
)

// Load reads configuration from environment variables and .env file.
// Every value is optional; a local sqlite file is used when nothing is set.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Debug("No .env file found, reading from environment variables")
	}

	getEnv := func(key, fallback string) string {
		if value, ok := os.LookupEnv(key); ok && value != "" {
			return value
		}
		return fallback
	}

	cfg := Config{
		DBName:   getEnv("DB_NAME", defaultDBName),
		Port:     getEnv("PORT", defaultPort),
		Season:   getEnv("SEASON", ""),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Slack: SlackConfig{
			Token:         getEnv("SLACK_BOT_TOKEN", ""),
			ChannelID:     getEnv("SLACK_CHANNEL_ID", ""),
			SigningSecret: getEnv("SLACK_SIGNING_SECRET", ""),
		},
		Turso: TursoConfig{
			PrimaryURL: getEnv("TURSO_PRIMARY_URL", ""),
			AuthToken:  getEnv("TURSO_AUTH_TOKEN", ""),
		},
		ProjectID: getEnv("GCP_PROJECT", ""),
	}
	return cfg
}

// ApplyLogLevel sets the global logger level from the configured name.
// Unknown names keep the current level.
func (c Config) ApplyLogLevel() {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		log.Warn("Unknown log level, keeping default", "level", c.LogLevel)
		return
	}
	log.SetLevel(level)
}
