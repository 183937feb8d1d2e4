package config

// Config holds all configuration for the application.
type Config struct {
	DBName   string
	Port     string
	Season   string
	LogLevel string
	Slack    SlackConfig
	Turso    TursoConfig
	// ProjectID is the GCP project used for Pub/Sub. Empty disables publishing.
	ProjectID string
}

type SlackConfig struct {
	Token     string
	ChannelID string
	// SigningSecret verifies slash command requests. Empty skips verification.
	SigningSecret string
}

// Enabled reports whether rating summaries should be posted to Slack.
func (c SlackConfig) Enabled() bool {
	return c.Token != "" && c.ChannelID != ""
}

type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}
