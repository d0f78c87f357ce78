package config

import "strings"

// Config holds all application configuration, grouped by concern.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Jobs     JobsConfig     `mapstructure:"jobs" validate:"required"`
}

// ServerConfig contains the HTTP server settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains the database connection settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// JobsConfig contains the batch job trigger settings.
type JobsConfig struct {
	// Secret authorizes job trigger requests. Every trigger must present it
	// in the X-Job-Secret header or the request body.
	Secret string `mapstructure:"secret" validate:"required,min=16"`

	// OverrideEmails is a comma-separated list of founder emails exempt from
	// match caps and trust decay.
	OverrideEmails string `mapstructure:"override_emails"`
}

// OverrideEmailList splits the configured override emails, trimming
// whitespace and dropping empties.
func (j JobsConfig) OverrideEmailList() []string {
	if j.OverrideEmails == "" {
		return nil
	}
	parts := strings.Split(j.OverrideEmails, ",")
	emails := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			emails = append(emails, trimmed)
		}
	}
	return emails
}
