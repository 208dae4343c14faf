package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		Database: DatabaseConfig{Path: "./stats.db"},
		Gmail: GmailConfig{
			CredentialsFile: "credentials.json",
			TokenFile:       "tokencache.json",
			User:            "me",
		},
		Fetch:  FetchConfig{PageSize: 500},
		Ingest: IngestConfig{MaxRetries: 3},
	}
}

func TestConfigValidation(t *testing.T) {
	assert.NoError(t, validConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{
			name:   "missing database path",
			mutate: func(c *Config) { c.Database.Path = "" },
		},
		{
			name:   "missing credentials file",
			mutate: func(c *Config) { c.Gmail.CredentialsFile = "" },
		},
		{
			name:   "missing token file",
			mutate: func(c *Config) { c.Gmail.TokenFile = "" },
		},
		{
			name:   "missing gmail user",
			mutate: func(c *Config) { c.Gmail.User = "" },
		},
		{
			name:   "zero page size",
			mutate: func(c *Config) { c.Fetch.PageSize = 0 },
		},
		{
			name:   "page size above provider cap",
			mutate: func(c *Config) { c.Fetch.PageSize = 501 },
		},
		{
			name:   "negative retry budget",
			mutate: func(c *Config) { c.Ingest.MaxRetries = -1 },
		},
		{
			name: "imap without credentials",
			mutate: func(c *Config) {
				c.Gmail.UseIMAP = true
				c.IMAP = IMAPConfig{Host: "imap.gmail.com", Port: 993}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestConfigValidationIMAP(t *testing.T) {
	cfg := validConfig()
	cfg.Gmail.UseIMAP = true
	// The OAuth file settings are irrelevant when fetching over IMAP.
	cfg.Gmail.CredentialsFile = ""
	cfg.Gmail.TokenFile = ""
	cfg.IMAP = IMAPConfig{
		Host:     "imap.gmail.com",
		Port:     993,
		User:     "me@example.com",
		Password: "app-password",
		Mailbox:  "INBOX",
	}

	assert.NoError(t, cfg.Validate())
}
