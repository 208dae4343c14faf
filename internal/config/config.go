package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// gmailMaxPageSize is the largest page the Gmail API will return per listing
// call.
const gmailMaxPageSize = 500

// Config holds all configuration for the application
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Gmail    GmailConfig    `mapstructure:"gmail"`
	IMAP     IMAPConfig     `mapstructure:"imap"`
	Fetch    FetchConfig    `mapstructure:"fetch"`
	Ingest   IngestConfig   `mapstructure:"ingest"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// DatabaseConfig holds the SQLite database configuration
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// GmailConfig holds Gmail API configuration
type GmailConfig struct {
	CredentialsFile string `mapstructure:"credentials_file"`
	TokenFile       string `mapstructure:"token_file"`
	User            string `mapstructure:"user"`
	UseIMAP         bool   `mapstructure:"use_imap"`
}

// IMAPConfig holds IMAP configuration for the alternative fetcher
type IMAPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Mailbox  string `mapstructure:"mailbox"`
}

// FetchConfig holds message listing configuration
type FetchConfig struct {
	PageSize int64 `mapstructure:"page_size"`
}

// IngestConfig holds ingestion loop configuration
type IngestConfig struct {
	MaxRetries int `mapstructure:"max_retries"`
}

// MetricsConfig holds metrics export configuration
type MetricsConfig struct {
	PushGatewayURL string `mapstructure:"push_gateway_url"`
	JobName        string `mapstructure:"job_name"`
}

// LoadConfig loads configuration from environment variables and config file
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Set defaults
	setDefaults()

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Environment variables override config file
	viper.AutomaticEnv()

	// Bind environment variables
	bindEnvVars()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("database.path", "./stats.db")

	viper.SetDefault("gmail.credentials_file", "credentials.json")
	viper.SetDefault("gmail.token_file", "tokencache.json")
	viper.SetDefault("gmail.user", "me")
	viper.SetDefault("gmail.use_imap", false)

	viper.SetDefault("imap.host", "imap.gmail.com")
	viper.SetDefault("imap.port", 993)
	viper.SetDefault("imap.mailbox", "INBOX")

	viper.SetDefault("fetch.page_size", gmailMaxPageSize)
	viper.SetDefault("ingest.max_retries", 3)

	viper.SetDefault("metrics.job_name", "sender-stats")
}

// bindEnvVars binds environment variables to configuration keys
func bindEnvVars() {
	// Database
	viper.BindEnv("database.path", "DB_PATH")

	// Gmail
	viper.BindEnv("gmail.credentials_file", "GMAIL_CREDENTIALS_FILE")
	viper.BindEnv("gmail.token_file", "GMAIL_TOKEN_FILE")
	viper.BindEnv("gmail.user", "GMAIL_USER")
	viper.BindEnv("gmail.use_imap", "GMAIL_USE_IMAP")

	// IMAP
	viper.BindEnv("imap.host", "IMAP_HOST")
	viper.BindEnv("imap.port", "IMAP_PORT")
	viper.BindEnv("imap.user", "IMAP_USER")
	viper.BindEnv("imap.password", "IMAP_PASSWORD")
	viper.BindEnv("imap.mailbox", "IMAP_MAILBOX")

	// Fetch / ingest
	viper.BindEnv("fetch.page_size", "FETCH_PAGE_SIZE")
	viper.BindEnv("ingest.max_retries", "INGEST_MAX_RETRIES")

	// Metrics
	viper.BindEnv("metrics.push_gateway_url", "METRICS_PUSH_GATEWAY_URL")
	viper.BindEnv("metrics.job_name", "METRICS_JOB_NAME")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}

	if c.Gmail.UseIMAP {
		if c.IMAP.Host == "" || c.IMAP.User == "" || c.IMAP.Password == "" {
			return fmt.Errorf("IMAP host, user, and password are required when using IMAP")
		}
	} else {
		if c.Gmail.CredentialsFile == "" || c.Gmail.TokenFile == "" {
			return fmt.Errorf("Gmail credentials and token files are required when not using IMAP")
		}
		if c.Gmail.User == "" {
			return fmt.Errorf("Gmail user is required when not using IMAP")
		}
	}

	if c.Fetch.PageSize <= 0 || c.Fetch.PageSize > gmailMaxPageSize {
		return fmt.Errorf("fetch page size must be between 1 and %d", gmailMaxPageSize)
	}

	if c.Ingest.MaxRetries < 0 {
		return fmt.Errorf("ingest max retries must not be negative")
	}

	return nil
}
