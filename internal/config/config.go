package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"
)

// Notification modes
const (
	NotifyModeAPI    = "api"
	NotifyModeQueue  = "queue"
	NotifyModeTwilio = "twilio"
)

// Ledger refresh policies
const (
	RefreshPolicyRefresh = "refresh"
	RefreshPolicyMerge   = "merge"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	API      APIConfig
	Ledger   LedgerConfig
	Notify   NotifyConfig
	Database DatabaseConfig
	RabbitMQ RabbitMQConfig
	Twilio   TwilioConfig
	Env      string
	LogLevel string
	Timezone string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port string
}

// APIConfig holds the remote water test API configuration
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// LedgerConfig controls how the record store follows a confirmed service update
type LedgerConfig struct {
	RefreshPolicy       string
	AutoRefreshSchedule string
}

// NotifyConfig selects how WhatsApp notifications are dispatched
type NotifyConfig struct {
	Mode           string
	WorkerDelivery string
	QueueName      string
	Template       string
}

// DatabaseConfig holds PostgreSQL configuration for the dispatch log
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// RabbitMQConfig holds RabbitMQ configuration
type RabbitMQConfig struct {
	Host     string
	Port     string
	User     string
	Password string
}

// TwilioConfig holds credentials for direct WhatsApp delivery
type TwilioConfig struct {
	AccountSID     string
	AuthToken      string
	WhatsAppNumber string
	AdminNumber    string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		API: APIConfig{
			BaseURL: strings.TrimRight(getEnv("API_URL", ""), "/"),
			Timeout: getEnvAsDuration("API_TIMEOUT", 30*time.Second),
		},
		Ledger: LedgerConfig{
			RefreshPolicy:       strings.ToLower(getEnv("LEDGER_REFRESH_POLICY", RefreshPolicyRefresh)),
			AutoRefreshSchedule: getEnv("AUTO_REFRESH_SCHEDULE", ""),
		},
		Notify: NotifyConfig{
			Mode:           strings.ToLower(getEnv("NOTIFY_MODE", NotifyModeAPI)),
			WorkerDelivery: strings.ToLower(getEnv("WORKER_DELIVERY", NotifyModeAPI)),
			QueueName:      getEnv("NOTIFY_QUEUE", "whatsapp_notifications"),
			Template:       getEnv("NOTIFY_TEMPLATE", ""),
		},
		Database: DatabaseConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnv("POSTGRES_PORT", "5432"),
			User:     getEnv("POSTGRES_USER", "watercare"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			DBName:   getEnv("POSTGRES_DB", "watercare_db"),
		},
		RabbitMQ: RabbitMQConfig{
			Host:     getEnv("RABBITMQ_HOST", "localhost"),
			Port:     getEnv("RABBITMQ_PORT", "5672"),
			User:     getEnv("RABBITMQ_DEFAULT_USER", "guest"),
			Password: getEnv("RABBITMQ_DEFAULT_PASS", "guest"),
		},
		Twilio: TwilioConfig{
			AccountSID:     getEnv("TWILIO_ACCOUNT_SID", ""),
			AuthToken:      getEnv("TWILIO_AUTH_TOKEN", ""),
			WhatsAppNumber: getEnv("TWILIO_WHATSAPP_NUMBER", ""),
			AdminNumber:    getEnv("ADMIN_WHATSAPP_NUMBER", ""),
		},
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Timezone: getEnv("APP_TIMEZONE", "UTC"),
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("API_URL is required")
	}
	if u, err := url.Parse(c.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("API_URL must be an absolute URL, got %q", c.API.BaseURL)
	}

	switch c.Ledger.RefreshPolicy {
	case RefreshPolicyRefresh, RefreshPolicyMerge:
	default:
		return fmt.Errorf("LEDGER_REFRESH_POLICY must be 'refresh' or 'merge'")
	}

	switch c.Notify.Mode {
	case NotifyModeAPI, NotifyModeQueue, NotifyModeTwilio:
	default:
		return fmt.Errorf("NOTIFY_MODE must be one of api, queue, twilio")
	}

	switch c.Notify.WorkerDelivery {
	case NotifyModeAPI, NotifyModeTwilio:
	default:
		return fmt.Errorf("WORKER_DELIVERY must be 'api' or 'twilio'")
	}

	if c.Notify.Mode == NotifyModeTwilio || c.Notify.WorkerDelivery == NotifyModeTwilio {
		if c.Twilio.AccountSID == "" || c.Twilio.AuthToken == "" {
			return fmt.Errorf("TWILIO_ACCOUNT_SID and TWILIO_AUTH_TOKEN are required for twilio delivery")
		}
		if c.Twilio.WhatsAppNumber == "" || c.Twilio.AdminNumber == "" {
			return fmt.Errorf("TWILIO_WHATSAPP_NUMBER and ADMIN_WHATSAPP_NUMBER are required for twilio delivery")
		}
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE %q: %w", c.Timezone, err)
	}

	return nil
}

// Location returns the configured business time zone
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// HasDatabase reports whether the dispatch log database is configured
func (c *Config) HasDatabase() bool {
	return c.Database.Password != ""
}

// GetDatabaseDSN returns PostgreSQL connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

// GetRabbitMQURL returns RabbitMQ connection URL
func (c *Config) GetRabbitMQURL() string {
	return fmt.Sprintf(
		"amqp://%s:%s@%s:%s/",
		c.RabbitMQ.User,
		c.RabbitMQ.Password,
		c.RabbitMQ.Host,
		c.RabbitMQ.Port,
	)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// getEnv gets environment variable or returns default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsDuration gets environment variable as a duration ("30s", "2m") or returns default
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
