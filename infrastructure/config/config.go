package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// AWS configuration
	AWSRegion         string
	CirclesTable      string
	ContentTable      string
	UsersTable        string
	CirculationsTable string

	// Lambda configuration
	IsLambda bool

	// Mail configuration
	MailgunDomain  string
	MailgunAPIKey  string
	MailFromName   string
	MailFromAddr   string
	MockMail       bool

	// Scheduling
	SendTimezone  string
	DispatchGrace time.Duration

	// Authentication (local development only; the gateway authorizer
	// validates tokens in front of the Lambda)
	JWTSecret string

	// Logging and features
	LogLevel   string
	EnableCORS bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),

		AWSRegion:         getEnv("AWS_REGION", "us-east-1"),
		CirclesTable:      getEnv("CIRCLES_TABLE", "circulate-circles"),
		ContentTable:      getEnv("CONTENT_TABLE", "circulate-content"),
		UsersTable:        getEnv("USERS_TABLE", "circulate-users"),
		CirculationsTable: getEnv("CIRCULATIONS_TABLE", "circulate-upcoming-circulations"),

		IsLambda: os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "",

		MailgunDomain: getEnv("MAILGUN_DOMAIN", ""),
		MailgunAPIKey: getEnv("MAILGUN_API_KEY", ""),
		MailFromName:  getEnv("MAIL_FROM_NAME", "Circulate"),
		MailFromAddr:  getEnv("MAIL_FROM_ADDR", "circulations@circulate.social"),
		MockMail:      getEnvBool("MOCK_MAIL", false),

		SendTimezone:  getEnv("SEND_TIMEZONE", "UTC"),
		DispatchGrace: getEnvDuration("DISPATCH_GRACE", 30*time.Minute),

		JWTSecret: getEnv("JWT_SECRET", ""),

		LogLevel:   getEnv("LOG_LEVEL", "info"),
		EnableCORS: getEnvBool("ENABLE_CORS", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.Environment == "production" {
		if c.MailgunDomain == "" && !c.MockMail {
			return fmt.Errorf("MAILGUN_DOMAIN is required in production")
		}
		if c.MailgunAPIKey == "" && !c.MockMail {
			return fmt.Errorf("MAILGUN_API_KEY is required in production")
		}
	}
	if _, err := time.LoadLocation(c.SendTimezone); err != nil {
		return fmt.Errorf("SEND_TIMEZONE %q is not a valid IANA timezone: %w", c.SendTimezone, err)
	}
	if c.DispatchGrace <= 0 {
		return fmt.Errorf("DISPATCH_GRACE must be positive")
	}
	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// SendLocation resolves the timezone the send schedule is evaluated in.
// Validate has already checked the name.
func (c *Config) SendLocation() *time.Location {
	loc, err := time.LoadLocation(c.SendTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvDuration gets a duration environment variable with a default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
