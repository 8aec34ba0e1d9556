// Package config provides configuration management for the application.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the application.
type Config struct {
	// AWS
	AWSRegion string
	S3Bucket  string

	// Database
	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string

	// SES
	SESSenderEmail string

	// Catalog ingestion
	RateCardPrefix     string
	CriteriaCardPrefix string

	// Overlay
	OverlaySettingKey string

	// Application
	Stage    string
	LogLevel string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	_ = godotenv.Load()

	cfg := &Config{
		// AWS
		AWSRegion: getEnv("AWS_REGION", "eu-west-2"),
		S3Bucket:  getEnv("S3_BUCKET", "broker-quote-cards-dev"),

		// Database
		DBHost:     getEnv("DB_HOST", getEnv("QUOTE_DB_HOST", "localhost")),
		DBPort:     getEnvInt("DB_PORT", getEnvInt("QUOTE_DB_PORT", 5432)),
		DBName:     getEnv("DB_NAME", getEnv("QUOTE_DB_NAME", "broker_quotes")),
		DBUser:     getEnv("DB_USER", getEnv("QUOTE_DB_USER", "postgres")),
		DBPassword: getEnv("DB_PASSWORD", getEnv("QUOTE_DB_PASSWORD", "")),

		// SES
		SESSenderEmail: getEnv("SES_SENDER_EMAIL", ""),

		// Catalog ingestion
		RateCardPrefix:     getEnv("RATE_CARD_PREFIX", "rate-cards/"),
		CriteriaCardPrefix: getEnv("CRITERIA_CARD_PREFIX", "criteria-cards/"),

		// Overlay
		OverlaySettingKey: getEnv("OVERLAY_SETTING_KEY", "pricing_overlay"),

		// Application
		Stage:    getEnv("STAGE", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return cfg, nil
}

// DatabaseURL returns the PostgreSQL connection string.
func (c *Config) DatabaseURL() string {
	sslMode := "require" // Use SSL for RDS
	if c.DBHost == "localhost" || c.DBHost == "127.0.0.1" {
		sslMode = "disable" // Disable SSL for local development
	}
	return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + strconv.Itoa(c.DBPort) + "/" + c.DBName + "?sslmode=" + sslMode
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an environment variable as int or returns a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
