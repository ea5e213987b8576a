// Package config provides application configuration.
package config

import (
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	// Server settings
	Port string
	Host string

	// Database settings
	DBPath string

	// Logging
	Env      string
	LogLevel string

	// Used for encrypting the finance API key at rest
	EncryptionSecret string

	// Formatting
	Locale   string // BCP-47 tag, e.g. en-US
	Currency string // ISO 4217 code

	// Finance API client
	YahooURL    string // daily history download base
	HTTPTimeout time.Duration
	APIRate     float64 // requests per second
	APIBurst    int

	DemoMode bool
}

// New creates a new Config with values from environment variables or defaults.
// A .env file in the working directory is loaded first when present.
func New() *Config {
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PORT", "8080")
	v.SetDefault("HOST", "localhost")
	v.SetDefault("DB_PATH", filepath.Join("data", "folio.db"))
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("ENCRYPTION_SECRET", "change-me-in-production-32chars!")
	v.SetDefault("LOCALE", "en-US")
	v.SetDefault("CURRENCY", "USD")
	v.SetDefault("YAHOO_URL", "https://query1.finance.yahoo.com/v7/finance/download/")
	v.SetDefault("HTTP_TIMEOUT", "15s")
	v.SetDefault("API_RATE", 10.0)
	v.SetDefault("API_BURST", 20)
	v.SetDefault("DEMO_MODE", false)
	v.AutomaticEnv()

	return &Config{
		Port:             v.GetString("PORT"),
		Host:             v.GetString("HOST"),
		DBPath:           v.GetString("DB_PATH"),
		Env:              v.GetString("ENV"),
		LogLevel:         v.GetString("LOG_LEVEL"),
		EncryptionSecret: v.GetString("ENCRYPTION_SECRET"),
		Locale:           v.GetString("LOCALE"),
		Currency:         v.GetString("CURRENCY"),
		YahooURL:         v.GetString("YAHOO_URL"),
		HTTPTimeout:      v.GetDuration("HTTP_TIMEOUT"),
		APIRate:          v.GetFloat64("API_RATE"),
		APIBurst:         v.GetInt("API_BURST"),
		DemoMode:         v.GetBool("DEMO_MODE"),
	}
}

// Address returns the full address to bind the server to.
func (c *Config) Address() string {
	return c.Host + ":" + c.Port
}

// IsDevelopment reports whether the app runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
