package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// Bhashini credentials (required for pipeline calls)
	ULCAUserID  string
	ULCAAPIKey  string
	AuthToken   string
	PipelineURL string

	// Models pipeline endpoint for the language/script listing
	ModelsPipelineURL string

	// HTTP settings
	HTTPPort    int
	BearerToken string
	RateLimit   int

	// Pipeline call settings
	RequestTimeout time.Duration
	DefaultGender  string

	// Audio settings
	RecordDevice   string
	RecordDuration time.Duration

	// Behavior settings
	MaxTextLength int
	QueueCapacity int
	DefaultTTL    time.Duration

	// Logging settings
	LogLevel  string
	LogFormat string
	LogFile   string
}

// Load reads configuration from environment variables with sane defaults.
// A .env file in the working directory is loaded first if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		// Bhashini credentials (required)
		ULCAUserID:  os.Getenv("ULCA_USER_ID"),
		ULCAAPIKey:  os.Getenv("ULCA_API_KEY"),
		AuthToken:   os.Getenv("BHASHINI_AUTH_TOKEN"),
		PipelineURL: os.Getenv("BHASHINI_PIPELINE_URL"),

		// Models pipeline endpoint (empty selects the public one)
		ModelsPipelineURL: os.Getenv("BHASHINI_MODELS_URL"),

		// HTTP settings
		HTTPPort:    getEnvInt("HTTP_PORT", 8080),
		BearerToken: os.Getenv("BEARER_TOKEN"),
		RateLimit:   getEnvInt("RATE_LIMIT", 30),

		// Pipeline call settings
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 60*time.Second),
		DefaultGender:  getEnvString("DEFAULT_GENDER", "female"),

		// Audio settings
		RecordDevice:   os.Getenv("RECORD_DEVICE"),
		RecordDuration: getEnvDuration("RECORD_DURATION", 5*time.Second),

		// Behavior settings
		MaxTextLength: getEnvInt("MAX_TEXT_LENGTH", 1000),
		QueueCapacity: getEnvInt("QUEUE_CAPACITY", 100),
		DefaultTTL:    getEnvDuration("DEFAULT_TTL", 30*time.Second),

		// Logging settings
		LogLevel:  getEnvString("LOG_LEVEL", "info"),
		LogFormat: getEnvString("LOG_FORMAT", "text"),
		LogFile:   os.Getenv("LOG_FILE"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// AuthDisabled returns true if bearer token authentication is disabled.
func (c *Config) AuthDisabled() bool {
	return c.BearerToken == ""
}

// HasCredentials returns true if all Bhashini credential values are set.
func (c *Config) HasCredentials() bool {
	return c.ULCAUserID != "" && c.ULCAAPIKey != "" && c.AuthToken != "" && c.PipelineURL != ""
}

// Validate checks that required configuration values are set.
func (c *Config) Validate() error {
	// Credentials are checked at client construction, not here, so the
	// binaries can start and report a clear warning instead.

	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return errors.New("HTTP_PORT must be between 1 and 65535")
	}

	if c.RateLimit < 1 {
		return errors.New("RATE_LIMIT must be at least 1")
	}

	if c.MaxTextLength < 1 {
		return errors.New("MAX_TEXT_LENGTH must be at least 1")
	}

	if c.QueueCapacity < 1 {
		return errors.New("QUEUE_CAPACITY must be at least 1")
	}

	if c.RequestTimeout < 0 {
		return errors.New("REQUEST_TIMEOUT must be non-negative")
	}

	if c.RecordDuration <= 0 {
		return errors.New("RECORD_DURATION must be positive")
	}

	if c.DefaultGender != "male" && c.DefaultGender != "female" {
		return errors.New("DEFAULT_GENDER must be one of: male, female")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.LogLevel] {
		return errors.New("LOG_LEVEL must be one of: debug, info, warn, error")
	}

	validLogFormats := map[string]bool{"text": true, "json": true}
	if !validLogFormats[c.LogFormat] {
		return errors.New("LOG_FORMAT must be one of: text, json")
	}

	return nil
}

// getEnvString returns the environment variable value or a default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the environment variable as an int or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns the environment variable as a duration or a default.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
