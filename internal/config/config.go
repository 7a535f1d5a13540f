// Package config loads translator settings from the environment, a .env file
// and config.yaml using Viper. The caller loads once and passes the result on.
package config

import (
	"fmt"
	"time"

	"github.com/hpn/gpt-translator/internal/translator"
)

// Well-known keys, defined by the translator's store lookups.
const (
	KeyAPIKey  = translator.KeyAPIKey
	KeyBaseURL = translator.KeyBaseURL
	KeyModel   = translator.KeyModel
)

var _ translator.Store = (*Configuration)(nil)

// Configuration holds all application configuration values.
type Configuration struct {
	// OpenAI holds the completion service settings.
	OpenAI OpenAIConfig `json:"openai" mapstructure:"openai"`

	// Translator holds the default language pair.
	Translator TranslatorConfig `json:"translator" mapstructure:"translator"`

	// Server configuration for the serve command.
	Server ServerConfig `json:"server" mapstructure:"server"`

	// Logging configuration
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// OpenAIConfig holds completion service settings.
type OpenAIConfig struct {
	// APIKey is the credential. Its absence is reported by the translator, not here.
	APIKey string `json:"-" mapstructure:"api_key"`

	// BaseURL overrides the service endpoint. Empty means the client default.
	BaseURL string `json:"base_url" mapstructure:"base_url"`

	// Model is the model identifier. Empty means the translator default.
	Model string `json:"model" mapstructure:"model"`

	// Transport selects the client implementation (http, sdk).
	Transport string `json:"transport" mapstructure:"transport"`

	// TimeoutSeconds bounds one completion request. 0 disables the timeout.
	TimeoutSeconds int `json:"timeout_seconds" mapstructure:"timeout_seconds"`
}

// TranslatorConfig holds the default language pair.
type TranslatorConfig struct {
	Source string `json:"source" mapstructure:"source"`
	Target string `json:"target" mapstructure:"target"`
}

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	// Host is the server bind address.
	Host string `json:"host" mapstructure:"host"`

	// Port is the server port number.
	Port int `json:"port" mapstructure:"port"`

	ReadTimeoutSeconds     int `json:"read_timeout_seconds" mapstructure:"read_timeout_seconds"`
	WriteTimeoutSeconds    int `json:"write_timeout_seconds" mapstructure:"write_timeout_seconds"`
	ShutdownTimeoutSeconds int `json:"shutdown_timeout_seconds" mapstructure:"shutdown_timeout_seconds"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `json:"level" mapstructure:"level"`

	// Format is the log format (json, text).
	Format string `json:"format" mapstructure:"format"`
}

// Lookup exposes the completion settings under their well-known names so the
// configuration can serve as the translator's store.
func (c *Configuration) Lookup(key string) (string, bool) {
	var v string
	switch key {
	case KeyAPIKey:
		v = c.OpenAI.APIKey
	case KeyBaseURL:
		v = c.OpenAI.BaseURL
	case KeyModel:
		v = c.OpenAI.Model
	default:
		return "", false
	}
	return v, v != ""
}

// Timeout returns the completion request timeout.
func (c *Configuration) Timeout() time.Duration {
	return time.Duration(c.OpenAI.TimeoutSeconds) * time.Second
}

// Validate validates the configuration and returns an error if any field is out of range.
func (c *Configuration) Validate() error {
	var validationErrors []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		validationErrors = append(validationErrors, "server.port must be between 1 and 65535")
	}

	if c.Server.ReadTimeoutSeconds < 0 || c.Server.WriteTimeoutSeconds < 0 || c.Server.ShutdownTimeoutSeconds < 0 {
		validationErrors = append(validationErrors, "server timeouts cannot be negative")
	}

	if c.OpenAI.TimeoutSeconds < 0 {
		validationErrors = append(validationErrors, "openai.timeout_seconds cannot be negative")
	}

	if !isValidTransport(c.OpenAI.Transport) {
		validationErrors = append(validationErrors, (&InvalidValueError{
			Key:           "openai.transport",
			Value:         c.OpenAI.Transport,
			AllowedValues: []string{"http", "sdk"},
		}).Error())
	}

	if c.Logging.Level != "" && !isValidLogLevel(c.Logging.Level) {
		validationErrors = append(validationErrors, fmt.Sprintf(
			"logging.level '%s' is invalid, must be one of: debug, info, warn, error",
			c.Logging.Level,
		))
	}

	if c.Logging.Format != "" && c.Logging.Format != "json" && c.Logging.Format != "text" {
		validationErrors = append(validationErrors, fmt.Sprintf(
			"logging.format '%s' is invalid, must be one of: json, text",
			c.Logging.Format,
		))
	}

	if len(validationErrors) > 0 {
		return &ValidationError{Errors: validationErrors}
	}

	return nil
}

func isValidTransport(transport string) bool {
	switch transport {
	case "http", "sdk":
		return true
	default:
		return false
	}
}

// isValidLogLevel checks if the log level is valid.
func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}
