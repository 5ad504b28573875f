package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the asset backend
type Config struct {
	// Server
	Port     string `yaml:"port"`
	Host     string `yaml:"host"`
	LogLevel string `yaml:"log_level"`

	// Application secret the token codec key is derived from
	AppSecret string `yaml:"-"`

	// Session cookie
	SessionCookieName string `yaml:"session_cookie_name"`
	CookieDomain      string `yaml:"cookie_domain"`

	// External identity provider handoff
	APIHost         string `yaml:"api_host"`
	RedirectBaseURL string `yaml:"redirect_base_url"`

	// Database
	DatabaseURL      string `yaml:"-"`
	DatabaseHost     string `yaml:"db_host"`
	DatabasePort     string `yaml:"db_port"`
	DatabaseName     string `yaml:"db_name"`
	DatabaseUser     string `yaml:"db_user"`
	DatabasePassword string `yaml:"-"`
	DatabaseSSLMode  string `yaml:"db_ssl_mode"`

	// Rate limiting
	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`

	// Session expiry applied when the identity provider supplies none
	SessionTimeout time.Duration `yaml:"session_timeout"`
}

// Load reads configuration from environment variables, with an optional
// YAML overlay file (CONFIG_FILE) for non-secret settings. Environment
// variables win over the overlay.
func Load() (*Config, error) {
	config := &Config{}

	// Optional YAML overlay for non-secret settings
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	// Server configuration
	config.Port = getEnvOrDefault("PORT", defaultString(config.Port, "3012"))
	config.Host = getEnvOrDefault("HOST", defaultString(config.Host, "0.0.0.0"))
	config.LogLevel = getEnvOrDefault("LOG_LEVEL", defaultString(config.LogLevel, "info"))

	// Secrets are environment-only
	config.AppSecret = os.Getenv("APP_SECRET")
	if config.AppSecret == "" {
		return nil, fmt.Errorf("APP_SECRET is required")
	}

	// Session cookie
	config.SessionCookieName = getEnvOrDefault("SESSION_COOKIE_NAME", defaultString(config.SessionCookieName, "hcmlSession"))
	config.CookieDomain = getEnvOrDefault("COOKIE_DOMAIN", config.CookieDomain)

	// Identity provider handoff
	config.APIHost = getEnvOrDefault("API_HOST", config.APIHost)
	if config.APIHost == "" {
		return nil, fmt.Errorf("API_HOST is required")
	}
	config.RedirectBaseURL = getEnvOrDefault("REDIRECT_BASE_URL", config.RedirectBaseURL)
	if config.RedirectBaseURL == "" {
		return nil, fmt.Errorf("REDIRECT_BASE_URL is required")
	}

	// Database configuration
	config.DatabaseURL = os.Getenv("DATABASE_URL")
	if config.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	config.DatabaseHost = getEnvOrDefault("DB_HOST", defaultString(config.DatabaseHost, "asset-postgres"))
	config.DatabasePort = getEnvOrDefault("DB_PORT", defaultString(config.DatabasePort, "5432"))
	config.DatabaseName = getEnvOrDefault("DB_NAME", defaultString(config.DatabaseName, "asset_db"))
	config.DatabaseUser = getEnvOrDefault("DB_USER", defaultString(config.DatabaseUser, "asset_user"))
	config.DatabasePassword = os.Getenv("DB_PASSWORD")
	config.DatabaseSSLMode = getEnvOrDefault("DB_SSL_MODE", defaultString(config.DatabaseSSLMode, "require"))

	// Rate limiting
	var err error
	config.RateLimitRPS, err = getFloatEnv("RATE_LIMIT_RPS", defaultFloat(config.RateLimitRPS, 20))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
	}
	config.RateLimitBurst, err = getIntEnv("RATE_LIMIT_BURST", defaultInt(config.RateLimitBurst, 40))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
	}

	sessionTimeoutStr := getEnvOrDefault("SESSION_TIMEOUT", "")
	if sessionTimeoutStr != "" {
		config.SessionTimeout, err = time.ParseDuration(sessionTimeoutStr)
		if err != nil {
			return nil, fmt.Errorf("invalid SESSION_TIMEOUT: %w", err)
		}
	}
	if config.SessionTimeout == 0 {
		config.SessionTimeout = 24 * time.Hour
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil {
		return fmt.Errorf("invalid port: %s", c.Port)
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535: %s", c.Port)
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, strings.ToLower(c.LogLevel)) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	if c.SessionCookieName == "" {
		return fmt.Errorf("session cookie name must not be empty")
	}

	if c.RateLimitRPS <= 0 || c.RateLimitBurst < 1 {
		return fmt.Errorf("rate limit must be positive (rps=%v, burst=%d)", c.RateLimitRPS, c.RateLimitBurst)
	}

	if c.SessionTimeout < time.Minute {
		return fmt.Errorf("session timeout must be at least 1 minute, got: %v", c.SessionTimeout)
	}

	return nil
}

// Helper functions

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) (int, error) {
	if value := os.Getenv(key); value != "" {
		return strconv.Atoi(value)
	}
	return defaultValue, nil
}

func getFloatEnv(key string, defaultValue float64) (float64, error) {
	if value := os.Getenv(key); value != "" {
		return strconv.ParseFloat(value, 64)
	}
	return defaultValue, nil
}

func defaultString(current, fallback string) string {
	if current != "" {
		return current
	}
	return fallback
}

func defaultInt(current, fallback int) int {
	if current != 0 {
		return current
	}
	return fallback
}

func defaultFloat(current, fallback float64) float64 {
	if current != 0 {
		return current
	}
	return fallback
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
