package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Configuration validation constants
const (
	MinPort = 1     // Minimum valid port number
	MaxPort = 65535 // Maximum valid port number

	// Default values
	DefaultHTTPPort   = 8080
	DefaultLogLevel   = "info"
	DefaultCacheTTL   = 300 // Cache time-to-live in seconds (5 minutes)
	DefaultAPITimeout = 30  // Azure API timeout in seconds
	DefaultMaxRetries = 3   // Total attempts per cost query, including the first
)

// Subscription identifies the Azure subscription whose costs are served
type Subscription struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// Azure holds service principal credentials. All three fields must be set to
// authenticate as a service principal; otherwise the default credential chain
// is used (environment, managed identity, az CLI login).
type Azure struct {
	TenantID     string `yaml:"tenant_id"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
}

// Config represents the application configuration
type Config struct {
	Subscription Subscription `yaml:"subscription"`
	Azure        Azure        `yaml:"azure"`
	HTTPPort     int          `yaml:"http_port"`
	LogLevel     string       `yaml:"log_level"`
	CacheTTL     int          `yaml:"cache_ttl"`   // seconds
	APITimeout   int          `yaml:"api_timeout"` // seconds
	MaxRetries   int          `yaml:"max_retries"`
}

// UseServicePrincipal reports whether a full set of service principal
// credentials is configured.
func (c *Config) UseServicePrincipal() bool {
	return c.Azure.TenantID != "" && c.Azure.ClientID != "" && c.Azure.ClientSecret != ""
}

// Load loads configuration from a YAML file and applies environment variable overrides
func Load(path string) (*Config, error) {
	// Read YAML file
	// #nosec G304 -- Config file path is provided by administrator via CLI flag, not user input
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply defaults
	applyDefaults(&cfg)

	// Override with environment variables
	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("environment variable error: %w", err)
	}

	// Validate
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for configuration
func applyDefaults(cfg *Config) {
	if cfg.HTTPPort == 0 {
		cfg.HTTPPort = DefaultHTTPPort
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	if cfg.APITimeout == 0 {
		cfg.APITimeout = DefaultAPITimeout
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
}

// applyEnvOverrides applies environment variable overrides to configuration
func applyEnvOverrides(cfg *Config) error {
	// Override subscription
	if val := os.Getenv("AZURE_SUBSCRIPTION_ID"); val != "" {
		cfg.Subscription.ID = val
	}
	if val := os.Getenv("AZURE_SUBSCRIPTION_NAME"); val != "" {
		cfg.Subscription.Name = val
	}

	// Override service principal credentials (standard Azure variable names)
	if val := os.Getenv("AZURE_TENANT_ID"); val != "" {
		cfg.Azure.TenantID = val
	}
	if val := os.Getenv("AZURE_CLIENT_ID"); val != "" {
		cfg.Azure.ClientID = val
	}
	if val := os.Getenv("AZURE_CLIENT_SECRET"); val != "" {
		cfg.Azure.ClientSecret = val
	}

	// Override HTTP port
	if val := os.Getenv("COST_API_HTTP_PORT"); val != "" {
		i, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid COST_API_HTTP_PORT: must be an integer, got %q", val)
		}
		cfg.HTTPPort = i
	}

	// Override log level
	if val := os.Getenv("COST_API_LOG_LEVEL"); val != "" {
		cfg.LogLevel = val
	}

	// Override cache TTL
	if val := os.Getenv("COST_API_CACHE_TTL"); val != "" {
		i, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid COST_API_CACHE_TTL: must be an integer, got %q", val)
		}
		cfg.CacheTTL = i
	}

	// Override API timeout
	if val := os.Getenv("COST_API_TIMEOUT"); val != "" {
		i, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid COST_API_TIMEOUT: must be an integer, got %q", val)
		}
		cfg.APITimeout = i
	}

	// Override max retries
	if val := os.Getenv("COST_API_MAX_RETRIES"); val != "" {
		i, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid COST_API_MAX_RETRIES: must be an integer, got %q", val)
		}
		cfg.MaxRetries = i
	}

	return nil
}

// validate validates the configuration
func validate(cfg *Config) error {
	if cfg.Subscription.ID == "" {
		return fmt.Errorf("subscription id is required")
	}

	if cfg.Subscription.Name == "" {
		return fmt.Errorf("subscription name is required")
	}

	if cfg.HTTPPort < MinPort || cfg.HTTPPort > MaxPort {
		return fmt.Errorf("http_port must be between %d and %d", MinPort, MaxPort)
	}

	if cfg.CacheTTL <= 0 {
		return fmt.Errorf("cache_ttl must be positive, got %d", cfg.CacheTTL)
	}

	// Validate API timeout
	if cfg.APITimeout <= 0 {
		return fmt.Errorf("api_timeout must be positive, got %d", cfg.APITimeout)
	}

	if cfg.APITimeout > 300 {
		return fmt.Errorf("api_timeout should not exceed 300 seconds (5 minutes), got %d", cfg.APITimeout)
	}

	if cfg.MaxRetries < 1 {
		return fmt.Errorf("max_retries must be at least 1, got %d", cfg.MaxRetries)
	}

	return nil
}
