// Package config provides configuration management for the Azure Cost API.
//
// This package handles loading configuration from YAML files, applying
// environment variable overrides, setting defaults, and validating the
// configuration.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (highest priority)
//  2. YAML configuration file
//  3. Default values (lowest priority)
//
// Supported environment variables:
//   - AZURE_SUBSCRIPTION_ID / AZURE_SUBSCRIPTION_NAME: subscription to serve
//   - AZURE_TENANT_ID / AZURE_CLIENT_ID / AZURE_CLIENT_SECRET: service
//     principal credentials (all three required to use a service principal)
//   - COST_API_HTTP_PORT: HTTP server port (1-65535)
//   - COST_API_LOG_LEVEL: Log level (debug, info, warn, error)
//   - COST_API_CACHE_TTL: Result cache time-to-live in seconds
//   - COST_API_TIMEOUT: Azure API request timeout in seconds (max 300)
//   - COST_API_MAX_RETRIES: Attempts per cost query, including the first
//
// Example configuration file (config.yaml):
//
//	subscription:
//	  id: "8015083b-adad-42ff-922d-feaed61c5d62"
//	  name: "production"
//
//	http_port: 8080
//	log_level: "info"
//	cache_ttl: 300
//	api_timeout: 30
//	max_retries: 3
//
// Example usage:
//
//	cfg, err := config.Load("config.yaml")
//	if err != nil {
//		log.Fatalf("Failed to load config: %v", err)
//	}
package config
