package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"openwatch/internal/types"
)

// LoadConfig loads configuration from command-line flags and environment variables
// with sensible defaults
func LoadConfig() (*types.Config, error) {
	return LoadConfigWithFlagSet(flag.CommandLine)
}

// LoadConfigWithFlagSet loads configuration using a specific flag set
// This allows for better testing by avoiding global flag conflicts
func LoadConfigWithFlagSet(fs *flag.FlagSet) (*types.Config, error) {
	config := &types.Config{}

	// Define command-line flags with defaults
	serverURL := fs.String("url", "", "Management server base URL, e.g. https://smc.example.com:8082")
	apiKey := fs.String("api-key", "", "API client key for authentication")
	insecure := fs.Bool("insecure", false, "Skip TLS certificate verification")
	monitor := fs.String("monitor", "logs", "Monitor to query: logs, connections, routes, users, sslvpn, vpn-sa, alerts, blocklist")
	target := fs.String("target", "", "Target engine name for session monitors")
	fetchSize := fs.Int("fetch-size", 200, "Maximum number of records for a stored fetch")
	live := fs.Bool("live", false, "Stream records in real time instead of a stored fetch")
	output := fs.String("output", "table", "Output format: table, csv or raw")
	backwards := fs.Bool("backwards", true, "Return stored records newest first")
	since := fs.Duration("since", time.Hour, "How far back the stored fetch time range reaches")
	timezone := fs.String("timezone", "", "Timezone applied to timestamp fields, e.g. Europe/Helsinki")
	archivePath := fs.String("archive-path", "", "Path to SQLite archive database (empty disables archiving)")
	metricsAddr := fs.String("metrics-addr", "", "Listen address for Prometheus metrics (empty disables metrics)")
	logLevel := fs.String("log-level", "info", "Log level: debug, info, warn or error")
	logFile := fs.String("log-file", "", "Log file path (empty logs to stderr)")

	// Only parse if this is the global command line
	if fs == flag.CommandLine {
		fs.Parse(os.Args[1:])
	}

	// Load from environment variables (override flags)
	config.ServerURL = getStringFromEnv("OPENWATCH_URL", *serverURL)
	config.APIKey = getStringFromEnv("OPENWATCH_API_KEY", *apiKey)
	config.Insecure = getBoolFromEnv("OPENWATCH_INSECURE", *insecure)
	config.Monitor = getStringFromEnv("OPENWATCH_MONITOR", *monitor)
	config.Target = getStringFromEnv("OPENWATCH_TARGET", *target)
	config.FetchSize = getIntFromEnv("OPENWATCH_FETCH_SIZE", *fetchSize)
	config.Live = getBoolFromEnv("OPENWATCH_LIVE", *live)
	config.Output = getStringFromEnv("OPENWATCH_OUTPUT", *output)
	config.Backwards = getBoolFromEnv("OPENWATCH_BACKWARDS", *backwards)
	config.Since = getDurationFromEnv("OPENWATCH_SINCE", *since)
	config.Timezone = getStringFromEnv("OPENWATCH_TIMEZONE", *timezone)
	config.ArchivePath = getStringFromEnv("OPENWATCH_ARCHIVE_PATH", *archivePath)
	config.MetricsAddr = getStringFromEnv("OPENWATCH_METRICS_ADDR", *metricsAddr)
	config.LogLevel = getStringFromEnv("OPENWATCH_LOG_LEVEL", *logLevel)
	config.LogFile = getStringFromEnv("OPENWATCH_LOG_FILE", *logFile)

	// Validate configuration
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// validMonitors are the monitor names the CLI can run.
var validMonitors = map[string]bool{
	"logs":        true,
	"connections": true,
	"routes":      true,
	"users":       true,
	"sslvpn":      true,
	"vpn-sa":      true,
	"alerts":      true,
	"blocklist":   true,
}

// validateConfig validates the configuration and applies business rules
func validateConfig(config *types.Config) error {
	if strings.TrimSpace(config.ServerURL) == "" {
		return fmt.Errorf("url cannot be empty")
	}
	if !strings.HasPrefix(config.ServerURL, "http://") && !strings.HasPrefix(config.ServerURL, "https://") {
		return fmt.Errorf("url must start with http:// or https://, got %q", config.ServerURL)
	}
	if strings.TrimSpace(config.APIKey) == "" {
		return fmt.Errorf("api-key cannot be empty")
	}

	if !validMonitors[config.Monitor] {
		return fmt.Errorf("unknown monitor %q", config.Monitor)
	}

	// Session monitors always run against a named engine
	if config.Monitor != "logs" && config.Monitor != "alerts" && strings.TrimSpace(config.Target) == "" {
		return fmt.Errorf("target cannot be empty for the %s monitor", config.Monitor)
	}

	if config.FetchSize < 0 {
		return fmt.Errorf("fetch-size must be non-negative, got %d", config.FetchSize)
	}
	if config.Since < 0 {
		return fmt.Errorf("since must be non-negative, got %s", config.Since)
	}

	switch config.Output {
	case "table", "csv", "raw":
	default:
		return fmt.Errorf("output must be table, csv or raw, got %q", config.Output)
	}

	return nil
}

// Helper functions for environment variable parsing

func getStringFromEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntFromEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolFromEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getDurationFromEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
