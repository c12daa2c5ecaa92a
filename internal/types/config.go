package types

import "time"

// Config holds all configuration options for the openwatch CLI
type Config struct {
	// ServerURL is the base URL of the management server REST API,
	// e.g. https://smc.example.net:8082
	ServerURL string `json:"server_url"`
	// APIKey authenticates the session login call
	APIKey string `json:"api_key"`
	// Insecure skips TLS certificate verification
	Insecure bool `json:"insecure"`

	// Monitor selects the query type: logs, connections, routes,
	// users, sslvpn, vpn, alerts or blocklist
	Monitor string `json:"monitor"`
	// Target is the engine/cluster name for session monitors
	Target string `json:"target"`
	// FetchSize bounds a stored fetch; 0 means server default
	FetchSize int `json:"fetch_size"`
	// Live streams results in real time instead of a stored fetch
	Live bool `json:"live"`
	// Output selects the render format: table, csv or raw
	Output string `json:"output"`
	// Backwards returns stored records newest first
	Backwards bool `json:"backwards"`
	// Since restricts stored queries to the trailing window, e.g. 15m
	Since time.Duration `json:"since"`
	// Timezone is applied to timestamp fields on the server side
	Timezone string `json:"timezone"`

	// ArchivePath, when set, captures every fetched batch into a
	// local SQLite database
	ArchivePath string `json:"archive_path"`
	// MetricsAddr, when set, serves Prometheus metrics on this address
	MetricsAddr string `json:"metrics_addr"`

	LogLevel string `json:"log_level"`
	LogFile  string `json:"log_file"`
}
