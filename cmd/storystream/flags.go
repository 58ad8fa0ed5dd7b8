package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/c360/storystream/stream"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	Endpoint         string
	MaxEvents        int
	MaxRetries       int
	InitialDelay     time.Duration
	MaxDelay         time.Duration
	HeartbeatTimeout time.Duration
	LogLevel         string
	LogFormat        string
	MetricsPort      int
	ShowVersion      bool
	ShowHelp         bool
}

func parseFlags() *CLIConfig {
	cfg := &CLIConfig{}

	// Define flags with environment variable fallback
	flag.StringVar(&cfg.Endpoint, "endpoint",
		getEnv("STORYSTREAM_ENDPOINT", stream.DefaultEndpoint),
		"Stream endpoint URL; http(s) for SSE, ws(s) for websocket (env: STORYSTREAM_ENDPOINT)")

	flag.IntVar(&cfg.MaxEvents, "max-events",
		getEnvInt("STORYSTREAM_MAX_EVENTS", stream.DefaultMaxEvents),
		"Maximum events kept in memory (env: STORYSTREAM_MAX_EVENTS)")

	flag.IntVar(&cfg.MaxRetries, "max-retries",
		getEnvInt("STORYSTREAM_MAX_RETRIES", 10),
		"Reconnection attempts before giving up (env: STORYSTREAM_MAX_RETRIES)")

	flag.DurationVar(&cfg.InitialDelay, "retry-delay",
		getEnvDuration("STORYSTREAM_RETRY_DELAY", time.Second),
		"Initial reconnection delay (env: STORYSTREAM_RETRY_DELAY)")

	flag.DurationVar(&cfg.MaxDelay, "max-retry-delay",
		getEnvDuration("STORYSTREAM_MAX_RETRY_DELAY", 30*time.Second),
		"Reconnection delay ceiling (env: STORYSTREAM_MAX_RETRY_DELAY)")

	flag.DurationVar(&cfg.HeartbeatTimeout, "heartbeat-timeout",
		getEnvDuration("STORYSTREAM_HEARTBEAT_TIMEOUT", stream.DefaultHeartbeatTimeout),
		"Reconnect after this much stream silence (env: STORYSTREAM_HEARTBEAT_TIMEOUT)")

	flag.StringVar(&cfg.LogLevel, "log-level",
		getEnv("STORYSTREAM_LOG_LEVEL", "info"),
		"Log level: debug, info, warn, error (env: STORYSTREAM_LOG_LEVEL)")

	flag.StringVar(&cfg.LogFormat, "log-format",
		getEnv("STORYSTREAM_LOG_FORMAT", "text"),
		"Log format: json, text (env: STORYSTREAM_LOG_FORMAT)")

	flag.IntVar(&cfg.MetricsPort, "metrics-port",
		getEnvInt("STORYSTREAM_METRICS_PORT", 0),
		"Prometheus metrics port, 0 to disable (env: STORYSTREAM_METRICS_PORT)")

	flag.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	flag.BoolVar(&cfg.ShowVersion, "v", false, "Show version information")
	flag.BoolVar(&cfg.ShowHelp, "help", false, "Show help information")
	flag.BoolVar(&cfg.ShowHelp, "h", false, "Show help information")

	flag.Usage = func() {
		printDetailedHelp()
	}

	flag.Parse()

	return cfg
}

func validateFlags(cfg *CLIConfig) error {
	if cfg.ShowVersion || cfg.ShowHelp {
		return nil
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, cfg.LogLevel) {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}

	validFormats := []string{"json", "text"}
	if !contains(validFormats, cfg.LogFormat) {
		return fmt.Errorf("invalid log format: %s", cfg.LogFormat)
	}

	if cfg.MetricsPort < 0 || cfg.MetricsPort > 65535 {
		return fmt.Errorf("invalid metrics port: %d", cfg.MetricsPort)
	}

	return nil
}

func printDetailedHelp() {
	_, _ = fmt.Fprintf(os.Stderr, `%s - Narrative Event Stream Tailer

Usage: %s [options]

Options:
`, appName, os.Args[0])
	flag.PrintDefaults()
	_, _ = fmt.Fprintf(os.Stderr, `
Examples:
  # Tail the default local stream
  %s

  # Tail a remote websocket stream with debug logging
  %s --endpoint=wss://play.example.com/api/events/stream --log-level=debug

  # Expose Prometheus metrics while tailing
  %s --metrics-port=9090

  # Run with environment variables
  export STORYSTREAM_ENDPOINT=https://play.example.com/api/events/stream
  %s

Version: %s
Build: %s
`, os.Args[0], os.Args[0], os.Args[0], os.Args[0], Version, BuildTime)
}

// Environment variable helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// Utility function to check if slice contains string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
