// Package main implements the storystream CLI, a terminal tailer for the
// narrative realtime event stream. It maintains a resilient subscription and
// prints events to stdout as they arrive, with optional Prometheus metrics.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/c360/storystream/event"
	"github.com/c360/storystream/metric"
	"github.com/c360/storystream/stream"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "storystream"
)

// pollInterval is how often the tailer drains the event log to stdout.
const pollInterval = 250 * time.Millisecond

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run() error {
	cliCfg, shouldExit, err := initializeCLI()
	if shouldExit || err != nil {
		return err
	}

	metricsRegistry, stopMetrics, err := setupMetrics(cliCfg)
	if err != nil {
		return err
	}
	defer stopMetrics()

	sub, err := buildSubscription(cliCfg, metricsRegistry)
	if err != nil {
		return fmt.Errorf("create subscription: %w", err)
	}
	defer func() { _ = sub.Close() }()

	if err := sub.Start(); err != nil {
		return fmt.Errorf("start subscription: %w", err)
	}
	slog.Info("tailing stream", "endpoint", cliCfg.Endpoint)

	return tail(sub)
}

// initializeCLI parses flags and sets up logging
func initializeCLI() (*CLIConfig, bool, error) {
	cliCfg := parseFlags()
	if err := validateFlags(cliCfg); err != nil {
		return nil, false, fmt.Errorf("invalid flags: %w", err)
	}

	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil, true, nil
	}

	if cliCfg.ShowHelp {
		printDetailedHelp()
		return nil, true, nil
	}

	logger := setupLogger(cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	return cliCfg, false, nil
}

// setupMetrics starts the metrics endpoint when a port is configured.
func setupMetrics(cliCfg *CLIConfig) (*metric.MetricsRegistry, func(), error) {
	if cliCfg.MetricsPort == 0 {
		return nil, func() {}, nil
	}

	registry := metric.NewMetricsRegistry()
	server := metric.NewServer(cliCfg.MetricsPort, "/metrics", registry)
	if err := server.Start(); err != nil {
		return nil, nil, fmt.Errorf("start metrics server: %w", err)
	}
	slog.Info("metrics endpoint up", "port", cliCfg.MetricsPort)

	return registry, func() { _ = server.Stop(5 * time.Second) }, nil
}

// buildSubscription maps CLI flags onto a stream configuration.
func buildSubscription(cliCfg *CLIConfig, registry *metric.MetricsRegistry) (*stream.Subscription, error) {
	cfg := stream.DefaultConfig()
	cfg.Name = appName
	cfg.Endpoint = cliCfg.Endpoint
	cfg.MaxEvents = cliCfg.MaxEvents
	cfg.MaxRetries = cliCfg.MaxRetries
	cfg.InitialRetryDelay = cliCfg.InitialDelay
	cfg.MaxRetryDelay = cliCfg.MaxDelay
	cfg.HeartbeatTimeout = cliCfg.HeartbeatTimeout
	cfg.Metrics = registry
	cfg.OnDecisionEvent = printDecision

	return stream.New(cfg)
}

// tail prints events until a shutdown signal arrives or the subscription
// parks in a terminal error.
func tail(sub *stream.Subscription) error {
	signalCtx, signalCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer signalCancel()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	var lastID string
	for {
		select {
		case <-signalCtx.Done():
			slog.Info("Received shutdown signal")
			printStats(sub)
			return nil
		case <-ticker.C:
			lastID = printNewEvents(sub, lastID)
			if sub.State() == stream.StateError {
				printStats(sub)
				return fmt.Errorf("stream gave up: %w", sub.Err())
			}
		}
	}
}

// printNewEvents writes events newer than lastID to stdout, oldest first,
// and returns the newest ID seen. When lastID has been evicted the whole
// log is treated as new.
func printNewEvents(sub *stream.Subscription, lastID string) string {
	events := sub.Events()
	if len(events) == 0 {
		return lastID
	}

	fresh := events
	for i, ev := range events {
		if ev.ID == lastID {
			fresh = events[:i]
			break
		}
	}

	for i := len(fresh) - 1; i >= 0; i-- {
		printEvent(fresh[i])
	}
	return events[0].ID
}

func printEvent(ev event.RealtimeEvent) {
	line := fmt.Sprintf("%s  [%s]  %s",
		ev.Time().Format(time.RFC3339), ev.Type, ev.Title)
	if ev.CharacterName != "" {
		line += "  (" + ev.CharacterName + ")"
	}
	if ev.Description != "" {
		line += "\n    " + ev.Description
	}
	fmt.Println(line)
}

// printDecision is the decision handler: it surfaces pending choices
// prominently in the feed.
func printDecision(ev event.RealtimeEvent, data *event.DecisionEventData) {
	fmt.Printf(">>> DECISION [%s] %s\n", ev.Type, ev.Title)
	if data == nil {
		return
	}
	for i, option := range data.Options {
		fmt.Printf("    %d. %s\n", i+1, option)
	}
	if data.TimeoutSeconds > 0 {
		fmt.Printf("    (%ds to decide)\n", data.TimeoutSeconds)
	}
}

func printStats(sub *stream.Subscription) {
	stats := sub.Stats()
	bufStats := sub.BufferStats()
	slog.Info("session summary",
		"state", sub.State(),
		"reconnections", stats.TotalReconnections,
		"events_buffered", len(sub.Events()),
		"events_total", bufStats.Writes,
		"events_dropped", bufStats.Drops)
}
