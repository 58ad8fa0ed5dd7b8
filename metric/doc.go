// Package metric provides Prometheus metrics management for storystream.
//
// # Overview
//
// The package wraps a private prometheus.Registry so the library never
// pollutes the global default registry of a host application. Core platform
// metrics (connection state, frame and event counters, reconnect and
// heartbeat counters) are registered at construction; components register
// their own metrics by name through the MetricsRegistrar interface.
//
// # Usage
//
//	registry := metric.NewMetricsRegistry()
//
//	// Components register their own collectors
//	err := registry.RegisterCounter("feed", "frames_dropped", counter)
//
//	// Core metrics have typed helpers
//	registry.CoreMetrics().RecordFrameReceived("feed")
//
// # Exposition
//
// Server exposes the registry over HTTP for Prometheus scraping:
//
//	srv := metric.NewServer(9090, "/metrics", registry)
//	if err := srv.Start(); err != nil {
//		return err
//	}
//	defer srv.Stop(5 * time.Second)
//
// A /health endpoint is included for liveness probes.
//
// # Registration Semantics
//
// Metrics are keyed by "component.metric". Registering the same key twice
// returns an Invalid classified error rather than panicking, so component
// restarts can detect and recover from stale registrations via Unregister.
package metric
