package buffer

import (
	"github.com/c360/storystream/metric"
)

// Option configures log behavior using the functional options pattern.
type Option[T any] func(*logOptions[T])

// logOptions holds internal configuration for log instances.
// Stats are ALWAYS collected; metrics are optional via WithMetrics().
type logOptions[T any] struct {
	dropCallback DropCallback[T]

	// metricsReg is optional - if provided, log stats are also exposed as Prometheus metrics
	metricsReg *metric.MetricsRegistry

	// metricsPrefix is used as the component label for Prometheus metrics
	metricsPrefix string
}

// WithMetrics enables Prometheus metrics export for log statistics.
// If registry is nil or prefix empty, this option is ignored.
func WithMetrics[T any](registry *metric.MetricsRegistry, prefix string) Option[T] {
	return func(opts *logOptions[T]) {
		if registry != nil && prefix != "" {
			opts.metricsReg = registry
			opts.metricsPrefix = prefix
		}
	}
}

// WithDropCallback sets a callback invoked with each entry evicted on overflow.
func WithDropCallback[T any](callback DropCallback[T]) Option[T] {
	return func(opts *logOptions[T]) {
		opts.dropCallback = callback
	}
}

// applyOptions applies functional options to create final log configuration.
func applyOptions[T any](options ...Option[T]) *logOptions[T] {
	opts := &logOptions[T]{}

	for _, opt := range options {
		if opt != nil {
			opt(opts)
		}
	}

	return opts
}
