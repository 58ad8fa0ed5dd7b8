package metric

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/storystream/errors"
)

func newTestCounter(name string) prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "storystream",
		Subsystem: "test",
		Name:      name,
		Help:      "test counter",
	})
}

func TestNewMetricsRegistry(t *testing.T) {
	registry := NewMetricsRegistry()

	require.NotNil(t, registry)
	require.NotNil(t, registry.PrometheusRegistry())
	require.NotNil(t, registry.CoreMetrics())

	// Core metrics are registered and gatherable
	mfs, err := registry.PrometheusRegistry().Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, mfs)
}

func TestRegisterCounter(t *testing.T) {
	registry := NewMetricsRegistry()

	err := registry.RegisterCounter("feed", "frames", newTestCounter("frames_total"))
	require.NoError(t, err)

	// Same key again is rejected as invalid
	err = registry.RegisterCounter("feed", "frames", newTestCounter("frames2_total"))
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestRegisterCounter_PrometheusConflict(t *testing.T) {
	registry := NewMetricsRegistry()

	// Different registry keys but identical prometheus descriptors
	err := registry.RegisterCounter("feed-a", "frames", newTestCounter("conflict_total"))
	require.NoError(t, err)

	err = registry.RegisterCounter("feed-b", "frames", newTestCounter("conflict_total"))
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestRegisterGaugeAndVecs(t *testing.T) {
	registry := NewMetricsRegistry()

	gauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "storystream", Subsystem: "test", Name: "depth", Help: "test gauge",
	})
	require.NoError(t, registry.RegisterGauge("feed", "depth", gauge))

	counterVec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storystream", Subsystem: "test", Name: "by_type_total", Help: "test vec",
	}, []string{"type"})
	require.NoError(t, registry.RegisterCounterVec("feed", "by_type", counterVec))

	gaugeVec := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "storystream", Subsystem: "test", Name: "state", Help: "test vec",
	}, []string{"name"})
	require.NoError(t, registry.RegisterGaugeVec("feed", "state", gaugeVec))

	histVec := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "storystream", Subsystem: "test", Name: "duration_seconds", Help: "test vec",
	}, []string{"op"})
	require.NoError(t, registry.RegisterHistogramVec("feed", "duration", histVec))
}

func TestUnregister(t *testing.T) {
	registry := NewMetricsRegistry()

	require.NoError(t, registry.RegisterCounter("feed", "frames", newTestCounter("unreg_total")))

	assert.True(t, registry.Unregister("feed", "frames"))
	assert.False(t, registry.Unregister("feed", "frames"))
	assert.False(t, registry.Unregister("feed", "never-registered"))

	// Key is reusable after unregistration
	require.NoError(t, registry.RegisterCounter("feed", "frames", newTestCounter("unreg_total")))
}

func TestCoreMetricsRecorders(t *testing.T) {
	registry := NewMetricsRegistry()
	core := registry.CoreMetrics()

	// Recorders must not panic and must produce gatherable samples
	core.RecordConnectionState("feed", 2)
	core.RecordFrameReceived("feed")
	core.RecordEventAccepted("feed", "story")
	core.RecordEventDropped("feed", "parse_error")
	core.RecordDecisionEvent("feed", "decision_required")
	core.RecordReconnectAttempt("feed")
	core.RecordHeartbeatTimeout("feed")
	core.RecordError("feed", "transient")

	mfs, err := registry.PrometheusRegistry().Gather()
	require.NoError(t, err)

	found := false
	for _, mf := range mfs {
		if mf.GetName() == "storystream_frames_received_total" {
			found = true
		}
	}
	assert.True(t, found, "expected storystream_frames_received_total to be gatherable")
}
