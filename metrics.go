// Copyright (c) 2026 The simpler-state Authors
//
// metrics.go — MetricsRecorder constructors re-exported from the internal
// metrics package.

package simplerstate

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/synapse/simpler-state/internal/metrics"
)

// NoopMetrics discards all recorded data. It is the default recorder.
var NoopMetrics MetricsRecorder = metrics.Noop{}

// NewPrometheusMetrics creates a MetricsRecorder whose collectors are
// registered on reg (hydration hit/miss, persists, errors, op latency).
func NewPrometheusMetrics(reg prometheus.Registerer) MetricsRecorder {
	return metrics.NewPrometheus(reg)
}
