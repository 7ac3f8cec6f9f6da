package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus is a Recorder backed by prometheus collectors.
type Prometheus struct {
	hydrations *prometheus.CounterVec
	persists   *prometheus.CounterVec
	errors     *prometheus.CounterVec
	latency    *prometheus.HistogramVec
}

// NewPrometheus creates a Recorder whose collectors are registered on reg.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	p := &Prometheus{
		hydrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "simplerstate_hydrations_total",
			Help: "Init-time storage reads, partitioned by key and hit/miss.",
		}, []string{"key", "result"}),
		persists: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "simplerstate_persists_total",
			Help: "Completed storage writes, partitioned by key.",
		}, []string{"key"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "simplerstate_errors_total",
			Help: "Failed storage or serialization operations.",
		}, []string{"key", "op"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "simplerstate_op_duration_seconds",
			Help:    "End-to-end duration of hydrate and persist operations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
	}
	reg.MustRegister(p.hydrations, p.persists, p.errors, p.latency)
	return p
}

// RecordHydration counts one init-time read.
func (p *Prometheus) RecordHydration(key string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	p.hydrations.WithLabelValues(key, result).Inc()
}

// RecordPersist counts one completed write.
func (p *Prometheus) RecordPersist(key string) {
	p.persists.WithLabelValues(key).Inc()
}

// RecordError counts one failed operation.
func (p *Prometheus) RecordError(key, op string) {
	p.errors.WithLabelValues(key, op).Inc()
}

// RecordLatency records the duration of op.
func (p *Prometheus) RecordLatency(op string, d time.Duration) {
	p.latency.WithLabelValues(op).Observe(d.Seconds())
}
