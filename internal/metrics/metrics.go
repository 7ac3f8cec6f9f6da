// Package metrics provides the Recorder interface and a noop implementation.
package metrics

import "time"

// Recorder is the interface for recording persistence metrics.
type Recorder interface {
	// RecordHydration counts one init-time read; hit reports whether the
	// store held a value for the key.
	RecordHydration(key string, hit bool)
	// RecordPersist counts one completed write to the storage adapter.
	RecordPersist(key string)
	// RecordError counts one failed storage or serialization operation.
	RecordError(key, op string)
	// RecordLatency records how long op took end to end.
	RecordLatency(op string, d time.Duration)
}

// Noop is a Recorder that discards all data.
type Noop struct{}

func (Noop) RecordHydration(key string, hit bool)     {}
func (Noop) RecordPersist(key string)                 {}
func (Noop) RecordError(key, op string)               {}
func (Noop) RecordLatency(op string, d time.Duration) {}
