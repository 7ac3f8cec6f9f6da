// Copyright (c) 2026 The simpler-state Authors
//
// queue.go — optional per-key ordered write queue. The base design lets
// storage writes complete in any order (last writer wins by completion);
// OrderedWrites trades that for strict call-order delivery with bounded
// retry on adapter failure.

package simplerstate

import (
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// writeQueue serializes storage writes for one key. The drain goroutine
// starts lazily on the first enqueue and exits once the queue empties, so
// an idle or discarded entity leaves nothing running.
type writeQueue[T any] struct {
	key      string
	maxRetry uint64
	interval time.Duration
	flush    func(T) error
	logger   Logger

	mu      sync.Mutex
	pending []T
	running bool
}

func newWriteQueue[T any](key string, maxRetry uint64, interval time.Duration, flush func(T) error, logger Logger) *writeQueue[T] {
	return &writeQueue[T]{
		key:      key,
		maxRetry: maxRetry,
		interval: interval,
		flush:    flush,
		logger:   logger,
	}
}

// enqueue appends v and ensures a drain goroutine is running. Never blocks
// beyond the queue's own bookkeeping.
func (q *writeQueue[T]) enqueue(v T) {
	q.mu.Lock()
	q.pending = append(q.pending, v)
	if !q.running {
		q.running = true
		go q.drain()
	}
	q.mu.Unlock()
}

func (q *writeQueue[T]) drain() {
	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			q.running = false
			q.mu.Unlock()
			return
		}
		v := q.pending[0]
		q.pending = q.pending[1:]
		q.mu.Unlock()

		bo := backoff.NewExponentialBackOff()
		bo.InitialInterval = q.interval
		err := backoff.Retry(func() error { return q.flushContained(v) }, backoff.WithMaxRetries(bo, q.maxRetry))
		if err != nil {
			q.logger.Warn("simplerstate: ordered write dropped after retries",
				"key", q.key, "err", err)
		}
	}
}

// flushContained runs flush with panic containment: the drain goroutine is
// detached, so a panicking callback or adapter would otherwise kill the
// process. Panics are permanent, retrying cannot help.
func (q *writeQueue[T]) flushContained(v T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = backoff.Permanent(fmt.Errorf("write panicked: %v", r))
		}
	}()
	return q.flush(v)
}
