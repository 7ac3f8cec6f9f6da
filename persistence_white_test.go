package simplerstate

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synapse/simpler-state/internal/clock"
	"github.com/synapse/simpler-state/internal/storage"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

// stubLocal swaps the default local store resolution for one test.
func stubLocal(t *testing.T, open func() (storage.Adapter, error)) {
	t.Helper()
	prevOpen := openLocal
	openLocal = open
	localOnce = sync.Once{}
	localStore, localErr = nil, nil
	t.Cleanup(func() {
		openLocal = prevOpen
		localOnce = sync.Once{}
		localStore, localErr = nil, nil
	})
}

// countingAdapter wraps an in-memory store and counts calls.
type countingAdapter struct {
	mem  *storage.Memory
	gets atomic.Int64
	sets atomic.Int64
}

func newCountingAdapter() *countingAdapter {
	return &countingAdapter{mem: storage.NewMemory()}
}

func (c *countingAdapter) GetItem(ctx context.Context, key string) (string, error) {
	c.gets.Add(1)
	return c.mem.GetItem(ctx, key)
}

func (c *countingAdapter) SetItem(ctx context.Context, key, value string) error {
	c.sets.Add(1)
	return c.mem.SetItem(ctx, key, value)
}

// recordingLogger counts warnings for degradation assertions.
type recordingLogger struct {
	warns atomic.Int64
}

func (r *recordingLogger) Info(string, ...any)  {}
func (r *recordingLogger) Warn(string, ...any)  { r.warns.Add(1) }
func (r *recordingLogger) Error(string, ...any) {}
func (r *recordingLogger) Debug(string, ...any) {}

// latencyRecorder captures RecordLatency durations per operation.
type latencyRecorder struct {
	mu  sync.Mutex
	ops map[string]time.Duration
}

func (l *latencyRecorder) RecordHydration(string, bool) {}
func (l *latencyRecorder) RecordPersist(string)         {}
func (l *latencyRecorder) RecordError(string, string)   {}

func (l *latencyRecorder) RecordLatency(op string, d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ops == nil {
		l.ops = map[string]time.Duration{}
	}
	l.ops[op] = d
}

func (l *latencyRecorder) latency(op string) (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	d, ok := l.ops[op]
	return d, ok
}

// tickingAdapter advances a mock clock on every call, standing in for a
// slow backend under a deterministic clock.
type tickingAdapter struct {
	inner *storage.Memory
	clock *clock.Mock
	tick  time.Duration
}

func (a *tickingAdapter) GetItem(ctx context.Context, key string) (string, error) {
	a.clock.Advance(a.tick)
	return a.inner.GetItem(ctx, key)
}

func (a *tickingAdapter) SetItem(ctx context.Context, key, value string) error {
	a.clock.Advance(a.tick)
	return a.inner.SetItem(ctx, key, value)
}

// ── Storage resolution ───────────────────────────────────────────────────────

func TestResolveStorage_NilSelectsLocal(t *testing.T) {
	counting := newCountingAdapter()
	stubLocal(t, func() (storage.Adapter, error) { return counting, nil })

	ad, err := resolveStorage(nil)
	require.NoError(t, err)
	assert.Same(t, counting, ad)

	ad2, err := resolveStorage(Local)
	require.NoError(t, err)
	assert.Same(t, counting, ad2, "local resolves once and is reused")
}

func TestResolveStorage_SessionByNameAndSelector(t *testing.T) {
	bySelector, err := resolveStorage(Session)
	require.NoError(t, err)
	byName, err := resolveStorage("session")
	require.NoError(t, err)
	assert.Same(t, bySelector, byName)
}

func TestResolveStorage_CustomAdapterPassThrough(t *testing.T) {
	mem := storage.NewMemory()
	ad, err := resolveStorage(mem)
	require.NoError(t, err)
	assert.Same(t, mem, ad)
}

func TestResolveStorage_UnknownName(t *testing.T) {
	_, err := resolveStorage(BuiltinStorage("galactic"))
	assert.ErrorIs(t, err, ErrUnknownStorage)
}

// ── Degradation when the built-in store is unreachable ───────────────────────

func TestPersistence_LocalUnavailableDegradesToNoop(t *testing.T) {
	stubLocal(t, func() (storage.Adapter, error) {
		return nil, fmt.Errorf("sandboxed: no filesystem access")
	})
	logger := &recordingLogger{}

	p, err := Persistence[int]("counter", PersistenceConfig[int]{Logger: logger})
	require.NoError(t, err, "unavailable storage must not fail construction")
	assert.EqualValues(t, 1, logger.warns.Load(), "warned once at construction")

	e := New(5, p)
	assert.Equal(t, 5, e.Get())
	e.Set(6)
	assert.Equal(t, 6, e.Get(), "entity stays fully functional without persistence")

	// hooks are inert: give any stray goroutine a moment, then confirm
	// nothing else was reported
	time.Sleep(20 * time.Millisecond)
	assert.EqualValues(t, 1, logger.warns.Load())
}

// ── Latency measurement ──────────────────────────────────────────────────────

func TestPersistence_LatencyMeasuredOnInjectedClock(t *testing.T) {
	mock := clock.NewMock(time.Time{})
	rec := &latencyRecorder{}
	mem := storage.NewMemory()
	require.NoError(t, mem.SetItem(context.Background(), "timed", "1"))

	adapter := &tickingAdapter{inner: mem, clock: mock, tick: 5 * time.Second}

	p, err := Persistence[int]("timed", PersistenceConfig[int]{
		Storage: adapter,
		Metrics: rec,
		Clock:   mock,
	})
	require.NoError(t, err)
	New(0, p)

	// both ends of the measurement come from the injected clock, so the
	// recorded duration is exactly the adapter's simulated time
	require.Eventually(t, func() bool {
		d, ok := rec.latency("hydrate")
		return ok && d == 5*time.Second
	}, 2*time.Second, 5*time.Millisecond)

	// the hydration write-back goes through the same measurement
	require.Eventually(t, func() bool {
		d, ok := rec.latency("persist")
		return ok && d == 5*time.Second
	}, 2*time.Second, 5*time.Millisecond)
}

func TestPersistence_SessionRoutesNothingToLocal(t *testing.T) {
	counting := newCountingAdapter()
	stubLocal(t, func() (storage.Adapter, error) { return counting, nil })

	key := fmt.Sprintf("route-%d", time.Now().UnixNano())
	p, err := Persistence[int](key, PersistenceConfig[int]{Storage: Session})
	require.NoError(t, err)

	e := New(0, p)
	e.Set(2)

	require.Eventually(t, func() bool {
		v, err := sessionDefault().GetItem(context.Background(), key)
		return err == nil && v == "2"
	}, 2*time.Second, 5*time.Millisecond)

	assert.EqualValues(t, 0, counting.gets.Load(), "local store must see zero reads")
	assert.EqualValues(t, 0, counting.sets.Load(), "local store must see zero writes")
}
