package simplerstate_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	simplerstate "github.com/synapse/simpler-state"
)

// ── Test helpers ─────────────────────────────────────────────────────────────

// logEntry is one captured log call.
type logEntry struct {
	level string
	msg   string
	kv    []any
}

// captureLogger records every log call for assertions.
type captureLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (c *captureLogger) log(level, msg string, kv []any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, logEntry{level: level, msg: msg, kv: kv})
}

func (c *captureLogger) Info(msg string, kv ...any)  { c.log("info", msg, kv) }
func (c *captureLogger) Warn(msg string, kv ...any)  { c.log("warn", msg, kv) }
func (c *captureLogger) Error(msg string, kv ...any) { c.log("error", msg, kv) }
func (c *captureLogger) Debug(msg string, kv ...any) { c.log("debug", msg, kv) }

// count returns how many entries at level contain substr in their message.
func (c *captureLogger) count(level string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.entries {
		if e.level == level {
			n++
		}
	}
	return n
}

// ── Entity core ──────────────────────────────────────────────────────────────

func TestEntity_InitialValue(t *testing.T) {
	e := simplerstate.New(42)
	assert.Equal(t, 42, e.Get())
	assert.EqualValues(t, 0, e.Version())
}

func TestEntity_SetGet(t *testing.T) {
	e := simplerstate.New("a")
	e.Set("b")
	assert.Equal(t, "b", e.Get())
	assert.EqualValues(t, 1, e.Version())
}

func TestEntity_Update(t *testing.T) {
	e := simplerstate.New(10)
	e.Update(func(v int) int { return v + 5 })
	assert.Equal(t, 15, e.Get())
	e.Update(nil) // no-op
	assert.Equal(t, 15, e.Get())
	assert.EqualValues(t, 1, e.Version())
}

func TestEntity_Reset(t *testing.T) {
	e := simplerstate.New(7)
	e.Set(99)
	e.Reset()
	assert.Equal(t, 7, e.Get())
	assert.EqualValues(t, 2, e.Version())
}

func TestEntity_InitHooksRunOnceInOrder(t *testing.T) {
	var order []string
	mk := func(name string) *simplerstate.Plugin[int] {
		return &simplerstate.Plugin[int]{
			Init: func(_ *simplerstate.Entity[int]) { order = append(order, name) },
		}
	}
	simplerstate.New(0, mk("a"), mk("b"), mk("c"))
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestEntity_SetHooksRunInOrderWithNewValue(t *testing.T) {
	var order []string
	var seen []int
	mk := func(name string) *simplerstate.Plugin[int] {
		return &simplerstate.Plugin[int]{
			Set: func(_ *simplerstate.Entity[int], v int) {
				order = append(order, name)
				seen = append(seen, v)
			},
		}
	}
	e := simplerstate.New(0, mk("first"), mk("second"))
	e.Set(3)
	assert.Equal(t, []string{"first", "second"}, order)
	assert.Equal(t, []int{3, 3}, seen)
}

func TestEntity_NilPluginAndNilHooksSkipped(t *testing.T) {
	e := simplerstate.New(1, nil, &simplerstate.Plugin[int]{})
	e.Set(2)
	assert.Equal(t, 2, e.Get())
}

func TestEntity_HookPanicDoesNotStopOthers(t *testing.T) {
	logger := &captureLogger{}
	var ran bool
	bad := &simplerstate.Plugin[int]{
		Init: func(_ *simplerstate.Entity[int]) { panic("boom") },
		Set:  func(_ *simplerstate.Entity[int], _ int) { panic("boom") },
	}
	good := &simplerstate.Plugin[int]{
		Set: func(_ *simplerstate.Entity[int], _ int) { ran = true },
	}
	e := simplerstate.NewWithConfig(0, simplerstate.Config[int]{
		Plugins: []*simplerstate.Plugin[int]{bad, good},
		Logger:  logger,
	})
	e.Set(1)

	assert.True(t, ran, "second plugin must still run")
	assert.Equal(t, 1, e.Get())
	// one panic at init, one at set
	assert.Equal(t, 2, logger.count("error"))
}

func TestEntity_HookCanMutateEntity(t *testing.T) {
	clamp := &simplerstate.Plugin[int]{
		Set: func(e *simplerstate.Entity[int], v int) {
			if v > 10 {
				e.Set(10)
			}
		},
	}
	e := simplerstate.New(0, clamp)
	e.Set(50)
	assert.Equal(t, 10, e.Get())
}

func TestEntity_Subscribe(t *testing.T) {
	e := simplerstate.New(0)
	var got []int
	cancel := e.Subscribe(func(v int) { got = append(got, v) })

	e.Set(1)
	e.Set(2)
	cancel()
	e.Set(3)

	assert.Equal(t, []int{1, 2}, got)
}

func TestEntity_SubscribersRunAfterPluginHooks(t *testing.T) {
	var order []string
	p := &simplerstate.Plugin[int]{
		Set: func(_ *simplerstate.Entity[int], _ int) { order = append(order, "plugin") },
	}
	e := simplerstate.New(0, p)
	e.Subscribe(func(int) { order = append(order, "subscriber") })
	e.Set(1)
	require.Equal(t, []string{"plugin", "subscriber"}, order)
}

func TestEntity_ConcurrentSetGet(t *testing.T) {
	e := simplerstate.New(0)
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			e.Set(n)
			_ = e.Get()
		}(i)
	}
	wg.Wait()
	assert.EqualValues(t, 32, e.Version())
}
