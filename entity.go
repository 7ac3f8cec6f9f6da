// Copyright (c) 2026 The simpler-state Authors
//
// entity.go — the reactive value container at the core of the library:
// a current value guarded by a RWMutex, an ordered plugin chain whose
// hooks run on construction and on every Set, and a subscriber registry.

package simplerstate

import (
	"sync"
	"sync/atomic"
)

// Plugin bundles the optional lifecycle hooks an entity dispatches.
// A nil hook is skipped. Hooks run synchronously in installation order;
// any asynchronous work they start is not awaited.
type Plugin[T any] struct {
	// Init runs once, during entity construction.
	Init func(e *Entity[T])
	// Set runs after every value assignment, receiving the new value.
	Set func(e *Entity[T], value T)
}

// Config contains optional entity components for NewWithConfig.
type Config[T any] struct {
	Plugins []*Plugin[T]
	Logger  Logger
}

func (c *Config[T]) defaults() {
	if c.Logger == nil {
		c.Logger = noopLogger{}
	}
}

type subscription[T any] struct {
	fn      func(T)
	removed atomic.Bool
}

// Entity holds a single current value of type T. The value is read with
// Get and mutated exclusively through Set (or Update); every mutation
// advances the version counter, dispatches the plugin Set hooks in
// installation order, then notifies subscribers.
type Entity[T any] struct {
	mu      sync.RWMutex
	value   T
	initial T
	version atomic.Int64
	plugins []*Plugin[T]
	logger  Logger

	subMu sync.Mutex
	subs  []*subscription[T]
}

// New creates an entity holding initial and dispatches each plugin's Init
// hook once, in order. It returns immediately; hooks that start
// asynchronous work (such as persistence hydration) complete later and
// update the entity out-of-band.
func New[T any](initial T, plugins ...*Plugin[T]) *Entity[T] {
	return NewWithConfig(initial, Config[T]{Plugins: plugins})
}

// NewWithConfig is New with explicit component overrides.
func NewWithConfig[T any](initial T, cfg Config[T]) *Entity[T] {
	cfg.defaults()
	e := &Entity[T]{
		value:   initial,
		initial: initial,
		plugins: cfg.Plugins,
		logger:  cfg.Logger,
	}
	for _, p := range cfg.Plugins {
		if p == nil || p.Init == nil {
			continue
		}
		e.dispatch("init", func() { p.Init(e) })
	}
	return e
}

// Get returns the current value. It reflects the latest completed Set,
// including any asynchronous hydration that has since resolved.
func (e *Entity[T]) Get() T {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.value
}

// Set assigns v as the current value, then dispatches each plugin's Set
// hook in installation order and notifies subscribers. The assignment is
// synchronous; hook side effects may complete later.
func (e *Entity[T]) Set(v T) {
	e.mu.Lock()
	e.value = v
	e.mu.Unlock()
	e.afterSet(v)
}

// Update applies fn to the current value and assigns the result, as one
// atomic read-modify-write. fn must not call back into the entity.
func (e *Entity[T]) Update(fn func(T) T) {
	if fn == nil {
		return
	}
	e.mu.Lock()
	v := fn(e.value)
	e.value = v
	e.mu.Unlock()
	e.afterSet(v)
}

// Reset restores the initial value through the normal Set path, so plugins
// observe (and persist) the reset. Intended for tests.
func (e *Entity[T]) Reset() {
	e.Set(e.initial)
}

// Version returns the generation counter, advanced by every Set.
func (e *Entity[T]) Version() int64 {
	return e.version.Load()
}

// Subscribe registers fn to run after every Set, once plugin hooks have
// been dispatched. The returned function cancels the subscription.
func (e *Entity[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	sub := &subscription[T]{fn: fn}
	e.subMu.Lock()
	e.subs = append(e.subs, sub)
	e.subMu.Unlock()
	return func() { sub.removed.Store(true) }
}

func (e *Entity[T]) afterSet(v T) {
	e.version.Add(1)
	for _, p := range e.plugins {
		if p == nil || p.Set == nil {
			continue
		}
		e.dispatch("set", func() { p.Set(e, v) })
	}
	e.notify(v)
}

func (e *Entity[T]) notify(v T) {
	e.subMu.Lock()
	subs := make([]*subscription[T], len(e.subs))
	copy(subs, e.subs)
	e.subMu.Unlock()
	for _, s := range subs {
		if s.removed.Load() {
			continue
		}
		e.dispatch("subscribe", func() { s.fn(v) })
	}
}

// dispatch invokes one hook, recovering panics so a failing hook cannot
// prevent later hooks from running or crash the caller.
func (e *Entity[T]) dispatch(hook string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("simplerstate: plugin hook panicked", "hook", hook, "panic", r)
		}
	}()
	fn()
}
