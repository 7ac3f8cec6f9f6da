// Copyright (c) 2026 The simpler-state Authors
//
// persistence.go — the persistence plugin factory: hydrates an entity from
// its storage adapter at construction and writes every subsequent value
// change back, through a serialize/deserialize pipeline. Storage failures
// degrade to warnings; the entity stays fully usable.

package simplerstate

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/synapse/simpler-state/internal/clock"
	"github.com/synapse/simpler-state/internal/codec"
	"github.com/synapse/simpler-state/internal/metrics"
	"github.com/synapse/simpler-state/internal/storage"
)

// Re-export component types so callers only import this package.
type (
	Codec           = codec.Codec
	MetricsRecorder = metrics.Recorder
	Clock           = clock.Clock
)

// Shipped codec instances.
var (
	JSONCodec    Codec = codec.JSON{}
	MsgPackCodec Codec = codec.MsgPack{}
)

// PersistenceConfig configures a persistence plugin. The zero value selects
// the local store, JSON serialization, and no encryption.
type PersistenceConfig[T any] struct {
	// Storage selects the adapter: nil or Local, Session, or any custom
	// value implementing StorageReader and StorageWriter.
	Storage any

	// SerializeFn and DeserializeFn override the Codec-derived pipeline.
	SerializeFn   func(v T) (string, error)
	DeserializeFn func(raw string) (T, error)

	// Codec backs the default pipeline when the Fn overrides are nil.
	Codec Codec

	// EncryptionKey enables AES-256-GCM encryption of serialized payloads.
	// Must be 32 bytes when set.
	EncryptionKey []byte

	// OrderedWrites routes writes through a per-key queue so storage
	// receives them in call order, with bounded retries on failure.
	// Without it, completion order decides the last writer.
	OrderedWrites bool

	// MaxWriteRetry caps ordered-mode retries per write. Zero or negative
	// selects the default of 3.
	MaxWriteRetry int

	// RetryInterval is the initial ordered-mode backoff interval.
	// Default 100ms.
	RetryInterval time.Duration

	// Optional overrideable components
	Logger  Logger
	Metrics MetricsRecorder
	Clock   Clock
}

func (c *PersistenceConfig[T]) defaults() {
	if c.Codec == nil {
		c.Codec = codec.Default
	}
	if c.Logger == nil {
		c.Logger = noopLogger{}
	}
	if c.Metrics == nil {
		c.Metrics = metrics.Noop{}
	}
	if c.Clock == nil {
		c.Clock = clock.Real{}
	}
	if c.MaxWriteRetry <= 0 {
		c.MaxWriteRetry = 3
	}
	if c.RetryInterval == 0 {
		c.RetryInterval = 100 * time.Millisecond
	}
	if c.SerializeFn == nil {
		cdc := c.Codec
		c.SerializeFn = func(v T) (string, error) { return cdc.Encode(v) }
	}
	if c.DeserializeFn == nil {
		cdc := c.Codec
		c.DeserializeFn = func(raw string) (T, error) {
			var v T
			err := cdc.Decode(raw, &v)
			return v, err
		}
	}
}

// Persistence builds a plugin that keeps one entity value synchronized
// with the storage slot named key. Misconfiguration (empty key, incomplete
// custom adapter, bad encryption key) fails here, before any entity
// exists. An unreachable built-in store is not an error: the plugin warns
// once and performs no storage I/O for that entity's lifetime.
func Persistence[T any](key string, cfgs ...PersistenceConfig[T]) (*Plugin[T], error) {
	if strings.TrimSpace(key) == "" {
		return nil, ErrEmptyKey
	}
	var cfg PersistenceConfig[T]
	if len(cfgs) > 0 {
		cfg = cfgs[0]
	}
	cfg.defaults()

	p := &persistor[T]{
		key:         key,
		serialize:   cfg.SerializeFn,
		deserialize: cfg.DeserializeFn,
		logger:      cfg.Logger,
		metrics:     cfg.Metrics,
		clock:       cfg.Clock,
	}

	if len(cfg.EncryptionKey) > 0 {
		enc, err := NewAES256GCM(cfg.EncryptionKey)
		if err != nil {
			return nil, err
		}
		p.enc = enc
	}

	adapter, err := resolveStorage(cfg.Storage)
	switch {
	case errors.Is(err, ErrStorageUnavailable):
		cfg.Logger.Warn("simplerstate: storage unavailable, persistence disabled",
			"key", key, "err", err)
	case err != nil:
		return nil, err
	default:
		p.adapter = adapter
	}

	if cfg.OrderedWrites && p.adapter != nil {
		p.queue = newWriteQueue(key, uint64(cfg.MaxWriteRetry), cfg.RetryInterval, p.write, cfg.Logger)
	}

	return &Plugin[T]{Init: p.hydrate, Set: p.persist}, nil
}

// MustPersistence is Persistence that panics on configuration errors.
func MustPersistence[T any](key string, cfgs ...PersistenceConfig[T]) *Plugin[T] {
	p, err := Persistence(key, cfgs...)
	if err != nil {
		panic(err)
	}
	return p
}

// persistor holds the resolved collaborators for one plugin instance.
// adapter is nil when the built-in store was unavailable; every hook then
// returns immediately.
type persistor[T any] struct {
	key         string
	adapter     storage.Adapter
	serialize   func(T) (string, error)
	deserialize func(string) (T, error)
	enc         Encryptor
	queue       *writeQueue[T]
	logger      Logger
	metrics     MetricsRecorder
	clock       Clock
}

// hydrate is the Init hook. The read runs detached so construction never
// blocks on the adapter; once it settles the value flows into the entity
// through the normal Set path, so later plugins observe it too.
func (p *persistor[T]) hydrate(e *Entity[T]) {
	if p.adapter == nil {
		return
	}
	go func() {
		defer p.recoverHook("hydrate")
		start := p.clock.Now()
		raw, err := p.adapter.GetItem(context.Background(), p.key)
		switch {
		case errors.Is(err, ErrMiss):
			p.metrics.RecordHydration(p.key, false)
			return
		case err != nil:
			p.logger.Warn("simplerstate: hydration read failed", "key", p.key, "err", err)
			p.metrics.RecordError(p.key, "hydrate")
			return
		}
		if p.enc != nil {
			raw, err = p.decryptPayload(raw)
			if err != nil {
				p.logger.Warn("simplerstate: hydration decrypt failed", "key", p.key, "err", err)
				p.metrics.RecordError(p.key, "hydrate")
				return
			}
		}
		v, err := p.deserialize(raw)
		if err != nil {
			p.logger.Warn("simplerstate: hydration decode failed", "key", p.key, "err", err)
			p.metrics.RecordError(p.key, "hydrate")
			return
		}
		p.metrics.RecordHydration(p.key, true)
		p.metrics.RecordLatency("hydrate", p.clock.Now().Sub(start))
		// Re-enters this plugin's own Set hook; the resulting write-back
		// of the value just read is idempotent.
		e.Set(v)
	}()
}

// persist is the Set hook: fire-and-forget write of the new value.
func (p *persistor[T]) persist(_ *Entity[T], v T) {
	if p.adapter == nil {
		return
	}
	if p.queue != nil {
		p.queue.enqueue(v)
		return
	}
	go func() {
		defer p.recoverHook("persist")
		if err := p.write(v); err != nil {
			p.logger.Warn("simplerstate: persist failed", "key", p.key, "err", err)
			p.metrics.RecordError(p.key, "persist")
		}
	}()
}

// recoverHook contains a panic from a user callback or adapter. The hooks
// run on detached goroutines, so nothing above them could recover; an
// uncaught panic here would take down the whole process.
func (p *persistor[T]) recoverHook(op string) {
	if r := recover(); r != nil {
		p.logger.Warn("simplerstate: "+op+" panicked", "key", p.key, "panic", r)
		p.metrics.RecordError(p.key, op)
	}
}

// write serializes, optionally encrypts, and stores v. Serialization and
// encryption failures are permanent: retrying them cannot succeed.
func (p *persistor[T]) write(v T) error {
	start := p.clock.Now()
	raw, err := p.serialize(v)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("encode: %w", err))
	}
	if p.enc != nil {
		raw, err = p.encryptPayload(raw)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("encrypt: %w", err))
		}
	}
	if err := p.adapter.SetItem(context.Background(), p.key, raw); err != nil {
		return err
	}
	p.metrics.RecordPersist(p.key)
	p.metrics.RecordLatency("persist", p.clock.Now().Sub(start))
	return nil
}

func (p *persistor[T]) encryptPayload(raw string) (string, error) {
	b, err := p.enc.Encrypt([]byte(raw))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

func (p *persistor[T]) decryptPayload(raw string) (string, error) {
	b, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return "", err
	}
	pt, err := p.enc.Decrypt(b)
	if err != nil {
		return "", err
	}
	return string(pt), nil
}
