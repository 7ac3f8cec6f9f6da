// Copyright (c) 2026 The simpler-state Authors
//
// storage.go — public adapter contract re-exports, the "local"/"session"
// built-in store selectors, and the resolution step that turns a config
// value into a concrete adapter.

package simplerstate

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/synapse/simpler-state/internal/storage"
)

// Re-export the adapter contract so callers only import this package.
// A custom adapter satisfies StorageAdapter by implementing both halves.
type (
	StorageReader   = storage.Reader
	StorageWriter   = storage.Writer
	StorageAdapter  = storage.Adapter
	MemoryStorage   = storage.Memory
	SQLiteStorage   = storage.SQLite
	RedisStorage    = storage.Redis
	PostgresStorage = storage.Postgres
)

// ErrMiss is returned by adapters when a key has no stored value.
var ErrMiss = storage.ErrMiss

// BuiltinStorage selects one of the built-in stores by name.
type BuiltinStorage string

const (
	// Local is the persistent store: a SQLite file under the user config
	// directory, surviving process restarts.
	Local BuiltinStorage = "local"
	// Session is the process-lifetime store: an in-memory map shared by
	// every entity in this process.
	Session BuiltinStorage = "session"
)

// NewMemoryStorage creates a private in-memory adapter, independent of the
// shared Session store.
func NewMemoryStorage() *MemoryStorage { return storage.NewMemory() }

// OpenSQLiteStorage opens a file-backed adapter at path.
func OpenSQLiteStorage(path string) (*SQLiteStorage, error) { return storage.OpenSQLite(path) }

// NewRedisStorage adapts a go-redis client; keyPrefix may be empty.
func NewRedisStorage(client redis.UniversalClient, keyPrefix string) *RedisStorage {
	return storage.NewRedis(client, keyPrefix)
}

// NewPostgresStorage adapts a pgx pool; table falls back to
// storage.DefaultPostgresTable when empty. Call Migrate before first use.
func NewPostgresStorage(pool *pgxpool.Pool, table string) *PostgresStorage {
	return storage.NewPostgres(pool, table)
}

// ── Built-in store resolution ────────────────────────────────────────────────

var (
	sessionOnce  sync.Once
	sessionStore *storage.Memory

	localOnce  sync.Once
	localStore storage.Adapter
	localErr   error
)

// openLocal is a variable so white-box tests can substitute the default
// persistent store without touching the filesystem.
var openLocal = func() (storage.Adapter, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("resolve config dir: %w", err)
	}
	dir = filepath.Join(dir, "simpler-state")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}
	return storage.OpenSQLite(filepath.Join(dir, "local.db"))
}

func sessionDefault() storage.Adapter {
	sessionOnce.Do(func() { sessionStore = storage.NewMemory() })
	return sessionStore
}

func localDefault() (storage.Adapter, error) {
	localOnce.Do(func() {
		localStore, localErr = openLocal()
	})
	if localErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, localErr)
	}
	return localStore, nil
}

// resolveStorage maps a PersistenceConfig.Storage value to an adapter.
// nil selects Local. Built-in selectors may fail with
// ErrStorageUnavailable; custom values must satisfy both contract halves
// or resolution fails with a configuration error.
func resolveStorage(sel any) (storage.Adapter, error) {
	switch s := sel.(type) {
	case nil:
		return localDefault()
	case BuiltinStorage:
		return resolveBuiltin(s)
	case string:
		return resolveBuiltin(BuiltinStorage(s))
	default:
		_, rok := sel.(storage.Reader)
		_, wok := sel.(storage.Writer)
		switch {
		case rok && wok:
			return sel.(storage.Adapter), nil
		case rok:
			return nil, ErrAdapterNoWriter
		case wok:
			return nil, ErrAdapterNoReader
		default:
			return nil, fmt.Errorf("%w: %T", ErrUnknownStorage, sel)
		}
	}
}

func resolveBuiltin(name BuiltinStorage) (storage.Adapter, error) {
	switch name {
	case Local:
		return localDefault()
	case Session:
		return sessionDefault(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStorage, name)
	}
}
