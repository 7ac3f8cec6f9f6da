// Package storage defines the key-value adapter contract backing
// persistence, plus the built-in adapter implementations.
package storage

import (
	"context"
	"errors"
)

// ErrMiss is returned by GetItem when the key has no stored value.
// Callers use errors.Is(err, storage.ErrMiss) to distinguish an empty
// slot from a genuine adapter failure.
var ErrMiss = errors.New("storage: miss")

// Reader is the read half of the adapter contract.
type Reader interface {
	// GetItem returns the raw value stored under key, or ErrMiss.
	GetItem(ctx context.Context, key string) (string, error)
}

// Writer is the write half of the adapter contract.
type Writer interface {
	// SetItem stores value under key, overwriting any previous value.
	SetItem(ctx context.Context, key, value string) error
}

// Adapter is the full contract a storage backend must satisfy.
// Implementations may block; callers never invoke them on a hot path.
type Adapter interface {
	Reader
	Writer
}
