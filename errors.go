// Copyright (c) 2026 The simpler-state Authors
//
// errors.go — sentinel error variables returned by the public simpler-state
// API, covering persistence plugin configuration and storage resolution.

// Package simplerstate provides a reactive value container ("entity")
// extensible through plugins, plus a persistence plugin that keeps one
// entity value in sync with a key-value storage adapter.
package simplerstate

import "errors"

// Configuration errors
var (
	ErrEmptyKey        = errors.New("simplerstate: persistence key must be a non-empty string")
	ErrUnknownStorage  = errors.New("simplerstate: unknown storage selector")
	ErrAdapterNoReader = errors.New("simplerstate: custom storage adapter has no GetItem capability")
	ErrAdapterNoWriter = errors.New("simplerstate: custom storage adapter has no SetItem capability")
)

// Infrastructure errors
var (
	// ErrStorageUnavailable marks a built-in store that could not be
	// reached. It is logged, never returned from the factory: the plugin
	// degrades to a no-op instead.
	ErrStorageUnavailable = errors.New("simplerstate: storage unavailable")
)
