// Copyright (c) 2025-2026 Haidar Al-Janabi
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cache provides the byte-level cache backends fronting public page
// reads, plus the typed page-view cache built on them.
package cache

import (
	"context"
	"time"
)

// Cacher is the interface all cache backends implement. Implementations must
// be safe for concurrent use. Values are []byte so memory and Redis backends
// share one contract.
type Cacher interface {
	// Get returns the value for key, or ErrCacheMiss when absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key. A zero ttl means the backend default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Clear removes every entry this cache owns.
	Clear(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// Stats holds hit/miss counters for backends that track them.
type Stats struct {
	Hits   int64
	Misses int64
	Sets   int64
	Items  int
}

// Error is the cache error type.
type Error string

func (e Error) Error() string { return string(e) }

const (
	// ErrCacheMiss indicates the key was not found or has expired.
	ErrCacheMiss Error = "cache miss"

	// ErrCacheClosed indicates the cache has been closed.
	ErrCacheClosed Error = "cache closed"
)
