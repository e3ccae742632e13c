// Package cache provides the disposable key-value cache used for derived aggregates.
//
// The cache is never the source of truth: every value can be recomputed from the
// relational store, so read and decode failures are treated as misses.
package cache

import (
	"context"
	"encoding/json/v2"
	"errors"
	"log/slog"
	"time"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache: miss")

// Cache is a string key-value store with per-entry TTL.
type Cache interface {
	// Get returns the value for key, or ErrMiss.
	Get(ctx context.Context, key string) (string, error)
	// Set stores value under key for ttl.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// Observer receives hit and miss notifications from Lookup.
type Observer interface {
	CacheHit(key string)
	CacheMiss(key string)
}

// Lookup reads key and decodes it as JSON into T.
// Any failure along the way reports ok=false.
func Lookup[T any](ctx context.Context, c Cache, key string) (value T, ok bool) {
	raw, err := c.Get(ctx, key)
	if err != nil {
		return value, false
	}
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return value, false
	}
	return value, true
}

// Loader computes a value from the source of truth.
type Loader[T any] func(ctx context.Context) (T, error)

// Aside implements the cache-aside read path for one kind of value.
type Aside[T any] struct {
	Cache    Cache
	TTL      time.Duration
	Logger   *slog.Logger
	Observer Observer
}

// GetOrPopulate returns the cached value for key if present. Otherwise it calls
// load, stores the result and returns it with fromCache=false. A failure to
// populate the cache is logged and does not fail the call. An invalidation that
// lands between load and the Set is lost, so the stored value can be stale for
// at most TTL.
func (a Aside[T]) GetOrPopulate(ctx context.Context, key string, load Loader[T]) (value T, fromCache bool, err error) {
	if v, ok := Lookup[T](ctx, a.Cache, key); ok {
		if a.Observer != nil {
			a.Observer.CacheHit(key)
		}
		return v, true, nil
	}
	if a.Observer != nil {
		a.Observer.CacheMiss(key)
	}

	value, err = load(ctx)
	if err != nil {
		return value, false, err
	}

	data, err := json.Marshal(value)
	if err != nil {
		a.logger().Warn("cache encode failed", "key", key, "error", err)
		return value, false, nil
	}
	if err := a.Cache.Set(ctx, key, string(data), a.TTL); err != nil {
		a.logger().Warn("cache populate failed", "key", key, "error", err)
	}
	return value, false, nil
}

// Invalidate deletes key, logging instead of returning any failure.
func Invalidate(ctx context.Context, c Cache, logger *slog.Logger, key string) {
	if err := c.Delete(ctx, key); err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Warn("cache invalidation failed", "key", key, "error", err)
	}
}

func (a Aside[T]) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.Default()
	}
	return a.Logger
}
