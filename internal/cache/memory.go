package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// Memory is an in-process Cache backed by ristretto.
// Every entry costs 1, so maxCost bounds the number of entries.
type Memory struct {
	c *ristretto.Cache[string, string]
}

// NewMemory creates an in-memory cache holding at most maxCost entries.
func NewMemory(maxCost int64) (*Memory, error) {
	if maxCost <= 0 {
		maxCost = 10_000
	}
	c, err := ristretto.NewCache(&ristretto.Config[string, string]{
		NumCounters: maxCost * 10,
		MaxCost:     maxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create ristretto cache: %w", err)
	}
	return &Memory{c: c}, nil
}

// Get implements Cache.
func (m *Memory) Get(_ context.Context, key string) (string, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return "", ErrMiss
	}
	return v, nil
}

// Set implements Cache. Writes are applied before Set returns.
func (m *Memory) Set(_ context.Context, key, value string, ttl time.Duration) error {
	if !m.c.SetWithTTL(key, value, 1, ttl) {
		return fmt.Errorf("cache set dropped for %q", key)
	}
	m.c.Wait()
	return nil
}

// Delete implements Cache.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.c.Del(key)
	return nil
}

// Close releases the cache's background goroutines.
func (m *Memory) Close() {
	m.c.Close()
}
