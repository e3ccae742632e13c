package providers

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/do/v2"

	"github.com/openmusic/openmusic-server/internal/cache"
	"github.com/openmusic/openmusic-server/internal/config"
	"github.com/openmusic/openmusic-server/internal/kv"
	"github.com/openmusic/openmusic-server/internal/logger"
	"github.com/openmusic/openmusic-server/internal/queue"
	"github.com/openmusic/openmusic-server/internal/store/sqlite"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the relational store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	st, err := sqlite.Open(cfg.Database.Path, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", cfg.Database.Path)
	return &StoreHandle{Store: st}, nil
}

// KVHandle wraps the Badger database shared by the cache and the export queue.
type KVHandle struct {
	*badger.DB
}

// Shutdown implements do.Shutdownable.
func (h *KVHandle) Shutdown() error {
	return h.Close()
}

// ProvideKV opens the Badger database.
func ProvideKV(i do.Injector) (*KVHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	db, err := kv.Open(cfg.Cache.Path, log.Logger)
	if err != nil {
		return nil, err
	}
	return &KVHandle{DB: db}, nil
}

// CacheHandle wraps the configured cache backend.
type CacheHandle struct {
	cache.Cache
	memory *cache.Memory
}

// Shutdown implements do.Shutdownable. The badger backend is closed with KVHandle.
func (h *CacheHandle) Shutdown() error {
	if h.memory != nil {
		h.memory.Close()
	}
	return nil
}

// ProvideCache provides the derived-value cache for the configured backend.
func ProvideCache(i do.Injector) (*CacheHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	var handle *CacheHandle
	switch cfg.Cache.Backend {
	case config.CacheBackendMemory:
		mem, err := cache.NewMemory(int64(cfg.Cache.MaxCost))
		if err != nil {
			return nil, err
		}
		handle = &CacheHandle{Cache: mem, memory: mem}
	case config.CacheBackendBadger:
		db := do.MustInvoke[*KVHandle](i)
		handle = &CacheHandle{Cache: cache.NewBadger(db.DB)}
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}

	log.Info("Cache initialized", "backend", cfg.Cache.Backend, "ttl", cfg.Cache.TTL)
	return handle, nil
}

// ProvideQueue provides the durable message queue.
func ProvideQueue(i do.Injector) (*queue.Queue, error) {
	db := do.MustInvoke[*KVHandle](i)
	return queue.New(db.DB), nil
}
