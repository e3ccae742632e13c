package cache

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const badgerPrefix = "cache:"

// Badger is a Cache backed by a shared Badger database.
// Keys are stored under the "cache:" prefix with Badger's native TTL.
type Badger struct {
	db *badger.DB
}

// NewBadger returns a Cache on db. The caller owns db.
func NewBadger(db *badger.DB) *Badger {
	return &Badger{db: db}
}

// Get implements Cache.
func (b *Badger) Get(_ context.Context, key string) (string, error) {
	var value string
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(badgerPrefix + key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			value = string(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", ErrMiss
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// Set implements Cache.
func (b *Badger) Set(_ context.Context, key, value string, ttl time.Duration) error {
	return b.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(badgerPrefix+key), []byte(value))
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
}

// Delete implements Cache.
func (b *Badger) Delete(_ context.Context, key string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(badgerPrefix + key))
	})
}

// Entry is a cache entry as listed by Scan.
type Entry struct {
	Key       string
	Value     string
	ExpiresAt time.Time
}

// Scan lists every live cache entry. Used by operator tooling.
func (b *Badger) Scan() ([]Entry, error) {
	var entries []Entry
	err := b.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(badgerPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			e := Entry{
				Key:   string(item.Key()[len(prefix):]),
				Value: string(val),
			}
			if exp := item.ExpiresAt(); exp > 0 {
				e.ExpiresAt = time.Unix(int64(exp), 0)
			}
			entries = append(entries, e)
		}
		return nil
	})
	return entries, err
}
