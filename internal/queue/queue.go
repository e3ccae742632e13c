// Package queue is a durable message queue on top of Badger.
//
// Messages live under "queue:<name>:" in enqueue order. A consumer claims a
// message by moving it to "inflight:<name>:" in the same transaction, so two
// workers never receive the same message. Messages that keep failing end up
// under "deadletter:<name>:".
package queue

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a message ID is unknown.
var ErrNotFound = errors.New("queue: message not found")

// Message is one unit of work.
type Message struct {
	ID         string    `json:"id"`
	Queue      string    `json:"queue"`
	Body       []byte    `json:"body"`
	EnqueuedAt time.Time `json:"enqueued_at"`
	Attempts   int       `json:"attempts"`
	LastError  string    `json:"last_error,omitempty"`
}

// State is where a message currently sits.
type State string

// Message states.
const (
	StatePending    State = "queue"
	StateInflight   State = "inflight"
	StateDeadLetter State = "deadletter"
)

// Queue publishes and claims messages.
type Queue struct {
	db  *badger.DB
	now func() time.Time
}

// New returns a queue on db. The caller owns db.
func New(db *badger.DB) *Queue {
	return &Queue{db: db, now: time.Now}
}

func prefix(state State, name string) []byte {
	return []byte(string(state) + ":" + name + ":")
}

// pendingKey orders messages by enqueue time; the ID breaks ties.
func pendingKey(m *Message) []byte {
	return fmt.Appendf(prefix(StatePending, m.Queue), "%020d:%s", m.EnqueuedAt.UnixNano(), m.ID)
}

func stateKey(state State, m *Message) []byte {
	return append(prefix(state, m.Queue), m.ID...)
}

// Publish appends body to the named queue and returns the message ID.
func (q *Queue) Publish(_ context.Context, name string, body []byte) (string, error) {
	if name == "" {
		return "", errors.New("queue name cannot be empty")
	}

	msg := &Message{
		ID:         uuid.NewString(),
		Queue:      name,
		Body:       body,
		EnqueuedAt: q.now().UTC(),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("encode message: %w", err)
	}

	if err := q.db.Update(func(txn *badger.Txn) error {
		return txn.Set(pendingKey(msg), data)
	}); err != nil {
		return "", fmt.Errorf("publish to %s: %w", name, err)
	}
	return msg.ID, nil
}

// Claim moves up to limit pending messages to the in-flight set and returns them oldest first.
// Pending entries that cannot be decoded are moved to the dead-letter set with
// their raw value as the body, and do not count toward limit.
func (q *Queue) Claim(_ context.Context, name string, limit int) ([]Message, error) {
	var claimed []Message
	err := q.db.Update(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		p := prefix(StatePending, name)
		var keys [][]byte
		var corrupt []corruptEntry
		for it.Seek(p); it.ValidForPrefix(p) && len(claimed) < limit; it.Next() {
			item := it.Item()
			raw, err := item.ValueCopy(nil)
			if err != nil {
				return fmt.Errorf("read message %s: %w", item.Key(), err)
			}
			var m Message
			if err := json.Unmarshal(raw, &m); err != nil {
				corrupt = append(corrupt, corruptEntry{key: item.KeyCopy(nil), raw: raw, cause: err})
				continue
			}
			keys = append(keys, item.KeyCopy(nil))
			claimed = append(claimed, m)
		}

		for _, c := range corrupt {
			if err := q.quarantine(txn, name, p, c); err != nil {
				return err
			}
		}

		for i := range claimed {
			m := &claimed[i]
			m.Attempts++
			data, err := json.Marshal(m)
			if err != nil {
				return err
			}
			if err := txn.Delete(keys[i]); err != nil {
				return err
			}
			if err := txn.Set(stateKey(StateInflight, m), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("claim from %s: %w", name, err)
	}
	return claimed, nil
}

type corruptEntry struct {
	key   []byte
	raw   []byte
	cause error
}

// quarantine replaces an undecodable pending entry with a dead-lettered
// message carrying the raw value, so List and Requeue can still read it.
func (q *Queue) quarantine(txn *badger.Txn, name string, pendingPrefix []byte, c corruptEntry) error {
	m := Message{
		ID:         pendingID(c.key[len(pendingPrefix):]),
		Queue:      name,
		Body:       c.raw,
		EnqueuedAt: q.now().UTC(),
		LastError:  fmt.Sprintf("decode message: %v", c.cause),
	}
	data, err := json.Marshal(&m)
	if err != nil {
		return fmt.Errorf("encode dead letter: %w", err)
	}
	if err := txn.Delete(c.key); err != nil {
		return err
	}
	return txn.Set(stateKey(StateDeadLetter, &m), data)
}

// pendingID recovers the message ID from the "<nanos>:<id>" tail of a pending key.
func pendingID(tail []byte) string {
	if _, id, ok := bytes.Cut(tail, []byte(":")); ok && len(id) > 0 {
		return string(id)
	}
	return uuid.NewString()
}

// Ack removes a successfully processed in-flight message.
func (q *Queue) Ack(_ context.Context, m Message) error {
	return q.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(stateKey(StateInflight, &m))
	})
}

// Nack returns an in-flight message to the pending set with the failure recorded.
func (q *Queue) Nack(_ context.Context, m Message, cause error) error {
	return q.move(m, StatePending, cause)
}

// DeadLetter moves an in-flight message to the dead-letter set.
func (q *Queue) DeadLetter(_ context.Context, m Message, cause error) error {
	return q.move(m, StateDeadLetter, cause)
}

func (q *Queue) move(m Message, to State, cause error) error {
	if cause != nil {
		m.LastError = cause.Error()
	}
	data, err := json.Marshal(&m)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	target := stateKey(to, &m)
	if to == StatePending {
		target = pendingKey(&m)
	}

	return q.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(stateKey(StateInflight, &m)); err != nil {
			return err
		}
		return txn.Set(target, data)
	})
}

// Recover returns every in-flight message of the named queue to pending.
// Call it before consumers start so messages claimed by a crashed process are retried.
func (q *Queue) Recover(ctx context.Context, name string) (int, error) {
	msgs, err := q.List(ctx, StateInflight, name)
	if err != nil {
		return 0, err
	}
	for _, m := range msgs {
		if err := q.move(m, StatePending, nil); err != nil {
			return 0, fmt.Errorf("recover %s: %w", m.ID, err)
		}
	}
	return len(msgs), nil
}

// List returns the messages of a queue in the given state.
func (q *Queue) List(_ context.Context, state State, name string) ([]Message, error) {
	var msgs []Message
	err := q.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		p := prefix(state, name)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			var m Message
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &m)
			}); err != nil {
				return err
			}
			msgs = append(msgs, m)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s %s: %w", state, name, err)
	}
	return msgs, nil
}

// Requeue moves a dead-lettered message back to pending with its attempts reset.
func (q *Queue) Requeue(_ context.Context, name, id string) error {
	return q.db.Update(func(txn *badger.Txn) error {
		key := append(prefix(StateDeadLetter, name), id...)
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		var m Message
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &m)
		}); err != nil {
			return err
		}
		m.Attempts = 0
		m.LastError = ""
		data, err := json.Marshal(&m)
		if err != nil {
			return err
		}

		if err := txn.Delete(key); err != nil {
			return err
		}
		return txn.Set(pendingKey(&m), data)
	})
}
