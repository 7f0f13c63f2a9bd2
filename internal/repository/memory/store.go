// Package memory is an in-process backend modelled on a plain key/value service
// that only offers get and put. Create-if-absent and increment are built as
// read-modify-write sequences serialized per key, so they are exact within one
// process but not across processes sharing a real KV of this kind.
package memory

import (
	"context"
	"sync"

	"qrstats/internal/domain"
	"qrstats/internal/repository"
)

// KV is a byte-valued key/value map without atomic primitives
type KV struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewKV creates an empty key/value map
func NewKV() *KV {
	return &KV{data: make(map[string][]byte)}
}

// Get returns a copy of the value for key
func (kv *KV) Get(_ context.Context, key string) ([]byte, bool) {
	kv.mu.RLock()
	defer kv.mu.RUnlock()

	value, ok := kv.data[key]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), value...), true
}

// Put stores a copy of value under key
func (kv *KV) Put(_ context.Context, key string, value []byte) {
	kv.mu.Lock()
	defer kv.mu.Unlock()

	kv.data[key] = append([]byte(nil), value...)
}

// size returns the number of stored keys
func (kv *KV) size() int {
	kv.mu.RLock()
	defer kv.mu.RUnlock()
	return len(kv.data)
}

// Store implements both repository.RecordStore and repository.CounterStore
// over a KV, in two namespaces.
type Store struct {
	kv    *KV
	locks *keyedMutex
}

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return newStoreWithKV(NewKV())
}

// newStoreWithKV creates a store over an existing map
func newStoreWithKV(kv *KV) *Store {
	return &Store{kv: kv, locks: newKeyedMutex()}
}

// Records returns the record store view
func (s *Store) Records() repository.RecordStore {
	return recordStore{s}
}

// Counters returns the counter store view
func (s *Store) Counters() repository.CounterStore {
	return counterStore{s}
}

type recordStore struct{ s *Store }

// Create checks and writes under the identifier's lock
func (r recordStore) Create(ctx context.Context, record *domain.TargetRecord) error {
	if err := ctx.Err(); err != nil {
		return domain.NewStoreError("create", err)
	}

	data, err := repository.EncodeRecord(record)
	if err != nil {
		return domain.NewStoreError("create", err)
	}

	key := repository.TargetKey(record.ID)
	unlock := r.s.locks.Lock(key)
	defer unlock()

	if _, exists := r.s.kv.Get(ctx, key); exists {
		return domain.ErrIDTaken
	}
	r.s.kv.Put(ctx, key, data)

	return nil
}

func (r recordStore) Get(ctx context.Context, id string) (*domain.TargetRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewStoreError("get", err)
	}

	data, ok := r.s.kv.Get(ctx, repository.TargetKey(id))
	if !ok {
		return nil, domain.ErrTargetNotFound
	}

	record, err := repository.DecodeRecord(data)
	if err != nil {
		return nil, domain.NewStoreError("get", err)
	}
	return record, nil
}

type counterStore struct{ s *Store }

func (c counterStore) Get(ctx context.Context, id string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, domain.NewStoreError("count", err)
	}

	data, ok := c.s.kv.Get(ctx, repository.CounterKey(id))
	if !ok {
		return 0, nil
	}

	count, err := repository.DecodeCount(data)
	if err != nil {
		return 0, domain.NewStoreError("count", err)
	}
	return count, nil
}

// Increment reads, adds one and writes back while holding the identifier's lock
func (c counterStore) Increment(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return domain.NewStoreError("increment", err)
	}

	key := repository.CounterKey(id)
	unlock := c.s.locks.Lock(key)
	defer unlock()

	var count int64
	if data, ok := c.s.kv.Get(ctx, key); ok {
		current, err := repository.DecodeCount(data)
		if err != nil {
			return domain.NewStoreError("increment", err)
		}
		count = current
	}

	c.s.kv.Put(ctx, key, repository.EncodeCount(count+1))
	return nil
}
