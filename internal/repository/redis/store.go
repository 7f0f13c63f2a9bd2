package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"qrstats/internal/domain"
	"qrstats/internal/repository"
)

// NewClient opens a Redis client and verifies the connection
func NewClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

// recordStore keeps records as JSON strings, one key per identifier
type recordStore struct {
	client redis.Cmdable
}

// NewRecordStore creates a Redis-backed record store
func NewRecordStore(client redis.Cmdable) repository.RecordStore {
	return &recordStore{client: client}
}

// Create writes the record with SETNX, so an existing identifier is never overwritten
func (s *recordStore) Create(ctx context.Context, record *domain.TargetRecord) error {
	data, err := repository.EncodeRecord(record)
	if err != nil {
		return domain.NewStoreError("create", err)
	}

	ok, err := s.client.SetNX(ctx, repository.TargetKey(record.ID), data, 0).Result()
	if err != nil {
		return domain.NewStoreError("create", err)
	}
	if !ok {
		return domain.ErrIDTaken
	}

	return nil
}

// Get loads and decodes the record for id
func (s *recordStore) Get(ctx context.Context, id string) (*domain.TargetRecord, error) {
	data, err := s.client.Get(ctx, repository.TargetKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrTargetNotFound
	}
	if err != nil {
		return nil, domain.NewStoreError("get", err)
	}

	record, err := repository.DecodeRecord(data)
	if err != nil {
		return nil, domain.NewStoreError("get", err)
	}

	return record, nil
}

// counterStore keeps counts as native Redis integers
type counterStore struct {
	client redis.Cmdable
}

// NewCounterStore creates a Redis-backed counter store.
// Increments use INCR and are exact under any concurrency.
func NewCounterStore(client redis.Cmdable) repository.CounterStore {
	return &counterStore{client: client}
}

// Get returns the count for id, zero if the key does not exist
func (s *counterStore) Get(ctx context.Context, id string) (int64, error) {
	data, err := s.client.Get(ctx, repository.CounterKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, domain.NewStoreError("count", err)
	}

	count, err := repository.DecodeCount(data)
	if err != nil {
		return 0, domain.NewStoreError("count", err)
	}

	return count, nil
}

// Increment atomically adds one to the count for id
func (s *counterStore) Increment(ctx context.Context, id string) error {
	if err := s.client.Incr(ctx, repository.CounterKey(id)).Err(); err != nil {
		return domain.NewStoreError("increment", err)
	}
	return nil
}
