package cache

import (
	"context"
	"time"

	"qrstats/internal/domain"
	"qrstats/internal/repository"
	"qrstats/pkg/logger"
)

// cachedRecordStore puts a cache-aside layer in front of a durable record store.
// Records never change after creation, so cached entries cannot go stale.
type cachedRecordStore struct {
	inner  repository.RecordStore
	cache  Cache
	ttl    time.Duration
	logger *logger.Logger
}

// NewCachedRecordStore wraps inner with cache
func NewCachedRecordStore(inner repository.RecordStore, cache Cache, ttl time.Duration, logger *logger.Logger) repository.RecordStore {
	return &cachedRecordStore{
		inner:  inner,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

// Create stores the record and warms the cache
func (s *cachedRecordStore) Create(ctx context.Context, record *domain.TargetRecord) error {
	if err := s.inner.Create(ctx, record); err != nil {
		return err
	}
	s.put(ctx, record)
	return nil
}

// Get serves from cache when possible and falls back to the inner store
func (s *cachedRecordStore) Get(ctx context.Context, id string) (*domain.TargetRecord, error) {
	cached, err := s.cache.Get(ctx, id)
	if err != nil {
		s.logger.Warn("Record cache read failed", "error", err, "id", id)
	} else if cached != "" {
		record, err := repository.DecodeRecord([]byte(cached))
		if err == nil {
			s.logger.Debug("Cache hit", "id", id)
			return record, nil
		}
		s.logger.Warn("Discarding undecodable cache entry", "error", err, "id", id)
	}

	record, err := s.inner.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.put(ctx, record)
	return record, nil
}

func (s *cachedRecordStore) put(ctx context.Context, record *domain.TargetRecord) {
	data, err := repository.EncodeRecord(record)
	if err != nil {
		s.logger.Warn("Failed to encode record for cache", "error", err, "id", record.ID)
		return
	}
	if err := s.cache.Set(ctx, record.ID, string(data), s.ttl); err != nil {
		s.logger.Warn("Failed to cache record", "error", err, "id", record.ID)
	}
}
