package workers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qrstats/internal/repository/memory"
	"qrstats/pkg/logger"
)

// blockingStore holds every increment until released
type blockingStore struct {
	release chan struct{}
	mu      sync.Mutex
	applied int
}

func (s *blockingStore) Get(context.Context, string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(s.applied), nil
}

func (s *blockingStore) Increment(ctx context.Context, _ string) error {
	select {
	case <-s.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	s.mu.Lock()
	s.applied++
	s.mu.Unlock()
	return nil
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) (int64, error) { return 0, nil }

func (failingStore) Increment(context.Context, string) error {
	return errors.New("store unavailable")
}

func TestCounterPool_AppliesAllIncrements(t *testing.T) {
	store := memory.NewStore()
	pool := NewCounterPool(store.Counters(), 8, 1000, time.Second, logger.NewNop())
	pool.Start()

	for i := 0; i < 500; i++ {
		require.True(t, pool.Record("a1b2c3d4"))
	}
	for i := 0; i < 300; i++ {
		require.True(t, pool.Record("deadbeef"))
	}

	require.NoError(t, pool.Stop(context.Background()))

	count, err := store.Counters().Get(context.Background(), "a1b2c3d4")
	require.NoError(t, err)
	assert.Equal(t, int64(500), count)

	count, err = store.Counters().Get(context.Background(), "deadbeef")
	require.NoError(t, err)
	assert.Equal(t, int64(300), count)
}

func TestCounterPool_DropsWhenFull(t *testing.T) {
	store := &blockingStore{release: make(chan struct{})}
	pool := NewCounterPool(store, 1, 1, 0, logger.NewNop())
	pool.Start()

	// the worker may already hold the first id, so at most two are accepted
	accepted := 0
	for i := 0; i < 10; i++ {
		if pool.Record("a1b2c3d4") {
			accepted++
		}
	}
	assert.GreaterOrEqual(t, accepted, 1)
	assert.LessOrEqual(t, accepted, 2)

	close(store.release)
	require.NoError(t, pool.Stop(context.Background()))

	count, _ := store.Get(context.Background(), "a1b2c3d4")
	assert.Equal(t, int64(accepted), count)
}

func TestCounterPool_RecordAfterStop(t *testing.T) {
	pool := NewCounterPool(memory.NewStore().Counters(), 2, 10, time.Second, logger.NewNop())
	pool.Start()
	require.NoError(t, pool.Stop(context.Background()))

	assert.False(t, pool.Record("a1b2c3d4"))
	assert.NoError(t, pool.Stop(context.Background()), "stop is idempotent")
}

func TestCounterPool_StopHonoursContext(t *testing.T) {
	store := &blockingStore{release: make(chan struct{})}
	pool := NewCounterPool(store, 1, 10, 0, logger.NewNop())
	pool.Start()
	require.True(t, pool.Record("a1b2c3d4"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, pool.Stop(ctx), context.DeadlineExceeded)

	close(store.release)
}

func TestCounterPool_StoreFailureIsSwallowed(t *testing.T) {
	pool := NewCounterPool(failingStore{}, 1, 10, time.Second, logger.NewNop())
	pool.Start()

	assert.True(t, pool.Record("a1b2c3d4"))
	assert.NoError(t, pool.Stop(context.Background()))
}
