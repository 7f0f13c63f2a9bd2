package redis

import (
	"context"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qrstats/internal/domain"
	"qrstats/internal/repository"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
	})

	return mr, client
}

func TestRecordStore_CreateAndGet(t *testing.T) {
	mr, client := setupRedis(t)
	store := NewRecordStore(client)
	ctx := context.Background()

	hash := "$2a$04$hash"
	record := &domain.TargetRecord{ID: "deadbeef", URL: "http://x.com", PasswordHash: &hash}

	require.NoError(t, store.Create(ctx, record))
	assert.True(t, mr.Exists(repository.TargetKey("deadbeef")))

	got, err := store.Get(ctx, "deadbeef")
	require.NoError(t, err)
	assert.Equal(t, "deadbeef", got.ID)
	assert.Equal(t, "http://x.com", got.URL)
	require.NotNil(t, got.PasswordHash)
	assert.Equal(t, hash, *got.PasswordHash)
}

func TestRecordStore_CreateDoesNotOverwrite(t *testing.T) {
	_, client := setupRedis(t)
	store := NewRecordStore(client)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, &domain.TargetRecord{ID: "a1b2c3d4", URL: "http://example.com"}))

	err := store.Create(ctx, &domain.TargetRecord{ID: "a1b2c3d4", URL: "http://other.com"})
	assert.ErrorIs(t, err, domain.ErrIDTaken)

	got, err := store.Get(ctx, "a1b2c3d4")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com", got.URL)
}

func TestRecordStore_GetNotFound(t *testing.T) {
	_, client := setupRedis(t)
	store := NewRecordStore(client)

	_, err := store.Get(context.Background(), "ffffffff")
	assert.ErrorIs(t, err, domain.ErrTargetNotFound)
}

func TestRecordStore_GetCorruptPayload(t *testing.T) {
	mr, client := setupRedis(t)
	store := NewRecordStore(client)

	require.NoError(t, mr.Set(repository.TargetKey("broken"), `{"id":"broken"}`))

	_, err := store.Get(context.Background(), "broken")
	var storeErr *domain.StoreError
	assert.ErrorAs(t, err, &storeErr)
}

func TestRecordStore_ConnectionFailure(t *testing.T) {
	mr, client := setupRedis(t)
	store := NewRecordStore(client)
	mr.Close()

	err := store.Create(context.Background(), &domain.TargetRecord{ID: "a1b2c3d4", URL: "http://example.com"})
	var storeErr *domain.StoreError
	assert.ErrorAs(t, err, &storeErr)
	assert.NotErrorIs(t, err, domain.ErrIDTaken)
}

func TestCounterStore_DefaultsToZero(t *testing.T) {
	_, client := setupRedis(t)
	store := NewCounterStore(client)

	count, err := store.Get(context.Background(), "a1b2c3d4")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestCounterStore_SequentialIncrements(t *testing.T) {
	_, client := setupRedis(t)
	store := NewCounterStore(client)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		require.NoError(t, store.Increment(ctx, "a1b2c3d4"))
	}

	count, err := store.Get(ctx, "a1b2c3d4")
	require.NoError(t, err)
	assert.Equal(t, int64(25), count)
}

func TestCounterStore_ConcurrentIncrements(t *testing.T) {
	_, client := setupRedis(t)
	store := NewCounterStore(client)
	ctx := context.Background()

	const goroutines, perGoroutine = 20, 50

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				assert.NoError(t, store.Increment(ctx, "hot"))
			}
		}()
	}
	wg.Wait()

	count, err := store.Get(ctx, "hot")
	require.NoError(t, err)
	assert.Equal(t, int64(goroutines*perGoroutine), count)
}

func TestCounterStore_NonNumericValue(t *testing.T) {
	mr, client := setupRedis(t)
	store := NewCounterStore(client)

	require.NoError(t, mr.Set(repository.CounterKey("weird"), "many"))

	_, err := store.Get(context.Background(), "weird")
	var storeErr *domain.StoreError
	assert.ErrorAs(t, err, &storeErr)
}
