package objectstore

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/anthanhphan/go-file-gateway/internal/storage/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, quota int64) *Store {
	t.Helper()

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Skip("Redis not available, skipping integration test")
	}

	prefix := fmt.Sprintf("fgw-test:%d:", time.Now().UnixNano())
	t.Cleanup(func() {
		ctx := context.Background()
		keys, _ := client.Keys(ctx, prefix+"*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		_ = client.Close()
	})

	s, err := New(client, Config{KeyPrefix: prefix, QuotaBytes: quota})
	require.NoError(t, err)
	return s
}

func TestStore_Lifecycle(t *testing.T) {
	s := newTestStore(t, 0)
	ctx := context.Background()
	key := domain.NewStorageKey()

	require.NoError(t, s.Put(ctx, key, []byte("hello")))

	ok, err := s.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)

	require.NoError(t, s.Delete(ctx, key))
	require.NoError(t, s.Delete(ctx, key))

	_, err = s.Get(ctx, key)
	assert.ErrorIs(t, err, domain.ErrObjectNotFound)

	used, err := s.Usage(ctx)
	require.NoError(t, err)
	assert.Zero(t, used)
}

func TestStore_BinaryPayload(t *testing.T) {
	s := newTestStore(t, 0)
	ctx := context.Background()
	key := domain.NewStorageKey()
	payload := []byte{0x00, 0xff, 0x89, 'P', 'N', 'G', 0x00}

	require.NoError(t, s.Put(ctx, key, payload))
	got, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestStore_Quota(t *testing.T) {
	s := newTestStore(t, 10)
	ctx := context.Background()
	a, b := domain.NewStorageKey(), domain.NewStorageKey()

	require.NoError(t, s.Put(ctx, a, []byte("123456")))

	err := s.Put(ctx, b, []byte("123456"))
	assert.ErrorIs(t, err, domain.ErrQuotaExceeded)
	ok, err := s.Exists(ctx, b)
	require.NoError(t, err)
	assert.False(t, ok, "rejected put must leave nothing behind")

	// Overwrite is charged by the difference.
	require.NoError(t, s.Put(ctx, a, []byte("1234567890")))
	used, err := s.Usage(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(10), used)

	require.NoError(t, s.Delete(ctx, a))
	require.NoError(t, s.Put(ctx, b, []byte("123456")))
}

func TestStore_ConcurrentPutsRespectQuota(t *testing.T) {
	s := newTestStore(t, 50)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.Put(ctx, domain.NewStorageKey(), []byte("0123456789"))
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrQuotaExceeded)
	}
	assert.Equal(t, 5, succeeded)
}

func TestStore_RejectsInvalidKeys(t *testing.T) {
	s := newTestStore(t, 0)
	err := s.Put(context.Background(), "../etc/passwd", []byte("x"))
	assert.ErrorIs(t, err, domain.ErrInvalidKey)
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil, Config{})
	assert.Error(t, err)

	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	defer client.Close()
	_, err = New(client, Config{QuotaBytes: -1})
	assert.Error(t, err)
}
