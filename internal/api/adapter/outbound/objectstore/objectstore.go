// Package objectstore keeps objects as Redis string values. A usage counter
// next to the objects is maintained by Lua scripts so quota checks and
// writes happen atomically.
package objectstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthanhphan/go-file-gateway/internal/api/port"
	"github.com/anthanhphan/go-file-gateway/internal/storage/domain"
	"github.com/redis/go-redis/v9"
)

const usageKey = "usage"

// putScript returns the new usage, or -1 when the write would cross the quota.
var putScript = redis.NewScript(`
	local old = redis.call('STRLEN', KEYS[1])
	local size = string.len(ARGV[1])
	local used = tonumber(redis.call('GET', KEYS[2]) or '0')
	local quota = tonumber(ARGV[2])
	local next_used = used - old + size
	if quota > 0 and next_used > quota then
		return -1
	end
	redis.call('SET', KEYS[1], ARGV[1])
	redis.call('INCRBY', KEYS[2], size - old)
	return next_used
`)

var deleteScript = redis.NewScript(`
	if redis.call('EXISTS', KEYS[1]) == 0 then
		return 0
	end
	local old = redis.call('STRLEN', KEYS[1])
	redis.call('DEL', KEYS[1])
	redis.call('DECRBY', KEYS[2], old)
	return 1
`)

type Config struct {
	KeyPrefix  string
	QuotaBytes int64
}

type Store struct {
	client redis.UniversalClient
	prefix string
	quota  int64
}

var _ port.StorageBackend = (*Store)(nil)

func New(client redis.UniversalClient, cfg Config) (*Store, error) {
	if client == nil {
		return nil, errors.New("objectstore: redis client is required")
	}
	if cfg.QuotaBytes < 0 {
		return nil, fmt.Errorf("objectstore: quota must not be negative, got %d", cfg.QuotaBytes)
	}
	return &Store{client: client, prefix: cfg.KeyPrefix, quota: cfg.QuotaBytes}, nil
}

func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	if err := domain.ValidateKey(key); err != nil {
		return err
	}
	used, err := putScript.Run(ctx, s.client, []string{s.objectKey(key), s.prefix + usageKey}, data, s.quota).Int64()
	if err != nil {
		return s.wrap(ctx, "put", key, err)
	}
	if used < 0 {
		return domain.NewStorageError(domain.KindQuotaExceeded, "put", key,
			fmt.Errorf("%d bytes over a quota of %d", len(data), s.quota))
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := domain.ValidateKey(key); err != nil {
		return nil, err
	}
	data, err := s.client.Get(ctx, s.objectKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.NewStorageError(domain.KindNotFound, "get", key, nil)
	}
	if err != nil {
		return nil, s.wrap(ctx, "get", key, err)
	}
	return data, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := domain.ValidateKey(key); err != nil {
		return err
	}
	if err := deleteScript.Run(ctx, s.client, []string{s.objectKey(key), s.prefix + usageKey}).Err(); err != nil {
		return s.wrap(ctx, "delete", key, err)
	}
	return nil
}

func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	if err := domain.ValidateKey(key); err != nil {
		return false, err
	}
	n, err := s.client.Exists(ctx, s.objectKey(key)).Result()
	if err != nil {
		return false, s.wrap(ctx, "exists", key, err)
	}
	return n == 1, nil
}

// Usage reports bytes accounted against the quota.
func (s *Store) Usage(ctx context.Context) (int64, error) {
	used, err := s.client.Get(ctx, s.prefix+usageKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, s.wrap(ctx, "usage", "", err)
	}
	return used, nil
}

func (s *Store) objectKey(key string) string {
	return s.prefix + key
}

func (s *Store) wrap(ctx context.Context, op, key string, err error) error {
	if ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return err
	}
	return domain.NewStorageError(domain.KindIOFailure, op, key, err)
}
