// Package resilient decorates a storage backend with per-call timeouts and
// bounded retries of I/O failures.
package resilient

import (
	"context"
	"errors"
	"time"

	"github.com/anthanhphan/go-file-gateway/internal/api/port"
	"github.com/anthanhphan/go-file-gateway/internal/storage/domain"
	"github.com/anthanhphan/go-file-gateway/pkg/resilience"
	"github.com/anthanhphan/gosdk/logger"
)

type Config struct {
	// Timeout caps each attempt. Zero disables the cap.
	Timeout time.Duration
	// MaxRetries counts attempts after the first one.
	MaxRetries int
	// Backoff grows linearly with the attempt number.
	Backoff time.Duration
}

type Backend struct {
	next   port.StorageBackend
	policy resilience.RetryPolicy
}

var _ port.StorageBackend = (*Backend)(nil)

func New(next port.StorageBackend, cfg Config) *Backend {
	retries := cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return &Backend{
		next: next,
		policy: resilience.RetryPolicy{
			MaxAttempts:    retries + 1,
			AttemptTimeout: cfg.Timeout,
			Backoff:        cfg.Backoff,
			Retryable:      domain.IsRetryable,
		},
	}
}

func (b *Backend) Put(ctx context.Context, key string, data []byte) error {
	return b.do(ctx, "put", key, func(ctx context.Context) error {
		return b.next.Put(ctx, key, data)
	})
}

func (b *Backend) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := b.do(ctx, "get", key, func(ctx context.Context) error {
		var err error
		data, err = b.next.Get(ctx, key)
		return err
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (b *Backend) Delete(ctx context.Context, key string) error {
	return b.do(ctx, "delete", key, func(ctx context.Context) error {
		return b.next.Delete(ctx, key)
	})
}

func (b *Backend) Exists(ctx context.Context, key string) (bool, error) {
	var ok bool
	err := b.do(ctx, "exists", key, func(ctx context.Context) error {
		var err error
		ok, err = b.next.Exists(ctx, key)
		return err
	})
	return ok, err
}

func (b *Backend) do(ctx context.Context, op, key string, fn func(context.Context) error) error {
	attempt := 0
	err := resilience.Retry(ctx, b.policy, func(attemptCtx context.Context) error {
		attempt++
		err := fn(attemptCtx)
		if err == nil {
			return nil
		}
		err = classify(ctx, op, key, err)
		if domain.IsRetryable(err) && attempt < b.policy.MaxAttempts {
			logger.Debugw("Retrying storage call", "op", op, "key", key, "attempt", attempt, "error", err.Error())
		}
		return err
	})
	if err != nil && ctx.Err() != nil && !isStorageError(err) {
		return ctx.Err()
	}
	return err
}

// classify turns an attempt timeout into an I/O failure. Errors caused by
// the caller's own context are passed through untouched.
func classify(parent context.Context, op, key string, err error) error {
	if parent.Err() != nil {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.NewStorageError(domain.KindIOFailure, op, key, err)
	}
	return err
}

func isStorageError(err error) bool {
	_, ok := domain.KindOf(err)
	return ok
}
