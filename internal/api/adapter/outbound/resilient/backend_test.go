package resilient

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/anthanhphan/go-file-gateway/internal/api/service/mocks"
	"github.com/anthanhphan/go-file-gateway/internal/storage/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const key = "objects/ab/key"

func newBackend(t *testing.T, cfg Config) (*Backend, *mocks.MockStorageBackend) {
	ctrl := gomock.NewController(t)
	next := mocks.NewMockStorageBackend(ctrl)
	return New(next, cfg), next
}

func ioErr(op string) error {
	return domain.NewStorageError(domain.KindIOFailure, op, key, errors.New("disk hiccup"))
}

func TestBackend_RetriesIOFailures(t *testing.T) {
	b, next := newBackend(t, Config{MaxRetries: 2, Backoff: time.Millisecond})

	gomock.InOrder(
		next.EXPECT().Put(gomock.Any(), key, []byte("x")).Return(ioErr("put")),
		next.EXPECT().Put(gomock.Any(), key, []byte("x")).Return(nil),
	)

	require.NoError(t, b.Put(context.Background(), key, []byte("x")))
}

func TestBackend_GivesUpAfterMaxRetries(t *testing.T) {
	b, next := newBackend(t, Config{MaxRetries: 2, Backoff: time.Millisecond})

	next.EXPECT().Get(gomock.Any(), key).Return(nil, ioErr("get")).Times(3)

	_, err := b.Get(context.Background(), key)
	assert.ErrorIs(t, err, domain.ErrIOFailure)
}

func TestBackend_DoesNotRetryTerminalErrors(t *testing.T) {
	cases := map[string]error{
		"not found": domain.NewStorageError(domain.KindNotFound, "get", key, nil),
		"quota":     domain.NewStorageError(domain.KindQuotaExceeded, "get", key, nil),
		"canceled":  context.Canceled,
	}
	for name, want := range cases {
		t.Run(name, func(t *testing.T) {
			b, next := newBackend(t, Config{MaxRetries: 3, Backoff: time.Millisecond})
			next.EXPECT().Get(gomock.Any(), key).Return(nil, want).Times(1)

			_, err := b.Get(context.Background(), key)
			assert.ErrorIs(t, err, want)
		})
	}
}

func TestBackend_AttemptTimeoutBecomesIOFailure(t *testing.T) {
	b, next := newBackend(t, Config{Timeout: 10 * time.Millisecond})

	next.EXPECT().Exists(gomock.Any(), key).DoAndReturn(func(ctx context.Context, _ string) (bool, error) {
		<-ctx.Done()
		return false, ctx.Err()
	})

	_, err := b.Exists(context.Background(), key)
	require.Error(t, err)
	kind, ok := domain.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, domain.KindIOFailure, kind)
}

func TestBackend_CallerCancellationPassesThrough(t *testing.T) {
	b, next := newBackend(t, Config{Timeout: time.Second, MaxRetries: 3})

	ctx, cancel := context.WithCancel(context.Background())
	next.EXPECT().Delete(gomock.Any(), key).DoAndReturn(func(ctx context.Context, _ string) error {
		cancel()
		return ctx.Err()
	})

	err := b.Delete(ctx, key)
	assert.ErrorIs(t, err, context.Canceled)
}
