package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/anthanhphan/go-file-gateway/internal/api/config"
	"github.com/anthanhphan/go-file-gateway/internal/api/domain"
	"github.com/anthanhphan/go-file-gateway/internal/api/service/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestPurger(t *testing.T) (*Purger, *mocks.MockFileRegistry, *mocks.MockStorageBackend) {
	ctrl := gomock.NewController(t)
	registry := mocks.NewMockFileRegistry(ctrl)
	backend := mocks.NewMockStorageBackend(ctrl)

	p := NewPurger(config.PurgeConfig{IntervalSeconds: 1, RetentionSeconds: 3600, Workers: 2, BatchSize: 10}, registry, backend)
	p.now = func() time.Time { return time.Unix(1_760_000_000, 0) }
	return p, registry, backend
}

func deletedRecord(id, key string) domain.FileRecord {
	at := time.Unix(1_750_000_000, 0)
	return domain.FileRecord{ID: id, StorageKey: key, Status: domain.StatusDeleted, DeletedAt: &at}
}

func TestPurger_PurgeOnce(t *testing.T) {
	p, registry, backend := newTestPurger(t)
	cutoff := time.Unix(1_760_000_000-3600, 0)

	registry.EXPECT().ListDeleted(gomock.Any(), cutoff, 10).Return([]domain.FileRecord{
		deletedRecord("file_a", "objects/aa/a"),
		deletedRecord("file_b", "objects/bb/b"),
	}, nil)
	backend.EXPECT().Delete(gomock.Any(), "objects/aa/a").Return(nil)
	backend.EXPECT().Delete(gomock.Any(), "objects/bb/b").Return(errors.New("node down"))
	registry.EXPECT().Purge(gomock.Any(), "file_a").Return(nil)

	n, err := p.PurgeOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestPurger_NothingDue(t *testing.T) {
	p, registry, _ := newTestPurger(t)
	registry.EXPECT().ListDeleted(gomock.Any(), gomock.Any(), 10).Return(nil, nil)

	n, err := p.PurgeOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPurger_ListFailure(t *testing.T) {
	p, registry, _ := newTestPurger(t)
	registry.EXPECT().ListDeleted(gomock.Any(), gomock.Any(), 10).Return(nil, errors.New("locked"))

	_, err := p.PurgeOnce(context.Background())
	assert.EqualError(t, err, "locked")
}

func TestPurger_RunStopsWithContext(t *testing.T) {
	p, registry, _ := newTestPurger(t)
	p.interval = 5 * time.Millisecond
	registry.EXPECT().ListDeleted(gomock.Any(), gomock.Any(), 10).Return(nil, nil).MinTimes(1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
}
