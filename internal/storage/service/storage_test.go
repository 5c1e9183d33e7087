package service

import (
	"context"
	"errors"
	"testing"

	"github.com/anthanhphan/go-file-gateway/internal/storage/domain"
	"github.com/anthanhphan/go-file-gateway/internal/storage/service/mocks"
	"github.com/anthanhphan/go-file-gateway/pkg/shard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestStorageService_PutObject(t *testing.T) {
	quotaErr := domain.NewStorageError(domain.KindQuotaExceeded, "put", "objects/aa/k", nil)
	ioErr := domain.NewStorageError(domain.KindIOFailure, "put", "objects/aa/k", errors.New("eio"))

	tests := []struct {
		name    string
		setup   func(repo *mocks.MockObjectRepository)
		wantErr error
	}{
		{
			name: "Success",
			setup: func(repo *mocks.MockObjectRepository) {
				repo.EXPECT().Put(gomock.Any(), "objects/aa/k", []byte("data")).Return(nil)
			},
		},
		{
			name: "QuotaExceededReportsUsage",
			setup: func(repo *mocks.MockObjectRepository) {
				repo.EXPECT().Put(gomock.Any(), "objects/aa/k", gomock.Any()).Return(quotaErr)
				repo.EXPECT().Usage().Return(int64(90), int64(100))
			},
			wantErr: domain.ErrQuotaExceeded,
		},
		{
			name: "IOFailure",
			setup: func(repo *mocks.MockObjectRepository) {
				repo.EXPECT().Put(gomock.Any(), "objects/aa/k", gomock.Any()).Return(ioErr)
			},
			wantErr: domain.ErrIOFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := mocks.NewMockObjectRepository(ctrl)
			tt.setup(repo)

			svc := NewStorageService(repo, shard.NewRing(4), "node-1")
			err := svc.PutObject(context.Background(), "objects/aa/k", []byte("data"))
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestStorageService_GetDeleteExists(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockObjectRepository(ctrl)
	svc := NewStorageService(repo, shard.NewRing(4), "node-1")
	ctx := context.Background()

	notFound := domain.NewStorageError(domain.KindNotFound, "get", "objects/bb/k", nil)
	gomock.InOrder(
		repo.EXPECT().Get(ctx, "objects/bb/k").Return([]byte("v"), nil),
		repo.EXPECT().Get(ctx, "objects/bb/k").Return(nil, notFound),
	)
	repo.EXPECT().Delete(ctx, "objects/bb/k").Return(nil)
	repo.EXPECT().Exists(ctx, "objects/bb/k").Return(true, nil)

	data, err := svc.GetObject(ctx, "objects/bb/k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), data)

	_, err = svc.GetObject(ctx, "objects/bb/k")
	assert.ErrorIs(t, err, domain.ErrObjectNotFound)

	assert.NoError(t, svc.DeleteObject(ctx, "objects/bb/k"))

	ok, err := svc.HasObject(ctx, "objects/bb/k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStorageService_GetClusterTopology(t *testing.T) {
	ring := shard.NewRing(4)
	ring.AddNode(shard.Node{ID: "node-2", Addr: "node-2:8081"})
	ring.AddNode(shard.Node{ID: "node-1", Addr: "node-1:8081"})
	svc := NewStorageService(nil, ring, "node-1")

	nodes, err := svc.GetClusterTopology(context.Background())
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Equal(t, "node-1", nodes[0].ID)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.GetClusterTopology(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
