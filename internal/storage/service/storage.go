package service

import (
	"context"

	"github.com/anthanhphan/go-file-gateway/internal/storage/port"
	"github.com/anthanhphan/go-file-gateway/pkg/shard"
)

// StorageServiceImpl is a facade that composes storage use-case services.
type StorageServiceImpl struct {
	repo   port.ObjectRepository
	ring   *shard.Ring
	nodeID string

	objects  *objectOpsService
	topology *topologyQueryService
}

var _ port.StorageService = (*StorageServiceImpl)(nil)

func NewStorageService(repo port.ObjectRepository, ring *shard.Ring, nodeID string) *StorageServiceImpl {
	svc := &StorageServiceImpl{
		repo:   repo,
		ring:   ring,
		nodeID: nodeID,
	}

	svc.objects = newObjectOpsService(svc)
	svc.topology = newTopologyQueryService(svc)

	return svc
}

func (s *StorageServiceImpl) PutObject(ctx context.Context, key string, data []byte) error {
	return s.objects.put(ctx, key, data)
}

func (s *StorageServiceImpl) GetObject(ctx context.Context, key string) ([]byte, error) {
	return s.objects.get(ctx, key)
}

func (s *StorageServiceImpl) DeleteObject(ctx context.Context, key string) error {
	return s.objects.delete(ctx, key)
}

func (s *StorageServiceImpl) HasObject(ctx context.Context, key string) (bool, error) {
	return s.objects.exists(ctx, key)
}

// GetClusterTopology returns ring membership as seen by this node.
func (s *StorageServiceImpl) GetClusterTopology(ctx context.Context) ([]shard.Node, error) {
	return s.topology.getClusterTopology(ctx)
}
