package service

import (
	"context"

	"github.com/anthanhphan/go-file-gateway/pkg/shard"
)

// topologyQueryService answers read-only ring queries.
type topologyQueryService struct {
	core *StorageServiceImpl
}

func newTopologyQueryService(core *StorageServiceImpl) *topologyQueryService {
	return &topologyQueryService{core: core}
}

func (s *topologyQueryService) getClusterTopology(ctx context.Context) ([]shard.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.core.ring.GetNodes(), nil
}
