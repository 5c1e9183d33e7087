package port

import (
	"context"

	"github.com/anthanhphan/go-file-gateway/pkg/shard"
)

// StorageService is what the gRPC handler exposes.
type StorageService interface {
	PutObject(ctx context.Context, key string, data []byte) error
	GetObject(ctx context.Context, key string) ([]byte, error)
	DeleteObject(ctx context.Context, key string) error
	HasObject(ctx context.Context, key string) (bool, error)

	// GetClusterTopology returns the storage nodes this node knows about.
	GetClusterTopology(ctx context.Context) ([]shard.Node, error)
}
