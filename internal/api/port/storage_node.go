package port

import (
	"context"
)

//go:generate mockgen -destination=../service/mocks/storage_node_mock.go -package=mocks -source=storage_node.go

// StorageNode reaches one storage node by address.
type StorageNode interface {
	Put(ctx context.Context, addr, key string, data []byte) error
	Get(ctx context.Context, addr, key string) ([]byte, error)
	Delete(ctx context.Context, addr, key string) error
	Exists(ctx context.Context, addr, key string) (bool, error)
}
