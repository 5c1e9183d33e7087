package port

import (
	"context"
)

//go:generate mockgen -destination=../service/mocks/storage_mock.go -package=mocks -source=storage.go

// ObjectRepository is the node-local object store.
type ObjectRepository interface {
	// Put stores data under key atomically.
	Put(ctx context.Context, key string, data []byte) error

	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes key; an absent key is not an error.
	Delete(ctx context.Context, key string) error

	Exists(ctx context.Context, key string) (bool, error)

	// Usage reports stored bytes and the quota (0 means unlimited).
	Usage() (used, quota int64)
}
