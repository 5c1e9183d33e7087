package port

import (
	"context"
)

//go:generate mockgen -destination=../service/mocks/storage_backend_mock.go -package=mocks -source=storage.go

// StorageBackend stores opaque objects for the gateway. Implementations
// return *domain.StorageError for every failure except invalid keys and
// context errors.
type StorageBackend interface {
	// Put makes data visible at key all at once or not at all.
	Put(ctx context.Context, key string, data []byte) error

	// Get fails with a NotFound storage error for absent keys.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete is idempotent.
	Delete(ctx context.Context, key string) error

	Exists(ctx context.Context, key string) (bool, error)
}
