package port

import (
	"context"
	"time"

	"github.com/anthanhphan/go-file-gateway/internal/api/domain"
)

//go:generate mockgen -destination=../service/mocks/registry_mock.go -package=mocks -source=registry.go

// FileRegistry is the durable source of truth for file metadata.
type FileRegistry interface {
	// Create assigns a fresh id and inserts the record.
	Create(ctx context.Context, rec domain.NewFileRecord) (domain.FileRecord, error)

	// Get returns ErrNotFound for unknown and deleted files.
	Get(ctx context.Context, id string) (domain.FileRecord, error)

	// Delete marks the record deleted. ErrForbidden when requesterID is not
	// the owner.
	Delete(ctx context.Context, id, requesterID string) error

	// List returns the owner's active files oldest first. An empty purpose
	// matches all.
	List(ctx context.Context, ownerID string, purpose domain.Purpose) ([]domain.FileRecord, error)

	// ListDeleted returns records deleted before the cutoff.
	ListDeleted(ctx context.Context, before time.Time, limit int) ([]domain.FileRecord, error)

	// Purge removes a deleted record permanently.
	Purge(ctx context.Context, id string) error
}
