package port

import (
	"context"
	"net/url"

	"github.com/anthanhphan/go-file-gateway/internal/api/domain"
)

//go:generate mockgen -destination=../service/mocks/file_service_mock.go -package=mocks -source=service.go

// FileService is the access gateway used by inbound adapters.
type FileService interface {
	Upload(ctx context.Context, in domain.UploadInput) (domain.FileRecord, error)

	// GetSignedURL checks ownership before minting a token.
	GetSignedURL(ctx context.Context, req domain.SignRequest) (domain.SignedURL, error)

	// Download authorizes by signature only.
	Download(ctx context.Context, query url.Values, forceAttachment bool) (domain.Download, error)

	Delete(ctx context.Context, fileID, requesterID string) error
	List(ctx context.Context, ownerID string, purpose domain.Purpose) ([]domain.FileRecord, error)
	GetFile(ctx context.Context, fileID, requesterID string) (domain.FileRecord, error)
}
