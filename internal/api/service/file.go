package service

import (
	"context"
	"net/url"
	"time"

	"github.com/anthanhphan/go-file-gateway/internal/api/config"
	"github.com/anthanhphan/go-file-gateway/internal/api/domain"
	"github.com/anthanhphan/go-file-gateway/internal/api/port"
	"github.com/anthanhphan/go-file-gateway/pkg/mimetype"
	"github.com/anthanhphan/go-file-gateway/pkg/signedurl"
)

//go:generate mockgen -destination=mocks/signer_mock.go -package=mocks -source=file.go

// URLSigner mints and checks download tokens; *signedurl.Signer satisfies it.
type URLSigner interface {
	Sign(fileID string, ttl time.Duration, label string) (signedurl.Token, error)
	Verify(query url.Values) (string, error)
}

// FileServiceImpl is the facade that wires use-case services for file operations.
type FileServiceImpl struct {
	cfg      *config.Config
	registry port.FileRegistry
	backend  port.StorageBackend
	signer   URLSigner
	mimes    mimetype.Resolver

	uploadUseCase   *uploadService
	accessUseCase   *accessService
	downloadUseCase *downloadService
	metadataUseCase *metadataService
}

var _ port.FileService = (*FileServiceImpl)(nil)

// NewFileService builds the file service facade and all use-case services.
func NewFileService(cfg *config.Config, registry port.FileRegistry, backend port.StorageBackend, signer URLSigner, mimes mimetype.Resolver) *FileServiceImpl {
	svc := &FileServiceImpl{
		cfg:      cfg,
		registry: registry,
		backend:  backend,
		signer:   signer,
		mimes:    mimes,
	}

	svc.metadataUseCase = newMetadataService(svc)
	svc.uploadUseCase = newUploadService(svc)
	svc.accessUseCase = newAccessService(svc, svc.metadataUseCase)
	svc.downloadUseCase = newDownloadService(svc)

	return svc
}

func (s *FileServiceImpl) Upload(ctx context.Context, in domain.UploadInput) (domain.FileRecord, error) {
	return s.uploadUseCase.upload(ctx, in)
}

func (s *FileServiceImpl) GetSignedURL(ctx context.Context, req domain.SignRequest) (domain.SignedURL, error) {
	return s.accessUseCase.signedURL(ctx, req)
}

func (s *FileServiceImpl) Download(ctx context.Context, query url.Values, forceAttachment bool) (domain.Download, error) {
	return s.downloadUseCase.download(ctx, query, forceAttachment)
}

func (s *FileServiceImpl) Delete(ctx context.Context, fileID, requesterID string) error {
	return s.metadataUseCase.delete(ctx, fileID, requesterID)
}

func (s *FileServiceImpl) List(ctx context.Context, ownerID string, purpose domain.Purpose) ([]domain.FileRecord, error) {
	return s.metadataUseCase.list(ctx, ownerID, purpose)
}

func (s *FileServiceImpl) GetFile(ctx context.Context, fileID, requesterID string) (domain.FileRecord, error) {
	return s.metadataUseCase.getOwned(ctx, fileID, requesterID)
}

// cleanupTimeout bounds best-effort removal of objects from failed uploads.
func (s *FileServiceImpl) cleanupTimeout() time.Duration {
	if d := s.cfg.BackendTimeout(); d > 0 {
		return d
	}
	return 10 * time.Second
}

func (s *FileServiceImpl) ttlBounds() (def, lo, hi time.Duration) {
	sc := s.cfg.Signing
	return seconds(sc.DefaultTTLSeconds), seconds(sc.MinTTLSeconds), seconds(sc.MaxTTLSeconds)
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
