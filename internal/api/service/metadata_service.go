package service

import (
	"context"

	"github.com/anthanhphan/go-file-gateway/internal/api/domain"
	"github.com/anthanhphan/go-file-gateway/pkg/idgen"
	"github.com/anthanhphan/gosdk/logger"
)

// metadataService owns registry reads and the ownership checks on them.
type metadataService struct {
	core *FileServiceImpl
}

func newMetadataService(core *FileServiceImpl) *metadataService {
	return &metadataService{core: core}
}

// getOwned returns an active record if requesterID owns it.
func (s *metadataService) getOwned(ctx context.Context, fileID, requesterID string) (domain.FileRecord, error) {
	if requesterID == "" {
		return domain.FileRecord{}, domain.NewValidationError(domain.ReasonMissingOwner, "requester is required")
	}
	if !idgen.IsFileID(fileID) {
		return domain.FileRecord{}, domain.NewValidationError(domain.ReasonInvalidFileID, "malformed file id")
	}

	rec, err := s.core.registry.Get(ctx, fileID)
	if err != nil {
		return domain.FileRecord{}, err
	}
	if rec.OwnerID != requesterID {
		logger.Warnw("Access to foreign file denied", "file_id", fileID, "requester_id", requesterID)
		return domain.FileRecord{}, domain.ErrForbidden
	}
	return rec, nil
}

func (s *metadataService) list(ctx context.Context, ownerID string, purpose domain.Purpose) ([]domain.FileRecord, error) {
	if ownerID == "" {
		return nil, domain.NewValidationError(domain.ReasonMissingOwner, "owner is required")
	}
	if purpose != "" && !purpose.Valid() {
		return nil, domain.NewValidationError(domain.ReasonInvalidPurpose, "unknown purpose %q", purpose)
	}
	return s.core.registry.List(ctx, ownerID, purpose)
}

// delete is logical; the purge job removes the object later.
func (s *metadataService) delete(ctx context.Context, fileID, requesterID string) error {
	if requesterID == "" {
		return domain.NewValidationError(domain.ReasonMissingOwner, "requester is required")
	}
	if !idgen.IsFileID(fileID) {
		return domain.NewValidationError(domain.ReasonInvalidFileID, "malformed file id")
	}

	if err := s.core.registry.Delete(ctx, fileID, requesterID); err != nil {
		return err
	}
	logger.Infow("File deleted", "file_id", fileID, "owner_id", requesterID)
	return nil
}
