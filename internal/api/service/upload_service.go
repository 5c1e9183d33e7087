package service

import (
	"context"
	"errors"
	"path"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/anthanhphan/go-file-gateway/internal/api/domain"
	storagedomain "github.com/anthanhphan/go-file-gateway/internal/storage/domain"
	"github.com/anthanhphan/gosdk/logger"
)

const maxFileNameLength = 255

// uploadService writes the object first and publishes the record second, so
// a visible record always has its bytes.
type uploadService struct {
	core *FileServiceImpl
}

func newUploadService(core *FileServiceImpl) *uploadService {
	return &uploadService{core: core}
}

func (s *uploadService) upload(ctx context.Context, in domain.UploadInput) (domain.FileRecord, error) {
	rec, err := s.validate(in)
	if err != nil {
		return domain.FileRecord{}, err
	}

	rec.StorageKey = storagedomain.NewStorageKey()
	logger.Infow("Upload started", "owner_id", rec.OwnerID, "file_name", rec.FileName, "size_bytes", rec.SizeBytes)

	if err := s.core.backend.Put(ctx, rec.StorageKey, in.Data); err != nil {
		logger.Errorw("Upload write failed", "storage_key", rec.StorageKey, "error", err.Error())
		if outcomeUnknown(ctx, err) {
			s.cleanupUpload(ctx, rec.StorageKey)
		}
		return domain.FileRecord{}, err
	}

	created, err := s.core.registry.Create(ctx, rec)
	if err != nil {
		logger.Errorw("Upload registration failed", "storage_key", rec.StorageKey, "error", err.Error())
		s.cleanupUpload(ctx, rec.StorageKey)
		return domain.FileRecord{}, err
	}

	logger.Infow("Upload completed", "file_id", created.ID, "mime_type", created.MimeType, "size_bytes", created.SizeBytes)
	return created, nil
}

func (s *uploadService) validate(in domain.UploadInput) (domain.NewFileRecord, error) {
	if strings.TrimSpace(in.OwnerID) == "" {
		return domain.NewFileRecord{}, domain.NewValidationError(domain.ReasonMissingOwner, "owner is required")
	}
	purpose, err := domain.ParsePurpose(in.Purpose)
	if err != nil {
		return domain.NewFileRecord{}, err
	}
	name, err := cleanFileName(in.FileName)
	if err != nil {
		return domain.NewFileRecord{}, err
	}

	size := int64(len(in.Data))
	if size == 0 {
		return domain.NewFileRecord{}, domain.NewValidationError(domain.ReasonEmptyFile, "file is empty")
	}
	if limit := s.core.cfg.App.MaxUploadBytes; size > limit {
		return domain.NewFileRecord{}, domain.NewValidationError(domain.ReasonTooLarge, "%d bytes exceeds the %d byte limit", size, limit)
	}

	mimeType, err := s.core.mimes.Resolve(name)
	if err != nil {
		return domain.NewFileRecord{}, domain.NewValidationError(domain.ReasonUnsupportedType, "extension %q is not supported", path.Ext(name))
	}

	return domain.NewFileRecord{
		OwnerID:   in.OwnerID,
		Purpose:   purpose,
		FileName:  name,
		MimeType:  mimeType,
		SizeBytes: size,
	}, nil
}

// cleanupUpload removes an object whose record was never published. It runs
// inline on a context detached from the request so a cancelled caller still
// gets its bytes removed.
func (s *uploadService) cleanupUpload(ctx context.Context, key string) {
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.core.cleanupTimeout())
	defer cancel()

	if err := s.core.backend.Delete(cleanupCtx, key); err != nil {
		logger.Errorw("Cleanup of unpublished object failed", "storage_key", key, "error", err.Error())
		return
	}
	logger.Infow("Cleanup of unpublished object finished", "storage_key", key)
}

// outcomeUnknown is true when a failed write may still have landed.
func outcomeUnknown(ctx context.Context, err error) bool {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return errors.Is(err, storagedomain.ErrIOFailure)
}

// cleanFileName keeps the base name only. Names with control characters or
// invalid UTF-8 are rejected.
func cleanFileName(raw string) (string, error) {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(raw), "\\", "/"))
	if name == "" || name == "." || name == ".." || name == "/" {
		return "", domain.NewValidationError(domain.ReasonInvalidFileName, "file name is required")
	}
	if len(name) > maxFileNameLength {
		return "", domain.NewValidationError(domain.ReasonInvalidFileName, "file name longer than %d bytes", maxFileNameLength)
	}
	if !utf8.ValidString(name) {
		return "", domain.NewValidationError(domain.ReasonInvalidFileName, "file name is not valid UTF-8")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return "", domain.NewValidationError(domain.ReasonInvalidFileName, "file name contains control characters")
		}
	}
	return name, nil
}
