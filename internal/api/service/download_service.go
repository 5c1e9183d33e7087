package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/anthanhphan/go-file-gateway/internal/api/domain"
	"github.com/anthanhphan/go-file-gateway/pkg/signedurl"
	"github.com/anthanhphan/gosdk/logger"
)

// warnw is swapped by tests to observe fetch-stage misses.
var warnw = logger.Warnw

// downloadService serves signed links. The signature is the only
// authorization; the registry is consulted after it verifies.
type downloadService struct {
	core *FileServiceImpl
}

func newDownloadService(core *FileServiceImpl) *downloadService {
	return &downloadService{core: core}
}

func (s *downloadService) download(ctx context.Context, query url.Values, forceAttachment bool) (domain.Download, error) {
	fileID, err := s.core.signer.Verify(query)
	if err != nil {
		logger.Infow("Signed url rejected", "file_id", query.Get(signedurl.ParamFileID), "reason", string(signedurl.ReasonOf(err)))
		return domain.Download{}, err
	}

	rec, err := s.core.registry.Get(ctx, fileID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// The link verified, so the file was deleted after signing.
			warnw("Signed url for missing file", "file_id", fileID)
		}
		return domain.Download{}, err
	}

	data, err := s.core.backend.Get(ctx, rec.StorageKey)
	if errors.Is(err, domain.ErrObjectNotFound) {
		return domain.Download{}, s.anomaly(rec, "object missing", err)
	}
	if err != nil {
		logger.Errorw("Download read failed", "file_id", rec.ID, "error", err.Error())
		return domain.Download{}, err
	}
	if int64(len(data)) != rec.SizeBytes {
		return domain.Download{}, s.anomaly(rec, fmt.Sprintf("object has %d bytes, registry has %d", len(data), rec.SizeBytes), nil)
	}

	disposition := ResolveDisposition(rec.MimeType, forceAttachment)
	logger.Debugw("Download served", "file_id", rec.ID, "bytes", len(data), "disposition", string(disposition))
	return domain.Download{
		FileID:      rec.ID,
		FileName:    rec.FileName,
		MimeType:    rec.MimeType,
		Disposition: ContentDisposition(disposition, rec.FileName),
		Data:        data,
	}, nil
}

func (s *downloadService) anomaly(rec domain.FileRecord, detail string, cause error) error {
	err := &domain.ConsistencyAnomaly{FileID: rec.ID, StorageKey: rec.StorageKey, Detail: detail, Err: cause}
	logger.Errorw("Registry and storage disagree", "file_id", rec.ID, "storage_key", rec.StorageKey, "detail", detail)
	return err
}
