package service

import (
	"context"
	"errors"

	"github.com/anthanhphan/go-file-gateway/internal/storage/domain"
	"github.com/anthanhphan/gosdk/logger"
)

// objectOpsService handles local object put/get/delete.
type objectOpsService struct {
	core *StorageServiceImpl
}

func newObjectOpsService(core *StorageServiceImpl) *objectOpsService {
	return &objectOpsService{core: core}
}

func (s *objectOpsService) put(ctx context.Context, key string, data []byte) error {
	if err := s.core.repo.Put(ctx, key, data); err != nil {
		if errors.Is(err, domain.ErrQuotaExceeded) {
			used, quota := s.core.repo.Usage()
			logger.Warnw("PutObject rejected by quota", "key", key, "node_id", s.core.nodeID,
				"size", len(data), "used_bytes", used, "quota_bytes", quota)
			return err
		}
		logger.Errorw("PutObject failed", "key", key, "node_id", s.core.nodeID, "error", err.Error())
		return err
	}
	logger.Debugw("PutObject stored", "key", key, "size", len(data))
	return nil
}

func (s *objectOpsService) get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.core.repo.Get(ctx, key)
	if err != nil && !errors.Is(err, domain.ErrObjectNotFound) {
		logger.Errorw("GetObject failed", "key", key, "node_id", s.core.nodeID, "error", err.Error())
	}
	return data, err
}

func (s *objectOpsService) delete(ctx context.Context, key string) error {
	if err := s.core.repo.Delete(ctx, key); err != nil {
		logger.Warnw("DeleteObject failed", "key", key, "node_id", s.core.nodeID, "error", err.Error())
		return err
	}
	return nil
}

func (s *objectOpsService) exists(ctx context.Context, key string) (bool, error) {
	return s.core.repo.Exists(ctx, key)
}
