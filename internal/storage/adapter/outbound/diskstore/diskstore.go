// Package diskstore keeps objects as files under a root directory. Writes go
// to a temp file in the destination directory and are renamed into place, so
// a key is either absent or holds a complete payload.
package diskstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/anthanhphan/go-file-gateway/internal/storage/domain"
	"github.com/anthanhphan/gosdk/logger"
)

const tempPrefix = ".tmp-"

type Config struct {
	Root string `json:"root" yaml:"root"`
	// QuotaBytes caps the summed object size; 0 disables the check.
	QuotaBytes int64 `json:"quota_bytes" yaml:"quota_bytes"`
	FSync      bool  `json:"fsync" yaml:"fsync"`
}

type Store struct {
	root  string
	quota int64
	fsync bool

	mu   sync.Mutex
	used int64
}

// New creates the root if needed, clears temp files left by a crash and
// measures current usage.
func New(cfg Config) (*Store, error) {
	if cfg.Root == "" {
		return nil, errors.New("diskstore: root is required")
	}
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("diskstore: resolve root: %w", err)
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("diskstore: create root %s: %w", root, err)
	}

	s := &Store{root: root, quota: cfg.QuotaBytes, fsync: cfg.FSync}
	if err := s.scan(); err != nil {
		return nil, err
	}
	logger.Infow("Disk store opened", "root", root, "used_bytes", s.used, "quota_bytes", s.quota)
	return s, nil
}

func (s *Store) scan() error {
	return filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), tempPrefix) {
			if rmErr := os.Remove(path); rmErr != nil {
				logger.Warnw("Failed to remove stale temp file", "path", path, "error", rmErr.Error())
			}
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		s.used += info.Size()
		return nil
	})
}

func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	size := int64(len(data))
	if err := s.reserve(key, size); err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			s.release(size)
		}
	}()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return s.ioErr("put", key, err)
	}
	tmp, err := os.CreateTemp(dir, tempPrefix+"*")
	if err != nil {
		return s.ioErr("put", key, err)
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return s.ioErr("put", key, err)
	}
	if s.fsync {
		if err := tmp.Sync(); err != nil {
			_ = tmp.Close()
			cleanup()
			return s.ioErr("put", key, err)
		}
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return s.ioErr("put", key, err)
	}
	// Last chance to abandon before the object becomes visible.
	if err := ctx.Err(); err != nil {
		cleanup()
		return err
	}

	s.mu.Lock()
	previous := fileSize(path)
	if err := os.Rename(tmpPath, path); err != nil {
		s.mu.Unlock()
		cleanup()
		return s.ioErr("put", key, err)
	}
	s.used -= previous
	committed = true
	s.mu.Unlock()

	if s.fsync {
		syncDir(dir)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.NewStorageError(domain.KindNotFound, "get", key, nil)
	}
	if err != nil {
		return nil, s.ioErr("get", key, err)
	}
	return data, nil
}

// Delete is idempotent.
func (s *Store) Delete(ctx context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	size := fileSize(path)
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return s.ioErr("delete", key, err)
	}
	s.used -= size
	return nil
}

func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	path, err := s.path(key)
	if err != nil {
		return false, err
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, s.ioErr("exists", key, err)
	}
	return info.Mode().IsRegular(), nil
}

// Usage returns the bytes currently stored and the configured quota.
func (s *Store) Usage() (used, quota int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.used, s.quota
}

func (s *Store) reserve(key string, size int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.quota > 0 && s.used+size > s.quota {
		return domain.NewStorageError(domain.KindQuotaExceeded, "put", key,
			fmt.Errorf("%d bytes used of %d, %d requested", s.used, s.quota, size))
	}
	s.used += size
	return nil
}

func (s *Store) release(size int64) {
	s.mu.Lock()
	s.used -= size
	s.mu.Unlock()
}

func (s *Store) path(key string) (string, error) {
	if err := domain.ValidateKey(key); err != nil {
		return "", err
	}
	path := filepath.Join(s.root, filepath.FromSlash(key))
	if !strings.HasPrefix(path, s.root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q escapes root", domain.ErrInvalidKey, key)
	}
	return path, nil
}

func (s *Store) ioErr(op, key string, err error) error {
	if errors.Is(err, syscall.ENOSPC) {
		return domain.NewStorageError(domain.KindQuotaExceeded, op, key, err)
	}
	return domain.NewStorageError(domain.KindIOFailure, op, key, err)
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}

func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	if err := d.Sync(); err != nil {
		logger.Debugw("Directory fsync failed", "dir", dir, "error", err.Error())
	}
	_ = d.Close()
}
