// Package registry persists file records with GORM. SQLite is the default
// store; the connection is serialized so ordering ties are broken by Seq
// alone.
package registry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/anthanhphan/go-file-gateway/internal/api/domain"
	"github.com/anthanhphan/go-file-gateway/internal/api/port"
	"github.com/anthanhphan/gosdk/logger"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// maxIDAttempts bounds regeneration after a primary key collision.
const maxIDAttempts = 5

var ErrIDExhausted = errors.New("registry: could not allocate a unique file id")

// Sequence yields increasing numbers; *idgen.Snowflake satisfies it.
type Sequence interface {
	Next() (int64, error)
}

type Registry struct {
	db    *gorm.DB
	newID func() string
	seq   Sequence
	now   func() time.Time
}

var _ port.FileRegistry = (*Registry)(nil)

type Option func(*Registry)

func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// New wraps db and migrates the schema.
func New(db *gorm.DB, newID func() string, seq Sequence, opts ...Option) (*Registry, error) {
	if db == nil || newID == nil || seq == nil {
		return nil, errors.New("registry: db, id generator and sequence are required")
	}
	r := &Registry{db: db, newID: newID, seq: seq, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	if err := db.AutoMigrate(&fileRow{}); err != nil {
		return nil, fmt.Errorf("registry: migrate: %w", err)
	}
	return r, nil
}

// Open opens the SQLite database at path with a single connection.
func Open(path string) (*gorm.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("registry: create dir %s: %w", dir, err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path+"?_busy_timeout=5000&_journal_mode=WAL"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("registry: open %s: %w", path, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("registry: sql handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// Close releases the underlying connection pool.
func (r *Registry) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (r *Registry) Create(ctx context.Context, rec domain.NewFileRecord) (domain.FileRecord, error) {
	seq, err := r.seq.Next()
	if err != nil {
		return domain.FileRecord{}, fmt.Errorf("registry: sequence: %w", err)
	}

	row := fileRow{
		OwnerID:    rec.OwnerID,
		Purpose:    string(rec.Purpose),
		FileName:   rec.FileName,
		MimeType:   rec.MimeType,
		SizeBytes:  rec.SizeBytes,
		StorageKey: rec.StorageKey,
		CreatedAt:  r.now().UTC().Truncate(time.Microsecond),
		Seq:        seq,
		Status:     string(domain.StatusActive),
	}

	for attempt := 1; attempt <= maxIDAttempts; attempt++ {
		row.ID = r.newID()
		err := r.db.WithContext(ctx).Create(&row).Error
		if err == nil {
			return row.toDomain(), nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.FileRecord{}, fmt.Errorf("registry: create: %w", err)
		}
		logger.Warnw("File id collision, regenerating", "attempt", attempt)
	}
	return domain.FileRecord{}, ErrIDExhausted
}

func (r *Registry) Get(ctx context.Context, id string) (domain.FileRecord, error) {
	var row fileRow
	err := r.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, domain.StatusActive).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.FileRecord{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.FileRecord{}, fmt.Errorf("registry: get: %w", err)
	}
	return row.toDomain(), nil
}

func (r *Registry) Delete(ctx context.Context, id, requesterID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row fileRow
		err := tx.Select("id", "owner_id").
			Where("id = ? AND status = ?", id, domain.StatusActive).
			First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("registry: delete lookup: %w", err)
		}
		if row.OwnerID != requesterID {
			return domain.ErrForbidden
		}

		deletedAt := r.now().UTC()
		res := tx.Model(&fileRow{}).
			Where("id = ? AND status = ?", id, domain.StatusActive).
			Updates(map[string]any{"status": string(domain.StatusDeleted), "deleted_at": deletedAt})
		if res.Error != nil {
			return fmt.Errorf("registry: delete: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

func (r *Registry) List(ctx context.Context, ownerID string, purpose domain.Purpose) ([]domain.FileRecord, error) {
	q := r.db.WithContext(ctx).Where("owner_id = ? AND status = ?", ownerID, domain.StatusActive)
	if purpose != "" {
		q = q.Where("purpose = ?", string(purpose))
	}

	var rows []fileRow
	if err := q.Order("created_at ASC").Order("seq ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("registry: list: %w", err)
	}
	return toDomainList(rows), nil
}

func (r *Registry) ListDeleted(ctx context.Context, before time.Time, limit int) ([]domain.FileRecord, error) {
	var rows []fileRow
	err := r.db.WithContext(ctx).
		Where("status = ? AND deleted_at < ?", domain.StatusDeleted, before.UTC()).
		Order("deleted_at ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("registry: list deleted: %w", err)
	}
	return toDomainList(rows), nil
}

// Purge is a no-op for unknown or still-active ids.
func (r *Registry) Purge(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, domain.StatusDeleted).
		Delete(&fileRow{}).Error
	if err != nil {
		return fmt.Errorf("registry: purge: %w", err)
	}
	return nil
}

func toDomainList(rows []fileRow) []domain.FileRecord {
	out := make([]domain.FileRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out
}
