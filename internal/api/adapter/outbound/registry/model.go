package registry

import (
	"time"

	"github.com/anthanhphan/go-file-gateway/internal/api/domain"
)

// fileRow is the files table. Status is managed explicitly instead of
// through gorm.DeletedAt so the purge job can still read deleted rows.
type fileRow struct {
	ID         string     `gorm:"primaryKey;size:32"`
	OwnerID    string     `gorm:"size:128;not null;index:idx_files_owner_created,priority:1"`
	Purpose    string     `gorm:"size:32;not null"`
	FileName   string     `gorm:"size:255;not null"`
	MimeType   string     `gorm:"size:127;not null"`
	SizeBytes  int64      `gorm:"not null"`
	StorageKey string     `gorm:"size:256;not null;index"`
	CreatedAt  time.Time  `gorm:"not null;index:idx_files_owner_created,priority:2"`
	Seq        int64      `gorm:"not null"`
	Status     string     `gorm:"size:16;not null;index"`
	DeletedAt  *time.Time `gorm:"index"`
}

func (fileRow) TableName() string {
	return "files"
}

func (r fileRow) toDomain() domain.FileRecord {
	rec := domain.FileRecord{
		ID:         r.ID,
		OwnerID:    r.OwnerID,
		Purpose:    domain.Purpose(r.Purpose),
		FileName:   r.FileName,
		MimeType:   r.MimeType,
		SizeBytes:  r.SizeBytes,
		StorageKey: r.StorageKey,
		CreatedAt:  r.CreatedAt.UTC(),
		Seq:        r.Seq,
		Status:     domain.Status(r.Status),
	}
	if r.DeletedAt != nil {
		at := r.DeletedAt.UTC()
		rec.DeletedAt = &at
	}
	return rec
}
