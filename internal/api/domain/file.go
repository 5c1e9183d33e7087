package domain

import (
	"fmt"
	"time"
)

// ObjectType is the "object" field of API file responses.
const ObjectType = "file"

type Purpose string

const (
	PurposeAssistants       Purpose = "assistants"
	PurposeAssistantsOutput Purpose = "assistants_output"
	PurposeFineTune         Purpose = "fine-tune"
	PurposeBatch            Purpose = "batch"
	PurposeBatchOutput      Purpose = "batch_output"
	PurposeVision           Purpose = "vision"
	PurposeUserData         Purpose = "user_data"
)

var purposes = map[Purpose]struct{}{
	PurposeAssistants:       {},
	PurposeAssistantsOutput: {},
	PurposeFineTune:         {},
	PurposeBatch:            {},
	PurposeBatchOutput:      {},
	PurposeVision:           {},
	PurposeUserData:         {},
}

func (p Purpose) Valid() bool {
	_, ok := purposes[p]
	return ok
}

// ParsePurpose accepts only the known purpose strings.
func ParsePurpose(s string) (Purpose, error) {
	p := Purpose(s)
	if !p.Valid() {
		return "", &ValidationError{Reason: ReasonInvalidPurpose, Detail: fmt.Sprintf("unknown purpose %q", s)}
	}
	return p, nil
}

type Status string

const (
	StatusActive  Status = "active"
	StatusDeleted Status = "deleted"
)

// FileRecord is the registry's view of one uploaded file.
type FileRecord struct {
	ID         string
	OwnerID    string
	Purpose    Purpose
	FileName   string
	MimeType   string
	SizeBytes  int64
	StorageKey string // never leaves the service layer
	CreatedAt  time.Time
	Seq        int64
	Status     Status
	DeletedAt  *time.Time
}

func (r FileRecord) Active() bool {
	return r.Status == StatusActive
}

// NewFileRecord carries everything Create needs; the registry assigns the
// id, sequence and timestamps.
type NewFileRecord struct {
	OwnerID    string
	Purpose    Purpose
	FileName   string
	MimeType   string
	SizeBytes  int64
	StorageKey string
}

type UploadInput struct {
	OwnerID  string
	Purpose  string
	FileName string
	Data     []byte
}

type SignRequest struct {
	FileID      string
	RequesterID string
	// Label defaults to the stored file name.
	Label    string
	TTL      time.Duration
	Markdown bool
}

type SignedURL struct {
	URL       string
	ExpiresAt time.Time
	// Text is the markdown link when requested, otherwise URL.
	Text string
}

type Download struct {
	FileID      string
	FileName    string
	MimeType    string
	Disposition string
	Data        []byte
}
