package domain

import (
	"errors"
	"fmt"

	storagedomain "github.com/anthanhphan/go-file-gateway/internal/storage/domain"
	"github.com/anthanhphan/go-file-gateway/pkg/signedurl"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("file not found")
	ErrForbidden  = errors.New("forbidden")
)

type ValidationReason string

const (
	ReasonUnsupportedType ValidationReason = "unsupported_type"
	ReasonTooLarge        ValidationReason = "too_large"
	ReasonInvalidPurpose  ValidationReason = "invalid_purpose"
	ReasonEmptyFile       ValidationReason = "empty_file"
	ReasonMissingOwner    ValidationReason = "missing_owner"
	ReasonInvalidFileName ValidationReason = "invalid_file_name"
	ReasonInvalidTTL      ValidationReason = "invalid_ttl"
	ReasonInvalidFileID   ValidationReason = "invalid_file_id"
)

// ValidationError is a caller mistake detected before any side effect.
type ValidationError struct {
	Reason ValidationReason
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Reason, e.Detail)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func NewValidationError(reason ValidationReason, format string, args ...any) *ValidationError {
	return &ValidationError{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

// ConsistencyAnomaly means the registry lists an active file whose object is
// missing or has the wrong length. Callers see it as ErrNotFound.
type ConsistencyAnomaly struct {
	FileID     string
	StorageKey string
	Detail     string
	Err        error
}

func (e *ConsistencyAnomaly) Error() string {
	return fmt.Sprintf("consistency anomaly for %s: %s", e.FileID, e.Detail)
}

func (e *ConsistencyAnomaly) Unwrap() error { return e.Err }

func (e *ConsistencyAnomaly) Is(target error) bool {
	return target == ErrNotFound
}

// Storage and signature errors are owned by their packages.
type (
	StorageError   = storagedomain.StorageError
	SignatureError = signedurl.Error
)

var (
	ErrStorageIO      = storagedomain.ErrIOFailure
	ErrStorageQuota   = storagedomain.ErrQuotaExceeded
	ErrObjectNotFound = storagedomain.ErrObjectNotFound
	ErrSignature      = signedurl.ErrSignature
)
