package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies backend failures.
type ErrorKind string

const (
	KindIOFailure     ErrorKind = "io_failure"
	KindQuotaExceeded ErrorKind = "quota_exceeded"
	KindNotFound      ErrorKind = "not_found"
)

var (
	ErrIOFailure      = errors.New("storage I/O failure")
	ErrQuotaExceeded  = errors.New("storage quota exceeded")
	ErrObjectNotFound = errors.New("object not found")
)

// StorageError is returned by every backend operation that fails.
type StorageError struct {
	Kind ErrorKind
	Op   string
	Key  string
	Err  error
}

func NewStorageError(kind ErrorKind, op, key string, err error) *StorageError {
	return &StorageError{Kind: kind, Op: op, Key: key, Err: err}
}

func (e *StorageError) Error() string {
	msg := fmt.Sprintf("storage %s %s: %s", e.Op, e.Key, e.Kind)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind.
func (e *StorageError) Is(target error) bool {
	switch target {
	case ErrIOFailure:
		return e.Kind == KindIOFailure
	case ErrQuotaExceeded:
		return e.Kind == KindQuotaExceeded
	case ErrObjectNotFound:
		return e.Kind == KindNotFound
	}
	return false
}

// KindOf reports the kind of the first StorageError in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var se *StorageError
	if errors.As(err, &se) {
		return se.Kind, true
	}
	return "", false
}

// IsRetryable is true only for I/O failures.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrIOFailure)
}
