package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	// KeyPrefix roots every generated object key.
	KeyPrefix    = "objects"
	MaxKeyLength = 256
)

var ErrInvalidKey = errors.New("invalid storage key")

// NewStorageKey returns a random key in the form objects/<2 hex>/<uuid>.
// The fan-out directory comes from the uuid itself so keys never depend on
// caller input.
func NewStorageKey() string {
	id := uuid.NewString()
	return KeyPrefix + "/" + id[:2] + "/" + id
}

// ValidateKey rejects keys that could escape a backend root.
func ValidateKey(key string) error {
	if key == "" || len(key) > MaxKeyLength {
		return fmt.Errorf("%w: length %d", ErrInvalidKey, len(key))
	}
	if strings.HasPrefix(key, "/") || strings.HasSuffix(key, "/") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	for _, segment := range strings.Split(key, "/") {
		if segment == "" || segment == "." || segment == ".." {
			return fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
	}
	for _, r := range key {
		if !isKeyRune(r) {
			return fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
	}
	return nil
}

func isKeyRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '-', r == '_', r == '.', r == '/':
		return true
	}
	return false
}
