package idgen

import (
	"fmt"
	"strings"

	nanoid "github.com/jaevor/go-nanoid"
)

const (
	// FileIDPrefix marks identifiers of stored files.
	FileIDPrefix = "file_"
	// FileIDLength is the number of random characters after the prefix.
	FileIDLength = 21

	base62Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
)

// FileIDGenerator produces opaque file identifiers: "file_" followed by 21
// random base62 characters from a CSPRNG.
type FileIDGenerator struct {
	gen func() string
}

// NewFileIDGenerator builds a generator backed by nanoid.
func NewFileIDGenerator() (*FileIDGenerator, error) {
	gen, err := nanoid.CustomASCII(base62Alphabet, FileIDLength)
	if err != nil {
		return nil, fmt.Errorf("failed to init file id generator: %w", err)
	}
	return &FileIDGenerator{gen: gen}, nil
}

// NewFileID returns a fresh identifier.
func (g *FileIDGenerator) NewFileID() string {
	return FileIDPrefix + g.gen()
}

// IsFileID reports whether s has the shape of a generated file identifier.
func IsFileID(s string) bool {
	if !strings.HasPrefix(s, FileIDPrefix) {
		return false
	}
	body := s[len(FileIDPrefix):]
	if len(body) != FileIDLength {
		return false
	}
	for i := 0; i < len(body); i++ {
		if strings.IndexByte(base62Alphabet, body[i]) < 0 {
			return false
		}
	}
	return true
}
