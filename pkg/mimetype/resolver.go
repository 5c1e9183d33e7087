// Package mimetype resolves file names to MIME types from a static extension table.
package mimetype

import (
	"errors"
	"path/filepath"
	"strings"
)

// ErrUnsupportedType is returned when the extension is not present in the table.
var ErrUnsupportedType = errors.New("unsupported file type")

// Resolver maps a file name to the MIME type recorded at upload time.
type Resolver interface {
	Resolve(fileName string) (string, error)
}

// Table is an immutable extension lookup. Build it with New.
type Table struct {
	types map[string]string
}

var _ Resolver = (*Table)(nil)

// New builds a table from base with overrides applied on top. Keys are
// normalized to lower case with a leading dot; an empty override value
// removes the extension from the table.
func New(base map[string]string, overrides map[string]string) *Table {
	types := make(map[string]string, len(base)+len(overrides))
	for ext, mt := range base {
		types[normalizeExt(ext)] = mt
	}
	for ext, mt := range overrides {
		key := normalizeExt(ext)
		if mt == "" {
			delete(types, key)
			continue
		}
		types[key] = mt
	}
	return &Table{types: types}
}

// Default returns a table over DefaultTable without overrides.
func Default() *Table {
	return New(DefaultTable, nil)
}

// Resolve returns the MIME type for the extension of fileName.
func (t *Table) Resolve(fileName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	if ext == "" || ext == "." {
		return "", ErrUnsupportedType
	}
	mt, ok := t.types[ext]
	if !ok {
		return "", ErrUnsupportedType
	}
	return mt, nil
}

// Len returns the number of known extensions.
func (t *Table) Len() int {
	return len(t.types)
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
