package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// relativeConfigPath returns path in the working-directory relative form
// conflux reads. conflux refuses absolute paths and "..", so an absolute path
// is accepted only when it lies under the working directory.
func relativeConfigPath(path string) (string, error) {
	if !filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolve working directory: %w", err)
	}
	// Compare real paths; temp and home dirs are often symlinked.
	if real, err := filepath.EvalSymlinks(wd); err == nil {
		wd = real
	}
	if dir, err := filepath.EvalSymlinks(filepath.Dir(path)); err == nil {
		path = filepath.Join(dir, filepath.Base(path))
	}
	rel, err := filepath.Rel(wd, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("config path %s must be inside the working directory %s", path, wd)
	}
	return rel, nil
}
