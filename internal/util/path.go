package util

import (
	"fmt"
	"path/filepath"
	"strings"
)

// SanitizeFilename reduces an uploaded filename to its base component so
// names like "../../etc/passwd" cannot escape the uploads directory.
func SanitizeFilename(filename string) (string, error) {
	safe := filepath.Base(filename)
	if safe == "." || safe == ".." || safe == "" || safe == string(filepath.Separator) {
		return "", fmt.Errorf("invalid filename: %q", filename)
	}
	return safe, nil
}

// SafeJoinPath joins components under basePath and rejects any result
// that resolves outside of it.
func SafeJoinPath(basePath string, components ...string) (string, error) {
	fullPath := filepath.Join(append([]string{basePath}, components...)...)

	absBase, err := filepath.Abs(filepath.Clean(basePath))
	if err != nil {
		return "", fmt.Errorf("invalid base path: %w", err)
	}
	absTarget, err := filepath.Abs(filepath.Clean(fullPath))
	if err != nil {
		return "", fmt.Errorf("invalid target path: %w", err)
	}

	// The trailing separator prevents /uploads-evil from passing when
	// the base is /uploads.
	if absTarget != absBase && !strings.HasPrefix(absTarget, absBase+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes base directory")
	}

	return fullPath, nil
}
