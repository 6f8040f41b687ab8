package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

// PathValidator guards the files the generator writes and the cleaner
// removes. Only files with the expected base name pass, and never through a
// symlink.
type PathValidator struct {
	name string
}

// NewPathValidator creates a validator accepting files called name.
func NewPathValidator(name string) *PathValidator {
	return &PathValidator{name: name}
}

// ValidateOutput cleans path and checks that it may be written or removed.
// The file itself need not exist.
func (pv *PathValidator) ValidateOutput(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("file path cannot be empty")
	}
	cleanPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path for %s: %w", path, err)
	}
	if base := filepath.Base(cleanPath); base != pv.name {
		return "", fmt.Errorf("refusing to touch %s: only %s files are managed", cleanPath, pv.name)
	}

	info, err := os.Lstat(cleanPath)
	switch {
	case os.IsNotExist(err):
		return cleanPath, nil
	case err != nil:
		return "", err
	case info.Mode()&os.ModeSymlink != 0:
		return "", fmt.Errorf("refusing to follow symlink %s", cleanPath)
	case info.IsDir():
		return "", fmt.Errorf("%s is a directory", cleanPath)
	}
	return cleanPath, nil
}
