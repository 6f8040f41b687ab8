package cli

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/toyz/relay/internal/errors"
	"github.com/toyz/relay/internal/templates"
	"github.com/toyz/relay/internal/utils"
	"github.com/toyz/relay/pkg/relay"
)

// CleanResult lists what a clean run did.
type CleanResult struct {
	Removed []string
	// Skipped holds files named like the generated file that relay did not write.
	Skipped []string
}

// Cleaner removes generated component files.
type Cleaner struct {
	fileProcessor *utils.FileProcessor
	paths         *utils.PathValidator
}

// NewCleaner creates a new cleaner
func NewCleaner() *Cleaner {
	return &Cleaner{
		fileProcessor: utils.NewFileProcessor(func(name string) bool {
			return name == relay.GeneratedFileName
		}),
		paths: utils.NewPathValidator(relay.GeneratedFileName),
	}
}

// CleanGeneratedFiles removes the generated file from every directory
// matched by patterns.
func (c *Cleaner) CleanGeneratedFiles(patterns []string) (*CleanResult, error) {
	result := &CleanResult{}
	for _, pattern := range patterns {
		base, recursive := splitPattern(pattern)
		if _, err := os.Stat(base); os.IsNotExist(err) {
			continue
		}
		dirs, err := c.fileProcessor.PackageDirs(base, recursive)
		if err != nil {
			return result, errors.WrapScanError(base, err)
		}
		for _, dir := range dirs {
			removed, err := c.RemoveGenerated(dir)
			if err != nil {
				return result, err
			}
			path := filepath.Join(dir, relay.GeneratedFileName)
			if removed {
				result.Removed = append(result.Removed, path)
			} else {
				result.Skipped = append(result.Skipped, path)
			}
		}
	}
	return result, nil
}

// RemoveGenerated deletes the generated file in dir if relay wrote it. It
// reports whether a file was removed.
func (c *Cleaner) RemoveGenerated(dir string) (bool, error) {
	path, err := c.paths.ValidateOutput(filepath.Join(dir, relay.GeneratedFileName))
	if err != nil {
		return false, errors.WrapFileSystemError("remove", filepath.Join(dir, relay.GeneratedFileName), err)
	}
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, errors.WrapFileSystemError("read", path, err)
	}
	if !IsGenerated(content) {
		return false, nil
	}
	if err := os.Remove(path); err != nil {
		return false, errors.WrapFileSystemError("remove", path, err)
	}
	return true, nil
}

// IsGenerated reports whether content starts with the relay header.
func IsGenerated(content []byte) bool {
	return bytes.HasPrefix(content, []byte(templates.GeneratedHeader))
}
