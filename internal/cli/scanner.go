package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/toyz/relay/internal/errors"
	"github.com/toyz/relay/internal/parser"
	"github.com/toyz/relay/internal/utils"
)

// DirectoryScanner expands directory patterns into package directories.
type DirectoryScanner struct {
	fileProcessor *utils.FileProcessor
}

// NewDirectoryScanner creates a scanner selecting the files the parser reads.
func NewDirectoryScanner() *DirectoryScanner {
	return &DirectoryScanner{
		fileProcessor: utils.NewFileProcessor(parser.IsSourceFile),
	}
}

// ScanDirectories returns the absolute package directories matched by
// patterns, without duplicates, in pattern order.
func (s *DirectoryScanner) ScanDirectories(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var dirs []string

	for _, pattern := range patterns {
		base, recursive := splitPattern(pattern)

		root, err := filepath.Abs(base)
		if err != nil {
			return nil, errors.WrapScanError(base, err)
		}
		info, err := os.Stat(root)
		if err != nil {
			return nil, errors.WrapScanError(base, err)
		}
		if !info.IsDir() {
			return nil, errors.Newf(errors.ScanErrorCode, "%s is not a directory", base)
		}

		found, err := s.fileProcessor.PackageDirs(root, recursive)
		if err != nil {
			return nil, errors.WrapScanError(base, err)
		}
		for _, dir := range found {
			if !seen[dir] {
				seen[dir] = true
				dirs = append(dirs, dir)
			}
		}
	}
	return dirs, nil
}

// splitPattern strips a trailing "/..." and reports whether it was present.
func splitPattern(pattern string) (string, bool) {
	if pattern == "..." {
		return ".", true
	}
	base, recursive := strings.CutSuffix(filepath.ToSlash(pattern), "/...")
	if base == "" {
		base = "."
	}
	return filepath.FromSlash(base), recursive
}
