package utils

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileFilter decides whether a file is processed.
type FileFilter func(name string) bool

// DirectoryFilter decides whether a directory is descended into.
type DirectoryFilter func(name string) bool

var skipDirs = map[string]bool{
	"vendor":       true,
	"node_modules": true,
	"testdata":     true,
}

// DefaultDirectoryFilter skips hidden, underscore-prefixed and known
// non-source directories, following the go tool.
func DefaultDirectoryFilter() DirectoryFilter {
	return func(name string) bool {
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
			return false
		}
		return !skipDirs[name]
	}
}

// FileProcessor finds package directories below a root.
type FileProcessor struct {
	files FileFilter
	dirs  DirectoryFilter
}

// NewFileProcessor creates a processor selecting files with files.
func NewFileProcessor(files FileFilter) *FileProcessor {
	return &FileProcessor{files: files, dirs: DefaultDirectoryFilter()}
}

// HasFiles reports whether dir directly contains a file accepted by the filter.
func (fp *FileProcessor) HasFiles(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, err
	}
	for _, e := range entries {
		if !e.IsDir() && fp.files(e.Name()) {
			return true, nil
		}
	}
	return false, nil
}

// PackageDirs returns root and, when recursive, every directory below it
// that contains an accepted file. The root itself is never filtered out by
// name. Directories are returned in lexical walk order.
func (fp *FileProcessor) PackageDirs(root string, recursive bool) ([]string, error) {
	if !recursive {
		ok, err := fp.HasFiles(root)
		if err != nil || !ok {
			return nil, err
		}
		return []string{root}, nil
	}

	var dirs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && !fp.dirs(d.Name()) {
			return filepath.SkipDir
		}
		// nested modules are separate scan roots
		if path != root {
			if _, err := os.Stat(filepath.Join(path, "go.mod")); err == nil {
				return filepath.SkipDir
			}
		}
		ok, err := fp.HasFiles(path)
		if err != nil {
			return err
		}
		if ok {
			dirs = append(dirs, path)
		}
		return nil
	})
	return dirs, err
}

// FilesMatching returns the accepted files directly inside dir.
func (fp *FileProcessor) FilesMatching(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && fp.files(e.Name()) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files, nil
}
