package relay

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/toyz/relay/internal/utils"
)

// Scanner lists the qualified type identifiers found under a namespace.
type Scanner interface {
	Scan(namespace string) ([]string, error)
}

// GeneratedFileName is the file the relay generator writes into each package.
const GeneratedFileName = "autogen_components.go"

// ResolveNamespace turns namespace into an import path. An import path is
// returned unchanged; a dot-separated path is taken relative to modulePath.
func ResolveNamespace(namespace, modulePath string) string {
	namespace = strings.Trim(strings.TrimSpace(namespace), "/")
	switch {
	case namespace == "":
		return modulePath
	case modulePath != "" && (namespace == modulePath || strings.HasPrefix(namespace, modulePath+"/")):
		return namespace
	case strings.Contains(namespace, "/"):
		return namespace
	case modulePath == "":
		return strings.ReplaceAll(namespace, ".", "/")
	}
	return modulePath + "/" + strings.ReplaceAll(namespace, ".", "/")
}

// SourceScanner scans Go source files under the module that contains Root.
type SourceScanner struct {
	// Root is any directory inside the module. Empty means the working directory.
	Root   string
	Logger *slog.Logger
}

// NewSourceScanner creates a scanner rooted at dir.
func NewSourceScanner(dir string, logger *slog.Logger) *SourceScanner {
	return &SourceScanner{Root: dir, Logger: logger}
}

// Scan walks the package directory of namespace depth-first and returns
// "importpath.TypeName" for every top-level type declaration found.
func (s *SourceScanner) Scan(namespace string) ([]string, error) {
	logger := loggerOrDefault(s.Logger)

	moduleDir, modulePath, err := findModule(s.Root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNamespaceNotFound, namespace, err)
	}

	importPath := ResolveNamespace(namespace, modulePath)
	rel, ok := strings.CutPrefix(importPath, modulePath)
	if !ok || (rel != "" && rel[0] != '/') {
		return nil, fmt.Errorf("%w: %s is outside module %s", ErrNamespaceNotFound, namespace, modulePath)
	}
	dir := filepath.Join(moduleDir, filepath.FromSlash(strings.TrimPrefix(rel, "/")))

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s (%s)", ErrNamespaceNotFound, namespace, dir)
	}

	var ids []string
	if err := scanDir(dir, importPath, &ids); err != nil {
		return nil, err
	}
	logger.Debug("scanned namespace", "namespace", importPath, "dir", dir, "types", len(ids))
	return ids, nil
}

func scanDir(dir, importPath string, ids *[]string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read %s: %w", dir, err)
	}
	fset := token.NewFileSet()
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			if skipDir(name) {
				continue
			}
			if err := scanDir(filepath.Join(dir, name), path.Join(importPath, name), ids); err != nil {
				return err
			}
			continue
		}
		if !isTypeSource(name) {
			continue
		}
		names, err := declaredTypes(fset, filepath.Join(dir, name))
		if err != nil {
			return err
		}
		for _, n := range names {
			*ids = append(*ids, importPath+"."+n)
		}
	}
	return nil
}

func skipDir(name string) bool {
	return name == "testdata" || name == "vendor" ||
		strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}

func isTypeSource(name string) bool {
	return strings.HasSuffix(name, ".go") &&
		!strings.HasSuffix(name, "_test.go") &&
		name != GeneratedFileName &&
		!strings.HasPrefix(name, ".") && !strings.HasPrefix(name, "_")
}

func declaredTypes(fset *token.FileSet, file string) ([]string, error) {
	f, err := parser.ParseFile(fset, file, nil, parser.SkipObjectResolution)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", file, err)
	}
	var names []string
	for _, decl := range f.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		for _, spec := range gen.Specs {
			if ts, ok := spec.(*ast.TypeSpec); ok {
				names = append(names, ts.Name.Name)
			}
		}
	}
	return names, nil
}

// findModule returns the directory and module path of the nearest go.mod
// at or above dir. An empty dir means the working directory.
func findModule(dir string) (string, string, error) {
	if dir == "" {
		dir = "."
	}
	gomod, err := utils.FindGoModFile(dir)
	if err != nil {
		return "", "", err
	}
	modulePath, err := utils.ParseModuleName(gomod)
	if err != nil {
		return "", "", err
	}
	return filepath.Dir(gomod), modulePath, nil
}

// CatalogScanner lists catalog components as if they were scanned from source.
type CatalogScanner struct {
	Catalog *Catalog
	// Module is the module path dot-separated namespaces are relative to.
	Module string
}

// NewCatalogScanner creates a scanner over cat.
func NewCatalogScanner(cat *Catalog, module string) *CatalogScanner {
	return &CatalogScanner{Catalog: cat, Module: module}
}

// Scan returns the ids of components whose package is namespace or below
// it. Packages are visited depth-first; within a package registration order
// is kept.
func (s *CatalogScanner) Scan(namespace string) ([]string, error) {
	importPath := ResolveNamespace(namespace, s.Module)

	byPkg := make(map[string][]string)
	var pkgs []string
	for _, id := range s.Catalog.IDs() {
		pkg, _ := SplitTypeID(id)
		if importPath != "" && pkg != importPath && !strings.HasPrefix(pkg, importPath+"/") {
			continue
		}
		if _, seen := byPkg[pkg]; !seen {
			pkgs = append(pkgs, pkg)
		}
		byPkg[pkg] = append(byPkg[pkg], id)
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNamespaceNotFound, namespace)
	}

	sort.Slice(pkgs, func(i, j int) bool {
		return comparePaths(pkgs[i], pkgs[j]) < 0
	})
	var ids []string
	for _, pkg := range pkgs {
		ids = append(ids, byPkg[pkg]...)
	}
	return ids, nil
}

// comparePaths orders import paths segment by segment so that a package
// sorts directly before its sub-packages.
func comparePaths(a, b string) int {
	as, bs := strings.Split(a, "/"), strings.Split(b, "/")
	for i := 0; i < len(as) && i < len(bs); i++ {
		if c := strings.Compare(as[i], bs[i]); c != 0 {
			return c
		}
	}
	return len(as) - len(bs)
}

func loggerOrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
