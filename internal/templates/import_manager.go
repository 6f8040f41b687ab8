package templates

import (
	"fmt"
	"sort"
	"strings"

	"github.com/toyz/relay/internal/models"
)

// RuntimeImport is the import path every generated file needs.
const RuntimeImport = "github.com/toyz/relay/pkg/relay"

// ImportManager collects and deduplicates the imports of a generated file.
type ImportManager struct {
	moduleImport   string
	packageImports map[string]string // path -> alias
	aliases        map[string]string // alias -> path
}

// NewImportManager creates a manager that always imports moduleImport.
func NewImportManager(moduleImport string) *ImportManager {
	return &ImportManager{
		moduleImport:   moduleImport,
		packageImports: make(map[string]string),
		aliases:        make(map[string]string),
	}
}

// AddPackageImport adds path under alias. Adding the same pair twice is a
// no-op; reusing an alias for a different path is an error.
func (im *ImportManager) AddPackageImport(alias, path string) error {
	if path == "" || path == im.moduleImport {
		return nil
	}
	if existing, ok := im.aliases[alias]; ok && existing != path {
		return fmt.Errorf("import alias %s refers to both %s and %s", alias, existing, path)
	}
	if existing, ok := im.packageImports[path]; ok && existing != alias {
		return fmt.Errorf("import %s is qualified as both %s and %s", path, existing, alias)
	}
	im.aliases[alias] = path
	im.packageImports[path] = alias
	return nil
}

// AddCapabilities adds the imports of every qualified capability in p.
// Local capabilities need no import.
func (im *ImportManager) AddCapabilities(p *models.PackageMetadata) error {
	for _, c := range p.Components() {
		for _, capability := range c.Implements {
			if capability.ImportPath == "" {
				continue
			}
			if err := im.AddPackageImport(capability.Package, capability.ImportPath); err != nil {
				return fmt.Errorf("%s: %w", c.StructName, err)
			}
		}
	}
	return nil
}

// Paths returns the package imports sorted by path, module import excluded.
func (im *ImportManager) Paths() []string {
	paths := make([]string, 0, len(im.packageImports))
	for path := range im.packageImports {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// GenerateImports renders the import block, module import first.
func (im *ImportManager) GenerateImports() string {
	var b strings.Builder
	b.WriteString("import (\n")
	fmt.Fprintf(&b, "\t%q\n", im.moduleImport)
	for _, path := range im.Paths() {
		fmt.Fprintf(&b, "\t%s %q\n", im.packageImports[path], path)
	}
	b.WriteString(")\n")
	return b.String()
}

// importBlock renders the import block of a components file.
func importBlock(p *models.PackageMetadata) (string, error) {
	im := NewImportManager(RuntimeImport)
	if err := im.AddCapabilities(p); err != nil {
		return "", err
	}
	return im.GenerateImports(), nil
}
