// Package generator renders the components file of an annotated package.
package generator

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/tools/imports"

	"github.com/toyz/relay/internal/errors"
	"github.com/toyz/relay/internal/models"
	"github.com/toyz/relay/internal/templates"
	"github.com/toyz/relay/internal/utils"
	"github.com/toyz/relay/pkg/relay"
)

// CodeGenerator turns package metadata into a generated file.
type CodeGenerator interface {
	Generate(metadata *models.PackageMetadata) (*models.GeneratedFile, error)
}

// Generator implements CodeGenerator with the built-in templates.
type Generator struct {
	templates *templates.TemplateRegistry
}

// NewGenerator creates a new code generator instance
func NewGenerator() *Generator {
	return &Generator{templates: templates.NewTemplateRegistry()}
}

// Generate renders and formats the components file for metadata.
func (g *Generator) Generate(metadata *models.PackageMetadata) (*models.GeneratedFile, error) {
	if metadata == nil {
		return nil, fmt.Errorf("metadata cannot be nil")
	}
	filePath := filepath.Join(metadata.PackagePath, relay.GeneratedFileName)

	src, err := g.templates.Execute("components", metadata)
	if err != nil {
		return nil, errors.WrapTemplateError("components", err)
	}

	formatted, err := imports.Process(filePath, []byte(src), &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return nil, errors.WrapGenerateError(filePath, fmt.Errorf("generated code does not compile: %w\n%s", err, src))
	}

	routes := 0
	for _, c := range metadata.Controllers {
		routes += len(c.Routes)
	}
	return &models.GeneratedFile{
		PackageName: metadata.PackageName,
		FilePath:    filePath,
		Content:     string(formatted),
		Components:  len(metadata.Controllers) + len(metadata.Services),
		Routes:      routes,
	}, nil
}

var outputPaths = utils.NewPathValidator(relay.GeneratedFileName)

// Write stores file on disk. Only the generated file name is written, and
// never through a symlink.
func Write(file *models.GeneratedFile) error {
	path, err := outputPaths.ValidateOutput(file.FilePath)
	if err != nil {
		return errors.WrapFileSystemError("write", file.FilePath, err)
	}
	if err := os.WriteFile(path, []byte(file.Content), 0o644); err != nil {
		return errors.WrapFileSystemError("write", path, err)
	}
	return nil
}
