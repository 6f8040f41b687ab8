package cli

import (
	"os"
	"path/filepath"
	"time"

	"github.com/toyz/relay/internal/errors"
	"github.com/toyz/relay/internal/generator"
	"github.com/toyz/relay/internal/models"
	"github.com/toyz/relay/internal/parser"
	"github.com/toyz/relay/internal/utils"
	"github.com/toyz/relay/pkg/relay"
)

// GenerationSummary counts what a run produced.
type GenerationSummary struct {
	PackagesScanned int
	Controllers     int
	Services        int
	Routes          int
	GeneratedFiles  []string
	RemovedFiles    []string
}

// Generator coordinates scanning, parsing and writing generated files.
type Generator struct {
	scanner       *DirectoryScanner
	cleaner       *Cleaner
	codeGenerator generator.CodeGenerator
	diagnostics   *utils.DiagnosticSystem
	summary       GenerationSummary
}

// NewGenerator creates a generator reporting through diagnostics.
func NewGenerator(diagnostics *utils.DiagnosticSystem) *Generator {
	if diagnostics == nil {
		diagnostics = utils.NewDiagnosticSystem(utils.DiagnosticSilent)
	}
	return &Generator{
		scanner:       NewDirectoryScanner(),
		cleaner:       NewCleaner(),
		codeGenerator: generator.NewGenerator(),
		diagnostics:   diagnostics,
	}
}

// Summary returns the counts of the last run.
func (g *Generator) Summary() GenerationSummary {
	return g.summary
}

// Run generates the components file of every annotated package matched by
// cfg.Directories. Packages without annotations lose a stale generated
// file. Parse errors of all packages are collected before anything is
// written.
func (g *Generator) Run(cfg Config) error {
	start := time.Now()
	g.summary = GenerationSummary{}
	d := g.diagnostics

	d.Header("Generating components")
	d.Debug("Scanning directories: %v", cfg.Directories)

	dirs, err := g.scanner.ScanDirectories(cfg.Directories)
	if err != nil {
		return err
	}
	g.summary.PackagesScanned = len(dirs)

	resolver := NewModuleResolver(cfg.ModuleName)
	var (
		packages []*models.PackageMetadata
		empty    []string
		errs     errors.MultipleErrors
	)

	d.PhaseHeader("Parsing")
	for _, dir := range dirs {
		meta, err := parser.NewParser().ParseDirectory(dir)
		if err != nil {
			errs.Add(err)
			continue
		}
		if !meta.HasComponents() {
			d.Verbose("No components in %s", relPath(dir))
			empty = append(empty, dir)
			continue
		}
		meta.ImportPath, err = resolver.BuildPackagePath(dir)
		if err != nil {
			errs.Add(err)
			continue
		}
		d.PhaseItem("%s: %d controller(s), %d service(s)", meta.ImportPath, len(meta.Controllers), len(meta.Services))
		packages = append(packages, meta)
	}
	if err := errs.ErrorOrNil(); err != nil {
		return err
	}

	d.PhaseHeader("Generating")
	for _, meta := range packages {
		file, err := g.codeGenerator.Generate(meta)
		if err != nil {
			return err
		}
		d.PhaseProgress("Writing %s", relPath(file.FilePath))
		if err := generator.Write(file); err != nil {
			return err
		}
		g.summary.GeneratedFiles = append(g.summary.GeneratedFiles, file.FilePath)
		g.summary.Controllers += len(meta.Controllers)
		g.summary.Services += len(meta.Services)
		g.summary.Routes += file.Routes
	}
	for _, dir := range empty {
		removed, err := g.cleaner.RemoveGenerated(dir)
		if err != nil {
			return err
		}
		if removed {
			path := filepath.Join(dir, relay.GeneratedFileName)
			d.PhaseProgress("Removing stale %s", relPath(path))
			g.summary.RemovedFiles = append(g.summary.RemovedFiles, path)
		}
	}

	d.Verbose("Generation took %s", time.Since(start).Round(time.Millisecond))
	return nil
}

// relPath shortens path relative to the working directory for display.
func relPath(path string) string {
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	if rel, err := filepath.Rel(wd, path); err == nil {
		return rel
	}
	return path
}
