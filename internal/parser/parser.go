// Package parser extracts relay component metadata from annotated Go
// packages.
package parser

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/toyz/relay/internal/annotations"
	"github.com/toyz/relay/internal/errors"
	"github.com/toyz/relay/internal/models"
	"github.com/toyz/relay/pkg/relay"
)

// RelayImportPath is the import path of the runtime package.
const RelayImportPath = "github.com/toyz/relay/pkg/relay"

// Parser walks package sources and builds PackageMetadata.
type Parser struct {
	fileSet     *token.FileSet
	annotations *annotations.Parser
}

// NewParser creates a parser validating annotations against the built-in schemas.
func NewParser() *Parser {
	return &Parser{
		fileSet:     token.NewFileSet(),
		annotations: annotations.NewParser(annotations.DefaultRegistry()),
	}
}

// ParseSource parses a single source file, for tests and tooling.
func (p *Parser) ParseSource(filename, source string) (*models.PackageMetadata, error) {
	file, err := parser.ParseFile(p.fileSet, filename, source, parser.ParseComments)
	if err != nil {
		return nil, errors.Wrapf(errors.SyntaxErrorCode, err, "failed to parse %s", filename)
	}
	return p.parsePackage(file.Name.Name, filepath.Dir(filename), []*ast.File{file})
}

// ParseDirectory parses the non-test sources of the package in dir. The
// generated components file is ignored.
func (p *Parser) ParseDirectory(dir string) (*models.PackageMetadata, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.WrapFileSystemError("read directory", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !IsSourceFile(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	if len(names) == 0 {
		return nil, errors.Newf(errors.ScanErrorCode, "no Go files found in directory %s", dir)
	}

	files := make([]*ast.File, 0, len(names))
	pkgName := ""
	for _, name := range names {
		path := filepath.Join(dir, name)
		file, err := parser.ParseFile(p.fileSet, path, nil, parser.ParseComments)
		if err != nil {
			return nil, errors.Wrapf(errors.SyntaxErrorCode, err, "failed to parse %s", path)
		}
		switch {
		case pkgName == "":
			pkgName = file.Name.Name
		case pkgName != file.Name.Name:
			return nil, errors.Newf(errors.ScanErrorCode, "multiple packages found in directory %s: %s and %s", dir, pkgName, file.Name.Name)
		}
		files = append(files, file)
	}
	return p.parsePackage(pkgName, dir, files)
}

// IsSourceFile reports whether name is a Go file the parser reads.
func IsSourceFile(name string) bool {
	return strings.HasSuffix(name, ".go") &&
		!strings.HasSuffix(name, "_test.go") &&
		name != relay.GeneratedFileName &&
		!strings.HasPrefix(name, ".") &&
		!strings.HasPrefix(name, "_")
}

// packageState accumulates metadata while the files of one package are walked.
type packageState struct {
	meta        *models.PackageMetadata
	controllers map[string]int
	errs        errors.MultipleErrors
}

func (p *Parser) parsePackage(name, dir string, files []*ast.File) (*models.PackageMetadata, error) {
	st := &packageState{
		meta:        &models.PackageMetadata{PackageName: name, PackagePath: dir},
		controllers: make(map[string]int),
	}

	for _, file := range files {
		p.collectTypes(st, file)
	}
	for _, file := range files {
		p.collectRoutes(st, file)
	}

	if err := st.errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return st.meta, nil
}

func (p *Parser) location(pos token.Pos) errors.SourceLocation {
	position := p.fileSet.Position(pos)
	return errors.SourceLocation{File: position.Filename, Line: position.Line, Column: position.Column}
}

// docAnnotations parses the relay annotations of a comment group. Invalid
// annotations are recorded and skipped.
func (p *Parser) docAnnotations(st *packageState, groups ...*ast.CommentGroup) []*annotations.Annotation {
	var found []*annotations.Annotation
	for _, group := range groups {
		if group == nil {
			continue
		}
		for _, c := range group.List {
			if !annotations.IsAnnotation(c.Text) {
				continue
			}
			a, err := p.annotations.Parse(c.Text, p.location(c.Pos()))
			if err != nil {
				st.errs.Add(err)
				continue
			}
			found = append(found, a)
		}
	}
	return found
}

func (p *Parser) collectTypes(st *packageState, file *ast.File) {
	for _, decl := range file.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		for _, spec := range gen.Specs {
			typeSpec := spec.(*ast.TypeSpec)
			doc := typeSpec.Doc
			if doc == nil && len(gen.Specs) == 1 {
				doc = gen.Doc
			}
			p.collectType(st, file, typeSpec, p.docAnnotations(st, doc))
		}
	}
}

func (p *Parser) collectType(st *packageState, file *ast.File, spec *ast.TypeSpec, found []*annotations.Annotation) {
	var component *models.ComponentMetadata
	var kind annotations.Kind

	for _, a := range found {
		switch a.Kind {
		case annotations.ControllerKind, annotations.ServiceKind:
			if component != nil {
				st.errs.Add(errors.NewValidationError("kind",
					fmt.Sprintf("%s is annotated as both %s and %s", spec.Name.Name, kind, a.Kind), a.Location))
				return
			}
			kind = a.Kind
			component = &models.ComponentMetadata{
				StructName: spec.Name.Name,
				Location:   a.Location,
			}
			if kind == annotations.ControllerKind {
				component.BasePath, _ = a.Option("Path")
				continue
			}
			component.Name, _ = a.Option("Name")
			for _, item := range a.List("Implements") {
				ref, err := resolveCapability(file, item)
				if err != nil {
					st.errs.Add(errors.NewValidationError("Implements", err.Error(), a.Location))
					continue
				}
				component.Implements = append(component.Implements, ref)
			}
		default:
			st.errs.Add(errors.NewValidationError("kind",
				fmt.Sprintf("//relay::%s cannot annotate type %s", a.Kind, spec.Name.Name), a.Location))
		}
	}
	if component == nil {
		return
	}

	structType, ok := spec.Type.(*ast.StructType)
	if !ok {
		st.errs.Add(errors.NewValidationError("kind",
			fmt.Sprintf("%s must be a struct to be a %s", spec.Name.Name, kind), component.Location))
		return
	}
	if spec.TypeParams != nil {
		st.errs.Add(errors.NewValidationError("kind",
			fmt.Sprintf("%s is generic and cannot be a %s", spec.Name.Name, kind), component.Location))
		return
	}
	component.Injections = p.collectInjections(st, structType)

	if kind == annotations.ControllerKind {
		st.controllers[component.StructName] = len(st.meta.Controllers)
		st.meta.Controllers = append(st.meta.Controllers, *component)
	} else {
		st.meta.Services = append(st.meta.Services, *component)
	}
}

func (p *Parser) collectInjections(st *packageState, structType *ast.StructType) []models.InjectionMetadata {
	var injections []models.InjectionMetadata
	for _, field := range structType.Fields.List {
		for _, a := range p.docAnnotations(st, field.Doc, field.Comment) {
			if a.Kind != annotations.AutowiredKind {
				st.errs.Add(errors.NewValidationError("kind",
					fmt.Sprintf("//relay::%s cannot annotate a field", a.Kind), a.Location))
				continue
			}
			for _, name := range fieldNames(field) {
				injections = append(injections, models.InjectionMetadata{FieldName: name, Name: a.Arg(0)})
			}
		}
	}
	return injections
}

// fieldNames returns the declared names of field, or the type name of an
// embedded field.
func fieldNames(field *ast.Field) []string {
	if len(field.Names) > 0 {
		names := make([]string, 0, len(field.Names))
		for _, n := range field.Names {
			if n.Name != "_" {
				names = append(names, n.Name)
			}
		}
		return names
	}
	if name := baseTypeName(field.Type); name != "" {
		return []string{name}
	}
	return nil
}

// baseTypeName strips pointers, qualifiers and type arguments from expr.
func baseTypeName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return baseTypeName(t.X)
	case *ast.SelectorExpr:
		return t.Sel.Name
	case *ast.IndexExpr:
		return baseTypeName(t.X)
	case *ast.IndexListExpr:
		return baseTypeName(t.X)
	}
	return ""
}

// resolveCapability turns Name or pkg.Name into a reference, resolving
// pkg through the imports of file.
func resolveCapability(file *ast.File, item string) (models.CapabilityRef, error) {
	pkg, name, qualified := strings.Cut(item, ".")
	if !qualified {
		return models.CapabilityRef{TypeName: pkg}, nil
	}
	importPath, ok := lookupImport(file, pkg)
	if !ok {
		return models.CapabilityRef{}, fmt.Errorf("capability %s: package %s is not imported", item, pkg)
	}
	return models.CapabilityRef{Package: pkg, ImportPath: importPath, TypeName: name}, nil
}

// lookupImport finds the import bound to name in file.
func lookupImport(file *ast.File, name string) (string, bool) {
	for _, imp := range file.Imports {
		path := strings.Trim(imp.Path.Value, `"`)
		local := importName(path)
		if imp.Name != nil {
			local = imp.Name.Name
		}
		if local == name {
			return path, true
		}
	}
	return "", false
}

// importName guesses the package name of path: its last element, skipping
// a major version suffix.
func importName(path string) string {
	elems := strings.Split(path, "/")
	last := elems[len(elems)-1]
	if len(elems) > 1 && isMajorVersion(last) {
		last = elems[len(elems)-2]
	}
	return strings.ReplaceAll(last, "-", "_")
}

func isMajorVersion(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
