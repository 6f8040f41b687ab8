// Package models holds the metadata the parser extracts from annotated
// packages and the generator renders.
package models

import "github.com/toyz/relay/internal/errors"

// PackageMetadata collects the annotated components of one package.
type PackageMetadata struct {
	PackageName string // Go package name
	PackagePath string // directory on disk
	ImportPath  string // import path, set once the module is resolved
	Controllers []ComponentMetadata
	Services    []ComponentMetadata
}

// HasComponents reports whether anything in the package needs registering.
func (p *PackageMetadata) HasComponents() bool {
	return len(p.Controllers) > 0 || len(p.Services) > 0
}

// Components returns controllers followed by services.
func (p *PackageMetadata) Components() []ComponentMetadata {
	all := make([]ComponentMetadata, 0, len(p.Controllers)+len(p.Services))
	all = append(all, p.Controllers...)
	return append(all, p.Services...)
}

// ComponentMetadata describes one annotated struct.
type ComponentMetadata struct {
	StructName string
	Name       string // explicit registry name of a service
	BasePath   string // path prefix of a controller
	Implements []CapabilityRef
	Injections []InjectionMetadata
	Routes     []RouteMetadata
	Location   errors.SourceLocation
}

// CapabilityRef is an interface named in -Implements.
type CapabilityRef struct {
	Package    string // qualifier as written, empty for the local package
	ImportPath string // resolved from the file's imports
	TypeName   string
}

// Expr returns the Go expression naming the interface.
func (c CapabilityRef) Expr() string {
	if c.Package == "" {
		return c.TypeName
	}
	return c.Package + "." + c.TypeName
}

// InjectionMetadata is a field marked //relay::autowired.
type InjectionMetadata struct {
	FieldName string
	Name      string // explicit lookup name, empty for the field name
}

// RouteMetadata is a controller method marked //relay::route.
type RouteMetadata struct {
	HandlerName  string
	Path         string
	Params       []ParamMetadata // one entry per handler argument
	ReturnsError bool
	Location     errors.SourceLocation
}

// RequestNames returns the request parameter name bound to each argument
// position, "" where nothing is bound.
func (r RouteMetadata) RequestNames() []string {
	names := make([]string, len(r.Params))
	for i, p := range r.Params {
		if !p.Reserved {
			names[i] = p.RequestName
		}
	}
	return names
}

// ParamMetadata is one handler argument.
type ParamMetadata struct {
	GoName      string
	Type        string
	RequestName string
	// Reserved marks the request and response arguments.
	Reserved bool
}
