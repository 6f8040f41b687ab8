// Package templates holds the text templates of generated files.
package templates

import (
	"bytes"
	"fmt"
	"strconv"
	"text/template"

	"github.com/toyz/relay/internal/models"
)

// GeneratedHeader marks files written by the generator. The cleaner only
// removes files carrying it.
const GeneratedHeader = "// Code generated by relay. DO NOT EDIT."

// TemplateRegistry provides a centralized way to access all templates
type TemplateRegistry struct {
	templates map[string]string
	funcs     template.FuncMap
}

// NewTemplateRegistry creates a new template registry with all templates
func NewTemplateRegistry() *TemplateRegistry {
	tr := &TemplateRegistry{
		templates: make(map[string]string),
		funcs: template.FuncMap{
			"quote":             strconv.Quote,
			"controllerOptions": ControllerOptions,
			"serviceOptions":    ServiceOptions,
			"imports":           importBlock,
		},
	}
	tr.registerComponentTemplates()
	return tr
}

// Get retrieves a template by name
func (tr *TemplateRegistry) Get(name string) (string, bool) {
	t, ok := tr.templates[name]
	return t, ok
}

// MustGet retrieves a template by name, panics if not found
func (tr *TemplateRegistry) MustGet(name string) string {
	t, ok := tr.templates[name]
	if !ok {
		panic("template not found: " + name)
	}
	return t
}

// Execute renders the named template with data.
func (tr *TemplateRegistry) Execute(name string, data any) (string, error) {
	src, ok := tr.templates[name]
	if !ok {
		return "", fmt.Errorf("template not found: %s", name)
	}
	tmpl, err := template.New(name).Funcs(tr.funcs).Parse(src)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return buf.String(), nil
}

func (tr *TemplateRegistry) registerComponentTemplates() {
	tr.templates["components"] = GeneratedHeader + `

package {{.PackageName}}

{{imports .}}
func init() {
	RegisterComponents(relay.DefaultCatalog)
}

// RegisterComponents adds the components declared in this package to catalog.
func RegisterComponents(catalog *relay.Catalog) {
{{- range .Controllers}}
{{- $opts := controllerOptions .}}
	catalog.MustAdd(relay.ControllerOf[{{.StructName}}]({{if $opts}}{{range $opts}}
		{{.}},{{end}}
	{{end}}))
{{- end}}
{{- range .Services}}
{{- $opts := serviceOptions .}}
	catalog.MustAdd(relay.ServiceOf[{{.StructName}}]({{if $opts}}{{range $opts}}
		{{.}},{{end}}
	{{end}}))
{{- end}}
}
`
}

// ControllerOptions returns the relay.ComponentOption expressions of c.
func ControllerOptions(c models.ComponentMetadata) []string {
	var opts []string
	if c.BasePath != "" {
		opts = append(opts, "relay.BasePath("+strconv.Quote(c.BasePath)+")")
	}
	for _, r := range c.Routes {
		opts = append(opts, handleExpr(r))
	}
	return append(opts, injectExprs(c)...)
}

// ServiceOptions returns the relay.ComponentOption expressions of c.
func ServiceOptions(c models.ComponentMetadata) []string {
	var opts []string
	if c.Name != "" {
		opts = append(opts, "relay.Named("+strconv.Quote(c.Name)+")")
	}
	if len(c.Implements) > 0 {
		expr := "relay.Implements("
		for i, capability := range c.Implements {
			if i > 0 {
				expr += ", "
			}
			expr += "relay.CapabilityOf[" + capability.Expr() + "]()"
		}
		opts = append(opts, expr+")")
	}
	return append(opts, injectExprs(c)...)
}

func handleExpr(r models.RouteMetadata) string {
	expr := "relay.Handle(" + strconv.Quote(r.HandlerName) + ", " + strconv.Quote(r.Path)
	names := r.RequestNames()
	// trailing unbound positions are implied
	for len(names) > 0 && names[len(names)-1] == "" {
		names = names[:len(names)-1]
	}
	for _, n := range names {
		expr += ", " + strconv.Quote(n)
	}
	return expr + ")"
}

func injectExprs(c models.ComponentMetadata) []string {
	exprs := make([]string, 0, len(c.Injections))
	for _, inj := range c.Injections {
		exprs = append(exprs, "relay.Inject("+strconv.Quote(inj.FieldName)+", "+strconv.Quote(inj.Name)+")")
	}
	return exprs
}
