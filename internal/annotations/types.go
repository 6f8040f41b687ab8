package annotations

import (
	"fmt"
	"strings"

	"github.com/toyz/relay/internal/errors"
)

// Prefix introduces every relay annotation comment.
const Prefix = "relay::"

// Kind is the annotation keyword following the prefix.
type Kind int

const (
	UnknownKind Kind = iota
	ControllerKind
	ServiceKind
	RouteKind
	AutowiredKind
)

// String returns the keyword for the kind
func (k Kind) String() string {
	switch k {
	case ControllerKind:
		return "controller"
	case ServiceKind:
		return "service"
	case RouteKind:
		return "route"
	case AutowiredKind:
		return "autowired"
	default:
		return "unknown"
	}
}

// ParseKind converts a keyword to a Kind
func ParseKind(s string) (Kind, error) {
	switch s {
	case "controller":
		return ControllerKind, nil
	case "service":
		return ServiceKind, nil
	case "route":
		return RouteKind, nil
	case "autowired":
		return AutowiredKind, nil
	default:
		return UnknownKind, fmt.Errorf("unknown annotation kind: %s", s)
	}
}

// Annotation is a parsed //relay:: comment.
type Annotation struct {
	Kind     Kind
	Args     []string
	Options  map[string]string
	Location errors.SourceLocation
	Raw      string
}

// Arg returns the i-th positional argument or "".
func (a *Annotation) Arg(i int) string {
	if i < 0 || i >= len(a.Args) {
		return ""
	}
	return a.Args[i]
}

// Option returns the value of a named option.
func (a *Annotation) Option(name string) (string, bool) {
	v, ok := a.Options[name]
	return v, ok
}

// List splits a comma separated option into its trimmed, non-empty items.
func (a *Annotation) List(name string) []string {
	v, ok := a.Options[name]
	if !ok {
		return nil
	}
	var items []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// ParamBinding maps a handler parameter to the request parameter it reads.
type ParamBinding struct {
	GoName      string
	RequestName string
}

// Params decodes the -Params option of a route annotation. Each item is
// either goName:requestName or a bare name used for both.
func (a *Annotation) Params() []ParamBinding {
	items := a.List("Params")
	bindings := make([]ParamBinding, 0, len(items))
	for _, item := range items {
		goName, reqName, found := strings.Cut(item, ":")
		if !found {
			reqName = goName
		}
		bindings = append(bindings, ParamBinding{GoName: goName, RequestName: reqName})
	}
	return bindings
}
