package relay

import (
	"fmt"
	"log/slog"
	"reflect"
	"regexp"
)

var (
	slashRuns = regexp.MustCompile(`/+`)
	errorType = reflect.TypeFor[error]()
)

// CleanPath collapses every run of slashes in p into one.
func CleanPath(p string) string {
	return slashRuns.ReplaceAllString(p, "/")
}

// RouteDescriptor binds a compiled path pattern to a controller method.
type RouteDescriptor struct {
	Path       string
	Pattern    *regexp.Regexp
	Owner      any
	Component  *Component
	Handler    string
	ParamIndex map[string]int

	method       reflect.Value
	paramTypes   []reflect.Type
	returnsError bool
}

// ParamCount returns the number of arguments the bound method takes.
func (r *RouteDescriptor) ParamCount() int {
	return len(r.paramTypes)
}

// ParamType returns the declared type of argument i.
func (r *RouteDescriptor) ParamType(i int) reflect.Type {
	return r.paramTypes[i]
}

// String renders the route as "pattern -> Type.Method".
func (r *RouteDescriptor) String() string {
	return fmt.Sprintf("%s -> %s.%s", r.Pattern, simpleName(r.Component.Type), r.Handler)
}

// RouteTable is the ordered list of routes. Order decides dispatch: the first
// matching pattern wins.
type RouteTable struct {
	routes []*RouteDescriptor
}

// Routes returns the routes in table order.
func (t *RouteTable) Routes() []*RouteDescriptor {
	out := make([]*RouteDescriptor, len(t.routes))
	copy(out, t.routes)
	return out
}

// Len returns the number of routes.
func (t *RouteTable) Len() int {
	return len(t.routes)
}

// Match returns the first route whose pattern matches path in full.
func (t *RouteTable) Match(path string) (*RouteDescriptor, error) {
	for _, r := range t.routes {
		if r.Pattern.MatchString(path) {
			return r, nil
		}
	}
	return nil, ErrNoRoute
}

// BuildRoutes builds the route table from the controllers in c, in registry
// order. It fails only when a path does not compile.
func BuildRoutes(c *Container, logger *slog.Logger) (*RouteTable, error) {
	logger = loggerOrDefault(logger)
	table := &RouteTable{}
	seen := make(map[any]bool)

	for _, entry := range c.entries {
		comp := entry.Component
		if comp == nil || comp.Stereotype != Controller || seen[entry.Instance] {
			continue
		}
		seen[entry.Instance] = true

		owner := reflect.ValueOf(entry.Instance)
		for _, binding := range comp.Routes {
			method := owner.MethodByName(binding.Handler)
			if !method.IsValid() {
				logger.Error("route handler not found", "type", comp.ID, "method", binding.Handler)
				continue
			}

			path := CleanPath(comp.BasePath + binding.Path)
			pattern, err := regexp.Compile("^(?:" + path + ")$")
			if err != nil {
				return nil, fmt.Errorf("route %s on %s.%s: %w", path, comp.ID, binding.Handler, err)
			}

			route := &RouteDescriptor{
				Path:      path,
				Pattern:   pattern,
				Owner:     entry.Instance,
				Component: comp,
				Handler:   binding.Handler,
				method:    method,
			}
			route.paramTypes, route.returnsError = signature(method.Type())
			route.ParamIndex = paramIndexMapping(binding.Params, route.paramTypes)

			for _, key := range []string{RequestKey, ResponseKey} {
				if _, ok := route.ParamIndex[key]; !ok {
					logger.Warn("route handler lacks a reserved argument", "route", path, "method", binding.Handler, "missing", key)
				}
			}
			if len(binding.Params) > len(route.paramTypes) {
				logger.Warn("route declares more parameter names than arguments",
					"route", path, "method", binding.Handler, "names", len(binding.Params), "arguments", len(route.paramTypes))
			}

			table.routes = append(table.routes, route)
			logger.Info("Mapping: " + route.String())
		}
	}
	return table, nil
}

func signature(t reflect.Type) ([]reflect.Type, bool) {
	params := make([]reflect.Type, t.NumIn())
	for i := range params {
		params[i] = t.In(i)
	}
	returnsError := t.NumOut() > 0 && t.Out(t.NumOut()-1) == errorType
	return params, returnsError
}

// paramIndexMapping records explicit parameter names first, then the
// request and response positions under the reserved keys without
// overwriting existing entries.
func paramIndexMapping(names []string, params []reflect.Type) map[string]int {
	mapping := make(map[string]int)
	for i, name := range names {
		if name == "" || i >= len(params) {
			continue
		}
		mapping[name] = i
	}
	for i, t := range params {
		var key string
		switch t {
		case requestType:
			key = RequestKey
		case responseType:
			key = ResponseKey
		default:
			continue
		}
		if _, exists := mapping[key]; !exists {
			mapping[key] = i
		}
	}
	return mapping
}
