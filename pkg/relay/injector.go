package relay

import (
	"log/slog"
	"reflect"
	"unsafe"
)

// AutowiredTag is the struct tag marking an injection point. Its value is
// an optional explicit lookup name.
const AutowiredTag = "autowired"

// Inject resolves the injection points of every distinct instance in c.
// A point whose name is not in the registry, or whose value does not fit
// the field, is left unset.
func Inject(c *Container, logger *slog.Logger) {
	logger = loggerOrDefault(logger)
	seen := make(map[any]bool)
	for _, entry := range c.entries {
		if seen[entry.Instance] {
			continue
		}
		seen[entry.Instance] = true
		injectInstance(c, entry, logger)
	}
}

func injectInstance(c *Container, entry Entry, logger *slog.Logger) {
	v := reflect.ValueOf(entry.Instance)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return
	}
	v = v.Elem()

	for _, point := range injectionPoints(v.Type(), entry.Component) {
		field := v.FieldByName(point.Field)
		if !field.IsValid() {
			logger.Warn("injection point names unknown field", "type", v.Type().String(), "field", point.Field)
			continue
		}

		dep, name, ok := lookupDependency(c, point, field.Type())
		if !ok {
			logger.Warn("dependency not found, field left unset",
				"type", v.Type().String(), "field", point.Field, "name", lookupName(point))
			continue
		}
		depValue := reflect.ValueOf(dep)
		if !depValue.Type().AssignableTo(field.Type()) {
			logger.Warn("dependency type does not fit field, field left unset",
				"type", v.Type().String(), "field", point.Field, "name", name,
				"dependency", depValue.Type().String(), "want", field.Type().String())
			continue
		}

		settable(field).Set(depValue)
		logger.Debug("injected dependency", "type", v.Type().String(), "field", point.Field, "name", name)
	}
}

// injectionPoints returns the tagged fields of t followed by the points
// declared on the component that are not tagged.
func injectionPoints(t reflect.Type, comp *Component) []Injection {
	var points []Injection
	tagged := make(map[string]bool)
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name, ok := f.Tag.Lookup(AutowiredTag)
		if !ok {
			continue
		}
		tagged[f.Name] = true
		points = append(points, Injection{Field: f.Name, Name: name})
	}
	if comp != nil {
		for _, p := range comp.Injections {
			if !tagged[p.Field] {
				tagged[p.Field] = true
				points = append(points, p)
			}
		}
	}
	return points
}

func lookupName(p Injection) string {
	if p.Name != "" {
		return p.Name
	}
	return p.Field
}

// lookupDependency tries the explicit name, then the field name, its
// lower-camel form and finally the qualified id of the field type.
func lookupDependency(c *Container, p Injection, fieldType reflect.Type) (any, string, bool) {
	if p.Name != "" {
		dep, ok := c.Get(p.Name)
		return dep, p.Name, ok
	}
	for _, name := range []string{p.Field, lowerFirst(p.Field), TypeID(fieldType)} {
		if dep, ok := c.Get(name); ok {
			return dep, name, true
		}
	}
	return nil, p.Field, false
}

// settable returns a settable view of field, including unexported fields of
// an addressable struct.
func settable(field reflect.Value) reflect.Value {
	if field.CanSet() {
		return field
	}
	return reflect.NewAt(field.Type(), unsafe.Pointer(field.UnsafeAddr())).Elem()
}
