package relay

import (
	"fmt"
	"reflect"
)

// Stereotype marks the role a component plays in the container.
type Stereotype int

const (
	// None marks a type the container ignores.
	None Stereotype = iota
	// Controller marks a type that is registered and eligible for route building.
	Controller
	// Service marks a type that is registered under its name and its capabilities.
	Service
)

// String returns the stereotype name.
func (s Stereotype) String() string {
	switch s {
	case Controller:
		return "controller"
	case Service:
		return "service"
	default:
		return "none"
	}
}

// Capability is an interface a service declares it implements. Services are
// additionally indexed in the container under the capability's Tag.
type Capability struct {
	Tag  string
	Type reflect.Type
}

// CapabilityOf returns the capability for interface type I.
// It panics if I is not an interface type.
func CapabilityOf[I any]() Capability {
	t := reflect.TypeFor[I]()
	if t.Kind() != reflect.Interface {
		panic(fmt.Sprintf("relay: capability %s is not an interface", t))
	}
	return Capability{Tag: TypeID(t), Type: t}
}

// Route binds a handler method of a controller to a path.
type Route struct {
	// Handler is the exported method name.
	Handler string
	// Path is appended to the controller base path.
	Path string
	// Params holds the request parameter name bound to each argument
	// position. An empty entry leaves that position unbound.
	Params []string
}

// Injection names a field to be resolved from the container.
type Injection struct {
	Field string
	// Name overrides the lookup name. Empty means the field name.
	Name string
}

// Component describes a type to the container. It is built once at
// registration time, by generated code or by hand.
type Component struct {
	ID           string
	Type         reflect.Type
	Stereotype   Stereotype
	Name         string
	BasePath     string
	Capabilities []Capability
	Injections   []Injection
	Routes       []Route
	New          func() (any, error)
}

// ComponentOption configures a Component.
type ComponentOption func(*Component)

// ControllerOf describes T as a controller.
func ControllerOf[T any](opts ...ComponentOption) *Component {
	return newComponent(reflect.TypeFor[T](), Controller, opts)
}

// ServiceOf describes T as a service.
func ServiceOf[T any](opts ...ComponentOption) *Component {
	return newComponent(reflect.TypeFor[T](), Service, opts)
}

// Describe builds a component for t with an explicit stereotype.
func Describe(t reflect.Type, stereotype Stereotype, opts ...ComponentOption) *Component {
	return newComponent(t, stereotype, opts)
}

func newComponent(t reflect.Type, stereotype Stereotype, opts []ComponentOption) *Component {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	c := &Component{
		ID:         TypeID(t),
		Type:       t,
		Stereotype: stereotype,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Named sets the explicit registry name of a service.
func Named(name string) ComponentOption {
	return func(c *Component) { c.Name = name }
}

// BasePath sets the path prefix shared by all routes of a controller.
func BasePath(path string) ComponentOption {
	return func(c *Component) { c.BasePath = path }
}

// Implements declares capabilities a service is indexed under.
func Implements(caps ...Capability) ComponentOption {
	return func(c *Component) { c.Capabilities = append(c.Capabilities, caps...) }
}

// Handle binds method to path. params names the request parameter bound to
// each argument position; use "" for the request, the response and any
// argument left unbound.
func Handle(method, path string, params ...string) ComponentOption {
	return func(c *Component) {
		c.Routes = append(c.Routes, Route{Handler: method, Path: path, Params: params})
	}
}

// Inject declares field as an injection point resolved by name, or by the
// field name when name is empty.
func Inject(field, name string) ComponentOption {
	return func(c *Component) {
		c.Injections = append(c.Injections, Injection{Field: field, Name: name})
	}
}

// Factory replaces the default zero-value constructor. fn must return a
// pointer to the component type.
func Factory(fn func() (any, error)) ComponentOption {
	return func(c *Component) { c.New = fn }
}

// instantiate creates a new instance of the component.
func (c *Component) instantiate() (inst any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("constructor panicked: %v", r)
		}
	}()

	if c.New == nil {
		return reflect.New(c.Type).Interface(), nil
	}
	inst, err = c.New()
	if err != nil {
		return nil, err
	}
	if got, want := reflect.TypeOf(inst), reflect.PointerTo(c.Type); got != want {
		return nil, fmt.Errorf("constructor returned %v, want %v", got, want)
	}
	return inst, nil
}
