package annotations

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/toyz/relay/internal/errors"
)

// OptionSpec describes one -Option of an annotation.
type OptionSpec struct {
	Required    bool
	Description string
	Validator   func(string) error
}

// Schema describes the accepted shape of one annotation kind.
type Schema struct {
	Kind          Kind
	Description   string
	MinArgs       int
	MaxArgs       int
	ArgValidators []func(string) error
	Options       map[string]OptionSpec
	Examples      []string
}

// ControllerSchema describes //relay::controller.
var ControllerSchema = Schema{
	Kind:        ControllerKind,
	Description: "Marks a struct as a controller",
	Options: map[string]OptionSpec{
		"Path": {
			Description: "Base path prepended to every route of the controller",
			Validator:   ValidateURLPath,
		},
	},
	Examples: []string{
		"//relay::controller",
		"//relay::controller -Path=/user",
	},
}

// ServiceSchema describes //relay::service.
var ServiceSchema = Schema{
	Kind:        ServiceKind,
	Description: "Marks a struct as a service",
	Options: map[string]OptionSpec{
		"Name": {
			Description: "Registry name, defaults to the type name with a lowercase first letter",
			Validator:   ValidateName,
		},
		"Implements": {
			Description: "Capabilities the service is registered under",
			Validator:   ValidateTypeList,
		},
	},
	Examples: []string{
		"//relay::service",
		"//relay::service -Name=userService -Implements=UserService",
	},
}

// RouteSchema describes //relay::route.
var RouteSchema = Schema{
	Kind:          RouteKind,
	Description:   "Binds a controller method to a path",
	MinArgs:       1,
	MaxArgs:       1,
	ArgValidators: []func(string) error{ValidateURLPath},
	Options: map[string]OptionSpec{
		"Params": {
			Description: "Request parameter names for the handler parameters",
			Validator:   ValidateParamList,
		},
	},
	Examples: []string{
		"//relay::route /getUserById -Params=id",
		"//relay::route /add -Params=a:left,b:right",
	},
}

// AutowiredSchema describes //relay::autowired on struct fields.
var AutowiredSchema = Schema{
	Kind:          AutowiredKind,
	Description:   "Marks a field for injection",
	MaxArgs:       1,
	ArgValidators: []func(string) error{ValidateName},
	Examples: []string{
		"//relay::autowired",
		"//relay::autowired userService",
	},
}

// Registry holds the schema for each annotation kind.
type Registry struct {
	schemas map[Kind]Schema
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{schemas: make(map[Kind]Schema)}
}

// DefaultRegistry returns a registry holding the built-in schemas.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, s := range []Schema{ControllerSchema, ServiceSchema, RouteSchema, AutowiredSchema} {
		r.Register(s)
	}
	return r
}

// Register adds or replaces the schema for s.Kind.
func (r *Registry) Register(s Schema) {
	r.schemas[s.Kind] = s
}

// Lookup returns the schema for kind.
func (r *Registry) Lookup(kind Kind) (Schema, bool) {
	s, ok := r.schemas[kind]
	return s, ok
}

// Validate checks a against its schema.
func (r *Registry) Validate(a *Annotation) error {
	s, ok := r.schemas[a.Kind]
	if !ok {
		return errors.NewValidationError("kind", fmt.Sprintf("no schema for annotation '%s'", a.Kind), a.Location)
	}

	if n := len(a.Args); n < s.MinArgs || n > s.MaxArgs {
		return s.invalid("args", fmt.Sprintf("'%s' takes %s, got %d", a.Kind, s.arity(), n), a)
	}
	for i, arg := range a.Args {
		if i < len(s.ArgValidators) && s.ArgValidators[i] != nil {
			if err := s.ArgValidators[i](arg); err != nil {
				return s.invalid("args", err.Error(), a)
			}
		}
	}

	for name, value := range a.Options {
		spec, ok := s.Options[name]
		if !ok {
			err := s.invalid(name, fmt.Sprintf("unknown option -%s for '%s'", name, a.Kind), a)
			err.WithSuggestions(s.optionHint())
			return err
		}
		if spec.Validator != nil {
			if err := spec.Validator(value); err != nil {
				return s.invalid(name, fmt.Sprintf("-%s: %v", name, err), a)
			}
		}
	}
	for name, spec := range s.Options {
		if _, ok := a.Options[name]; spec.Required && !ok {
			return s.invalid(name, fmt.Sprintf("'%s' requires -%s", a.Kind, name), a)
		}
	}
	return nil
}

func (s Schema) invalid(field, msg string, a *Annotation) *errors.ValidationError {
	err := errors.NewValidationError(field, msg, a.Location)
	if len(s.Examples) > 0 {
		err.WithSuggestions("example: " + s.Examples[len(s.Examples)-1])
	}
	return err
}

func (s Schema) arity() string {
	switch {
	case s.MinArgs == s.MaxArgs && s.MaxArgs == 0:
		return "no arguments"
	case s.MinArgs == s.MaxArgs:
		return fmt.Sprintf("exactly %d argument(s)", s.MinArgs)
	}
	return fmt.Sprintf("%d to %d argument(s)", s.MinArgs, s.MaxArgs)
}

func (s Schema) optionHint() string {
	if len(s.Options) == 0 {
		return fmt.Sprintf("'%s' takes no options", s.Kind)
	}
	names := make([]string, 0, len(s.Options))
	for name := range s.Options {
		names = append(names, "-"+name)
	}
	sort.Strings(names)
	return "valid options: " + strings.Join(names, ", ")
}

// Kinds returns the registered kinds in order.
func (r *Registry) Kinds() []Kind {
	kinds := make([]Kind, 0, len(r.schemas))
	for k := range r.schemas {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}
