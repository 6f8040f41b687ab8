package relay

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrParserExists is returned when a type already has a parser.
var ErrParserExists = errors.New("parser already registered")

// ParseFunc converts a raw request value to a value of its registered type.
type ParseFunc func(raw string) (reflect.Value, error)

// ParserRegistry maps parameter types to the functions that parse them.
// Coerce consults it before the built-in kind conversions.
type ParserRegistry struct {
	mu      sync.RWMutex
	parsers map[reflect.Type]ParseFunc
}

// NewParserRegistry creates a registry holding the built-in parsers.
func NewParserRegistry() *ParserRegistry {
	r := &ParserRegistry{parsers: make(map[reflect.Type]ParseFunc)}
	r.parsers[reflect.TypeFor[uuid.UUID]()] = typedParser(uuid.Parse)
	r.parsers[reflect.TypeFor[time.Duration]()] = typedParser(time.ParseDuration)
	return r
}

// DefaultParsers is the registry Coerce uses.
var DefaultParsers = NewParserRegistry()

// Register adds fn as the parser of t.
func (r *ParserRegistry) Register(t reflect.Type, fn ParseFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.parsers[t]; ok {
		return fmt.Errorf("%w: %s", ErrParserExists, TypeID(t))
	}
	r.parsers[t] = fn
	return nil
}

// Lookup returns the parser of t.
func (r *ParserRegistry) Lookup(t reflect.Type) (ParseFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.parsers[t]
	return fn, ok
}

// Types returns the ids of the types with a parser, sorted.
func (r *ParserRegistry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.parsers))
	for t := range r.parsers {
		ids = append(ids, TypeID(t))
	}
	sort.Strings(ids)
	return ids
}

// RegisterParser registers fn in DefaultParsers as the parser of T.
func RegisterParser[T any](fn func(raw string) (T, error)) error {
	return DefaultParsers.Register(reflect.TypeFor[T](), typedParser(fn))
}

func typedParser[T any](fn func(string) (T, error)) ParseFunc {
	return func(raw string) (reflect.Value, error) {
		v, err := fn(raw)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(&v).Elem(), nil
	}
}
