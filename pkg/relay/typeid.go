package relay

import (
	"reflect"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

// typeIDCache memoizes TypeID results by reflect.Type.
var typeIDCache sync.Map // key: reflect.Type, val: string

// TypeID returns the qualified identifier of t in the form "import/path.Name".
// Pointers are unwrapped. Unnamed and predeclared types return their string form.
func TypeID(t reflect.Type) string {
	if t == nil {
		return ""
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if v, ok := typeIDCache.Load(t); ok {
		return v.(string)
	}

	id := t.String()
	if name := t.Name(); name != "" && t.PkgPath() != "" {
		id = t.PkgPath() + "." + name
	}
	typeIDCache.Store(t, id)
	return id
}

// TypeIDOf returns the qualified identifier of T.
func TypeIDOf[T any]() string {
	return TypeID(reflect.TypeFor[T]())
}

// SplitTypeID splits a qualified identifier into its package path and type name.
func SplitTypeID(id string) (pkgPath, name string) {
	slash := strings.LastIndexByte(id, '/')
	dot := strings.IndexByte(id[slash+1:], '.')
	if dot < 0 {
		return "", id
	}
	dot += slash + 1
	return id[:dot], id[dot+1:]
}

// simpleName returns the type name without generic instantiation arguments.
func simpleName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	name := t.Name()
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	return name
}

// lowerFirst lower-cases the first rune of s.
func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || unicode.IsLower(r) {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

// DerivedName returns the registry name derived from a type: its simple name
// with the first character lower-cased.
func DerivedName(t reflect.Type) string {
	return lowerFirst(simpleName(t))
}
