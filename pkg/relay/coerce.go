package relay

import (
	"encoding"
	"fmt"
	"reflect"
	"strconv"
)

var (
	stringType          = reflect.TypeFor[string]()
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
)

// Coerce converts a raw request value to t. A parser registered in
// DefaultParsers wins. Otherwise integral kinds parse as base-10 integers
// and string kinds take the text unchanged.
func Coerce(raw string, t reflect.Type) (reflect.Value, error) {
	if parse, ok := DefaultParsers.Lookup(t); ok {
		return parse(raw)
	}
	if t.Kind() == reflect.Pointer {
		elem, err := Coerce(raw, t.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		ptr := reflect.New(t.Elem())
		ptr.Elem().Set(elem)
		return ptr, nil
	}

	v := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.String:
		v.SetString(raw)
		return v, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, t.Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		v.SetInt(n)
		return v, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, t.Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		v.SetUint(n)
		return v, nil
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, t.Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		v.SetFloat(f)
		return v, nil
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return reflect.Value{}, err
		}
		v.SetBool(b)
		return v, nil
	}

	if reflect.PointerTo(t).Implements(textUnmarshalerType) {
		if err := v.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(raw)); err != nil {
			return reflect.Value{}, err
		}
		return v, nil
	}
	if stringType.AssignableTo(t) {
		return reflect.ValueOf(raw), nil
	}
	return reflect.Value{}, fmt.Errorf("unsupported parameter type %s", t)
}
