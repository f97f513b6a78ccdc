package convert

import (
	"reflect"

	"github.com/teranos/typeshape/errors"
	"github.com/teranos/typeshape/host"
)

// nullableProvider unwraps and wraps nullable layers: pointers, the
// host.Optional marker and interface values, whose dynamic type is only
// known per value.
type nullableProvider struct{}

func (nullableProvider) Name() string { return "nullable" }

func (p nullableProvider) Converter(from, to reflect.Type, lookup Lookup) (Converter, bool) {
	switch {
	case from.Kind() == reflect.Interface:
		return p.dynamic(to, lookup), true
	case from.Kind() == reflect.Pointer && to.Kind() == reflect.Pointer:
		inner, ok := lookup(from.Elem(), to.Elem())
		if !ok {
			return nil, false
		}
		return wrap(unwrap(inner, to.Elem()), to.Elem()), true
	case from.Kind() == reflect.Pointer:
		inner, ok := lookup(from.Elem(), to)
		if !ok {
			return nil, false
		}
		return unwrap(inner, to), true
	case to.Kind() == reflect.Pointer:
		inner, ok := lookup(from, to.Elem())
		if !ok {
			return nil, false
		}
		return wrap(inner, to.Elem()), true
	case host.Classify(from).Class == host.ClassOptional:
		return p.optional(from, to, lookup)
	}
	return nil, false
}

// unwrap dereferences the source pointer; nil converts to the zero value.
func unwrap(inner Converter, to reflect.Type) Converter {
	return func(v any) (any, error) {
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Pointer {
			if rv.IsNil() {
				return reflect.Zero(to).Interface(), nil
			}
			v = rv.Elem().Interface()
		}
		return inner(v)
	}
}

// wrap converts to the element type and returns a pointer to the result.
func wrap(inner Converter, elem reflect.Type) Converter {
	return func(v any) (any, error) {
		out, err := inner(v)
		if err != nil {
			return nil, err
		}
		ptr := reflect.New(elem)
		if out != nil {
			rv := reflect.ValueOf(out)
			if !rv.Type().AssignableTo(elem) {
				if !rv.Type().ConvertibleTo(elem) {
					return nil, errors.Newf("converter returned %s, want %s", rv.Type(), elem)
				}
				rv = rv.Convert(elem)
			}
			ptr.Elem().Set(rv)
		}
		return ptr.Interface(), nil
	}
}

// dynamic resolves a converter per value from its dynamic type.
func (nullableProvider) dynamic(to reflect.Type, lookup Lookup) Converter {
	return func(v any) (any, error) {
		if v == nil {
			return reflect.Zero(to).Interface(), nil
		}
		from := reflect.TypeOf(v)
		if from.AssignableTo(to) {
			return v, nil
		}
		conv, ok := lookup(from, to)
		if !ok {
			return nil, newConversionError(from, to, nil)
		}
		return conv(v)
	}
}

// optional unwraps host.Optional[T] through its Get method; an absent value
// converts to the zero value.
func (nullableProvider) optional(from, to reflect.Type, lookup Lookup) (Converter, bool) {
	elem := host.Classify(from).Elem
	inner, ok := lookup(elem, to)
	if !ok {
		return nil, false
	}
	get, ok := from.MethodByName("Get")
	if !ok || get.Type.NumOut() != 2 {
		return nil, false
	}
	return func(v any) (any, error) {
		out := get.Func.Call([]reflect.Value{reflect.ValueOf(v)})
		if !out[1].Bool() {
			return reflect.Zero(to).Interface(), nil
		}
		value := out[0].Interface()
		if isNil(value) {
			return reflect.Zero(to).Interface(), nil
		}
		return inner(value)
	}, true
}
