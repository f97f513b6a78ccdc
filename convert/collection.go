package convert

import (
	"reflect"

	"github.com/teranos/typeshape/errors"
	"github.com/teranos/typeshape/host"
)

// collectionProvider converts arrays, slices and maps element-wise. Byte
// slices are scalars and are left to other providers.
type collectionProvider struct{}

func (collectionProvider) Name() string { return "collection" }

func (p collectionProvider) Converter(from, to reflect.Type, lookup Lookup) (Converter, bool) {
	switch {
	case isSequence(from) && isSequence(to):
		return p.sequence(from, to, lookup)
	case from.Kind() == reflect.Map && to.Kind() == reflect.Map:
		return p.dictionary(from, to, lookup)
	}
	return nil, false
}

func isSequence(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Slice:
		_, ok := host.ListElem(t)
		return ok
	case reflect.Array:
		return true
	}
	return false
}

func (collectionProvider) sequence(from, to reflect.Type, lookup Lookup) (Converter, bool) {
	elem, ok := lookup(from.Elem(), to.Elem())
	if !ok {
		return nil, false
	}
	return func(v any) (any, error) {
		src := reflect.ValueOf(v)
		n := src.Len()

		var dst reflect.Value
		if to.Kind() == reflect.Array {
			if n > to.Len() {
				return nil, errors.Newf("%d elements do not fit in %s", n, to)
			}
			dst = reflect.New(to).Elem()
		} else {
			if src.Kind() == reflect.Slice && src.IsNil() {
				return reflect.Zero(to).Interface(), nil
			}
			dst = reflect.MakeSlice(to, n, n)
		}

		for i := 0; i < n; i++ {
			out, err := convertElem(elem, src.Index(i), to.Elem())
			if err != nil {
				return nil, errors.Wrapf(err, "element %d", i)
			}
			dst.Index(i).Set(out)
		}
		return dst.Interface(), nil
	}, true
}

func (collectionProvider) dictionary(from, to reflect.Type, lookup Lookup) (Converter, bool) {
	key, ok := lookup(from.Key(), to.Key())
	if !ok {
		return nil, false
	}
	value, ok := lookup(from.Elem(), to.Elem())
	if !ok {
		return nil, false
	}
	return func(v any) (any, error) {
		src := reflect.ValueOf(v)
		if src.IsNil() {
			return reflect.Zero(to).Interface(), nil
		}
		dst := reflect.MakeMapWithSize(to, src.Len())
		iter := src.MapRange()
		for iter.Next() {
			k, err := convertElem(key, iter.Key(), to.Key())
			if err != nil {
				return nil, errors.Wrapf(err, "key %v", iter.Key().Interface())
			}
			val, err := convertElem(value, iter.Value(), to.Elem())
			if err != nil {
				return nil, errors.Wrapf(err, "value of key %v", iter.Key().Interface())
			}
			dst.SetMapIndex(k, val)
		}
		return dst.Interface(), nil
	}, true
}

// convertElem applies conv to one element. Nil elements become the zero
// value of the target element type.
func convertElem(conv Converter, src reflect.Value, to reflect.Type) (reflect.Value, error) {
	if !src.IsValid() {
		return reflect.Zero(to), nil
	}
	v := src.Interface()
	if isNil(v) {
		return reflect.Zero(to), nil
	}
	out, err := conv(v)
	if err != nil {
		return reflect.Value{}, err
	}
	if out == nil {
		return reflect.Zero(to), nil
	}
	rv := reflect.ValueOf(out)
	if !rv.Type().AssignableTo(to) {
		if rv.Type().ConvertibleTo(to) {
			return rv.Convert(to), nil
		}
		return reflect.Value{}, errors.Newf("converter returned %s, want %s", rv.Type(), to)
	}
	return rv, nil
}
