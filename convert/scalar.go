package convert

import (
	"reflect"
	"time"

	"github.com/spf13/cast"
	"github.com/teranos/typeshape/errors"
)

var (
	timeType     = reflect.TypeFor[time.Time]()
	durationType = reflect.TypeFor[time.Duration]()
)

var basicTypes = map[reflect.Kind]reflect.Type{
	reflect.Bool:    reflect.TypeFor[bool](),
	reflect.Int:     reflect.TypeFor[int](),
	reflect.Int8:    reflect.TypeFor[int8](),
	reflect.Int16:   reflect.TypeFor[int16](),
	reflect.Int32:   reflect.TypeFor[int32](),
	reflect.Int64:   reflect.TypeFor[int64](),
	reflect.Uint:    reflect.TypeFor[uint](),
	reflect.Uint8:   reflect.TypeFor[uint8](),
	reflect.Uint16:  reflect.TypeFor[uint16](),
	reflect.Uint32:  reflect.TypeFor[uint32](),
	reflect.Uint64:  reflect.TypeFor[uint64](),
	reflect.Float32: reflect.TypeFor[float32](),
	reflect.Float64: reflect.TypeFor[float64](),
	reflect.String:  reflect.TypeFor[string](),
}

func isScalar(t reflect.Type) bool {
	if t == timeType || t == durationType {
		return true
	}
	_, ok := basicTypes[t.Kind()]
	return ok
}

// scalarProvider coerces between strings, numbers, booleans, durations and
// times, including named types over those kinds.
type scalarProvider struct{}

func (scalarProvider) Name() string { return "scalar" }

func (scalarProvider) Converter(from, to reflect.Type, _ Lookup) (Converter, bool) {
	if !isScalar(from) || !isScalar(to) {
		return nil, false
	}
	return func(v any) (any, error) {
		return coerce(normalize(v, from), to)
	}, true
}

// normalize converts named scalar types to their predeclared kind so cast
// recognises them.
func normalize(v any, from reflect.Type) any {
	if from == timeType || from == durationType {
		return v
	}
	basic := basicTypes[from.Kind()]
	if from == basic {
		return v
	}
	return reflect.ValueOf(v).Convert(basic).Interface()
}

func coerce(v any, to reflect.Type) (any, error) {
	switch to {
	case durationType:
		return cast.ToDurationE(v)
	case timeType:
		return cast.ToTimeE(v)
	}

	out := reflect.New(to).Elem()
	switch to.Kind() {
	case reflect.String:
		s, err := cast.ToStringE(v)
		if err != nil {
			return nil, err
		}
		out.SetString(s)
	case reflect.Bool:
		b, err := cast.ToBoolE(v)
		if err != nil {
			return nil, err
		}
		out.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := cast.ToInt64E(v)
		if err != nil {
			return nil, err
		}
		if out.OverflowInt(i) {
			return nil, errors.Newf("%d overflows %s", i, to)
		}
		out.SetInt(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := cast.ToUint64E(v)
		if err != nil {
			return nil, err
		}
		if out.OverflowUint(u) {
			return nil, errors.Newf("%d overflows %s", u, to)
		}
		out.SetUint(u)
	case reflect.Float32, reflect.Float64:
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return nil, err
		}
		if out.OverflowFloat(f) {
			return nil, errors.Newf("%g overflows %s", f, to)
		}
		out.SetFloat(f)
	default:
		return nil, errors.Newf("%s is not a scalar", to)
	}
	return out.Interface(), nil
}
