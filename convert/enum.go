package convert

import (
	"encoding"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/teranos/typeshape/errors"
)

var (
	textMarshalerType   = reflect.TypeFor[encoding.TextMarshaler]()
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
)

// enumSet is the value set of one registered enum type.
type enumSet struct {
	byName  map[string]reflect.Value
	byValue map[any]string
	names   []string
}

type enumSets struct {
	mu   sync.RWMutex
	sets map[reflect.Type]*enumSet
}

func newEnumSets() *enumSets {
	return &enumSets{sets: make(map[reflect.Type]*enumSet)}
}

func (s *enumSets) get(t reflect.Type) (*enumSet, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set, ok := s.sets[t]
	return set, ok
}

// Enum is the constraint for registered enum types.
type Enum interface {
	comparable
	fmt.Stringer
}

// RegisterEnum registers the complete value set of an enum type. Names come
// from String(); lookups by name are case-insensitive after an exact match
// fails.
func RegisterEnum[E Enum](r *Registry, values ...E) {
	set := &enumSet{
		byName:  make(map[string]reflect.Value, len(values)),
		byValue: make(map[any]string, len(values)),
	}
	for _, v := range values {
		name := v.String()
		set.byName[name] = reflect.ValueOf(v)
		set.byValue[v] = name
		set.names = append(set.names, name)
	}

	t := reflect.TypeFor[E]()
	r.enums.mu.Lock()
	r.enums.sets[t] = set
	r.enums.mu.Unlock()
}

// EnumNames returns the registered names of enum type t in registration order.
func (r *Registry) EnumNames(t reflect.Type) []string {
	set, ok := r.enums.get(t)
	if !ok {
		return nil
	}
	return append([]string(nil), set.names...)
}

func (s *enumSet) lookup(name string) (reflect.Value, bool) {
	if v, ok := s.byName[name]; ok {
		return v, true
	}
	for _, n := range s.names {
		if strings.EqualFold(n, name) {
			return s.byName[n], true
		}
	}
	return reflect.Value{}, false
}

// enumProvider converts between strings and enum types: registered value
// sets first, then encoding.TextMarshaler and encoding.TextUnmarshaler.
type enumProvider struct {
	sets *enumSets
}

func (enumProvider) Name() string { return "enum" }

func (p enumProvider) Converter(from, to reflect.Type, _ Lookup) (Converter, bool) {
	// Registered sets win regardless of the enum's underlying kind.
	if _, ok := p.sets.get(to); ok && from.Kind() == reflect.String {
		return p.parse(from, to)
	}
	if _, ok := p.sets.get(from); ok && to.Kind() == reflect.String {
		return p.format(from, to)
	}
	switch {
	case from.Kind() == reflect.String && to.Kind() != reflect.String:
		return p.parse(from, to)
	case to.Kind() == reflect.String && from.Kind() != reflect.String:
		return p.format(from, to)
	}
	return nil, false
}

func (p enumProvider) parse(from, to reflect.Type) (Converter, bool) {
	if set, ok := p.sets.get(to); ok {
		return func(v any) (any, error) {
			name := reflect.ValueOf(v).String()
			out, ok := set.lookup(name)
			if !ok {
				return nil, errors.WithHintf(
					errors.Newf("%q is not a value of %s", name, to),
					"valid values are %s", strings.Join(set.names, ", "))
			}
			return out.Interface(), nil
		}, true
	}

	if reflect.PointerTo(to).Implements(textUnmarshalerType) {
		return func(v any) (any, error) {
			ptr := reflect.New(to)
			u := ptr.Interface().(encoding.TextUnmarshaler)
			if err := u.UnmarshalText([]byte(reflect.ValueOf(v).String())); err != nil {
				return nil, err
			}
			return ptr.Elem().Interface(), nil
		}, true
	}
	return nil, false
}

func (p enumProvider) format(from, to reflect.Type) (Converter, bool) {
	if set, ok := p.sets.get(from); ok {
		return func(v any) (any, error) {
			name, ok := set.byValue[v]
			if !ok {
				return nil, errors.Newf("%v is not a registered value of %s", v, from)
			}
			return reflect.ValueOf(name).Convert(to).Interface(), nil
		}, true
	}

	if from.Implements(textMarshalerType) && from.Kind() != reflect.Pointer {
		return func(v any) (any, error) {
			text, err := v.(encoding.TextMarshaler).MarshalText()
			if err != nil {
				return nil, err
			}
			return reflect.ValueOf(string(text)).Convert(to).Interface(), nil
		}, true
	}
	return nil, false
}
