// Package naming derives schema names from Go types, struct fields and enum
// values. Names are a convention: the owning Conventions for a scope is
// resolved through package convention and can be extended with Overrides.
package naming

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/teranos/typeshape/convention"
	"github.com/teranos/typeshape/errors"
	"github.com/teranos/typeshape/host"
)

// Conventions is the naming contract.
type Conventions interface {
	convention.Convention

	// TypeName returns the schema name of a Go type.
	TypeName(t reflect.Type) string

	// FieldName returns the schema name of a struct field, or "" when the
	// field is excluded (json:"-").
	FieldName(owner reflect.Type, f reflect.StructField) string

	// EnumValueName returns the schema name of an enum value.
	EnumValueName(v any) string
}

// Overridable is implemented by owners that accept explicit names from
// extensions.
type Overridable interface {
	SetTypeName(t reflect.Type, name string)
	SetFieldName(owner reflect.Type, field, name string)
}

// ScalarNames maps Go scalar types to schema scalar names.
var ScalarNames = map[reflect.Type]string{
	reflect.TypeFor[string]():        "String",
	reflect.TypeFor[bool]():          "Boolean",
	reflect.TypeFor[int]():           "Int",
	reflect.TypeFor[int8]():          "Byte",
	reflect.TypeFor[int16]():         "Short",
	reflect.TypeFor[int32]():         "Int",
	reflect.TypeFor[int64]():         "Long",
	reflect.TypeFor[uint]():          "UnsignedInt",
	reflect.TypeFor[uint8]():         "UnsignedByte",
	reflect.TypeFor[uint16]():        "UnsignedShort",
	reflect.TypeFor[uint32]():        "UnsignedInt",
	reflect.TypeFor[uint64]():        "UnsignedLong",
	reflect.TypeFor[float32]():       "Float",
	reflect.TypeFor[float64]():       "Float",
	reflect.TypeFor[[]byte]():        "Base64String",
	reflect.TypeFor[time.Time]():     "DateTime",
	reflect.TypeFor[time.Duration](): "TimeSpan",
	reflect.TypeFor[any]():           "Any",
}

// Suffixes trimmed from type names, unless trimming would leave nothing.
var trimmedSuffixes = []string{"Type", "Async"}

// Default is the built-in naming convention.
type Default struct {
	convention.Base

	mu     sync.RWMutex
	types  map[reflect.Type]string
	fields map[string]string
}

// NewDefault is the convention.Factory for Default.
func NewDefault(*convention.Context) (convention.Convention, error) {
	return &Default{
		types:  make(map[reflect.Type]string),
		fields: make(map[string]string),
	}, nil
}

// Get resolves the naming convention of scope, falling back to Default.
func Get(ctx *convention.Context, scope string) (Conventions, error) {
	return convention.GetOrDefault[Conventions](ctx, scope, NewDefault)
}

// SetTypeName implements Overridable.
func (d *Default) SetTypeName(t reflect.Type, name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.types[t] = name
}

// SetFieldName implements Overridable.
func (d *Default) SetFieldName(owner reflect.Type, field, name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fields[fieldKey(owner, field)] = name
}

func fieldKey(owner reflect.Type, field string) string {
	return owner.String() + "." + field
}

// TypeName implements Conventions.
//
// Generic instantiations are flattened: Page[User] becomes PageOfUser and
// Pair[string, int] becomes PairOfStringAndInt.
func (d *Default) TypeName(t reflect.Type) string {
	if t == nil {
		return "Any"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	d.mu.RLock()
	name, ok := d.types[t]
	d.mu.RUnlock()
	if ok {
		return name
	}
	if name, ok := ScalarNames[t]; ok {
		return name
	}
	if host.IsSchemaType(t) {
		if n := schemaTypeName(t); n != "" {
			return n
		}
	}

	switch {
	case t.Name() == "":
		return d.unnamed(t)
	case t.PkgPath() == "":
		// predeclared types not listed as scalars
		return ToPascalCase(t.Name())
	}
	return trimSuffixes(genericName(t.Name()))
}

func (d *Default) unnamed(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		return "ListOf" + d.TypeName(t.Elem())
	case reflect.Map:
		return "MapOf" + d.TypeName(t.Key()) + "To" + d.TypeName(t.Elem())
	case reflect.Interface:
		return "Any"
	case reflect.Struct:
		return "Object"
	default:
		return ToPascalCase(t.Kind().String())
	}
}

func schemaTypeName(t reflect.Type) (name string) {
	defer func() {
		if recover() != nil {
			name = ""
		}
	}()
	v := reflect.Zero(t)
	if !t.Implements(reflect.TypeFor[host.SchemaType]()) {
		v = reflect.New(t)
	}
	return v.Interface().(host.SchemaType).SchemaTypeName()
}

// genericName turns "Page[github.com/acme/api.User]" into "PageOfUser".
func genericName(name string) string {
	open := strings.IndexByte(name, '[')
	if open < 0 || !strings.HasSuffix(name, "]") {
		return name
	}
	base := name[:open]
	args := splitArgs(name[open+1 : len(name)-1])
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = argName(a)
	}
	return base + "Of" + strings.Join(parts, "And")
}

// splitArgs splits a type argument list at top-level commas.
func splitArgs(s string) []string {
	var out []string
	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '[':
			depth++
		case ']':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	return append(out, strings.TrimSpace(s[start:]))
}

func argName(s string) string {
	s = strings.TrimLeft(s, "*")
	switch {
	case strings.HasPrefix(s, "[]"):
		return "ListOf" + argName(s[2:])
	case strings.HasPrefix(s, "map["):
		return "Map"
	case s == "interface {}" || s == "any":
		return "Any"
	}
	// strip the package path, keeping generic arguments intact
	head := s
	if open := strings.IndexByte(s, '['); open >= 0 {
		head = s[:open]
	}
	if slash := strings.LastIndexByte(head, '/'); slash >= 0 {
		s = s[slash+1:]
		head = head[slash+1:]
	}
	if dot := strings.IndexByte(head, '.'); dot >= 0 {
		s = s[dot+1:]
	}
	if scalar, ok := predeclaredScalars[s]; ok {
		return scalar
	}
	if strings.IndexByte(s, '[') >= 0 {
		return trimSuffixes(genericName(s))
	}
	return trimSuffixes(ToPascalCase(s))
}

var predeclaredScalars = func() map[string]string {
	out := make(map[string]string)
	for t, name := range ScalarNames {
		if t.PkgPath() == "" && t.Name() != "" {
			out[t.Name()] = name
		}
	}
	return out
}()

func trimSuffixes(name string) string {
	for _, suffix := range trimmedSuffixes {
		if len(name) > len(suffix) && strings.HasSuffix(name, suffix) {
			return strings.TrimSuffix(name, suffix)
		}
	}
	return name
}

// FieldName implements Conventions. The json tag name wins; otherwise the
// Go name is camel cased.
func (d *Default) FieldName(owner reflect.Type, f reflect.StructField) string {
	if owner != nil {
		d.mu.RLock()
		name, ok := d.fields[fieldKey(owner, f.Name)]
		d.mu.RUnlock()
		if ok {
			return name
		}
	}

	if tag, ok := f.Tag.Lookup("json"); ok {
		name, _, _ := strings.Cut(tag, ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return ToCamelCase(f.Name)
}

// EnumValueName implements Conventions: SCREAMING_SNAKE_CASE of the value's
// String, TextMarshaler text, or default formatting.
func (d *Default) EnumValueName(v any) string {
	var s string
	switch x := v.(type) {
	case fmt.Stringer:
		s = x.String()
	case interface{ MarshalText() ([]byte, error) }:
		text, err := x.MarshalText()
		if err != nil {
			s = fmt.Sprint(v)
		} else {
			s = string(text)
		}
	default:
		s = fmt.Sprint(v)
	}
	return ToScreamingSnakeCase(s)
}

// Overrides is a naming extension that pins names of specific types and
// fields. Field keys are "Field" names on the Go struct.
type Overrides struct {
	convention.Base

	Types  map[reflect.Type]string
	Fields map[reflect.Type]map[string]string
}

// NewOverrides returns a factory producing a fresh extension per build that
// carries the given names.
func NewOverrides(types map[reflect.Type]string, fields map[reflect.Type]map[string]string) convention.Factory {
	return func(*convention.Context) (convention.Convention, error) {
		return &Overrides{Types: types, Fields: fields}, nil
	}
}

// Merge implements convention.Extension.
func (o *Overrides) Merge(_ *convention.Context, owner convention.Convention) error {
	target, ok := owner.(Overridable)
	if !ok {
		return errors.Newf("naming convention %T does not accept overrides", owner)
	}
	for t, name := range o.Types {
		target.SetTypeName(t, name)
	}
	for t, fields := range o.Fields {
		for field, name := range fields {
			target.SetFieldName(t, field, name)
		}
	}
	return nil
}
