package shape

import (
	"reflect"
	"time"

	"github.com/invopop/jsonschema"
)

// Namer maps a terminal Go type to the definition name used in $ref.
type Namer func(t reflect.Type) string

var timeType = reflect.TypeOf(time.Time{})

// JSONSchema renders s as a JSON Schema fragment. Scalars map to their JSON
// types, maps become objects keyed by string, lists become arrays and every
// other named type becomes a $ref into #/$defs using namer. Nullable layers
// are expressed as oneOf with a null branch.
func JSONSchema(s Shape, namer Namer) *jsonschema.Schema {
	if namer == nil {
		namer = func(t reflect.Type) string { return t.Name() }
	}
	nullable := s.IsNullable()
	var out *jsonschema.Schema
	switch n := Unwrap(s).(type) {
	case *List:
		out = &jsonschema.Schema{Type: "array", Items: JSONSchema(n.elem, namer)}
	case *Named:
		out = namedSchema(n, namer)
	default:
		out = &jsonschema.Schema{}
	}
	if !nullable {
		return out
	}
	return &jsonschema.Schema{OneOf: []*jsonschema.Schema{out, {Type: "null"}}}
}

func namedSchema(n *Named, namer Namer) *jsonschema.Schema {
	t := n.typ
	if t == nil {
		return &jsonschema.Schema{}
	}
	if t == timeType {
		return &jsonschema.Schema{Type: "string", Format: "date-time"}
	}
	if n.schemaType {
		return &jsonschema.Schema{Ref: "#/$defs/" + namer(t)}
	}
	switch t.Kind() {
	case reflect.String:
		return &jsonschema.Schema{Type: "string"}
	case reflect.Bool:
		return &jsonschema.Schema{Type: "boolean"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &jsonschema.Schema{Type: "integer"}
	case reflect.Float32, reflect.Float64:
		return &jsonschema.Schema{Type: "number"}
	case reflect.Map:
		obj := &jsonschema.Schema{Type: "object"}
		if len(n.args) == 2 {
			obj.AdditionalProperties = JSONSchema(n.args[1], namer)
		}
		return obj
	case reflect.Interface:
		return &jsonschema.Schema{}
	default:
		return &jsonschema.Schema{Ref: "#/$defs/" + namer(t)}
	}
}
