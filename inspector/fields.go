package inspector

import (
	"reflect"

	"github.com/invopop/jsonschema"
	"github.com/teranos/typeshape/errors"
	"github.com/teranos/typeshape/logger"
	"github.com/teranos/typeshape/naming"
	"github.com/teranos/typeshape/nullability"
	"github.com/teranos/typeshape/shape"
)

// Field is an inspected struct member.
type Field struct {
	// Name is the schema name from the naming convention
	Name   string
	GoName string
	Index  []int
	Type   reflect.Type
	Shape  shape.Shape
}

// Fields lists the schema members of structType (or *structType) in
// declaration order, promoted fields included.
func (i *Inspector) Fields(structType reflect.Type) ([]Field, error) {
	if structType != nil && structType.Kind() == reflect.Pointer {
		structType = structType.Elem()
	}
	if structType == nil || structType.Kind() != reflect.Struct {
		return nil, errors.Newf("cannot list fields of %s: not a struct", typeString(structType))
	}

	policy, err := GetPolicy(i.conventions, i.scope)
	if err != nil {
		return nil, err
	}
	names, err := naming.Get(i.conventions, i.scope)
	if err != nil {
		return nil, err
	}

	var out []Field
	for _, f := range reflect.VisibleFields(structType) {
		if f.Anonymous && derefKind(f.Type) == reflect.Struct {
			// its fields are listed as promoted fields
			continue
		}
		if !policy.IncludeField(structType, f) {
			continue
		}
		name := names.FieldName(structType, f)
		if name == "" {
			continue
		}
		m, ok := nullability.FieldMember(structType, f.Name)
		if !ok {
			continue
		}
		s, err := i.MemberType(m)
		if err != nil {
			return nil, errors.Wrapf(err, "inspecting %s.%s", structType, f.Name)
		}
		out = append(out, Field{Name: name, GoName: f.Name, Index: f.Index, Type: f.Type, Shape: s})
	}

	i.log.Debugw("Inspected fields",
		logger.FieldType, structType.String(),
		logger.FieldCount, len(out))
	return out, nil
}

func derefKind(t reflect.Type) reflect.Kind {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind()
}

// TypeName returns the convention name of t.
func (i *Inspector) TypeName(t reflect.Type) (string, error) {
	names, err := naming.Get(i.conventions, i.scope)
	if err != nil {
		return "", err
	}
	return names.TypeName(t), nil
}

// ObjectSchema renders structType as a JSON Schema object whose properties
// are its inspected fields. Non-nullable fields are required; named
// non-scalar fields reference #/$defs by convention name.
func (i *Inspector) ObjectSchema(structType reflect.Type) (*jsonschema.Schema, error) {
	fields, err := i.Fields(structType)
	if err != nil {
		return nil, err
	}
	names, err := naming.Get(i.conventions, i.scope)
	if err != nil {
		return nil, err
	}

	if structType.Kind() == reflect.Pointer {
		structType = structType.Elem()
	}
	out := &jsonschema.Schema{
		Type:       "object",
		Title:      names.TypeName(structType),
		Properties: jsonschema.NewProperties(),
	}
	for _, f := range fields {
		out.Properties.Set(f.Name, shape.JSONSchema(f.Shape, names.TypeName))
		if !f.Shape.IsNullable() {
			out.Required = append(out.Required, f.Name)
		}
	}
	return out, nil
}
