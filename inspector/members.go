package inspector

import (
	"reflect"

	"github.com/teranos/typeshape/decompose"
	"github.com/teranos/typeshape/errors"
	"github.com/teranos/typeshape/host"
	"github.com/teranos/typeshape/nullability"
	"github.com/teranos/typeshape/shape"
)

// MemberType returns the shape of m.Type with m's nullability metadata
// applied. The shape of the bare type stays cached and unchanged.
func (i *Inspector) MemberType(m nullability.Member) (shape.Shape, error) {
	base := i.GetType(m.Type)
	reader, err := i.nullabilityReader()
	if err != nil {
		return nil, err
	}
	stack, err := i.decomposer.Explain(m.Type)
	if err != nil {
		// opaque shapes have a single layer and no walk to align with
		return base, nil
	}
	return shape.Rewrite(base, LayerVector(stack, reader.FlagsFor(m)))
}

// FieldType returns the shape of the named field of structType.
func (i *Inspector) FieldType(structType reflect.Type, name string) (shape.Shape, error) {
	m, ok := nullability.FieldMember(structType, name)
	if !ok {
		return nil, errors.Newf("%s has no field %q", typeString(structType), name)
	}
	return i.MemberType(m)
}

// ReturnType returns the shape of the first result of method on recv.
func (i *Inspector) ReturnType(recv reflect.Type, method string) (shape.Shape, error) {
	m, ok := nullability.ReturnMember(recv, method)
	if !ok {
		return nil, errors.Newf("%s has no method %q with a result", typeString(recv), method)
	}
	return i.MemberType(m)
}

// ParameterType returns the shape of parameter n (receiver excluded) of
// method on recv.
func (i *Inspector) ParameterType(recv reflect.Type, method string, n int) (shape.Shape, error) {
	m, ok := nullability.ParameterMember(recv, method, n)
	if !ok {
		return nil, errors.Newf("%s has no parameter %d on method %q", typeString(recv), n, method)
	}
	return i.MemberType(m)
}

// LayerVector translates walk-aligned flags into one entry per logical
// layer of stack. Only reference-like layers whose nullability was not
// fixed by a pointer, an Optional or a NonNull marker take a flag; all
// other layers are Unknown and keep what the type says.
func LayerVector(stack decompose.Stack, flags []shape.Nullability) []shape.Nullability {
	layers := stack.Layers()
	out := make([]shape.Nullability, len(layers))
	for idx, l := range layers {
		if l.Explicit || l.Optional || l.Schema || !host.IsReferenceLike(l.Type) {
			continue
		}
		if l.Position >= 0 && l.Position < len(flags) {
			out[idx] = flags[l.Position]
		}
	}
	return out
}

func typeString(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
