package decompose

import (
	"reflect"

	"github.com/teranos/typeshape/errors"
	"github.com/teranos/typeshape/host"
	"github.com/teranos/typeshape/shape"
)

// maxArgumentDepth bounds how deep type arguments of named leaves are
// expanded. Deeper arguments become opaque leaves.
const maxArgumentDepth = shape.MaxDepth

// Blueprint builds the shape of stack, innermost component first, and
// validates it.
func Blueprint(stack Stack) (shape.Shape, error) {
	return blueprint(stack, 0)
}

func blueprint(stack Stack, argDepth int) (shape.Shape, error) {
	if len(stack) == 0 {
		return nil, errors.NewUnsupportedShapeError("cannot build a shape from an empty stack")
	}
	if _, ok := stack.Terminal(); !ok {
		return nil, errors.NewUnsupportedShapeError("stack %s does not end in a named component", stack)
	}

	var cur shape.Shape
	for i := len(stack) - 1; i >= 0; i-- {
		c := stack[i]
		switch c.Kind {
		case ComponentNamed:
			if cur != nil {
				return nil, errors.NewUnsupportedShapeError("stack %s has more than one named component", stack)
			}
			cur = namedLeaf(c, argDepth)
		case ComponentNonNull:
			cur = shape.NewNonNull(cur)
		case ComponentList:
			cur = shape.NewList(c.Type, cur, listNullable(c))
		default:
			return nil, errors.NewUnsupportedShapeError("unknown component %s", c)
		}
	}

	if err := shape.Validate(cur); err != nil {
		return nil, err
	}
	return cur, nil
}

func listNullable(c Component) bool {
	if c.Schema {
		return true
	}
	return c.Optional || host.IsReferenceLike(c.Type)
}

// namedLeaf builds the terminal. Value-like terminals that are not
// optional cannot be nil and are wrapped in NonNull.
func namedLeaf(c Component, argDepth int) shape.Shape {
	if c.Schema {
		return shape.NewNamedSchemaType(c.Type, true)
	}
	nullable := c.Optional || host.IsReferenceLike(c.Type)

	var args []shape.Shape
	for _, a := range host.TypeArguments(c.Type) {
		args = append(args, argumentShape(a, argDepth+1))
	}
	named := shape.NewNamed(c.Type, nullable, args...)
	if nullable {
		return named
	}
	return shape.NewNonNull(named)
}

func argumentShape(t reflect.Type, depth int) shape.Shape {
	if depth > maxArgumentDepth {
		return Opaque(t)
	}
	stack, ok := std.Decompose(t)
	if !ok {
		return Opaque(t)
	}
	s, err := blueprint(stack, depth)
	if err != nil {
		return Opaque(t)
	}
	return s
}

// Opaque is the fallback shape of a type no strategy can decompose: a named
// leaf, nullable unless the type is value-like.
func Opaque(t reflect.Type) shape.Shape {
	if t != nil && host.IsSchemaType(t) {
		return shape.NewNamedSchemaType(t, true)
	}
	if host.IsReferenceLike(t) {
		return shape.NewNamed(t, true)
	}
	return shape.NewNonNull(shape.NewNamed(t, false))
}

// Build decomposes t and builds its shape. The error is marked
// errors.ErrUnsupportedShape when t cannot be decomposed or its shape is
// structurally invalid.
func Build(t reflect.Type) (shape.Shape, error) {
	stack, err := std.Explain(t)
	if err != nil {
		return nil, err
	}
	return Blueprint(stack)
}

// FromShape converts a shape back into a component stack. Blueprint of the
// result is structurally equal to s.
func FromShape(s shape.Shape) Stack {
	var stack Stack
	for s != nil {
		switch n := s.(type) {
		case *shape.NonNull:
			stack = append(stack, Component{Kind: ComponentNonNull, Type: n.RuntimeType(), Explicit: true})
			s = n.Inner()
		case *shape.List:
			stack = append(stack, Component{
				Kind:     ComponentList,
				Type:     n.RuntimeType(),
				Optional: n.IsNullable() && host.IsValueLike(n.RuntimeType()),
				Schema:   isSchemaList(n.RuntimeType()),
			})
			s = n.Elem()
		case *shape.Named:
			stack = append(stack, Component{
				Kind:     ComponentNamed,
				Type:     n.RuntimeType(),
				Optional: n.IsNullable() && host.IsValueLike(n.RuntimeType()) && !n.IsNamedSchemaType(),
				Schema:   n.IsNamedSchemaType(),
			})
			s = nil
		default:
			s = nil
		}
	}
	for i := range stack {
		stack[i].Position = i
	}
	return stack
}

func isSchemaList(t reflect.Type) bool {
	return t != nil && host.Classify(t).Class == host.ClassSchemaList
}
