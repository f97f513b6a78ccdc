// Package shape implements the canonical type-shape tree produced by the
// type engine. A shape is one of three node kinds (Named, List, NonNull) and
// is immutable once constructed: every rewrite returns fresh nodes so shapes
// can be shared across schema builds and goroutines.
package shape

import (
	"fmt"
	"reflect"
	"strings"
)

// Structural limits enforced by Validate and Rewrite.
const (
	// MaxDepth is the maximum number of nodes on a shape's layer chain.
	MaxDepth = 6

	// MaxListNesting is the deepest list nesting accepted: list-of-list is
	// the ceiling, a third list layer is rejected.
	MaxListNesting = 2

	// MaxRewriteVector bounds the nullability vector accepted by Rewrite.
	MaxRewriteVector = 32
)

// Kind tags a shape node.
type Kind int

const (
	KindNamed Kind = iota
	KindList
	KindNonNull
)

func (k Kind) String() string {
	switch k {
	case KindNamed:
		return "Named"
	case KindList:
		return "List"
	case KindNonNull:
		return "NonNull"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Shape is a node of a type-shape tree.
// The set of implementations is closed: *Named, *List and *NonNull.
type Shape interface {
	// Kind returns the node tag
	Kind() Kind

	// IsNullable returns true if the value at this layer may be absent
	IsNullable() bool

	// RuntimeType returns the Go type this node was derived from
	RuntimeType() reflect.Type

	// String renders the shape in schema reference syntax, e.g. [Int!]!
	String() string

	shape()
}

// Named is a terminal shape node.
type Named struct {
	typ        reflect.Type
	nullable   bool
	args       []Shape
	schemaType bool
}

// NewNamed creates a named leaf. args are the generic arguments of the
// terminal type (map key and value, or declared type arguments).
func NewNamed(t reflect.Type, nullable bool, args ...Shape) *Named {
	var copied []Shape
	if len(args) > 0 {
		copied = make([]Shape, len(args))
		copy(copied, args)
	}
	return &Named{typ: t, nullable: nullable, args: copied}
}

// NewNamedSchemaType creates a named leaf for a type that is already a
// schema type rather than a plain Go type.
func NewNamedSchemaType(t reflect.Type, nullable bool) *Named {
	return &Named{typ: t, nullable: nullable, schemaType: true}
}

func (n *Named) shape() {}

// Kind returns KindNamed.
func (n *Named) Kind() Kind { return KindNamed }

// IsNullable returns whether the named value may be absent.
func (n *Named) IsNullable() bool { return n.nullable }

// RuntimeType returns the terminal Go type.
func (n *Named) RuntimeType() reflect.Type { return n.typ }

// IsNamedSchemaType reports whether the terminal is an existing schema type.
func (n *Named) IsNamedSchemaType() bool { return n.schemaType }

// TypeArguments returns a copy of the generic arguments.
func (n *Named) TypeArguments() []Shape {
	if len(n.args) == 0 {
		return nil
	}
	out := make([]Shape, len(n.args))
	copy(out, n.args)
	return out
}

// Name returns the display name of the terminal type.
func (n *Named) Name() string {
	if n.typ == nil {
		return "<nil>"
	}
	if n.typ.Name() != "" {
		return n.typ.Name()
	}
	return n.typ.String()
}

func (n *Named) String() string {
	return n.Name()
}

func (n *Named) withNullable(nullable bool) *Named {
	if n.nullable == nullable {
		return n.clone()
	}
	c := n.clone()
	c.nullable = nullable
	return c
}

func (n *Named) clone() *Named {
	return &Named{typ: n.typ, nullable: n.nullable, args: n.TypeArguments(), schemaType: n.schemaType}
}

// List is a list layer around an element shape.
type List struct {
	typ      reflect.Type
	elem     Shape
	nullable bool
}

// NewList wraps elem in a list layer derived from the Go type t.
func NewList(t reflect.Type, elem Shape, nullable bool) *List {
	return &List{typ: t, elem: elem, nullable: nullable}
}

func (l *List) shape() {}

// Kind returns KindList.
func (l *List) Kind() Kind { return KindList }

// IsNullable returns whether the list itself may be absent.
func (l *List) IsNullable() bool { return l.nullable }

// RuntimeType returns the Go collection type.
func (l *List) RuntimeType() reflect.Type { return l.typ }

// Elem returns the element shape.
func (l *List) Elem() Shape { return l.elem }

func (l *List) String() string {
	return "[" + l.elem.String() + "]"
}

// NonNull marks its inner layer as never absent.
type NonNull struct {
	inner Shape
}

// NewNonNull wraps inner in a non-null layer. Wrapping a NonNull returns it
// unchanged, and the inner layer is forced to non-nullable.
func NewNonNull(inner Shape) Shape {
	switch n := inner.(type) {
	case *NonNull:
		return n
	case *Named:
		return &NonNull{inner: n.withNullable(false)}
	case *List:
		return &NonNull{inner: &List{typ: n.typ, elem: n.elem, nullable: false}}
	default:
		return &NonNull{inner: inner}
	}
}

func (n *NonNull) shape() {}

// Kind returns KindNonNull.
func (n *NonNull) Kind() Kind { return KindNonNull }

// IsNullable is always false.
func (n *NonNull) IsNullable() bool { return false }

// RuntimeType returns the runtime type of the wrapped layer.
func (n *NonNull) RuntimeType() reflect.Type { return n.inner.RuntimeType() }

// Inner returns the wrapped layer.
func (n *NonNull) Inner() Shape { return n.inner }

func (n *NonNull) String() string {
	return n.inner.String() + "!"
}

// Unwrap strips a NonNull wrapper if present.
func Unwrap(s Shape) Shape {
	if nn, ok := s.(*NonNull); ok {
		return nn.inner
	}
	return s
}

// NamedType returns the terminal named node of s.
func NamedType(s Shape) *Named {
	for {
		switch n := s.(type) {
		case *Named:
			return n
		case *List:
			s = n.elem
		case *NonNull:
			s = n.inner
		default:
			return nil
		}
	}
}

// Layers returns the logical layers of s (List and Named nodes), outer to inner.
func Layers(s Shape) []Shape {
	var layers []Shape
	for s != nil {
		switch n := s.(type) {
		case *NonNull:
			s = n.inner
		case *List:
			layers = append(layers, n)
			s = n.elem
		case *Named:
			layers = append(layers, n)
			s = nil
		default:
			s = nil
		}
	}
	return layers
}

// Collect returns the nullability of each logical layer, outer to inner.
func Collect(s Shape) []bool {
	layers := Layers(s)
	out := make([]bool, len(layers))
	for i, l := range layers {
		out[i] = l.IsNullable()
	}
	return out
}

// Equal reports structural equality: same runtime types, kinds, nullability
// and type arguments, recursively.
func Equal(a, b Shape) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() || a.IsNullable() != b.IsNullable() || a.RuntimeType() != b.RuntimeType() {
		return false
	}
	switch x := a.(type) {
	case *NonNull:
		return Equal(x.inner, b.(*NonNull).inner)
	case *List:
		return Equal(x.elem, b.(*List).elem)
	case *Named:
		y := b.(*Named)
		if x.schemaType != y.schemaType || len(x.args) != len(y.args) {
			return false
		}
		for i := range x.args {
			if !Equal(x.args[i], y.args[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Describe renders the node structure, e.g. List(NonNull(Named(int))).
// Useful in logs and test failures where String hides the layering.
func Describe(s Shape) string {
	var b strings.Builder
	describe(&b, s)
	return b.String()
}

func describe(b *strings.Builder, s Shape) {
	switch n := s.(type) {
	case *NonNull:
		b.WriteString("NonNull(")
		describe(b, n.inner)
		b.WriteString(")")
	case *List:
		b.WriteString("List(")
		describe(b, n.elem)
		b.WriteString(")")
	case *Named:
		b.WriteString("Named(")
		if n.typ != nil {
			b.WriteString(n.typ.String())
		}
		for _, a := range n.args {
			b.WriteString(", ")
			describe(b, a)
		}
		b.WriteString(")")
	default:
		b.WriteString("<nil>")
	}
}
