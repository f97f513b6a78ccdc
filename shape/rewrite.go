package shape

import (
	"github.com/teranos/typeshape/errors"
)

// Rewrite returns a copy of s whose logical layers (outer to inner) take the
// nullability given by vector. Unknown entries and layers past the end of
// the vector keep their original nullability. A No entry ensures a NonNull
// wrapper; a Yes entry removes one. s itself is never modified.
func Rewrite(s Shape, vector []Nullability) (Shape, error) {
	if s == nil {
		return nil, errors.Mark(errors.New("cannot rewrite a nil shape"), errors.ErrInvalidRewrite)
	}
	if len(vector) > MaxRewriteVector {
		return nil, errors.WithHintf(
			errors.Mark(errors.Newf("nullability vector has %d entries, limit is %d", len(vector), MaxRewriteVector), errors.ErrInvalidRewrite),
			"a shape has at most %d logical layers", MaxDepth)
	}
	return rewrite(s, vector, 0), nil
}

// MustRewrite is Rewrite for vectors known to be within bounds.
func MustRewrite(s Shape, vector []Nullability) Shape {
	out, err := Rewrite(s, vector)
	if err != nil {
		panic(err)
	}
	return out
}

func rewrite(s Shape, vector []Nullability, layer int) Shape {
	wrapped := false
	if nn, ok := s.(*NonNull); ok {
		wrapped = true
		s = nn.inner
	}

	decision := Unknown
	if layer < len(vector) {
		decision = vector[layer]
	}

	var rebuilt Shape
	switch n := s.(type) {
	case *List:
		nullable := n.nullable && !wrapped
		if decision.Known() {
			nullable = decision == Yes
		}
		rebuilt = &List{typ: n.typ, elem: rewrite(n.elem, vector, layer+1), nullable: nullable}
	case *Named:
		nullable := n.nullable && !wrapped
		if decision.Known() {
			nullable = decision == Yes
		}
		rebuilt = n.withNullable(nullable)
	case *NonNull:
		// double wrapping never survives construction, but collapse defensively
		return rewrite(n, vector, layer)
	default:
		return s
	}

	switch decision {
	case No:
		wrapped = true
	case Yes:
		wrapped = false
	}
	if wrapped {
		return NewNonNull(rebuilt)
	}
	return rebuilt
}

// Nullable returns s made nullable at its outermost layer.
func Nullable(s Shape) Shape {
	return rewrite(s, []Nullability{Yes}, 0)
}

// Required returns s made non-null at its outermost layer.
func Required(s Shape) Shape {
	return rewrite(s, []Nullability{No}, 0)
}
