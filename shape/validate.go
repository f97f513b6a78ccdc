package shape

import (
	"github.com/teranos/typeshape/errors"
)

// Depth returns the number of nodes on the layer chain of s.
func Depth(s Shape) int {
	depth := 0
	for s != nil {
		depth++
		switch n := s.(type) {
		case *NonNull:
			s = n.inner
		case *List:
			s = n.elem
		default:
			s = nil
		}
	}
	return depth
}

// ListNesting returns the number of List layers on the chain of s.
func ListNesting(s Shape) int {
	lists := 0
	for s != nil {
		switch n := s.(type) {
		case *NonNull:
			s = n.inner
		case *List:
			lists++
			s = n.elem
		default:
			s = nil
		}
	}
	return lists
}

// Validate rejects shapes deeper than MaxDepth, shapes nesting more than
// MaxListNesting lists, and NonNull nodes wrapping NonNull nodes. Type
// arguments of named leaves are validated recursively.
func Validate(s Shape) error {
	if s == nil {
		return errors.NewUnsupportedShapeError("empty shape")
	}
	if d := Depth(s); d > MaxDepth {
		return errors.NewUnsupportedShapeError("shape %s has depth %d, limit is %d", s, d, MaxDepth)
	}
	if l := ListNesting(s); l > MaxListNesting {
		return errors.NewUnsupportedShapeError("shape %s nests %d lists, limit is %d", s, l, MaxListNesting)
	}

	for cur := s; cur != nil; {
		switch n := cur.(type) {
		case *NonNull:
			if _, ok := n.inner.(*NonNull); ok {
				return errors.NewUnsupportedShapeError("shape %s wraps non-null in non-null", s)
			}
			cur = n.inner
		case *List:
			if n.elem == nil {
				return errors.NewUnsupportedShapeError("list %s has no element shape", n.typ)
			}
			cur = n.elem
		case *Named:
			for _, arg := range n.args {
				if err := Validate(arg); err != nil {
					return errors.Wrapf(err, "type argument of %s", n.Name())
				}
			}
			cur = nil
		default:
			return errors.NewUnsupportedShapeError("unknown shape node %T", cur)
		}
	}
	return nil
}
