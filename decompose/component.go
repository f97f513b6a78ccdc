// Package decompose turns Go types into component stacks and component
// stacks into shapes.
//
// A stack lists the essential layers of a type outer to inner: list layers,
// non-null layers and the terminal named type. Non-essential layers
// (Future, Optional, pointers, Native) are stripped; their only trace is
// the Optional flag on the next essential layer.
package decompose

import (
	"fmt"
	"reflect"
	"strings"
)

// Component caps. Host types carry more stripped wrappers between
// essential layers than schema markers do.
const (
	MaxHostComponents   = 7
	MaxSchemaComponents = 6
)

// ComponentKind is the role of a component in a stack.
type ComponentKind int

const (
	ComponentNamed ComponentKind = iota
	ComponentList
	ComponentNonNull
)

func (k ComponentKind) String() string {
	switch k {
	case ComponentNamed:
		return "named"
	case ComponentList:
		return "list"
	case ComponentNonNull:
		return "non-null"
	default:
		return "unknown"
	}
}

// Component is one essential layer of a decomposed type.
type Component struct {
	Kind ComponentKind
	// Type is the Go type of the layer: the list type, the NonNull marker
	// or the terminal type
	Type reflect.Type
	// Position is the layer's index in host.Walk of the decomposed type
	Position int
	// Optional is set when an optional layer (Optional[T] or a pointer)
	// directly preceded this layer
	Optional bool
	// Explicit is set when the layer's nullability is fixed by syntax and
	// must not be overridden by annotation flags
	Explicit bool
	// Implicit marks a NonNull derived from a value-like terminal rather
	// than written by the author
	Implicit bool
	// Schema marks components produced by the schema strategy
	Schema bool
}

func (c Component) String() string {
	name := "<nil>"
	if c.Type != nil {
		name = c.Type.String()
	}
	switch c.Kind {
	case ComponentNonNull:
		if c.Implicit {
			return "NonNull(implicit)"
		}
		return "NonNull"
	case ComponentList:
		return "List(" + name + ")"
	default:
		return "Named(" + name + ")"
	}
}

// Stack is an ordered outer-to-inner sequence of components.
type Stack []Component

func (s Stack) String() string {
	parts := make([]string, len(s))
	for i, c := range s {
		parts[i] = c.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Terminal returns the named component ending the stack.
func (s Stack) Terminal() (Component, bool) {
	if len(s) == 0 || s[len(s)-1].Kind != ComponentNamed {
		return Component{}, false
	}
	return s[len(s)-1], true
}

// Layers returns the List and Named components, which correspond one to
// one with shape.Layers of the built shape. A NonNull component marks the
// layer that follows it as explicit.
func (s Stack) Layers() []Component {
	var out []Component
	nonNull := false
	for _, c := range s {
		if c.Kind == ComponentNonNull {
			nonNull = !c.Implicit
			continue
		}
		if nonNull {
			c.Explicit = true
		}
		out = append(out, c)
		nonNull = false
	}
	return out
}

// Kinds returns the component kinds, outer to inner.
func (s Stack) Kinds() []ComponentKind {
	out := make([]ComponentKind, len(s))
	for i, c := range s {
		out[i] = c.Kind
	}
	return out
}

// rejection explains why a strategy could not handle a type.
type rejection struct {
	reason   string
	delegate bool
}

func reject(format string, args ...any) *rejection {
	return &rejection{reason: fmt.Sprintf(format, args...)}
}
