package host

import (
	"encoding/json"
	"reflect"
)

// Class is the role a Go type plays in a shape.
type Class int

const (
	// ClassTerminal types end the decomposition and become named leaves
	ClassTerminal Class = iota
	// ClassPointer is Go's optional wrapper
	ClassPointer
	ClassFuture
	ClassOptional
	ClassNative
	ClassNonNull
	// ClassList covers arrays, slices, receive channels, iter.Seq shaped
	// functions and Wrapper types reporting WrapList
	ClassList
	ClassSchemaList
	ClassSchemaNonNull
)

func (c Class) String() string {
	switch c {
	case ClassTerminal:
		return "terminal"
	case ClassPointer:
		return "pointer"
	case ClassFuture:
		return "future"
	case ClassOptional:
		return "optional"
	case ClassNative:
		return "native"
	case ClassNonNull:
		return "non-null"
	case ClassList:
		return "list"
	case ClassSchemaList:
		return "schema-list"
	case ClassSchemaNonNull:
		return "schema-non-null"
	default:
		return "unknown"
	}
}

// Info is the classification of one type layer.
type Info struct {
	Class Class
	// Elem is the wrapped or element type; nil for terminals
	Elem reflect.Type
}

var (
	wrapperType    = reflect.TypeFor[Wrapper]()
	genericType    = reflect.TypeFor[Generic]()
	schemaType     = reflect.TypeFor[SchemaType]()
	rawMessageType = reflect.TypeFor[json.RawMessage]()
)

// Classify returns the role of t's outermost layer.
func Classify(t reflect.Type) Info {
	if t == nil {
		return Info{Class: ClassTerminal}
	}
	if t.Kind() == reflect.Pointer {
		return Info{Class: ClassPointer, Elem: t.Elem()}
	}
	if w, ok := wrapperOf(t); ok {
		elem := safeElementType(w)
		if elem != nil {
			switch safeWrapperKind(w) {
			case WrapFuture:
				return Info{Class: ClassFuture, Elem: elem}
			case WrapOptional:
				return Info{Class: ClassOptional, Elem: elem}
			case WrapNative:
				return Info{Class: ClassNative, Elem: elem}
			case WrapNonNull:
				return Info{Class: ClassNonNull, Elem: elem}
			case WrapList:
				return Info{Class: ClassList, Elem: elem}
			case WrapSchemaList:
				return Info{Class: ClassSchemaList, Elem: elem}
			case WrapSchemaNonNull:
				return Info{Class: ClassSchemaNonNull, Elem: elem}
			}
		}
	}
	if elem, ok := ListElem(t); ok {
		return Info{Class: ClassList, Elem: elem}
	}
	return Info{Class: ClassTerminal}
}

// ListElem reports whether t is list-like by structure and returns its
// element type. Byte slices and json.RawMessage are scalars, not lists.
func ListElem(t reflect.Type) (reflect.Type, bool) {
	switch t.Kind() {
	case reflect.Array:
		return t.Elem(), true
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 || t == rawMessageType {
			return nil, false
		}
		return t.Elem(), true
	case reflect.Chan:
		if t.ChanDir()&reflect.RecvDir == 0 {
			return nil, false
		}
		return t.Elem(), true
	case reflect.Func:
		return seqElem(t)
	}
	return nil, false
}

// seqElem matches func(yield func(T) bool), the shape of iter.Seq[T].
func seqElem(t reflect.Type) (reflect.Type, bool) {
	if t.NumIn() != 1 || t.NumOut() != 0 || t.IsVariadic() {
		return nil, false
	}
	yield := t.In(0)
	if yield.Kind() != reflect.Func || yield.NumIn() != 1 || yield.NumOut() != 1 || yield.Out(0).Kind() != reflect.Bool {
		return nil, false
	}
	return yield.In(0), true
}

// IsReferenceLike reports whether values of t can be nil.
func IsReferenceLike(t reflect.Type) bool {
	if t == nil {
		return true
	}
	switch t.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface,
		reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return true
	}
	return false
}

// IsValueLike reports whether values of t are never nil.
func IsValueLike(t reflect.Type) bool {
	return !IsReferenceLike(t)
}

// IsSchemaType reports whether t (or *t) implements SchemaType.
func IsSchemaType(t reflect.Type) bool {
	if t == nil || t.Kind() == reflect.Interface {
		return false
	}
	return t.Implements(schemaType) || (t.Kind() != reflect.Pointer && reflect.PointerTo(t).Implements(schemaType))
}

// TypeArguments returns the generic arguments carried by a terminal type:
// key and value for maps, declared arguments for Generic implementations.
func TypeArguments(t reflect.Type) []reflect.Type {
	if t == nil {
		return nil
	}
	if t.Kind() == reflect.Map {
		return []reflect.Type{t.Key(), t.Elem()}
	}
	if g, ok := instanceOf[Generic](t, genericType); ok {
		var args []reflect.Type
		func() {
			defer func() { _ = recover() }()
			args = g.TypeArguments()
		}()
		return args
	}
	return nil
}

func wrapperOf(t reflect.Type) (Wrapper, bool) {
	return instanceOf[Wrapper](t, wrapperType)
}

// instanceOf materialises a value of t (or *t) as I so that type-level
// methods can be called. Interfaces and pointers are never instantiated.
func instanceOf[I any](t, iface reflect.Type) (I, bool) {
	var zero I
	if t.Kind() == reflect.Interface || t.Kind() == reflect.Pointer {
		return zero, false
	}
	if t.Implements(iface) {
		v, ok := reflect.Zero(t).Interface().(I)
		return v, ok
	}
	if reflect.PointerTo(t).Implements(iface) {
		v, ok := reflect.New(t).Interface().(I)
		return v, ok
	}
	return zero, false
}

func safeElementType(w Wrapper) (elem reflect.Type) {
	defer func() {
		if recover() != nil {
			elem = nil
		}
	}()
	return w.ElementType()
}

func safeWrapperKind(w Wrapper) (kind WrapperKind) {
	defer func() {
		if recover() != nil {
			kind = WrapNone
		}
	}()
	return w.WrapperKind()
}
