package host

import "reflect"

// MaxWalk bounds the flattened walk. Self-referential generic types such as
// type Tree map[string]Tree would otherwise expand forever.
const MaxWalk = 64

// Children returns the types a layer contributes to the flattened walk, in
// order. Pointers are transparent and contribute their element in place.
func Children(t reflect.Type) []reflect.Type {
	info := Classify(t)
	switch info.Class {
	case ClassTerminal:
		return TypeArguments(t)
	default:
		return []reflect.Type{info.Elem}
	}
}

// Walk returns the flattened pre-order walk of t. Every node except pointers
// takes one position; nullability flag vectors are aligned to it.
func Walk(t reflect.Type) []reflect.Type {
	var out []reflect.Type
	walk(t, &out)
	return out
}

func walk(t reflect.Type, out *[]reflect.Type) {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || len(*out) >= MaxWalk {
		return
	}
	*out = append(*out, t)
	for _, c := range Children(t) {
		walk(c, out)
	}
}

// Strip removes pointer layers and reports whether any were present.
func Strip(t reflect.Type) (reflect.Type, bool) {
	stripped := false
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
		stripped = true
	}
	return t, stripped
}
