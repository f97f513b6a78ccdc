package decompose

import (
	"reflect"

	"github.com/teranos/typeshape/host"
)

// Strategy decomposes one family of types.
type Strategy interface {
	Name() string
	decompose(t reflect.Type) (Stack, *rejection)
}

// HostStrategy decomposes arbitrary Go types built from marker wrappers,
// pointers and list-like types around a terminal type.
type HostStrategy struct {
	MaxComponents int
}

// Name implements Strategy.
func (HostStrategy) Name() string { return "host" }

// nullLayer is a nullability-only layer seen since the last essential one.
type nullLayer struct {
	nonNull  bool
	typ      reflect.Type
	position int
}

func (h HostStrategy) decompose(t reflect.Type) (Stack, *rejection) {
	limit := h.MaxComponents
	if limit <= 0 {
		limit = MaxHostComponents
	}
	if t == nil {
		return nil, reject("nil type")
	}

	var (
		stack    Stack
		run      []nullLayer
		position int
		seenCore bool
	)

	push := func(c Component) *rejection {
		if len(stack) >= limit {
			return reject("more than %d components", limit)
		}
		stack = append(stack, c)
		return nil
	}

	// settle resolves the pending run of nullability layers in front of an
	// essential layer. It returns whether the layer is optional and whether
	// nullability was fixed by a marker.
	settle := func() (optional, explicit bool, rej *rejection) {
		defer func() { run = run[:0] }()
		var first *nullLayer
		hasOptional := false
		for i := range run {
			if run[i].nonNull {
				if first == nil {
					first = &run[i]
				}
			} else {
				hasOptional = true
			}
		}
		if len(run) >= 3 && first != nil && hasOptional {
			return false, false, reject("%d contradictory nullability layers", len(run))
		}
		if first != nil {
			if r := push(Component{Kind: ComponentNonNull, Type: first.typ, Position: first.position, Explicit: true}); r != nil {
				return false, false, r
			}
			return false, true, nil
		}
		return hasOptional, hasOptional, nil
	}

	cur := t
	for steps := 0; ; steps++ {
		if steps > host.MaxWalk {
			return nil, reject("type nests deeper than %d layers", host.MaxWalk)
		}
		info := host.Classify(cur)
		switch info.Class {
		case host.ClassPointer:
			run = append(run, nullLayer{typ: cur, position: position})
			cur = info.Elem
			continue

		case host.ClassFuture:
			if seenCore || hasNonNull(run) {
				return nil, reject("asynchronous type %s left inside the stack", cur)
			}

		case host.ClassOptional:
			run = append(run, nullLayer{typ: cur, position: position})

		case host.ClassNative:

		case host.ClassNonNull:
			run = append(run, nullLayer{nonNull: true, typ: cur, position: position})

		case host.ClassList:
			optional, explicit, r := settle()
			if r != nil {
				return nil, r
			}
			valueLike := host.IsValueLike(cur)
			c := Component{
				Kind:     ComponentList,
				Type:     cur,
				Position: position,
				Optional: optional,
				Explicit: explicit || valueLike,
			}
			if r := push(c); r != nil {
				return nil, r
			}
			seenCore = true

		case host.ClassSchemaList, host.ClassSchemaNonNull:
			return nil, &rejection{reason: "schema marker " + cur.String(), delegate: !seenCore && len(run) == 0}

		case host.ClassTerminal:
			if host.IsSchemaType(cur) {
				return nil, &rejection{reason: "terminal " + cur.String() + " is a schema type", delegate: !seenCore && len(run) == 0}
			}
			optional, explicit, r := settle()
			if r != nil {
				return nil, r
			}
			valueLike := host.IsValueLike(cur)
			if valueLike && !optional && !explicit {
				r := push(Component{Kind: ComponentNonNull, Type: cur, Position: position, Implicit: true})
				if r != nil {
					return nil, r
				}
			}
			c := Component{
				Kind:     ComponentNamed,
				Type:     cur,
				Position: position,
				Optional: optional,
				Explicit: explicit || valueLike,
			}
			if r := push(c); r != nil {
				return nil, r
			}
			return stack, nil
		}

		position++
		cur = info.Elem
		if cur == nil {
			return nil, reject("wrapper without element type")
		}
	}
}

func hasNonNull(run []nullLayer) bool {
	for _, l := range run {
		if l.nonNull {
			return true
		}
	}
	return false
}

// SchemaStrategy decomposes types that are already schema shaped: ListType
// and NonNullType markers around a SchemaType terminal.
type SchemaStrategy struct {
	MaxComponents int
}

// Name implements Strategy.
func (SchemaStrategy) Name() string { return "schema" }

func (s SchemaStrategy) decompose(t reflect.Type) (Stack, *rejection) {
	limit := s.MaxComponents
	if limit <= 0 {
		limit = MaxSchemaComponents
	}
	if t == nil {
		return nil, reject("nil type")
	}

	var stack Stack
	cur := t
	for position := 0; ; position++ {
		if len(stack) >= limit {
			return nil, reject("more than %d components", limit)
		}
		info := host.Classify(cur)
		switch info.Class {
		case host.ClassSchemaList:
			stack = append(stack, Component{Kind: ComponentList, Type: cur, Position: position, Explicit: true, Schema: true})
		case host.ClassSchemaNonNull:
			if n := len(stack); n > 0 && stack[n-1].Kind == ComponentNonNull {
				// NonNullType[NonNullType[T]] collapses
				break
			}
			stack = append(stack, Component{Kind: ComponentNonNull, Type: cur, Position: position, Explicit: true, Schema: true})
		case host.ClassTerminal:
			if !host.IsSchemaType(cur) {
				return nil, reject("terminal %s is not a schema type", cur)
			}
			stack = append(stack, Component{Kind: ComponentNamed, Type: cur, Position: position, Explicit: true, Schema: true})
			return stack, nil
		default:
			return nil, reject("%s layer %s inside a schema type", info.Class, cur)
		}
		cur = info.Elem
	}
}
