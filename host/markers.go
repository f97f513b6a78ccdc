// Package host describes Go types to the shape engine. It provides the
// generic marker wrappers schema authors use in declarations (Future,
// Optional, Native, NonNull, List and the schema markers ListType and
// NonNullType) and classifies arbitrary reflect.Types into wrapper layers,
// list layers and terminals.
package host

import (
	"reflect"
)

// WrapperKind identifies what a marker wrapper contributes to a shape.
type WrapperKind int

const (
	WrapNone WrapperKind = iota
	WrapFuture
	WrapOptional
	WrapNative
	WrapNonNull
	WrapList
	WrapSchemaList
	WrapSchemaNonNull
)

// Wrapper is implemented by marker types. Both methods must be callable on
// the zero value: the engine never has an instance, only the type.
//
// User collection types (pages, connections, query results) implement
// Wrapper with WrapList to be treated as list layers.
type Wrapper interface {
	WrapperKind() WrapperKind
	ElementType() reflect.Type
}

// Generic is implemented by named types that want their type arguments
// carried on the shape (reflect cannot recover them from an instantiation).
type Generic interface {
	TypeArguments() []reflect.Type
}

// SchemaType is implemented by types that already are schema types, such
// as object or scalar type definitions built by a schema builder.
type SchemaType interface {
	SchemaTypeName() string
}

// Future is an asynchronous result. The engine strips it; a resolver
// returning Future[T] is shaped like one returning T.
type Future[T any] struct {
	get func() (T, error)
}

// NewFuture creates a future resolved by get.
func NewFuture[T any](get func() (T, error)) Future[T] {
	return Future[T]{get: get}
}

// Await resolves the future. A zero Future resolves to the zero value.
func (f Future[T]) Await() (T, error) {
	if f.get == nil {
		var zero T
		return zero, nil
	}
	return f.get()
}

func (Future[T]) WrapperKind() WrapperKind  { return WrapFuture }
func (Future[T]) ElementType() reflect.Type { return reflect.TypeFor[T]() }

// Optional marks a value that may be absent, like a pointer but without
// the indirection.
type Optional[T any] struct {
	value T
	set   bool
}

// Some returns a present optional.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// None returns an absent optional.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

func (Optional[T]) WrapperKind() WrapperKind  { return WrapOptional }
func (Optional[T]) ElementType() reflect.Type { return reflect.TypeFor[T]() }

// Native marks a value passed through to the schema as-is.
type Native[T any] struct {
	Value T
}

func (Native[T]) WrapperKind() WrapperKind  { return WrapNative }
func (Native[T]) ElementType() reflect.Type { return reflect.TypeFor[T]() }

// NonNull marks a value that is never absent.
type NonNull[T any] struct {
	Value T
}

func (NonNull[T]) WrapperKind() WrapperKind  { return WrapNonNull }
func (NonNull[T]) ElementType() reflect.Type { return reflect.TypeFor[T]() }

// List is a dedicated list marker.
type List[T any] []T

func (List[T]) WrapperKind() WrapperKind  { return WrapList }
func (List[T]) ElementType() reflect.Type { return reflect.TypeFor[T]() }

// ListType is the list marker for composing existing schema types.
type ListType[T SchemaType] struct{}

func (ListType[T]) WrapperKind() WrapperKind  { return WrapSchemaList }
func (ListType[T]) ElementType() reflect.Type { return reflect.TypeFor[T]() }

// NonNullType is the non-null marker for composing existing schema types.
type NonNullType[T SchemaType] struct{}

func (NonNullType[T]) WrapperKind() WrapperKind  { return WrapSchemaNonNull }
func (NonNullType[T]) ElementType() reflect.Type { return reflect.TypeFor[T]() }

// SchemaTypeName renders the composed name, e.g. [String!].
func (ListType[T]) SchemaTypeName() string {
	var inner T
	return "[" + inner.SchemaTypeName() + "]"
}

// SchemaTypeName renders the composed name, e.g. String!.
func (NonNullType[T]) SchemaTypeName() string {
	var inner T
	return inner.SchemaTypeName() + "!"
}
