// Package nullability reads nullability metadata for Go types and members.
//
// Go has no compiler-emitted nullability annotations, so metadata comes from
// struct tags, programmatic registrations and annotation files. A Reader
// resolves the ambient context (package, declaring type chain, member) and
// aligns per-member flags with the member type's flattened walk (see
// host.Walk).
//
// Struct tags:
//
//	type User struct {
//	    _     struct{} `nullctx:"no"`        // type-level context
//	    Tags  []string `nullable:"no,yes"`   // list non-null, elements nullable
//	    Notes []string `nullctx:"yes"`       // member-level context
//	}
package nullability

import (
	"fmt"
	"reflect"
)

// MemberKind identifies what a Member describes.
type MemberKind int

const (
	MemberType MemberKind = iota
	MemberField
	MemberReturn
	MemberParameter
)

func (k MemberKind) String() string {
	switch k {
	case MemberType:
		return "type"
	case MemberField:
		return "field"
	case MemberReturn:
		return "return"
	case MemberParameter:
		return "parameter"
	default:
		return "unknown"
	}
}

// Member identifies a type, struct field, method return or method parameter.
type Member struct {
	Kind MemberKind
	// Declaring is the struct or receiver type; for MemberType it is the type itself
	Declaring reflect.Type
	// Name is the field or method name
	Name string
	// Index is the field index path as returned by reflect.Type.FieldByName
	Index []int
	// Param is the parameter position, receiver excluded
	Param int
	// Type is the member's own type: field type, first result or parameter type
	Type reflect.Type
}

func (m Member) String() string {
	switch m.Kind {
	case MemberType:
		return typeKey(m.Declaring)
	case MemberParameter:
		return fmt.Sprintf("%s.%s(%d)", typeKey(m.Declaring), m.Name, m.Param)
	default:
		return typeKey(m.Declaring) + "." + m.Name
	}
}

// TypeMember describes a bare type.
func TypeMember(t reflect.Type) Member {
	return Member{Kind: MemberType, Declaring: t, Type: t}
}

// FieldMember describes the named field of a struct type, including fields
// promoted from embedded structs.
func FieldMember(structType reflect.Type, name string) (Member, bool) {
	if structType == nil || structType.Kind() != reflect.Struct {
		return Member{}, false
	}
	f, ok := structType.FieldByName(name)
	if !ok {
		return Member{}, false
	}
	return Member{Kind: MemberField, Declaring: structType, Name: name, Index: f.Index, Type: f.Type}, true
}

// ReturnMember describes the first result of a method.
func ReturnMember(recv reflect.Type, method string) (Member, bool) {
	mt, _, ok := methodType(recv, method)
	if !ok || mt.NumOut() == 0 {
		return Member{}, false
	}
	return Member{Kind: MemberReturn, Declaring: recv, Name: method, Type: mt.Out(0)}, true
}

// ParameterMember describes parameter i (receiver excluded) of a method.
func ParameterMember(recv reflect.Type, method string, i int) (Member, bool) {
	mt, offset, ok := methodType(recv, method)
	if !ok || i < 0 || i+offset >= mt.NumIn() {
		return Member{}, false
	}
	return Member{Kind: MemberParameter, Declaring: recv, Name: method, Param: i, Type: mt.In(i + offset)}, true
}

// methodType returns the method's func type and the number of leading
// receiver parameters in it.
func methodType(recv reflect.Type, name string) (reflect.Type, int, bool) {
	if recv == nil {
		return nil, 0, false
	}
	m, ok := recv.MethodByName(name)
	if !ok {
		return nil, 0, false
	}
	if recv.Kind() == reflect.Interface {
		return m.Type, 0, true
	}
	return m.Type, 1, true
}

// declaringChain returns the struct types from the outer declaring type to
// the struct that declares the field itself, following embedding.
func declaringChain(m Member) []reflect.Type {
	if m.Declaring == nil {
		return nil
	}
	chain := []reflect.Type{m.Declaring}
	if m.Kind != MemberField || len(m.Index) < 2 {
		return chain
	}
	cur := m.Declaring
	for _, idx := range m.Index[:len(m.Index)-1] {
		for cur.Kind() == reflect.Pointer {
			cur = cur.Elem()
		}
		if cur.Kind() != reflect.Struct || idx >= cur.NumField() {
			break
		}
		cur = cur.Field(idx).Type
		for cur.Kind() == reflect.Pointer {
			cur = cur.Elem()
		}
		chain = append(chain, cur)
	}
	return chain
}

func typeKey(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	for t.Kind() == reflect.Pointer && t.Name() == "" {
		t = t.Elem()
	}
	if t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

// packageOf returns the import path owning t, looking through pointers.
func packageOf(t reflect.Type) string {
	for t != nil && t.Kind() == reflect.Pointer && t.Name() == "" {
		t = t.Elem()
	}
	if t == nil {
		return ""
	}
	return t.PkgPath()
}
