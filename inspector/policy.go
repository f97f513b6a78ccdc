package inspector

import (
	"reflect"
	"strings"

	"github.com/teranos/typeshape/convention"
	"github.com/teranos/typeshape/shape"
)

// InspectionPolicy decides which struct fields are schema members and the
// nullability context used when no metadata says otherwise.
type InspectionPolicy interface {
	convention.Convention

	IncludeField(owner reflect.Type, f reflect.StructField) bool
	DefaultContext() shape.Nullability
}

// DefaultPolicy includes exported fields not tagged json:"-" and has an
// Unknown default context.
type DefaultPolicy struct {
	convention.Base

	Context shape.Nullability
}

// NewDefaultPolicy is the convention.Factory for DefaultPolicy.
func NewDefaultPolicy(*convention.Context) (convention.Convention, error) {
	return &DefaultPolicy{}, nil
}

// PolicyFactory returns a factory for a DefaultPolicy with the given
// default context.
func PolicyFactory(ctx shape.Nullability) convention.Factory {
	return func(*convention.Context) (convention.Convention, error) {
		return &DefaultPolicy{Context: ctx}, nil
	}
}

// GetPolicy resolves the inspection policy of scope.
func GetPolicy(ctx *convention.Context, scope string) (InspectionPolicy, error) {
	return convention.GetOrDefault[InspectionPolicy](ctx, scope, NewDefaultPolicy)
}

// IncludeField implements InspectionPolicy.
func (p *DefaultPolicy) IncludeField(_ reflect.Type, f reflect.StructField) bool {
	if !f.IsExported() || f.Name == "_" {
		return false
	}
	if tag, ok := f.Tag.Lookup("json"); ok {
		name, _, _ := strings.Cut(tag, ",")
		return name != "-"
	}
	return true
}

// DefaultContext implements InspectionPolicy.
func (p *DefaultPolicy) DefaultContext() shape.Nullability {
	return p.Context
}
