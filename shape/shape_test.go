package shape

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teranos/typeshape/errors"
)

var (
	intType    = reflect.TypeOf(0)
	stringType = reflect.TypeOf("")
	sliceType  = reflect.TypeOf([]int(nil))
	arrayType  = reflect.TypeOf([3]int{})
	gridType   = reflect.TypeOf([][]int(nil))
)

// [Int!] over a Go array: the list is value-like, the element is non-null.
func arrayOfInt() Shape {
	return NewList(arrayType, NewNonNull(NewNamed(intType, false)), false)
}

func TestNonNullCollapses(t *testing.T) {
	inner := NewNonNull(NewNamed(intType, true))
	twice := NewNonNull(inner)

	assert.Same(t, inner, twice)
	assert.False(t, Unwrap(twice).IsNullable())
	assert.Equal(t, "int!", twice.String())
}

func TestStringAndDescribe(t *testing.T) {
	s := NewNonNull(NewList(sliceType, NewNamed(intType, true), true))
	assert.Equal(t, "[int]!", s.String())
	assert.Equal(t, "NonNull(List(Named(int)))", Describe(s))
	assert.Equal(t, "List(NonNull(Named(int)))", Describe(arrayOfInt()))
}

func TestLayersAndCollect(t *testing.T) {
	t.Run("array of non-null int", func(t *testing.T) {
		assert.Equal(t, []bool{false, false}, Collect(arrayOfInt()))
	})

	t.Run("nullable slice of nullable int", func(t *testing.T) {
		s := NewList(sliceType, NewNamed(intType, true), true)
		assert.Equal(t, []bool{true, true}, Collect(s))
		assert.Len(t, Layers(s), 2)
	})

	t.Run("named type", func(t *testing.T) {
		n := NamedType(arrayOfInt())
		require.NotNil(t, n)
		assert.Equal(t, intType, n.RuntimeType())
	})
}

func TestEqual(t *testing.T) {
	a := NewNamed(reflect.TypeOf(map[string]int{}), true, NewNonNull(NewNamed(stringType, false)), NewNonNull(NewNamed(intType, false)))
	b := NewNamed(reflect.TypeOf(map[string]int{}), true, NewNonNull(NewNamed(stringType, false)), NewNonNull(NewNamed(intType, false)))
	c := NewNamed(reflect.TypeOf(map[string]int{}), true, NewNonNull(NewNamed(stringType, false)), NewNamed(intType, true))

	assert.True(t, Equal(a, b))
	assert.False(t, Equal(a, c))
	assert.False(t, Equal(a, NewNonNull(a)))
	assert.False(t, Equal(NewNamed(intType, true), NewNamed(stringType, true)))
	assert.True(t, Equal(nil, nil))
	assert.False(t, Equal(a, nil))
}

func TestTypeArgumentsAreCopied(t *testing.T) {
	arg := NewNamed(stringType, true)
	n := NewNamed(reflect.TypeOf(map[string]string{}), true, arg, arg)
	args := n.TypeArguments()
	args[0] = nil
	assert.NotNil(t, n.TypeArguments()[0])
}

func TestRewrite(t *testing.T) {
	base := NewList(sliceType, NewNamed(intType, true), true)

	tests := []struct {
		name   string
		vector []Nullability
		want   string
		flags  []bool
	}{
		{name: "empty vector keeps shape", vector: nil, want: "[int]", flags: []bool{true, true}},
		{name: "outer non-null", vector: []Nullability{No}, want: "[int]!", flags: []bool{false, true}},
		{name: "inner non-null", vector: []Nullability{Unknown, No}, want: "[int!]", flags: []bool{true, false}},
		{name: "both non-null", vector: []Nullability{No, No}, want: "[int!]!", flags: []bool{false, false}},
		{name: "extra entries ignored", vector: []Nullability{Yes, Yes, No, No}, want: "[int]", flags: []bool{true, true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Rewrite(base, tt.vector)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.String())
			assert.Equal(t, tt.flags, Collect(out))
			assert.Equal(t, "[int]", base.String(), "input must not be mutated")
		})
	}
}

func TestRewriteRemovesNonNull(t *testing.T) {
	s := NewNonNull(NewList(sliceType, NewNonNull(NewNamed(intType, false)), false))
	out, err := Rewrite(s, []Nullability{Yes, Yes})
	require.NoError(t, err)
	assert.Equal(t, "[int]", out.String())
	assert.Equal(t, []bool{true, true}, Collect(out))
}

func TestRewriteKeepsValueLikeList(t *testing.T) {
	base := arrayOfInt()
	out, err := Rewrite(base, nil)
	require.NoError(t, err)
	assert.True(t, Equal(base, out))
	assert.NotSame(t, base, out)
	assert.Equal(t, "[int!]", out.String())
}

func TestRewriteIsIdempotent(t *testing.T) {
	shapes := []Shape{
		arrayOfInt(),
		NewList(gridType, NewList(sliceType, NewNamed(intType, true), true), true),
		NewNonNull(NewNamed(stringType, false)),
	}
	vectors := [][]Nullability{
		{No},
		{Yes, No},
		{No, Yes, No},
		{Unknown, Unknown, Yes},
	}

	for _, s := range shapes {
		for _, v := range vectors {
			once := MustRewrite(s, v)
			twice := MustRewrite(once, v)
			assert.True(t, Equal(once, twice), "%s with %v", Describe(s), v)
		}
	}
}

func TestRewriteRejectsLongVector(t *testing.T) {
	_, err := Rewrite(arrayOfInt(), make([]Nullability, MaxRewriteVector+1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidRewrite))

	_, err = Rewrite(nil, nil)
	assert.True(t, errors.Is(err, errors.ErrInvalidRewrite))
}

func TestNullableAndRequired(t *testing.T) {
	s := NewNamed(stringType, true)
	assert.Equal(t, "string!", Required(s).String())
	assert.Equal(t, "string", Nullable(Required(s)).String())
}

func TestValidate(t *testing.T) {
	leaf := NewNonNull(NewNamed(intType, false))
	listOf := func(s Shape) Shape { return NewNonNull(NewList(sliceType, s, false)) }

	t.Run("list of list accepted", func(t *testing.T) {
		s := listOf(listOf(leaf))
		assert.Equal(t, 6, Depth(s))
		assert.NoError(t, Validate(s))
	})

	t.Run("list of list of list rejected", func(t *testing.T) {
		s := NewList(sliceType, NewList(sliceType, NewList(sliceType, NewNamed(intType, true), true), true), true)
		err := Validate(s)
		require.Error(t, err)
		assert.True(t, errors.IsUnsupportedShapeError(err))
		assert.Contains(t, err.Error(), "nests 3 lists")
	})

	t.Run("too deep rejected", func(t *testing.T) {
		s := &NonNull{inner: NewList(sliceType, &NonNull{inner: NewList(sliceType, &NonNull{inner: &NonNull{inner: NewNamed(intType, false)}}, false)}, false)}
		err := Validate(s)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "depth 7")
	})

	t.Run("double non-null rejected", func(t *testing.T) {
		s := &NonNull{inner: &NonNull{inner: NewNamed(intType, false)}}
		assert.Error(t, Validate(s))
	})

	t.Run("invalid type argument", func(t *testing.T) {
		bad := NewList(sliceType, NewList(sliceType, NewList(sliceType, leaf, true), true), true)
		s := NewNamed(reflect.TypeOf(map[string]int{}), true, leaf, bad)
		assert.Error(t, Validate(s))
	})

	t.Run("nil rejected", func(t *testing.T) {
		assert.Error(t, Validate(nil))
	})
}

func TestParseNullability(t *testing.T) {
	v, ok := ParseVector("no, yes ,_,?,!")
	require.True(t, ok)
	assert.Equal(t, []Nullability{No, Yes, Unknown, Yes, No}, v)

	_, ok = ParseVector("no,maybe")
	assert.False(t, ok)

	v, ok = ParseVector("")
	assert.True(t, ok)
	assert.Empty(t, v)

	assert.Equal(t, No, Unknown.Or(No))
	assert.Equal(t, Yes, Yes.Or(No))
	assert.Equal(t, []Nullability{Yes, No}, VectorFromBools([]bool{true, false}))
	assert.Equal(t, "unknown", Unknown.String())
}
